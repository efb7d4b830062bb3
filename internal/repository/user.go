package repository

import (
	"context"

	"github.com/cigno/platform/internal/database"
	"github.com/cigno/platform/internal/model"
)

// UserRepository handles user data access
type UserRepository struct {
	db database.Database
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Create stores a new user. A taken email yields database.ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	// Default to user role if not specified
	if user.Role == "" {
		user.Role = model.UserRoleUser
	}

	fields := userFields(user)
	fields["hash"] = hashValue(user.Hash)
	return createRecord(ctx, r.db, tableUser, user.ID, &user.Audit, fields)
}

// GetByID retrieves a user by ID, returning nil when it does not exist
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT * FROM type::thing($tb, $id)`
	return r.getUser(ctx, query, map[string]interface{}{"tb": tableUser, "id": id})
}

// GetByEmail retrieves a user by normalised email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT * FROM user WHERE email = $email LIMIT 1`
	return r.getUser(ctx, query, map[string]interface{}{"email": model.NormalizeEmail(email)})
}

// List returns users ordered by name, optionally limited to one organisation
func (r *UserRepository) List(ctx context.Context, organisationID string) ([]*model.User, error) {
	if organisationID == "" {
		return getMany[model.User](ctx, r.db, `SELECT * FROM user ORDER BY name`, nil)
	}
	query := `SELECT * FROM user WHERE organisation_id = $organisation_id ORDER BY name`
	return getMany[model.User](ctx, r.db, query, map[string]interface{}{"organisation_id": organisationID})
}

// Update replaces the profile fields of a user. The hash is left untouched.
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	return updateRecord(ctx, r.db, tableUser, user.ID, &user.Audit, userFields(user))
}

// UpdatePassword updates a user's password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, hash, updatedBy string) error {
	audit := model.Audit{UpdatedBy: updatedBy}
	return updateRecord(ctx, r.db, tableUser, userID, &audit, map[string]interface{}{"hash": hash})
}

// Delete deletes a user
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return deleteRecord(ctx, r.db, tableUser, id)
}

// OwnedIDs returns the clients and projects the user owns and the
// deliverables they created
func (r *UserRepository) OwnedIDs(ctx context.Context, userID string) (clients, projects, deliverables []string, err error) {
	vars := map[string]interface{}{"user_id": userID}

	clients, err = queryIDs(ctx, r.db, `SELECT id FROM client WHERE owner_id = $user_id ORDER BY id`, vars)
	if err != nil {
		return nil, nil, nil, err
	}
	projects, err = queryIDs(ctx, r.db, `SELECT id FROM project WHERE internal_owner_id = $user_id ORDER BY id`, vars)
	if err != nil {
		return nil, nil, nil, err
	}
	deliverables, err = queryIDs(ctx, r.db, `SELECT id FROM deliverable WHERE created_by = $user_id ORDER BY id`, vars)
	if err != nil {
		return nil, nil, nil, err
	}
	return clients, projects, deliverables, nil
}

// getUser decodes a user and restores the hash, which the model never serialises
func (r *UserRepository) getUser(ctx context.Context, query string, vars map[string]interface{}) (*model.User, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, nil
	}
	var hash *string
	if h := getString(data, "hash"); h != "" {
		hash = &h
	}

	user, err := decodeRecord[model.User](data)
	if err != nil {
		return nil, err
	}
	user.Hash = hash
	return user, nil
}

func userFields(user *model.User) map[string]interface{} {
	return map[string]interface{}{
		"name":            user.Name,
		"email":           model.NormalizeEmail(user.Email),
		"organisation_id": user.OrganisationID,
		"role":            string(user.Role),
	}
}

func hashValue(hash *string) interface{} {
	if hash == nil {
		return nil
	}
	return *hash
}
