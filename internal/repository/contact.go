package repository

import (
	"context"

	"github.com/cigno/platform/internal/database"
	"github.com/cigno/platform/internal/model"
)

// ContactRepository handles contact data access
type ContactRepository struct {
	db database.Database
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db database.Database) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create stores a new contact under contact.ID
func (r *ContactRepository) Create(ctx context.Context, contact *model.Contact) error {
	return createRecord(ctx, r.db, tableContact, contact.ID, &contact.Audit, contactFields(contact))
}

// GetByID retrieves a contact, returning nil when it does not exist
func (r *ContactRepository) GetByID(ctx context.Context, id string) (*model.Contact, error) {
	query := `SELECT * FROM type::thing($tb, $id)`
	return getOne[model.Contact](ctx, r.db, query, map[string]interface{}{"tb": tableContact, "id": id})
}

// List returns contacts ordered by name, optionally limited to one client
func (r *ContactRepository) List(ctx context.Context, clientID string) ([]*model.Contact, error) {
	if clientID == "" {
		return getMany[model.Contact](ctx, r.db, `SELECT * FROM contact ORDER BY name`, nil)
	}
	query := `SELECT * FROM contact WHERE client_id = $client_id ORDER BY name`
	return getMany[model.Contact](ctx, r.db, query, map[string]interface{}{"client_id": clientID})
}

// Update replaces the mutable fields of a contact
func (r *ContactRepository) Update(ctx context.Context, contact *model.Contact) error {
	return updateRecord(ctx, r.db, tableContact, contact.ID, &contact.Audit, contactFields(contact))
}

// Delete deletes a contact
func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	return deleteRecord(ctx, r.db, tableContact, id)
}

func contactFields(contact *model.Contact) map[string]interface{} {
	return map[string]interface{}{
		"name":      contact.Name,
		"email":     model.NormalizeEmail(contact.Email),
		"phone":     contact.Phone,
		"role":      contact.Role,
		"client_id": contact.ClientID,
	}
}
