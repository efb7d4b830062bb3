package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cigno/platform/internal/database"
	"github.com/cigno/platform/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt cost factor (10-14 recommended for production)
const bcryptCost = 12

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, organisationID string) ([]*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, userID, hash, updatedBy string) error
	Delete(ctx context.Context, id string) error
	OwnedIDs(ctx context.Context, userID string) (clients, projects, deliverables []string, err error)
}

// OrganisationGetter looks up organisations by id
type OrganisationGetter interface {
	GetByID(ctx context.Context, id string) (*model.Organisation, error)
}

// UserService handles user accounts
type UserService struct {
	repo UserRepository
	orgs OrganisationGetter
}

// NewUserService creates a new user service
func NewUserService(repo UserRepository, orgs OrganisationGetter) *UserService {
	return &UserService{repo: repo, orgs: orgs}
}

// Create validates and stores a new user. The email is lower-cased and must be unique.
func (s *UserService) Create(ctx context.Context, actorID string, req *model.CreateUserRequest) (*model.User, error) {
	if err := newValidationError(req.Validate()); err != nil {
		return nil, err
	}

	email := model.NormalizeEmail(req.Email)
	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	orgID := model.NormalizeID(req.OrganisationID)
	if err := s.ensureOrganisation(ctx, orgID); err != nil {
		return nil, err
	}

	user := &model.User{
		ID:             model.NewID(),
		Name:           strings.TrimSpace(req.Name),
		Email:          email,
		OrganisationID: orgID,
		Role:           req.Role,
	}
	if user.Role == "" {
		user.Role = model.UserRoleUser
	}
	if req.Password != "" {
		hash, err := hashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.Hash = &hash
	}
	user.CreatedBy = actorID

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Get returns a user together with the ids of the records they own
func (s *UserService) Get(ctx context.Context, id string) (*model.UserView, error) {
	id, err := checkPathID("id", id)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	clients, projects, deliverables, err := s.repo.OwnedIDs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load owned records: %w", err)
	}
	return &model.UserView{
		User:           user,
		ClientIDs:      nonNil(clients),
		ProjectIDs:     nonNil(projects),
		DeliverableIDs: nonNil(deliverables),
	}, nil
}

// List returns users, optionally limited to one organisation
func (s *UserService) List(ctx context.Context, organisationID string) ([]*model.User, error) {
	if organisationID != "" {
		var err error
		if organisationID, err = checkPathID("organisation_id", organisationID); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, organisationID)
}

// Update applies the set fields of req to the user named by req.ID
func (s *UserService) Update(ctx context.Context, actorID string, req *model.UpdateUserRequest) (*model.User, error) {
	id, fields := req.Validate()
	if err := newValidationError(fields); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := model.NormalizeEmail(*req.Email)
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, id); err != nil {
				return nil, err
			}
		}
		user.Email = email
	}
	if req.OrganisationID != nil {
		orgID := model.NormalizeID(*req.OrganisationID)
		if err := s.ensureOrganisation(ctx, orgID); err != nil {
			return nil, err
		}
		user.OrganisationID = orgID
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	user.ID = id
	user.UpdatedBy = actorID

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		if err := s.repo.UpdatePassword(ctx, id, hash, actorID); err != nil {
			return nil, fmt.Errorf("update password: %w", err)
		}
	}
	return user, nil
}

// Delete removes a user
func (s *UserService) Delete(ctx context.Context, id string) error {
	id, err := checkPathID("id", id)
	if err != nil {
		return err
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *UserService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return ErrEmailAlreadyExists
	}
	return nil
}

func (s *UserService) ensureOrganisation(ctx context.Context, orgID string) error {
	if orgID == "" || s.orgs == nil {
		return nil
	}
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return err
	}
	if org == nil {
		return ErrOrganisationNotFound
	}
	return nil
}

// hashPassword creates a bcrypt hash of the password
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// checkPassword verifies a password against a hash
func checkPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
