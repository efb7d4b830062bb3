package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cigno/platform/internal/model"
)

// ContactRepository defines the interface for contact storage
type ContactRepository interface {
	Create(ctx context.Context, contact *model.Contact) error
	GetByID(ctx context.Context, id string) (*model.Contact, error)
	List(ctx context.Context, clientID string) ([]*model.Contact, error)
	Update(ctx context.Context, contact *model.Contact) error
	Delete(ctx context.Context, id string) error
}

// ClientGetter looks up clients by id
type ClientGetter interface {
	GetByID(ctx context.Context, id string) (*model.Client, error)
}

// ContactService handles contact business logic
type ContactService struct {
	repo    ContactRepository
	clients ClientGetter
}

// NewContactService creates a new contact service
func NewContactService(repo ContactRepository, clients ClientGetter) *ContactService {
	return &ContactService{repo: repo, clients: clients}
}

// Create validates and stores a new contact of an existing client
func (s *ContactService) Create(ctx context.Context, actorID string, req *model.CreateContactRequest) (*model.Contact, error) {
	if err := newValidationError(req.Validate()); err != nil {
		return nil, err
	}

	contact := &model.Contact{
		ID:       model.NewID(),
		Name:     strings.TrimSpace(req.Name),
		Email:    model.NormalizeEmail(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
		Role:     strings.TrimSpace(req.Role),
		ClientID: model.NormalizeID(req.ClientID),
	}
	if err := s.ensureClient(ctx, contact.ClientID); err != nil {
		return nil, err
	}
	contact.CreatedBy = actorID

	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return contact, nil
}

// Get returns a contact by id
func (s *ContactService) Get(ctx context.Context, id string) (*model.Contact, error) {
	id, err := checkPathID("id", id)
	if err != nil {
		return nil, err
	}
	contact, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, ErrContactNotFound
	}
	return contact, nil
}

// List returns contacts, optionally limited to one client
func (s *ContactService) List(ctx context.Context, clientID string) ([]*model.Contact, error) {
	if clientID != "" {
		var err error
		if clientID, err = checkPathID("client_id", clientID); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, clientID)
}

// Update applies the set fields of req to the contact named by req.ID
func (s *ContactService) Update(ctx context.Context, actorID string, req *model.UpdateContactRequest) (*model.Contact, error) {
	id, fields := req.Validate()
	if err := newValidationError(fields); err != nil {
		return nil, err
	}

	contact, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, ErrContactNotFound
	}

	setString(&contact.Name, req.Name)
	if req.Email != nil {
		contact.Email = model.NormalizeEmail(*req.Email)
	}
	setString(&contact.Phone, req.Phone)
	setString(&contact.Role, req.Role)
	contact.ID = id
	contact.UpdatedBy = actorID

	if err := s.repo.Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return contact, nil
}

// Delete removes a contact
func (s *ContactService) Delete(ctx context.Context, id string) error {
	contact, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, contact.ID)
}

func (s *ContactService) ensureClient(ctx context.Context, clientID string) error {
	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return err
	}
	if client == nil {
		return ErrClientNotFound
	}
	return nil
}
