package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cigno/platform/internal/model"
)

// ClientRepository defines the interface for client storage
type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	GetByID(ctx context.Context, id string) (*model.Client, error)
	List(ctx context.Context, organisationID string) ([]*model.Client, error)
	Update(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, id string) error
}

// UserGetter looks up users by id
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// ClientService handles client business logic
type ClientService struct {
	repo     ClientRepository
	orgs     OrganisationGetter
	users    UserGetter
	contacts ContactRepository
	projects ProjectRepository
}

// ClientServiceConfig holds the dependencies of the client service
type ClientServiceConfig struct {
	Repo          ClientRepository
	Organisations OrganisationGetter
	Users         UserGetter
	Contacts      ContactRepository
	Projects      ProjectRepository
}

// NewClientService creates a new client service
func NewClientService(cfg ClientServiceConfig) *ClientService {
	return &ClientService{
		repo:     cfg.Repo,
		orgs:     cfg.Organisations,
		users:    cfg.Users,
		contacts: cfg.Contacts,
		projects: cfg.Projects,
	}
}

// Create validates and stores a new client of an existing organisation
func (s *ClientService) Create(ctx context.Context, actorID string, req *model.CreateClientRequest) (*model.Client, error) {
	if err := newValidationError(req.Validate()); err != nil {
		return nil, err
	}

	client := &model.Client{
		ID:             model.NewID(),
		Name:           strings.TrimSpace(req.Name),
		Industry:       strings.TrimSpace(req.Industry),
		Location:       strings.TrimSpace(req.Location),
		OwnerID:        model.NormalizeID(req.OwnerID),
		OrganisationID: model.NormalizeID(req.OrganisationID),
	}
	if err := s.checkReferences(ctx, client); err != nil {
		return nil, err
	}
	client.CreatedBy = actorID

	if err := s.repo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}

// Get returns a client with its contacts and projects
func (s *ClientService) Get(ctx context.Context, id string) (*model.ClientView, error) {
	client, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	contacts, err := s.contacts.List(ctx, client.ID)
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	projects, err := s.projects.List(ctx, model.ProjectFilter{ClientID: client.ID})
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	if contacts == nil {
		contacts = []*model.Contact{}
	}
	if projects == nil {
		projects = []*model.Project{}
	}
	return &model.ClientView{Client: client, Contacts: contacts, Projects: projects}, nil
}

// List returns clients, optionally limited to one organisation
func (s *ClientService) List(ctx context.Context, organisationID string) ([]*model.Client, error) {
	if organisationID != "" {
		var err error
		if organisationID, err = checkPathID("organisation_id", organisationID); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, organisationID)
}

// Update applies the set fields of req to the client named by req.ID
func (s *ClientService) Update(ctx context.Context, actorID string, req *model.UpdateClientRequest) (*model.Client, error) {
	id, fields := req.Validate()
	if err := newValidationError(fields); err != nil {
		return nil, err
	}

	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrClientNotFound
	}

	setString(&client.Name, req.Name)
	setString(&client.Industry, req.Industry)
	setString(&client.Location, req.Location)
	if req.OwnerID != nil {
		client.OwnerID = model.NormalizeID(*req.OwnerID)
	}
	if err := s.checkReferences(ctx, client); err != nil {
		return nil, err
	}
	client.ID = id
	client.UpdatedBy = actorID

	if err := s.repo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	return client, nil
}

// Delete removes a client together with its contacts, projects and deliverables
func (s *ClientService) Delete(ctx context.Context, id string) error {
	client, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, client.ID); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}

func (s *ClientService) get(ctx context.Context, id string) (*model.Client, error) {
	id, err := checkPathID("id", id)
	if err != nil {
		return nil, err
	}
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrClientNotFound
	}
	return client, nil
}

func (s *ClientService) checkReferences(ctx context.Context, client *model.Client) error {
	org, err := s.orgs.GetByID(ctx, client.OrganisationID)
	if err != nil {
		return err
	}
	if org == nil {
		return ErrOrganisationNotFound
	}
	if client.OwnerID != "" && s.users != nil {
		owner, err := s.users.GetByID(ctx, client.OwnerID)
		if err != nil {
			return err
		}
		if owner == nil {
			return ErrUserNotFound
		}
	}
	return nil
}
