package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cigno/platform/internal/model"
)

// ProjectRepository defines the interface for project storage
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context, filter model.ProjectFilter) ([]*model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id string) error
}

// ContactGetter looks up contacts by id
type ContactGetter interface {
	GetByID(ctx context.Context, id string) (*model.Contact, error)
}

// ProjectService handles project business logic
type ProjectService struct {
	repo         ProjectRepository
	clients      ClientGetter
	contacts     ContactGetter
	users        UserGetter
	orgs         OrganisationGetter
	deliverables DeliverableRepository
}

// ProjectServiceConfig holds the dependencies of the project service
type ProjectServiceConfig struct {
	Repo          ProjectRepository
	Clients       ClientGetter
	Contacts      ContactGetter
	Users         UserGetter
	Organisations OrganisationGetter
	Deliverables  DeliverableRepository
}

// NewProjectService creates a new project service
func NewProjectService(cfg ProjectServiceConfig) *ProjectService {
	return &ProjectService{
		repo:         cfg.Repo,
		clients:      cfg.Clients,
		contacts:     cfg.Contacts,
		users:        cfg.Users,
		orgs:         cfg.Organisations,
		deliverables: cfg.Deliverables,
	}
}

// Create validates and stores a new project. Without an explicit
// organisation the project inherits the one of its client.
func (s *ProjectService) Create(ctx context.Context, actorID string, req *model.CreateProjectRequest) (*model.Project, error) {
	if err := newValidationError(req.Validate()); err != nil {
		return nil, err
	}

	project := &model.Project{
		ID:              model.NewID(),
		Name:            strings.TrimSpace(req.Name),
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		ClientID:        model.NormalizeID(req.ClientID),
		ClientOwnerID:   model.NormalizeID(req.ClientOwnerID),
		InternalOwnerID: model.NormalizeID(req.InternalOwnerID),
		OrganisationID:  model.NormalizeID(req.OrganisationID),
		Description:     strings.TrimSpace(req.Description),
		Status:          req.Status,
	}
	if project.Status == "" {
		project.Status = model.ProjectStatusPlanning
	}
	if err := s.checkReferences(ctx, project); err != nil {
		return nil, err
	}
	project.CreatedBy = actorID

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

// Get returns a project with its deliverables
func (s *ProjectService) Get(ctx context.Context, id string) (*model.ProjectView, error) {
	project, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	deliverables, err := s.deliverables.List(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("load deliverables: %w", err)
	}
	if deliverables == nil {
		deliverables = []*model.Deliverable{}
	}
	return &model.ProjectView{Project: project, Deliverables: deliverables}, nil
}

// List returns projects matching the filter
func (s *ProjectService) List(ctx context.Context, filter model.ProjectFilter) ([]*model.Project, error) {
	var err error
	if filter.ClientID != "" {
		if filter.ClientID, err = checkPathID("client_id", filter.ClientID); err != nil {
			return nil, err
		}
	}
	if filter.OrganisationID != "" {
		if filter.OrganisationID, err = checkPathID("organisation_id", filter.OrganisationID); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, filter)
}

// Update applies the set fields of req to the project named by req.ID.
// The date range is checked against the merged result.
func (s *ProjectService) Update(ctx context.Context, actorID string, req *model.UpdateProjectRequest) (*model.Project, error) {
	id, fields := req.Validate()
	if err := newValidationError(fields); err != nil {
		return nil, err
	}

	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	req.Apply(project)
	project.Name = strings.TrimSpace(project.Name)
	project.ClientID = model.NormalizeID(project.ClientID)
	project.ClientOwnerID = model.NormalizeID(project.ClientOwnerID)
	project.InternalOwnerID = model.NormalizeID(project.InternalOwnerID)
	if err := newValidationError(model.CheckDateRange(project.StartDate, project.EndDate)); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, project); err != nil {
		return nil, err
	}
	project.ID = id
	project.UpdatedBy = actorID

	if err := s.repo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return project, nil
}

// Delete removes a project together with its deliverables and storylines
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	project, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, project.ID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

func (s *ProjectService) get(ctx context.Context, id string) (*model.Project, error) {
	id, err := checkPathID("id", id)
	if err != nil {
		return nil, err
	}
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

func (s *ProjectService) checkReferences(ctx context.Context, project *model.Project) error {
	if project.ClientID != "" {
		client, err := s.clients.GetByID(ctx, project.ClientID)
		if err != nil {
			return err
		}
		if client == nil {
			return ErrClientNotFound
		}
		if project.OrganisationID == "" {
			project.OrganisationID = client.OrganisationID
		}
	}
	if project.ClientOwnerID != "" && s.contacts != nil {
		contact, err := s.contacts.GetByID(ctx, project.ClientOwnerID)
		if err != nil {
			return err
		}
		if contact == nil {
			return ErrContactNotFound
		}
	}
	if project.InternalOwnerID != "" && s.users != nil {
		owner, err := s.users.GetByID(ctx, project.InternalOwnerID)
		if err != nil {
			return err
		}
		if owner == nil {
			return ErrUserNotFound
		}
	}
	if project.OrganisationID != "" && s.orgs != nil {
		org, err := s.orgs.GetByID(ctx, project.OrganisationID)
		if err != nil {
			return err
		}
		if org == nil {
			return ErrOrganisationNotFound
		}
	}
	return nil
}
