package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cigno/platform/internal/model"
)

// DeliverableRepository defines the interface for deliverable storage
type DeliverableRepository interface {
	Create(ctx context.Context, deliverable *model.Deliverable) error
	GetByID(ctx context.Context, id string) (*model.Deliverable, error)
	List(ctx context.Context, projectID string) ([]*model.Deliverable, error)
	Update(ctx context.Context, deliverable *model.Deliverable) error
	Delete(ctx context.Context, id string) error
}

// ProjectGetter looks up projects by id
type ProjectGetter interface {
	GetByID(ctx context.Context, id string) (*model.Project, error)
}

// DeliverableService handles deliverable business logic
type DeliverableService struct {
	repo     DeliverableRepository
	projects ProjectGetter
}

// NewDeliverableService creates a new deliverable service
func NewDeliverableService(repo DeliverableRepository, projects ProjectGetter) *DeliverableService {
	return &DeliverableService{repo: repo, projects: projects}
}

// Create validates and stores a new deliverable of an existing project
func (s *DeliverableService) Create(ctx context.Context, actorID string, req *model.CreateDeliverableRequest) (*model.Deliverable, error) {
	if err := newValidationError(req.Validate()); err != nil {
		return nil, err
	}

	deliverable := &model.Deliverable{
		ID:        model.NewID(),
		Name:      strings.TrimSpace(req.Name),
		DueDate:   req.DueDate,
		Brief:     strings.TrimSpace(req.Brief),
		Notes:     strings.TrimSpace(req.Notes),
		Status:    req.Status,
		ProjectID: model.NormalizeID(req.ProjectID),
	}
	if deliverable.Status == "" {
		deliverable.Status = model.DeliverableStatusDraft
	}

	project, err := s.projects.GetByID(ctx, deliverable.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	deliverable.CreatedBy = actorID

	if err := s.repo.Create(ctx, deliverable); err != nil {
		return nil, fmt.Errorf("create deliverable: %w", err)
	}
	return deliverable, nil
}

// Get returns a deliverable by id
func (s *DeliverableService) Get(ctx context.Context, id string) (*model.Deliverable, error) {
	id, err := checkPathID("id", id)
	if err != nil {
		return nil, err
	}
	deliverable, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if deliverable == nil {
		return nil, ErrDeliverableNotFound
	}
	return deliverable, nil
}

// List returns deliverables, optionally limited to one project
func (s *DeliverableService) List(ctx context.Context, projectID string) ([]*model.Deliverable, error) {
	if projectID != "" {
		var err error
		if projectID, err = checkPathID("project_id", projectID); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, projectID)
}

// Update applies the set fields of req to the deliverable named by req.ID
func (s *DeliverableService) Update(ctx context.Context, actorID string, req *model.UpdateDeliverableRequest) (*model.Deliverable, error) {
	id, fields := req.Validate()
	if err := newValidationError(fields); err != nil {
		return nil, err
	}

	deliverable, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if deliverable == nil {
		return nil, ErrDeliverableNotFound
	}

	req.Apply(deliverable)
	deliverable.Name = strings.TrimSpace(deliverable.Name)
	deliverable.ID = id
	deliverable.UpdatedBy = actorID

	if err := s.repo.Update(ctx, deliverable); err != nil {
		return nil, fmt.Errorf("update deliverable: %w", err)
	}
	return deliverable, nil
}

// Delete removes a deliverable and its storyline
func (s *DeliverableService) Delete(ctx context.Context, id string) error {
	deliverable, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, deliverable.ID); err != nil {
		return fmt.Errorf("delete deliverable: %w", err)
	}
	return nil
}
