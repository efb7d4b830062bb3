package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cigno/platform/internal/model"
)

// OrganisationRepository defines the interface for organisation storage
type OrganisationRepository interface {
	Create(ctx context.Context, org *model.Organisation) error
	GetByID(ctx context.Context, id string) (*model.Organisation, error)
	List(ctx context.Context, includeInactive bool) ([]*model.Organisation, error)
	Update(ctx context.Context, org *model.Organisation) error
	Deactivate(ctx context.Context, id, updatedBy string) error
}

// OrganisationService handles organisation business logic
type OrganisationService struct {
	repo OrganisationRepository
}

// NewOrganisationService creates a new organisation service
func NewOrganisationService(repo OrganisationRepository) *OrganisationService {
	return &OrganisationService{repo: repo}
}

// Create validates and stores a new active organisation
func (s *OrganisationService) Create(ctx context.Context, actorID string, req *model.CreateOrganisationRequest) (*model.Organisation, error) {
	if err := newValidationError(req.Validate()); err != nil {
		return nil, err
	}

	org := &model.Organisation{
		ID:        model.NewID(),
		Name:      strings.TrimSpace(req.Name),
		Industry:  strings.TrimSpace(req.Industry),
		AdminID:   model.NormalizeID(req.AdminID),
		MemberIDs: normalizeIDs(req.MemberIDs),
		Billing:   normalizeBilling(req.Billing),
		IsActive:  true,
	}
	org.CreatedBy = actorID

	if err := s.repo.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("create organisation: %w", err)
	}
	return org, nil
}

// Get returns an organisation by id, including deactivated ones
func (s *OrganisationService) Get(ctx context.Context, id string) (*model.Organisation, error) {
	id, err := checkPathID("id", id)
	if err != nil {
		return nil, err
	}

	org, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrOrganisationNotFound
	}
	return org, nil
}

// List returns active organisations, or all of them when includeInactive is set
func (s *OrganisationService) List(ctx context.Context, includeInactive bool) ([]*model.Organisation, error) {
	return s.repo.List(ctx, includeInactive)
}

// Update applies the set fields of req to the organisation named by req.ID
func (s *OrganisationService) Update(ctx context.Context, actorID string, req *model.UpdateOrganisationRequest) (*model.Organisation, error) {
	id, fields := req.Validate()
	if err := newValidationError(fields); err != nil {
		return nil, err
	}

	org, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrOrganisationNotFound
	}

	if req.Name != nil {
		org.Name = strings.TrimSpace(*req.Name)
	}
	setString(&org.Industry, req.Industry)
	if req.AdminID != nil {
		org.AdminID = model.NormalizeID(*req.AdminID)
	}
	if req.MemberIDs != nil {
		org.MemberIDs = normalizeIDs(req.MemberIDs)
	}
	if req.Billing != nil {
		org.Billing = normalizeBilling(req.Billing)
	}
	if req.IsActive != nil {
		org.IsActive = *req.IsActive
	}
	org.ID = id
	org.UpdatedBy = actorID

	if err := s.repo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("update organisation: %w", err)
	}
	return org, nil
}

// Delete deactivates an organisation. Its records are kept.
func (s *OrganisationService) Delete(ctx context.Context, actorID, id string) error {
	org, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, org.ID, actorID); err != nil {
		return fmt.Errorf("deactivate organisation: %w", err)
	}
	return nil
}

func normalizeBilling(b *model.Billing) *model.Billing {
	if b == nil {
		return nil
	}
	out := *b
	out.Email = model.NormalizeEmail(out.Email)
	out.Plan = strings.TrimSpace(out.Plan)
	out.VATNumber = strings.TrimSpace(out.VATNumber)
	return &out
}

func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = model.NormalizeID(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
