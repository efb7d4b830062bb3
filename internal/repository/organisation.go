package repository

import (
	"context"
	"encoding/json"

	"github.com/cigno/platform/internal/database"
	"github.com/cigno/platform/internal/model"
)

// OrganisationRepository handles organisation data access
type OrganisationRepository struct {
	db database.Database
}

// NewOrganisationRepository creates a new organisation repository
func NewOrganisationRepository(db database.Database) *OrganisationRepository {
	return &OrganisationRepository{db: db}
}

// Create stores a new organisation under org.ID
func (r *OrganisationRepository) Create(ctx context.Context, org *model.Organisation) error {
	return createRecord(ctx, r.db, tableOrganisation, org.ID, &org.Audit, organisationFields(org))
}

// GetByID retrieves an organisation, returning nil when it does not exist
func (r *OrganisationRepository) GetByID(ctx context.Context, id string) (*model.Organisation, error) {
	query := `SELECT * FROM type::thing($tb, $id)`
	return getOne[model.Organisation](ctx, r.db, query, map[string]interface{}{"tb": tableOrganisation, "id": id})
}

// List returns organisations ordered by name. Deactivated ones are only
// included when includeInactive is set.
func (r *OrganisationRepository) List(ctx context.Context, includeInactive bool) ([]*model.Organisation, error) {
	query := `SELECT * FROM organisation WHERE is_active != false ORDER BY name`
	if includeInactive {
		query = `SELECT * FROM organisation ORDER BY name`
	}
	return getMany[model.Organisation](ctx, r.db, query, nil)
}

// Update replaces the mutable fields of an organisation
func (r *OrganisationRepository) Update(ctx context.Context, org *model.Organisation) error {
	return updateRecord(ctx, r.db, tableOrganisation, org.ID, &org.Audit, organisationFields(org))
}

// Deactivate soft deletes an organisation
func (r *OrganisationRepository) Deactivate(ctx context.Context, id, updatedBy string) error {
	audit := model.Audit{UpdatedBy: updatedBy}
	return updateRecord(ctx, r.db, tableOrganisation, id, &audit, map[string]interface{}{"is_active": false})
}

func organisationFields(org *model.Organisation) map[string]interface{} {
	return map[string]interface{}{
		"name":       org.Name,
		"industry":   org.Industry,
		"admin_id":   org.AdminID,
		"member_ids": emptyIfNil(org.MemberIDs),
		"billing":    toDocument(org.Billing),
		"is_active":  org.IsActive,
	}
}

// toDocument converts a nested struct into a plain map so the driver stores
// it under its JSON field names. Nil stays nil.
func toDocument(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		return nil
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
