package repository

import (
	"context"

	"github.com/cigno/platform/internal/database"
	"github.com/cigno/platform/internal/model"
)

// DeliverableRepository handles deliverable data access
type DeliverableRepository struct {
	db database.Database
}

// NewDeliverableRepository creates a new deliverable repository
func NewDeliverableRepository(db database.Database) *DeliverableRepository {
	return &DeliverableRepository{db: db}
}

// Create stores a new deliverable under deliverable.ID
func (r *DeliverableRepository) Create(ctx context.Context, deliverable *model.Deliverable) error {
	return createRecord(ctx, r.db, tableDeliverable, deliverable.ID, &deliverable.Audit, deliverableFields(deliverable))
}

// GetByID retrieves a deliverable, returning nil when it does not exist
func (r *DeliverableRepository) GetByID(ctx context.Context, id string) (*model.Deliverable, error) {
	query := `SELECT * FROM type::thing($tb, $id)`
	return getOne[model.Deliverable](ctx, r.db, query, map[string]interface{}{"tb": tableDeliverable, "id": id})
}

// List returns deliverables ordered by due date, optionally limited to one project
func (r *DeliverableRepository) List(ctx context.Context, projectID string) ([]*model.Deliverable, error) {
	if projectID == "" {
		return getMany[model.Deliverable](ctx, r.db, `SELECT * FROM deliverable ORDER BY due_date, name`, nil)
	}
	query := `SELECT * FROM deliverable WHERE project_id = $project_id ORDER BY due_date, name`
	return getMany[model.Deliverable](ctx, r.db, query, map[string]interface{}{"project_id": projectID})
}

// Update replaces the mutable fields of a deliverable
func (r *DeliverableRepository) Update(ctx context.Context, deliverable *model.Deliverable) error {
	return updateRecord(ctx, r.db, tableDeliverable, deliverable.ID, &deliverable.Audit, deliverableFields(deliverable))
}

// Delete removes a deliverable and its storyline in one transaction
func (r *DeliverableRepository) Delete(ctx context.Context, id string) error {
	batch := database.NewAtomicBatch()
	addStorylineDeletes(batch, []string{id})
	batch.Add(`DELETE type::thing($tb, $id)`, map[string]interface{}{"tb": tableDeliverable, "id": id})
	return batch.Execute(ctx, r.db)
}

func deliverableFields(deliverable *model.Deliverable) map[string]interface{} {
	return map[string]interface{}{
		"name":       deliverable.Name,
		"due_date":   deliverable.DueDate,
		"brief":      deliverable.Brief,
		"notes":      deliverable.Notes,
		"status":     string(deliverable.Status),
		"project_id": deliverable.ProjectID,
	}
}
