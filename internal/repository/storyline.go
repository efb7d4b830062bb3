package repository

import (
	"context"

	"github.com/cigno/platform/internal/database"
	"github.com/cigno/platform/internal/model"
)

// StorylineRepository handles storyline data access. A deliverable has at most one storyline.
type StorylineRepository struct {
	db database.Database
}

// NewStorylineRepository creates a new storyline repository
func NewStorylineRepository(db database.Database) *StorylineRepository {
	return &StorylineRepository{db: db}
}

// GetByDeliverable returns the storyline of a deliverable, or nil
func (r *StorylineRepository) GetByDeliverable(ctx context.Context, deliverableID string) (*model.Storyline, error) {
	query := `SELECT * FROM storyline WHERE deliverable_id = $deliverable_id LIMIT 1`
	storyline, err := getOne[model.Storyline](ctx, r.db, query, map[string]interface{}{"deliverable_id": deliverableID})
	if err != nil || storyline == nil {
		return storyline, err
	}
	if storyline.Sections == nil {
		storyline.Sections = []model.Section{}
	}
	return storyline, nil
}

// Save creates the storyline of a deliverable or replaces the stored one.
// On return storyline.ID holds the stored record key.
func (r *StorylineRepository) Save(ctx context.Context, storyline *model.Storyline) error {
	existing, err := r.GetByDeliverable(ctx, storyline.DeliverableID)
	if err != nil {
		return err
	}

	if existing == nil {
		if storyline.ID == "" {
			storyline.ID = model.NewID()
		}
		return createRecord(ctx, r.db, tableStoryline, storyline.ID, &storyline.Audit, storylineFields(storyline))
	}

	storyline.ID = existing.ID
	storyline.CreatedBy = existing.CreatedBy
	storyline.CreatedOn = existing.CreatedOn
	return updateRecord(ctx, r.db, tableStoryline, storyline.ID, &storyline.Audit, storylineFields(storyline))
}

// Create stores a storyline without looking for an existing one
func (r *StorylineRepository) Create(ctx context.Context, storyline *model.Storyline) error {
	return createRecord(ctx, r.db, tableStoryline, storyline.ID, &storyline.Audit, storylineFields(storyline))
}

func storylineFields(storyline *model.Storyline) map[string]interface{} {
	sections := storyline.Sections
	if sections == nil {
		sections = []model.Section{}
	}
	return map[string]interface{}{
		"deliverable_id": storyline.DeliverableID,
		"title":          storyline.Title,
		"sections":       toDocument(sections),
		"source":         string(storyline.Source),
	}
}
