package repository

import (
	"context"

	"github.com/cigno/platform/internal/database"
	"github.com/cigno/platform/internal/model"
)

// ClientRepository handles client data access
type ClientRepository struct {
	db database.Database
}

// NewClientRepository creates a new client repository
func NewClientRepository(db database.Database) *ClientRepository {
	return &ClientRepository{db: db}
}

// Create stores a new client under client.ID
func (r *ClientRepository) Create(ctx context.Context, client *model.Client) error {
	return createRecord(ctx, r.db, tableClient, client.ID, &client.Audit, clientFields(client))
}

// GetByID retrieves a client, returning nil when it does not exist
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*model.Client, error) {
	query := `SELECT * FROM type::thing($tb, $id)`
	return getOne[model.Client](ctx, r.db, query, map[string]interface{}{"tb": tableClient, "id": id})
}

// List returns clients ordered by name, optionally limited to one organisation
func (r *ClientRepository) List(ctx context.Context, organisationID string) ([]*model.Client, error) {
	if organisationID == "" {
		return getMany[model.Client](ctx, r.db, `SELECT * FROM client ORDER BY name`, nil)
	}
	query := `SELECT * FROM client WHERE organisation_id = $organisation_id ORDER BY name`
	return getMany[model.Client](ctx, r.db, query, map[string]interface{}{"organisation_id": organisationID})
}

// Update replaces the mutable fields of a client
func (r *ClientRepository) Update(ctx context.Context, client *model.Client) error {
	return updateRecord(ctx, r.db, tableClient, client.ID, &client.Audit, clientFields(client))
}

// Delete removes a client with its contacts, projects, deliverables and
// storylines in one transaction
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	projectIDs, err := queryIDs(ctx, r.db,
		`SELECT id FROM project WHERE client_id = $client_id`,
		map[string]interface{}{"client_id": id})
	if err != nil {
		return err
	}

	batch := database.NewAtomicBatch()
	if len(projectIDs) > 0 {
		deliverableIDs, err := queryIDs(ctx, r.db,
			`SELECT id FROM deliverable WHERE project_id IN $project_ids`,
			map[string]interface{}{"project_ids": projectIDs})
		if err != nil {
			return err
		}
		addStorylineDeletes(batch, deliverableIDs)
		batch.Add(`DELETE deliverable WHERE project_id IN $project_ids`,
			map[string]interface{}{"project_ids": projectIDs})
	}
	batch.Add(`DELETE project WHERE client_id = $client_id`, map[string]interface{}{"client_id": id})
	batch.Add(`DELETE contact WHERE client_id = $client_id`, map[string]interface{}{"client_id": id})
	batch.Add(`DELETE type::thing($tb, $id)`, map[string]interface{}{"tb": tableClient, "id": id})

	return batch.Execute(ctx, r.db)
}

func clientFields(client *model.Client) map[string]interface{} {
	return map[string]interface{}{
		"name":            client.Name,
		"industry":        client.Industry,
		"location":        client.Location,
		"owner_id":        client.OwnerID,
		"organisation_id": client.OrganisationID,
	}
}

func addStorylineDeletes(batch *database.AtomicBatch, deliverableIDs []string) {
	if len(deliverableIDs) == 0 {
		return
	}
	batch.Add(`DELETE storyline WHERE deliverable_id IN $deliverable_ids`,
		map[string]interface{}{"deliverable_ids": deliverableIDs})
}
