package repository

import (
	"context"
	"strings"

	"github.com/cigno/platform/internal/database"
	"github.com/cigno/platform/internal/model"
)

// ProjectRepository handles project data access
type ProjectRepository struct {
	db database.Database
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db database.Database) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create stores a new project under project.ID
func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return createRecord(ctx, r.db, tableProject, project.ID, &project.Audit, projectFields(project))
}

// GetByID retrieves a project, returning nil when it does not exist
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	query := `SELECT * FROM type::thing($tb, $id)`
	return getOne[model.Project](ctx, r.db, query, map[string]interface{}{"tb": tableProject, "id": id})
}

// List returns projects ordered by start date then name
func (r *ProjectRepository) List(ctx context.Context, filter model.ProjectFilter) ([]*model.Project, error) {
	var conditions []string
	vars := map[string]interface{}{}
	if filter.ClientID != "" {
		conditions = append(conditions, "client_id = $client_id")
		vars["client_id"] = filter.ClientID
	}
	if filter.OrganisationID != "" {
		conditions = append(conditions, "organisation_id = $organisation_id")
		vars["organisation_id"] = filter.OrganisationID
	}

	query := `SELECT * FROM project`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_date, name"

	return getMany[model.Project](ctx, r.db, query, vars)
}

// Update replaces the mutable fields of a project
func (r *ProjectRepository) Update(ctx context.Context, project *model.Project) error {
	return updateRecord(ctx, r.db, tableProject, project.ID, &project.Audit, projectFields(project))
}

// Delete removes a project with its deliverables and their storylines in one transaction
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	deliverableIDs, err := queryIDs(ctx, r.db,
		`SELECT id FROM deliverable WHERE project_id = $project_id`,
		map[string]interface{}{"project_id": id})
	if err != nil {
		return err
	}

	batch := database.NewAtomicBatch()
	addStorylineDeletes(batch, deliverableIDs)
	batch.Add(`DELETE deliverable WHERE project_id = $project_id`, map[string]interface{}{"project_id": id})
	batch.Add(`DELETE type::thing($tb, $id)`, map[string]interface{}{"tb": tableProject, "id": id})

	return batch.Execute(ctx, r.db)
}

func projectFields(project *model.Project) map[string]interface{} {
	return map[string]interface{}{
		"name":              project.Name,
		"start_date":        project.StartDate,
		"end_date":          project.EndDate,
		"client_id":         project.ClientID,
		"client_owner_id":   project.ClientOwnerID,
		"internal_owner_id": project.InternalOwnerID,
		"organisation_id":   project.OrganisationID,
		"description":       project.Description,
		"status":            string(project.Status),
	}
}
