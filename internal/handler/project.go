package handler

import (
	"context"
	"net/http"

	"github.com/cigno/platform/internal/model"
)

// ProjectService defines the project operations the handler needs
type ProjectService interface {
	Create(ctx context.Context, actorID string, req *model.CreateProjectRequest) (*model.Project, error)
	Get(ctx context.Context, id string) (*model.ProjectView, error)
	List(ctx context.Context, filter model.ProjectFilter) ([]*model.Project, error)
	Update(ctx context.Context, actorID string, req *model.UpdateProjectRequest) (*model.Project, error)
	Delete(ctx context.Context, id string) error
}

// ProjectAnalyzer turns a free-text description into structured project data
type ProjectAnalyzer interface {
	Analyze(ctx context.Context, req *model.AnalyzeProjectRequest) (*model.AnalyzeProjectResponse, error)
}

// ProjectHandler handles project HTTP requests
type ProjectHandler struct {
	svc      ProjectService
	analyzer ProjectAnalyzer
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(svc ProjectService, analyzer ProjectAnalyzer) *ProjectHandler {
	return &ProjectHandler{svc: svc, analyzer: analyzer}
}

// List handles GET /api/projects?client_id=&organisation_id=
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := model.ProjectFilter{
		ClientID:       firstQuery(r, "client_id", "clientId"),
		OrganisationID: firstQuery(r, "organisation_id", "organisationId"),
	}

	projects, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, projects)
}

// Create handles POST /api/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	project, err := h.svc.Create(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusCreated, project)
}

// Get handles GET /api/projects/{id} - includes deliverables
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, project)
}

// Update handles PUT /api/projects
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.UpdateProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	project, err := h.svc.Update(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, project)
}

// Delete handles DELETE /api/projects/{id} - cascades to deliverables
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteNoContent(w)
}

// Analyze handles POST /api/projects/analyze.
// Remote failures degrade to local analysis and surface as warnings.
func (h *ProjectHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req model.AnalyzeProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, result)
}
