package handler

import (
	"context"
	"net/http"

	"github.com/cigno/platform/internal/model"
)

// DeliverableService defines the deliverable operations the handler needs
type DeliverableService interface {
	Create(ctx context.Context, actorID string, req *model.CreateDeliverableRequest) (*model.Deliverable, error)
	Get(ctx context.Context, id string) (*model.Deliverable, error)
	List(ctx context.Context, projectID string) ([]*model.Deliverable, error)
	Update(ctx context.Context, actorID string, req *model.UpdateDeliverableRequest) (*model.Deliverable, error)
	Delete(ctx context.Context, id string) error
}

// DeliverableHandler handles deliverable HTTP requests
type DeliverableHandler struct {
	svc DeliverableService
}

// NewDeliverableHandler creates a new deliverable handler
func NewDeliverableHandler(svc DeliverableService) *DeliverableHandler {
	return &DeliverableHandler{svc: svc}
}

// List handles GET /api/deliverables?project_id=
func (h *DeliverableHandler) List(w http.ResponseWriter, r *http.Request) {
	deliverables, err := h.svc.List(r.Context(), firstQuery(r, "project_id", "projectId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, deliverables)
}

// Create handles POST /api/deliverables
func (h *DeliverableHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateDeliverableRequest
	if !decodeBody(w, r, &req) {
		return
	}

	deliverable, err := h.svc.Create(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusCreated, deliverable)
}

// Get handles GET /api/deliverables/{id}
func (h *DeliverableHandler) Get(w http.ResponseWriter, r *http.Request) {
	deliverable, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, deliverable)
}

// Update handles PUT /api/deliverables
func (h *DeliverableHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.UpdateDeliverableRequest
	if !decodeBody(w, r, &req) {
		return
	}

	deliverable, err := h.svc.Update(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, deliverable)
}

// Delete handles DELETE /api/deliverables/{id}
func (h *DeliverableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteNoContent(w)
}
