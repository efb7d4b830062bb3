package handler

import (
	"context"
	"net/http"

	"github.com/cigno/platform/internal/middleware"
	"github.com/cigno/platform/internal/model"
)

// OrganisationService defines the organisation operations the handler needs
type OrganisationService interface {
	Create(ctx context.Context, actorID string, req *model.CreateOrganisationRequest) (*model.Organisation, error)
	Get(ctx context.Context, id string) (*model.Organisation, error)
	List(ctx context.Context, includeInactive bool) ([]*model.Organisation, error)
	Update(ctx context.Context, actorID string, req *model.UpdateOrganisationRequest) (*model.Organisation, error)
	Delete(ctx context.Context, actorID, id string) error
}

// OrganisationHandler handles organisation HTTP requests
type OrganisationHandler struct {
	svc OrganisationService
}

// NewOrganisationHandler creates a new organisation handler
func NewOrganisationHandler(svc OrganisationService) *OrganisationHandler {
	return &OrganisationHandler{svc: svc}
}

// List handles GET /api/organisations
func (h *OrganisationHandler) List(w http.ResponseWriter, r *http.Request) {
	includeInactive, ok := queryBool(w, r, "include_inactive")
	if !ok {
		return
	}

	orgs, err := h.svc.List(r.Context(), includeInactive)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, orgs)
}

// Create handles POST /api/organisations
func (h *OrganisationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateOrganisationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	org, err := h.svc.Create(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusCreated, org)
}

// Get handles GET /api/organisations/{id}
func (h *OrganisationHandler) Get(w http.ResponseWriter, r *http.Request) {
	org, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, org)
}

// Update handles PUT /api/organisations - the id travels in the body
func (h *OrganisationHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.UpdateOrganisationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	org, err := h.svc.Update(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, org)
}

// Delete handles DELETE /api/organisations/{id} - a soft delete
func (h *OrganisationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteNoContent(w)
}

// requireUser returns the authenticated user id or writes a 401
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return "", false
	}
	return userID, true
}
