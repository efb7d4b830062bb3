package handler

import (
	"context"
	"net/http"

	"github.com/cigno/platform/internal/model"
)

// UserService defines the user operations the handler needs
type UserService interface {
	Create(ctx context.Context, actorID string, req *model.CreateUserRequest) (*model.User, error)
	Get(ctx context.Context, id string) (*model.UserView, error)
	List(ctx context.Context, organisationID string) ([]*model.User, error)
	Update(ctx context.Context, actorID string, req *model.UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

// UserHandler handles user HTTP requests
type UserHandler struct {
	svc UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// List handles GET /api/users?organisation_id=
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context(), firstQuery(r, "organisation_id", "organisationId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, users)
}

// Create handles POST /api/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.svc.Create(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusCreated, user)
}

// Get handles GET /api/users/{id} - includes the ids of owned records
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, user)
}

// Update handles PUT /api/users
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.UpdateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.svc.Update(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteNoContent(w)
}
