package handler

import (
	"context"
	"net/http"

	"github.com/cigno/platform/internal/model"
)

// ClientService defines the client operations the handler needs
type ClientService interface {
	Create(ctx context.Context, actorID string, req *model.CreateClientRequest) (*model.Client, error)
	Get(ctx context.Context, id string) (*model.ClientView, error)
	List(ctx context.Context, organisationID string) ([]*model.Client, error)
	Update(ctx context.Context, actorID string, req *model.UpdateClientRequest) (*model.Client, error)
	Delete(ctx context.Context, id string) error
}

// ContactService defines the contact operations the handler needs
type ContactService interface {
	Create(ctx context.Context, actorID string, req *model.CreateContactRequest) (*model.Contact, error)
	Get(ctx context.Context, id string) (*model.Contact, error)
	List(ctx context.Context, clientID string) ([]*model.Contact, error)
	Update(ctx context.Context, actorID string, req *model.UpdateContactRequest) (*model.Contact, error)
	Delete(ctx context.Context, id string) error
}

// ClientHandler handles client and contact HTTP requests
type ClientHandler struct {
	clients  ClientService
	contacts ContactService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clients ClientService, contacts ContactService) *ClientHandler {
	return &ClientHandler{clients: clients, contacts: contacts}
}

// List handles GET /api/clients?organisation_id=
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.List(r.Context(), firstQuery(r, "organisation_id", "organisationId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, clients)
}

// Create handles POST /api/clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateClientRequest
	if !decodeBody(w, r, &req) {
		return
	}

	client, err := h.clients.Create(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusCreated, client)
}

// Get handles GET /api/clients/{id} - includes contacts and projects
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	client, err := h.clients.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, client)
}

// Update handles PUT /api/clients
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.UpdateClientRequest
	if !decodeBody(w, r, &req) {
		return
	}

	client, err := h.clients.Update(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, client)
}

// Delete handles DELETE /api/clients/{id} - cascades to contacts, projects and deliverables
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	if err := h.clients.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteNoContent(w)
}

// ListContacts handles GET /api/contacts?client_id=
func (h *ClientHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.List(r.Context(), firstQuery(r, "client_id", "clientId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, contacts)
}

// CreateContact handles POST /api/contacts
func (h *ClientHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateContactRequest
	if !decodeBody(w, r, &req) {
		return
	}

	contact, err := h.contacts.Create(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusCreated, contact)
}

// GetContact handles GET /api/contacts/{id}
func (h *ClientHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	contact, err := h.contacts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, contact)
}

// UpdateContact handles PUT /api/contacts
func (h *ClientHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.UpdateContactRequest
	if !decodeBody(w, r, &req) {
		return
	}

	contact, err := h.contacts.Update(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, contact)
}

// DeleteContact handles DELETE /api/contacts/{id}
func (h *ClientHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	if err := h.contacts.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteNoContent(w)
}
