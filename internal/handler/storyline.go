package handler

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/cigno/platform/internal/model"
)

//go:embed templates/storyline.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/storyline.html"))

// StorylineService defines the storyline operations the handler needs
type StorylineService interface {
	GetByDeliverable(ctx context.Context, deliverableID string) (*model.Storyline, error)
	Deliverable(ctx context.Context, deliverableID string) (*model.Deliverable, error)
	Save(ctx context.Context, actorID string, req *model.SaveStorylineRequest) (*model.Storyline, error)
	Generate(ctx context.Context, actorID, deliverableID string, req *model.GenerateStorylineRequest) (*model.StorylineResult, error)
}

// StorylineHandler serves storylines as JSON and as an HTML page
type StorylineHandler struct {
	svc StorylineService
}

// NewStorylineHandler creates a new storyline handler
func NewStorylineHandler(svc StorylineService) *StorylineHandler {
	return &StorylineHandler{svc: svc}
}

// Get handles GET /api/storylines?deliverableId=
func (h *StorylineHandler) Get(w http.ResponseWriter, r *http.Request) {
	storyline, err := h.svc.GetByDeliverable(r.Context(), firstQuery(r, "deliverableId", "deliverable_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, storyline)
}

// Save handles PUT /api/storylines
func (h *StorylineHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.SaveStorylineRequest
	if !decodeBody(w, r, &req) {
		return
	}

	storyline, err := h.svc.Save(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, storyline)
}

// Generate handles POST /api/deliverables/{id}/storyline/generate.
// An empty body is accepted.
func (h *StorylineHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.GenerateStorylineRequest
	if err := DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, decodeError(err))
		return
	}

	result, err := h.svc.Generate(r.Context(), userID, r.PathValue("id"), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, result)
}

// storylinePage is the view model of the storyline page
type storylinePage struct {
	Title           string
	DeliverableName string
	Status          string
	DueDate         string
	Source          string
	Sections        []model.Section
}

// errorPage is the view model of the error page
type errorPage struct {
	Title   string
	Message string
}

// View handles GET /deliverables/{id}/storyline and renders the sections as HTML
func (h *StorylineHandler) View(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deliverableID := r.PathValue("id")

	deliverable, err := h.svc.Deliverable(ctx, deliverableID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	storyline, err := h.svc.GetByDeliverable(ctx, deliverable.ID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	title := storyline.Title
	if title == "" {
		title = deliverable.Name
	}
	page := storylinePage{
		Title:           title,
		DeliverableName: deliverable.Name,
		Status:          string(deliverable.Status),
		DueDate:         deliverable.DueDate,
		Source:          string(storyline.Source),
		Sections:        storyline.Sections,
	}
	renderPage(w, r, http.StatusOK, "storyline", page)
}

func (h *StorylineHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := MapServiceError(err)
	title := http.StatusText(apiErr.Status())
	if apiErr.Status() == http.StatusNotFound {
		title = "Deliverable not found"
	}
	renderPage(w, r, apiErr.Status(), "error", errorPage{Title: title, Message: apiErr.Message})
}

// renderPage executes into a buffer so a template failure never leaves a half-written page
func renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.ErrorContext(r.Context(), "render page failed", slog.String("template", name), slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
