package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/cigno/platform/internal/model"
	"github.com/cigno/platform/internal/service"
)

// InsightGenerator forwards prompts to the custom agent
type InsightGenerator interface {
	Generate(ctx context.Context, req *model.InsightRequest) (*model.InsightResponse, error)
}

// Seeder loads and removes the demo dataset
type Seeder interface {
	Seed(ctx context.Context, actorID string, req *model.SeedRequest) (*model.SeedResult, error)
	Clean(ctx context.Context) (*model.SeedCleanResult, error)
}

// HealthChecker reports dependency health
type HealthChecker interface {
	Check(ctx context.Context) *model.HealthStatus
}

// AssistHandler serves the agent proxy, seeding and health endpoints
type AssistHandler struct {
	insights InsightGenerator
	seeder   Seeder
	health   HealthChecker
}

// AssistHandlerConfig holds the handler dependencies
type AssistHandlerConfig struct {
	Insights InsightGenerator
	Seeder   Seeder
	Health   HealthChecker
}

// NewAssistHandler creates a new assist handler
func NewAssistHandler(cfg AssistHandlerConfig) *AssistHandler {
	return &AssistHandler{
		insights: cfg.Insights,
		seeder:   cfg.Seeder,
		health:   cfg.Health,
	}
}

// Insights handles POST /api/agent/insights.
// Agent failures are surfaced as 502 with the remote status and body.
func (h *AssistHandler) Insights(w http.ResponseWriter, r *http.Request) {
	var req model.InsightRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.insights.Generate(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, result)
}

// Seed handles POST /api/seed. The body is optional.
func (h *AssistHandler) Seed(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.SeedRequest
	if err := DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, decodeError(err))
		return
	}

	result, err := h.seeder.Seed(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusCreated, result)
}

// CleanSeed handles DELETE /api/seed
func (h *AssistHandler) CleanSeed(w http.ResponseWriter, r *http.Request) {
	result, err := h.seeder.Clean(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, result)
}

// Health handles GET /api/health: 200 when the database answers, 503 otherwise
func (h *AssistHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.health.Check(r.Context())

	code := http.StatusOK
	if status.Status != service.HealthOK {
		code = http.StatusServiceUnavailable
	}
	WriteJSON(w, code, DataResponse{Success: code == http.StatusOK, Data: status})
}
