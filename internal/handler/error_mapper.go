package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cigno/platform/internal/agent"
	"github.com/cigno/platform/internal/database"
	"github.com/cigno/platform/internal/model"
	"github.com/cigno/platform/internal/service"
)

// MapServiceError converts a service error to the failure envelope.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.APIError {
	if err == nil {
		return nil
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	// ===== Validation Errors → 400 =====
	if fields := service.FieldErrors(err); len(fields) > 0 {
		return model.NewValidationError(fields)
	}

	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidID):
		return model.NewBadRequestError(err.Error())

	// ===== Authentication Errors → 401 =====
	case errors.Is(err, service.ErrInvalidCredentials):
		return model.NewUnauthorizedError(err.Error())

	// ===== Authorization Errors → 403 =====
	case errors.Is(err, service.ErrAdminRequired):
		return model.NewForbiddenError(err.Error())

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrOrganisationNotFound):
		return model.NewNotFoundError("organisation")
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("user")
	case errors.Is(err, service.ErrClientNotFound):
		return model.NewNotFoundError("client")
	case errors.Is(err, service.ErrContactNotFound):
		return model.NewNotFoundError("contact")
	case errors.Is(err, service.ErrProjectNotFound):
		return model.NewNotFoundError("project")
	case errors.Is(err, service.ErrDeliverableNotFound):
		return model.NewNotFoundError("deliverable")
	case errors.Is(err, service.ErrStorylineNotFound):
		return model.NewNotFoundError("storyline")
	case errors.Is(err, database.ErrNotFound):
		return model.NewNotFoundError("record")

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrEmailAlreadyExists),
		errors.Is(err, service.ErrAlreadySeeded),
		errors.Is(err, database.ErrDuplicate):
		return model.NewConflictError(err.Error())

	// ===== Agent Errors → 502 / 503 =====
	case errors.Is(err, service.ErrAgentFailed):
		return model.NewBadGatewayError(err.Error())
	case errors.Is(err, service.ErrAgentUnavailable),
		errors.Is(err, agent.ErrNotConfigured):
		return model.NewServiceUnavailableError(err.Error())

	// ===== Database Availability → 503 =====
	case errors.Is(err, database.ErrNotConfigured),
		errors.Is(err, database.ErrConnection):
		return model.NewServiceUnavailableError(err.Error())
	}

	// Unexpected failures keep their message attached
	return model.NewInternalError(err.Error())
}

// writeServiceError maps err and writes it, logging server-side failures
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := MapServiceError(err)
	if apiErr.Status() >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", apiErr.Status()),
			slog.String("error", err.Error()),
		)
	}
	WriteError(w, apiErr)
}
