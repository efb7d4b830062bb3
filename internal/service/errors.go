package service

import (
	"errors"
	"strings"

	"github.com/cigno/platform/internal/model"
)

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Validation Errors =====
var (
	ErrValidation = errors.New("validation failed")
	ErrInvalidID  = errors.New("invalid identifier")
)

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrAdminRequired      = errors.New("admin role required")
)

// ===== Not Found Errors =====
var (
	ErrOrganisationNotFound = errors.New("organisation not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrClientNotFound       = errors.New("client not found")
	ErrContactNotFound      = errors.New("contact not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrDeliverableNotFound  = errors.New("deliverable not found")
	ErrStorylineNotFound    = errors.New("storyline not found")
)

// ===== Agent Errors =====
var (
	ErrAgentUnavailable = errors.New("custom agent unavailable")
	ErrAgentFailed      = errors.New("custom agent request failed")
)

// ===== Seed Errors =====
var (
	ErrAlreadySeeded = errors.New("seed data already exists; pass reset to replace it")
)

// ValidationError carries the offending fields of a rejected request.
// It matches ErrValidation, and ErrInvalidID when any field holds a bad identifier.
type ValidationError struct {
	Fields []model.FieldError
	badID  bool
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is matches the validation sentinels
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation || (target == ErrInvalidID && e.badID)
}

// newValidationError returns nil when fields is empty
func newValidationError(fields []model.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	ve := &ValidationError{Fields: fields}
	for _, f := range fields {
		if isIDField(f.Field) {
			ve.badID = true
		}
	}
	return ve
}

func isIDField(field string) bool {
	return field == "id" || strings.HasSuffix(field, "_id") || strings.HasSuffix(field, "_ids")
}

// invalidID wraps an identifier field error
func invalidID(fe *model.FieldError) error {
	return &ValidationError{Fields: []model.FieldError{*fe}, badID: true}
}

// checkPathID normalises and validates an identifier taken from a path or query string
func checkPathID(field, id string) (string, error) {
	id = model.NormalizeID(id)
	if fe := model.ValidateID(field, id); fe != nil {
		return "", invalidID(fe)
	}
	return id, nil
}

// FieldErrors extracts the field errors of a validation error, if any
func FieldErrors(err error) []model.FieldError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
