package model

import (
	"net/mail"
	"strings"
	"time"
)

// Audit holds the bookkeeping fields shared by every stored record
type Audit struct {
	CreatedBy string    `json:"created_by,omitempty"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
	Seeded    bool      `json:"seeded,omitempty"`
	SeedBatch string    `json:"seed_batch,omitempty"`
}

// DateLayout is the calendar date format used for start, end and due dates
const DateLayout = "2006-01-02"

// Field length limits
const (
	MaxNameLength        = 200
	MaxDescriptionLength = 10000
	MaxShortTextLength   = 500
)

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail reports whether email is a bare address
func IsValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// ParseDate parses a calendar date, accepting an RFC 3339 timestamp too
func ParseDate(s string) (time.Time, bool) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func requireName(errors []FieldError, field, value string) []FieldError {
	value = strings.TrimSpace(value)
	if value == "" {
		return append(errors, FieldError{Field: field, Message: field + " is required"})
	}
	if len(value) > MaxNameLength {
		return append(errors, FieldError{Field: field, Message: field + " must be 200 characters or less"})
	}
	return errors
}

func optionalName(errors []FieldError, field string, value *string) []FieldError {
	if value == nil {
		return errors
	}
	return requireName(errors, field, *value)
}

func checkID(errors []FieldError, field, id string, required bool) []FieldError {
	var fe *FieldError
	if required {
		fe = ValidateID(field, id)
	} else {
		fe = ValidateOptionalID(field, id)
	}
	if fe != nil {
		return append(errors, *fe)
	}
	return errors
}

// checkIDs validates a list of identifiers as the services store it:
// trimmed and lower-cased, with blank entries dropped
func checkIDs(errors []FieldError, field string, ids []string) []FieldError {
	for _, id := range ids {
		id = NormalizeID(id)
		if id == "" {
			continue
		}
		if !IsValidID(id) {
			return append(errors, FieldError{Field: field, Message: field + " must contain only 24-character hexadecimal identifiers"})
		}
	}
	return errors
}

func checkDate(errors []FieldError, field, value string) []FieldError {
	if value == "" {
		return errors
	}
	if _, ok := ParseDate(value); !ok {
		return append(errors, FieldError{Field: field, Message: field + " must be a date in YYYY-MM-DD format"})
	}
	return errors
}

func checkLength(errors []FieldError, field, value string, max int) []FieldError {
	if len(value) > max {
		return append(errors, FieldError{Field: field, Message: field + " is too long"})
	}
	return errors
}
