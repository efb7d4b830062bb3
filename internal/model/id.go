package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const invalidIDMessage = "must be a 24-character hexadecimal identifier"

// NewID returns a fresh object identifier as 24 lower-case hex characters
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether s is a well-formed object identifier
func IsValidID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}

// NormalizeID trims and lower-cases an identifier
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// ValidateID checks the shape of an identifier taken from a path or a
// string-typed body field. It returns nil when the identifier is usable.
func ValidateID(field, id string) *FieldError {
	if id == "" {
		return &FieldError{Field: field, Message: field + " is required"}
	}
	if !IsValidID(id) {
		return &FieldError{Field: field, Message: field + " " + invalidIDMessage}
	}
	return nil
}

// ValidateOptionalID is ValidateID for references that may be left empty
func ValidateOptionalID(field, id string) *FieldError {
	if id == "" {
		return nil
	}
	return ValidateID(field, id)
}

// ParseRawID validates an identifier that arrived as raw JSON. Anything that
// is not a JSON string (true, 42, {}, null) is rejected with a field error
// before it can reach a query.
func ParseRawID(field string, raw json.RawMessage) (string, *FieldError) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", &FieldError{Field: field, Message: field + " is required"}
	}
	if trimmed[0] != '"' {
		return "", &FieldError{Field: field, Message: field + " must be a string, got " + jsonKind(trimmed)}
	}

	var id string
	if err := json.Unmarshal(trimmed, &id); err != nil {
		return "", &FieldError{Field: field, Message: field + " must be a string"}
	}
	id = NormalizeID(id)
	if fe := ValidateID(field, id); fe != nil {
		return "", fe
	}
	return id, nil
}

func jsonKind(raw []byte) string {
	switch raw[0] {
	case 't', 'f':
		return "boolean"
	case '{':
		return "object"
	case '[':
		return "array"
	default:
		return "number"
	}
}
