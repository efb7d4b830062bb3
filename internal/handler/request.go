package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/cigno/platform/internal/model"
)

// decodeBody decodes the request body into v, writing a 400 on failure
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := DecodeJSON(r, v); err != nil {
		WriteError(w, decodeError(err))
		return false
	}
	return true
}

// queryBool parses an optional boolean query parameter, writing a 400 on failure
func queryBool(w http.ResponseWriter, r *http.Request, name string) (bool, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		WriteError(w, model.NewValidationError([]model.FieldError{{
			Field:   name,
			Message: name + " must be true or false",
		}}))
		return false, false
	}
	return v, true
}

// firstQuery returns the first non-empty value among the given query parameter names
func firstQuery(r *http.Request, names ...string) string {
	q := r.URL.Query()
	for _, name := range names {
		if v := strings.TrimSpace(q.Get(name)); v != "" {
			return v
		}
	}
	return ""
}
