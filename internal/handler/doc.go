// Package handler provides HTTP request handlers for the Cigno Platform API.
//
// Each handler struct holds the narrow service interface it needs, so tests
// can drive it with hand-written mocks or with real services over in-memory
// repositories.
//
// # Response Format
//
// Success responses use WriteData:
//
//	{"success": true, "data": ...}
//
// Failures go through MapServiceError and are written as model.APIError:
//
//	{"success": false, "error": "...", "code": 400, "errors": [{"field": "id", "message": "..."}]}
//
// Update endpoints take the record id in the body. A non-string id is a 400
// with a field error and never reaches the database.
//
// # HTML
//
// StorylineHandler.View renders GET /deliverables/{id}/storyline from the
// embedded templates/storyline.html.
package handler
