package model

import "encoding/json"

// DeliverableStatus is the review stage of a deliverable
type DeliverableStatus string

const (
	DeliverableStatusDraft    DeliverableStatus = "draft"
	DeliverableStatusInReview DeliverableStatus = "in_review"
	DeliverableStatusFinal    DeliverableStatus = "final"
)

// IsValid reports whether s is a known deliverable status
func (s DeliverableStatus) IsValid() bool {
	switch s {
	case DeliverableStatusDraft, DeliverableStatusInReview, DeliverableStatusFinal:
		return true
	}
	return false
}

// Deliverable is a document or presentation produced within a project
type Deliverable struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	DueDate   string            `json:"due_date,omitempty"`
	Brief     string            `json:"brief,omitempty"`
	Notes     string            `json:"notes,omitempty"`
	Status    DeliverableStatus `json:"status"`
	ProjectID string            `json:"project_id"`
	Audit
}

// CreateDeliverableRequest represents a request to create a deliverable
type CreateDeliverableRequest struct {
	Name      string            `json:"name"`
	DueDate   string            `json:"due_date,omitempty"`
	Brief     string            `json:"brief,omitempty"`
	Notes     string            `json:"notes,omitempty"`
	Status    DeliverableStatus `json:"status,omitempty"`
	ProjectID string            `json:"project_id"`
}

// Validate checks if the create request is valid
func (r *CreateDeliverableRequest) Validate() []FieldError {
	var errors []FieldError
	errors = requireName(errors, "name", r.Name)
	errors = checkID(errors, "project_id", r.ProjectID, true)
	errors = checkDate(errors, "due_date", r.DueDate)
	errors = checkLength(errors, "brief", r.Brief, MaxDescriptionLength)
	errors = checkLength(errors, "notes", r.Notes, MaxDescriptionLength)
	errors = checkDeliverableStatus(errors, r.Status)
	return errors
}

// UpdateDeliverableRequest carries the id in the body. Nil fields are left unchanged.
type UpdateDeliverableRequest struct {
	ID      json.RawMessage    `json:"id"`
	Name    *string            `json:"name,omitempty"`
	DueDate *string            `json:"due_date,omitempty"`
	Brief   *string            `json:"brief,omitempty"`
	Notes   *string            `json:"notes,omitempty"`
	Status  *DeliverableStatus `json:"status,omitempty"`
}

// Validate checks the update request and returns the parsed identifier
func (r *UpdateDeliverableRequest) Validate() (string, []FieldError) {
	var errors []FieldError
	id, fe := ParseRawID("id", r.ID)
	if fe != nil {
		errors = append(errors, *fe)
	}
	errors = optionalName(errors, "name", r.Name)
	if r.DueDate != nil {
		errors = checkDate(errors, "due_date", *r.DueDate)
	}
	if r.Brief != nil {
		errors = checkLength(errors, "brief", *r.Brief, MaxDescriptionLength)
	}
	if r.Notes != nil {
		errors = checkLength(errors, "notes", *r.Notes, MaxDescriptionLength)
	}
	if r.Status != nil {
		errors = checkDeliverableStatus(errors, *r.Status)
	}
	return id, errors
}

// Apply copies the set fields of the request onto d
func (r *UpdateDeliverableRequest) Apply(d *Deliverable) {
	setString(&d.Name, r.Name)
	setString(&d.DueDate, r.DueDate)
	setString(&d.Brief, r.Brief)
	setString(&d.Notes, r.Notes)
	if r.Status != nil {
		d.Status = *r.Status
	}
}

func checkDeliverableStatus(errors []FieldError, status DeliverableStatus) []FieldError {
	if status == "" || status.IsValid() {
		return errors
	}
	return append(errors, FieldError{Field: "status", Message: "status must be one of draft, in_review, final"})
}
