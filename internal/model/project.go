package model

import "encoding/json"

// ProjectStatus is the lifecycle stage of a project
type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "planning"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
)

// IsValid reports whether s is a known project status
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusActive, ProjectStatusOnHold, ProjectStatusCompleted:
		return true
	}
	return false
}

// Project is an engagement for a client
type Project struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	StartDate       string        `json:"start_date,omitempty"`
	EndDate         string        `json:"end_date,omitempty"`
	ClientID        string        `json:"client_id,omitempty"`
	ClientOwnerID   string        `json:"client_owner_id,omitempty"`
	InternalOwnerID string        `json:"internal_owner_id,omitempty"`
	OrganisationID  string        `json:"organisation_id,omitempty"`
	Description     string        `json:"description,omitempty"`
	Status          ProjectStatus `json:"status"`
	Audit
}

// ProjectFilter narrows a project listing. Empty fields are ignored.
type ProjectFilter struct {
	ClientID       string
	OrganisationID string
}

// ProjectView is the read model of a project with its deliverables
type ProjectView struct {
	*Project
	Deliverables []*Deliverable `json:"deliverables"`
}

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	Name            string        `json:"name"`
	StartDate       string        `json:"start_date,omitempty"`
	EndDate         string        `json:"end_date,omitempty"`
	ClientID        string        `json:"client_id,omitempty"`
	ClientOwnerID   string        `json:"client_owner_id,omitempty"`
	InternalOwnerID string        `json:"internal_owner_id,omitempty"`
	OrganisationID  string        `json:"organisation_id,omitempty"`
	Description     string        `json:"description,omitempty"`
	Status          ProjectStatus `json:"status,omitempty"`
}

// Validate checks if the create request is valid
func (r *CreateProjectRequest) Validate() []FieldError {
	var errors []FieldError
	errors = requireName(errors, "name", r.Name)
	errors = checkID(errors, "client_id", r.ClientID, false)
	errors = checkID(errors, "client_owner_id", r.ClientOwnerID, false)
	errors = checkID(errors, "internal_owner_id", r.InternalOwnerID, false)
	errors = checkID(errors, "organisation_id", r.OrganisationID, false)
	errors = checkLength(errors, "description", r.Description, MaxDescriptionLength)
	errors = checkProjectStatus(errors, r.Status)
	errors = checkDateRange(errors, r.StartDate, r.EndDate)
	return errors
}

// UpdateProjectRequest carries the id in the body. Nil fields are left unchanged.
type UpdateProjectRequest struct {
	ID              json.RawMessage `json:"id"`
	Name            *string         `json:"name,omitempty"`
	StartDate       *string         `json:"start_date,omitempty"`
	EndDate         *string         `json:"end_date,omitempty"`
	ClientID        *string         `json:"client_id,omitempty"`
	ClientOwnerID   *string         `json:"client_owner_id,omitempty"`
	InternalOwnerID *string         `json:"internal_owner_id,omitempty"`
	Description     *string         `json:"description,omitempty"`
	Status          *ProjectStatus  `json:"status,omitempty"`
}

// Validate checks the update request and returns the parsed identifier.
// The date range is checked again against stored values by the service.
func (r *UpdateProjectRequest) Validate() (string, []FieldError) {
	var errors []FieldError
	id, fe := ParseRawID("id", r.ID)
	if fe != nil {
		errors = append(errors, *fe)
	}
	errors = optionalName(errors, "name", r.Name)
	if r.ClientID != nil {
		errors = checkID(errors, "client_id", *r.ClientID, false)
	}
	if r.ClientOwnerID != nil {
		errors = checkID(errors, "client_owner_id", *r.ClientOwnerID, false)
	}
	if r.InternalOwnerID != nil {
		errors = checkID(errors, "internal_owner_id", *r.InternalOwnerID, false)
	}
	if r.Description != nil {
		errors = checkLength(errors, "description", *r.Description, MaxDescriptionLength)
	}
	if r.Status != nil {
		errors = checkProjectStatus(errors, *r.Status)
	}
	if r.StartDate != nil {
		errors = checkDate(errors, "start_date", *r.StartDate)
	}
	if r.EndDate != nil {
		errors = checkDate(errors, "end_date", *r.EndDate)
	}
	return id, errors
}

// Apply copies the set fields of the request onto p
func (r *UpdateProjectRequest) Apply(p *Project) {
	setString(&p.Name, r.Name)
	setString(&p.StartDate, r.StartDate)
	setString(&p.EndDate, r.EndDate)
	setString(&p.ClientID, r.ClientID)
	setString(&p.ClientOwnerID, r.ClientOwnerID)
	setString(&p.InternalOwnerID, r.InternalOwnerID)
	setString(&p.Description, r.Description)
	if r.Status != nil {
		p.Status = *r.Status
	}
}

// CheckDateRange validates both dates and that end is not before start
func CheckDateRange(start, end string) []FieldError {
	return checkDateRange(nil, start, end)
}

func checkDateRange(errors []FieldError, start, end string) []FieldError {
	errors = checkDate(errors, "start_date", start)
	errors = checkDate(errors, "end_date", end)
	if start == "" || end == "" {
		return errors
	}
	s, okStart := ParseDate(start)
	e, okEnd := ParseDate(end)
	if okStart && okEnd && e.Before(s) {
		errors = append(errors, FieldError{Field: "end_date", Message: "end_date must not be before start_date"})
	}
	return errors
}

func checkProjectStatus(errors []FieldError, status ProjectStatus) []FieldError {
	if status == "" || status.IsValid() {
		return errors
	}
	return append(errors, FieldError{Field: "status", Message: "status must be one of planning, active, on_hold, completed"})
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
