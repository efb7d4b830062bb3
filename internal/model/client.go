package model

import "encoding/json"

// Client is a company the consultancy works for
type Client struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Industry       string `json:"industry,omitempty"`
	Location       string `json:"location,omitempty"`
	OwnerID        string `json:"owner_id,omitempty"`
	OrganisationID string `json:"organisation_id"`
	Audit
}

// ClientView is the read model of a client with its contacts and projects
type ClientView struct {
	*Client
	Contacts []*Contact `json:"contacts"`
	Projects []*Project `json:"projects"`
}

// CreateClientRequest represents a request to create a client
type CreateClientRequest struct {
	Name           string `json:"name"`
	Industry       string `json:"industry,omitempty"`
	Location       string `json:"location,omitempty"`
	OwnerID        string `json:"owner_id,omitempty"`
	OrganisationID string `json:"organisation_id"`
}

// Validate checks if the create request is valid
func (r *CreateClientRequest) Validate() []FieldError {
	var errors []FieldError
	errors = requireName(errors, "name", r.Name)
	errors = checkID(errors, "organisation_id", r.OrganisationID, true)
	errors = checkID(errors, "owner_id", r.OwnerID, false)
	errors = checkLength(errors, "location", r.Location, MaxShortTextLength)
	return errors
}

// UpdateClientRequest carries the id in the body. Nil fields are left unchanged.
type UpdateClientRequest struct {
	ID       json.RawMessage `json:"id"`
	Name     *string         `json:"name,omitempty"`
	Industry *string         `json:"industry,omitempty"`
	Location *string         `json:"location,omitempty"`
	OwnerID  *string         `json:"owner_id,omitempty"`
}

// Validate checks the update request and returns the parsed identifier
func (r *UpdateClientRequest) Validate() (string, []FieldError) {
	var errors []FieldError
	id, fe := ParseRawID("id", r.ID)
	if fe != nil {
		errors = append(errors, *fe)
	}
	errors = optionalName(errors, "name", r.Name)
	if r.OwnerID != nil {
		errors = checkID(errors, "owner_id", *r.OwnerID, false)
	}
	if r.Location != nil {
		errors = checkLength(errors, "location", *r.Location, MaxShortTextLength)
	}
	return id, errors
}

// Contact is a person at a client
type Contact struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role,omitempty"`
	ClientID string `json:"client_id"`
	Audit
}

// CreateContactRequest represents a request to create a contact
type CreateContactRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role,omitempty"`
	ClientID string `json:"client_id"`
}

// Validate checks if the create request is valid
func (r *CreateContactRequest) Validate() []FieldError {
	var errors []FieldError
	errors = requireName(errors, "name", r.Name)
	errors = checkEmail(errors, r.Email, false)
	errors = checkID(errors, "client_id", r.ClientID, true)
	errors = checkLength(errors, "phone", r.Phone, 50)
	return errors
}

// UpdateContactRequest carries the id in the body. Nil fields are left unchanged.
type UpdateContactRequest struct {
	ID    json.RawMessage `json:"id"`
	Name  *string         `json:"name,omitempty"`
	Email *string         `json:"email,omitempty"`
	Phone *string         `json:"phone,omitempty"`
	Role  *string         `json:"role,omitempty"`
}

// Validate checks the update request and returns the parsed identifier
func (r *UpdateContactRequest) Validate() (string, []FieldError) {
	var errors []FieldError
	id, fe := ParseRawID("id", r.ID)
	if fe != nil {
		errors = append(errors, *fe)
	}
	errors = optionalName(errors, "name", r.Name)
	if r.Email != nil {
		errors = checkEmail(errors, *r.Email, false)
	}
	if r.Phone != nil {
		errors = checkLength(errors, "phone", *r.Phone, 50)
	}
	return id, errors
}
