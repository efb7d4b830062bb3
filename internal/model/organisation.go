package model

import "encoding/json"

// Billing holds invoicing details of an organisation
type Billing struct {
	Plan      string `json:"plan,omitempty"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"address,omitempty"`
	VATNumber string `json:"vat_number,omitempty"`
}

// Organisation is the top-level tenant owning users and clients
type Organisation struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Industry  string   `json:"industry,omitempty"`
	AdminID   string   `json:"admin_id,omitempty"`
	MemberIDs []string `json:"member_ids"`
	Billing   *Billing `json:"billing,omitempty"`
	IsActive  bool     `json:"is_active"`
	Audit
}

// CreateOrganisationRequest represents a request to create an organisation
type CreateOrganisationRequest struct {
	Name      string   `json:"name"`
	Industry  string   `json:"industry,omitempty"`
	AdminID   string   `json:"admin_id,omitempty"`
	MemberIDs []string `json:"member_ids,omitempty"`
	Billing   *Billing `json:"billing,omitempty"`
}

// Validate checks if the create request is valid
func (r *CreateOrganisationRequest) Validate() []FieldError {
	var errors []FieldError
	errors = requireName(errors, "name", r.Name)
	errors = checkID(errors, "admin_id", r.AdminID, false)
	errors = checkIDs(errors, "member_ids", r.MemberIDs)
	errors = checkBilling(errors, r.Billing)
	return errors
}

// UpdateOrganisationRequest carries the id in the body. Nil fields are left unchanged.
type UpdateOrganisationRequest struct {
	ID        json.RawMessage `json:"id"`
	Name      *string         `json:"name,omitempty"`
	Industry  *string         `json:"industry,omitempty"`
	AdminID   *string         `json:"admin_id,omitempty"`
	MemberIDs []string        `json:"member_ids,omitempty"`
	Billing   *Billing        `json:"billing,omitempty"`
	IsActive  *bool           `json:"is_active,omitempty"`
}

// Validate checks the update request and returns the parsed identifier
func (r *UpdateOrganisationRequest) Validate() (string, []FieldError) {
	var errors []FieldError
	id, fe := ParseRawID("id", r.ID)
	if fe != nil {
		errors = append(errors, *fe)
	}
	errors = optionalName(errors, "name", r.Name)
	if r.AdminID != nil {
		errors = checkID(errors, "admin_id", *r.AdminID, false)
	}
	errors = checkIDs(errors, "member_ids", r.MemberIDs)
	errors = checkBilling(errors, r.Billing)
	return id, errors
}

func checkBilling(errors []FieldError, b *Billing) []FieldError {
	if b == nil {
		return errors
	}
	if b.Email != "" && !IsValidEmail(NormalizeEmail(b.Email)) {
		errors = append(errors, FieldError{Field: "billing.email", Message: "billing.email must be a valid email address"})
	}
	return checkLength(errors, "billing.address", b.Address, MaxShortTextLength)
}
