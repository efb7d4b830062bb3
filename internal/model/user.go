package model

import "encoding/json"

// UserRole represents the role of a user in the system
type UserRole string

const (
	UserRoleUser  UserRole = "user"  // Default role
	UserRoleAdmin UserRole = "admin" // Can seed and manage every organisation
)

// Password length limits
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// User represents a consultant account
type User struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	OrganisationID string   `json:"organisation_id,omitempty"`
	Role           UserRole `json:"role"`
	Hash           *string  `json:"-"` // Never expose password hash
	Audit
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// UserView is the read model of a user with the records they own
type UserView struct {
	*User
	ClientIDs      []string `json:"client_ids"`
	ProjectIDs     []string `json:"project_ids"`
	DeliverableIDs []string `json:"deliverable_ids"`
}

// CreateUserRequest represents a request to create a user
type CreateUserRequest struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	OrganisationID string   `json:"organisation_id,omitempty"`
	Role           UserRole `json:"role,omitempty"`
	Password       string   `json:"password,omitempty"`
}

// Validate checks if the create request is valid
func (r *CreateUserRequest) Validate() []FieldError {
	var errors []FieldError
	errors = requireName(errors, "name", r.Name)
	errors = checkEmail(errors, r.Email, true)
	errors = checkID(errors, "organisation_id", r.OrganisationID, false)
	errors = checkRole(errors, r.Role)
	if r.Password != "" {
		errors = checkPassword(errors, r.Password)
	}
	return errors
}

// UpdateUserRequest carries the id in the body. Nil fields are left unchanged.
type UpdateUserRequest struct {
	ID             json.RawMessage `json:"id"`
	Name           *string         `json:"name,omitempty"`
	Email          *string         `json:"email,omitempty"`
	OrganisationID *string         `json:"organisation_id,omitempty"`
	Role           *UserRole       `json:"role,omitempty"`
	Password       *string         `json:"password,omitempty"`
}

// Validate checks the update request and returns the parsed identifier
func (r *UpdateUserRequest) Validate() (string, []FieldError) {
	var errors []FieldError
	id, fe := ParseRawID("id", r.ID)
	if fe != nil {
		errors = append(errors, *fe)
	}
	errors = optionalName(errors, "name", r.Name)
	if r.Email != nil {
		errors = checkEmail(errors, *r.Email, true)
	}
	if r.OrganisationID != nil {
		errors = checkID(errors, "organisation_id", *r.OrganisationID, false)
	}
	if r.Role != nil {
		errors = checkRole(errors, *r.Role)
	}
	if r.Password != nil {
		errors = checkPassword(errors, *r.Password)
	}
	return id, errors
}

// LoginRequest represents email and password credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks if the login request is valid
func (r *LoginRequest) Validate() []FieldError {
	var errors []FieldError
	if r.Email == "" {
		errors = append(errors, FieldError{Field: "email", Message: "email is required"})
	}
	if r.Password == "" {
		errors = append(errors, FieldError{Field: "password", Message: "password is required"})
	}
	return errors
}

// TokenResponse is returned after a successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	User        *User  `json:"user"`
}

// TokenClaims represents extracted JWT claims
type TokenClaims struct {
	UserID         string   `json:"user_id"`
	Email          string   `json:"email"`
	OrganisationID string   `json:"organisation_id,omitempty"`
	Role           UserRole `json:"role"`
}

func checkEmail(errors []FieldError, email string, required bool) []FieldError {
	email = NormalizeEmail(email)
	if email == "" {
		if required {
			return append(errors, FieldError{Field: "email", Message: "email is required"})
		}
		return errors
	}
	if !IsValidEmail(email) {
		return append(errors, FieldError{Field: "email", Message: "email must be a valid email address"})
	}
	return errors
}

func checkRole(errors []FieldError, role UserRole) []FieldError {
	switch role {
	case "", UserRoleUser, UserRoleAdmin:
		return errors
	}
	return append(errors, FieldError{Field: "role", Message: "role must be 'user' or 'admin'"})
}

func checkPassword(errors []FieldError, password string) []FieldError {
	if len(password) < MinPasswordLength {
		return append(errors, FieldError{Field: "password", Message: "password must be at least 8 characters"})
	}
	if len(password) > MaxPasswordLength {
		return append(errors, FieldError{Field: "password", Message: "password must be at most 128 characters"})
	}
	return errors
}
