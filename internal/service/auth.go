package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cigno/platform/internal/model"
	"github.com/cigno/platform/pkg/jwt"
)

// CredentialRepository looks up the users that may sign in
type CredentialRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// TokenSigner issues access tokens. *jwt.Service implements it.
type TokenSigner interface {
	Sign(claims jwt.Claims) (string, error)
	GetExpiration() time.Duration
}

// AuthService handles sign-in and access token issuance
type AuthService struct {
	users  CredentialRepository
	tokens TokenSigner
}

// NewAuthService creates a new auth service
func NewAuthService(users CredentialRepository, tokens TokenSigner) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Login authenticates a user with email/password
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	if err := newValidationError(req.Validate()); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, model.NormalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	// Accounts created without a password cannot sign in
	if user.Hash == nil || *user.Hash == "" {
		return nil, ErrInvalidCredentials
	}
	if !checkPassword(req.Password, *user.Hash) {
		return nil, ErrInvalidCredentials
	}

	return s.IssueToken(user)
}

// IssueTokenFor mints a token for the user with the given id or email address
func (s *AuthService) IssueTokenFor(ctx context.Context, idOrEmail string) (*model.TokenResponse, error) {
	var (
		user *model.User
		err  error
	)
	if model.IsValidEmail(model.NormalizeEmail(idOrEmail)) {
		user, err = s.users.GetByEmail(ctx, model.NormalizeEmail(idOrEmail))
	} else {
		id, idErr := checkPathID("id", idOrEmail)
		if idErr != nil {
			return nil, idErr
		}
		user, err = s.users.GetByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.IssueToken(user)
}

// IssueToken signs an access token for user
func (s *AuthService) IssueToken(user *model.User) (*model.TokenResponse, error) {
	token, err := s.tokens.Sign(jwt.Claims{
		UserID:         user.ID,
		Email:          user.Email,
		OrganisationID: user.OrganisationID,
		Role:           string(user.Role),
	})
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokens.GetExpiration().Seconds()),
		User:        user,
	}, nil
}
