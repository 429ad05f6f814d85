// Package services contains the thin request/response wrappers over the
// backend API. No business logic lives here - just field mapping; the
// backend owns recommendation generation, survey scoring, and cataloging.
package services

import (
	"context"
	"log/slog"

	"github.com/nextreadapp/nextread-client/internal/api"
	"github.com/nextreadapp/nextread-client/internal/errors"
	"github.com/nextreadapp/nextread-client/internal/validation"
)

// AuthService wraps the backend's authentication endpoints.
type AuthService struct {
	client    *api.Client
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(client *api.Client, logger *slog.Logger) *AuthService {
	return &AuthService{
		client:    client,
		validator: validation.New(),
		logger:    logger,
	}
}

// Credentials are the login inputs.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the sign-up payload. Registering does not log the user in;
// verification (an emailed code) happens separately.
type Registration struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Nickname string `json:"nickname" validate:"required,min=2,max=40"`
}

// Verification carries the emailed code back to the backend.
type Verification struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

// AuthResult is the {token, firstTime}-shaped payload login and (sometimes)
// verify return. FirstTime is a pointer because verify responses may omit it.
type AuthResult struct {
	Token     string `json:"token"`
	FirstTime *bool  `json:"firstTime"`
	Message   string `json:"message"`
}

// RegisterResult is the backend's registration acknowledgement.
type RegisterResult struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// Login exchanges credentials for a token. Credential rejection comes back
// as an INVALID_CREDENTIALS error, propagated unmodified for display.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	if err := s.validator.Validate(creds); err != nil {
		return AuthResult{}, err
	}

	var result AuthResult
	if err := s.client.Post(ctx, "/auth/login", creds, &result); err != nil {
		if errors.Is(err, errors.ErrUnauthorized) {
			return AuthResult{}, errors.InvalidCredentials("invalid email or password")
		}
		return AuthResult{}, err
	}
	return result, nil
}

// Register submits a new account. The backend answers with a message only;
// no token is issued until the account is verified.
func (s *AuthService) Register(ctx context.Context, reg Registration) (RegisterResult, error) {
	if err := s.validator.Validate(reg); err != nil {
		return RegisterResult{}, err
	}

	var result RegisterResult
	if err := s.client.Post(ctx, "/auth/register", reg, &result); err != nil {
		return RegisterResult{}, err
	}
	return result, nil
}

// Verify confirms an account. When the backend includes a token in the
// response the caller treats it as an implicit login.
func (s *AuthService) Verify(ctx context.Context, v Verification) (AuthResult, error) {
	if err := s.validator.Validate(v); err != nil {
		return AuthResult{}, err
	}

	var result AuthResult
	if err := s.client.Post(ctx, "/auth/verify", v, &result); err != nil {
		return AuthResult{}, err
	}
	return result, nil
}
