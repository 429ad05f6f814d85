package services

import (
	"context"
	"log/slog"

	"github.com/nextreadapp/nextread-client/internal/api"
	"github.com/nextreadapp/nextread-client/internal/validation"
)

// UserService wraps the backend's profile endpoints.
type UserService struct {
	client    *api.Client
	validator *validation.Validator
	logger    *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(client *api.Client, logger *slog.Logger) *UserService {
	return &UserService{
		client:    client,
		validator: validation.New(),
		logger:    logger,
	}
}

// Profile is the GET /users/me response. FirstTime is a pointer so the
// session manager can tell "profile says false" apart from "profile is silent".
type Profile struct {
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatarUrl"`
	FirstTime *bool  `json:"firstTime"`
}

// Me fetches the authenticated user's profile.
func (s *UserService) Me(ctx context.Context) (Profile, error) {
	var p Profile
	if err := s.client.Get(ctx, "/users/me", &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

type nicknameRequest struct {
	Nickname string `json:"nickname" validate:"required,min=2,max=40"`
}

// UpdateNickname changes the user's nickname and returns the updated profile.
func (s *UserService) UpdateNickname(ctx context.Context, nickname string) (Profile, error) {
	req := nicknameRequest{Nickname: nickname}
	if err := s.validator.Validate(req); err != nil {
		return Profile{}, err
	}

	var p Profile
	if err := s.client.Put(ctx, "/users/nickname", req, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// UpdateAvatar changes the user's avatar. The endpoint takes the raw URL
// string as its request body, not a JSON object.
func (s *UserService) UpdateAvatar(ctx context.Context, avatarURL string) (Profile, error) {
	var p Profile
	if err := s.client.PutRaw(ctx, "/users/avatar", avatarURL, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}
