package services

import (
	"context"
	"log/slog"

	"github.com/nextreadapp/nextread-client/internal/api"
	"github.com/nextreadapp/nextread-client/internal/domain"
)

// SurveyService wraps the backend's survey endpoints.
type SurveyService struct {
	client *api.Client
	logger *slog.Logger
}

// NewSurveyService creates a new survey service.
func NewSurveyService(client *api.Client, logger *slog.Logger) *SurveyService {
	return &SurveyService{client: client, logger: logger}
}

// SurveyState is the stored pace/genre selection.
type SurveyState struct {
	Pace           domain.Pace `json:"pace"`
	SelectedGenres []int       `json:"selectedGenres"`
}

// UpdateSurveyRequest is the PUT /survey payload. The genre field name
// follows the backend contract.
type UpdateSurveyRequest struct {
	Pace      domain.Pace `json:"pace"`
	GenresIDs []int       `json:"genresIds"`
}

// GetSurvey fetches the user's stored survey selections.
func (s *SurveyService) GetSurvey(ctx context.Context) (SurveyState, error) {
	var state SurveyState
	if err := s.client.Get(ctx, "/survey", &state); err != nil {
		return SurveyState{}, err
	}
	return state, nil
}

// UpdateSurvey stores pace and genre selections.
func (s *SurveyService) UpdateSurvey(ctx context.Context, req UpdateSurveyRequest) error {
	return s.client.Put(ctx, "/survey", req, nil)
}
