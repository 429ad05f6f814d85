package services

import (
	"context"
	"log/slog"

	"github.com/nextreadapp/nextread-client/internal/api"
	"github.com/nextreadapp/nextread-client/internal/domain"
)

// CatalogService wraps the read-only catalog endpoints: the per-session
// recommendation pool and the genre list for the survey.
type CatalogService struct {
	client *api.Client
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(client *api.Client, logger *slog.Logger) *CatalogService {
	return &CatalogService{client: client, logger: logger}
}

// Recommendations fetches a fresh candidate pool for the current user.
func (s *CatalogService) Recommendations(ctx context.Context) ([]domain.Recommendation, error) {
	var recs []domain.Recommendation
	if err := s.client.Get(ctx, "/recommendations", &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// Genres fetches the selectable genre list.
func (s *CatalogService) Genres(ctx context.Context) ([]domain.Genre, error) {
	var genres []domain.Genre
	if err := s.client.Get(ctx, "/genres", &genres); err != nil {
		return nil, err
	}
	return genres, nil
}
