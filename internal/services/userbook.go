package services

import (
	"context"
	"log/slog"

	"github.com/nextreadapp/nextread-client/internal/api"
	"github.com/nextreadapp/nextread-client/internal/domain"
	"github.com/nextreadapp/nextread-client/internal/errors"
)

// UserBookService wraps the backend's user-library endpoints.
type UserBookService struct {
	client *api.Client
	logger *slog.Logger
}

// NewUserBookService creates a new user-book service.
func NewUserBookService(client *api.Client, logger *slog.Logger) *UserBookService {
	return &UserBookService{client: client, logger: logger}
}

// AddBookRequest creates a shelf entry from book fields plus shelf placement.
type AddBookRequest struct {
	domain.Book
	Status domain.ReadingStatus `json:"status"`
	Rating int                  `json:"rating,omitempty"`
}

// AddBook records a book in the user's library. The idempotency key lets the
// backend de-duplicate retried survey submissions; pass "" to omit it.
func (s *UserBookService) AddBook(ctx context.Context, req AddBookRequest, idempotencyKey string) (domain.ShelfEntry, error) {
	if req.Title == "" {
		return domain.ShelfEntry{}, errors.Validation("title is required")
	}
	if !req.Status.Valid() {
		return domain.ShelfEntry{}, errors.Validationf("unknown reading status %q", req.Status)
	}

	var opts []api.RequestOption
	if idempotencyKey != "" {
		opts = append(opts, api.WithHeader("Idempotency-Key", idempotencyKey))
	}

	var entry domain.ShelfEntry
	if err := s.client.Post(ctx, "/users/books", req, &entry, opts...); err != nil {
		return domain.ShelfEntry{}, err
	}
	return entry, nil
}

// ListBooks fetches the user's full library.
func (s *UserBookService) ListBooks(ctx context.Context) ([]domain.ShelfEntry, error) {
	var entries []domain.ShelfEntry
	if err := s.client.Get(ctx, "/users/books", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

type moveBookRequest struct {
	Status domain.ReadingStatus `json:"status"`
}

// MoveBook reassigns a library book to another shelf.
func (s *UserBookService) MoveBook(ctx context.Context, entryID string, status domain.ReadingStatus) (domain.ShelfEntry, error) {
	if !status.Valid() {
		return domain.ShelfEntry{}, errors.Validationf("unknown reading status %q", status)
	}

	var entry domain.ShelfEntry
	if err := s.client.Put(ctx, "/users/books/"+entryID+"/status", moveBookRequest{Status: status}, &entry); err != nil {
		return domain.ShelfEntry{}, err
	}
	return entry, nil
}
