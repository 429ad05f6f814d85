package survey

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nextreadapp/nextread-client/internal/domain"
	"github.com/nextreadapp/nextread-client/internal/id"
	"github.com/nextreadapp/nextread-client/internal/services"
)

// BookWriter is the slice of the user-book service the saga needs.
type BookWriter interface {
	AddBook(ctx context.Context, req services.AddBookRequest, idempotencyKey string) (domain.ShelfEntry, error)
}

// SessionUpdater is the slice of the session manager the saga needs.
type SessionUpdater interface {
	UpdateUser(patch domain.SessionPatch)
	RefreshUser(ctx context.Context)
}

// Saga flushes a finished draft to the backend as a sequence of independent
// writes: one survey update, then one book-add per read and abandoned book,
// strictly sequential. The per-book writes are not transactional, so the
// saga remembers which writes already succeeded; a retry after a partial
// failure re-issues only the unwritten items, each carrying a stable
// idempotency key the backend can de-duplicate on.
type Saga struct {
	surveys SurveyAPI
	books   BookWriter
	session SessionUpdater
	logger  *slog.Logger

	surveyWritten bool
	writtenBooks  map[string]bool
	keys          map[string]string
}

// NewSaga creates a submission saga.
func NewSaga(surveys SurveyAPI, books BookWriter, session SessionUpdater, logger *slog.Logger) *Saga {
	return &Saga{
		surveys:      surveys,
		books:        books,
		session:      session,
		logger:       logger,
		writtenBooks: make(map[string]bool),
		keys:         make(map[string]string),
	}
}

// Run performs the completion sequence for the draft. On any failure the
// remaining sub-steps are skipped and the error returned; the wizard stays
// on the confirmation step so the user can retry with the same saga.
// On success it optimistically flips firstTime locally, refreshes the
// session from the backend, and invokes navigate.
func (s *Saga) Run(ctx context.Context, draft domain.SurveyDraft, navigate func()) error {
	attempt := uuid.NewString()
	log := s.logger.With("attempt", attempt)

	if !s.surveyWritten {
		req := services.UpdateSurveyRequest{
			Pace:      draft.Pace,
			GenresIDs: draft.GenreIDs,
		}
		if err := s.surveys.UpdateSurvey(ctx, req); err != nil {
			log.Warn("survey update failed", "error", err)
			return fmt.Errorf("update survey: %w", err)
		}
		s.surveyWritten = true
	}

	for i, rb := range draft.ReadBooks {
		req := services.AddBookRequest{
			Book:   rb.Book,
			Status: domain.StatusRead,
			Rating: rb.Rating,
		}
		if err := s.writeBook(ctx, fmt.Sprintf("read/%d", i), req); err != nil {
			log.Warn("read book write failed", "title", rb.Book.Title, "error", err)
			return fmt.Errorf("add read book: %w", err)
		}
	}

	for i, b := range draft.AbandonedBooks {
		req := services.AddBookRequest{
			Book:   b,
			Status: domain.StatusAbandoned,
		}
		if err := s.writeBook(ctx, fmt.Sprintf("abandoned/%d", i), req); err != nil {
			log.Warn("abandoned book write failed", "title", b.Title, "error", err)
			return fmt.Errorf("add abandoned book: %w", err)
		}
	}

	// Optimistic local flip ahead of the authoritative refresh.
	done := false
	s.session.UpdateUser(domain.SessionPatch{FirstTime: &done})
	s.session.RefreshUser(ctx)

	log.Info("survey submitted",
		"read_books", len(draft.ReadBooks),
		"abandoned_books", len(draft.AbandonedBooks),
	)

	if navigate != nil {
		navigate()
	}
	return nil
}

// writeBook issues one book-add, skipping items that already succeeded in a
// previous attempt. The idempotency key is minted once per item and reused
// across retries.
func (s *Saga) writeBook(ctx context.Context, slot string, req services.AddBookRequest) error {
	if s.writtenBooks[slot] {
		return nil
	}
	key, ok := s.keys[slot]
	if !ok {
		key = id.MustGenerate("ubook")
		s.keys[slot] = key
	}
	if _, err := s.books.AddBook(ctx, req, key); err != nil {
		return err
	}
	s.writtenBooks[slot] = true
	return nil
}
