package stub

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextreadapp/nextread-client/internal/api"
	"github.com/nextreadapp/nextread-client/internal/domain"
	"github.com/nextreadapp/nextread-client/internal/errors"
	"github.com/nextreadapp/nextread-client/internal/services"
	"github.com/nextreadapp/nextread-client/internal/session"
	"github.com/nextreadapp/nextread-client/internal/survey"
)

type memTokens struct {
	raw string
}

func (m *memTokens) Save(raw string) error { m.raw = raw; return nil }
func (m *memTokens) Load() (string, bool)  { return m.raw, m.raw != "" }
func (m *memTokens) Clear() error          { m.raw = ""; return nil }
func (m *memTokens) Token() (string, bool) { return m.Load() }

// harness is a full client stack wired against an in-process stub backend.
type harness struct {
	tokens  *memTokens
	manager *session.Manager
	users   *services.UserService
	surveys *services.SurveyService
	books   *services.UserBookService
	catalog *services.CatalogService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := slog.New(slog.DiscardHandler)

	server := httptest.NewServer(New(log))
	t.Cleanup(server.Close)

	tokens := &memTokens{}
	client, err := api.New(server.URL, tokens, log)
	require.NoError(t, err)

	auth := services.NewAuthService(client, log)
	users := services.NewUserService(client, log)

	return &harness{
		tokens:  tokens,
		manager: session.NewManager(auth, users, tokens, log),
		users:   users,
		surveys: services.NewSurveyService(client, log),
		books:   services.NewUserBookService(client, log),
		catalog: services.NewCatalogService(client, log),
	}
}

// signUp registers and verifies an account, leaving the manager logged in.
func (h *harness) signUp(t *testing.T, email string) {
	t.Helper()
	ctx := context.Background()

	result, err := h.manager.Register(ctx, services.Registration{
		Email:    email,
		Password: "hunter2hunter2",
		Nickname: "reader",
	})
	require.NoError(t, err)

	code := strings.TrimPrefix(result.Message, "verification code: ")
	require.NotEqual(t, result.Message, code, "stub hands the code back in the message")

	outcome, err := h.manager.Verify(ctx, services.Verification{Email: email, Code: code})
	require.NoError(t, err)
	require.True(t, outcome.AutoLogin, "verification logs in implicitly")
}

func TestRegisterVerifyLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// Login before verification is rejected.
	reg, err := h.manager.Register(ctx, services.Registration{
		Email:    "ada@example.com",
		Password: "hunter2hunter2",
		Nickname: "ada",
	})
	require.NoError(t, err)
	require.NotEmpty(t, reg.UserID)

	_, err = h.manager.Login(ctx, services.Credentials{Email: "ada@example.com", Password: "hunter2hunter2"})
	require.Error(t, err)
	var domainErr *errors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, errors.CodeForbidden, domainErr.Code)

	// Wrong code is rejected.
	_, err = h.manager.Verify(ctx, services.Verification{Email: "ada@example.com", Code: "000000"})
	require.Error(t, err)

	// Right code logs in with onboarding pending.
	code := strings.TrimPrefix(reg.Message, "verification code: ")
	outcome, err := h.manager.Verify(ctx, services.Verification{Email: "ada@example.com", Code: code})
	require.NoError(t, err)
	assert.True(t, outcome.AutoLogin)
	assert.True(t, outcome.FirstTime)

	st := h.manager.Snapshot()
	require.True(t, st.LoggedIn())
	assert.Equal(t, "ada@example.com", st.Session.Email)
	assert.Equal(t, "ada", st.Session.Nickname)
	assert.True(t, st.Session.FirstTime)

	// A fresh login with bad credentials maps to INVALID_CREDENTIALS.
	h.manager.Logout()
	_, err = h.manager.Login(ctx, services.Credentials{Email: "ada@example.com", Password: "wrong-password"})
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))

	// And with the right ones restores the session.
	firstTime, err := h.manager.Login(ctx, services.Credentials{Email: "ada@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.True(t, firstTime)
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "ada@example.com")

	_, err := h.manager.Register(context.Background(), services.Registration{
		Email:    "ada@example.com",
		Password: "hunter2hunter2",
		Nickname: "impostor",
	})
	require.Error(t, err)
	var domainErr *errors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, errors.CodeConflict, domainErr.Code)
}

func TestSurveySubmissionEndsOnboarding(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "ada@example.com")
	ctx := context.Background()
	require.True(t, h.manager.Snapshot().Session.FirstTime)

	log := slog.New(slog.DiscardHandler)
	saga := survey.NewSaga(h.surveys, h.books, h.manager, log)
	draft := domain.SurveyDraft{
		Pace:     domain.PaceFast,
		GenreIDs: []int{1, 2},
		ReadBooks: []domain.RatedBook{
			{Book: domain.Book{Title: "Piranesi", Authors: []string{"Susanna Clarke"}}, Rating: 5},
		},
		AbandonedBooks: []domain.Book{{Title: "The Name of the Wind"}},
	}

	navigated := false
	require.NoError(t, saga.Run(ctx, draft, func() { navigated = true }))
	assert.True(t, navigated)

	// The authoritative refresh observed the backend's firstTime flip.
	st := h.manager.Snapshot()
	require.True(t, st.LoggedIn())
	assert.False(t, st.Session.FirstTime)

	// Survey answers are stored.
	state, err := h.surveys.GetSurvey(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PaceFast, state.Pace)
	assert.Equal(t, []int{1, 2}, state.SelectedGenres)

	// The books landed on the right shelves.
	entries, err := h.books.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	lib := domain.Library{Entries: entries}
	require.Len(t, lib.ByStatus(domain.StatusRead), 1)
	assert.Equal(t, 5, lib.ByStatus(domain.StatusRead)[0].Rating)
	require.Len(t, lib.ByStatus(domain.StatusAbandoned), 1)
}

func TestAddBook_IdempotencyKeyDeduplicates(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "ada@example.com")
	ctx := context.Background()

	req := services.AddBookRequest{
		Book:   domain.Book{Title: "Station Eleven"},
		Status: domain.StatusToRead,
	}

	first, err := h.books.AddBook(ctx, req, "key-1")
	require.NoError(t, err)
	replay, err := h.books.AddBook(ctx, req, "key-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, replay.ID, "same key yields the original entry")

	other, err := h.books.AddBook(ctx, req, "key-2")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID, "different key creates a new entry")

	entries, err := h.books.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestMoveBook(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "ada@example.com")
	ctx := context.Background()

	entry, err := h.books.AddBook(ctx, services.AddBookRequest{
		Book:   domain.Book{Title: "Piranesi"},
		Status: domain.StatusToRead,
	}, "")
	require.NoError(t, err)

	moved, err := h.books.MoveBook(ctx, entry.ID, domain.StatusRead)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRead, moved.Status)

	_, err = h.books.MoveBook(ctx, "entry-missing", domain.StatusRead)
	require.Error(t, err)
	var domainErr *errors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, errors.CodeNotFound, domainErr.Code)
}

func TestRecommendationsExcludeOwnedTitles(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "ada@example.com")
	ctx := context.Background()

	before, err := h.catalog.Recommendations(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, before)

	// Adding a catalog title removes it from the pool.
	_, err = h.books.AddBook(ctx, services.AddBookRequest{
		Book:   domain.Book{Title: before[0].Book.Title},
		Status: domain.StatusToRead,
	}, "")
	require.NoError(t, err)

	after, err := h.catalog.Recommendations(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before)-1)
	for _, rec := range after {
		assert.NotEqual(t, before[0].Book.Title, rec.Book.Title)
	}
}

func TestProfileUpdates(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "ada@example.com")
	ctx := context.Background()

	p, err := h.users.UpdateNickname(ctx, "lovelace")
	require.NoError(t, err)
	assert.Equal(t, "lovelace", p.Nickname)

	p, err = h.users.UpdateAvatar(ctx, "https://img.nextread.app/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://img.nextread.app/a.png", p.AvatarURL)

	me, err := h.users.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "lovelace", me.Nickname)
	assert.Equal(t, "https://img.nextread.app/a.png", me.AvatarURL)
}

func TestGenresArePublic(t *testing.T) {
	h := newHarness(t)

	genres, err := h.catalog.Genres(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, genres)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	h := newHarness(t)

	_, err := h.books.ListBooks(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}
