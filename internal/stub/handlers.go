package stub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nextreadapp/nextread-client/internal/domain"
	domainerrors "github.com/nextreadapp/nextread-client/internal/errors"
	"github.com/nextreadapp/nextread-client/internal/id"
	"github.com/nextreadapp/nextread-client/internal/normalize"
)

type contextKey string

const userKey contextKey = "stub.user"

// requireAuth resolves the bearer token to a user and stores it on the
// request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" || raw == r.Header.Get("Authorization") {
			s.writeError(w, domainerrors.CodeUnauthorized, "missing bearer token")
			return
		}

		userID, err := s.parseToken(raw)
		if err != nil {
			s.writeError(w, domainerrors.CodeUnauthorized, "invalid token")
			return
		}

		s.state.mu.Lock()
		u, ok := s.state.users[userID]
		s.state.mu.Unlock()
		if !ok {
			s.writeError(w, domainerrors.CodeUnauthorized, "unknown user")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

func (s *Server) currentUser(r *http.Request) *stubUser {
	u, _ := r.Context().Value(userKey).(*stubUser)
	return u
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, domainerrors.CodeValidation, "malformed request body")
		return false
	}
	return true
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Email == "" || len(req.Password) < 8 || req.Nickname == "" {
		s.writeError(w, domainerrors.CodeValidation, "email, password (8+ chars) and nickname are required")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if _, exists := s.state.lookupEmail(req.Email); exists {
		s.writeError(w, domainerrors.CodeConflict, "email already registered")
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		s.writeError(w, domainerrors.CodeServer, "internal error")
		return
	}

	s.state.nextID++
	u := &stubUser{
		ID:               fmt.Sprintf("user-%d", s.state.nextID),
		Email:            req.Email,
		PasswordHash:     hash,
		Nickname:         req.Nickname,
		FirstTime:        true,
		VerificationCode: fmt.Sprintf("%06d", 100000+s.state.nextID),
		seenKeys:         make(map[string]string),
	}
	s.state.insert(u)

	s.logger.Info("registered user", "email", u.Email, "code", u.VerificationCode)

	// The real backend emails the code. The stub hands it back in the
	// message so development flows stay self-contained.
	s.writeJSON(w, http.StatusCreated, map[string]string{
		"userId":  u.ID,
		"message": "verification code: " + u.VerificationCode,
	})
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	u, ok := s.state.lookupEmail(req.Email)
	if !ok || u.VerificationCode != req.Code {
		s.writeError(w, domainerrors.CodeValidation, "invalid verification code")
		return
	}
	u.Verified = true

	// Verification logs the user in implicitly.
	token, err := s.mintToken(u)
	if err != nil {
		s.logger.Error("failed to mint token", "error", err)
		s.writeError(w, domainerrors.CodeServer, "internal error")
		return
	}

	firstTime := u.FirstTime
	s.writeJSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"firstTime": firstTime,
		"message":   "account verified",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	u, ok := s.state.lookupEmail(req.Email)
	if !ok || !verifyPassword(u.PasswordHash, req.Password) {
		s.writeError(w, domainerrors.CodeUnauthorized, "invalid email or password")
		return
	}
	if !u.Verified {
		s.writeError(w, domainerrors.CodeForbidden, "account not verified")
		return
	}

	token, err := s.mintToken(u)
	if err != nil {
		s.logger.Error("failed to mint token", "error", err)
		s.writeError(w, domainerrors.CodeServer, "internal error")
		return
	}

	firstTime := u.FirstTime
	s.writeJSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"firstTime": firstTime,
	})
}

func (s *Server) profileOf(u *stubUser) map[string]any {
	return map[string]any{
		"nickname":  u.Nickname,
		"avatarUrl": u.AvatarURL,
		"firstTime": u.FirstTime,
	}
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u := s.currentUser(r)

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	s.writeJSON(w, http.StatusOK, s.profileOf(u))
}

func (s *Server) handleUpdateNickname(w http.ResponseWriter, r *http.Request) {
	u := s.currentUser(r)

	var req struct {
		Nickname string `json:"nickname"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Nickname) < 2 {
		s.writeError(w, domainerrors.CodeValidation, "nickname must be at least 2 characters")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	u.Nickname = req.Nickname
	s.writeJSON(w, http.StatusOK, s.profileOf(u))
}

func (s *Server) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	u := s.currentUser(r)

	// The avatar endpoint takes the raw URL as the request body.
	body, err := io.ReadAll(io.LimitReader(r.Body, 4096))
	if err != nil {
		s.writeError(w, domainerrors.CodeValidation, "unreadable request body")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	u.AvatarURL = strings.TrimSpace(string(body))
	s.writeJSON(w, http.StatusOK, s.profileOf(u))
}

func (s *Server) handleGetSurvey(w http.ResponseWriter, r *http.Request) {
	u := s.currentUser(r)

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	genreIDs := u.Survey.GenreIDs
	if genreIDs == nil {
		genreIDs = []int{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"pace":           u.Survey.Pace,
		"selectedGenres": genreIDs,
	})
}

type updateSurveyRequest struct {
	Pace      domain.Pace `json:"pace"`
	GenresIDs []int       `json:"genresIds"`
}

func (s *Server) handleUpdateSurvey(w http.ResponseWriter, r *http.Request) {
	u := s.currentUser(r)

	var req updateSurveyRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !req.Pace.Valid() {
		s.writeError(w, domainerrors.CodeValidation, fmt.Sprintf("unknown pace %q", req.Pace))
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	u.Survey = surveyRecord{Pace: req.Pace, GenreIDs: req.GenresIDs, Set: true}
	// Completing the survey ends onboarding.
	u.FirstTime = false
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "survey saved"})
}

type addBookRequest struct {
	domain.Book
	Status domain.ReadingStatus `json:"status"`
	Rating int                  `json:"rating"`
}

func (s *Server) handleAddBook(w http.ResponseWriter, r *http.Request) {
	u := s.currentUser(r)

	var req addBookRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Title == "" {
		s.writeError(w, domainerrors.CodeValidation, "title is required")
		return
	}
	if !req.Status.Valid() {
		s.writeError(w, domainerrors.CodeValidation, fmt.Sprintf("unknown reading status %q", req.Status))
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	// Replay of a previously seen idempotency key returns the original
	// entry instead of creating a duplicate.
	if key := r.Header.Get("Idempotency-Key"); key != "" {
		if entryID, seen := u.seenKeys[key]; seen {
			for _, e := range u.Library {
				if e.ID == entryID {
					s.writeJSON(w, http.StatusOK, e)
					return
				}
			}
		}
	}

	book := req.Book
	if book.ID == "" {
		book.ID = id.MustGenerate("book")
	}
	entry := domain.ShelfEntry{
		ID:     id.MustGenerate("entry"),
		Book:   book,
		Status: req.Status,
		Rating: req.Rating,
	}
	u.Library = append(u.Library, entry)

	if key := r.Header.Get("Idempotency-Key"); key != "" {
		u.seenKeys[key] = entry.ID
	}

	s.writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	u := s.currentUser(r)

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	entries := u.Library
	if entries == nil {
		entries = []domain.ShelfEntry{}
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleMoveBook(w http.ResponseWriter, r *http.Request) {
	u := s.currentUser(r)
	entryID := chi.URLParam(r, "id")

	var req struct {
		Status domain.ReadingStatus `json:"status"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if !req.Status.Valid() {
		s.writeError(w, domainerrors.CodeValidation, fmt.Sprintf("unknown reading status %q", req.Status))
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	for i := range u.Library {
		if u.Library[i].ID == entryID {
			u.Library[i].Status = req.Status
			s.writeJSON(w, http.StatusOK, u.Library[i])
			return
		}
	}
	s.writeError(w, domainerrors.CodeNotFound, "book not found in library")
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	u := s.currentUser(r)

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	owned := make(map[string]bool, len(u.Library))
	for _, e := range u.Library {
		owned[normalize.TitleKey(e.Book.Title)] = true
	}

	recs := []domain.Recommendation{}
	for _, b := range catalog {
		if owned[normalize.TitleKey(b.Title)] {
			continue
		}
		recs = append(recs, domain.Recommendation{ID: "rec-" + b.ID, Book: b})
	}
	s.writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, genres)
}
