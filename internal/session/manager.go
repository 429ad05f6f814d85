// Package session owns the in-memory session and the persisted bearer
// token. It is the single source of truth for "who is logged in" and
// "do they still need onboarding"; every other component reads session
// state through a Manager and none may mutate it directly.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nextreadapp/nextread-client/internal/domain"
	"github.com/nextreadapp/nextread-client/internal/errors"
	"github.com/nextreadapp/nextread-client/internal/services"
	"github.com/nextreadapp/nextread-client/internal/token"
)

// AuthAPI is the slice of the auth service the manager needs.
type AuthAPI interface {
	Login(ctx context.Context, creds services.Credentials) (services.AuthResult, error)
	Register(ctx context.Context, reg services.Registration) (services.RegisterResult, error)
	Verify(ctx context.Context, v services.Verification) (services.AuthResult, error)
}

// ProfileAPI is the slice of the user service the manager needs.
type ProfileAPI interface {
	Me(ctx context.Context) (services.Profile, error)
}

// TokenStore abstracts the persisted bearer token.
type TokenStore interface {
	Save(raw string) error
	Load() (string, bool)
	Clear() error
}

// State is an immutable snapshot of the session. Loading is true while an
// initial verification is still in flight; consumers render a neutral
// loading view and make no redirect decisions until it clears.
type State struct {
	Session *domain.Session
	Loading bool
}

// LoggedIn reports whether a session is present.
func (s State) LoggedIn() bool {
	return s.Session != nil
}

// VerifyOutcome is the result of Manager.Verify. When the backend included a
// token in its verification response, AutoLogin is true and FirstTime is
// meaningful; otherwise Response carries the raw payload for the caller to
// interpret.
type VerifyOutcome struct {
	AutoLogin bool
	FirstTime bool
	Response  services.AuthResult
}

// Manager derives, holds, and mutates the session. Construct one explicitly
// and inject it at the root of the application; there is no package-level
// singleton, so tests can run independent sessions side by side.
type Manager struct {
	auth   AuthAPI
	users  ProfileAPI
	tokens TokenStore
	logger *slog.Logger

	mu    sync.Mutex
	state State
	// seq tags verification attempts; a completion whose tag is no longer
	// the latest is discarded so a superseded call can never overwrite
	// fresher state.
	seq  uint64
	subs []func(State)
}

// NewManager creates a session manager. The state starts in Loading until
// Bootstrap has run the startup verification.
func NewManager(auth AuthAPI, users ProfileAPI, tokens TokenStore, logger *slog.Logger) *Manager {
	return &Manager{
		auth:   auth,
		users:  users,
		tokens: tokens,
		logger: logger,
		state:  State{Loading: true},
	}
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers a callback invoked on every state change with the new
// snapshot. The callback runs outside the manager's lock.
func (m *Manager) Subscribe(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// Bootstrap runs the startup verification: if a token is persisted the
// session is derived from it, otherwise the state settles as anonymous.
// Safe to call alongside other verifications; the latest attempt wins.
func (m *Manager) Bootstrap(ctx context.Context) {
	if _, ok := m.tokens.Load(); !ok {
		m.commitAnonymous(m.bumpSeq())
		return
	}
	if err := m.derive(ctx, true); err != nil {
		m.logger.Debug("startup verification failed", "error", err)
	}
}

// Login authenticates, persists the returned token, and derives the session.
// Returns whether onboarding is still required. Credential rejections
// propagate unmodified for display.
func (m *Manager) Login(ctx context.Context, creds services.Credentials) (bool, error) {
	result, err := m.auth.Login(ctx, creds)
	if err != nil {
		return false, err
	}
	return m.adoptToken(ctx, result)
}

// Register forwards to the auth service. It does NOT establish a session:
// registration and login are decoupled, with verification in between.
func (m *Manager) Register(ctx context.Context, reg services.Registration) (services.RegisterResult, error) {
	return m.auth.Register(ctx, reg)
}

// Verify confirms an account. When the backend's response carries a token it
// is treated as an implicit login; otherwise the raw response is returned
// for the caller to interpret.
func (m *Manager) Verify(ctx context.Context, v services.Verification) (VerifyOutcome, error) {
	result, err := m.auth.Verify(ctx, v)
	if err != nil {
		return VerifyOutcome{}, err
	}
	if result.Token == "" {
		return VerifyOutcome{Response: result}, nil
	}

	firstTime, err := m.adoptToken(ctx, result)
	if err != nil {
		return VerifyOutcome{}, err
	}
	return VerifyOutcome{AutoLogin: true, FirstTime: firstTime, Response: result}, nil
}

// Logout clears the persisted token and the in-memory session synchronously.
// Side-effect only; there is no network call.
func (m *Manager) Logout() {
	if err := m.tokens.Clear(); err != nil {
		m.logger.Warn("failed to clear persisted token", "error", err)
	}
	m.commitAnonymous(m.bumpSeq())
}

// UpdateUser shallow-merges fields into the in-memory session without a
// network round-trip. Used for optimistic updates ahead of an authoritative
// refresh; a no-op when logged out.
func (m *Manager) UpdateUser(patch domain.SessionPatch) {
	m.mu.Lock()
	if m.state.Session == nil {
		m.mu.Unlock()
		return
	}
	updated := *m.state.Session
	updated.Apply(patch)
	m.state = State{Session: &updated}
	state := m.state
	subs := append([](func(State))(nil), m.subs...)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// RefreshUser re-derives the session from the persisted token and a fresh
// profile fetch. Failures are logged and swallowed - a failed refresh keeps
// the existing session; only a failed initial verification clears it.
func (m *Manager) RefreshUser(ctx context.Context) {
	if err := m.derive(ctx, false); err != nil {
		m.logger.Warn("session refresh failed", "error", err)
	}
}

// adoptToken persists a freshly issued token and derives the session from it.
func (m *Manager) adoptToken(ctx context.Context, result services.AuthResult) (bool, error) {
	if err := m.tokens.Save(result.Token); err != nil {
		return false, errors.Wrap(err, errors.CodeInternal, "persist token")
	}
	if err := m.derive(ctx, true); err != nil {
		return false, err
	}

	st := m.Snapshot()
	if st.Session != nil {
		return st.Session.FirstTime, nil
	}
	// A concurrent verification superseded this one; fall back to the
	// response's own firstTime claim.
	return result.FirstTime == nil || *result.FirstTime, nil
}

// derive runs the verification protocol: decode the token payload for
// defaults, then let a profile fetch supply the authoritative nickname,
// avatar, and firstTime. Precedence: the profile's firstTime wins when
// present; otherwise the payload's, defaulting to true unless the payload
// explicitly says false.
//
// When clearOnFail is set (startup, login, verify) any failure removes the
// token and clears the session so a partial session can never be observed.
func (m *Manager) derive(ctx context.Context, clearOnFail bool) error {
	seq := m.bumpSeq()

	fail := func(err error) error {
		if clearOnFail {
			if clearErr := m.tokens.Clear(); clearErr != nil {
				m.logger.Warn("failed to clear token after verification failure", "error", clearErr)
			}
			m.commitAnonymous(seq)
		}
		return err
	}

	raw, ok := m.tokens.Load()
	if !ok {
		return fail(errors.TokenInvalid("no token persisted"))
	}

	claims, err := token.Decode(raw)
	if err != nil {
		return fail(err)
	}

	profile, err := m.users.Me(ctx)
	if err != nil {
		return fail(err)
	}

	firstTime := claims.OnboardingRequired()
	if profile.FirstTime != nil {
		firstTime = *profile.FirstTime
	}

	m.commit(seq, &domain.Session{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Nickname:  profile.Nickname,
		AvatarURL: profile.AvatarURL,
		FirstTime: firstTime,
	})
	return nil
}

func (m *Manager) bumpSeq() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq
}

// commit installs a derived session if the attempt is still the latest.
func (m *Manager) commit(seq uint64, sess *domain.Session) {
	m.mu.Lock()
	if seq != m.seq {
		m.mu.Unlock()
		return // superseded by a newer verification
	}
	m.state = State{Session: sess}
	state := m.state
	subs := append([](func(State))(nil), m.subs...)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// commitAnonymous clears the session and the loading flag.
func (m *Manager) commitAnonymous(seq uint64) {
	m.commit(seq, nil)
}
