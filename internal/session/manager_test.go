package session

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextreadapp/nextread-client/internal/domain"
	"github.com/nextreadapp/nextread-client/internal/errors"
	"github.com/nextreadapp/nextread-client/internal/services"
)

type fakeAuth struct {
	loginResult  services.AuthResult
	loginErr     error
	verifyResult services.AuthResult
	verifyErr    error
}

func (f *fakeAuth) Login(ctx context.Context, creds services.Credentials) (services.AuthResult, error) {
	return f.loginResult, f.loginErr
}

func (f *fakeAuth) Register(ctx context.Context, reg services.Registration) (services.RegisterResult, error) {
	return services.RegisterResult{Message: "registered"}, nil
}

func (f *fakeAuth) Verify(ctx context.Context, v services.Verification) (services.AuthResult, error) {
	return f.verifyResult, f.verifyErr
}

type fakeProfile struct {
	profile services.Profile
	err     error
	calls   int
}

func (f *fakeProfile) Me(ctx context.Context) (services.Profile, error) {
	f.calls++
	return f.profile, f.err
}

type memTokens struct {
	raw string
}

func (m *memTokens) Save(raw string) error {
	m.raw = raw
	return nil
}

func (m *memTokens) Load() (string, bool) {
	return m.raw, m.raw != ""
}

func (m *memTokens) Clear() error {
	m.raw = ""
	return nil
}

type tokenClaims struct {
	Email     string `json:"email"`
	FirstTime *bool  `json:"firstTime,omitempty"`
	jwt.RegisteredClaims
}

func signedToken(t *testing.T, sub, email string, firstTime *bool) string {
	t.Helper()
	claims := tokenClaims{
		Email:     email,
		FirstTime: firstTime,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return raw
}

func boolPtr(v bool) *bool { return &v }

func newTestManager(auth *fakeAuth, users ProfileAPI, tokens *memTokens) *Manager {
	return NewManager(auth, users, tokens, slog.New(slog.DiscardHandler))
}

func TestManager_StartsLoading(t *testing.T) {
	m := newTestManager(&fakeAuth{}, &fakeProfile{}, &memTokens{})

	st := m.Snapshot()
	assert.True(t, st.Loading)
	assert.False(t, st.LoggedIn())
}

func TestBootstrap_NoToken_SettlesAnonymous(t *testing.T) {
	users := &fakeProfile{}
	m := newTestManager(&fakeAuth{}, users, &memTokens{})

	m.Bootstrap(context.Background())

	st := m.Snapshot()
	assert.False(t, st.Loading)
	assert.False(t, st.LoggedIn())
	assert.Zero(t, users.calls, "no profile fetch without a token")
}

func TestBootstrap_ValidToken_DerivesSession(t *testing.T) {
	tokens := &memTokens{raw: signedToken(t, "user-1", "ada@example.com", boolPtr(false))}
	users := &fakeProfile{profile: services.Profile{Nickname: "ada", AvatarURL: "https://img/a.png"}}
	m := newTestManager(&fakeAuth{}, users, tokens)

	m.Bootstrap(context.Background())

	st := m.Snapshot()
	require.True(t, st.LoggedIn())
	assert.Equal(t, "user-1", st.Session.UserID)
	assert.Equal(t, "ada@example.com", st.Session.Email)
	assert.Equal(t, "ada", st.Session.Nickname)
	assert.False(t, st.Session.FirstTime)
}

func TestBootstrap_ProfileFetchFails_ClearsToken(t *testing.T) {
	tokens := &memTokens{raw: signedToken(t, "user-1", "ada@example.com", nil)}
	users := &fakeProfile{err: errors.Server("boom")}
	m := newTestManager(&fakeAuth{}, users, tokens)

	m.Bootstrap(context.Background())

	st := m.Snapshot()
	assert.False(t, st.LoggedIn())
	assert.False(t, st.Loading)
	_, ok := tokens.Load()
	assert.False(t, ok, "failed startup verification must discard the token")
}

func TestBootstrap_GarbageToken_ClearsToken(t *testing.T) {
	tokens := &memTokens{raw: "not-a-token"}
	m := newTestManager(&fakeAuth{}, &fakeProfile{}, tokens)

	m.Bootstrap(context.Background())

	assert.False(t, m.Snapshot().LoggedIn())
	_, ok := tokens.Load()
	assert.False(t, ok)
}

// Precedence: the profile's firstTime wins over the token payload's.
func TestFirstTime_ProfileOverridesClaims(t *testing.T) {
	tokens := &memTokens{raw: signedToken(t, "user-1", "ada@example.com", boolPtr(true))}
	users := &fakeProfile{profile: services.Profile{FirstTime: boolPtr(false)}}
	m := newTestManager(&fakeAuth{}, users, tokens)

	m.Bootstrap(context.Background())

	require.True(t, m.Snapshot().LoggedIn())
	assert.False(t, m.Snapshot().Session.FirstTime)
}

// When the profile is silent, the token payload decides.
func TestFirstTime_ClaimsUsedWhenProfileSilent(t *testing.T) {
	tokens := &memTokens{raw: signedToken(t, "user-1", "ada@example.com", boolPtr(false))}
	users := &fakeProfile{}
	m := newTestManager(&fakeAuth{}, users, tokens)

	m.Bootstrap(context.Background())

	require.True(t, m.Snapshot().LoggedIn())
	assert.False(t, m.Snapshot().Session.FirstTime)
}

// When both are silent, onboarding is assumed required.
func TestFirstTime_DefaultsTrue(t *testing.T) {
	tokens := &memTokens{raw: signedToken(t, "user-1", "ada@example.com", nil)}
	users := &fakeProfile{}
	m := newTestManager(&fakeAuth{}, users, tokens)

	m.Bootstrap(context.Background())

	require.True(t, m.Snapshot().LoggedIn())
	assert.True(t, m.Snapshot().Session.FirstTime)
}

func TestLogin_AdoptsToken(t *testing.T) {
	tokens := &memTokens{}
	auth := &fakeAuth{loginResult: services.AuthResult{
		Token: signedToken(t, "user-2", "bob@example.com", boolPtr(true)),
	}}
	users := &fakeProfile{profile: services.Profile{Nickname: "bob"}}
	m := newTestManager(auth, users, tokens)

	firstTime, err := m.Login(context.Background(), services.Credentials{Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, firstTime)

	st := m.Snapshot()
	require.True(t, st.LoggedIn())
	assert.Equal(t, "user-2", st.Session.UserID)

	saved, ok := tokens.Load()
	assert.True(t, ok)
	assert.Equal(t, auth.loginResult.Token, saved)
}

func TestLogin_ErrorPropagates(t *testing.T) {
	auth := &fakeAuth{loginErr: errors.InvalidCredentials("invalid email or password")}
	m := newTestManager(auth, &fakeProfile{}, &memTokens{})

	_, err := m.Login(context.Background(), services.Credentials{Email: "x@y.z", Password: "pw"})
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))
	assert.False(t, m.Snapshot().LoggedIn())
}

func TestVerify_WithToken_IsImplicitLogin(t *testing.T) {
	auth := &fakeAuth{verifyResult: services.AuthResult{
		Token: signedToken(t, "user-3", "eve@example.com", boolPtr(true)),
	}}
	users := &fakeProfile{}
	m := newTestManager(auth, users, &memTokens{})

	outcome, err := m.Verify(context.Background(), services.Verification{Email: "eve@example.com", Code: "123456"})
	require.NoError(t, err)
	assert.True(t, outcome.AutoLogin)
	assert.True(t, outcome.FirstTime)
	assert.True(t, m.Snapshot().LoggedIn())
}

func TestVerify_WithoutToken_NoSession(t *testing.T) {
	auth := &fakeAuth{verifyResult: services.AuthResult{Message: "verified"}}
	m := newTestManager(auth, &fakeProfile{}, &memTokens{})

	outcome, err := m.Verify(context.Background(), services.Verification{Email: "eve@example.com", Code: "123456"})
	require.NoError(t, err)
	assert.False(t, outcome.AutoLogin)
	assert.Equal(t, "verified", outcome.Response.Message)
	assert.False(t, m.Snapshot().LoggedIn())
}

func TestLogout_ClearsEverythingSynchronously(t *testing.T) {
	tokens := &memTokens{raw: signedToken(t, "user-1", "ada@example.com", boolPtr(false))}
	users := &fakeProfile{}
	m := newTestManager(&fakeAuth{}, users, tokens)
	m.Bootstrap(context.Background())
	require.True(t, m.Snapshot().LoggedIn())

	m.Logout()

	st := m.Snapshot()
	assert.False(t, st.LoggedIn())
	assert.False(t, st.Loading)
	_, ok := tokens.Load()
	assert.False(t, ok)
}

func TestUpdateUser_ShallowMerge(t *testing.T) {
	tokens := &memTokens{raw: signedToken(t, "user-1", "ada@example.com", boolPtr(false))}
	users := &fakeProfile{profile: services.Profile{Nickname: "ada", AvatarURL: "https://img/a.png"}}
	m := newTestManager(&fakeAuth{}, users, tokens)
	m.Bootstrap(context.Background())

	m.UpdateUser(domain.SessionPatch{Nickname: strPtr("lovelace")})

	st := m.Snapshot()
	require.True(t, st.LoggedIn())
	assert.Equal(t, "lovelace", st.Session.Nickname)
	assert.Equal(t, "https://img/a.png", st.Session.AvatarURL, "untouched fields survive")
	assert.Equal(t, "ada@example.com", st.Session.Email)
}

func TestUpdateUser_NoopWhenLoggedOut(t *testing.T) {
	m := newTestManager(&fakeAuth{}, &fakeProfile{}, &memTokens{})
	m.Bootstrap(context.Background())

	m.UpdateUser(domain.SessionPatch{Nickname: strPtr("ghost")})
	assert.False(t, m.Snapshot().LoggedIn())
}

// A failed refresh keeps the session; only initial verifications clear it.
func TestRefreshUser_FailureKeepsSession(t *testing.T) {
	tokens := &memTokens{raw: signedToken(t, "user-1", "ada@example.com", boolPtr(false))}
	users := &fakeProfile{profile: services.Profile{Nickname: "ada"}}
	m := newTestManager(&fakeAuth{}, users, tokens)
	m.Bootstrap(context.Background())
	require.True(t, m.Snapshot().LoggedIn())

	users.err = errors.Network("offline")
	m.RefreshUser(context.Background())

	st := m.Snapshot()
	assert.True(t, st.LoggedIn(), "refresh failure must not log the user out")
	_, ok := tokens.Load()
	assert.True(t, ok, "refresh failure must not discard the token")
}

func TestSubscribe_NotifiedOnChange(t *testing.T) {
	tokens := &memTokens{raw: signedToken(t, "user-1", "ada@example.com", boolPtr(false))}
	users := &fakeProfile{}
	m := newTestManager(&fakeAuth{}, users, tokens)

	var seen []State
	m.Subscribe(func(st State) { seen = append(seen, st) })

	m.Bootstrap(context.Background())
	m.Logout()

	require.Len(t, seen, 2)
	assert.True(t, seen[0].LoggedIn())
	assert.False(t, seen[1].LoggedIn())
}

// A stale verification completing after a newer one must not overwrite it.
// Logout bumps the sequence, so a verification started before the logout is
// discarded when it finally lands.
func TestStaleVerificationIsDiscarded(t *testing.T) {
	tokens := &memTokens{raw: signedToken(t, "user-1", "ada@example.com", boolPtr(false))}
	release := make(chan struct{})
	users := &blockingProfile{started: make(chan struct{}), release: release}
	m := newTestManager(&fakeAuth{}, users, tokens)

	done := make(chan struct{})
	go func() {
		m.Bootstrap(context.Background())
		close(done)
	}()

	<-users.started
	m.Logout() // supersedes the in-flight bootstrap
	close(release)
	<-done

	assert.False(t, m.Snapshot().LoggedIn(), "stale bootstrap must not resurrect the session")
}

type blockingProfile struct {
	started chan struct{}
	release chan struct{}
	once    bool
}

func (b *blockingProfile) Me(ctx context.Context) (services.Profile, error) {
	if !b.once {
		b.once = true
		close(b.started)
	}
	<-b.release
	return services.Profile{Nickname: "stale"}, nil
}

func strPtr(s string) *string { return &s }
