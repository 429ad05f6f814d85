package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nextreadapp/nextread-client/internal/domain"
	"github.com/nextreadapp/nextread-client/internal/session"
)

func loggedIn(firstTime bool) session.State {
	return session.State{Session: &domain.Session{UserID: "user-1", FirstTime: firstTime}}
}

func anonymous() session.State {
	return session.State{}
}

func loading() session.State {
	return session.State{Loading: true}
}

func TestEvaluate_LoadingAlwaysWins(t *testing.T) {
	pages := []Page{
		{},
		{AllowAnonymous: true},
		{RequiresFirstTime: true},
	}
	for _, page := range pages {
		assert.Equal(t, ShowLoading, Evaluate(loading(), page))
	}
}

func TestEvaluate_AnonymousUser(t *testing.T) {
	assert.Equal(t, Render, Evaluate(anonymous(), Page{AllowAnonymous: true}))
	assert.Equal(t, RedirectLogin, Evaluate(anonymous(), Page{}))
	assert.Equal(t, RedirectLogin, Evaluate(anonymous(), Page{RequiresFirstTime: true}))
}

func TestEvaluate_FirstTimeUserIsPinnedToSurvey(t *testing.T) {
	st := loggedIn(true)

	assert.Equal(t, Render, Evaluate(st, Page{RequiresFirstTime: true}))
	assert.Equal(t, RedirectSurvey, Evaluate(st, Page{}))
	assert.Equal(t, RedirectSurvey, Evaluate(st, Page{AllowAnonymous: true}))
}

func TestEvaluate_ReturningUserCannotSeeSurvey(t *testing.T) {
	st := loggedIn(false)

	assert.Equal(t, RedirectHome, Evaluate(st, Page{RequiresFirstTime: true}))
	assert.Equal(t, Render, Evaluate(st, Page{}))
	assert.Equal(t, Render, Evaluate(st, Page{AllowAnonymous: true}))
}

// After a logout every protected page must kick to login in one evaluation,
// with no intermediate render.
func TestEvaluate_AfterLogout(t *testing.T) {
	protected := []Page{{}, {RequiresFirstTime: true}}

	for _, page := range protected {
		assert.Equal(t, Render, Evaluate(loggedIn(false), Page{}))
		assert.Equal(t, RedirectLogin, Evaluate(anonymous(), page))
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "loading", ShowLoading.String())
	assert.Equal(t, "render", Render.String())
	assert.Equal(t, "redirect-login", RedirectLogin.String())
	assert.Equal(t, "redirect-home", RedirectHome.String())
	assert.Equal(t, "redirect-survey", RedirectSurvey.String())
}
