// Package guard decides whether a view may render for the current session.
// The decision is a pure function of three facts: session present, session
// still needs onboarding, and what the page declares about itself. Consumers
// re-evaluate on every session state change (via the session manager's
// subscription), never by polling.
package guard

import "github.com/nextreadapp/nextread-client/internal/session"

// Page declares a view's access requirements.
type Page struct {
	// AllowAnonymous permits rendering without a session (login, register).
	AllowAnonymous bool
	// RequiresFirstTime marks the onboarding survey flow: only users who
	// have not completed the survey may see it.
	RequiresFirstTime bool
}

// Decision is the guard's verdict.
type Decision int

const (
	// ShowLoading renders a neutral loading view; no redirect yet.
	ShowLoading Decision = iota
	// Render shows the page.
	Render
	// RedirectLogin sends the user to the login view, rendering nothing.
	RedirectLogin
	// RedirectHome sends the user home, rendering nothing.
	RedirectHome
	// RedirectSurvey sends the user to the onboarding survey, rendering nothing.
	RedirectSurvey
)

func (d Decision) String() string {
	switch d {
	case ShowLoading:
		return "loading"
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	case RedirectSurvey:
		return "redirect-survey"
	default:
		return "unknown"
	}
}

// Evaluate computes the guard decision for a page given a session snapshot.
func Evaluate(st session.State, page Page) Decision {
	if st.Loading {
		return ShowLoading
	}

	if !st.LoggedIn() {
		if page.AllowAnonymous {
			return Render
		}
		return RedirectLogin
	}

	if page.RequiresFirstTime && !st.Session.FirstTime {
		return RedirectHome
	}
	if !page.RequiresFirstTime && st.Session.FirstTime {
		return RedirectSurvey
	}
	return Render
}
