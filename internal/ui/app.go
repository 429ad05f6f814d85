// Package ui is the terminal frontend. A root App model owns routing and
// the session subscription; each screen is a sub-model. Screens never talk
// to the session manager's internals: they dispatch commands and react to
// messages, and the route guard decides what may render after every session
// change.
package ui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nextreadapp/nextread-client/internal/color"
	"github.com/nextreadapp/nextread-client/internal/domain"
	"github.com/nextreadapp/nextread-client/internal/guard"
	"github.com/nextreadapp/nextread-client/internal/services"
	"github.com/nextreadapp/nextread-client/internal/session"
	"github.com/nextreadapp/nextread-client/internal/store"
)

// SessionPort is the slice of the session manager the UI depends on.
type SessionPort interface {
	Snapshot() session.State
	Subscribe(fn func(session.State))
	Bootstrap(ctx context.Context)
	Login(ctx context.Context, creds services.Credentials) (bool, error)
	Register(ctx context.Context, reg services.Registration) (services.RegisterResult, error)
	Verify(ctx context.Context, v services.Verification) (session.VerifyOutcome, error)
	Logout()
	UpdateUser(patch domain.SessionPatch)
	RefreshUser(ctx context.Context)
}

type route int

const (
	routeLoading route = iota
	routeLogin
	routeRegister
	routeSurvey
	routeShelves
)

// routePages declares each screen's access requirements for the guard.
var routePages = map[route]guard.Page{
	routeLogin:    {AllowAnonymous: true},
	routeRegister: {AllowAnonymous: true},
	routeSurvey:   {RequiresFirstTime: true},
	routeShelves:  {},
}

type sessionChangedMsg struct {
	state session.State
}

type switchRouteMsg struct {
	to route
}

func switchRoute(to route) tea.Cmd {
	return func() tea.Msg { return switchRouteMsg{to: to} }
}

// App is the root Bubble Tea model.
type App struct {
	manager SessionPort
	deps    Deps
	logger  *slog.Logger

	sessionCh chan session.State
	state     session.State

	route    route
	login    loginModel
	register registerModel
	survey   surveyModel
	shelves  shelvesModel

	width  int
	height int
}

// Deps bundles the backend wrappers the screens draw on.
type Deps struct {
	Users   *services.UserService
	Surveys *services.SurveyService
	Books   *services.UserBookService
	Catalog *services.CatalogService
	Cache   *store.Cache
	Logger  *slog.Logger
}

// New wires the root model and registers the session subscription. The
// subscription only forwards snapshots into a channel; the Bubble Tea loop
// picks them up as messages so all state changes stay on the update path.
func New(manager SessionPort, deps Deps) *App {
	a := &App{
		manager:   manager,
		deps:      deps,
		logger:    deps.Logger,
		sessionCh: make(chan session.State, 16),
		state:     manager.Snapshot(),
		route:     routeLoading,
	}
	manager.Subscribe(a.forward)
	return a
}

// forward pushes a snapshot into the channel without ever blocking the
// manager. When the buffer is full the oldest snapshot is dropped; only the
// latest state matters to the UI.
func (a *App) forward(st session.State) {
	for {
		select {
		case a.sessionCh <- st:
			return
		default:
			select {
			case <-a.sessionCh:
			default:
			}
		}
	}
}

func (a *App) waitForSession() tea.Cmd {
	return func() tea.Msg {
		return sessionChangedMsg{state: <-a.sessionCh}
	}
}

// clearCache drops the signed-out user's local shelf snapshot.
func (a *App) clearCache(userID string) tea.Cmd {
	return func() tea.Msg {
		if a.deps.Cache == nil || userID == "" {
			return nil
		}
		if err := a.deps.Cache.Clear(context.Background(), userID); err != nil {
			a.logger.Warn("failed to clear local cache", "error", err)
		}
		return nil
	}
}

func (a *App) bootstrap() tea.Cmd {
	return func() tea.Msg {
		a.manager.Bootstrap(context.Background())
		return nil
	}
}

func (a *App) Init() tea.Cmd {
	a.login = newLoginModel(a.manager)
	a.register = newRegisterModel(a.manager)
	return tea.Batch(a.bootstrap(), a.waitForSession())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "ctrl+l":
			if a.state.LoggedIn() {
				userID := a.state.Session.UserID
				a.manager.Logout()
				return a, tea.Batch(a.clearCache(userID), a.waitForSession())
			}
		}

	case sessionChangedMsg:
		a.state = msg.state
		cmd := a.applyGuard()
		return a, tea.Batch(cmd, a.waitForSession())

	case switchRouteMsg:
		return a, a.navigate(msg.to)
	}

	return a.updateRoute(msg)
}

// applyGuard re-evaluates the current route against the new session state
// and follows whatever redirect the guard hands back.
func (a *App) applyGuard() tea.Cmd {
	switch guard.Evaluate(a.state, routePages[a.route]) {
	case guard.ShowLoading:
		a.route = routeLoading
		return nil
	case guard.RedirectLogin:
		return a.navigate(routeLogin)
	case guard.RedirectHome:
		return a.navigate(routeShelves)
	case guard.RedirectSurvey:
		return a.navigate(routeSurvey)
	default:
		if a.route == routeLoading {
			// Bootstrap finished while sitting on the loading screen.
			if a.state.LoggedIn() {
				if a.state.Session.FirstTime {
					return a.navigate(routeSurvey)
				}
				return a.navigate(routeShelves)
			}
			return a.navigate(routeLogin)
		}
		return nil
	}
}

// navigate switches screens, honoring the guard before rendering the target.
func (a *App) navigate(to route) tea.Cmd {
	switch guard.Evaluate(a.state, routePages[to]) {
	case guard.RedirectLogin:
		to = routeLogin
	case guard.RedirectHome:
		to = routeShelves
	case guard.RedirectSurvey:
		to = routeSurvey
	case guard.ShowLoading:
		a.route = routeLoading
		return nil
	}

	if a.route == to {
		return nil
	}
	a.route = to

	switch to {
	case routeLogin:
		a.login = newLoginModel(a.manager)
		return a.login.init()
	case routeRegister:
		a.register = newRegisterModel(a.manager)
		return a.register.init()
	case routeSurvey:
		a.survey = newSurveyModel(a.manager, a.deps)
		return a.survey.init()
	case routeShelves:
		a.shelves = newShelvesModel(a.deps, a.state)
		return a.shelves.init()
	}
	return nil
}

func (a *App) updateRoute(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.route {
	case routeLogin:
		a.login, cmd = a.login.update(msg)
	case routeRegister:
		a.register, cmd = a.register.update(msg)
	case routeSurvey:
		a.survey, cmd = a.survey.update(msg)
	case routeShelves:
		a.shelves, cmd = a.shelves.update(msg)
	}
	return a, cmd
}

func (a *App) View() string {
	var body string
	switch a.route {
	case routeLoading:
		body = subtleStyle.Render("Restoring session...")
	case routeLogin:
		body = a.login.view()
	case routeRegister:
		body = a.register.view()
	case routeSurvey:
		body = a.survey.view()
	case routeShelves:
		body = a.shelves.view()
	}

	if a.state.LoggedIn() {
		name := a.state.Session.Name()
		who := lipgloss.NewStyle().
			Foreground(lipgloss.Color(color.ForName(name))).
			Bold(true).
			Render(name)
		body = subtleStyle.Render("signed in as ") + who + "\n\n" + body
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(body)
}
