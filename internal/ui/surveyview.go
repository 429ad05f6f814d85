package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nextreadapp/nextread-client/internal/domain"
	"github.com/nextreadapp/nextread-client/internal/services"
	"github.com/nextreadapp/nextread-client/internal/survey"
)

type genresLoadedMsg struct {
	genres []domain.Genre
	err    error
}

type surveySubmittedMsg struct {
	err error
}

// surveyModel drives the onboarding wizard. The wizard owns the draft and
// the step cursor; this model owns only per-step input widgets and merges
// them into the draft when the user moves between steps.
type surveyModel struct {
	wizard  *survey.Wizard
	saga    *survey.Saga
	catalog *services.CatalogService

	genres      []domain.Genre
	genreCursor int
	paceCursor  int
	selected    map[int]bool

	title  textinput.Model
	author textinput.Model
	rating textinput.Model
	focus  int

	busy    bool
	errText string
}

func newSurveyModel(manager SessionPort, deps Deps) surveyModel {
	firstTime := true
	if st := manager.Snapshot(); st.Session != nil {
		firstTime = st.Session.FirstTime
	}

	title := textinput.New()
	title.Placeholder = "title"
	title.CharLimit = 200
	title.Focus()

	author := textinput.New()
	author.Placeholder = "author"
	author.CharLimit = 120

	rating := textinput.New()
	rating.Placeholder = "rating 1-5"
	rating.CharLimit = 1

	return surveyModel{
		wizard:     survey.NewWizard(firstTime, deps.Logger),
		saga:       survey.NewSaga(deps.Surveys, deps.Books, manager, deps.Logger),
		catalog:    deps.Catalog,
		selected:   make(map[int]bool),
		title:      title,
		author:     author,
		rating:     rating,
		paceCursor: 1, // NORMAL
	}
}

func (m surveyModel) init() tea.Cmd {
	return tea.Batch(m.loadGenres(), textinput.Blink)
}

func (m surveyModel) loadGenres() tea.Cmd {
	catalog := m.catalog
	return func() tea.Msg {
		genres, err := catalog.Genres(context.Background())
		return genresLoadedMsg{genres: genres, err: err}
	}
}

func (m surveyModel) update(msg tea.Msg) (surveyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case genresLoadedMsg:
		if msg.err != nil {
			m.errText = "genres: " + msg.err.Error()
			return m, nil
		}
		m.genres = msg.genres
		return m, nil

	case surveySubmittedMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		// The session manager flips firstTime; the resulting session
		// change routes us home.
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		return m.handleKey(msg)
	}

	cmd := m.updateInputs(msg)
	return m, cmd
}

func (m surveyModel) handleKey(msg tea.KeyMsg) (surveyModel, tea.Cmd) {
	key := msg.String()

	// Step navigation works on every step.
	switch key {
	case "ctrl+n":
		m.mergeStep()
		m.wizard.Next()
		m.errText = ""
		return m, nil
	case "ctrl+b":
		m.mergeStep()
		m.wizard.Prev()
		m.errText = ""
		return m, nil
	}

	switch m.wizard.Step() {
	case survey.StepPreferences:
		return m.handlePreferencesKey(key)
	case survey.StepReadBooks, survey.StepAbandonedBooks:
		return m.handleBookKey(msg)
	case survey.StepConfirmation:
		if key == "enter" {
			return m.submit()
		}
	}
	return m, nil
}

func (m surveyModel) handlePreferencesKey(key string) (surveyModel, tea.Cmd) {
	switch key {
	case "left", "h":
		if m.paceCursor > 0 {
			m.paceCursor--
		}
	case "right", "l":
		if m.paceCursor < len(domain.Paces)-1 {
			m.paceCursor++
		}
	case "up", "k":
		if m.genreCursor > 0 {
			m.genreCursor--
		}
	case "down", "j":
		if m.genreCursor < len(m.genres)-1 {
			m.genreCursor++
		}
	case " ":
		if m.genreCursor < len(m.genres) {
			id := m.genres[m.genreCursor].ID
			m.selected[id] = !m.selected[id]
		}
	}
	return m, nil
}

func (m surveyModel) handleBookKey(msg tea.KeyMsg) (surveyModel, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.setFocus((m.focus + 1) % m.inputCount())
		return m, nil
	case "shift+tab":
		m.setFocus((m.focus + m.inputCount() - 1) % m.inputCount())
		return m, nil
	case "enter":
		m.addBook()
		return m, nil
	}
	cmd := m.updateInputs(msg)
	return m, cmd
}

func (m *surveyModel) inputCount() int {
	if m.wizard.Step() == survey.StepReadBooks {
		return 3
	}
	return 2
}

func (m *surveyModel) setFocus(idx int) {
	m.focus = idx
	inputs := []*textinput.Model{&m.title, &m.author, &m.rating}
	for i, in := range inputs {
		if i == idx {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (m *surveyModel) updateInputs(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.title, cmd = m.title.Update(msg)
	cmds = append(cmds, cmd)
	m.author, cmd = m.author.Update(msg)
	cmds = append(cmds, cmd)
	m.rating, cmd = m.rating.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

// addBook moves the current inputs into the draft as one book entry.
func (m *surveyModel) addBook() {
	title := strings.TrimSpace(m.title.Value())
	if title == "" {
		m.errText = "title is required"
		return
	}
	book := domain.Book{Title: title}
	if author := strings.TrimSpace(m.author.Value()); author != "" {
		book.Authors = []string{author}
	}

	draft := m.wizard.Draft()
	if m.wizard.Step() == survey.StepReadBooks {
		rating, _ := strconv.Atoi(strings.TrimSpace(m.rating.Value()))
		if rating < 0 || rating > 5 {
			rating = 0
		}
		m.wizard.Merge(survey.DraftUpdate{
			ReadBooks: append(draft.ReadBooks, domain.RatedBook{Book: book, Rating: rating}),
		})
	} else {
		m.wizard.Merge(survey.DraftUpdate{
			AbandonedBooks: append(draft.AbandonedBooks, book),
		})
	}

	m.title.Reset()
	m.author.Reset()
	m.rating.Reset()
	m.setFocus(0)
	m.errText = ""
}

// mergeStep folds the preferences widgets into the draft. Book steps merge
// eagerly on add, so only preferences needs a merge on step change.
func (m *surveyModel) mergeStep() {
	if m.wizard.Step() != survey.StepPreferences {
		return
	}
	pace := domain.Paces[m.paceCursor]
	var genreIDs []int
	for _, g := range m.genres {
		if m.selected[g.ID] {
			genreIDs = append(genreIDs, g.ID)
		}
	}
	m.wizard.Merge(survey.DraftUpdate{Pace: &pace, GenreIDs: genreIDs})
}

func (m surveyModel) submit() (surveyModel, tea.Cmd) {
	m.busy = true
	m.errText = ""
	saga := m.saga
	draft := m.wizard.Draft()
	return m, func() tea.Msg {
		err := saga.Run(context.Background(), draft, func() {})
		return surveySubmittedMsg{err: err}
	}
}

func (m surveyModel) view() string {
	var b strings.Builder
	step := m.wizard.Step()
	b.WriteString(titleStyle.Render(fmt.Sprintf("Onboarding survey - %d/4: %s", int(step)+1, step.Label())))
	b.WriteString("\n")

	switch step {
	case survey.StepPreferences:
		b.WriteString(m.viewPreferences())
	case survey.StepReadBooks:
		b.WriteString(m.viewBooks(true))
	case survey.StepAbandonedBooks:
		b.WriteString(m.viewBooks(false))
	case survey.StepConfirmation:
		b.WriteString(m.viewConfirmation())
	}

	if m.busy {
		b.WriteString(subtleStyle.Render("\nsubmitting..."))
	}
	if m.errText != "" {
		b.WriteString("\n" + errorStyle.Render(m.errText))
	}
	b.WriteString(helpStyle.Render("\nctrl+n next step | ctrl+b previous step"))
	return b.String()
}

func (m surveyModel) viewPreferences() string {
	var b strings.Builder
	b.WriteString("Reading pace:  ")
	for i, p := range domain.Paces {
		label := string(p)
		if i == m.paceCursor {
			label = selectedRowStyle.Render("[" + label + "]")
		} else {
			label = subtleStyle.Render(" " + label + " ")
		}
		b.WriteString(label + " ")
	}
	b.WriteString("\n\nGenres (space to toggle):\n")
	if len(m.genres) == 0 {
		b.WriteString(subtleStyle.Render("  loading genres...\n"))
	}
	for i, g := range m.genres {
		mark := "[ ]"
		if m.selected[g.ID] {
			mark = "[x]"
		}
		line := fmt.Sprintf("  %s %s", mark, g.Name)
		if i == m.genreCursor {
			line = selectedRowStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m surveyModel) viewBooks(read bool) string {
	var b strings.Builder
	draft := m.wizard.Draft()

	b.WriteString(m.title.View() + "\n")
	b.WriteString(m.author.View() + "\n")
	if read {
		b.WriteString(m.rating.View() + "\n")
	}
	b.WriteString(subtleStyle.Render("enter to add") + "\n\n")

	if read {
		for _, rb := range draft.ReadBooks {
			line := "  - " + rb.Book.Title
			if rb.Rating > 0 {
				line += fmt.Sprintf(" (%d/5)", rb.Rating)
			}
			b.WriteString(line + "\n")
		}
	} else {
		for _, bk := range draft.AbandonedBooks {
			b.WriteString("  - " + bk.Title + "\n")
		}
	}
	return b.String()
}

func (m surveyModel) viewConfirmation() string {
	draft := m.wizard.Draft()
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Pace: %s\n", draft.Pace))
	b.WriteString(fmt.Sprintf("Genres selected: %d\n", len(draft.GenreIDs)))
	b.WriteString(fmt.Sprintf("Books read: %d\n", len(draft.ReadBooks)))
	b.WriteString(fmt.Sprintf("Books abandoned: %d\n", len(draft.AbandonedBooks)))
	b.WriteString("\n" + successStyle.Render("press enter to finish"))
	return b.String()
}
