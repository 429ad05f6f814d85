// Package survey implements the onboarding survey wizard: a linear
// four-step flow accumulating a draft, and the saga that flushes the draft
// to the backend on completion.
package survey

import (
	"context"
	"log/slog"

	"github.com/nextreadapp/nextread-client/internal/domain"
	"github.com/nextreadapp/nextread-client/internal/services"
)

// Step indexes the wizard's ordered, non-skippable steps.
type Step int

const (
	// StepPreferences collects pace and genre selections.
	StepPreferences Step = iota
	// StepReadBooks collects books the user has already read.
	StepReadBooks
	// StepAbandonedBooks collects books the user gave up on.
	StepAbandonedBooks
	// StepConfirmation shows the summary and triggers submission.
	StepConfirmation

	lastStep = StepConfirmation
)

// Labels for rendering.
func (s Step) Label() string {
	switch s {
	case StepPreferences:
		return "Preferences"
	case StepReadBooks:
		return "Books you've read"
	case StepAbandonedBooks:
		return "Books you've abandoned"
	case StepConfirmation:
		return "Confirm"
	default:
		return "Unknown"
	}
}

// SurveyAPI is the slice of the survey service the wizard needs.
type SurveyAPI interface {
	GetSurvey(ctx context.Context) (services.SurveyState, error)
	UpdateSurvey(ctx context.Context, req services.UpdateSurveyRequest) error
}

// DraftUpdate is a shallow-merge patch for the accumulating draft. Nil
// fields leave earlier answers untouched, so later steps never erase what
// earlier steps collected.
type DraftUpdate struct {
	Pace           *domain.Pace
	GenreIDs       []int
	ReadBooks      []domain.RatedBook
	AbandonedBooks []domain.Book
}

// Wizard holds the step cursor and the accumulating draft.
type Wizard struct {
	step      Step
	draft     domain.SurveyDraft
	firstTime bool
	prefilled bool
	logger    *slog.Logger
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithInitialDraft seeds the draft; suppresses the pre-populate fetch.
func WithInitialDraft(draft domain.SurveyDraft) Option {
	return func(w *Wizard) {
		w.draft = draft
		w.prefilled = true
	}
}

// NewWizard creates a wizard at the first step. firstTime marks the
// onboarding flow; returning users re-running the survey get their stored
// pace/genre selections pre-populated on Load.
func NewWizard(firstTime bool, logger *slog.Logger, opts ...Option) *Wizard {
	w := &Wizard{firstTime: firstTime, logger: logger}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Load pre-populates pace and genre fields from the stored survey when this
// is not a first-time flow and no initial draft was supplied. Read and
// abandoned book lists are never pre-populated from history.
func (w *Wizard) Load(ctx context.Context, surveys SurveyAPI) error {
	if w.firstTime || w.prefilled {
		return nil
	}
	state, err := surveys.GetSurvey(ctx)
	if err != nil {
		return err
	}
	w.draft.Pace = state.Pace
	w.draft.GenreIDs = state.SelectedGenres
	w.prefilled = true
	return nil
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	return w.step
}

// Draft returns the accumulated draft.
func (w *Wizard) Draft() domain.SurveyDraft {
	return w.draft
}

// Next advances one step. No-op at the final step; no wraparound.
func (w *Wizard) Next() {
	if w.step < lastStep {
		w.step++
	}
}

// Prev retreats one step. No-op at the first step.
func (w *Wizard) Prev() {
	if w.step > 0 {
		w.step--
	}
}

// Merge shallow-merges a step's answers into the draft.
func (w *Wizard) Merge(update DraftUpdate) {
	if update.Pace != nil {
		w.draft.Pace = *update.Pace
	}
	if update.GenreIDs != nil {
		w.draft.GenreIDs = update.GenreIDs
	}
	if update.ReadBooks != nil {
		w.draft.ReadBooks = update.ReadBooks
	}
	if update.AbandonedBooks != nil {
		w.draft.AbandonedBooks = update.AbandonedBooks
	}
}
