package domain

// Pace is the user's preferred reading pace, chosen on the survey's
// preferences step. The backend defines the value set; the client treats it
// as opaque apart from the known defaults.
type Pace string

// Known pace values.
const (
	PaceSlow   Pace = "SLOW"
	PaceNormal Pace = "NORMAL"
	PaceFast   Pace = "FAST"
)

// Paces lists the selectable pace values in display order.
var Paces = []Pace{PaceSlow, PaceNormal, PaceFast}

// Valid reports whether the pace is one of the known values.
func (p Pace) Valid() bool {
	switch p {
	case PaceSlow, PaceNormal, PaceFast:
		return true
	}
	return false
}

// RatedBook is a book the user reports having read, with an optional rating.
type RatedBook struct {
	Book   Book `json:"book"`
	Rating int  `json:"rating,omitempty"`
}

// SurveyDraft accumulates the survey wizard's answers. It exists only for the
// lifetime of the wizard and is flushed to the backend as several independent
// writes on completion.
type SurveyDraft struct {
	Pace           Pace
	GenreIDs       []int
	ReadBooks      []RatedBook
	AbandonedBooks []Book
}
