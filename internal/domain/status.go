package domain

import (
	"fmt"
	"slices"
)

// ReadingStatus identifies the shelf a library book lives on.
type ReadingStatus string

const (
	// StatusToRead marks a book the user intends to read.
	StatusToRead ReadingStatus = "TO_READ"
	// StatusRead marks a book the user finished.
	StatusRead ReadingStatus = "READ"
	// StatusAbandoned marks a book the user gave up on.
	StatusAbandoned ReadingStatus = "ABANDONED"
)

// Statuses lists every shelf in display order.
var Statuses = []ReadingStatus{StatusToRead, StatusRead, StatusAbandoned}

// Valid reports whether s is a known reading status.
func (s ReadingStatus) Valid() bool {
	return slices.Contains(Statuses, s)
}

// Label returns a human-readable shelf name.
func (s ReadingStatus) Label() string {
	switch s {
	case StatusToRead:
		return "To read"
	case StatusRead:
		return "Read"
	case StatusAbandoned:
		return "Abandoned"
	default:
		return string(s)
	}
}

// ParseStatus converts a wire value into a ReadingStatus.
func ParseStatus(s string) (ReadingStatus, error) {
	status := ReadingStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown reading status %q", s)
	}
	return status, nil
}

// DragSource tags what a dragged item came from: one of the shelf statuses,
// or the recommendation rail.
type DragSource string

// SourceRecommendations tags items dragged out of the recommendation pool.
const SourceRecommendations DragSource = "recommendations"

// SourceOf returns the drag source tag for a shelf.
func SourceOf(s ReadingStatus) DragSource {
	return DragSource(s)
}

// shelfAccepts is the declared drop legality table: target shelf to the set
// of sources it accepts. Every shelf accepts from every other shelf, and all
// shelves accept fresh recommendations. The drag state machine consults this
// table instead of per-view conditionals.
var shelfAccepts = map[ReadingStatus][]DragSource{
	StatusToRead:    {SourceOf(StatusRead), SourceOf(StatusAbandoned), SourceRecommendations},
	StatusRead:      {SourceOf(StatusToRead), SourceOf(StatusAbandoned), SourceRecommendations},
	StatusAbandoned: {SourceOf(StatusToRead), SourceOf(StatusRead), SourceRecommendations},
}

// Accepts reports whether the target shelf accepts drops from the given source.
func Accepts(target ReadingStatus, source DragSource) bool {
	return slices.Contains(shelfAccepts[target], source)
}

// AcceptedSources returns the declared source set for a shelf.
func AcceptedSources(target ReadingStatus) []DragSource {
	return slices.Clone(shelfAccepts[target])
}
