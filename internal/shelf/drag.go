// Package shelf implements the drag gesture state machine for the library
// board: which item is held, which shelf is under the cursor, whether that
// shelf can accept the item, and the single intent a completed drop raises.
// The machine is independent of any rendering concern; the TUI drives it
// with pick-up/enter/drop events and dispatches the intents it returns.
package shelf

import (
	"github.com/nextreadapp/nextread-client/internal/domain"
)

// ItemKind distinguishes what is being dragged.
type ItemKind int

const (
	// KindBook is a library book leaving its current shelf.
	KindBook ItemKind = iota
	// KindRecommendation is a candidate from the recommendation rail.
	KindRecommendation
)

// Item identifies the dragged entity.
type Item struct {
	Kind ItemKind
	// EntryID is the shelf entry ID for books, the recommendation ID otherwise.
	EntryID string
	Book    domain.Book
	// SourceStatus is the originating shelf; meaningful only for books.
	SourceStatus domain.ReadingStatus
}

// Source returns the drag source tag consulted against the legality table.
func (i Item) Source() domain.DragSource {
	if i.Kind == KindRecommendation {
		return domain.SourceRecommendations
	}
	return domain.SourceOf(i.SourceStatus)
}

// Intent is raised by a completed drop. Exactly one intent per valid drop;
// cancelled or misplaced drops raise none.
type Intent interface {
	intent()
}

// MoveBook asks the page to reassign a library book to a new shelf.
type MoveBook struct {
	EntryID   string
	Book      domain.Book
	NewStatus domain.ReadingStatus
}

func (MoveBook) intent() {}

// AddRecommendationToLibrary asks the page to accept a recommendation onto
// a shelf.
type AddRecommendationToLibrary struct {
	RecommendationID string
	Book             domain.Book
	Status           domain.ReadingStatus
}

func (AddRecommendationToLibrary) intent() {}

// Machine is the per-gesture state machine. Zero value is idle.
type Machine struct {
	active *Item
	over   *domain.ReadingStatus
}

// Dragging reports whether an item is currently held.
func (m *Machine) Dragging() bool {
	return m.active != nil
}

// Active returns the held item, or nil when idle.
func (m *Machine) Active() *Item {
	return m.active
}

// Pickup begins a drag. Returns false without changing state if a drag is
// already in progress - only one item may be active at a time.
func (m *Machine) Pickup(item Item) bool {
	if m.active != nil {
		return false
	}
	m.active = &item
	m.over = nil
	return true
}

// EnterTarget records the shelf now under the pointer.
func (m *Machine) EnterTarget(status domain.ReadingStatus) {
	if m.active == nil {
		return
	}
	s := status
	m.over = &s
}

// LeaveTarget records that the pointer left all drop targets.
func (m *Machine) LeaveTarget() {
	m.over = nil
}

// Over returns the shelf under the pointer, or nil.
func (m *Machine) Over() *domain.ReadingStatus {
	return m.over
}

// CanAccept reports whether the shelf under the pointer accepts the held
// item, per the declared legality table.
func (m *Machine) CanAccept() bool {
	if m.active == nil || m.over == nil {
		return false
	}
	return domain.Accepts(*m.over, m.active.Source())
}

// Drop ends the gesture. When the item sits over a shelf that accepts it,
// exactly one intent is returned: a MoveBook for a library book dropped on
// a different shelf (dropping back onto its own shelf is a silent no-op),
// or an AddRecommendationToLibrary for a recommendation. Dropping outside
// any valid target returns nil. The machine returns to idle either way.
func (m *Machine) Drop() Intent {
	item, target := m.active, m.over
	m.active = nil
	m.over = nil

	if item == nil || target == nil {
		return nil
	}

	if item.Kind == KindRecommendation {
		if !domain.Accepts(*target, domain.SourceRecommendations) {
			return nil
		}
		return AddRecommendationToLibrary{
			RecommendationID: item.EntryID,
			Book:             item.Book,
			Status:           *target,
		}
	}

	if item.SourceStatus == *target {
		return nil // same shelf: no-op, not an error
	}
	if !domain.Accepts(*target, item.Source()) {
		return nil
	}
	return MoveBook{
		EntryID:   item.EntryID,
		Book:      item.Book,
		NewStatus: *target,
	}
}

// Cancel abandons the gesture (pointer lost, escape). No intent is raised.
func (m *Machine) Cancel() {
	m.active = nil
	m.over = nil
}
