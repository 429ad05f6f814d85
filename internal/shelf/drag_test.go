package shelf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextreadapp/nextread-client/internal/domain"
)

func bookItem(entryID string, from domain.ReadingStatus) Item {
	return Item{
		Kind:         KindBook,
		EntryID:      entryID,
		Book:         domain.Book{ID: "b-1", Title: "Piranesi"},
		SourceStatus: from,
	}
}

func recItem(recID string) Item {
	return Item{
		Kind:    KindRecommendation,
		EntryID: recID,
		Book:    domain.Book{ID: "b-2", Title: "Station Eleven"},
	}
}

func TestMachine_IdleByDefault(t *testing.T) {
	var m Machine
	assert.False(t, m.Dragging())
	assert.Nil(t, m.Active())
	assert.Nil(t, m.Over())
	assert.Nil(t, m.Drop())
}

func TestPickup_SecondPickupRejected(t *testing.T) {
	var m Machine
	assert.True(t, m.Pickup(bookItem("e-1", domain.StatusToRead)))
	assert.False(t, m.Pickup(bookItem("e-2", domain.StatusRead)), "one drag at a time")
	assert.Equal(t, "e-1", m.Active().EntryID)
}

func TestDrop_BookOntoAnotherShelf_RaisesMove(t *testing.T) {
	var m Machine
	m.Pickup(bookItem("e-1", domain.StatusToRead))
	m.EnterTarget(domain.StatusRead)
	require.True(t, m.CanAccept())

	intent := m.Drop()
	move, ok := intent.(MoveBook)
	require.True(t, ok, "expected MoveBook, got %T", intent)
	assert.Equal(t, "e-1", move.EntryID)
	assert.Equal(t, domain.StatusRead, move.NewStatus)
	assert.False(t, m.Dragging(), "machine resets after drop")
}

func TestDrop_BookOntoItsOwnShelf_NoIntent(t *testing.T) {
	var m Machine
	m.Pickup(bookItem("e-1", domain.StatusToRead))
	m.EnterTarget(domain.StatusToRead)

	assert.Nil(t, m.Drop())
	assert.False(t, m.Dragging())
}

func TestDrop_RecommendationOntoShelf_RaisesAdd(t *testing.T) {
	for _, target := range domain.Statuses {
		var m Machine
		m.Pickup(recItem("rec-1"))
		m.EnterTarget(target)
		require.True(t, m.CanAccept(), "every shelf accepts recommendations")

		intent := m.Drop()
		add, ok := intent.(AddRecommendationToLibrary)
		require.True(t, ok, "expected AddRecommendationToLibrary, got %T", intent)
		assert.Equal(t, "rec-1", add.RecommendationID)
		assert.Equal(t, target, add.Status)
	}
}

func TestDrop_WithoutTarget_NoIntent(t *testing.T) {
	var m Machine
	m.Pickup(bookItem("e-1", domain.StatusToRead))

	assert.Nil(t, m.Drop())
	assert.False(t, m.Dragging())
}

func TestCancel_DiscardsGesture(t *testing.T) {
	var m Machine
	m.Pickup(bookItem("e-1", domain.StatusToRead))
	m.EnterTarget(domain.StatusRead)

	m.Cancel()

	assert.False(t, m.Dragging())
	assert.Nil(t, m.Drop(), "cancel must not leave a pending intent")
}

func TestLeaveTarget_ClearsHover(t *testing.T) {
	var m Machine
	m.Pickup(bookItem("e-1", domain.StatusToRead))
	m.EnterTarget(domain.StatusRead)
	require.NotNil(t, m.Over())

	m.LeaveTarget()
	assert.Nil(t, m.Over())
	assert.False(t, m.CanAccept())
}

func TestEnterTarget_IgnoredWhenIdle(t *testing.T) {
	var m Machine
	m.EnterTarget(domain.StatusRead)
	assert.Nil(t, m.Over())
}

// The legality table is data, not code: every shelf accepts the two other
// shelves plus the recommendations rail, never itself.
func TestAcceptsTable(t *testing.T) {
	for _, target := range domain.Statuses {
		assert.True(t, domain.Accepts(target, domain.SourceRecommendations))
		for _, source := range domain.Statuses {
			want := source != target
			assert.Equal(t, want, domain.Accepts(target, domain.SourceOf(source)),
				"target=%s source=%s", target, source)
		}
	}
}
