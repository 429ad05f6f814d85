package domain

import "slices"

// ShelfEntry associates a library book with a reading status and an optional
// rating. The rating is meaningful only when the status is READ.
type ShelfEntry struct {
	ID     string        `json:"id"`
	Book   Book          `json:"book"`
	Status ReadingStatus `json:"status"`
	Rating int           `json:"rating,omitempty"`
}

// Library is the user's full set of shelf entries.
type Library struct {
	Entries []ShelfEntry
}

// ByStatus returns the entries on a shelf, preserving order.
func (l *Library) ByStatus(status ReadingStatus) []ShelfEntry {
	var out []ShelfEntry
	for _, e := range l.Entries {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the entry with the given ID, or nil.
func (l *Library) Find(entryID string) *ShelfEntry {
	for i := range l.Entries {
		if l.Entries[i].ID == entryID {
			return &l.Entries[i]
		}
	}
	return nil
}

// Move reassigns an entry to a new shelf. Returns false if the entry is
// unknown or already on that shelf. Used for optimistic local moves; the
// backend write happens separately.
func (l *Library) Move(entryID string, status ReadingStatus) bool {
	e := l.Find(entryID)
	if e == nil || e.Status == status {
		return false
	}
	e.Status = status
	return true
}

// Add appends an entry to the library.
func (l *Library) Add(entry ShelfEntry) {
	l.Entries = append(l.Entries, entry)
}

// Remove deletes an entry by ID. Returns false if absent.
func (l *Library) Remove(entryID string) bool {
	for i := range l.Entries {
		if l.Entries[i].ID == entryID {
			l.Entries = slices.Delete(l.Entries, i, i+1)
			return true
		}
	}
	return false
}
