package store

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextreadapp/nextread-client/internal/domain"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sampleEntries() []domain.ShelfEntry {
	return []domain.ShelfEntry{
		{ID: "e-1", Book: domain.Book{ID: "b-1", Title: "Piranesi", Authors: []string{"Susanna Clarke"}}, Status: domain.StatusToRead},
		{ID: "e-2", Book: domain.Book{ID: "b-2", Title: "Station Eleven"}, Status: domain.StatusRead, Rating: 5},
	}
}

func TestCache_LibraryRoundTrip(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SaveLibrary(ctx, "user-1", sampleEntries()))

	got, err := c.LoadLibrary(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Piranesi", got[0].Book.Title)
	assert.Equal(t, []string{"Susanna Clarke"}, got[0].Book.Authors)
	assert.Equal(t, domain.StatusRead, got[1].Status)
	assert.Equal(t, 5, got[1].Rating)
}

func TestCache_SaveReplacesPreviousSnapshot(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SaveLibrary(ctx, "user-1", sampleEntries()))
	require.NoError(t, c.SaveLibrary(ctx, "user-1", sampleEntries()[:1]))

	got, err := c.LoadLibrary(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCache_UsersAreIsolated(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SaveLibrary(ctx, "user-1", sampleEntries()))

	got, err := c.LoadLibrary(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCache_RecommendationsRoundTrip(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	recs := []domain.Recommendation{
		{ID: "rec-1", Book: domain.Book{ID: "b-3", Title: "Kafka on the Shore"}},
		{ID: "rec-2", Book: domain.Book{ID: "b-4", Title: "Project Hail Mary"}},
	}
	require.NoError(t, c.SaveRecommendations(ctx, "user-1", recs))

	got, err := c.LoadRecommendations(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "rec-1", got[0].ID)
	assert.Equal(t, "Project Hail Mary", got[1].Book.Title)
}

func TestCache_OrderIsPreserved(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	var entries []domain.ShelfEntry
	for i := 0; i < 10; i++ {
		entries = append(entries, domain.ShelfEntry{
			ID:     string(rune('a' + i)),
			Book:   domain.Book{Title: "Book"},
			Status: domain.StatusToRead,
		})
	}
	require.NoError(t, c.SaveLibrary(ctx, "user-1", entries))

	got, err := c.LoadLibrary(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 10)
	for i, e := range got {
		assert.Equal(t, entries[i].ID, e.ID)
	}
}

func TestCache_Clear(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SaveLibrary(ctx, "user-1", sampleEntries()))
	require.NoError(t, c.SaveRecommendations(ctx, "user-1", []domain.Recommendation{{ID: "rec-1"}}))
	require.NoError(t, c.SaveLibrary(ctx, "user-2", sampleEntries()))

	require.NoError(t, c.Clear(ctx, "user-1"))

	lib, err := c.LoadLibrary(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, lib)
	recs, err := c.LoadRecommendations(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, recs)

	other, err := c.LoadLibrary(ctx, "user-2")
	require.NoError(t, err)
	assert.Len(t, other, 2, "clearing one user leaves the other alone")
}
