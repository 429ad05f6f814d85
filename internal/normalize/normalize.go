// Package normalize provides utilities for normalizing book data.
package normalize

import "strings"

// Leading articles ignored when comparing titles, so "The Hobbit" and
// "Hobbit" key identically.
//
//nolint:gochecknoglobals // Static lookup table for title normalization
var leadingArticles = map[string]bool{
	"the": true,
	"a":   true,
	"an":  true,
}

// TitleKey reduces a book title to a comparison key: lowercased, whitespace
// collapsed, punctuation and a leading article dropped. Used to decide
// whether two records refer to the same book when no shared identifier
// exists, e.g. filtering recommendations the user already shelved.
// Returns empty string for titles with no comparable content.
func TitleKey(raw string) string {
	s := strings.ToLower(sanitizeString(raw))

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '\n':
			space = b.Len() > 0
		case isTitleRune(r):
			if space {
				b.WriteByte(' ')
				space = false
			}
			b.WriteRune(r)
		}
	}
	s = b.String()

	if first, rest, ok := strings.Cut(s, " "); ok && leadingArticles[first] {
		return rest
	}
	return s
}

// AuthorKey reduces an author line to a comparison key. Multi-author lines
// key on the full joined form; ordering differences are not reconciled.
func AuthorKey(authors []string) string {
	parts := make([]string, 0, len(authors))
	for _, a := range authors {
		if key := TitleKey(a); key != "" {
			parts = append(parts, key)
		}
	}
	return strings.Join(parts, "; ")
}

func isTitleRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r > 127:
		// Keep non-ASCII letters untouched rather than guessing at
		// transliteration.
		return true
	}
	return false
}

// sanitizeString removes null bytes from strings, which can cause issues in
// databases and JSON parsing. Some upstream catalog feeds include null
// terminators in strings.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 { // null byte
			return -1 // drop it
		}
		return r
	}, s)
}
