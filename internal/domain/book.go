package domain

// Book is the client-side projection of a catalog book.
// Title is the only mandatory field; ISBNs are optional and never validated
// client-side - the backend is the authority on catalog data.
type Book struct {
	ID            string   `json:"id,omitempty"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors,omitempty"`
	ISBN10        string   `json:"isbn10,omitempty"`
	ISBN13        string   `json:"isbn13,omitempty"`
	Publisher     string   `json:"publisher,omitempty"`
	CoverURL      string   `json:"coverUrl,omitempty"`
	PageCount     int      `json:"pageCount,omitempty"`
	PublishedYear int      `json:"publishedYear,omitempty"`
	Synopsis      string   `json:"synopsis,omitempty"`
}

// AuthorLine returns a display string for the author list.
func (b Book) AuthorLine() string {
	switch len(b.Authors) {
	case 0:
		return "Unknown author"
	case 1:
		return b.Authors[0]
	default:
		return b.Authors[0] + " et al."
	}
}
