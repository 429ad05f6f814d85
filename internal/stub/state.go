package stub

import (
	"strings"
	"sync"

	"github.com/nextreadapp/nextread-client/internal/domain"
)

// stubUser is an account held by the in-memory backend.
type stubUser struct {
	ID               string
	Email            string
	PasswordHash     string
	Nickname         string
	AvatarURL        string
	FirstTime        bool
	Verified         bool
	VerificationCode string

	Survey  surveyRecord
	Library []domain.ShelfEntry
	// seenKeys maps Idempotency-Key values to the entry they created, so a
	// retried survey submission does not duplicate books.
	seenKeys map[string]string
}

type surveyRecord struct {
	Pace     domain.Pace
	GenreIDs []int
	Set      bool
}

// state is the whole in-memory world of the stub.
type state struct {
	mu      sync.Mutex
	users   map[string]*stubUser // by ID
	byEmail map[string]*stubUser
	nextID  int
}

func newState() *state {
	return &state{
		users:   make(map[string]*stubUser),
		byEmail: make(map[string]*stubUser),
	}
}

func (st *state) lookupEmail(email string) (*stubUser, bool) {
	u, ok := st.byEmail[strings.ToLower(email)]
	return u, ok
}

func (st *state) insert(u *stubUser) {
	st.users[u.ID] = u
	st.byEmail[strings.ToLower(u.Email)] = u
}

// catalog is the stub's static book pool; recommendations are served from it
// minus whatever is already in the user's library.
var catalog = []domain.Book{
	{ID: "cat-1", Title: "The Left Hand of Darkness", Authors: []string{"Ursula K. Le Guin"}, PublishedYear: 1969, PageCount: 304, Publisher: "Ace Books"},
	{ID: "cat-2", Title: "Kafka on the Shore", Authors: []string{"Haruki Murakami"}, PublishedYear: 2002, PageCount: 505, Publisher: "Shinchosha"},
	{ID: "cat-3", Title: "Piranesi", Authors: []string{"Susanna Clarke"}, PublishedYear: 2020, PageCount: 245, Publisher: "Bloomsbury"},
	{ID: "cat-4", Title: "The Name of the Wind", Authors: []string{"Patrick Rothfuss"}, PublishedYear: 2007, PageCount: 662, Publisher: "DAW Books"},
	{ID: "cat-5", Title: "Station Eleven", Authors: []string{"Emily St. John Mandel"}, PublishedYear: 2014, PageCount: 333, Publisher: "Knopf"},
	{ID: "cat-6", Title: "A Memory Called Empire", Authors: []string{"Arkady Martine"}, PublishedYear: 2019, PageCount: 462, Publisher: "Tor Books"},
	{ID: "cat-7", Title: "The Remains of the Day", Authors: []string{"Kazuo Ishiguro"}, PublishedYear: 1989, PageCount: 258, Publisher: "Faber and Faber"},
	{ID: "cat-8", Title: "Project Hail Mary", Authors: []string{"Andy Weir"}, PublishedYear: 2021, PageCount: 476, Publisher: "Ballantine Books"},
}

var genres = []domain.Genre{
	{ID: 1, Name: "Science Fiction"},
	{ID: 2, Name: "Fantasy"},
	{ID: 3, Name: "Literary Fiction"},
	{ID: 4, Name: "Mystery"},
	{ID: 5, Name: "Non-fiction"},
	{ID: 6, Name: "Romance"},
	{ID: 7, Name: "History"},
}
