package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nextreadapp/nextread-client/internal/domain"
	"github.com/nextreadapp/nextread-client/internal/services"
	"github.com/nextreadapp/nextread-client/internal/session"
	"github.com/nextreadapp/nextread-client/internal/shelf"
	"github.com/nextreadapp/nextread-client/internal/store"
)

// Column order on the board. Column 0 is the recommendations rail; the
// shelves follow in status order.
var boardShelves = []domain.ReadingStatus{
	domain.StatusToRead,
	domain.StatusRead,
	domain.StatusAbandoned,
}

type libraryLoadedMsg struct {
	entries   []domain.ShelfEntry
	recs      []domain.Recommendation
	fromCache bool
	err       error
}

type moveDoneMsg struct {
	entry      domain.ShelfEntry
	prevStatus domain.ReadingStatus
	err        error
}

type recAddedMsg struct {
	tempID string
	recID  string
	rec    domain.Recommendation
	entry  domain.ShelfEntry
	err    error
}

// shelvesModel renders the three shelves plus the recommendations rail and
// owns the keyboard drag gesture. Moves apply optimistically and roll back
// when the backend write fails.
type shelvesModel struct {
	books   *services.UserBookService
	catalog *services.CatalogService
	cache   *store.Cache
	userID  string

	library domain.Library
	pool    domain.RecommendationPool
	machine shelf.Machine

	col    int
	row    int
	status string

	loaded  bool
	errText string
}

func newShelvesModel(deps Deps, st session.State) shelvesModel {
	var userID string
	if st.Session != nil {
		userID = st.Session.UserID
	}
	return shelvesModel{
		books:   deps.Books,
		catalog: deps.Catalog,
		cache:   deps.Cache,
		userID:  userID,
		col:     1,
	}
}

func (m shelvesModel) init() tea.Cmd {
	return tea.Batch(m.loadFromCache(), m.loadFromNetwork())
}

// loadFromCache paints whatever the last session persisted, so the board is
// not empty while the network round trip runs.
func (m shelvesModel) loadFromCache() tea.Cmd {
	cache, userID := m.cache, m.userID
	if cache == nil || userID == "" {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()
		entries, err := cache.LoadLibrary(ctx, userID)
		if err != nil {
			return nil
		}
		recs, _ := cache.LoadRecommendations(ctx, userID)
		return libraryLoadedMsg{entries: entries, recs: recs, fromCache: true}
	}
}

func (m shelvesModel) loadFromNetwork() tea.Cmd {
	books, catalog := m.books, m.catalog
	cache, userID := m.cache, m.userID
	return func() tea.Msg {
		ctx := context.Background()
		entries, err := books.ListBooks(ctx)
		if err != nil {
			return libraryLoadedMsg{err: err}
		}
		recs, err := catalog.Recommendations(ctx)
		if err != nil {
			return libraryLoadedMsg{err: err}
		}
		if cache != nil && userID != "" {
			if err := cache.SaveLibrary(ctx, userID, entries); err == nil {
				_ = cache.SaveRecommendations(ctx, userID, recs)
			}
		}
		return libraryLoadedMsg{entries: entries, recs: recs}
	}
}

func (m shelvesModel) update(msg tea.Msg) (shelvesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case libraryLoadedMsg:
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		if msg.fromCache && m.loaded {
			// Network data already arrived; the stale cache read loses.
			return m, nil
		}
		m.library = domain.Library{Entries: msg.entries}
		m.pool = domain.RecommendationPool{Items: msg.recs}
		if !msg.fromCache {
			m.loaded = true
			m.errText = ""
		}
		m.clampCursor()
		return m, nil

	case moveDoneMsg:
		if msg.err != nil {
			// Roll the optimistic move back.
			m.library.Move(msg.entry.ID, msg.prevStatus)
			m.errText = "move failed: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("moved %q to %s", msg.entry.Book.Title, msg.entry.Status.Label())
		return m, m.persist()

	case recAddedMsg:
		if msg.err != nil {
			// Remove the provisional entry and put the recommendation back.
			m.library.Remove(msg.tempID)
			m.pool.Items = append(m.pool.Items, msg.rec)
			m.errText = "add failed: " + msg.err.Error()
			return m, nil
		}
		// Swap the provisional entry for the server's.
		if e := m.library.Find(msg.tempID); e != nil {
			*e = msg.entry
		}
		m.status = fmt.Sprintf("added %q to %s", msg.entry.Book.Title, msg.entry.Status.Label())
		return m, m.persist()

	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

// persist writes the current board to the local cache.
func (m shelvesModel) persist() tea.Cmd {
	cache, userID := m.cache, m.userID
	if cache == nil || userID == "" {
		return nil
	}
	entries := append([]domain.ShelfEntry(nil), m.library.Entries...)
	recs := append([]domain.Recommendation(nil), m.pool.Items...)
	return func() tea.Msg {
		ctx := context.Background()
		if err := cache.SaveLibrary(ctx, userID, entries); err == nil {
			_ = cache.SaveRecommendations(ctx, userID, recs)
		}
		return nil
	}
}

func (m shelvesModel) handleKey(key string) (shelvesModel, tea.Cmd) {
	if m.machine.Dragging() {
		return m.handleDragKey(key)
	}

	switch key {
	case "left", "h":
		if m.col > 0 {
			m.col--
			m.clampCursor()
		}
	case "right", "l":
		if m.col < len(boardShelves) {
			m.col++
			m.clampCursor()
		}
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < m.columnLen(m.col)-1 {
			m.row++
		}
	case " ":
		m.pickup()
	case "r":
		m.status = "refreshing..."
		return m, m.loadFromNetwork()
	}
	return m, nil
}

func (m shelvesModel) handleDragKey(key string) (shelvesModel, tea.Cmd) {
	switch key {
	case "esc":
		m.machine.Cancel()
		m.status = ""
	case "left", "h", "right", "l":
		m.moveTarget(key == "right" || key == "l")
	case "enter", " ":
		return m.drop()
	}
	return m, nil
}

// pickup starts a drag for the item under the cursor.
func (m *shelvesModel) pickup() {
	item, ok := m.itemAt(m.col, m.row)
	if !ok {
		return
	}
	if m.machine.Pickup(item) {
		// Default the target to the first shelf that accepts this item.
		for _, status := range boardShelves {
			if domain.Accepts(status, item.Source()) {
				m.machine.EnterTarget(status)
				break
			}
		}
		m.status = fmt.Sprintf("dragging %q", item.Book.Title)
	}
}

// moveTarget steps the hover target through the shelves.
func (m *shelvesModel) moveTarget(forward bool) {
	over := m.machine.Over()
	idx := 0
	if over != nil {
		for i, s := range boardShelves {
			if s == *over {
				idx = i
				break
			}
		}
		if forward {
			idx++
		} else {
			idx--
		}
	}
	if idx < 0 {
		idx = len(boardShelves) - 1
	}
	if idx >= len(boardShelves) {
		idx = 0
	}
	m.machine.EnterTarget(boardShelves[idx])
}

// drop completes the gesture and dispatches the resulting intent.
func (m shelvesModel) drop() (shelvesModel, tea.Cmd) {
	intent := m.machine.Drop()
	m.status = ""
	if intent == nil {
		return m, nil
	}

	switch intent := intent.(type) {
	case shelf.MoveBook:
		return m.applyMove(intent)
	case shelf.AddRecommendationToLibrary:
		return m.applyAdd(intent)
	}
	return m, nil
}

func (m shelvesModel) applyMove(intent shelf.MoveBook) (shelvesModel, tea.Cmd) {
	entry := m.library.Find(intent.EntryID)
	if entry == nil {
		return m, nil
	}
	prev := entry.Status
	m.library.Move(intent.EntryID, intent.NewStatus)
	m.clampCursor()

	books := m.books
	return m, func() tea.Msg {
		moved, err := books.MoveBook(context.Background(), intent.EntryID, intent.NewStatus)
		if err != nil {
			return moveDoneMsg{entry: domain.ShelfEntry{ID: intent.EntryID, Book: intent.Book}, prevStatus: prev, err: err}
		}
		return moveDoneMsg{entry: moved, prevStatus: prev}
	}
}

func (m shelvesModel) applyAdd(intent shelf.AddRecommendationToLibrary) (shelvesModel, tea.Cmd) {
	rec := m.pool.Find(intent.RecommendationID)
	if rec == nil {
		return m, nil
	}
	snapshot := *rec
	m.pool.Consume(intent.RecommendationID)

	tempID := "pending-" + intent.RecommendationID
	m.library.Add(domain.ShelfEntry{
		ID:     tempID,
		Book:   intent.Book,
		Status: intent.Status,
	})
	m.clampCursor()

	books := m.books
	return m, func() tea.Msg {
		entry, err := books.AddBook(context.Background(), services.AddBookRequest{
			Book:   intent.Book,
			Status: intent.Status,
		}, "")
		return recAddedMsg{tempID: tempID, recID: intent.RecommendationID, rec: snapshot, entry: entry, err: err}
	}
}

// itemAt resolves the cursor position to a draggable item.
func (m *shelvesModel) itemAt(col, row int) (shelf.Item, bool) {
	if col == 0 {
		if row >= len(m.pool.Items) {
			return shelf.Item{}, false
		}
		rec := m.pool.Items[row]
		return shelf.Item{
			Kind:    shelf.KindRecommendation,
			EntryID: rec.ID,
			Book:    rec.Book,
		}, true
	}

	entries := m.library.ByStatus(boardShelves[col-1])
	if row >= len(entries) {
		return shelf.Item{}, false
	}
	e := entries[row]
	return shelf.Item{
		Kind:         shelf.KindBook,
		EntryID:      e.ID,
		Book:         e.Book,
		SourceStatus: e.Status,
	}, true
}

func (m *shelvesModel) columnLen(col int) int {
	if col == 0 {
		return len(m.pool.Items)
	}
	return len(m.library.ByStatus(boardShelves[col-1]))
}

func (m *shelvesModel) clampCursor() {
	if n := m.columnLen(m.col); m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

func (m shelvesModel) view() string {
	var cols []string
	cols = append(cols, m.viewRecommendations())
	for i, status := range boardShelves {
		cols = append(cols, m.viewShelf(i+1, status))
	}
	board := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Your shelves"))
	b.WriteString("\n")
	b.WriteString(board)
	if m.status != "" {
		b.WriteString("\n" + successStyle.Render(m.status))
	}
	if m.errText != "" {
		b.WriteString("\n" + errorStyle.Render(m.errText))
	}
	if m.machine.Dragging() {
		b.WriteString(helpStyle.Render("\nleft/right choose shelf | enter drop | esc cancel"))
	} else {
		b.WriteString(helpStyle.Render("\narrows move | space pick up | r refresh | ctrl+l sign out"))
	}
	return b.String()
}

func (m shelvesModel) viewRecommendations() string {
	var b strings.Builder
	b.WriteString("Recommendations\n\n")
	if len(m.pool.Items) == 0 {
		b.WriteString(subtleStyle.Render("nothing new"))
	}
	for i, rec := range m.pool.Items {
		b.WriteString(m.renderRow(rec.Book, 0, i, rec.ID) + "\n")
	}
	return m.columnFrame(0).Render(b.String())
}

func (m shelvesModel) viewShelf(col int, status domain.ReadingStatus) string {
	var b strings.Builder
	entries := m.library.ByStatus(status)
	b.WriteString(fmt.Sprintf("%s (%d)\n\n", status.Label(), len(entries)))
	if len(entries) == 0 {
		b.WriteString(subtleStyle.Render("empty"))
	}
	for i, e := range entries {
		line := m.renderRow(e.Book, col, i, e.ID)
		if e.Rating > 0 {
			line += subtleStyle.Render(fmt.Sprintf(" %d/5", e.Rating))
		}
		b.WriteString(line + "\n")
	}
	return m.columnFrame(col).Render(b.String())
}

func (m shelvesModel) renderRow(book domain.Book, col, row int, itemID string) string {
	label := book.Title
	if len(label) > 26 {
		label = label[:25] + "…"
	}
	if active := m.machine.Active(); active != nil && active.EntryID == itemID {
		return draggingRowStyle.Render("◦ " + label)
	}
	if col == m.col && row == m.row && !m.machine.Dragging() {
		return selectedRowStyle.Render("> " + label)
	}
	return "  " + label
}

// columnFrame picks the border style: highlighted when focused, target
// colored while a drag hovers over it.
func (m shelvesModel) columnFrame(col int) lipgloss.Style {
	if m.machine.Dragging() && col > 0 {
		if over := m.machine.Over(); over != nil && *over == boardShelves[col-1] {
			if m.machine.CanAccept() {
				return columnTargetStyle
			}
			return columnStyle
		}
	}
	if col == m.col && !m.machine.Dragging() {
		return columnFocusStyle
	}
	return columnStyle
}
