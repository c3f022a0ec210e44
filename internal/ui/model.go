package ui

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gubarz/studymd/internal/clipboard"
	"github.com/gubarz/studymd/internal/content"
	"github.com/gubarz/studymd/internal/parser"
	"github.com/gubarz/studymd/internal/search"
	"github.com/gubarz/studymd/internal/state"
)

const (
	panelWidth      = 38
	minDocWidth     = 30
	defaultSidebarW = 28
)

// Options wires the model to its collaborators
type Options struct {
	Library      *content.Library
	Copier       *clipboard.Copier
	Logger       *slog.Logger
	DocID        string
	DarkMode     bool
	Search       search.Options
	WrapWidth    int
	SidebarWidth int
}

// focusArea is the pane receiving keys
type focusArea int

const (
	focusDocument focusArea = iota
	focusSidebar
	focusPanel
)

// sidebarMode selects what the sidebar lists
type sidebarMode int

const (
	sidebarSections sidebarMode = iota
	sidebarCatalog
)

// noteField is the focused part of the notes panel
type noteField int

const (
	fieldTitle noteField = iota
	fieldTags
	fieldBody
	fieldList
)

// mainModel is the Bubble Tea model for the study viewer
type mainModel struct {
	ctx      context.Context
	opts     Options
	logger   *slog.Logger
	app      *state.App
	width    int
	height   int
	quitting bool

	catalog     []content.Item
	sidebar     sidebarMode
	focus       focusArea
	sideCursor  int
	sideOffset  int
	restoreTo   string // section to return to after a reload
	blocks      []parser.Block
	page        Page
	layoutWidth int
	viewport    viewport.Model
	searchInput textinput.Model
	results     []search.Result
	resultIdx   int

	noteTitle  textinput.Model
	noteTags   textinput.Model
	noteBody   textarea.Model
	noteField  noteField
	noteCursor int
	editingID  string

	status    string
	statusErr bool
}

// newMainModel creates the model; the first document load starts in Init
func newMainModel(ctx context.Context, opts Options) mainModel {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SidebarWidth <= 0 {
		opts.SidebarWidth = defaultSidebarW
	}
	if opts.WrapWidth <= 0 {
		opts.WrapWidth = defaultWrap
	}
	if opts.Copier == nil {
		opts.Copier = clipboard.NewCopier(logger)
	}

	si := textinput.New()
	si.Placeholder = "Search this guide..."
	si.CharLimit = 256
	si.Prompt = "/ "

	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 120

	tags := textinput.New()
	tags.Placeholder = "tags, comma separated"
	tags.CharLimit = 200

	body := textarea.New()
	body.Placeholder = "Write a note..."
	body.ShowLineNumbers = false
	body.CharLimit = 10000
	body.SetHeight(5)

	return mainModel{
		ctx:         ctx,
		opts:        opts,
		logger:      logger,
		app:         state.New(opts.DarkMode),
		catalog:     opts.Library.Catalog(),
		viewport:    viewport.New(80, 20),
		searchInput: si,
		noteTitle:   title,
		noteTags:    tags,
		noteBody:    body,
	}
}

// Init implements tea.Model
func (m mainModel) Init() tea.Cmd {
	return m.loadCmd(m.opts.DocID)
}

// Update implements tea.Model
func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	nm := next.(mainModel)
	nm.keepSidebarInView()
	return nm, cmd
}

func (m mainModel) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case docLoadedMsg:
		m.handleLoaded(msg)
		return m, nil

	case searchMsg:
		// Only the latest keystroke's tick runs the search
		if msg.query == m.searchInput.Value() {
			m.runSearch()
		}
		return m, nil

	case guidesChangedMsg:
		return m, m.handleGuidesChanged(msg)

	case clipboard.CopiedMsg:
		if msg.Err != nil {
			m.setError("copy failed: " + msg.Err.Error())
		} else {
			m.setStatus(fmt.Sprintf("copied %d characters", msg.Chars))
		}
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	return m.updateFocused(msg)
}

// updateFocused forwards a message to the focused component
func (m mainModel) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.focus == focusPanel {
		switch m.app.Panel {
		case state.PanelSearch:
			prev := m.searchInput.Value()
			m.searchInput, cmd = m.searchInput.Update(msg)
			// Only trigger debounced search if query changed
			if q := m.searchInput.Value(); q != prev {
				return m, tea.Batch(cmd, debounceSearch(q))
			}
			return m, cmd
		case state.PanelNotes:
			switch m.noteField {
			case fieldTitle:
				m.noteTitle, cmd = m.noteTitle.Update(msg)
			case fieldTags:
				m.noteTags, cmd = m.noteTags.Update(msg)
			case fieldBody:
				m.noteBody, cmd = m.noteBody.Update(msg)
			}
			return m, cmd
		}
	}

	if m.focus == focusDocument {
		m.viewport, cmd = m.viewport.Update(msg)
		m.syncActiveSection()
	}
	return m, cmd
}

// typing reports whether keys should reach a text input
func (m *mainModel) typing() bool {
	if m.focus != focusPanel {
		return false
	}
	switch m.app.Panel {
	case state.PanelSearch:
		return true
	case state.PanelNotes:
		return m.noteField != fieldList
	}
	return false
}

// handleKey processes global and pane keys; unhandled keys reach the focused component
func (m *mainModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	key := msg.String()
	if key == "ctrl+c" {
		m.quitting = true
		return tea.Quit, true
	}

	if m.typing() {
		return m.handleTypingKey(key)
	}

	switch key {
	case "q":
		m.quitting = true
		return tea.Quit, true
	case "tab":
		m.cycleFocus()
	case "esc":
		m.escape()
	case "/":
		return m.openPanel(state.PanelSearch), true
	case "n":
		if m.app.Panel == state.PanelNotes && m.focus == focusPanel {
			m.closePanel()
			return nil, true
		}
		return m.openPanel(state.PanelNotes), true
	case "b":
		m.toggleBookmark()
	case "B":
		m.nextBookmark()
	case "[":
		m.stepSection(-1)
	case "]":
		m.stepSection(1)
	case "y":
		return m.copyCode(), true
	case "d":
		dark := m.app.ToggleDarkMode()
		RefreshStyles(dark)
		m.relayout()
	case "s":
		if !m.app.ToggleSidebar() && m.focus == focusSidebar {
			m.focus = focusDocument
		}
		m.resize()
	case "o":
		m.openCatalog()
	case "enter":
		return m.activate(), true
	case "up", "k":
		if m.focus == focusDocument {
			return nil, false
		}
		m.moveCursor(-1)
	case "down", "j":
		if m.focus == focusDocument {
			return nil, false
		}
		m.moveCursor(1)
	case "x":
		if m.focus == focusPanel && m.app.Panel == state.PanelNotes {
			m.deleteSelectedNote()
		}
	default:
		return nil, false
	}
	return nil, true
}

func (m *mainModel) handleTypingKey(key string) (tea.Cmd, bool) {
	switch key {
	case "esc":
		if m.app.Panel == state.PanelNotes && m.noteField != fieldList {
			m.focusNoteField(fieldList)
			return nil, true
		}
		m.focus = focusDocument
		m.searchInput.Blur()
		return nil, true
	}

	switch m.app.Panel {
	case state.PanelSearch:
		switch key {
		case "tab":
			m.searchInput.Blur()
			m.cycleFocus()
		case "enter":
			m.jumpToResult()
		case "up", "ctrl+p":
			m.resultIdx = clamp(m.resultIdx-1, 0, max(0, len(m.results)-1))
		case "down", "ctrl+n":
			m.resultIdx = clamp(m.resultIdx+1, 0, max(0, len(m.results)-1))
		default:
			return nil, false
		}
		return nil, true

	case state.PanelNotes:
		switch key {
		case "tab":
			m.focusNoteField(m.noteField + 1)
		case "ctrl+s":
			m.saveNote()
		default:
			return nil, false
		}
		return nil, true
	}
	return nil, false
}

// cycleFocus moves focus sidebar -> document -> panel -> sidebar, skipping hidden panes
func (m *mainModel) cycleFocus() {
	order := []focusArea{focusDocument}
	if m.app.Panel != state.PanelNone {
		order = append(order, focusPanel)
	}
	if m.app.SidebarOpen {
		order = append([]focusArea{focusSidebar}, order...)
	}
	idx := slices.Index(order, m.focus)
	m.setFocus(order[(idx+1)%len(order)])
}

func (m *mainModel) setFocus(f focusArea) {
	m.focus = f
	m.searchInput.Blur()
	m.noteTitle.Blur()
	m.noteTags.Blur()
	m.noteBody.Blur()

	switch f {
	case focusSidebar:
		m.syncSidebarCursor()
	case focusPanel:
		switch m.app.Panel {
		case state.PanelSearch:
			m.searchInput.Focus()
		case state.PanelNotes:
			m.focusNoteField(m.noteField)
		}
	}
}

func (m *mainModel) escape() {
	switch {
	case m.sidebar == sidebarCatalog:
		m.sidebar = sidebarSections
		m.syncSidebarCursor()
	case m.app.Panel != state.PanelNone:
		m.closePanel()
	default:
		m.focus = focusDocument
	}
}

func (m *mainModel) openPanel(p state.Panel) tea.Cmd {
	if m.app.Panel != p {
		m.app.TogglePanel(p)
		m.resize()
	}
	m.setFocus(focusPanel)
	if p == state.PanelSearch {
		return textinput.Blink
	}
	return nil
}

func (m *mainModel) closePanel() {
	m.app.TogglePanel(m.app.Panel)
	m.setFocus(focusDocument)
	m.resize()
}

func (m *mainModel) openCatalog() {
	if !m.app.SidebarOpen {
		m.app.ToggleSidebar()
		m.resize()
	}
	m.sidebar = sidebarCatalog
	m.setFocus(focusSidebar)
}

// moveCursor moves the cursor of the focused list
func (m *mainModel) moveCursor(delta int) {
	switch m.focus {
	case focusSidebar:
		m.sideCursor = clamp(m.sideCursor+delta, 0, max(0, m.sidebarLen()-1))
	case focusPanel:
		if m.app.Panel == state.PanelNotes {
			m.noteCursor = clamp(m.noteCursor+delta, 0, max(0, m.app.Notes.Len()-1))
		}
	}
}

// activate handles enter outside text inputs
func (m *mainModel) activate() tea.Cmd {
	switch m.focus {
	case focusSidebar:
		if m.sidebar == sidebarCatalog {
			if m.sideCursor < len(m.catalog) {
				m.sidebar = sidebarSections
				return m.loadCmd(m.catalog[m.sideCursor].ID)
			}
			return nil
		}
		if nav := m.navSections(); m.sideCursor < len(nav) {
			m.scrollTo(nav[m.sideCursor].ID)
		}
	case focusPanel:
		if m.app.Panel == state.PanelNotes {
			m.editSelectedNote()
		}
	}
	return nil
}

// ============================================================================
// Document loading
// ============================================================================

// loadCmd starts loading id; results of superseded loads are dropped on arrival
func (m *mainModel) loadCmd(id string) tea.Cmd {
	gen := m.app.BeginLoad(id)
	lib, ctx := m.opts.Library, m.ctx
	m.logger.Debug("ui: load", slog.String("id", id), slog.Uint64("gen", gen))
	return func() tea.Msg {
		return docLoadedMsg{gen: gen, result: lib.Load(ctx, id)}
	}
}

func (m *mainModel) handleLoaded(msg docLoadedMsg) {
	if !m.app.FinishLoad(msg.gen, msg.result) {
		m.logger.Debug("ui: dropped stale load", slog.String("id", msg.result.ID), slog.Uint64("gen", msg.gen))
		return
	}

	m.blocks = parser.Render(m.app.Document.Content)
	m.relayout()
	m.viewport.GotoTop()
	m.sideCursor, m.sideOffset = 0, 0
	m.results, m.resultIdx = nil, 0
	if m.searchInput.Value() != "" {
		m.runSearch()
	}

	if m.restoreTo != "" {
		m.scrollTo(m.restoreTo)
		m.restoreTo = ""
	}

	if msg.result.Status != content.StatusOK {
		m.setError(fmt.Sprintf("%s: %s", msg.result.ID, msg.result.Status))
	} else {
		m.setStatus(m.app.Document.Title)
	}
}

func (m *mainModel) handleGuidesChanged(msg guidesChangedMsg) tea.Cmd {
	m.logger.Info("ui: guides changed", slog.Any("files", msg.files))
	if err := m.opts.Library.Reset(); err != nil {
		m.setError("reload failed: " + err.Error())
		return nil
	}
	m.catalog = m.opts.Library.Catalog()
	id := m.app.DocumentID()
	if id == "" {
		return nil
	}
	m.restoreTo = m.app.ActiveSection
	return m.loadCmd(id)
}

// ============================================================================
// Layout and navigation
// ============================================================================

// paneWidths returns inner widths; each visible pane adds a 2-column border
func (m *mainModel) paneWidths() (sidebar, doc, panel int) {
	used := 2
	if m.app.SidebarOpen {
		sidebar = m.opts.SidebarWidth
		used += sidebar + 2
	}
	if m.app.Panel != state.PanelNone {
		panel = panelWidth
		used += panel + 2
	}
	doc = max(m.width-used, minDocWidth)
	return sidebar, doc, panel
}

func (m *mainModel) bodyHeight() int {
	return max(m.height-3, 3) // status line + border
}

func (m *mainModel) resize() {
	_, doc, panel := m.paneWidths()
	m.viewport.Width = doc
	m.viewport.Height = m.bodyHeight()
	m.searchInput.Width = max(panel-4, 8)
	m.noteTitle.Width = max(panel-4, 8)
	m.noteTags.Width = max(panel-4, 8)
	m.noteBody.SetWidth(max(panel-2, 8))
	m.relayout()
}

// relayout re-wraps the current blocks, keeping the scroll position
func (m *mainModel) relayout() {
	if m.app.Document == nil {
		return
	}
	_, doc, _ := m.paneWidths()
	width := min(doc-2, m.opts.WrapWidth)
	offset := m.viewport.YOffset
	active := m.app.ActiveSection

	rewrapped := width != m.layoutWidth
	m.layoutWidth = width
	m.page = Layout(m.blocks, width, styles)
	m.viewport.SetContent(m.page.Content())

	// Same width means same line positions; only a re-wrap moves the reader
	if line, ok := m.page.Anchor(active); ok && rewrapped && offset > 0 {
		m.viewport.SetYOffset(line)
	} else {
		m.viewport.SetYOffset(offset)
	}
}

// scrollTo moves the viewport to a section anchor; unknown ids are a no-op
func (m *mainModel) scrollTo(id string) bool {
	line, ok := m.page.Anchor(id)
	if !ok {
		return false
	}
	m.viewport.SetYOffset(line)
	m.app.SetActiveSection(id)
	return true
}

// syncActiveSection follows viewport scrolling
func (m *mainModel) syncActiveSection() {
	if id := m.page.SectionAt(m.viewport.YOffset); id != "" {
		m.app.SetActiveSection(id)
	}
}

func (m *mainModel) navSections() []parser.Section {
	if m.app.Document == nil {
		return nil
	}
	return m.app.Document.NavSections()
}

func (m *mainModel) activeIndex(nav []parser.Section) int {
	return slices.IndexFunc(nav, func(s parser.Section) bool { return s.ID == m.app.ActiveSection })
}

func (m *mainModel) stepSection(delta int) {
	nav := m.navSections()
	if len(nav) == 0 {
		return
	}
	idx := clamp(m.activeIndex(nav)+delta, 0, len(nav)-1)
	m.scrollTo(nav[idx].ID)
}

func (m *mainModel) sidebarLen() int {
	if m.sidebar == sidebarCatalog {
		return len(m.catalog)
	}
	return len(m.navSections())
}

// keepSidebarInView scrolls the sidebar list to the cursor, or to the
// active section while the sidebar is not focused
func (m *mainModel) keepSidebarInView() {
	target := m.sideCursor
	if m.focus != focusSidebar && m.sidebar == sidebarSections {
		if i := m.activeIndex(m.navSections()); i >= 0 {
			target = i
		}
	}
	scrollWindow(target, m.sidebarLen(), m.sidebarRows(), &m.sideOffset)
}

func (m *mainModel) sidebarRows() int {
	return max(m.bodyHeight()-2, 1)
}

func (m *mainModel) syncSidebarCursor() {
	if m.sidebar == sidebarCatalog {
		m.sideCursor = max(0, slices.IndexFunc(m.catalog, func(it content.Item) bool { return it.ID == m.app.DocumentID() }))
		return
	}
	m.sideCursor = max(0, m.activeIndex(m.navSections()))
}

// ============================================================================
// Bookmarks, search, clipboard
// ============================================================================

func (m *mainModel) toggleBookmark() {
	id, on := m.app.ToggleBookmark()
	switch {
	case id == "":
		m.setError("no section to bookmark")
	case on:
		m.setStatus("bookmarked " + id)
	default:
		m.setStatus("removed bookmark " + id)
	}
}

// nextBookmark jumps to the first bookmarked section after the active one, wrapping around
func (m *mainModel) nextBookmark() {
	nav := m.navSections()
	marks := m.app.Bookmarks.Resolve(nav)
	if len(marks) == 0 {
		m.setError("no bookmarks in this guide")
		return
	}
	current := m.activeIndex(nav)
	for _, s := range marks {
		if slices.IndexFunc(nav, func(n parser.Section) bool { return n.ID == s.ID }) > current {
			m.scrollTo(s.ID)
			return
		}
	}
	m.scrollTo(marks[0].ID)
}

func (m *mainModel) runSearch() {
	m.resultIdx = 0
	if m.app.Document == nil {
		m.results = nil
		return
	}
	m.results = search.Search(m.app.Document.Content, m.searchInput.Value(), m.opts.Search)
}

func (m *mainModel) jumpToResult() {
	if m.resultIdx >= len(m.results) {
		return
	}
	r := m.results[m.resultIdx]
	m.viewport.SetYOffset(m.page.LineForSource(r.Line))
	if m.app.Document.HasSection(r.SectionID) {
		m.app.SetActiveSection(r.SectionID)
	} else {
		m.syncActiveSection()
	}
}

func (m *mainModel) copyCode() tea.Cmd {
	span, ok := m.page.CodeAt(m.viewport.YOffset)
	if !ok {
		m.setError("no code block in this guide")
		return nil
	}
	return m.opts.Copier.CopyAsync(span.Text)
}

// ============================================================================
// Notes
// ============================================================================

func (m *mainModel) focusNoteField(f noteField) {
	if f > fieldList {
		f = fieldTitle
	}
	m.noteField = f
	m.noteTitle.Blur()
	m.noteTags.Blur()
	m.noteBody.Blur()
	switch f {
	case fieldTitle:
		m.noteTitle.Focus()
	case fieldTags:
		m.noteTags.Focus()
	case fieldBody:
		m.noteBody.Focus()
	}
}

func (m *mainModel) saveNote() {
	in := state.NoteInput{
		Title:   m.noteTitle.Value(),
		Content: m.noteBody.Value(),
		Section: m.app.ActiveSection,
		Tags:    state.ParseTags(m.noteTags.Value()),
	}

	var (
		note state.Note
		err  error
	)
	if m.editingID != "" {
		if existing, ok := m.app.Notes.Get(m.editingID); ok {
			in.Section = existing.Section
		}
		note, err = m.app.Notes.Update(m.editingID, in)
	} else {
		note, err = m.app.Notes.Add(in)
	}
	if err != nil {
		m.setError(err.Error())
		return
	}

	m.logger.Info("ui: note saved", slog.String("id", note.ID), slog.String("section", note.Section))
	m.resetNoteForm()
	m.setStatus("saved note " + note.Title)
}

func (m *mainModel) resetNoteForm() {
	m.editingID = ""
	m.noteTitle.Reset()
	m.noteTags.Reset()
	m.noteBody.Reset()
	m.focusNoteField(fieldTitle)
}

func (m *mainModel) editSelectedNote() {
	notes := m.app.Notes.List()
	if m.noteCursor >= len(notes) {
		return
	}
	n := notes[m.noteCursor]
	m.editingID = n.ID
	m.noteTitle.SetValue(n.Title)
	m.noteTags.SetValue(joinTags(n.Tags))
	m.noteBody.SetValue(n.Content)
	m.focusNoteField(fieldTitle)
}

func (m *mainModel) deleteSelectedNote() {
	notes := m.app.Notes.List()
	if m.noteCursor >= len(notes) {
		return
	}
	id := notes[m.noteCursor].ID
	if err := m.app.Notes.Delete(id); err != nil {
		m.setError(err.Error())
		return
	}
	if id == m.editingID {
		m.resetNoteForm()
		m.focusNoteField(fieldList)
	}
	m.noteCursor = clamp(m.noteCursor, 0, max(0, m.app.Notes.Len()-1))
	m.setStatus("deleted note")
}

func (m *mainModel) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *mainModel) setError(s string) {
	m.status, m.statusErr = s, true
}
