package ui

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gubarz/studymd/internal/clipboard"
	"github.com/gubarz/studymd/internal/content"
	"github.com/gubarz/studymd/internal/state"
)

type fakeClipboard struct {
	copied []string
}

func (f *fakeClipboard) Copy(text string) error {
	f.copied = append(f.copied, text)
	return nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m mainModel, msg tea.Msg) (mainModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(mainModel)
	require.True(t, ok)
	return out, cmd
}

// newTestModel returns a sized model with the default guide loaded
func newTestModel(t *testing.T) (mainModel, *fakeClipboard) {
	t.Helper()
	src, err := content.NewBundled()
	require.NoError(t, err)
	return newModelFor(t, src, "go-concurrency")
}

func newModelFor(t *testing.T, src content.Source, docID string) (mainModel, *fakeClipboard) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fake := &fakeClipboard{}
	m := newMainModel(context.Background(), Options{
		Library: content.NewLibrary(src, logger),
		Copier:  clipboard.NewCopier(logger).WithClipboard(fake),
		Logger:  logger,
		DocID:   docID,
	})
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 160, Height: 40})

	cmd := m.Init()
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	require.NotNil(t, m.app.Document)
	return m, fake
}

func TestModel_InitialLoad(t *testing.T) {
	m, _ := newTestModel(t)

	assert.Equal(t, "go-concurrency", m.app.DocumentID())
	assert.Equal(t, "goroutines", m.app.ActiveSection)
	assert.NotEmpty(t, m.page.Lines)
	assert.Contains(t, m.View(), "Go Concurrency")
}

func TestModel_SectionNavigation(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = send(t, m, key("]"))
	assert.Equal(t, "channels", m.app.ActiveSection)
	m, _ = send(t, m, key("]"))
	assert.Equal(t, "sync", m.app.ActiveSection)
	m, _ = send(t, m, key("["))
	assert.Equal(t, "channels", m.app.ActiveSection)

	assert.True(t, m.scrollTo("what-is-a-race-condition"))
	assert.Equal(t, "what-is-a-race-condition", m.app.ActiveSection)
	m, _ = send(t, m, key("]"))
	assert.Equal(t, "what-is-a-race-condition", m.app.ActiveSection, "stays on the last section")

	assert.False(t, m.scrollTo("no-such-anchor"))
	assert.Equal(t, "what-is-a-race-condition", m.app.ActiveSection)
}

func TestModel_Bookmarks(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = send(t, m, key("b"))
	assert.True(t, m.app.Bookmarks.Has("goroutines"))

	m.scrollTo("sync")
	m, _ = send(t, m, key("b"))
	m.scrollTo("channels")

	m, _ = send(t, m, key("B"))
	assert.Equal(t, "sync", m.app.ActiveSection)
	m, _ = send(t, m, key("B"))
	assert.Equal(t, "goroutines", m.app.ActiveSection, "wraps to the first bookmark")

	m, _ = send(t, m, key("b"))
	assert.False(t, m.app.Bookmarks.Has("goroutines"))
}

func TestModel_SearchPanel(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = send(t, m, key("/"))
	assert.Equal(t, state.PanelSearch, m.app.Panel)
	assert.Equal(t, focusPanel, m.focus)

	m, cmd := send(t, m, key("Mutex"))
	assert.NotNil(t, cmd, "typing schedules a debounced search")
	assert.Equal(t, "Mutex", m.searchInput.Value())

	m, _ = send(t, m, searchMsg{query: "Mut"})
	assert.Empty(t, m.results, "stale debounce ticks are ignored")

	m, _ = send(t, m, searchMsg{query: "Mutex"})
	require.NotEmpty(t, m.results)
	assert.Equal(t, "sync", m.results[0].SectionID)

	m, _ = send(t, m, key("enter"))
	assert.Equal(t, "sync", m.app.ActiveSection)

	m, _ = send(t, m, key("esc"))
	assert.Equal(t, focusDocument, m.focus)
	m, _ = send(t, m, key("n"))
	assert.Equal(t, state.PanelNotes, m.app.Panel, "panels replace each other")
}

func TestModel_Notes(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = send(t, m, key("n"))
	require.Equal(t, state.PanelNotes, m.app.Panel)

	m, _ = send(t, m, key("Spawning"))
	m, _ = send(t, m, key("tab"))
	m, _ = send(t, m, key("go, Review"))
	m, _ = send(t, m, key("tab"))
	m, _ = send(t, m, key("use go func"))
	m, _ = send(t, m, key("ctrl+s"))

	require.Equal(t, 1, m.app.Notes.Len(), m.status)
	note := m.app.Notes.List()[0]
	assert.Equal(t, "Spawning", note.Title)
	assert.Equal(t, "use go func", note.Content)
	assert.Equal(t, []string{"go", "review"}, note.Tags)
	assert.Equal(t, "goroutines", note.Section)
	assert.Empty(t, m.noteTitle.Value(), "form is cleared")

	// An empty form is rejected
	m, _ = send(t, m, key("ctrl+s"))
	assert.True(t, m.statusErr)
	assert.Equal(t, 1, m.app.Notes.Len())

	m, _ = send(t, m, key("esc"))
	assert.Equal(t, fieldList, m.noteField)
	m, _ = send(t, m, key("x"))
	assert.Zero(t, m.app.Notes.Len())
}

func TestModel_CopyCodeBlock(t *testing.T) {
	m, fake := newTestModel(t)

	m, cmd := send(t, m, key("y"))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	require.Len(t, fake.copied, 1)
	assert.Contains(t, fake.copied[0], `fmt.Println("hello from a goroutine")`)
	assert.False(t, m.statusErr)
	assert.Contains(t, m.status, "copied")
}

func TestModel_LastLoadWins(t *testing.T) {
	m, _ := newTestModel(t)

	slow := m.loadCmd("git-essentials")
	fast := m.loadCmd("sql-fundamentals")

	m, _ = send(t, m, fast())
	m, _ = send(t, m, slow())
	assert.Equal(t, "sql-fundamentals", m.app.DocumentID())
}

func TestModel_CatalogPicker(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = send(t, m, key("o"))
	assert.Equal(t, sidebarCatalog, m.sidebar)
	assert.Equal(t, focusSidebar, m.focus)

	m, _ = send(t, m, key("down"))
	m, cmd := send(t, m, key("enter"))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	assert.Equal(t, m.catalog[1].ID, m.app.DocumentID())
	assert.Equal(t, sidebarSections, m.sidebar)
}

func TestModel_MissingGuideShowsPlaceholder(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = send(t, m, m.loadCmd("ghost")())
	assert.Equal(t, "Document not found", m.app.Document.Title)
	assert.True(t, m.statusErr)
}

func TestModel_GuidesChangedKeepsSection(t *testing.T) {
	m, _ := newTestModel(t)
	m.scrollTo("sync")

	m, cmd := send(t, m, guidesChangedMsg{files: []string{"go-concurrency.md"}})
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	assert.Equal(t, "go-concurrency", m.app.DocumentID())
	assert.Equal(t, "sync", m.app.ActiveSection)
}

func TestModel_GuidesChangedReloadsContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guide.md")
	require.NoError(t, os.WriteFile(path, []byte("# Guide\n\n## Old Part\nbefore the edit\n"), 0o644))
	src, err := content.NewDir(dir)
	require.NoError(t, err)

	m, _ := newModelFor(t, src, "guide")
	assert.Equal(t, "old-part", m.app.ActiveSection)

	require.NoError(t, os.WriteFile(path, []byte("# Guide\n\n## New Part\nafter the edit\n"), 0o644))
	m, cmd := send(t, m, guidesChangedMsg{files: []string{path}})
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	assert.Contains(t, m.app.Document.Content, "after the edit")
	assert.Contains(t, m.page.Content(), "after the edit")
	assert.Equal(t, "new-part", m.app.ActiveSection, "a vanished section falls back to the first one")
}

func TestModel_NavOmitsFencedHeadings(t *testing.T) {
	dir := t.TempDir()
	body := "# Guide\n\n## Setup\n```sh\n## just a comment\n```\n\n## Usage\ntext\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guide.md"), []byte(body), 0o644))
	src, err := content.NewDir(dir)
	require.NoError(t, err)

	m, _ := newModelFor(t, src, "guide")

	nav := m.navSections()
	require.Len(t, nav, 2)
	for _, s := range nav {
		_, ok := m.page.Anchor(s.ID)
		assert.True(t, ok, "sidebar entry %q has no anchor", s.ID)
	}
}

func TestModel_SidebarScrollPersists(t *testing.T) {
	m, _ := newTestModel(t)
	// body height 4 leaves two sidebar rows for five sections
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 160, Height: 7})
	require.Equal(t, 2, m.sidebarRows())

	m, _ = send(t, m, key("tab"))
	require.Equal(t, focusSidebar, m.focus)
	for i := 0; i < 4; i++ {
		m, _ = send(t, m, key("down"))
	}
	assert.Equal(t, 4, m.sideCursor)
	assert.Equal(t, 3, m.sideOffset)

	m, _ = send(t, m, key("up"))
	assert.Equal(t, 3, m.sideCursor)
	assert.Equal(t, 3, m.sideOffset, "moving inside the window does not scroll")
	assert.Contains(t, m.View(), "Context Cancellation")
}

func TestModel_ThemeToggleKeepsScroll(t *testing.T) {
	m, _ := newTestModel(t)
	t.Cleanup(func() { styles = DefaultStyles() })

	require.True(t, m.scrollTo("channels"))
	m.viewport.SetYOffset(m.viewport.YOffset + 3)
	offset := m.viewport.YOffset

	m, _ = send(t, m, key("d"))
	assert.Equal(t, offset, m.viewport.YOffset)

	m, _ = send(t, m, tea.WindowSizeMsg{Width: 160, Height: 30})
	assert.Equal(t, offset, m.viewport.YOffset, "same width keeps the position")
}

func TestModel_ToggleKeys(t *testing.T) {
	m, _ := newTestModel(t)
	t.Cleanup(func() { styles = DefaultStyles() })

	dark := m.app.DarkMode
	m, _ = send(t, m, key("d"))
	assert.NotEqual(t, dark, m.app.DarkMode)

	m, _ = send(t, m, key("s"))
	assert.False(t, m.app.SidebarOpen)
	m, _ = send(t, m, key("tab"))
	assert.Equal(t, focusDocument, m.focus, "only the document is focusable")

	m, cmd := send(t, m, key("q"))
	assert.True(t, m.quitting)
	assert.NotNil(t, cmd)
}
