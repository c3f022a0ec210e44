package ui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/gubarz/studymd/internal/search"
	"github.com/gubarz/studymd/internal/state"
)

// ============================================================================
// String Builder Pool - reduces GC pressure from rendering
// ============================================================================

var builderPool = sync.Pool{
	New: func() interface{} {
		return &strings.Builder{}
	},
}

func getBuilder() *strings.Builder {
	b := builderPool.Get().(*strings.Builder)
	b.Reset()
	return b
}

func putBuilder(b *strings.Builder) {
	if b.Cap() < 64*1024 { // Don't pool huge builders
		builderPool.Put(b)
	}
}

// View implements tea.Model
func (m mainModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "loading..."
	}

	sw, dw, pw := m.paneWidths()
	h := m.bodyHeight()

	panes := make([]string, 0, 3)
	if m.app.SidebarOpen {
		panes = append(panes, styles.Frame(m.focus == focusSidebar).
			Width(sw).Height(h).Render(m.renderSidebar(sw, h)))
	}
	panes = append(panes, styles.Frame(m.focus == focusDocument).
		Width(dw).Height(h).Render(m.viewport.View()))

	switch m.app.Panel {
	case state.PanelSearch:
		panes = append(panes, styles.Frame(m.focus == focusPanel).
			Width(pw).Height(h).Render(m.renderSearchPanel(pw, h)))
	case state.PanelNotes:
		panes = append(panes, styles.Frame(m.focus == focusPanel).
			Width(pw).Height(h).Render(m.renderNotesPanel(pw, h)))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, panes...)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatus())
}

// renderSidebar lists the catalog or the current guide's sections
func (m *mainModel) renderSidebar(width, height int) string {
	b := getBuilder()
	defer putBuilder(b)

	var rows []string
	if m.sidebar == sidebarCatalog {
		b.WriteString(styles.Title.Render("Guides"))
		current := m.app.DocumentID()
		for _, item := range m.catalog {
			label := item.Icon.Glyph() + " " + item.Title
			if item.ID == current {
				label += " •"
			}
			rows = append(rows, label)
		}
	} else {
		title := "Loading..."
		if doc := m.app.Document; doc != nil {
			title = doc.Icon.Glyph() + " " + doc.Title
		}
		b.WriteString(styles.Title.Render(truncate.StringWithTail(title, uint(width), "…")))
		for _, s := range m.navSections() {
			marker := "  "
			if m.app.Bookmarks.Has(s.ID) {
				marker = "★ "
			}
			rows = append(rows, marker+s.Title)
		}
	}
	b.WriteString("\n\n")

	// The offset is kept in Update; View only reads it
	start := clamp(m.sideOffset, 0, max(0, len(rows)-1))
	end := min(start+max(height-2, 1), len(rows))
	for i := start; i < end; i++ {
		row := truncate.StringWithTail(rows[i], uint(max(width-2, 1)), "…")
		active := m.sidebar == sidebarSections && m.activeIndex(m.navSections()) == i
		switch {
		case m.focus == focusSidebar && i == m.sideCursor:
			b.WriteString(styles.Cursor.Render("▶ ") + styles.WithSelection(styles.Text).Render(row))
		case active:
			b.WriteString("  " + styles.Cursor.Render(row))
		default:
			b.WriteString("  " + styles.Text.Render(row))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderSearchPanel shows the query input and highlighted results
func (m *mainModel) renderSearchPanel(width, height int) string {
	b := getBuilder()
	defer putBuilder(b)

	b.WriteString(m.searchInput.View())
	b.WriteString("\n")
	query := strings.TrimSpace(m.searchInput.Value())
	switch {
	case query == "":
		b.WriteString(styles.Dim.Render("type to search"))
	case len(m.results) == 0:
		b.WriteString(styles.Dim.Render("no matches"))
	default:
		b.WriteString(styles.Dim.Render(fmt.Sprintf("%d matches", len(m.results))))
	}
	b.WriteString("\n")

	// Each result takes two lines
	perPage := max((height-2)/2, 1)
	offset := 0
	start, end := scrollWindow(m.resultIdx, len(m.results), perPage, &offset)
	for i := start; i < end; i++ {
		r := m.results[i]
		header := truncate.StringWithTail(fmt.Sprintf("%s · L%d", r.SectionTitle, r.Line), uint(max(width-2, 1)), "…")
		cursor := "  "
		if i == m.resultIdx {
			cursor = styles.Cursor.Render("▶ ")
		}
		b.WriteString(cursor + styles.Dim.Render(header) + "\n")
		b.WriteString("  " + renderSnippet(r.Snippet, width-2))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderSnippet styles highlighted parts and cuts the snippet to width
func renderSnippet(snippet string, width int) string {
	plain := strings.NewReplacer(search.HighlightOpen, "", search.HighlightClose, "").Replace(snippet)
	if lipgloss.Width(plain) > width {
		// Too long to style piecewise without breaking the cut
		return styles.Text.Render(truncate.StringWithTail(plain, uint(max(width, 1)), "…"))
	}
	var out strings.Builder
	for i, part := range search.Highlights(snippet) {
		if i%2 == 1 {
			out.WriteString(styles.Mark.Render(part))
		} else {
			out.WriteString(styles.Text.Render(part))
		}
	}
	return out.String()
}

// renderNotesPanel shows the note form and the notebook
func (m *mainModel) renderNotesPanel(width, height int) string {
	b := getBuilder()
	defer putBuilder(b)

	heading := "New note"
	if m.editingID != "" {
		heading = "Edit note"
	}
	if s := m.app.ActiveSection; s != "" && m.editingID == "" {
		heading += styles.Dim.Render(" · " + s)
	}
	b.WriteString(styles.Title.Render(heading) + "\n")
	b.WriteString(m.noteTitle.View() + "\n")
	b.WriteString(m.noteTags.View() + "\n")
	b.WriteString(m.noteBody.View() + "\n")
	b.WriteString(styles.Dim.Render("ctrl+s save · tab next · x delete") + "\n")
	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)) + "\n")

	used := countLines(b.String())
	notes := m.app.Notes.List()
	if len(notes) == 0 {
		b.WriteString(styles.Dim.Render("no notes yet"))
		return b.String()
	}

	listHeight := max(height-used, 1)
	offset := 0
	start, end := scrollWindow(m.noteCursor, len(notes), listHeight, &offset)
	for i := start; i < end; i++ {
		n := notes[i]
		label := n.Title
		if len(n.Tags) > 0 {
			label += " #" + strings.Join(n.Tags, " #")
		}
		label = truncate.StringWithTail(label, uint(max(width-2, 1)), "…")
		if m.focus == focusPanel && m.noteField == fieldList && i == m.noteCursor {
			b.WriteString(styles.Cursor.Render("▶ ") + styles.WithSelection(styles.Text).Render(label))
		} else {
			b.WriteString("  " + styles.Text.Render(label))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderStatus renders the bottom line: status message and key help
func (m *mainModel) renderStatus() string {
	help := "tab focus · / search · n notes · b mark · [ ] sections · y copy · o guides · q quit"
	if m.status == "" {
		return styles.Status.Render(help)
	}
	if m.statusErr {
		return styles.Error.Render(m.status) + styles.Status.Render("  "+help)
	}
	return styles.Status.Render(m.status + "  " + help)
}

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// ============================================================================
// Helpers
// ============================================================================

// clamp restricts v to the range [minV, maxV]
func clamp(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// countLines counts the number of lines in a string
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// scrollWindow calculates the visible range for a scrollable list
func scrollWindow(cursor, total, height int, offset *int) (start, end int) {
	// Ensure offset keeps cursor visible (final adjustment)
	if cursor < *offset {
		*offset = cursor
	}
	if cursor >= *offset+height {
		*offset = cursor - height + 1
	}
	maxOffset := max(0, total-height)
	*offset = clamp(*offset, 0, maxOffset)

	start = *offset
	end = min(start+height, total)
	return
}
