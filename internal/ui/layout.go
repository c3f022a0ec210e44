package ui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/gubarz/studymd/internal/parser"
)

const defaultWrap = 80

// CodeSpan locates a code block on the laid-out page
type CodeSpan struct {
	Start int // first page line, the language label when present
	End   int // exclusive
	Lang  string
	Text  string // verbatim code, what gets copied
}

type anchor struct {
	id   string
	line int
}

type lineMark struct {
	source int
	page   int
}

// Page is a rendered document laid out into terminal lines.
// It records where every level-2 heading and code block landed.
type Page struct {
	Lines []string
	Code  []CodeSpan

	anchors  []anchor
	byID     map[string]int
	sourceAt []lineMark
}

// PlainStyles returns styles that emit no escape codes
func PlainStyles() *StyleManager {
	plain := lipgloss.NewStyle()
	return &StyleManager{
		Title: plain, Section: plain, Sub: plain, Text: plain, Term: plain,
		Bullet: plain, Caption: plain, Code: plain, CodeLang: plain, Mark: plain,
		Selected: plain, Cursor: plain, Dim: plain, Border: plain, Focused: plain,
		Divider: plain, Status: plain, Error: plain,
	}
}

// Layout wraps rendered blocks to width and styles them.
// Blank lines between source blocks are kept, headings always get one above.
func Layout(blocks []parser.Block, width int, st *StyleManager) Page {
	if width <= 0 {
		width = defaultWrap
	}
	p := Page{byID: make(map[string]int)}
	prevEnd := 0

	blank := func() {
		if n := len(p.Lines); n > 0 && p.Lines[n-1] != "" {
			p.Lines = append(p.Lines, "")
		}
	}

	for _, b := range blocks {
		if prevEnd > 0 && b.Line > prevEnd+1 {
			blank()
		}
		switch b.Kind {
		case parser.BlockHeading1, parser.BlockHeading2, parser.BlockHeading3:
			blank()
		}
		p.sourceAt = append(p.sourceAt, lineMark{source: b.Line, page: len(p.Lines)})

		switch b.Kind {
		case parser.BlockHeading1:
			p.add(st.Title, wrapLines(b.Text, width))
			p.Lines = append(p.Lines, st.Divider.Render(strings.Repeat("═", min(width, lipgloss.Width(b.Text)))))

		case parser.BlockHeading2:
			if _, dup := p.byID[b.ID]; !dup {
				p.byID[b.ID] = len(p.Lines)
			}
			p.anchors = append(p.anchors, anchor{id: b.ID, line: len(p.Lines)})
			p.add(st.Section, wrapLines(b.Text, width))

		case parser.BlockHeading3:
			p.add(st.Sub, wrapLines(b.Text, width))

		case parser.BlockDefinition:
			lines := wrapLines(b.Term+": "+b.Text, width-2)
			for i, l := range lines {
				if i == 0 {
					if rest, ok := strings.CutPrefix(l, b.Term+":"); ok {
						p.Lines = append(p.Lines, st.Bullet.Render("• ")+st.Term.Render(b.Term+":")+st.Text.Render(rest))
					} else {
						p.Lines = append(p.Lines, st.Bullet.Render("• ")+st.Text.Render(l))
					}
					continue
				}
				p.Lines = append(p.Lines, "  "+st.Text.Render(l))
			}

		case parser.BlockBullet:
			for i, l := range wrapLines(b.Text, width-2) {
				prefix := "  "
				if i == 0 {
					prefix = st.Bullet.Render("• ")
				}
				p.Lines = append(p.Lines, prefix+st.Text.Render(l))
			}

		case parser.BlockRule:
			p.Lines = append(p.Lines, st.Divider.Render(strings.Repeat("─", width)))

		case parser.BlockCaption:
			for _, l := range wrapLines(b.Text, width) {
				pad := max(0, (width-lipgloss.Width(l))/2)
				p.Lines = append(p.Lines, strings.Repeat(" ", pad)+st.Caption.Render(l))
			}

		case parser.BlockCode:
			p.addCode(b, width, st)

		default:
			p.add(st.Text, wrapLines(b.Text, width))
		}

		prevEnd = b.Line + strings.Count(strings.TrimSuffix(b.Raw, "\n"), "\n")
	}
	return p
}

func (p *Page) add(style lipgloss.Style, lines []string) {
	for _, l := range lines {
		p.Lines = append(p.Lines, style.Render(l))
	}
}

func (p *Page) addCode(b parser.Block, width int, st *StyleManager) {
	span := CodeSpan{Start: len(p.Lines), Lang: b.Lang, Text: b.Text}
	if b.Lang != "" {
		p.Lines = append(p.Lines, st.CodeLang.Render(b.Lang))
	}
	body := strings.Split(strings.TrimSuffix(b.Text, "\n"), "\n")
	for _, l := range body {
		l = strings.ReplaceAll(l, "\t", "    ")
		p.Lines = append(p.Lines, st.Code.Render(" "+truncate.StringWithTail(l, uint(max(width-2, 1)), "…")+" "))
	}
	span.End = len(p.Lines)
	p.Code = append(p.Code, span)
}

// wrapLines word-wraps text, keeping at least one line
func wrapLines(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	return strings.Split(wordwrap.String(text, width), "\n")
}

// Content joins the page for a viewport
func (p Page) Content() string {
	return strings.Join(p.Lines, "\n")
}

// Anchor returns the page line of a level-2 heading
func (p Page) Anchor(id string) (int, bool) {
	line, ok := p.byID[id]
	return line, ok
}

// SectionAt returns the id of the last level-2 heading at or above line.
// Lines before the first heading belong to the first section.
func (p Page) SectionAt(line int) string {
	if len(p.anchors) == 0 {
		return ""
	}
	i := sort.Search(len(p.anchors), func(i int) bool { return p.anchors[i].line > line })
	if i == 0 {
		return p.anchors[0].id
	}
	return p.anchors[i-1].id
}

// LineForSource maps a 1-based source line to the page line of the block containing it
func (p Page) LineForSource(source int) int {
	i := sort.Search(len(p.sourceAt), func(i int) bool { return p.sourceAt[i].source > source })
	if i == 0 {
		return 0
	}
	return p.sourceAt[i-1].page
}

// CodeAt picks the code block nearest the viewport top: the one spanning top,
// else the first below it, else the last above it.
func (p Page) CodeAt(top int) (CodeSpan, bool) {
	if len(p.Code) == 0 {
		return CodeSpan{}, false
	}
	for _, c := range p.Code {
		if c.End > top {
			return c, true
		}
	}
	return p.Code[len(p.Code)-1], true
}
