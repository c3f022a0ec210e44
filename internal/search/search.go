// Package search implements substring search over the lines of a study guide.
package search

import (
	"strings"
	"unicode"

	"github.com/gubarz/studymd/internal/parser"
)

const (
	DefaultLimit   = 20
	DefaultContext = 30

	HighlightOpen  = "<mark>"
	HighlightClose = "</mark>"
	Ellipsis       = "..."
)

// introSection is the cursor before the first level-2 heading
var introSection = parser.Section{ID: "intro", Title: "Introduction", Level: 2}

// Result is a single matching line
type Result struct {
	SectionID    string
	SectionTitle string
	Snippet      string // Matched window with highlight markers
	Line         int    // 1-based
}

// Options tunes the matcher; zero values mean defaults
type Options struct {
	Limit   int
	Context int
}

func (o Options) withDefaults() Options {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Context <= 0 {
		o.Context = DefaultContext
	}
	return o
}

// Search scans text line by line for a case-insensitive substring match.
// Level-2 headings move the current-section cursor and are never matched themselves.
// Results are in document order and capped at opts.Limit.
func Search(text, query string, opts Options) []Result {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	opts = opts.withDefaults()
	needle := lowerRunes([]rune(query))

	current := introSection
	var results []Result
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if section, ok := parser.SectionHeading(line); ok {
			current = section
			continue
		}

		snippet, ok := matchLine([]rune(line), needle, opts.Context)
		if !ok {
			continue
		}

		results = append(results, Result{
			SectionID:    current.ID,
			SectionTitle: current.Title,
			Snippet:      snippet,
			Line:         i + 1,
		})
		if len(results) >= opts.Limit {
			break
		}
	}
	return results
}

// matchLine finds needle in line and builds the highlighted snippet around it
func matchLine(line, needle []rune, context int) (string, bool) {
	lower := lowerRunes(line)
	first := indexRunes(lower, needle, 0)
	if first < 0 {
		return "", false
	}

	start := max(0, first-context)
	end := min(len(line), first+len(needle)+context)

	var b strings.Builder
	if start > 0 {
		b.WriteString(Ellipsis)
	}
	writeHighlighted(&b, line[start:end], lower[start:end], needle)
	if end < len(line) {
		b.WriteString(Ellipsis)
	}
	return b.String(), true
}

// writeHighlighted wraps every non-overlapping occurrence of needle in markers
func writeHighlighted(b *strings.Builder, window, lower, needle []rune) {
	pos := 0
	for {
		idx := indexRunes(lower, needle, pos)
		if idx < 0 {
			break
		}
		b.WriteString(string(window[pos:idx]))
		b.WriteString(HighlightOpen)
		b.WriteString(string(window[idx : idx+len(needle)]))
		b.WriteString(HighlightClose)
		pos = idx + len(needle)
	}
	b.WriteString(string(window[pos:]))
}

// lowerRunes lowercases rune by rune so offsets stay aligned with the original
func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func indexRunes(haystack, needle []rune, from int) int {
	if len(needle) == 0 {
		return -1
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		if equalRunes(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func equalRunes(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Highlights splits a snippet into alternating plain and highlighted parts.
// Odd indexes are the highlighted ones.
func Highlights(snippet string) []string {
	var parts []string
	for {
		open := strings.Index(snippet, HighlightOpen)
		if open < 0 {
			break
		}
		rest := snippet[open+len(HighlightOpen):]
		closeIdx := strings.Index(rest, HighlightClose)
		if closeIdx < 0 {
			break
		}
		parts = append(parts, snippet[:open], rest[:closeIdx])
		snippet = rest[closeIdx+len(HighlightClose):]
	}
	return append(parts, snippet)
}
