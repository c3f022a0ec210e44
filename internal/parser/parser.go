package parser

import (
	"regexp"
	"strings"
)

// BlockKind identifies what a rendered block is
type BlockKind int

const (
	BlockParagraph  BlockKind = iota
	BlockHeading1             // "# " title, verbatim
	BlockHeading2             // "## " title with anchor id, bookmarkable
	BlockHeading3             // "### " title, verbatim
	BlockDefinition           // "- **TERM**: DEFINITION"
	BlockBullet               // "- " item
	BlockRule                 // "---"
	BlockCaption              // "*centered caption*"
	BlockCode                 // fenced code block
)

var blockKindNames = [...]string{
	BlockParagraph:  "paragraph",
	BlockHeading1:   "heading1",
	BlockHeading2:   "heading2",
	BlockHeading3:   "heading3",
	BlockDefinition: "definition",
	BlockBullet:     "bullet",
	BlockRule:       "rule",
	BlockCaption:    "caption",
	BlockCode:       "code",
}

func (k BlockKind) String() string {
	if int(k) < len(blockKindNames) {
		return blockKindNames[k]
	}
	return "unknown"
}

// Block is one unit of rendered output
type Block struct {
	Kind BlockKind
	Text string // Title, item text, caption or code body
	Term string // Emphasized term of a definition item
	ID   string // Anchor id (BlockHeading2 only)
	Lang string // Language tag of a code block
	Line int    // 1-based line the block starts on
	Raw  string // Source line, or the whole fence for code blocks
}

const (
	h1Prefix     = "# "
	h2Prefix     = "## "
	h3Prefix     = "### "
	bulletPrefix = "- "
	termPrefix   = "- **"
)

var (
	fenceRe      = regexp.MustCompile("^```([\\w+#.-]*)$")
	definitionRe = regexp.MustCompile(`^- \*\*(.+?)\*\*:\s*(.*)$`)
)

// lineRenderer holds the two-state scanner: normal or inside a fence
type lineRenderer struct {
	blocks []Block

	inCode    bool
	codeLang  string
	codeStart int
	code      strings.Builder
	codeRaw   strings.Builder
}

// Render converts raw markdown into an ordered list of blocks.
// It is a best-effort classifier: any line no rule claims becomes a paragraph.
func Render(text string) []Block {
	r := &lineRenderer{}
	for i, line := range splitLines(text) {
		r.feed(i+1, line)
	}
	r.flushCode()
	return r.blocks
}

func (r *lineRenderer) feed(lineNo int, line string) {
	fence, isFence := fenceLang(line)

	if r.inCode {
		if isFence {
			r.codeRaw.WriteString(line)
			r.flushCode()
			return
		}
		r.code.WriteString(line)
		r.code.WriteString("\n")
		r.codeRaw.WriteString(line)
		r.codeRaw.WriteString("\n")
		return
	}

	if isFence {
		r.inCode = true
		r.codeLang = fence
		r.codeStart = lineNo
		r.code.Reset()
		r.codeRaw.Reset()
		r.codeRaw.WriteString(line)
		r.codeRaw.WriteString("\n")
		return
	}

	if b, ok := classify(line); ok {
		b.Line = lineNo
		b.Raw = line
		r.blocks = append(r.blocks, b)
	}
}

// flushCode emits the pending fence, including one left open at end of input
func (r *lineRenderer) flushCode() {
	if !r.inCode {
		return
	}
	r.blocks = append(r.blocks, Block{
		Kind: BlockCode,
		Text: r.code.String(),
		Lang: r.codeLang,
		Line: r.codeStart,
		Raw:  r.codeRaw.String(),
	})
	r.inCode = false
	r.codeLang = ""
}

// classify applies the normal-state rules in precedence order
func classify(line string) (Block, bool) {
	trimmed := strings.TrimSpace(line)

	switch {
	case strings.HasPrefix(line, h1Prefix):
		return Block{Kind: BlockHeading1, Text: line[len(h1Prefix):]}, true

	case strings.HasPrefix(line, h2Prefix):
		section, _ := SectionHeading(line)
		return Block{Kind: BlockHeading2, Text: section.Title, ID: section.ID}, true

	case strings.HasPrefix(line, h3Prefix):
		return Block{Kind: BlockHeading3, Text: line[len(h3Prefix):]}, true
	}

	if strings.HasPrefix(line, termPrefix) {
		if m := definitionRe.FindStringSubmatch(line); m != nil {
			return Block{Kind: BlockDefinition, Term: m[1], Text: m[2]}, true
		}
	}

	switch {
	case strings.HasPrefix(line, bulletPrefix):
		return Block{Kind: BlockBullet, Text: line[len(bulletPrefix):]}, true

	case trimmed == "---":
		return Block{Kind: BlockRule}, true

	case len(trimmed) >= 2 && strings.HasPrefix(trimmed, "*") && strings.HasSuffix(trimmed, "*"):
		return Block{Kind: BlockCaption, Text: trimmed[1 : len(trimmed)-1]}, true

	case trimmed != "":
		return Block{Kind: BlockParagraph, Text: line}, true
	}

	return Block{}, false
}

// fenceLang reports whether line is a code fence and returns its language tag
func fenceLang(line string) (string, bool) {
	m := fenceRe.FindStringSubmatch(strings.TrimRight(line, " \t"))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// CodeBlocks returns only the fenced code blocks of a rendered document
func CodeBlocks(blocks []Block) []Block {
	var out []Block
	for _, b := range blocks {
		if b.Kind == BlockCode {
			out = append(out, b)
		}
	}
	return out
}

// NavSections returns the level-2 headings the renderer produced.
// Unlike ExtractSections it skips '#' lines inside code fences.
func NavSections(blocks []Block) []Section {
	var out []Section
	for _, b := range blocks {
		if b.Kind == BlockHeading2 {
			out = append(out, Section{ID: b.ID, Title: b.Text, Level: 2})
		}
	}
	return out
}
