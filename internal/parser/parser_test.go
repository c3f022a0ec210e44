package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = "# Doc\n\n## Intro {#intro}\nHello world\n\n## Next\nBye"

func TestHeadingID(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "simple", title: "Next", want: "next"},
		{name: "spaces", title: "Goroutines and Channels", want: "goroutines-and-channels"},
		{name: "punctuation run", title: "Maps, Slices & Arrays", want: "maps-slices-arrays"},
		{name: "trailing question mark", title: "What is a Mutex?", want: "what-is-a-mutex"},
		{name: "leading punctuation", title: "(Optional) Extras", want: "optional-extras"},
		{name: "digits kept", title: "HTTP/2 in 10 Minutes", want: "http-2-in-10-minutes"},
		{name: "no alphanumerics", title: "???", want: "section"},
		{name: "non ascii collapses", title: "Café Basics", want: "caf-basics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HeadingID(tt.title)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, HeadingID(tt.title), "id derivation must be deterministic")
		})
	}
}

func TestParseHeading(t *testing.T) {
	tests := []struct {
		text      string
		wantTitle string
		wantID    string
	}{
		{text: "Title {#custom-id}", wantTitle: "Title", wantID: "custom-id"},
		{text: "Title{#tight}", wantTitle: "Title", wantID: "tight"},
		{text: "Plain Title", wantTitle: "Plain Title", wantID: "plain-title"},
		{text: "  Padded  ", wantTitle: "Padded", wantID: "padded"},
		{text: "Broken {#}", wantTitle: "Broken {#}", wantID: "broken"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			title, id := ParseHeading(tt.text)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestExtractSections_Scenario(t *testing.T) {
	sections := ExtractSections(sampleDoc)

	require.Len(t, sections, 3)
	assert.Equal(t, Section{ID: "doc", Title: "Doc", Level: 1}, sections[0])
	assert.Equal(t, Section{ID: "intro", Title: "Intro", Level: 2}, sections[1])
	assert.Equal(t, Section{ID: "next", Title: "Next", Level: 2}, sections[2])

	assert.Equal(t, sections[1:], NavSections(Render(sampleDoc)))
}

func TestExtractSections_CountMatchesHashLines(t *testing.T) {
	inputs := []string{
		"",
		sampleDoc,
		"  ### indented\n#NoSpace\n####### deep\nplain # not heading",
		"```sh\n# a shell comment\n```\n## After",
		"#\n##\n",
	}

	for _, input := range inputs {
		want := 0
		for _, line := range strings.Split(input, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "#") {
				want++
			}
		}
		assert.Len(t, ExtractSections(input), want, "input %q", input)
	}
}

func TestExtractSections_Levels(t *testing.T) {
	sections := ExtractSections("####### deep\n#NoSpace\n  ### indented {#ind}")

	require.Len(t, sections, 3)
	assert.Equal(t, 7, sections[0].Level)
	assert.Equal(t, "deep", sections[0].Title)
	assert.Equal(t, Section{ID: "nospace", Title: "NoSpace", Level: 1}, sections[1])
	assert.Equal(t, Section{ID: "ind", Title: "indented", Level: 3}, sections[2])
}

func TestRender_Classification(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Block
	}{
		{name: "heading1", line: "# Title {#x}", want: Block{Kind: BlockHeading1, Text: "Title {#x}"}},
		{name: "heading2 slug", line: "## Two Words", want: Block{Kind: BlockHeading2, Text: "Two Words", ID: "two-words"}},
		{name: "heading2 explicit", line: "## Title {#custom-id}", want: Block{Kind: BlockHeading2, Text: "Title", ID: "custom-id"}},
		{name: "heading3", line: "### Deeper", want: Block{Kind: BlockHeading3, Text: "Deeper"}},
		{name: "definition", line: "- **Channel**: a typed conduit", want: Block{Kind: BlockDefinition, Term: "Channel", Text: "a typed conduit"}},
		{name: "bold bullet without colon", line: "- **bold** only", want: Block{Kind: BlockBullet, Text: "**bold** only"}},
		{name: "bullet", line: "- item", want: Block{Kind: BlockBullet, Text: "item"}},
		{name: "rule", line: "  ---  ", want: Block{Kind: BlockRule}},
		{name: "caption", line: "*Figure 1*", want: Block{Kind: BlockCaption, Text: "Figure 1"}},
		{name: "short star", line: "*", want: Block{Kind: BlockParagraph, Text: "*"}},
		{name: "heading4 falls through", line: "#### Four", want: Block{Kind: BlockParagraph, Text: "#### Four"}},
		{name: "no space heading", line: "#tag", want: Block{Kind: BlockParagraph, Text: "#tag"}},
		{name: "paragraph kept raw", line: "  <b>raw</b> & text", want: Block{Kind: BlockParagraph, Text: "  <b>raw</b> & text"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := Render(tt.line)
			require.Len(t, blocks, 1)

			want := tt.want
			want.Line = 1
			want.Raw = tt.line
			assert.Equal(t, want, blocks[0])
		})
	}
}

func TestRender_BlankLinesEmitNothing(t *testing.T) {
	assert.Empty(t, Render("\n   \n\t\n"))
}

func TestRender_CodeBlock(t *testing.T) {
	blocks := Render("```js\nfunction f() { return 1; }\n```")

	require.Len(t, blocks, 1)
	assert.Equal(t, BlockCode, blocks[0].Kind)
	assert.Equal(t, "js", blocks[0].Lang)
	assert.Equal(t, "function f() { return 1; }\n", blocks[0].Text)
	assert.Equal(t, 1, blocks[0].Line)
}

func TestRender_CodeBlockContentIsVerbatim(t *testing.T) {
	input := "intro\n```\n# not a heading\n## nor this\n- nor a bullet\n\n---\n```\noutro"
	blocks := Render(input)

	require.Len(t, blocks, 3)
	assert.Equal(t, BlockParagraph, blocks[0].Kind)
	assert.Equal(t, BlockCode, blocks[1].Kind)
	assert.Equal(t, "", blocks[1].Lang)
	assert.Equal(t, "# not a heading\n## nor this\n- nor a bullet\n\n---\n", blocks[1].Text)
	assert.Equal(t, 2, blocks[1].Line)
	assert.Equal(t, BlockParagraph, blocks[2].Kind)
	assert.Equal(t, 9, blocks[2].Line)
}

func TestRender_FenceWithLanguageClosesBlock(t *testing.T) {
	blocks := Render("```go\nx := 1\n```text\nafter")

	require.Len(t, blocks, 2)
	assert.Equal(t, "x := 1\n", blocks[0].Text)
	assert.Equal(t, "go", blocks[0].Lang)
	assert.Equal(t, BlockParagraph, blocks[1].Kind)
}

func TestRender_UnterminatedFenceIsFlushed(t *testing.T) {
	blocks := Render("```sh\necho hi\n## inside")

	require.Len(t, blocks, 1)
	assert.Equal(t, BlockCode, blocks[0].Kind)
	assert.Equal(t, "echo hi\n## inside\n", blocks[0].Text)
}

func TestRender_NoTextLoss(t *testing.T) {
	input := "# Title\n\n## Sec {#s}\n- **A**: b\n- c\n---\n*cap*\nplain text\n```\ncode\n```\n\nlast"
	blocks := Render(input)

	var gotRaw []string
	for _, b := range blocks {
		if b.Kind != BlockCode {
			gotRaw = append(gotRaw, b.Raw)
		}
	}

	var wantRaw []string
	inCode := false
	for _, line := range strings.Split(input, "\n") {
		if strings.HasPrefix(line, "```") {
			inCode = !inCode
			continue
		}
		if !inCode && strings.TrimSpace(line) != "" {
			wantRaw = append(wantRaw, line)
		}
	}

	assert.Equal(t, strings.Join(wantRaw, ""), strings.Join(gotRaw, ""))

	code := CodeBlocks(blocks)
	require.Len(t, code, 1)
	assert.Equal(t, "```\ncode\n```", code[0].Raw)
}

func TestRender_AgreesWithExtractor(t *testing.T) {
	input := "## Title {#custom-id}\n## What is Go?\n## Maps & Sets"

	fromRenderer := NavSections(Render(input))

	assert.Equal(t, ExtractSections(input), fromRenderer)
	assert.Equal(t, Section{ID: "custom-id", Title: "Title", Level: 2}, fromRenderer[0])
}

func TestNavSections_SkipsFencedHeadings(t *testing.T) {
	input := "## Setup\n```sh\n## just a comment\n```\n## Usage"

	nav := NavSections(Render(input))

	require.Len(t, nav, 2)
	assert.Equal(t, "setup", nav[0].ID)
	assert.Equal(t, "usage", nav[1].ID)
	assert.Len(t, ExtractSections(input), 3)
}

func TestSectionHeading(t *testing.T) {
	s, ok := SectionHeading("## Intro {#intro}")
	require.True(t, ok)
	assert.Equal(t, Section{ID: "intro", Title: "Intro", Level: 2}, s)

	_, ok = SectionHeading("### Deeper")
	assert.False(t, ok)
	_, ok = SectionHeading(" ## indented")
	assert.False(t, ok)
}

func TestBlockKindString(t *testing.T) {
	assert.Equal(t, "code", BlockCode.String())
	assert.Equal(t, "heading2", BlockHeading2.String())
	assert.Equal(t, "unknown", BlockKind(99).String())
}
