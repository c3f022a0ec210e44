package parser

import (
	"regexp"
	"strings"
)

// Section is a heading-derived navigation anchor
type Section struct {
	ID    string
	Title string
	Level int
}

// fallbackID is used when a title has no alphanumeric characters at all
const fallbackID = "section"

var (
	explicitIDRe = regexp.MustCompile(`^(.*?)\s*\{#([^}\s]+)\}\s*$`)
	slugSepRe    = regexp.MustCompile(`[^a-z0-9]+`)
)

// ParseHeading splits heading text into its display title and anchor id.
// A trailing {#custom-id} wins over the slug of the title.
func ParseHeading(text string) (title, id string) {
	text = strings.TrimSpace(text)
	if m := explicitIDRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), m[2]
	}
	return text, HeadingID(text)
}

// HeadingID derives the anchor id for a heading title.
// Runs of non-alphanumerics collapse to one hyphen; edge hyphens are trimmed.
func HeadingID(title string) string {
	slug := slugSepRe.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return fallbackID
	}
	return slug
}

// SectionHeading reports whether line is a level-2 heading and returns its section.
// Level-2 headings are the only ones that move the search cursor and carry bookmarks.
func SectionHeading(line string) (Section, bool) {
	if !strings.HasPrefix(line, h2Prefix) {
		return Section{}, false
	}
	title, id := ParseHeading(line[len(h2Prefix):])
	return Section{ID: id, Title: title, Level: 2}, true
}
