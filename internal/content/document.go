package content

import (
	"errors"
	"fmt"

	"github.com/gubarz/studymd/internal/parser"
)

// ErrNotFound is returned when a guide id has no catalog entry or file
var ErrNotFound = errors.New("document not found")

// Item is a static catalog entry
type Item struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Filename string `yaml:"file"`
	Icon     Icon   `yaml:"icon"`
}

// Document is a loaded guide. It is never mutated after construction.
type Document struct {
	ID       string
	Title    string
	Icon     Icon
	Content  string
	Sections []parser.Section

	nav []parser.Section
}

// NewDocument builds a Document and derives its table of contents
func NewDocument(id, title string, icon Icon, body string) *Document {
	return &Document{
		ID:       id,
		Title:    title,
		Icon:     icon,
		Content:  body,
		Sections: parser.ExtractSections(body),
		nav:      parser.NavSections(parser.Render(body)),
	}
}

// Placeholder is shown in place of a guide that could not be loaded
func Placeholder(id string) *Document {
	body := fmt.Sprintf("# Document not found\n\n*No study guide is registered as %q*\n\n"+
		"Press `o` to pick another guide from the catalog.\n", id)
	return NewDocument(id, "Document not found", IconBook, body)
}

func unavailable(id string, err error) *Document {
	body := fmt.Sprintf("# Document unavailable\n\n*%s could not be loaded*\n\n%s\n", id, err)
	return NewDocument(id, "Document unavailable", IconBook, body)
}

// HasSection reports whether id is a navigable anchor in this document
func (d *Document) HasSection(id string) bool {
	for _, s := range d.nav {
		if s.ID == id {
			return true
		}
	}
	return false
}

// NavSections returns the rendered level-2 headings used for quick navigation
func (d *Document) NavSections() []parser.Section {
	return d.nav
}
