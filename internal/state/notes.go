package state

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// ErrNoteNotFound is returned for operations on an unknown note id
var ErrNoteNotFound = errors.New("note not found")

const (
	maxTitleLen   = 120
	maxContentLen = 10000
)

// Note is an in-memory study note; it lives until the process exits
type Note struct {
	ID        string
	Title     string
	Content   string
	Section   string // Section id the note was taken on, may be empty
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasTag reports whether the note carries tag
func (n Note) HasTag(tag string) bool {
	tag = normalizeTag(tag)
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// NoteInput is what the user submits when creating or editing a note
type NoteInput struct {
	Title   string
	Content string
	Section string
	Tags    []string
}

// Validate checks the user-supplied fields
func (in NoteInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.RuneLength(1, maxTitleLen)),
		validation.Field(&in.Content, validation.Required, validation.RuneLength(1, maxContentLen)),
	)
}

// Notebook holds notes, newest first
type Notebook struct {
	notes []Note
	now   func() time.Time
	newID func() string
}

// NewNotebook creates an empty notebook
func NewNotebook() *Notebook {
	return &Notebook{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Add validates input and stores a new note
func (nb *Notebook) Add(in NoteInput) (Note, error) {
	in = in.trimmed()
	if err := in.Validate(); err != nil {
		return Note{}, fmt.Errorf("invalid note: %w", err)
	}

	ts := nb.now()
	note := Note{
		ID:        nb.newID(),
		Title:     in.Title,
		Content:   in.Content,
		Section:   in.Section,
		Tags:      normalizeTags(in.Tags),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	nb.notes = append([]Note{note}, nb.notes...)
	return note, nil
}

// Update replaces the editable fields of a note and bumps UpdatedAt
func (nb *Notebook) Update(id string, in NoteInput) (Note, error) {
	idx := nb.indexOf(id)
	if idx < 0 {
		return Note{}, fmt.Errorf("%s: %w", id, ErrNoteNotFound)
	}
	in = in.trimmed()
	if err := in.Validate(); err != nil {
		return Note{}, fmt.Errorf("invalid note: %w", err)
	}

	note := nb.notes[idx]
	note.Title = in.Title
	note.Content = in.Content
	note.Section = in.Section
	note.Tags = normalizeTags(in.Tags)
	note.UpdatedAt = nb.now()
	nb.notes[idx] = note
	return note, nil
}

// Delete removes a note
func (nb *Notebook) Delete(id string) error {
	idx := nb.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%s: %w", id, ErrNoteNotFound)
	}
	nb.notes = append(nb.notes[:idx], nb.notes[idx+1:]...)
	return nil
}

// Get returns a note by id
func (nb *Notebook) Get(id string) (Note, bool) {
	if idx := nb.indexOf(id); idx >= 0 {
		return nb.notes[idx], true
	}
	return Note{}, false
}

// List returns all notes, newest first
func (nb *Notebook) List() []Note {
	return append([]Note(nil), nb.notes...)
}

// Len returns the number of notes
func (nb *Notebook) Len() int {
	return len(nb.notes)
}

// ForSection returns notes taken on a section
func (nb *Notebook) ForSection(section string) []Note {
	return nb.filter(func(n Note) bool { return n.Section == section })
}

// Tagged returns notes carrying tag
func (nb *Notebook) Tagged(tag string) []Note {
	return nb.filter(func(n Note) bool { return n.HasTag(tag) })
}

func (nb *Notebook) filter(keep func(Note) bool) []Note {
	var out []Note
	for _, n := range nb.notes {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

func (nb *Notebook) indexOf(id string) int {
	for i, n := range nb.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (in NoteInput) trimmed() NoteInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Section = strings.TrimSpace(in.Section)
	return in
}

// ParseTags splits a comma separated tag list
func ParseTags(s string) []string {
	return normalizeTags(strings.Split(s, ","))
}

// normalizeTags turns a tag list into a sorted set
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = normalizeTag(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "#")))
}
