package state

import "github.com/gubarz/studymd/internal/parser"

// Bookmarks is a set of section ids kept in insertion order.
// Ids are never checked against the loaded document; stale ones are tolerated.
type Bookmarks struct {
	ids   []string
	index map[string]struct{}
}

// NewBookmarks creates an empty set
func NewBookmarks() *Bookmarks {
	return &Bookmarks{index: make(map[string]struct{})}
}

// Has reports membership
func (b *Bookmarks) Has(id string) bool {
	_, ok := b.index[id]
	return ok
}

// Add inserts id; adding an existing id is a no-op
func (b *Bookmarks) Add(id string) {
	if id == "" || b.Has(id) {
		return
	}
	b.index[id] = struct{}{}
	b.ids = append(b.ids, id)
}

// Remove deletes id if present
func (b *Bookmarks) Remove(id string) {
	if !b.Has(id) {
		return
	}
	delete(b.index, id)
	for i, existing := range b.ids {
		if existing == id {
			b.ids = append(b.ids[:i], b.ids[i+1:]...)
			break
		}
	}
}

// Toggle flips membership and returns true when id is now bookmarked
func (b *Bookmarks) Toggle(id string) bool {
	if b.Has(id) {
		b.Remove(id)
		return false
	}
	b.Add(id)
	return b.Has(id)
}

// List returns the ids in the order they were added
func (b *Bookmarks) List() []string {
	return append([]string(nil), b.ids...)
}

// Len returns the number of bookmarks
func (b *Bookmarks) Len() int {
	return len(b.ids)
}

// Resolve returns the bookmarked sections present in sections, in document order.
// Ids from other documents are skipped silently.
func (b *Bookmarks) Resolve(sections []parser.Section) []parser.Section {
	var out []parser.Section
	for _, s := range sections {
		if b.Has(s.ID) {
			out = append(out, s)
		}
	}
	return out
}
