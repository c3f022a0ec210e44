// Package content holds the guide catalog, its sources and document loading.
package content

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/gubarz/studymd/internal/parser"
)

// CatalogFile is the optional catalog in a guide directory
const CatalogFile = "catalog.yaml"

//go:embed guides
var bundled embed.FS

// Source supplies the catalog and raw documents
type Source interface {
	Catalog() []Item
	Load(ctx context.Context, id string) (*Document, error)
}

// FSSource serves guides from any fs.FS: the bundled set or a user directory
type FSSource struct {
	fsys fs.FS
	name string

	mu    sync.RWMutex
	items []Item
	byID  map[string]Item
}

type catalogFile struct {
	Guides []Item `yaml:"guides"`
}

// guideMeta is the optional frontmatter of a guide file
type guideMeta struct {
	Title string `yaml:"title"`
	Icon  string `yaml:"icon"`
}

// NewBundled returns the guides compiled into the binary
func NewBundled() (*FSSource, error) {
	sub, err := fs.Sub(bundled, "guides")
	if err != nil {
		return nil, err
	}
	return newFSSource(sub, "bundled")
}

// NewDir returns guides read from a directory on disk
func NewDir(dir string) (*FSSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("guide dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("guide dir: %s is not a directory", dir)
	}
	return newFSSource(os.DirFS(dir), dir)
}

func newFSSource(fsys fs.FS, name string) (*FSSource, error) {
	s := &FSSource{fsys: fsys, name: name}
	if err := s.Refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh re-reads the catalog
func (s *FSSource) Refresh() error {
	items, err := readCatalog(s.fsys)
	if err != nil {
		return fmt.Errorf("%s catalog: %w", s.name, err)
	}

	byID := make(map[string]Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	s.mu.Lock()
	s.items = items
	s.byID = byID
	s.mu.Unlock()
	return nil
}

// Catalog returns a copy of the catalog entries in display order
func (s *FSSource) Catalog() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Item(nil), s.items...)
}

// Load reads and parses a guide
func (s *FSSource) Load(ctx context.Context, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	item, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrNotFound)
	}

	raw, err := fs.ReadFile(s.fsys, item.Filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%q (%s): %w", id, item.Filename, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", item.Filename, err)
	}

	_, body, err := splitFrontmatter(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", item.Filename, err)
	}
	return NewDocument(item.ID, item.Title, item.Icon, string(body)), nil
}

// readCatalog prefers catalog.yaml and falls back to scanning *.md files
func readCatalog(fsys fs.FS) ([]Item, error) {
	data, err := fs.ReadFile(fsys, CatalogFile)
	switch {
	case err == nil:
		var cat catalogFile
		if err := yaml.Unmarshal(data, &cat); err != nil {
			return nil, fmt.Errorf("parse %s: %w", CatalogFile, err)
		}
		return normalizeItems(cat.Guides), nil
	case errors.Is(err, fs.ErrNotExist):
		return scanGuides(fsys)
	default:
		return nil, err
	}
}

func normalizeItems(items []Item) []Item {
	out := make([]Item, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.Filename == "" {
			continue
		}
		if item.ID == "" {
			item.ID = parser.HeadingID(stem(item.Filename))
		}
		if item.Title == "" {
			item.Title = stem(item.Filename)
		}
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		out = append(out, item)
	}
	return out
}

// scanGuides builds a catalog from the markdown files in the root of fsys
func scanGuides(fsys fs.FS) ([]Item, error) {
	files, err := fs.Glob(fsys, "*.md")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	items := make([]Item, 0, len(files))
	for _, file := range files {
		raw, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, err
		}
		meta, body, err := splitFrontmatter(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}

		title := meta.Title
		if title == "" {
			title = firstTitle(string(body))
		}
		if title == "" {
			title = stem(file)
		}

		items = append(items, Item{
			ID:       parser.HeadingID(stem(file)),
			Title:    title,
			Filename: file,
			Icon:     ParseIcon(meta.Icon),
		})
	}
	return normalizeItems(items), nil
}

func splitFrontmatter(raw []byte) (guideMeta, []byte, error) {
	var meta guideMeta
	body, err := frontmatter.Parse(bytes.NewReader(raw), &meta)
	if err != nil {
		return guideMeta{}, nil, err
	}
	return meta, body, nil
}

func firstTitle(body string) string {
	for _, s := range parser.ExtractSections(body) {
		if s.Level == 1 {
			return s.Title
		}
	}
	return ""
}

func stem(file string) string {
	base := path.Base(file)
	return strings.TrimSuffix(base, path.Ext(base))
}
