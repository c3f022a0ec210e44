// Package state holds the viewer's in-memory application state.
//
// App is owned by the UI event loop. Asynchronous document loads never touch it
// directly; they report back with the generation they were issued under and
// FinishLoad decides whether the result is still wanted.
package state

import (
	"github.com/gubarz/studymd/internal/content"
)

// Panel is the side panel currently shown, at most one at a time
type Panel int

const (
	PanelNone Panel = iota
	PanelSearch
	PanelNotes
)

// App is the single owned state container
type App struct {
	Document      *content.Document
	ActiveSection string
	DarkMode      bool
	SidebarOpen   bool
	Panel         Panel

	Bookmarks *Bookmarks
	Notes     *Notebook

	generation uint64
	pendingID  string
}

// New creates the initial state
func New(darkMode bool) *App {
	return &App{
		DarkMode:    darkMode,
		SidebarOpen: true,
		Bookmarks:   NewBookmarks(),
		Notes:       NewNotebook(),
	}
}

// ToggleDarkMode flips the theme and returns the new value
func (a *App) ToggleDarkMode() bool {
	a.DarkMode = !a.DarkMode
	return a.DarkMode
}

// ToggleSidebar flips sidebar visibility
func (a *App) ToggleSidebar() bool {
	a.SidebarOpen = !a.SidebarOpen
	return a.SidebarOpen
}

// TogglePanel opens p, or closes it when it is already open.
// Opening one panel replaces the other.
func (a *App) TogglePanel(p Panel) Panel {
	if a.Panel == p {
		a.Panel = PanelNone
	} else {
		a.Panel = p
	}
	return a.Panel
}

// SetActiveSection records the section the reader is in
func (a *App) SetActiveSection(id string) {
	a.ActiveSection = id
}

// BeginLoad starts a document switch and returns its generation
func (a *App) BeginLoad(id string) uint64 {
	a.generation++
	a.pendingID = id
	return a.generation
}

// Loading reports the id of the in-flight load, if any
func (a *App) Loading() (string, bool) {
	return a.pendingID, a.pendingID != ""
}

// FinishLoad installs the loaded document if gen is the latest generation.
// Results from superseded loads are dropped and false is returned.
func (a *App) FinishLoad(gen uint64, res content.Result) bool {
	if gen != a.generation || res.Document == nil {
		return false
	}
	a.pendingID = ""
	a.Document = res.Document
	a.ActiveSection = ""
	if nav := res.Document.NavSections(); len(nav) > 0 {
		a.ActiveSection = nav[0].ID
	}
	return true
}

// DocumentID returns the id of the loaded document or ""
func (a *App) DocumentID() string {
	if a.Document == nil {
		return ""
	}
	return a.Document.ID
}

// ToggleBookmark bookmarks or un-bookmarks the active section
func (a *App) ToggleBookmark() (id string, bookmarked bool) {
	if a.ActiveSection == "" {
		return "", false
	}
	return a.ActiveSection, a.Bookmarks.Toggle(a.ActiveSection)
}
