package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gubarz/studymd/internal/content"
)

// docLoadedMsg carries a finished load back to the event loop
type docLoadedMsg struct {
	gen    uint64
	result content.Result
}

// searchMsg triggers a search after debounce; stale queries are ignored
type searchMsg struct {
	query string
}

// guidesChangedMsg is sent when the watched guide directory changes
type guidesChangedMsg struct {
	files []string
}

// debounceSearch returns a command that triggers a search after a delay
func debounceSearch(query string) tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(time.Time) tea.Msg {
		return searchMsg{query: query}
	})
}
