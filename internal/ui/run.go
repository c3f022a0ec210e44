// Package ui implements the interactive study guide viewer.
package ui

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// getTTY returns file handles for TUI input/output
// Uses /dev/tty to bypass shell pipes and command substitution
func getTTY() (in *os.File, out *os.File, cleanup func()) {
	var closers []func()

	// If stdout is piped or captured by $(), talk to /dev/tty
	if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) == 0 {
		out, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		if err != nil {
			out = os.Stderr // Last resort fallback
		} else {
			closers = append(closers, func() { out.Close() })
		}

		in, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
		if err != nil {
			in = os.Stdin
		} else {
			closers = append(closers, func() { in.Close() })
		}

		// Tell lipgloss to use the TTY for color detection
		lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(out))

		return in, out, func() {
			for _, c := range closers {
				c()
			}
		}
	}

	return os.Stdin, os.Stdout, func() {}
}

// Run launches the Bubble Tea interface and blocks until the user quits.
// Every batch received on changes reloads the catalog and the open guide.
func Run(ctx context.Context, opts Options, changes <-chan []string) error {
	ttyIn, ttyOut, cleanup := getTTY()
	defer cleanup()
	RefreshStyles(opts.DarkMode) // Refresh after getTTY sets up the renderer

	m := newMainModel(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(ttyOut), tea.WithInput(ttyIn))

	done := make(chan struct{})
	defer close(done)
	if changes != nil {
		go func() {
			for {
				select {
				case files, ok := <-changes:
					if !ok {
						return
					}
					p.Send(guidesChangedMsg{files: files})
				case <-done:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	_, err := p.Run()
	return err
}
