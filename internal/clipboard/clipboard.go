// Package clipboard copies code blocks to the system clipboard.
package clipboard

import (
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrUnavailable is returned when no clipboard backend works on this system
var ErrUnavailable = errors.New("no clipboard available")

// Clipboard defines the interface for clipboard operations
type Clipboard interface {
	Copy(text string) error
}

// writeAll is the native backend, replaceable in tests
var writeAll = clipboard.WriteAll

// lookPath is replaceable in tests
var lookPath = exec.LookPath

// systemClipboard tries the native library first, then clipboard commands
type systemClipboard struct{}

// System returns the platform clipboard
func System() Clipboard {
	return systemClipboard{}
}

// Copy copies text to the system clipboard
func (systemClipboard) Copy(text string) error {
	nativeErr := writeAll(text)
	if nativeErr == nil {
		return nil
	}
	cmd := findClipboardCommand()
	if cmd == nil {
		return errors.Join(ErrUnavailable, nativeErr)
	}
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// findClipboardCommand returns the appropriate clipboard command for the system
func findClipboardCommand() *exec.Cmd {
	switch {
	case commandExists("wl-copy"):
		return exec.Command("wl-copy")
	case commandExists("xclip"):
		return exec.Command("xclip", "-selection", "clipboard")
	case commandExists("xsel"):
		return exec.Command("xsel", "--clipboard", "--input")
	case commandExists("pbcopy"):
		return exec.Command("pbcopy")
	default:
		return nil
	}
}

func commandExists(name string) bool {
	_, err := lookPath(name)
	return err == nil
}

// CopiedMsg reports the outcome of an asynchronous copy
type CopiedMsg struct {
	Chars int
	Err   error
}

// Copier performs fire-and-forget copies on behalf of the UI
type Copier struct {
	clipboard Clipboard
	logger    *slog.Logger
}

// NewCopier creates a copier backed by the system clipboard
func NewCopier(logger *slog.Logger) *Copier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Copier{clipboard: System(), logger: logger}
}

// WithClipboard sets a custom clipboard implementation (useful for testing)
func (c *Copier) WithClipboard(cb Clipboard) *Copier {
	c.clipboard = cb
	return c
}

// Copy writes text synchronously and logs failures
func (c *Copier) Copy(text string) CopiedMsg {
	if err := c.clipboard.Copy(text); err != nil {
		c.logger.Warn("clipboard: copy failed", slog.String("error", err.Error()))
		return CopiedMsg{Err: err}
	}
	chars := utf8.RuneCountInString(text)
	c.logger.Debug("clipboard: copied", slog.Int("chars", chars))
	return CopiedMsg{Chars: chars}
}

// CopyAsync returns a command that copies text off the event loop
func (c *Copier) CopyAsync(text string) tea.Cmd {
	return func() tea.Msg {
		return c.Copy(text)
	}
}
