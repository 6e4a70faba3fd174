package devenv

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/ohare93/devlink/internal/watcher"
)

// Notifier reports file changes picked up by a link.
type Notifier interface {
	Notice(e watcher.Event)
}

// Notice styles, used when output is a terminal
var (
	StyleMarker   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // Blue
	StyleAdded    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // Green
	StyleDeleted  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // Red
	StyleModified = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // Yellow
)

func kindStyle(kind watcher.EventKind) lipgloss.Style {
	switch kind {
	case watcher.Added:
		return StyleAdded
	case watcher.Deleted:
		return StyleDeleted
	case watcher.Modified:
		return StyleModified
	default:
		return lipgloss.NewStyle()
	}
}

// NoticeWriter prints one "<marker> <A|D|M> <path>" line per file event.
// Links call it from their own goroutines, so writes are serialized.
type NoticeWriter struct {
	out    io.Writer
	marker string
	styled bool
	mu     sync.Mutex
}

// NewNoticeWriter creates a writer. styled enables terminal colors.
func NewNoticeWriter(out io.Writer, marker string, styled bool) *NoticeWriter {
	return &NoticeWriter{out: out, marker: marker, styled: styled}
}

// Notice prints a line for file events. Directory events are silent.
func (n *NoticeWriter) Notice(e watcher.Event) {
	if e.IsDir {
		return
	}

	marker, letter := n.marker, e.Kind.Letter()
	if n.styled {
		marker = StyleMarker.Render(marker)
		letter = kindStyle(e.Kind).Render(letter)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintf(n.out, "%s %s %s\n", marker, letter, e.Path)
}
