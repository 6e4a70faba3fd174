package devenv

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ohare93/devlink/internal/watcher"
)

// Link mirrors one local package into an example's dependency directory.
// Each link owns its destination, so links never coordinate.
type Link struct {
	Name string
	Src  string
	Dst  string

	w *watcher.Watcher
}

// NewLink starts watching src. Changes are not acted on until Run.
func NewLink(name, src, dst string, ignore []string) (*Link, error) {
	w, err := watcher.New(src, watcher.Options{Ignore: ignore})
	if err != nil {
		return nil, fmt.Errorf("local package %s: %w", name, err)
	}
	return &Link{Name: name, Src: src, Dst: dst, w: w}, nil
}

// Run recopies the package after every change until ctx is done. Events
// already queued when a change arrives are reported and folded into the
// same copy. A failed copy ends the link with an error.
func (l *Link) Run(ctx context.Context, notify Notifier, logger *slog.Logger) error {
	defer l.w.Close()
	l.w.Start()

	for {
		select {
		case <-ctx.Done():
			return nil

		case e := <-l.w.Events:
			notify.Notice(e)
			l.drain(notify)

			if err := copyTree(l.Src, l.Dst); err != nil {
				return fmt.Errorf("local package %s: %w", l.Name, err)
			}
			logger.Debug("recopied local package", "package", l.Name, "dst", l.Dst)

		case err := <-l.w.Errors:
			logger.Warn("watch error", "package", l.Name, "error", err)
		}
	}
}

func (l *Link) drain(notify Notifier) {
	for {
		select {
		case e := <-l.w.Events:
			notify.Notice(e)
		default:
			return
		}
	}
}

// Close stops the watcher of a link that was never run.
func (l *Link) Close() error {
	return l.w.Close()
}
