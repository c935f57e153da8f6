// Package closer tracks opened connections by label so they can be released together.
package closer

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/multierr"
)

// Group closes its members in reverse order of Add.
// Every failure is kept and prefixed with the member label.
type Group struct {
	mu      sync.Mutex
	labels  []string
	closers []io.Closer
}

func (g *Group) Add(label string, c io.Closer) {
	if c == nil {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.labels = append(g.labels, label)
	g.closers = append(g.closers, c)
}

// Labels returns the label of members not closed yet, in order of Add.
func (g *Group) Labels() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]string, len(g.labels))
	copy(out, g.labels)
	return out
}

// Close empties the group, calling it twice is a no-op.
func (g *Group) Close() error {
	g.mu.Lock()
	labels, closers := g.labels, g.closers
	g.labels, g.closers = nil, nil
	g.mu.Unlock()

	var err error
	for i := len(closers) - 1; i >= 0; i-- {
		if e := closers[i].Close(); e != nil {
			err = multierr.Append(err, fmt.Errorf("(%s) %w", labels[i], e))
		}
	}

	return err
}
