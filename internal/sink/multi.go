package sink

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/linecap/internal/core"
)

// Multi writes to several sinks concurrently. Every sink is attempted even
// when another fails; the errors are joined.
type Multi struct {
	Sinks []Sink
	Limit int // Concurrent writes; 0 means no limit
}

func (m *Multi) Name() string {
	names := make([]string, len(m.Sinks))
	for i, s := range m.Sinks {
		names[i] = s.Name()
	}
	return "multi(" + strings.Join(names, ",") + ")"
}

func (m *Multi) Write(ctx context.Context, res *core.Result) error {
	var g errgroup.Group
	if m.Limit > 0 {
		g.SetLimit(m.Limit)
	}

	errs := make([]error, len(m.Sinks))
	for i, s := range m.Sinks {
		g.Go(func() error {
			errs[i] = s.Write(ctx, res)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}
