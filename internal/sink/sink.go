// Package sink writes extraction results to their destinations.
//
// Every sink error wraps core.ErrSink. A failed write leaves the result
// untouched, so the caller can retry with another sink.
package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/linecap/internal/core"
)

// Sink writes one extraction result.
type Sink interface {
	Name() string
	Write(ctx context.Context, res *core.Result) error
}

func sinkError(name string, err error) error {
	return fmt.Errorf("%w: %s: %w", core.ErrSink, name, err)
}

// expandName substitutes {layout} and {run_id} in an output name.
func expandName(pattern string, res *core.Result) string {
	return strings.NewReplacer(
		"{layout}", res.Layout.Key,
		"{run_id}", res.RunID,
	).Replace(pattern)
}
