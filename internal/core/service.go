package core

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ErrExtraction marks a failure of the table region source. Regions
// assembled before the failure are kept in the returned Result.
var ErrExtraction = errors.New("table extraction failed")

// RegionSource supplies extracted table regions in document order. The
// sequence yields a non-nil error at most once and stops after it.
type RegionSource interface {
	Regions(ctx context.Context) iter.Seq2[Region, error]
}

// StaticSource serves regions that are already in memory.
type StaticSource []Region

func (s StaticSource) Regions(ctx context.Context) iter.Seq2[Region, error] {
	return func(yield func(Region, error) bool) {
		for i, r := range s {
			if err := ctx.Err(); err != nil {
				yield(Region{}, err)
				return
			}
			r.Index = i
			if !yield(r, nil) {
				return
			}
		}
	}
}

// Result is the outcome of one extraction run.
type Result struct {
	RunID     string        `json:"runId"`
	Layout    Layout        `json:"-"`
	Store     *Store        `json:"records"`
	Stats     Stats         `json:"stats"`
	Partial   bool          `json:"partial"` // A source failure cut the run short after some regions
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"durationNs"`
}

// Service runs extractions. It holds no per-run state and is safe for
// concurrent use; each Run owns its own Assembler and Store.
type Service struct {
	observer Observer
	limiter  *RunLimiter
	logger   *slog.Logger
	now      func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithObserver adds an observer that sees every classified row of every run,
// alongside the per-run log observer.
func WithObserver(o Observer) ServiceOption {
	return func(s *Service) { s.observer = o }
}

// WithRunLimiter bounds concurrent runs.
func WithRunLimiter(l *RunLimiter) ServiceOption {
	return func(s *Service) { s.limiter = l }
}

// WithLogger sets the base logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

type loggerKey struct{}

// ContextWithLogger attaches a logger that Run uses in place of the service's
// base logger, so per-request fields such as request_id reach run logs.
func ContextWithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func (s *Service) loggerFor(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return s.logger
}

// NewService creates a Service.
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limiter returns the run limiter, or nil when runs are unbounded.
func (s *Service) Limiter() *RunLimiter { return s.limiter }

// Run pulls every region from src and assembles them with layout.
//
// If the source fails part way, Run returns the Result built from the regions
// completed so far together with an error wrapping ErrExtraction. Partial is
// set only when at least one region was assembled; the caller decides
// whether a partial store is worth writing.
func (s *Service) Run(ctx context.Context, src RegionSource, layout Layout) (*Result, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx); err != nil {
			return nil, err
		}
		defer s.limiter.Release()
	}

	res := &Result{
		RunID:     uuid.NewString(),
		Layout:    layout,
		StartedAt: s.now(),
	}
	logger := s.loggerFor(ctx).With("run_id", res.RunID, "layout", layout.Key)

	observers := Observers{NewLogObserver(logger)}
	if s.observer != nil {
		observers = append(observers, s.observer)
	}
	asm := NewAssembler(layout, observers)

	logger.Info("extraction started")

	var runErr error
	for region, err := range src.Regions(ctx) {
		if err != nil {
			runErr = fmt.Errorf("%w: after %d regions: %w", ErrExtraction, asm.Stats().Regions, err)
			break
		}
		asm.AddRegion(region)
	}

	res.Store = asm.Store()
	res.Stats = asm.Stats()
	res.Duration = s.now().Sub(res.StartedAt)

	if runErr != nil {
		res.Partial = res.Stats.Regions > 0
		logger.Error("extraction failed",
			"error", runErr,
			"regions_completed", res.Stats.Regions,
			"records", res.Store.Len(),
		)
		return res, runErr
	}

	logger.Info("extraction completed",
		"regions", res.Stats.Regions,
		"rows", res.Stats.Rows,
		"records", res.Store.Len(),
		"replaced", res.Stats.Replaced,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
