package sink

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/JonMunkholm/linecap/internal/core"
)

type fakeSink struct {
	name  string
	err   error
	calls atomic.Int32
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Write(ctx context.Context, res *core.Result) error {
	f.calls.Add(1)
	if f.err != nil {
		return sinkError(f.name, f.err)
	}
	return nil
}

func TestMultiWritesAll(t *testing.T) {
	a := &fakeSink{name: "a"}
	b := &fakeSink{name: "b", err: errors.New("disk full")}
	c := &fakeSink{name: "c"}

	m := &Multi{Sinks: []Sink{a, b, c}, Limit: 2}
	err := m.Write(context.Background(), testResult())

	if !errors.Is(err, core.ErrSink) {
		t.Errorf("Write() error = %v, want ErrSink", err)
	}
	for _, s := range []*fakeSink{a, b, c} {
		if s.calls.Load() != 1 {
			t.Errorf("sink %s called %d times, want 1", s.name, s.calls.Load())
		}
	}
	if m.Name() != "multi(a,b,c)" {
		t.Errorf("Name() = %q", m.Name())
	}
}

func TestMultiSuccess(t *testing.T) {
	m := &Multi{Sinks: []Sink{&fakeSink{name: "a"}, &fakeSink{name: "b"}}}
	if err := m.Write(context.Background(), testResult()); err != nil {
		t.Errorf("Write() error = %v, want nil", err)
	}
}
