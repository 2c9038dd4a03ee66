// Package hooks holds the fetch-and-cache state behind each view. A hook owns
// one remote resource, issues requests through a service module and keeps the
// latest result for rendering.
package hooks

import (
	"context"
	"errors"
)

// ErrSuperseded is returned by a fetch whose result was discarded because a
// newer fetch was issued while it was in flight.
var ErrSuperseded = errors.New("fetch superseded by a newer request")

// Phase is the lifecycle stage of a fetched resource
type Phase int

const (
	Idle Phase = iota
	Loading
	Success
	Failure
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	}
	return "unknown"
}

// State is a fetched value together with its phase. Data is meaningful in
// Success and kept as stale data during Loading and Failure. Err is set only
// in Failure.
type State[T any] struct {
	Phase Phase
	Data  T
	Err   string
}

// generation tracks the latest issued fetch. Callers hold the owning hook's
// mutex around every method.
type generation struct {
	current uint64
	dropped uint64
	cancel  context.CancelFunc
}

// begin cancels the in-flight fetch, if any, and returns the context and
// number for a new one.
func (g *generation) begin(ctx context.Context) (context.Context, uint64) {
	if g.cancel != nil {
		g.cancel()
	}
	ctx, g.cancel = context.WithCancel(ctx)
	g.current++
	return ctx, g.current
}

// finish reports whether n is still the latest fetch and releases its context.
func (g *generation) finish(n uint64) bool {
	if n != g.current || n == g.dropped {
		return false
	}
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	return true
}

// drop discards the in-flight fetch without issuing a new one. It reports
// whether there was one.
func (g *generation) drop() bool {
	if g.cancel == nil {
		return false
	}
	g.cancel()
	g.cancel = nil
	g.dropped = g.current
	return true
}
