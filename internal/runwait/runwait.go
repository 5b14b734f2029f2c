// Package runwait triggers a workflow run, follows its event stream until
// the run reaches a terminal status, and then fetches the final snapshot.
//
// One state machine serves both the blocking call and the channel-based
// variant; it is generic over the snapshot type so it can be driven by the
// public client or by test doubles.
package runwait

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"splox-go/internal/domain"
	"splox-go/internal/infra/logger"
	"splox-go/internal/infra/metrics"
)

// DefaultTimeout bounds a run when Options.Timeout is unset.
const DefaultTimeout = 300 * time.Second

// State is a step of the run-and-wait state machine.
type State int

const (
	StateTriggering State = iota
	StateStreaming
	StateResolving
	StateDone
	StateTimedOut
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateTriggering:
		return "triggering"
	case StateStreaming:
		return "streaming"
	case StateResolving:
		return "resolving"
	case StateDone:
		return "done"
	case StateTimedOut:
		return "timed_out"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EventSource is a single-consumer sequence of stream events. *sse.Stream
// satisfies it.
type EventSource interface {
	Next(ctx context.Context) (domain.StreamEvent, error)
	Close() error
}

// Deps are the collaborators of one invocation.
type Deps[S any] struct {
	// Trigger starts the run and returns its id. It is never retried.
	Trigger func(ctx context.Context) (string, error)
	// Open opens the event stream for a run.
	Open func(ctx context.Context, runID string) (EventSource, error)
	// Fetch loads the final snapshot of a run.
	Fetch func(ctx context.Context, runID string) (S, error)
}

// Options tune one invocation. The zero value is usable.
type Options struct {
	// Timeout is measured from the start of Run, before the trigger
	// request. It is checked each time an event arrives.
	Timeout time.Duration
	// StrictDeadline additionally bounds the stream handshake and every
	// stream read by the deadline, so a silent connection cannot outlive it.
	StrictDeadline bool

	OnTriggered func(runID string)
	OnEvent     func(domain.StreamEvent)
	OnState     func(State)

	// Now replaces time.Now in tests.
	Now    func() time.Time
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = logger.Discard()
	}
	return o
}

// Result is delivered by Start.
type Result[S any] struct {
	Value S
	Err   error
}

// Run blocks until the run resolves, the deadline passes, or ctx is done.
// Errors from the collaborators are returned unchanged; only the deadline
// produces its own *domain.TimeoutError.
func Run[S any](ctx context.Context, deps Deps[S], opts Options) (S, error) {
	opts = opts.withDefaults()
	m := &machine[S]{deps: deps, opts: opts, log: opts.Logger}
	start := opts.Now()
	v, err := m.run(ctx, start)
	metrics.ObserveRunAndWait(m.state.String(), opts.Now().Sub(start))
	return v, err
}

// Start runs the same state machine in its own goroutine. The channel
// receives exactly one Result and is then closed. Cancel ctx to abandon
// the run; the open stream is closed before the Result is sent.
func Start[S any](ctx context.Context, deps Deps[S], opts Options) <-chan Result[S] {
	ch := make(chan Result[S], 1)
	go func() {
		defer close(ch)
		v, err := Run(ctx, deps, opts)
		ch <- Result[S]{Value: v, Err: err}
	}()
	return ch
}

type machine[S any] struct {
	deps  Deps[S]
	opts  Options
	log   *slog.Logger
	state State
}

func (m *machine[S]) enter(s State) {
	m.state = s
	m.log.Debug("run-and-wait state", "state", s.String())
	if m.opts.OnState != nil {
		m.opts.OnState(s)
	}
}

func (m *machine[S]) run(ctx context.Context, start time.Time) (S, error) {
	var zero S

	m.enter(StateTriggering)
	runID, err := m.deps.Trigger(ctx)
	if err != nil {
		m.enter(StateFailed)
		return zero, err
	}
	m.log = m.log.With("run_id", runID)
	if m.opts.OnTriggered != nil {
		m.opts.OnTriggered(runID)
	}

	m.enter(StateStreaming)
	if err := m.stream(ctx, runID, start); err != nil {
		if errors.Is(err, domain.ErrTimeout) {
			m.enter(StateTimedOut)
		} else {
			m.enter(StateFailed)
		}
		return zero, err
	}

	m.enter(StateResolving)
	v, err := m.deps.Fetch(ctx, runID)
	if err != nil {
		m.enter(StateFailed)
		return zero, err
	}
	m.enter(StateDone)
	return v, nil
}

// stream consumes events until a terminal status or end of stream. The
// source is closed on every return path.
func (m *machine[S]) stream(ctx context.Context, runID string, start time.Time) error {
	timeout := m.opts.Timeout
	timedOut := func() error {
		m.log.Warn("run did not complete in time", "timeout", timeout)
		return &domain.TimeoutError{RunID: runID, Timeout: timeout}
	}

	readCtx := ctx
	if m.opts.StrictDeadline {
		var cancel context.CancelFunc
		readCtx, cancel = context.WithDeadline(ctx, start.Add(timeout))
		defer cancel()
	}

	src, err := m.deps.Open(readCtx, runID)
	if err != nil {
		if ctx.Err() == nil && m.opts.StrictDeadline && errors.Is(err, context.DeadlineExceeded) {
			return timedOut()
		}
		return err
	}
	defer src.Close()

	for {
		ev, err := src.Next(readCtx)
		if errors.Is(err, io.EOF) {
			m.log.Debug("stream ended before a terminal status")
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if m.opts.StrictDeadline && errors.Is(err, context.DeadlineExceeded) {
				src.Close()
				return timedOut()
			}
			return err
		}

		if m.opts.OnEvent != nil {
			m.opts.OnEvent(ev)
		}
		if m.opts.Now().Sub(start) > timeout {
			src.Close()
			return timedOut()
		}
		if status, ok := ev.RunStatus(); ok && status.Terminal() {
			m.log.Debug("run reached terminal status", "status", status.String())
			return nil
		}
	}
}
