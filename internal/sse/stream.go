package sse

import (
	"bufio"
	"context"
	"errors"
	"io"
	"iter"
	"strings"
	"sync"
	"sync/atomic"

	"splox-go/internal/domain"
)

// Stream owns one streaming response body and yields decoded events in
// server order. It is single-consumer: at most one Next call may be in
// flight. Close may be called from any goroutine, any number of times.
type Stream struct {
	body   io.ReadCloser
	r      *bufio.Reader
	cancel context.CancelFunc
	// skipLF is set after a line ended in '\r'; a '\n' that follows
	// belongs to the same terminator.
	skipLF bool

	onEvent func(domain.StreamEvent)
	onClose func()

	closeOnce sync.Once
	closed    atomic.Bool
	closeErr  error

	mu  sync.Mutex
	err error
}

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithCancel registers the cancel func of the request context; Close calls it.
func WithCancel(cancel context.CancelFunc) StreamOption {
	return func(s *Stream) { s.cancel = cancel }
}

// WithEventHook is called with every event before it is returned.
func WithEventHook(fn func(domain.StreamEvent)) StreamOption {
	return func(s *Stream) { s.onEvent = fn }
}

// WithCloseHook is called exactly once, after the body is closed.
func WithCloseHook(fn func()) StreamOption {
	return func(s *Stream) { s.onClose = fn }
}

// NewStream wraps body. The reader has no line length limit.
func NewStream(body io.ReadCloser, opts ...StreamOption) *Stream {
	s := &Stream{body: body, r: bufio.NewReader(body)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Next returns the next event. It returns io.EOF when the server ends the
// stream, ErrStreamClosed after Close, ctx.Err() when ctx is done, and a
// *domain.StreamError for any other read failure. Every error except
// ErrStreamClosed closes the stream.
func (s *Stream) Next(ctx context.Context) (domain.StreamEvent, error) {
	if s.closed.Load() {
		return domain.StreamEvent{}, domain.ErrStreamClosed
	}
	if err := ctx.Err(); err != nil {
		s.Close()
		return domain.StreamEvent{}, err
	}

	// A blocked read only returns once the body is closed.
	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()

	for {
		line, err := s.readLine()
		if err == nil || (errors.Is(err, io.EOF) && line != "") {
			if ev, ok := DecodeLine(line); ok {
				if s.onEvent != nil {
					s.onEvent(ev)
				}
				return ev, nil
			}
			if err == nil {
				continue
			}
		}

		switch {
		case ctx.Err() != nil:
			s.Close()
			return domain.StreamEvent{}, ctx.Err()
		case s.closed.Load():
			return domain.StreamEvent{}, domain.ErrStreamClosed
		case errors.Is(err, io.EOF):
			s.Close()
			return domain.StreamEvent{}, io.EOF
		default:
			s.Close()
			return domain.StreamEvent{}, &domain.StreamError{Err: err}
		}
	}
}

// readLine reads up to the next "\n", "\r\n" or bare "\r" and returns the
// line without its terminator. On error it returns what was read so far.
// It never reads past a terminator, so a live stream is not blocked on the
// byte after a '\r'.
func (s *Stream) readLine() (string, error) {
	var b strings.Builder
	for {
		c, err := s.r.ReadByte()
		if err != nil {
			return b.String(), err
		}
		if s.skipLF {
			s.skipLF = false
			if c == '\n' {
				continue
			}
		}
		switch c {
		case '\n':
			return b.String(), nil
		case '\r':
			s.skipLF = true
			return b.String(), nil
		}
		b.WriteByte(c)
	}
}

// Close releases the connection. Only the first call has any effect.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if s.cancel != nil {
			s.cancel()
		}
		s.closeErr = s.body.Close()
		if s.onClose != nil {
			s.onClose()
		}
	})
	return s.closeErr
}

// Closed reports whether Close has run.
func (s *Stream) Closed() bool { return s.closed.Load() }

// All ranges over the remaining events. A clean end of stream stops the
// loop without an error; any other failure is yielded once as the final
// element. Leaving the loop early closes the stream.
func (s *Stream) All(ctx context.Context) iter.Seq2[domain.StreamEvent, error] {
	return func(yield func(domain.StreamEvent, error) bool) {
		defer s.Close()
		for {
			ev, err := s.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(domain.StreamEvent{}, err)
				return
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}

// Chan delivers events on an unbuffered channel that is closed when the
// stream ends, fails, or ctx is cancelled. Check Err after the channel is
// drained.
func (s *Stream) Chan(ctx context.Context) <-chan domain.StreamEvent {
	ch := make(chan domain.StreamEvent)
	go func() {
		defer close(ch)
		defer s.Close()
		for {
			ev, err := s.Next(ctx)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					s.setErr(err)
				}
				return
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
				s.setErr(ctx.Err())
				return
			}
		}
	}()
	return ch
}

// Err returns the error that ended a Chan consumer, or nil after a clean end.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Stream) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}
