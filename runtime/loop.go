package runtime

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/vcrobe/morph/console"
)

// ErrLoopRunning is returned when Run is called on a loop that already ran.
var ErrLoopRunning = errors.New("runtime: loop already running")

// Loop is a single goroutine that owns a document. Work reaches it through
// Post; frames requested through it run on a fixed interval while any are
// pending.
type Loop struct {
	interval time.Duration
	logger   *slog.Logger

	posted  chan func()
	wake    chan struct{}
	done    chan struct{}
	running atomic.Bool

	frames frameQueue
}

var _ Scheduler = (*Loop)(nil)

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithInterval sets the frame interval. Defaults to DefaultFrameInterval.
func WithInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithLoopLogger sets the loop logger.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// NewLoop returns a loop ready to Run.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		interval: DefaultFrameInterval,
		posted:   make(chan func(), 256),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = console.Logger()
	}
	return l
}

// Post queues fn to run on the loop goroutine. It returns false once the
// loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.posted <- fn:
		return true
	case <-l.done:
		return false
	}
}

// RequestFrame schedules fn for the next frame tick.
func (l *Loop) RequestFrame(fn func()) FrameID {
	id := l.frames.add(fn)
	select {
	case l.wake <- struct{}{}:
	default:
	}
	return id
}

// CancelFrame drops a pending frame.
func (l *Loop) CancelFrame(id FrameID) {
	l.frames.cancel(id)
}

// Run processes posted work and frames until ctx is done, then returns
// ctx.Err(). Panics raised by posted work or frames propagate.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer close(l.done)

	l.logger.Debug("loop started", "interval", l.interval)
	var timer *time.Timer
	var tick <-chan time.Time
	for {
		if tick == nil && l.frames.len() > 0 {
			timer = time.NewTimer(l.interval)
			tick = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			l.logger.Debug("loop stopped")
			return ctx.Err()
		case fn := <-l.posted:
			fn()
		case <-l.wake:
		case <-tick:
			tick = nil
			for _, fn := range l.frames.take() {
				fn()
			}
		}
	}
}
