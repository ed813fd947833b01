package runtime

import (
	"sort"
	"sync"
	"time"
)

// FrameID identifies a requested frame. The zero FrameID means none.
type FrameID uint64

// Scheduler defers work to the next frame. A canceled frame never runs.
type Scheduler interface {
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
}

// DefaultFrameInterval approximates one display frame.
const DefaultFrameInterval = 16 * time.Millisecond

// frameQueue holds pending frame callbacks in request order.
type frameQueue struct {
	mu     sync.Mutex
	next   FrameID
	frames map[FrameID]func()
}

func (q *frameQueue) add(fn func()) FrameID {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.frames == nil {
		q.frames = make(map[FrameID]func())
	}
	q.next++
	q.frames[q.next] = fn
	return q.next
}

func (q *frameQueue) cancel(id FrameID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.frames, id)
}

func (q *frameQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}

// take removes and returns every pending callback, oldest first.
func (q *frameQueue) take() []func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.frames) == 0 {
		return nil
	}
	ids := make([]FrameID, 0, len(q.frames))
	for id := range q.frames {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(), len(ids))
	for i, id := range ids {
		fns[i] = q.frames[id]
	}
	q.frames = make(map[FrameID]func())
	return fns
}

// ManualScheduler runs frames only when Flush is called. It suits tests and
// one-shot renders.
type ManualScheduler struct {
	queue frameQueue
}

var _ Scheduler = (*ManualScheduler)(nil)

// NewManualScheduler returns an empty ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// RequestFrame queues fn for the next Flush.
func (s *ManualScheduler) RequestFrame(fn func()) FrameID {
	return s.queue.add(fn)
}

// CancelFrame drops a queued frame.
func (s *ManualScheduler) CancelFrame(id FrameID) {
	s.queue.cancel(id)
}

// Pending returns the number of queued frames.
func (s *ManualScheduler) Pending() int {
	return s.queue.len()
}

// Flush runs every queued frame in request order and returns how many ran.
// Frames requested while flushing wait for the next Flush.
func (s *ManualScheduler) Flush() int {
	fns := s.queue.take()
	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// TimerScheduler runs each frame on a timer goroutine after a fixed delay.
// Frames never overlap: each one holds the scheduler's run lock. Use a Loop
// instead when anything besides frames touches the document.
type TimerScheduler struct {
	delay time.Duration

	run    sync.Mutex
	mu     sync.Mutex
	next   FrameID
	timers map[FrameID]*time.Timer
}

var _ Scheduler = (*TimerScheduler)(nil)

var defaultScheduler = sync.OnceValue(func() *TimerScheduler {
	return NewTimerScheduler(DefaultFrameInterval)
})

// DefaultScheduler returns the TimerScheduler shared by controllers created
// without WithScheduler.
func DefaultScheduler() *TimerScheduler {
	return defaultScheduler()
}

// NewTimerScheduler returns a scheduler that fires frames after delay.
// A non-positive delay means DefaultFrameInterval.
func NewTimerScheduler(delay time.Duration) *TimerScheduler {
	if delay <= 0 {
		delay = DefaultFrameInterval
	}
	return &TimerScheduler{
		delay:  delay,
		timers: make(map[FrameID]*time.Timer),
	}
}

// RequestFrame schedules fn.
func (s *TimerScheduler) RequestFrame(fn func()) FrameID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := s.next
	s.timers[id] = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		_, ok := s.timers[id]
		delete(s.timers, id)
		s.mu.Unlock()
		if !ok {
			return
		}
		s.run.Lock()
		defer s.run.Unlock()
		fn()
	})
	return id
}

// CancelFrame stops a scheduled frame.
func (s *TimerScheduler) CancelFrame(id FrameID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}
