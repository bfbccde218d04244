package carousel

import (
	"sync"
	"time"
)

// FrameID identifies a requested frame callback.
type FrameID uint64

// Scheduler runs callbacks on the next frame, in the manner of a browser's
// requestAnimationFrame.
type Scheduler interface {
	RequestFrame(cb func()) FrameID
	CancelFrame(id FrameID)
}

// TimerScheduler fires frames on a fixed interval using runtime timers.
type TimerScheduler struct {
	interval time.Duration

	mu     sync.Mutex
	next   FrameID
	timers map[FrameID]*time.Timer
}

func NewTimerScheduler(interval time.Duration) *TimerScheduler {
	return &TimerScheduler{interval: interval, timers: make(map[FrameID]*time.Timer)}
}

func (s *TimerScheduler) RequestFrame(cb func()) FrameID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := s.next
	s.timers[id] = time.AfterFunc(s.interval, func() {
		s.mu.Lock()
		_, live := s.timers[id]
		delete(s.timers, id)
		s.mu.Unlock()
		if live {
			cb()
		}
	})
	return id
}

func (s *TimerScheduler) CancelFrame(id FrameID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// Pending reports how many frames are waiting to fire.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// ManualScheduler only fires frames when told to.
type ManualScheduler struct {
	mu      sync.Mutex
	next    FrameID
	pending map[FrameID]func()
	order   []FrameID
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{pending: make(map[FrameID]func())}
}

func (s *ManualScheduler) RequestFrame(cb func()) FrameID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.pending[s.next] = cb
	s.order = append(s.order, s.next)
	return s.next
}

func (s *ManualScheduler) CancelFrame(id FrameID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

// Tick fires every frame requested before the call and returns how many ran.
func (s *ManualScheduler) Tick() int {
	s.mu.Lock()
	ids := s.order
	s.order = nil
	cbs := make([]func(), 0, len(ids))
	for _, id := range ids {
		if cb, ok := s.pending[id]; ok {
			cbs = append(cbs, cb)
			delete(s.pending, id)
		}
	}
	s.mu.Unlock()

	for _, cb := range cbs {
		cb()
	}
	return len(cbs)
}

// Pending reports how many frames are waiting to fire.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
