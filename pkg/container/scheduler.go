package container

import (
	"sync"
	"time"
)

// Scheduler defers work to a later point, typically the next frame of the
// presenting surface.
type Scheduler interface {
	Schedule(task func())
}

// Immediate runs every task inline on the caller's goroutine.
type Immediate struct{}

func (Immediate) Schedule(task func()) { task() }

// DefaultFrameInterval is roughly one frame at 60 Hz.
const DefaultFrameInterval = 16 * time.Millisecond

// FrameScheduler queues tasks and runs them on the next frame tick, one at
// a time, on a single goroutine. Call Close to stop it; tasks still queued
// at that point are dropped.
type FrameScheduler struct {
	mu     sync.Mutex
	queue  []func()
	ticker *time.Ticker
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// NewFrameScheduler starts a scheduler ticking every interval. A
// non-positive interval uses DefaultFrameInterval.
func NewFrameScheduler(interval time.Duration) *FrameScheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	s := &FrameScheduler{
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.loop()
	return s
}

// Schedule queues task for the next frame. It returns immediately; after
// Close it does nothing.
func (s *FrameScheduler) Schedule(task func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue = append(s.queue, task)
}

// Close stops the frame loop and waits for a running task to finish.
func (s *FrameScheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.queue = nil
	s.mu.Unlock()

	close(s.done)
	s.wg.Wait()
	s.ticker.Stop()
}

func (s *FrameScheduler) loop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case <-s.ticker.C:
			s.mu.Lock()
			tasks := s.queue
			s.queue = nil
			s.mu.Unlock()
			for _, task := range tasks {
				select {
				case <-s.done:
					return
				default:
				}
				task()
			}
		}
	}
}
