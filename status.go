package main

import (
	"sync"
	"time"
)

const DefaultStatusTTL = 1600 * time.Millisecond

// Status is a single-slot, self-clearing message. Each Show replaces the
// current text and restarts the clear timer.
type Status struct {
	mu    sync.Mutex
	msg   string
	ttl   time.Duration
	timer *time.Timer
	gen   uint64

	onChange func(msg string)
}

func NewStatus(ttl time.Duration) *Status {
	if ttl <= 0 {
		ttl = DefaultStatusTTL
	}
	return &Status{ttl: ttl}
}

func (s *Status) Show(msg string) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.msg = msg
	s.timer = time.AfterFunc(s.ttl, func() { s.expire(gen) })
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange(msg)
	}
}

// a timer that already fired before Stop must not clear a newer message
func (s *Status) expire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.msg = ""
	s.timer = nil
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange("")
	}
}

// OnChange registers fn to be called with the new message after every
// change, including the automatic clear. The clear runs on the timer's
// goroutine. A nil fn removes the hook.
func (s *Status) OnChange(fn func(msg string)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Status) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msg
}

func (s *Status) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
