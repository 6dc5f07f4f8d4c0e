package store

import "time"

// DefaultSaveDelay is how long a mutation waits before it is written out.
const DefaultSaveDelay = 2 * time.Second

type saveState int

const (
	saveIdle saveState = iota
	saveScheduled
)

// saveScheduler is the write-behind state machine. A mutation arms the
// deadline once; further mutations before the deadline do not move it.
type saveScheduler struct {
	state    saveState
	delay    time.Duration
	deadline time.Time
}

func (s *saveScheduler) schedule(now time.Time) bool {
	if s.state == saveScheduled {
		return false
	}
	s.state = saveScheduled
	s.deadline = now.Add(s.delay)
	return true
}

func (s *saveScheduler) due(now time.Time) bool {
	return s.state == saveScheduled && !now.Before(s.deadline)
}

func (s *saveScheduler) pending() bool {
	return s.state == saveScheduled
}

func (s *saveScheduler) reset() {
	s.state = saveIdle
	s.deadline = time.Time{}
}
