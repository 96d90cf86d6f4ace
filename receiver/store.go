package receiver

import (
	"sync"
	"time"
)

// Store holds the latest channel values. The parser goroutine writes it
// and the control loop reads it.
type Store struct {
	mu         sync.Mutex
	channels   [NumChannels]uint16
	lastPacket time.Time
	now        func() time.Time
}

// NewStore returns an empty Store. It reports no packet until the first
// Update.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Update records a new set of channels.
func (s *Store) Update(channels [NumChannels]uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels = channels
	s.lastPacket = s.now()
}

// Channels returns the latest channels and when they arrived. The time is
// zero if nothing was received yet.
func (s *Store) Channels() ([NumChannels]uint16, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channels, s.lastPacket
}
