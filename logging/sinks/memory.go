package sinks

import (
	"context"
	"sync"

	"blast-arena/server/logging"
)

// Memory retains events in-process, used by tests.
type Memory struct {
	mu     sync.RWMutex
	events []logging.Event
}

func NewMemory() *Memory {
	return &Memory{events: make([]logging.Event, 0)}
}

func (s *Memory) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *Memory) Events() []logging.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make([]logging.Event, len(s.events))
	copy(copied, s.events)
	return copied
}

func (s *Memory) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = s.events[:0]
}

func (s *Memory) Close(context.Context) error {
	return nil
}
