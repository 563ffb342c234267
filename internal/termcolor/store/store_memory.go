package store

import (
	"context"
	"sync"

	id "termcolor/pkg/domain"
	"termcolor/pkg/platform/sentinel"
)

// InMemory keeps metadata in process. It favors clarity over performance and
// backs tests and single-process development runs.
type InMemory struct {
	mu   sync.RWMutex
	meta map[id.TermID]map[MetaKey]string
}

// NewInMemory constructs an empty store.
func NewInMemory() *InMemory {
	return &InMemory{meta: make(map[id.TermID]map[MetaKey]string)}
}

func (s *InMemory) Get(_ context.Context, termID id.TermID, key MetaKey) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.meta[termID][key]; ok {
		return v, nil
	}
	return "", sentinel.ErrNotFound
}

func (s *InMemory) Update(_ context.Context, termID id.TermID, key MetaKey, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meta[termID]
	if !ok {
		m = make(map[MetaKey]string)
		s.meta[termID] = m
	}
	m[key] = value
	return nil
}

func (s *InMemory) Delete(_ context.Context, termID id.TermID, key MetaKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.meta[termID], key)
	if len(s.meta[termID]) == 0 {
		delete(s.meta, termID)
	}
	return nil
}

// Len reports how many terms carry any metadata.
func (s *InMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meta)
}
