package customer

import (
	"context"
	"sync"

	"aptic/internal/document"
	"aptic/pkg/platform/sentinel"
)

// InMemoryStore keeps records in insertion order. It backs the whole registry;
// nothing survives the process.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*Record
	ordered []string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byID: make(map[string]*Record)}
}

func (s *InMemoryStore) Save(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[record.ID]; !exists {
		s.ordered = append(s.ordered, record.ID)
	}
	clone := cloneRecord(record)
	s.byID[record.ID] = clone
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneRecord(record), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Record, 0, len(s.ordered))
	for _, id := range s.ordered {
		out = append(out, cloneRecord(s.byID[id]))
	}
	return out, nil
}

// cloneRecord copies the record and its document snapshot so callers cannot
// mutate stored state without going back through Save.
func cloneRecord(r *Record) *Record {
	clone := *r
	clone.OriginalDocs = append([]document.Document(nil), r.OriginalDocs...)
	return &clone
}
