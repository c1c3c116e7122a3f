// Package subscribers holds non-SQL implementations of subscription.Store.
package subscribers

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps subscribers in process memory. The set is lost on restart.
type MemoryStore struct {
	mu  sync.RWMutex
	ids map[int64]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[int64]struct{})}
}

func (s *MemoryStore) Add(_ context.Context, chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[chatID]; ok {
		return false, nil
	}
	s.ids[chatID] = struct{}{}
	return true, nil
}

func (s *MemoryStore) Remove(_ context.Context, chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[chatID]; !ok {
		return false, nil
	}
	delete(s.ids, chatID)
	return true, nil
}

// List returns a sorted copy, safe to iterate while the store changes.
func (s *MemoryStore) List(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	ids := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
