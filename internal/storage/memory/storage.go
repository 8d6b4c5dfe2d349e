package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/benmooo/ll-xq/internal/model"
	"github.com/benmooo/ll-xq/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu      sync.RWMutex
	results map[model.RoomID]*model.GameResult
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		results: make(map[model.RoomID]*model.GameResult),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveResult(ctx context.Context, result *model.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *result
	stored.Players = append([]model.SeatedPlayer(nil), result.Players...)
	s.results[result.RoomID] = &stored
	return nil
}

func (s *Storage) GetResult(ctx context.Context, roomID model.RoomID) (*model.GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[roomID]
	if !ok {
		return nil, model.ErrResultNotFound
	}
	out := *result
	return &out, nil
}

func (s *Storage) ListResults(ctx context.Context, limit int) ([]*model.GameResult, error) {
	s.mu.RLock()
	results := make([]*model.GameResult, 0, len(s.results))
	for _, r := range s.results {
		out := *r
		results = append(results, &out)
	}
	s.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].EndedAt.Equal(results[j].EndedAt) {
			return results[i].RoomID < results[j].RoomID
		}
		return results[i].EndedAt.After(results[j].EndedAt)
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
