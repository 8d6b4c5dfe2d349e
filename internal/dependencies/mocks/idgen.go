package mocks

import (
	"fmt"
	"sync"

	"github.com/benmooo/ll-xq/internal/dependencies/idgen"
)

// MockIDs is a mock implementation of idgen.Generator for testing
type MockIDs struct {
	mu sync.Mutex

	// Queued is a queue of ids to hand out before falling back to a counter
	Queued  []string
	counter int
}

// Ensure MockIDs implements Generator
var _ idgen.Generator = (*MockIDs)(nil)

// NewMockIDs creates a new MockIDs
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

// NewID returns the next queued id, or "id-N" once the queue is empty
func (g *MockIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.Queued) > 0 {
		id := g.Queued[0]
		g.Queued = g.Queued[1:]
		return id
	}
	g.counter++
	return fmt.Sprintf("id-%d", g.counter)
}

// Queue adds ids to the result queue
func (g *MockIDs) Queue(ids ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Queued = append(g.Queued, ids...)
}
