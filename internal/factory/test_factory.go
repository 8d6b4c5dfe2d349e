package factory

import (
	"time"

	"github.com/benmooo/ll-xq/internal/dependencies/mocks"
	"github.com/benmooo/ll-xq/internal/services/room"
	"github.com/benmooo/ll-xq/internal/storage/memory"
	"github.com/benmooo/ll-xq/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDs
	Archive   *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDs()

	app := newWithDependencies(store, mockClock, mockIDs, room.DefaultConfig(), 0, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
		Archive:   store,
	}
}
