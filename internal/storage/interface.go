package storage

import (
	"context"

	"github.com/benmooo/ll-xq/internal/model"
)

// Storage archives the results of finished games. Live rooms are held in
// memory by the room manager and are never written here.
type Storage interface {
	SaveResult(ctx context.Context, result *model.GameResult) error
	// GetResult returns model.ErrResultNotFound for unknown rooms
	GetResult(ctx context.Context, roomID model.RoomID) (*model.GameResult, error)
	// ListResults returns up to limit results, most recently ended first.
	// A limit <= 0 returns every result.
	ListResults(ctx context.Context, limit int) ([]*model.GameResult, error)
}
