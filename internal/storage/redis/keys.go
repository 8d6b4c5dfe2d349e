package redis

import (
	"fmt"

	"github.com/benmooo/ll-xq/internal/model"
)

// Key prefix for all archived data
const keyPrefix = "llxq"

// resultKey returns the Redis key for a GameResult
func resultKey(roomID model.RoomID) string {
	return fmt.Sprintf("%s:result:%s", keyPrefix, roomID)
}

// resultsIndexKey returns the Redis key for the ZSET of results scored by end time
func resultsIndexKey() string {
	return fmt.Sprintf("%s:idx:results", keyPrefix)
}
