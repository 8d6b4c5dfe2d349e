package request

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/benmooo/ll-xq/internal/api/apierr"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 1 << 16

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	CreatorName string `json:"creator_name"`
}

// JoinRoomRequest is the request body for joining or rejoining a room
type JoinRoomRequest struct {
	PlayerName string `json:"player_name"`
	PlayerID   string `json:"player_id,omitempty"`
}

// MoveRequest is the request body for submitting a move
type MoveRequest struct {
	PlayerID string `json:"player_id"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// PingRequest is the request body for a liveness ping
type PingRequest struct {
	PlayerID string `json:"player_id"`
}

// Decode reads a JSON body into v. Malformed bodies become INVALID_REQUEST errors.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apierr.NewInvalidRequestError("Request body is required")
		}
		return apierr.NewInvalidRequestError("Invalid request body")
	}
	return nil
}
