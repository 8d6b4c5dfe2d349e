package session

import (
	"net/http"

	"github.com/benmooo/ll-xq/internal/api/apierr"
)

// Envelope is the uniform result of every session call
type Envelope struct {
	Success bool             `json:"success"`
	Data    any              `json:"data,omitempty"`
	Error   *apierr.APIError `json:"error,omitempty"`

	status int
}

// Status returns the HTTP status matching the envelope
func (e Envelope) Status() int {
	if e.status == 0 {
		return http.StatusOK
	}
	return e.status
}

// Err returns the error carried by a failed envelope, or nil
func (e Envelope) Err() error {
	if e.Success || e.Error == nil {
		return nil
	}
	return envelopeError{*e.Error}
}

type envelopeError struct {
	apierr.APIError
}

func (e envelopeError) Error() string {
	return e.Code + ": " + e.Message
}

func ok(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

func created(data any) Envelope {
	return Envelope{Success: true, Data: data, status: http.StatusCreated}
}

func fail(err error) Envelope {
	status, apiErr := apierr.Classify(err)
	return Envelope{Error: &apiErr, status: status}
}

// CreateRoomData is returned by CreateRoom
type CreateRoomData struct {
	RoomID string `json:"room_id"`
}

// PingData is returned by Ping
type PingData struct {
	OK bool `json:"ok"`
}

// LegalMovesData is returned by LegalMoves
type LegalMovesData struct {
	Square string   `json:"square"`
	Moves  []string `json:"moves"`
}
