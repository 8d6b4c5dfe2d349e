package model

import (
	"encoding/json"
	"fmt"
)

// EventType identifies the variant of a RoomEvent
type EventType string

const (
	EventRoomCreated EventType = "roomCreated"
	EventJoinSuccess EventType = "joinSuccess"
	EventJoinError   EventType = "joinError"
	EventGameStart   EventType = "gameStart"
	EventMoveMade    EventType = "moveMade"
	EventGameOver    EventType = "gameOver"
	EventInCheck     EventType = "inCheck"
	EventError       EventType = "error"
)

// RoomEvent is the closed set of events broadcast on a room topic.
// Only the payload types in this file implement it.
type RoomEvent interface {
	EventType() EventType
	roomEvent()
}

// RoomCreated is published when a room is created
type RoomCreated struct {
	RoomID      RoomID `json:"roomId"`
	CreatorName string `json:"creatorName"`
}

// JoinSuccess is published when a player takes or reclaims a seat
type JoinSuccess struct {
	RoomID     RoomID `json:"roomId"`
	PlayerName string `json:"playerName"`
	Side       Side   `json:"side"`
}

// JoinError is published when a join attempt on an existing room fails
type JoinError struct {
	Reason string `json:"reason"`
}

// GamePlayer is the roster entry carried by GameStart
type GamePlayer struct {
	Name string `json:"name"`
	Side Side   `json:"side"`
}

// GameStart is published when both seats are filled
type GameStart struct {
	FEN     string       `json:"fen"`
	Turn    Side         `json:"turn"`
	Players []GamePlayer `json:"players"`
}

// MoveMade is published after every accepted move
type MoveMade struct {
	Side Side   `json:"side"`
	From string `json:"from"`
	To   string `json:"to"`
	FEN  string `json:"fen"`
	Turn Side   `json:"turn"`
}

// GameOver is published when a move ends the game. Winner is a Side or WinnerDraw.
type GameOver struct {
	Winner string         `json:"winner"`
	Reason GameOverReason `json:"reason"`
}

// InCheck is published when a move leaves the side to move in check
type InCheck struct {
	SideInCheck Side `json:"sideInCheck"`
}

// ErrorEvent carries a protocol error to a single connection
type ErrorEvent struct {
	Message string `json:"message"`
}

func (RoomCreated) EventType() EventType { return EventRoomCreated }
func (JoinSuccess) EventType() EventType { return EventJoinSuccess }
func (JoinError) EventType() EventType   { return EventJoinError }
func (GameStart) EventType() EventType   { return EventGameStart }
func (MoveMade) EventType() EventType    { return EventMoveMade }
func (GameOver) EventType() EventType    { return EventGameOver }
func (InCheck) EventType() EventType     { return EventInCheck }
func (ErrorEvent) EventType() EventType  { return EventError }

func (RoomCreated) roomEvent() {}
func (JoinSuccess) roomEvent() {}
func (JoinError) roomEvent()   {}
func (GameStart) roomEvent()   {}
func (MoveMade) roomEvent()    {}
func (GameOver) roomEvent()    {}
func (InCheck) roomEvent()     {}
func (ErrorEvent) roomEvent()  {}

// wireEvent is the tagged JSON form of a RoomEvent
type wireEvent struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// MarshalEvent encodes an event as {"type": ..., "payload": {...}}
func MarshalEvent(e RoomEvent) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireEvent{Type: e.EventType(), Payload: payload})
}

// UnmarshalEvent decodes the tagged JSON form produced by MarshalEvent
func UnmarshalEvent(data []byte) (RoomEvent, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}

	var (
		e   RoomEvent
		err error
	)
	switch w.Type {
	case EventRoomCreated:
		e = decodePayload[RoomCreated](w.Payload, &err)
	case EventJoinSuccess:
		e = decodePayload[JoinSuccess](w.Payload, &err)
	case EventJoinError:
		e = decodePayload[JoinError](w.Payload, &err)
	case EventGameStart:
		e = decodePayload[GameStart](w.Payload, &err)
	case EventMoveMade:
		e = decodePayload[MoveMade](w.Payload, &err)
	case EventGameOver:
		e = decodePayload[GameOver](w.Payload, &err)
	case EventInCheck:
		e = decodePayload[InCheck](w.Payload, &err)
	case EventError:
		e = decodePayload[ErrorEvent](w.Payload, &err)
	default:
		return nil, fmt.Errorf("unknown event type %q", w.Type)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func decodePayload[T RoomEvent](raw json.RawMessage, errOut *error) T {
	var v T
	*errOut = json.Unmarshal(raw, &v)
	return v
}
