package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")

	// Player errors
	ErrPlayerNotFound = errors.New("player not found in room")

	// Move errors
	ErrNotYourTurn  = errors.New("not this player's turn")
	ErrIllegalMove  = errors.New("illegal move")
	ErrInvalidInput = errors.New("invalid input")

	// Archive errors
	ErrResultNotFound = errors.New("game result not found")
)
