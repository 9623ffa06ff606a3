package apperror

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrBadPassphrase   = errors.New("wrong passphrase")
	ErrRoomFull        = errors.New("room is full")
	ErrAlreadyJoined   = errors.New("you are already in this room")
	ErrGameNotStarted  = errors.New("game is not in progress")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrInvalidPosition = errors.New("position out of range")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrGameNotOver     = errors.New("game is not over yet")
	ErrNotInRoom       = errors.New("you are not in any room")
)
