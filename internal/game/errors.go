// internal/game/errors.go
package game

import "errors"

// Recoverable coordination errors. Each surfaces to the offending connection
// as a named error event with its message; none of them ever tears down a
// room or a connection.
var (
	ErrRoomNotFound       = errors.New("Room not found")
	ErrRoomFull           = errors.New("Room full")
	ErrRoomExpired        = errors.New("Room expired")
	ErrGameAlreadyStarted = errors.New("Game started")
	ErrInvalidCode        = errors.New("Code must be exactly 4 digits")
	ErrNotHost            = errors.New("Only host can do that")
	ErrHistoryForbidden   = errors.New("History available only in eSport rooms")
	ErrHistoryNotHost     = errors.New("Only host can view history")
	ErrSpectatorForbidden = errors.New("Host spectates in eSport mode")
	ErrPlayerNotFound     = errors.New("Player not found")
)
