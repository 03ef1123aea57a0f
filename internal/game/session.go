// internal/game/session.go
package game

import (
	"log"

	"github.com/google/uuid"
)

// Session is a connection handle: the coordinator's view of one connected
// client. The transport layer owns the actual connection; rooms only hold the
// ID as a weak reference.
type Session struct {
	ID uuid.UUID

	// Out carries outbound events to the connection's write pump.
	Out chan Event

	// Cancel stops the goroutines tied to this connection's context.
	Cancel func()
}

// NewSession allocates a connection handle with a fresh ID and a buffered
// outbound channel.
func NewSession() *Session {
	return &Session{
		ID:  uuid.New(),
		Out: make(chan Event, 32),
	}
}

// Write pushes an event onto the session's outbound channel without blocking.
// A full or closed channel drops the event; delivery is never awaited.
func (s *Session) Write(ev Event) {
	select {
	case s.Out <- ev:
	default:
		log.Printf("session %s: out channel closed or full, dropped event %q", s.ID, ev.Type)
	}
}

// WriteError sends a named error event carrying a human-readable message.
func (s *Session) WriteError(t EventType, err error) {
	s.Write(Event{Type: t, Payload: map[string]interface{}{"message": err.Error()}})
}
