// internal/game/coordinator_test.go
package game

import (
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// newTestCoordinator builds a coordinator with silenced logging.
func newTestCoordinator() *Coordinator {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewCoordinator(logger)
}

// newTestSession attaches a session with a large buffer so no event is
// dropped during a test.
func newTestSession(c *Coordinator) *Session {
	s := &Session{ID: uuid.New(), Out: make(chan Event, 128)}
	c.Attach(s)
	return s
}

// drainEvents empties a session's outbound channel.
func drainEvents(s *Session) []Event {
	var evs []Event
	for {
		select {
		case ev := <-s.Out:
			evs = append(evs, ev)
		default:
			return evs
		}
	}
}

// findEvent returns the first drained event of the given type, or nil.
func findEvent(evs []Event, t EventType) *Event {
	for i := range evs {
		if evs[i].Type == t {
			return &evs[i]
		}
	}
	return nil
}

// requireEvent fails the test unless an event of the given type was drained.
func requireEvent(t *testing.T, evs []Event, typ EventType) Event {
	t.Helper()
	ev := findEvent(evs, typ)
	require.NotNilf(t, ev, "expected event %q, got %v", typ, evs)
	return *ev
}

// waitForEvent blocks until the session receives an event of the given type,
// discarding others. Used for asynchronous timer-driven events.
func waitForEvent(t *testing.T, s *Session, typ EventType, timeout time.Duration) Event {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case ev := <-s.Out:
			if ev.Type == typ {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event %q", typ)
			return Event{}
		}
	}
}

// createdRoomCode creates a duel room and returns its code.
func createdRoomCode(t *testing.T, c *Coordinator, s *Session, mode string) string {
	t.Helper()
	c.CreateDuel(s, mode)
	ev := requireEvent(t, drainEvents(s), EventRoomCreated)
	code, ok := ev.Payload["roomCode"].(string)
	require.True(t, ok, "room_created payload missing roomCode")
	return code
}

// duelRoom fetches a duel room from the registry under the lock.
func duelRoom(c *Coordinator, code string) *DuelRoom {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duels[code]
}

// battleRoom fetches a battle room from the registry under the lock.
func battleRoom(c *Coordinator, code string) *BattleRoom {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.battles[code]
}
