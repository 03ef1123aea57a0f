// internal/game/coordinator.go
package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/amitsinghrawat777/CAB-server/internal/journal"
)

// Default countdown lengths. Both are fields on the Coordinator so tests can
// shorten them.
const (
	DefaultBlitzSeconds = 300
	DefaultGracePeriod  = 30 * time.Second
)

// Coordinator is the authoritative session controller. It owns the room and
// connection registries and serializes every mutation (player actions, timer
// ticks, grace expiries) behind a single mutex, so no two mutations of the
// same room ever race.
type Coordinator struct {
	mu     sync.Mutex
	logger *logrus.Logger

	duels   map[string]*DuelRoom
	battles map[string]*BattleRoom

	// conns maps connection handles to live sessions; connRooms routes a
	// disconnecting handle to its room without scanning every room.
	conns     map[uuid.UUID]*Session
	connRooms map[uuid.UUID]RoomRef

	duelTimers   map[string]*countdown
	battleTimers map[string]*countdown
	graceTimers  map[string]*time.Timer

	// Journal, when non-nil, receives a fire-and-forget record per finished
	// match. Room state itself never leaves process memory.
	Journal *journal.Journal

	// GenCode produces candidate room codes; tests swap it to force
	// collisions.
	GenCode func() string

	// BlitzSeconds is the countdown start value for blitz rooms.
	BlitzSeconds int
	// GracePeriod is how long a disconnected duel player may rejoin.
	GracePeriod time.Duration
	// TickInterval is the countdown tick spacing; one second in production.
	TickInterval time.Duration
}

// NewCoordinator builds a coordinator with empty registries and production
// timer durations.
func NewCoordinator(logger *logrus.Logger) *Coordinator {
	return &Coordinator{
		logger:       logger,
		duels:        make(map[string]*DuelRoom),
		battles:      make(map[string]*BattleRoom),
		conns:        make(map[uuid.UUID]*Session),
		connRooms:    make(map[uuid.UUID]RoomRef),
		duelTimers:   make(map[string]*countdown),
		battleTimers: make(map[string]*countdown),
		graceTimers:  make(map[string]*time.Timer),
		GenCode:      GenerateRoomCode,
		BlitzSeconds: DefaultBlitzSeconds,
		GracePeriod:  DefaultGracePeriod,
		TickInterval: time.Second,
	}
}

// Attach registers a session so rooms can address it by handle.
func (c *Coordinator) Attach(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conns[s.ID] = s
	c.logger.WithField("conn", s.ID).Debug("session attached")
}

// HandleDisconnect processes a transport-detected disconnect. An explicit
// leave_room beforehand will already have removed the room, making this a
// no-op for it.
func (c *Coordinator) HandleDisconnect(connID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.conns, connID)
	ref, ok := c.connRooms[connID]
	if !ok {
		return
	}
	delete(c.connRooms, connID)

	c.logger.WithFields(logrus.Fields{"conn": connID, "room": ref.Code, "kind": ref.Kind}).Info("connection disconnected")

	switch ref.Kind {
	case KindDuel:
		c.duelDeparture(ref.Code, connID, false)
	case KindBattle:
		c.battleDeparture(ref.Code, connID)
	}
}

// send delivers an event to one connection handle, if it is attached.
// Lock must be held.
func (c *Coordinator) send(connID uuid.UUID, ev Event) {
	if s, ok := c.conns[connID]; ok {
		s.Write(ev)
	}
}

// broadcastDuel delivers an event to both seats of a duel room.
// Lock must be held.
func (c *Coordinator) broadcastDuel(room *DuelRoom, ev Event) {
	if room.Player1 != uuid.Nil {
		c.send(room.Player1, ev)
	}
	if room.Player2 != uuid.Nil {
		c.send(room.Player2, ev)
	}
}

// broadcastBattle delivers an event to every participant and the host.
// Lock must be held.
func (c *Coordinator) broadcastBattle(room *BattleRoom, ev Event) {
	sent := make(map[uuid.UUID]bool, len(room.Players)+1)
	for _, p := range room.Players {
		if !sent[p.ID] {
			c.send(p.ID, ev)
			sent[p.ID] = true
		}
	}
	if room.Host != uuid.Nil && !sent[room.Host] {
		c.send(room.Host, ev)
	}
}

// newRoomCode allocates a room code not currently in use by either registry.
// After a bounded number of collisions it returns the last candidate, which
// at worst replaces an existing room rather than failing.
// Lock must be held.
func (c *Coordinator) newRoomCode() string {
	var code string
	for i := 0; i < 16; i++ {
		code = c.GenCode()
		_, duel := c.duels[code]
		_, battle := c.battles[code]
		if !duel && !battle {
			return code
		}
	}
	c.logger.WithField("room", code).Warn("room code collision budget exhausted, reusing code")
	return code
}

// publishMatch journals a finished match off the mutation path. Safe to call
// with the lock held; errors are logged and swallowed.
func (c *Coordinator) publishMatch(rec journal.MatchRecord) {
	if c.Journal == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := c.Journal.Publish(ctx, rec); err != nil {
			c.logger.WithField("room", rec.RoomCode).Warnf("failed to journal match: %v", err)
		}
	}()
}
