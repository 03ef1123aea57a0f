// internal/game/timers.go
package game

import (
	"sync"
	"time"

	"github.com/amitsinghrawat777/CAB-server/internal/journal"
)

// countdown is a cancellable per-room one-second ticker. stop is idempotent:
// every path that ends a room's active play calls it, and calling it with no
// active ticks is a no-op.
type countdown struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func newCountdown(interval time.Duration) *countdown {
	return &countdown{
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
}

func (t *countdown) stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}

// startDuelCountdown begins ticking a blitz duel. Any previous countdown for
// the same room is stopped first. Lock must be held.
func (c *Coordinator) startDuelCountdown(code string) {
	if prev, ok := c.duelTimers[code]; ok {
		prev.stop()
	}
	t := newCountdown(c.TickInterval)
	c.duelTimers[code] = t
	go c.runDuelCountdown(code, t)
}

// stopDuelCountdown cancels a duel room's countdown, if any. Lock must be held.
func (c *Coordinator) stopDuelCountdown(code string) {
	if t, ok := c.duelTimers[code]; ok {
		delete(c.duelTimers, code)
		t.stop()
	}
}

// runDuelCountdown decrements the room's clock once per tick. Each tick
// re-checks that the room still exists and that this countdown is still the
// room's current one, guarding against races with deletion and rematch
// resets. At zero it forces a gameover transition with reason timeout.
func (c *Coordinator) runDuelCountdown(code string, t *countdown) {
	for {
		select {
		case <-t.done:
			return
		case <-t.ticker.C:
			c.mu.Lock()
			room, ok := c.duels[code]
			if !ok || c.duelTimers[code] != t {
				c.mu.Unlock()
				t.stop()
				return
			}
			room.TimeRemaining--
			c.broadcastDuel(room, Event{Type: EventTimerUpdate, Payload: map[string]interface{}{
				"timeRemaining": room.TimeRemaining,
			}})
			if room.TimeRemaining <= 0 {
				delete(c.duelTimers, code)
				room.Phase = PhaseGameOver
				c.broadcastDuel(room, Event{Type: EventGameOver, Payload: map[string]interface{}{
					"winner": nil,
					"reason": ReasonTimeout,
				}})
				c.logger.WithField("room", code).Info("duel ended by timeout")
				c.publishMatch(journal.MatchRecord{
					RoomCode:  code,
					Kind:      string(KindDuel),
					Mode:      room.Mode,
					Reason:    ReasonTimeout,
					Timestamp: time.Now().Unix(),
				})
				c.mu.Unlock()
				t.stop()
				return
			}
			c.mu.Unlock()
		}
	}
}

// startBattleCountdown begins ticking a blitz battle room. Lock must be held.
func (c *Coordinator) startBattleCountdown(code string) {
	if prev, ok := c.battleTimers[code]; ok {
		prev.stop()
	}
	t := newCountdown(c.TickInterval)
	c.battleTimers[code] = t
	go c.runBattleCountdown(code, t)
}

// stopBattleCountdown cancels a battle room's countdown, if any.
// Lock must be held.
func (c *Coordinator) stopBattleCountdown(code string) {
	if t, ok := c.battleTimers[code]; ok {
		delete(c.battleTimers, code)
		t.stop()
	}
}

// runBattleCountdown mirrors runDuelCountdown for battle rooms; at zero the
// secret is revealed and the room is destroyed.
func (c *Coordinator) runBattleCountdown(code string, t *countdown) {
	for {
		select {
		case <-t.done:
			return
		case <-t.ticker.C:
			c.mu.Lock()
			room, ok := c.battles[code]
			if !ok || c.battleTimers[code] != t {
				c.mu.Unlock()
				t.stop()
				return
			}
			room.TimeRemaining--
			c.broadcastBattle(room, Event{Type: EventBattleTimer, Payload: map[string]interface{}{
				"timeRemaining": room.TimeRemaining,
			}})
			if room.TimeRemaining <= 0 {
				delete(c.battleTimers, code)
				c.broadcastBattle(room, Event{Type: EventBattleGameOver, Payload: map[string]interface{}{
					"reason": ReasonTimeout,
					"winner": nil,
					"secret": room.Secret,
				}})
				delete(c.battles, code)
				c.logger.WithField("room", code).Info("battle ended by timeout")
				c.publishMatch(journal.MatchRecord{
					RoomCode:  code,
					Kind:      string(KindBattle),
					Mode:      room.Mode,
					Reason:    ReasonTimeout,
					Timestamp: time.Now().Unix(),
				})
				c.mu.Unlock()
				t.stop()
				return
			}
			c.mu.Unlock()
		}
	}
}

// startGraceTimer arms the 30-second reconnect window for a duel room. At most
// one grace timer exists per room; arming replaces any prior one.
// Lock must be held.
func (c *Coordinator) startGraceTimer(code string) {
	if prev, ok := c.graceTimers[code]; ok {
		prev.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(c.GracePeriod, func() {
		c.mu.Lock()
		// A rejoin (or a newer disconnect) may have replaced this timer.
		if c.graceTimers[code] != timer {
			c.mu.Unlock()
			return
		}
		delete(c.graceTimers, code)
		room, ok := c.duels[code]
		if !ok {
			c.mu.Unlock()
			return
		}
		c.broadcastDuel(room, Event{Type: EventOpponentDisc})
		c.stopDuelCountdown(code)
		delete(c.duels, code)
		c.logger.WithField("room", code).Info("grace period expired, duel room destroyed")
		c.publishMatch(journal.MatchRecord{
			RoomCode:  code,
			Kind:      string(KindDuel),
			Mode:      room.Mode,
			Reason:    "disconnect",
			Timestamp: time.Now().Unix(),
		})
		c.mu.Unlock()
	})
	c.graceTimers[code] = timer
}

// cancelGraceTimer disarms a room's reconnect window, if armed.
// Lock must be held.
func (c *Coordinator) cancelGraceTimer(code string) {
	if t, ok := c.graceTimers[code]; ok {
		delete(c.graceTimers, code)
		t.Stop()
	}
}
