// internal/game/battle.go
package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/amitsinghrawat777/CAB-server/internal/journal"
)

// Battle room capacity bounds; out-of-range requests are clamped and a
// missing value falls back to the default.
const (
	MinBattlePlayers     = 2
	MaxBattlePlayers     = 200
	DefaultBattlePlayers = 100
)

// clampMaxPlayers normalizes a requested room capacity.
func clampMaxPlayers(n int) int {
	if n == 0 {
		return DefaultBattlePlayers
	}
	if n < MinBattlePlayers {
		return MinBattlePlayers
	}
	if n > MaxBattlePlayers {
		return MaxBattlePlayers
	}
	return n
}

// battleTime renders a battle room's clock for payloads: nil unless blitz.
func battleTime(room *BattleRoom) interface{} {
	if room.Mode == ModeBlitz {
		return room.TimeRemaining
	}
	return nil
}

// battleRoomPayload echoes the room snapshot sent on create and join.
func battleRoomPayload(room *BattleRoom, connID uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"roomCode":   room.Code,
		"host":       room.Host == connID,
		"players":    Leaderboard(room.Players),
		"started":    room.Started,
		"mode":       room.Mode,
		"maxPlayers": room.MaxPlayers,
		"eSport":     room.ESport,
	}
}

// CreateBattle allocates a battle-royale room with the caller as host. Unless
// the room is spectator-host (eSport), the host also plays.
func (c *Coordinator) CreateBattle(s *Session, name, mode string, maxPlayers int, eSport bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if mode == "" {
		mode = ModeNormal
	}
	code := c.newRoomCode()
	room := &BattleRoom{
		Code:       code,
		Mode:       mode,
		Host:       s.ID,
		MaxPlayers: clampMaxPlayers(maxPlayers),
		ESport:     eSport,
	}
	if mode == ModeBlitz {
		room.TimeRemaining = c.BlitzSeconds
	}
	if !eSport {
		if name == "" {
			name = "Host"
		}
		room.Players = append(room.Players, &BattlePlayer{ID: s.ID, Name: name})
	}
	c.battles[code] = room
	c.connRooms[s.ID] = RoomRef{Code: code, Kind: KindBattle}

	c.logger.WithFields(logrus.Fields{"room": code, "mode": mode, "eSport": eSport, "conn": s.ID}).Info("battle room created")
	s.Write(Event{Type: EventBattleCreated, Payload: battleRoomPayload(room, s.ID)})
}

// JoinBattle appends a new participant and broadcasts the refreshed
// leaderboard. Joins are rejected once the match has started or the room is
// at capacity.
func (c *Coordinator) JoinBattle(s *Session, code, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.battles[code]
	if !ok {
		s.WriteError(EventBattleError, ErrRoomNotFound)
		return
	}
	if room.Started {
		s.WriteError(EventBattleError, ErrGameAlreadyStarted)
		return
	}
	if len(room.Players) >= room.MaxPlayers {
		s.WriteError(EventBattleError, ErrRoomFull)
		return
	}

	if name == "" {
		name = fmt.Sprintf("Player %d", len(room.Players)+1)
	}
	room.Players = append(room.Players, &BattlePlayer{ID: s.ID, Name: name})
	c.connRooms[s.ID] = RoomRef{Code: code, Kind: KindBattle}

	c.logger.WithFields(logrus.Fields{"room": code, "name": name, "conn": s.ID}).Info("battle room joined")
	s.Write(Event{Type: EventBattleJoined, Payload: battleRoomPayload(room, s.ID)})
	c.broadcastLeaderboard(room)
}

// StartBattle generates the shared secret and opens guessing. Host only.
func (c *Coordinator) StartBattle(s *Session, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.battles[code]
	if !ok {
		return
	}
	if room.Host != s.ID {
		s.WriteError(EventBattleError, ErrNotHost)
		return
	}

	room.Secret = GenerateSecretCode()
	room.Started = true
	c.logger.WithField("room", code).Info("battle started")
	c.broadcastBattle(room, Event{Type: EventBattleStarted, Payload: map[string]interface{}{
		"mode":          room.Mode,
		"timeRemaining": battleTime(room),
		"eSport":        room.ESport,
	}})
	if room.Mode == ModeBlitz {
		c.startBattleCountdown(code)
	}
}

// BattleGuess scores a guess against the shared secret, updates the caller's
// ranking stats and history, and ends the match on four bulls.
func (c *Coordinator) BattleGuess(s *Session, code, guess string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.battles[code]
	if !ok || !room.Started {
		return
	}
	if room.ESport && room.Host == s.ID {
		s.WriteError(EventBattleError, ErrSpectatorForbidden)
		return
	}
	player := room.playerByID(s.ID)
	if player == nil {
		return
	}
	if !ValidCode(guess) {
		s.WriteError(EventBattleError, ErrInvalidCode)
		return
	}

	res := Score(room.Secret, guess)
	attempt := Attempt{
		Guess: guess,
		Bulls: res.Bulls,
		Cows:  res.Cows,
		Score: res.Value(),
		Moves: player.Moves + 1,
		TS:    time.Now().UnixMilli(),
	}
	player.recordAttempt(attempt)

	s.Write(Event{Type: EventBattleGuessResult, Payload: map[string]interface{}{
		"guess": guess,
		"bulls": res.Bulls,
		"cows":  res.Cows,
		"score": attempt.Score,
		"moves": player.Moves,
	}})
	c.broadcastLeaderboard(room)

	if res.Cracked() {
		c.stopBattleCountdown(code)
		c.broadcastBattle(room, Event{Type: EventBattleGameOver, Payload: map[string]interface{}{
			"winner": player.Name,
			"secret": room.Secret,
		}})
		delete(c.battles, code)
		c.logger.WithFields(logrus.Fields{"room": code, "winner": player.Name}).Info("battle code cracked")
		c.publishMatch(journal.MatchRecord{
			RoomCode:  code,
			Kind:      string(KindBattle),
			Mode:      room.Mode,
			Winner:    player.Name,
			Reason:    ReasonCracked,
			Moves:     player.Moves,
			Timestamp: time.Now().Unix(),
		})
	}
}

// BattleHistory returns a target player's attempt history to the spectating
// host. Spectator-host rooms only.
func (c *Coordinator) BattleHistory(s *Session, code, playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.battles[code]
	if !ok {
		s.WriteError(EventBattleError, ErrRoomNotFound)
		return
	}
	if !room.ESport {
		s.WriteError(EventBattleError, ErrHistoryForbidden)
		return
	}
	if room.Host != s.ID {
		s.WriteError(EventBattleError, ErrHistoryNotHost)
		return
	}

	targetID, err := uuid.Parse(playerID)
	if err != nil {
		s.WriteError(EventBattleError, ErrPlayerNotFound)
		return
	}
	target := room.playerByID(targetID)
	if target == nil {
		s.WriteError(EventBattleError, ErrPlayerNotFound)
		return
	}

	s.Write(Event{Type: EventBattlePlayerHistory, Payload: map[string]interface{}{
		"playerId": playerID,
		"name":     target.Name,
		"history":  target.History,
	}})
}

// broadcastLeaderboard pushes the recomputed ranking to the whole room.
// Lock must be held.
func (c *Coordinator) broadcastLeaderboard(room *BattleRoom) {
	c.broadcastBattle(room, Event{Type: EventBattleLeaderboard, Payload: map[string]interface{}{
		"players": Leaderboard(room.Players),
	}})
}

// battleDeparture removes a disconnected participant. An empty non-spectator
// room is destroyed; otherwise the first remaining player inherits a departed
// host and the leaderboard is re-broadcast. Lock must be held.
func (c *Coordinator) battleDeparture(code string, connID uuid.UUID) {
	room, ok := c.battles[code]
	if !ok {
		return
	}

	remaining := room.Players[:0]
	for _, p := range room.Players {
		if p.ID != connID {
			remaining = append(remaining, p)
		}
	}
	room.Players = remaining

	if len(room.Players) == 0 && !room.ESport {
		c.stopBattleCountdown(code)
		delete(c.battles, code)
		c.logger.WithField("room", code).Info("battle room empty, destroyed")
		return
	}

	if room.Host == connID && len(room.Players) > 0 {
		room.Host = room.Players[0].ID
		c.broadcastBattle(room, Event{Type: EventBattleHostChanged, Payload: map[string]interface{}{
			"host": room.Host.String(),
		}})
		c.logger.WithFields(logrus.Fields{"room": code, "host": room.Host}).Info("battle host changed")
	}
	c.broadcastLeaderboard(room)
}
