// internal/game/duel.go
package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/amitsinghrawat777/CAB-server/internal/journal"
)

// duelTime renders a room's clock for payloads: nil unless the room is blitz.
func duelTime(room *DuelRoom) interface{} {
	if room.Mode == ModeBlitz {
		return room.TimeRemaining
	}
	return nil
}

// CreateDuel allocates a room in the waiting phase with the caller as
// Player 1 and replies with the code and role assignment.
func (c *Coordinator) CreateDuel(s *Session, mode string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if mode == "" {
		mode = ModeStandard
	}
	code := c.newRoomCode()
	room := &DuelRoom{
		Code:            code,
		Mode:            mode,
		Player1:         s.ID,
		Phase:           PhaseWaiting,
		RematchRequests: make(map[uuid.UUID]bool),
	}
	if mode == ModeBlitz {
		room.TimeRemaining = c.BlitzSeconds
	}
	c.duels[code] = room
	c.connRooms[s.ID] = RoomRef{Code: code, Kind: KindDuel}

	c.logger.WithFields(logrus.Fields{"room": code, "mode": mode, "conn": s.ID}).Info("duel room created")
	s.Write(Event{Type: EventRoomCreated, Payload: map[string]interface{}{
		"roomCode": code,
		"role":     RolePlayer1,
		"mode":     mode,
	}})
}

// JoinDuel seats the caller as Player 2 and moves the room to setup.
func (c *Coordinator) JoinDuel(s *Session, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.duels[code]
	if !ok {
		s.WriteError(EventJoinError, ErrRoomNotFound)
		return
	}
	if room.Player2 != uuid.Nil {
		s.WriteError(EventJoinError, ErrRoomFull)
		return
	}

	room.Player2 = s.ID
	room.Phase = PhaseSetup
	c.connRooms[s.ID] = RoomRef{Code: code, Kind: KindDuel}

	c.logger.WithFields(logrus.Fields{"room": code, "conn": s.ID}).Info("duel room joined")
	s.Write(Event{Type: EventRoomJoined, Payload: map[string]interface{}{
		"roomCode": code,
		"role":     RolePlayer2,
		"mode":     room.Mode,
	}})
	c.send(room.Player1, Event{Type: EventOpponentJoined, Payload: map[string]interface{}{
		"role": RolePlayer2,
	}})
	c.broadcastDuel(room, Event{Type: EventGamePhase, Payload: map[string]interface{}{
		"phase": PhaseSetup,
	}})
}

// RejoinDuel rebinds a role's connection handle within the reconnect grace
// window and resynchronizes the client with the current phase and clock.
func (c *Coordinator) RejoinDuel(s *Session, code, role string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.duels[code]
	if !ok {
		s.Write(Event{Type: EventRejoinFailed, Payload: map[string]interface{}{
			"error": ErrRoomExpired.Error(),
		}})
		return
	}

	if role == RolePlayer1 {
		room.Player1 = s.ID
	} else {
		room.Player2 = s.ID
	}
	c.connRooms[s.ID] = RoomRef{Code: code, Kind: KindDuel}
	c.cancelGraceTimer(code)

	opponentReady := room.secretFor(OpponentRole(role)) != ""
	c.logger.WithFields(logrus.Fields{"room": code, "role": role, "conn": s.ID}).Info("duel player rejoined")
	s.Write(Event{Type: EventRejoinSuccess, Payload: map[string]interface{}{
		"phase":         room.Phase,
		"opponentReady": opponentReady,
		"timeRemaining": duelTime(room),
	}})
	c.send(room.connFor(OpponentRole(role)), Event{Type: EventOpponentRejoined})
}

// SetSecret records the caller's secret. Once both secrets are set the room
// moves to playing and, in blitz mode, the countdown starts.
func (c *Coordinator) SetSecret(s *Session, code, secret, role string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.duels[code]
	if !ok || !ValidCode(secret) {
		return
	}

	if role == RolePlayer1 {
		room.Secret1 = secret
	} else {
		room.Secret2 = secret
	}
	c.send(room.connFor(OpponentRole(role)), Event{Type: EventOpponentReady})

	if room.Secret1 != "" && room.Secret2 != "" {
		room.Phase = PhasePlaying
		c.broadcastDuel(room, Event{Type: EventGamePhase, Payload: map[string]interface{}{
			"phase": PhasePlaying,
		}})
		c.logger.WithField("room", code).Info("duel entered playing phase")
		if room.Mode == ModeBlitz {
			c.startDuelCountdown(code)
		}
	}
}

// SubmitGuess scores a guess against the opponent's secret. Four bulls crack
// the code and end the match.
func (c *Coordinator) SubmitGuess(s *Session, code, guess, role string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.duels[code]
	if !ok || room.Phase != PhasePlaying || !ValidCode(guess) {
		return
	}
	secret := room.secretFor(OpponentRole(role))
	if secret == "" {
		return
	}

	res := Score(secret, guess)
	result := map[string]interface{}{
		"guess":  guess,
		"found":  res.Bulls + res.Cows,
		"locked": res.Bulls,
	}
	s.Write(Event{Type: EventGuessResult, Payload: result})
	c.send(room.connFor(OpponentRole(role)), Event{Type: EventOpponentGuessed, Payload: result})

	if res.Cracked() {
		c.stopDuelCountdown(code)
		room.Phase = PhaseGameOver
		c.broadcastDuel(room, Event{Type: EventGameOver, Payload: map[string]interface{}{
			"winner":   role,
			"p1Secret": room.Secret1,
			"p2Secret": room.Secret2,
			"reason":   ReasonCracked,
		}})
		c.logger.WithFields(logrus.Fields{"room": code, "winner": role}).Info("duel code cracked")
		c.publishMatch(journal.MatchRecord{
			RoomCode:  code,
			Kind:      string(KindDuel),
			Mode:      room.Mode,
			Winner:    role,
			Reason:    ReasonCracked,
			Timestamp: time.Now().Unix(),
		})
	}
}

// Chat appends to the room's chat history and broadcasts the message
// verbatim. No phase restriction.
func (c *Coordinator) Chat(s *Session, code, sender, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.duels[code]
	if !ok {
		return
	}
	room.Chat = append(room.Chat, ChatEntry{Sender: sender, Message: message})
	c.broadcastDuel(room, Event{Type: EventChatMessage, Payload: map[string]interface{}{
		"sender":  sender,
		"message": message,
	}})
}

// LeaveDuel is an explicit departure: the room is torn down immediately with
// no grace period.
func (c *Coordinator) LeaveDuel(s *Session, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.duelDeparture(code, s.ID, true)
}

// RequestRematch records a rematch vote; once both players have voted the
// room resets to setup for a fresh round. Only effective in gameover.
func (c *Coordinator) RequestRematch(s *Session, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.duels[code]
	if !ok || room.Phase != PhaseGameOver {
		return
	}
	room.RematchRequests[s.ID] = true

	both := room.Player1 != uuid.Nil && room.Player2 != uuid.Nil &&
		room.RematchRequests[room.Player1] && room.RematchRequests[room.Player2]
	if !both {
		c.send(room.connFor(OpponentRole(room.roleFor(s.ID))), Event{Type: EventRematchRequested})
		return
	}

	c.stopDuelCountdown(code)
	room.Secret1 = ""
	room.Secret2 = ""
	room.Phase = PhaseSetup
	if room.Mode == ModeBlitz {
		room.TimeRemaining = c.BlitzSeconds
	}
	room.RematchRequests = make(map[uuid.UUID]bool)

	c.logger.WithField("room", code).Info("rematch accepted, duel reset to setup")
	c.broadcastDuel(room, Event{Type: EventRematchAccepted})
	c.broadcastDuel(room, Event{Type: EventGamePhase, Payload: map[string]interface{}{
		"phase": PhaseSetup,
	}})
}

// duelDeparture is the shared duel cleanup transition. Explicit leaves tear
// the room down immediately; implicit disconnects notify the opponent and arm
// the reconnect grace timer. Lock must be held.
func (c *Coordinator) duelDeparture(code string, connID uuid.UUID, immediate bool) {
	room, ok := c.duels[code]
	if !ok {
		return
	}

	if immediate {
		c.broadcastDuel(room, Event{Type: EventOpponentLeft})
		c.stopDuelCountdown(code)
		c.cancelGraceTimer(code)
		delete(c.duels, code)
		c.logger.WithField("room", code).Info("duel room destroyed on explicit leave")
		return
	}

	role := room.roleFor(connID)
	c.send(room.connFor(OpponentRole(role)), Event{Type: EventOpponentDiscTemp, Payload: map[string]interface{}{
		"role": role,
	}})
	c.startGraceTimer(code)
}
