// internal/game/room.go
package game

import "github.com/google/uuid"

// Game modes. Blitz rooms run a shared countdown that ends the match at zero.
const (
	ModeStandard = "standard"
	ModeNormal   = "normal" // battle-royale default
	ModeBlitz    = "blitz"
)

// Phase is the duel room lifecycle state.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseSetup    Phase = "setup"
	PhasePlaying  Phase = "playing"
	PhaseGameOver Phase = "gameover"
)

// Duel player roles, as exposed on the wire.
const (
	RolePlayer1 = "Player 1"
	RolePlayer2 = "Player 2"
)

// OpponentRole returns the other duel role.
func OpponentRole(role string) string {
	if role == RolePlayer1 {
		return RolePlayer2
	}
	return RolePlayer1
}

// ChatEntry is one message in a duel room's chat history.
type ChatEntry struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// DuelRoom holds the state of a single 1v1 match. All fields are owned by the
// Coordinator and mutated only while its lock is held.
type DuelRoom struct {
	Code string
	Mode string

	// Player connection handles. Player2 is uuid.Nil until someone joins.
	Player1 uuid.UUID
	Player2 uuid.UUID

	// Secrets are empty until set by the respective player.
	Secret1 string
	Secret2 string

	Phase Phase

	// TimeRemaining is meaningful only in blitz mode.
	TimeRemaining int

	Chat            []ChatEntry
	RematchRequests map[uuid.UUID]bool
}

// secretFor returns the secret belonging to role.
func (r *DuelRoom) secretFor(role string) string {
	if role == RolePlayer1 {
		return r.Secret1
	}
	return r.Secret2
}

// connFor returns the connection handle bound to role.
func (r *DuelRoom) connFor(role string) uuid.UUID {
	if role == RolePlayer1 {
		return r.Player1
	}
	return r.Player2
}

// roleFor returns the role bound to connID, or "" if the connection is not a
// member of the room.
func (r *DuelRoom) roleFor(connID uuid.UUID) string {
	switch connID {
	case r.Player1:
		return RolePlayer1
	case r.Player2:
		return RolePlayer2
	}
	return ""
}

// Attempt is one recorded battle-royale guess, newest first in a player's
// history.
type Attempt struct {
	Guess string `json:"guess"`
	Bulls int    `json:"bulls"`
	Cows  int    `json:"cows"`
	Score int    `json:"score"`
	Moves int    `json:"moves"`
	TS    int64  `json:"ts"`
}

// maxHistory caps each battle player's attempt history; the oldest entry is
// evicted past the cap.
const maxHistory = 50

// BattlePlayer is one participant in a battle-royale room.
type BattlePlayer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Moves     int       `json:"moves"`
	BestScore int       `json:"best_score"`
	History   []Attempt `json:"history"`
}

// recordAttempt applies one scored guess to the player's counters and history.
func (p *BattlePlayer) recordAttempt(a Attempt) {
	p.Moves = a.Moves
	if a.Score > p.BestScore {
		p.BestScore = a.Score
	}
	p.History = append([]Attempt{a}, p.History...)
	if len(p.History) > maxHistory {
		p.History = p.History[:maxHistory]
	}
}

// BattleRoom holds the state of a single battle-royale match.
type BattleRoom struct {
	Code       string
	Mode       string
	Host       uuid.UUID
	Secret     string
	Started    bool
	MaxPlayers int

	// ESport marks a spectator-host room: the host watches, never guesses,
	// and may inspect any player's history.
	ESport bool

	TimeRemaining int

	Players []*BattlePlayer
}

// playerByID returns the participant bound to connID, or nil.
func (r *BattleRoom) playerByID(connID uuid.UUID) *BattlePlayer {
	for _, p := range r.Players {
		if p.ID == connID {
			return p
		}
	}
	return nil
}

// RoomKind distinguishes duel and battle rooms in the connection registry.
type RoomKind string

const (
	KindDuel   RoomKind = "duel"
	KindBattle RoomKind = "battle"
)

// RoomRef maps a connection handle to the room it currently occupies, so
// disconnects route without scanning every room.
type RoomRef struct {
	Code string
	Kind RoomKind
}
