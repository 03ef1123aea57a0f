// internal/game/events.go
package game

// EventType names an outbound server-to-client event.
type EventType string

// Duel events.
const (
	EventRoomCreated      EventType = "room_created"
	EventRoomJoined       EventType = "room_joined"
	EventOpponentJoined   EventType = "opponent_joined"
	EventGamePhase        EventType = "game_phase"
	EventOpponentReady    EventType = "opponent_ready"
	EventGuessResult      EventType = "guess_result"
	EventOpponentGuessed  EventType = "opponent_guessed"
	EventGameOver         EventType = "game_over"
	EventChatMessage      EventType = "chat_message"
	EventOpponentDiscTemp EventType = "opponent_disconnected_temp"
	EventOpponentRejoined EventType = "opponent_reconnected"
	EventOpponentDisc     EventType = "opponent_disconnected"
	EventOpponentLeft     EventType = "opponent_left"
	EventRematchRequested EventType = "rematch_requested"
	EventRematchAccepted  EventType = "rematch_accepted"
	EventTimerUpdate      EventType = "timer_update"
	EventJoinError        EventType = "join_error"
	EventRejoinSuccess    EventType = "rejoin_success"
	EventRejoinFailed     EventType = "rejoin_failed"
)

// Battle-royale events.
const (
	EventBattleCreated       EventType = "battle_created"
	EventBattleJoined        EventType = "battle_joined"
	EventBattleError         EventType = "battle_error"
	EventBattleLeaderboard   EventType = "battle_leaderboard"
	EventBattleStarted       EventType = "battle_started"
	EventBattleTimer         EventType = "battle_timer"
	EventBattleGuessResult   EventType = "battle_guess_result"
	EventBattleGameOver      EventType = "battle_game_over"
	EventBattleHostChanged   EventType = "battle_host_changed"
	EventBattlePlayerHistory EventType = "battle_player_history"
)

// Game-over reasons carried in the "reason" payload field so clients can tell
// a cracked code from a forfeit or an expired clock.
const (
	ReasonCracked = "cracked"
	ReasonTimeout = "timeout"
)

// Event is the outbound message envelope: a named event carrying a structured
// payload.
type Event struct {
	Type    EventType              `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}
