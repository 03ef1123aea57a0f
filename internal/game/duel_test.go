package game

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupDuel creates a room with p1 as host, joins p2 and drains the setup
// handshake events from both sessions.
func setupDuel(t *testing.T, c *Coordinator, p1, p2 *Session, mode string) string {
	t.Helper()
	code := createdRoomCode(t, c, p1, mode)
	c.JoinDuel(p2, code)
	drainEvents(p1)
	drainEvents(p2)
	return code
}

// setupPlayingDuel additionally sets both secrets so the room is in the
// playing phase.
func setupPlayingDuel(t *testing.T, c *Coordinator, p1, p2 *Session, mode, secret1, secret2 string) string {
	t.Helper()
	code := setupDuel(t, c, p1, p2, mode)
	c.SetSecret(p1, code, secret1, RolePlayer1)
	c.SetSecret(p2, code, secret2, RolePlayer2)
	drainEvents(p1)
	drainEvents(p2)
	require.Equal(t, PhasePlaying, duelRoom(c, code).Phase)
	return code
}

func TestCreateDuel(t *testing.T) {
	c := newTestCoordinator()
	s := newTestSession(c)

	c.CreateDuel(s, "")
	ev := requireEvent(t, drainEvents(s), EventRoomCreated)
	assert.Equal(t, RolePlayer1, ev.Payload["role"])
	assert.Equal(t, ModeStandard, ev.Payload["mode"])

	code := ev.Payload["roomCode"].(string)
	require.Len(t, code, RoomCodeLength)
	room := duelRoom(c, code)
	require.NotNil(t, room)
	assert.Equal(t, PhaseWaiting, room.Phase)
	assert.Equal(t, s.ID, room.Player1)
}

func TestCreateDuelBlitzClock(t *testing.T) {
	c := newTestCoordinator()
	c.BlitzSeconds = 120
	s := newTestSession(c)

	code := createdRoomCode(t, c, s, ModeBlitz)
	assert.Equal(t, 120, duelRoom(c, code).TimeRemaining)
}

func TestJoinDuel(t *testing.T) {
	c := newTestCoordinator()
	p1 := newTestSession(c)
	p2 := newTestSession(c)
	code := createdRoomCode(t, c, p1, ModeStandard)

	c.JoinDuel(p2, code)

	p2Events := drainEvents(p2)
	joined := requireEvent(t, p2Events, EventRoomJoined)
	assert.Equal(t, RolePlayer2, joined.Payload["role"])
	assert.Equal(t, ModeStandard, joined.Payload["mode"])
	phase := requireEvent(t, p2Events, EventGamePhase)
	assert.Equal(t, PhaseSetup, phase.Payload["phase"])

	p1Events := drainEvents(p1)
	requireEvent(t, p1Events, EventOpponentJoined)
	requireEvent(t, p1Events, EventGamePhase)

	assert.Equal(t, PhaseSetup, duelRoom(c, code).Phase)
}

func TestJoinDuelErrors(t *testing.T) {
	c := newTestCoordinator()
	p1 := newTestSession(c)
	p2 := newTestSession(c)
	late := newTestSession(c)

	c.JoinDuel(p2, "ZZZZ")
	ev := requireEvent(t, drainEvents(p2), EventJoinError)
	assert.Equal(t, ErrRoomNotFound.Error(), ev.Payload["message"])

	code := setupDuel(t, c, p1, p2, ModeStandard)
	c.JoinDuel(late, code)
	ev = requireEvent(t, drainEvents(late), EventJoinError)
	assert.Equal(t, ErrRoomFull.Error(), ev.Payload["message"])
}

func TestSetSecret(t *testing.T) {
	c := newTestCoordinator()
	p1 := newTestSession(c)
	p2 := newTestSession(c)
	code := setupDuel(t, c, p1, p2, ModeStandard)

	c.SetSecret(p1, code, "1234", RolePlayer1)
	requireEvent(t, drainEvents(p2), EventOpponentReady)
	assert.Equal(t, PhaseSetup, duelRoom(c, code).Phase)

	c.SetSecret(p2, code, "5678", RolePlayer2)
	requireEvent(t, drainEvents(p1), EventOpponentReady)
	requireEvent(t, drainEvents(p2), EventGamePhase)
	assert.Equal(t, PhasePlaying, duelRoom(c, code).Phase)
}

func TestSetSecretRejectsMalformedCode(t *testing.T) {
	c := newTestCoordinator()
	p1 := newTestSession(c)
	p2 := newTestSession(c)
	code := setupDuel(t, c, p1, p2, ModeStandard)

	c.SetSecret(p1, code, "12a4", RolePlayer1)
	c.SetSecret(p1, code, "123", RolePlayer1)

	assert.Empty(t, drainEvents(p2))
	assert.Empty(t, duelRoom(c, code).Secret1)
}

func TestSubmitGuess(t *testing.T) {
	c := newTestCoordinator()
	p1 := newTestSession(c)
	p2 := newTestSession(c)
	code := setupPlayingDuel(t, c, p1, p2, ModeStandard, "1234", "5678")

	// P1 guesses against P2's secret 5678.
	c.SubmitGuess(p1, code, "5687", RolePlayer1)

	res := requireEvent(t, drainEvents(p1), EventGuessResult)
	assert.Equal(t, "5687", res.Payload["guess"])
	assert.Equal(t, 4, res.Payload["found"])
	assert.Equal(t, 2, res.Payload["locked"])

	mirror := requireEvent(t, drainEvents(p2), EventOpponentGuessed)
	assert.Equal(t, res.Payload, mirror.Payload)
}

func TestSubmitGuessWin(t *testing.T) {
	c := newTestCoordinator()
	p1 := newTestSession(c)
	p2 := newTestSession(c)
	code := setupPlayingDuel(t, c, p1, p2, ModeStandard, "1234", "5678")

	c.SubmitGuess(p2, code, "1234", RolePlayer2)

	over := requireEvent(t, drainEvents(p1), EventGameOver)
	assert.Equal(t, RolePlayer2, over.Payload["winner"])
	assert.Equal(t, "1234", over.Payload["p1Secret"])
	assert.Equal(t, "5678", over.Payload["p2Secret"])
	assert.Equal(t, ReasonCracked, over.Payload["reason"])
	requireEvent(t, drainEvents(p2), EventGameOver)

	// Room survives for rematch voting.
	room := duelRoom(c, code)
	require.NotNil(t, room)
	assert.Equal(t, PhaseGameOver, room.Phase)
}

func TestSubmitGuessIgnoredOutsidePlaying(t *testing.T) {
	c := newTestCoordinator()
	p1 := newTestSession(c)
	p2 := newTestSession(c)
	code := setupDuel(t, c, p1, p2, ModeStandard)

	c.SubmitGuess(p1, code, "1234", RolePlayer1)
	assert.Empty(t, drainEvents(p1))
	assert.Empty(t, drainEvents(p2))
}

func TestSubmitGuessIgnoresMalformedCode(t *testing.T) {
	c := newTestCoordinator()
	p1 := newTestSession(c)
	p2 := newTestSession(c)
	code := setupPlayingDuel(t, c, p1, p2, ModeStandard, "1234", "5678")

	c.SubmitGuess(p1, code, "56789", RolePlayer1)
	c.SubmitGuess(p1, code, "abcd", RolePlayer1)
	assert.Empty(t, drainEvents(p1))
	assert.Empty(t, drainEvents(p2))
}

func TestChat(t *testing.T) {
	c := newTestCoordinator()
	p1 := newTestSession(c)
	p2 := newTestSession(c)
	code := setupDuel(t, c, p1, p2, ModeStandard)

	c.Chat(p1, code, "Player 1", "good luck")

	for _, s := range []*Session{p1, p2} {
		ev := requireEvent(t, drainEvents(s), EventChatMessage)
		assert.Equal(t, "Player 1", ev.Payload["sender"])
		assert.Equal(t, "good luck", ev.Payload["message"])
	}
	require.Len(t, duelRoom(c, code).Chat, 1)
}

func TestRequestRematch(t *testing.T) {
	c := newTestCoordinator()
	p1 := newTestSession(c)
	p2 := newTestSession(c)
	code := setupPlayingDuel(t, c, p1, p2, ModeStandard, "1234", "5678")
	c.SubmitGuess(p1, code, "5678", RolePlayer1)
	drainEvents(p1)
	drainEvents(p2)

	c.RequestRematch(p1, code)
	requireEvent(t, drainEvents(p2), EventRematchRequested)
	assert.Empty(t, drainEvents(p1))

	c.RequestRematch(p2, code)
	for _, s := range []*Session{p1, p2} {
		evs := drainEvents(s)
		requireEvent(t, evs, EventRematchAccepted)
		phase := requireEvent(t, evs, EventGamePhase)
		assert.Equal(t, PhaseSetup, phase.Payload["phase"])
	}

	room := duelRoom(c, code)
	assert.Equal(t, PhaseSetup, room.Phase)
	assert.Empty(t, room.Secret1)
	assert.Empty(t, room.Secret2)
	assert.Empty(t, room.RematchRequests)
}

func TestRequestRematchBlitzResetsClock(t *testing.T) {
	c := newTestCoordinator()
	c.BlitzSeconds = 1000
	c.TickInterval = 10 * time.Millisecond
	p1 := newTestSession(c)
	p2 := newTestSession(c)
	code := setupPlayingDuel(t, c, p1, p2, ModeBlitz, "1234", "5678")

	// Let the countdown tick the clock below its starting value.
	waitForEvent(t, p1, EventTimerUpdate, time.Second)
	c.SubmitGuess(p1, code, "5678", RolePlayer1)
	waitForEvent(t, p2, EventGameOver, time.Second)
	drainEvents(p1)
	drainEvents(p2)

	c.RequestRematch(p1, code)
	c.RequestRematch(p2, code)

	for _, s := range []*Session{p1, p2} {
		requireEvent(t, drainEvents(s), EventRematchAccepted)
	}

	room := duelRoom(c, code)
	assert.Equal(t, PhaseSetup, room.Phase)
	assert.Equal(t, c.BlitzSeconds, room.TimeRemaining)

	c.mu.Lock()
	_, running := c.duelTimers[code]
	c.mu.Unlock()
	assert.False(t, running, "no countdown may survive a rematch reset")
}

func TestRequestRematchIgnoredBeforeGameOver(t *testing.T) {
	c := newTestCoordinator()
	p1 := newTestSession(c)
	p2 := newTestSession(c)
	code := setupPlayingDuel(t, c, p1, p2, ModeStandard, "1234", "5678")

	c.RequestRematch(p1, code)
	assert.Empty(t, drainEvents(p2))
	assert.Empty(t, duelRoom(c, code).RematchRequests)
}

func TestLeaveDuelDestroysRoom(t *testing.T) {
	c := newTestCoordinator()
	p1 := newTestSession(c)
	p2 := newTestSession(c)
	code := setupDuel(t, c, p1, p2, ModeStandard)

	c.LeaveDuel(p1, code)
	requireEvent(t, drainEvents(p2), EventOpponentLeft)
	assert.Nil(t, duelRoom(c, code))
}

func TestDisconnectArmsGraceAndRejoinClears(t *testing.T) {
	c := newTestCoordinator()
	c.GracePeriod = time.Hour // must not fire during the test
	p1 := newTestSession(c)
	p2 := newTestSession(c)
	code := setupPlayingDuel(t, c, p1, p2, ModeStandard, "1234", "5678")

	c.HandleDisconnect(p1.ID)
	ev := requireEvent(t, drainEvents(p2), EventOpponentDiscTemp)
	assert.Equal(t, RolePlayer1, ev.Payload["role"])
	require.NotNil(t, duelRoom(c, code), "room must survive the grace window")

	reconnected := newTestSession(c)
	c.RejoinDuel(reconnected, code, RolePlayer1)

	success := requireEvent(t, drainEvents(reconnected), EventRejoinSuccess)
	assert.Equal(t, PhasePlaying, success.Payload["phase"])
	assert.Equal(t, true, success.Payload["opponentReady"])
	requireEvent(t, drainEvents(p2), EventOpponentRejoined)

	room := duelRoom(c, code)
	assert.Equal(t, reconnected.ID, room.Player1)

	// The rebound seat keeps playing.
	c.SubmitGuess(reconnected, code, "5678", RolePlayer1)
	over := requireEvent(t, drainEvents(reconnected), EventGameOver)
	assert.Equal(t, RolePlayer1, over.Payload["winner"])
}

func TestGraceExpiryDestroysRoom(t *testing.T) {
	c := newTestCoordinator()
	c.GracePeriod = 20 * time.Millisecond
	p1 := newTestSession(c)
	p2 := newTestSession(c)
	code := setupPlayingDuel(t, c, p1, p2, ModeStandard, "1234", "5678")

	c.HandleDisconnect(p1.ID)
	drainEvents(p2)

	waitForEvent(t, p2, EventOpponentDisc, time.Second)
	assert.Nil(t, duelRoom(c, code))
}

func TestRejoinExpiredRoom(t *testing.T) {
	c := newTestCoordinator()
	s := newTestSession(c)

	c.RejoinDuel(s, "GONE", RolePlayer1)
	ev := requireEvent(t, drainEvents(s), EventRejoinFailed)
	assert.Equal(t, ErrRoomExpired.Error(), ev.Payload["error"])
}

func TestBlitzDuelTimeout(t *testing.T) {
	c := newTestCoordinator()
	c.BlitzSeconds = 2
	c.TickInterval = 10 * time.Millisecond
	p1 := newTestSession(c)
	p2 := newTestSession(c)
	code := setupPlayingDuel(t, c, p1, p2, ModeBlitz, "1234", "5678")

	over := waitForEvent(t, p2, EventGameOver, time.Second)
	assert.Nil(t, over.Payload["winner"])
	assert.Equal(t, ReasonTimeout, over.Payload["reason"])

	room := duelRoom(c, code)
	require.NotNil(t, room, "timed-out duel room stays up for rematch")
	assert.Equal(t, PhaseGameOver, room.Phase)
}

func TestBlitzDuelTimerStopsOnWin(t *testing.T) {
	c := newTestCoordinator()
	c.BlitzSeconds = 1000
	c.TickInterval = 10 * time.Millisecond
	p1 := newTestSession(c)
	p2 := newTestSession(c)
	code := setupPlayingDuel(t, c, p1, p2, ModeBlitz, "1234", "5678")

	waitForEvent(t, p1, EventTimerUpdate, time.Second)
	c.SubmitGuess(p1, code, "5678", RolePlayer1)
	waitForEvent(t, p1, EventGameOver, time.Second)

	c.mu.Lock()
	_, running := c.duelTimers[code]
	c.mu.Unlock()
	assert.False(t, running)

	// Stopping again is a no-op.
	c.mu.Lock()
	c.stopDuelCountdown(code)
	c.mu.Unlock()
}

func TestHandleDisconnectUnknownConn(t *testing.T) {
	c := newTestCoordinator()
	c.HandleDisconnect(uuid.New())
}
