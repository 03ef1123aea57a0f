// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/amitsinghrawat777/CAB-server/internal/game"
	"github.com/amitsinghrawat777/CAB-server/internal/middleware"
)

// ClientMessage is the single inbound envelope: a type tag plus the optional
// fields each event uses. The rematch_request event carries its room code in
// "room" rather than "roomCode".
type ClientMessage struct {
	Type string `json:"type"`

	Mode     string `json:"mode,omitempty"`
	RoomCode string `json:"roomCode,omitempty"`
	Room     string `json:"room,omitempty"`
	Role     string `json:"role,omitempty"`
	Code     string `json:"code,omitempty"`
	Guess    string `json:"guess,omitempty"`
	Message  string `json:"message,omitempty"`
	Sender   string `json:"sender,omitempty"`

	Name       string `json:"name,omitempty"`
	MaxPlayers int    `json:"maxPlayers,omitempty"`
	ESport     bool   `json:"eSport,omitempty"`
	PlayerID   string `json:"playerId,omitempty"`
}

// WSHandler upgrades the connection, registers a session with the
// coordinator, and runs the read loop until the client goes away. Read-loop
// exit is what feeds the coordinator's disconnect transition.
func WSHandler(logger *logrus.Logger, coord *game.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"cab"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "cab" {
			c.Close(websocket.StatusPolicyViolation, "client must speak the cab subprotocol")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		sess := game.NewSession()
		sess.Cancel = cancel
		coord.Attach(sess)

		go writePump(ctx, c, sess, logger)
		readPump(ctx, c, sess, coord, logger)

		coord.HandleDisconnect(sess.ID)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
	}
}

// readPump decodes inbound envelopes and routes them to coordinator
// operations. Malformed messages get an error event back; the connection is
// never torn down for them.
func readPump(ctx context.Context, c *websocket.Conn, sess *game.Session, coord *game.Coordinator, logger *logrus.Logger) {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				logger.Infof("websocket closed normally for conn %s", sess.ID)
			} else if strings.Contains(err.Error(), "context canceled") {
				logger.Infof("websocket context canceled for conn %s", sess.ID)
			} else {
				logger.Warnf("read error for conn %s: %v (CloseStatus: %d)", sess.ID, err, closeStatus)
			}
			return
		}
		if typ != websocket.MessageText {
			logger.Warnf("received non-text message type %d from conn %s, ignoring", typ, sess.ID)
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("invalid json from conn %s: %v", sess.ID, err)
			sendWsError(ctx, c, "Invalid JSON format")
			continue
		}

		logger.WithFields(logrus.Fields{"conn": sess.ID, "event": msg.Type}).Debug("inbound event")

		switch msg.Type {
		case "create_room":
			coord.CreateDuel(sess, msg.Mode)
		case "join_room":
			coord.JoinDuel(sess, msg.RoomCode)
		case "rejoin_room":
			coord.RejoinDuel(sess, msg.RoomCode, msg.Role)
		case "set_secret":
			coord.SetSecret(sess, msg.RoomCode, msg.Code, msg.Role)
		case "send_guess":
			coord.SubmitGuess(sess, msg.RoomCode, msg.Guess, msg.Role)
		case "chat_message":
			coord.Chat(sess, msg.RoomCode, msg.Sender, msg.Message)
		case "leave_room":
			coord.LeaveDuel(sess, msg.RoomCode)
		case "rematch_request":
			coord.RequestRematch(sess, msg.Room)
		case "battle_create":
			coord.CreateBattle(sess, msg.Name, msg.Mode, msg.MaxPlayers, msg.ESport)
		case "battle_join":
			coord.JoinBattle(sess, msg.RoomCode, msg.Name)
		case "battle_start":
			coord.StartBattle(sess, msg.RoomCode)
		case "battle_guess":
			coord.BattleGuess(sess, msg.RoomCode, msg.Guess)
		case "battle_history_request":
			coord.BattleHistory(sess, msg.RoomCode, msg.PlayerID)
		case "ping":
			sendWsMessage(ctx, c, map[string]string{"type": "pong"})
		default:
			logger.Warnf("unknown event type %q from conn %s", msg.Type, sess.ID)
			sendWsError(ctx, c, "Unknown event type: "+msg.Type)
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// writePump drains the session's outbound channel onto the wire and keeps the
// connection alive with periodic pings.
func writePump(ctx context.Context, c *websocket.Conn, sess *game.Session, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sess.Out:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warnf("failed to marshal outbound event %q for conn %s: %v", ev.Type, sess.ID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("failed to write to websocket for conn %s: %v", sess.ID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("failed to ping conn %s: %v, assuming disconnect", sess.ID, err)
				return
			}
		}
	}
}

// sendWsMessage marshals a message and writes it directly, bypassing the
// session channel. Used for protocol-level replies only.
func sendWsMessage(ctx context.Context, c *websocket.Conn, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = c.Write(writeCtx, websocket.MessageText, data)
}

// sendWsError sends a structured error message to the client.
func sendWsError(ctx context.Context, c *websocket.Conn, errorMsg string) {
	sendWsMessage(ctx, c, map[string]interface{}{
		"type":    "error",
		"message": errorMsg,
	})
}
