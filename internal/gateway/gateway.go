// Package gateway terminates websocket connections and bridges them to
// match rooms.
package gateway

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MarcoSchenker/Lab-1-sub000/internal/codec"
	"github.com/MarcoSchenker/Lab-1-sub000/internal/lobby"
	"github.com/MarcoSchenker/Lab-1-sub000/internal/metrics"
	"github.com/MarcoSchenker/Lab-1-sub000/internal/room"
	"github.com/MarcoSchenker/Lab-1-sub000/truco"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: Restrict in production
	},
}

type connKey struct {
	match  string
	player string
}

// Connection represents a WebSocket client connection
type Connection struct {
	MatchCode string
	PlayerID  string
	Conn      *websocket.Conn
	Send      chan []byte
	Gateway   *Gateway
	Room      *room.Room
}

// Gateway manages WebSocket connections
type Gateway struct {
	mu    sync.RWMutex
	conns map[connKey]*Connection
	lobby *lobby.Lobby
}

// New creates a new Gateway instance. The lobby is attached afterwards
// because lobby construction needs the gateway as its sender.
func New() *Gateway {
	return &Gateway{
		conns: make(map[connKey]*Connection),
	}
}

func (g *Gateway) AttachLobby(l *lobby.Lobby) {
	g.lobby = l
}

// HandleWebSocket upgrades /ws?match=<code>&player=<id> into a live
// match connection.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	matchCode := strings.TrimSpace(r.URL.Query().Get("match"))
	playerID := strings.TrimSpace(r.URL.Query().Get("player"))
	if matchCode == "" || playerID == "" {
		http.Error(w, "match and player query params are required", http.StatusBadRequest)
		return
	}

	rm := g.lobby.GetRoom(matchCode)
	if rm == nil {
		http.Error(w, "no such match", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		return
	}

	c := &Connection{
		MatchCode: matchCode,
		PlayerID:  playerID,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		Gateway:   g,
		Room:      rm,
	}

	key := connKey{match: matchCode, player: playerID}
	g.mu.Lock()
	if prev := g.conns[key]; prev != nil {
		// One connection per player per match; the newer one wins.
		prev.Conn.Close()
	}
	g.conns[key] = c
	total := len(g.conns)
	g.mu.Unlock()
	metrics.ConnectedClients.Inc()

	log.Printf("[Gateway] %s connected to match %s, total: %d", playerID, matchCode, total)

	go c.writePump()
	go c.readPump()

	if err := rm.SubmitEvent(room.Event{Type: room.EventJoin, PlayerID: playerID}); err != nil {
		log.Printf("[Gateway] join rejected for %s on %s: %v", playerID, matchCode, err)
		c.sendError(err)
		conn.Close()
	}
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(65536)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] Read error: %v", err)
			}
			break
		}

		if messageType == websocket.TextMessage {
			c.handleMessage(message)
		}
	}
}

func (c *Connection) handleMessage(data []byte) {
	var env codec.ClientEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("[Gateway] Failed to decode message from %s: %v", c.PlayerID, err)
		c.sendErrorMessage("invalid message format")
		return
	}

	switch env.Type {
	case codec.ClientAction:
		c.handleAction(env.Action)
	case codec.ClientSnapshot:
		// Resync request: replays the join path, which answers with a
		// fresh redacted snapshot.
		if err := c.Room.SubmitEvent(room.Event{Type: room.EventConnResume, PlayerID: c.PlayerID}); err != nil {
			c.sendError(err)
		}
	case codec.ClientLeave:
		// An explicit leave concedes a live match on the way out.
		if err := c.Room.SubmitEvent(room.Event{Type: room.EventLeave, PlayerID: c.PlayerID}); err != nil {
			c.sendError(err)
		}
	default:
		log.Printf("[Gateway] Unknown message type %q from %s", env.Type, c.PlayerID)
		c.sendErrorMessage("unknown message type")
	}
}

func (c *Connection) handleAction(payload *codec.ActionPayload) {
	if payload == nil {
		c.sendErrorMessage("action payload missing")
		return
	}
	act, err := codec.DecodeAction(payload)
	if err != nil {
		c.sendErrorMessage(err.Error())
		return
	}

	err = c.Room.SubmitEvent(room.Event{
		Type:     room.EventAction,
		PlayerID: c.PlayerID,
		Action:   act,
	})
	if err != nil && truco.ReasonOf(err) != "" {
		// Rule violations were already answered by the room with a
		// reasoned error envelope. Anything else is surfaced here.
		return
	}
	if err != nil {
		c.sendError(err)
	}
}

func (c *Connection) sendError(cause error) {
	env := codec.ErrorEnvelope(c.MatchCode, 0, cause)
	data, err := codec.Marshal(env)
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

func (c *Connection) sendErrorMessage(msg string) {
	env := codec.ServerEnvelope{
		MatchCode: c.MatchCode,
		TsMs:      time.Now().UnixMilli(),
		Event:     "error",
		Error:     &codec.ErrorPayload{Reason: "bad_request", Message: msg},
	}
	data, err := codec.Marshal(env)
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	key := connKey{match: c.MatchCode, player: c.PlayerID}

	g.mu.Lock()
	current, ok := g.conns[key]
	if ok && current == c {
		delete(g.conns, key)
	}
	total := len(g.conns)
	g.mu.Unlock()
	if !ok || current != c {
		return
	}
	metrics.ConnectedClients.Dec()

	log.Printf("[Gateway] %s disconnected from match %s, total: %d", c.PlayerID, c.MatchCode, total)

	if err := c.Room.SubmitEvent(room.Event{Type: room.EventConnLost, PlayerID: c.PlayerID}); err != nil {
		log.Printf("[Gateway] conn lost event failed for %s: %v", c.PlayerID, err)
	}
}

// Send delivers an envelope to one player's connection on one match.
// Implements the lobby's Sender.
func (g *Gateway) Send(matchCode, playerID string, data []byte) {
	g.mu.RLock()
	c := g.conns[connKey{match: matchCode, player: playerID}]
	g.mu.RUnlock()

	if c != nil {
		select {
		case c.Send <- data:
		default:
			// Drop if buffer full
		}
	}
}
