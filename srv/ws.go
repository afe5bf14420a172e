package srv

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// inbound is the envelope for every event a client may send. Unknown
// types, and fields irrelevant to the given type, are ignored rather
// than rejected — an unrecognized event type gets no error reply.
type inbound struct {
	Type     string         `json:"type"`
	Name     string         `json:"name,omitempty"`
	Room     string         `json:"room,omitempty"`
	Code     string         `json:"code,omitempty"` // accepted alias for room
	Settings *SettingsPatch `json:"settings,omitempty"`
	Index    *int           `json:"index,omitempty"`
	Word     string         `json:"word,omitempty"`
	Indices  []int          `json:"indices,omitempty"`
}

// roomCode returns the join code the client asked for: the room field,
// falling back to the code alias. Codes are opaque strings matched
// exactly; only surrounding whitespace is stripped, never case-folded.
func (m inbound) roomCode() string {
	if r := strings.TrimSpace(m.Room); r != "" {
		return r
	}
	return strings.TrimSpace(m.Code)
}

// wsConn holds per-connection state. The dispatcher methods below
// translate wire events into Room method calls and never touch Room's
// internal state directly.
type wsConn struct {
	server *Server
	conn   *websocket.Conn

	room    *Room
	player  *Player
	limiter *submitLimiter
}

func (c *wsConn) sendErr(message string) {
	b, _ := json.Marshal(map[string]any{"type": "error", "message": message})
	c.conn.WriteMessage(websocket.TextMessage, b)
}

// leaveCurrentRoom detaches from the current room, if any, and tells the
// room's actor the player disconnected.
func (c *wsConn) leaveCurrentRoom() {
	if c.room == nil || c.player == nil {
		return
	}
	c.room.Leave(c.player.ID)
	c.room = nil
	c.player = nil
}

func (c *wsConn) handleLobbyJoin(msg inbound) {
	if c.room != nil {
		// Already joined on this connection; a second lobby:join is
		// ignored rather than silently swapping rooms out from under a
		// live session.
		return
	}
	name := strings.TrimSpace(msg.Name)
	if name == "" {
		c.sendErr("name is required")
		return
	}
	if runes := []rune(name); len(runes) > 16 {
		name = string(runes[:16])
	}

	room, err := c.server.Rooms.JoinOrCreate(msg.roomCode())
	if err != nil {
		c.sendErr("could not join or create room")
		return
	}

	sendCh := make(chan []byte, 256)
	player := room.Join(name, sendCh)
	if player == nil {
		c.sendErr("room is no longer available")
		return
	}
	c.room = room
	c.player = player
	c.limiter = newSubmitLimiter()

	go writePump(c.conn, sendCh)
}

func (c *wsConn) handleGameStart(msg inbound) {
	if c.room == nil || c.player == nil {
		return
	}
	c.room.Start(c.player.ID)
}

func (c *wsConn) handleSettingsUpdate(msg inbound) {
	if c.room == nil || c.player == nil || msg.Settings == nil {
		return
	}
	c.room.UpdateSettings(c.player.ID, *msg.Settings)
}

func (c *wsConn) handleTileYoink(msg inbound) {
	if c.room == nil || c.player == nil || msg.Index == nil {
		return
	}
	c.room.Yoink(c.player.ID, *msg.Index)
}

func (c *wsConn) handleWordSubmit(msg inbound) {
	if c.room == nil || c.player == nil {
		return
	}
	if !c.limiter.Allow() {
		return
	}
	c.room.Submit(c.player.ID, msg.Word, msg.Indices)
}

// readLoop reads events and dispatches them until the connection closes.
func (c *wsConn) readLoop() {
	defer func() {
		c.leaveCurrentRoom()
		c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read", "error", err)
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			// Malformed payloads are a protocol error, not a transport
			// one: drop the event, keep the connection.
			slog.Debug("malformed client payload", "error", err)
			continue
		}

		switch msg.Type {
		case "lobby:join":
			c.handleLobbyJoin(msg)
		case "game:start":
			c.handleGameStart(msg)
		case "settings:update":
			c.handleSettingsUpdate(msg)
		case "tile:yoink":
			c.handleTileYoink(msg)
		case "word:submit":
			c.handleWordSubmit(msg)
		default:
			slog.Debug("unknown client event", "type", msg.Type)
		}
	}
}

// HandleWS upgrades the connection and runs its read loop.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade", "error", err)
		return
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	c := &wsConn{server: s, conn: conn}
	c.readLoop()
}

// writePump drains send to the WebSocket connection, interleaving
// periodic pings so dead connections are detected even when idle.
func writePump(conn *websocket.Conn, send chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case msg, ok := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
