package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Question uploads arrive
	// inline over the socket, so this is far above a chat-sized limit.
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		return true
	},
}

// Event is the envelope for every room broadcast.
type Event struct {
	Event  string `json:"event"`
	GameID int    `json:"gameid"`
	Data   any    `json:"data,omitempty"`
}

// MessageHandler processes one inbound client message and returns the
// direct reply to send back, or nil when no reply is owed.
type MessageHandler interface {
	HandleMessage(c *Client, data []byte) []byte
}

// Client represents one WebSocket connection.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	handler MessageHandler

	// games the client is subscribed to. Touched only by the hub's
	// event loop.
	games map[int]bool
}

// roomOp is a serialized room mutation or broadcast. Subscribes and
// broadcasts share one channel so their relative order is preserved: a
// client subscribed after a join broadcast never receives that broadcast.
type roomOp struct {
	gameID int
	join   *Client // when set, subscribe this client to the room
	data   []byte  // otherwise broadcast this payload to the room
}

// Hub maintains the set of active clients grouped into per-game rooms
// and fans broadcasts out to them. It implements service.Broadcaster.
type Hub struct {
	// Subscribed clients by game ID
	rooms map[int]map[*Client]bool

	// Room subscriptions and broadcasts, in order
	ops chan roomOp

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[int]map[*Client]bool),
		ops:        make(chan roomOp),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop. All room state is owned by this
// goroutine; no locks are needed.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			client.games = make(map[int]bool)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case op := <-h.ops:
			if op.join != nil {
				h.subscribeClient(op.join, op.gameID)
			} else {
				h.broadcastToRoom(op.gameID, op.data)
			}
		}
	}
}

// ServeWS upgrades the request and runs the client's pumps. Inbound
// messages are delivered to the handler.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, handler MessageHandler) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 256),
		handler: handler,
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastEvent sends an event to every subscriber of the game's room.
// Events for the same game are delivered in the order they were
// broadcast.
func (h *Hub) BroadcastEvent(gameID int, event string, payload any) {
	data, err := json.Marshal(Event{Event: event, GameID: gameID, Data: payload})
	if err != nil {
		log.Printf("Failed to marshal broadcast event: %v", err)
		return
	}
	h.ops <- roomOp{gameID: gameID, data: data}
}

// Subscribe adds the client to the game's room. Broadcasts sent before
// this call are not delivered to the client.
func (h *Hub) Subscribe(c *Client, gameID int) {
	h.ops <- roomOp{gameID: gameID, join: c}
}

func (h *Hub) subscribeClient(client *Client, gameID int) {
	if client.games == nil {
		// Dropped before the subscription was processed
		return
	}
	if h.rooms[gameID] == nil {
		h.rooms[gameID] = make(map[*Client]bool)
	}
	h.rooms[gameID][client] = true
	client.games[gameID] = true

	log.Printf("Client subscribed to game %d (total clients: %d)",
		gameID, len(h.rooms[gameID]))
}

// unregisterClient handles a client whose readPump has exited. Closing
// the send channel here is safe because nothing sends on it anymore.
func (h *Hub) unregisterClient(client *Client) {
	if client.games == nil {
		// Already dropped, e.g. for a full send queue
		return
	}
	h.removeFromRooms(client)
	close(client.send)
}

// dropClient evicts a client that stopped draining its send queue. The
// send channel stays open: the client's readPump may still be queueing
// a direct reply. Closing the connection unwinds both pumps instead,
// and the readPump's final unregister finds the tombstone.
func (h *Hub) dropClient(client *Client) {
	h.removeFromRooms(client)
	client.conn.Close()
}

func (h *Hub) removeFromRooms(client *Client) {
	for gameID := range client.games {
		if clients, ok := h.rooms[gameID]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.rooms, gameID)
			}
		}
	}
	client.games = nil
}

func (h *Hub) broadcastToRoom(gameID int, data []byte) {
	for client := range h.rooms[gameID] {
		select {
		case client.send <- data:
		default:
			// Client's send channel is full, drop it
			h.dropClient(client)
		}
	}
}

// readPump pumps messages from the WebSocket connection to the handler.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		if reply := c.handler.HandleMessage(c, data); reply != nil {
			select {
			case c.send <- reply:
			default:
				return
			}
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
// One queued payload becomes one WebSocket text message so clients can
// decode each frame as a standalone JSON document.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
