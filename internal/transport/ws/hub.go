package ws

import (
	"encoding/json"
	"log"
	"sync"

	"rscasurvey/internal/flow"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Station to presentation
const (
	MsgState MessageType = "state"
	MsgError MessageType = "error"
)

// Presentation to station
const (
	MsgStart          MessageType = "start"
	MsgSelectStudy    MessageType = "selectStudy"
	MsgSelectVignette MessageType = "selectVignette"
	MsgAnswer         MessageType = "answer"
	MsgNext           MessageType = "next"
	MsgContinue       MessageType = "continue"
	MsgTryAgain       MessageType = "tryAgain"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub fans controller snapshots out to every connected presentation client
type Hub struct {
	conns map[*Connection]bool
	last  []byte

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan []byte
}

// Connection represents a WebSocket connection
type Connection struct {
	Send chan []byte
	Hub  *Hub
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan []byte, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.conns[conn] = true
			// a new screen starts from the latest state
			if h.last != nil {
				select {
				case conn.Send <- h.last:
				default:
				}
			}
			log.Printf("[WS] Presentation connected (%d open)", len(h.conns))
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.conns[conn]; ok {
				delete(h.conns, conn)
				close(conn.Send)
				log.Printf("[WS] Presentation disconnected (%d open)", len(h.conns))
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.mu.Lock()
			h.last = data
			for conn := range h.conns {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Clients returns the number of open connections
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Publish sends a state message to every client (implements flow.Observer).
// It never blocks the controller; a snapshot is dropped when the queue is full.
func (h *Hub) Publish(s flow.Snapshot) {
	data, err := encode(MsgState, s)
	if err != nil {
		log.Printf("[WS] Failed to encode snapshot: %v", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		log.Printf("[WS] Broadcast queue full, dropped %s snapshot", s.State)
	}
}

func encode(t MessageType, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: t, Payload: raw})
}
