package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"rscasurvey/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the station UI runs on the same machine
	},
}

// Actions is what a presentation client can ask the station to do.
// *flow.Controller implements it.
type Actions interface {
	Start()
	SelectStudy(s model.StudyType)
	SelectVignette(v model.VignetteType)
	Answer(value interface{})
	Next()
	Continue()
	TryAgain()
}

// Handler handles WebSocket connections
type Handler struct {
	hub     *Hub
	actions Actions
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, actions Actions) *Handler {
	return &Handler{
		hub:     hub,
		actions: actions,
	}
}

// ServeWS handles GET /ws
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	conn := &Connection{
		Send: make(chan []byte, 256),
		Hub:  h.hub,
	}

	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

// dispatch maps an incoming message onto a controller action
func (h *Handler) dispatch(msg *Message) error {
	switch msg.Type {
	case MsgStart:
		h.actions.Start()
	case MsgSelectStudy:
		var p struct {
			Study model.StudyType `json:"study"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid selectStudy payload: %w", err)
		}
		if !p.Study.Valid() {
			return fmt.Errorf("unknown study %q", p.Study)
		}
		h.actions.SelectStudy(p.Study)
	case MsgSelectVignette:
		var p struct {
			Vignette model.VignetteType `json:"vignette"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid selectVignette payload: %w", err)
		}
		if !p.Vignette.Valid() {
			return fmt.Errorf("unknown vignette %q", p.Vignette)
		}
		h.actions.SelectVignette(p.Vignette)
	case MsgAnswer:
		var p struct {
			Value interface{} `json:"value"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid answer payload: %w", err)
		}
		h.actions.Answer(p.Value)
	case MsgNext:
		h.actions.Next()
	case MsgContinue:
		h.actions.Continue()
	case MsgTryAgain:
		h.actions.TryAgain()
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Read error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.reply(conn, fmt.Errorf("invalid message: %w", err))
			continue
		}
		if err := h.dispatch(&msg); err != nil {
			h.reply(conn, err)
		}
	}
}

// reply sends an error back to the client that caused it
func (h *Handler) reply(conn *Connection, err error) {
	log.Printf("[WS] Rejected message: %v", err)
	data, encErr := encode(MsgError, map[string]string{"error": err.Error()})
	if encErr != nil {
		return
	}
	select {
	case conn.Send <- data:
	default:
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
