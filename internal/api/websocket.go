package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grid-builder/backend/internal/builder"
	"github.com/grid-builder/backend/internal/events"
	"github.com/grid-builder/backend/internal/logging"
	"github.com/labstack/echo/v4"
)

// WebSocket message types for the builder event stream
const (
	// Client -> Server messages
	MsgTypePing          = "ping"
	MsgTypeDragPreview   = "drag:preview"
	MsgTypeResizePreview = "resize:preview"
	MsgTypeDragEnd       = "drag:end"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypeEvent     = "event"
	MsgTypeError     = "error"
	MsgTypePong      = "pong"
)

// sendBuffer bounds the queue of messages waiting for a slow client.
const sendBuffer = 256

// WSMessage is the envelope for every message in both directions. For
// events, ID holds the event name.
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// DragPreviewPayload is sent by the client while dragging.
type DragPreviewPayload struct {
	ItemID   string `json:"itemId"`
	CanvasID string `json:"canvasId"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

// ResizePreviewPayload is sent by the client while resizing.
type ResizePreviewPayload struct {
	ItemID string `json:"itemId"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// WSErrorResponse is the payload of an error message.
type WSErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// WebSocketHandler streams builder events to clients.
type WebSocketHandler struct {
	sessions SessionManager
	upgrader websocket.Upgrader
	log      logging.Logger
}

// NewWebSocketHandler creates a new event stream handler
func NewWebSocketHandler(sessions SessionManager, maxMessageKB int, logger logging.Logger) *WebSocketHandler {
	if logger == nil {
		logger = logging.Discard{}
	}
	if maxMessageKB <= 0 {
		maxMessageKB = 64
	}
	return &WebSocketHandler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  maxMessageKB * 1024,
			WriteBufferSize: maxMessageKB * 1024,
		},
		log: logger,
	}
}

// HandleEventStream upgrades to a WebSocket that carries every event of the
// session's builder and accepts gesture previews.
func (wsh *WebSocketHandler) HandleEventStream(c echo.Context) error {
	id := c.Param("id")
	b, ok := wsh.sessions.GetBuilder(id)
	if !ok {
		return NewNotFoundError("session", id)
	}

	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	// gorilla connections allow one writer; everything goes through out.
	out := make(chan WSMessage, sendBuffer)
	done := make(chan struct{})
	defer close(done)

	send := func(msg WSMessage) {
		select {
		case out <- msg:
		case <-done:
		default:
			wsh.log.Warnf("dropping %s message for slow client of session %s", msg.Type, id)
		}
	}

	handlerID := b.On(events.Wildcard, func(ev events.Event) {
		send(WSMessage{
			Type:      MsgTypeEvent,
			ID:        ev.Name,
			Payload:   mustJSON(ev.Payload),
			Timestamp: ev.Timestamp.UnixMilli(),
		})
	})
	defer b.Off(events.Wildcard, handlerID)

	go wsh.writeLoop(ws, out, done)

	wsh.log.Infof("client connected to session %s", id)
	send(WSMessage{Type: MsgTypeConnected, ID: id, Timestamp: time.Now().UnixMilli()})

	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				wsh.log.Warnf("connection error on session %s: %v", id, err)
			}
			break
		}
		wsh.sessions.TouchSession(id)
		if reply, ok := wsh.handleMessage(b, msg); ok {
			send(reply)
		}
	}

	wsh.log.Infof("client disconnected from session %s", id)
	return nil
}

func (wsh *WebSocketHandler) writeLoop(ws *websocket.Conn, out <-chan WSMessage, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg := <-out:
			if err := ws.WriteJSON(msg); err != nil {
				wsh.log.Warnf("failed to send message: %v", err)
				return
			}
		}
	}
}

// handleMessage applies one client message and returns the reply, if any.
func (wsh *WebSocketHandler) handleMessage(b *builder.Builder, msg WSMessage) (WSMessage, bool) {
	switch msg.Type {
	case MsgTypePing:
		return WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()}, true
	case MsgTypeDragPreview:
		var p DragPreviewPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errorMessage("Invalid drag payload: "+err.Error(), "INVALID_PAYLOAD"), true
		}
		b.PreviewDrag(p.ItemID, p.CanvasID, p.X, p.Y)
	case MsgTypeResizePreview:
		var p ResizePreviewPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errorMessage("Invalid resize payload: "+err.Error(), "INVALID_PAYLOAD"), true
		}
		b.PreviewResize(p.ItemID, p.Width, p.Height)
	case MsgTypeDragEnd:
		b.EndGesture()
	default:
		return errorMessage("Unknown message type: "+msg.Type, "INVALID_TYPE"), true
	}
	return WSMessage{}, false
}

func errorMessage(message, code string) WSMessage {
	return WSMessage{
		Type:      MsgTypeError,
		Timestamp: time.Now().UnixMilli(),
		Payload:   mustJSON(WSErrorResponse{Message: message, Code: code}),
	}
}

func mustJSON(v interface{}) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
