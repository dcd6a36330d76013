package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"livecoder-service/internal/app"
	"livecoder-service/internal/domain"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.RoomService
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.RoomService, hub *Hub) *WSHandler {
	return &WSHandler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
}

type submitPayload struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type codeChangePayload struct {
	Code string `json:"code"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the room
// orchestration use cases. Passing create=1 registers the room id before
// joining; otherwise joining an unknown room fails.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("roomId")
	userID := r.URL.Query().Get("userId")
	if roomID == "" || userID == "" {
		http.Error(w, "missing roomId or userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	if r.URL.Query().Get("create") == "1" {
		h.service.CreateRoom(roomID)
	}

	// Register with the hub first so the lobby broadcast from our own join
	// reaches this connection too.
	events := h.hub.Register(roomID, userID)
	defer h.hub.Unregister(roomID, userID, events)

	snapshot, err := h.service.Join(r.Context(), roomID, userID)
	if err != nil {
		_ = conn.WriteJSON(app.Event{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.Leave(r.Context(), roomID, userID)

	send := make(chan app.Event, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// Sends must never block once the writer has bailed out on a write
	// error, or a chatty client could wedge the read loop on a full buffer.
	trySend := func(event app.Event) {
		select {
		case send <- event:
		case <-writerDone:
		}
	}

	// Queue the join ack before draining hub events so clients always see
	// "joined" first, ahead of the lobby broadcast their own join produced.
	trySend(app.Event{Type: "joined", Payload: snapshot})

	go func() {
		defer close(eventsDone)
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- event:
				case <-writerDone:
					return
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start_challenge":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				trySend(app.Event{Type: "error", Payload: errorPayload{Message: "invalid start payload"}})
				continue
			}
			err := h.service.StartChallenge(r.Context(), roomID, userID, payload.Topic, payload.Difficulty)
			// No-questions is already broadcast room-wide by the service.
			if err != nil && !errors.Is(err, domain.ErrNoQuestionsAvailable) {
				trySend(app.Event{Type: "error", Payload: errorPayload{Message: err.Error()}})
			}
		case "submit_code":
			var payload submitPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				trySend(app.Event{Type: "error", Payload: errorPayload{Message: "invalid submit payload"}})
				continue
			}
			if _, err := h.service.Submit(r.Context(), roomID, userID, payload.Code, payload.Language); err != nil {
				trySend(app.Event{Type: "error", Payload: errorPayload{Message: err.Error()}})
			}
		case "code_change":
			var payload codeChangePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				continue
			}
			h.hub.ToRoomExcept(roomID, userID, app.Event{Type: "code_change", Payload: payload})
		default:
			trySend(app.Event{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}
