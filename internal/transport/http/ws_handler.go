package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"quizpro/internal/app"
	"quizpro/internal/domain"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
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

type selectPayload struct {
	Option *int `json:"option"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ServeWS upgrades HTTP requests to websockets and plays one quiz session
// over the connection. The session is abandoned when the socket closes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	num, _ := strconv.Atoi(query.Get("num"))
	req := domain.GenerateRequest{
		Category:     query.Get("category"),
		Difficulty:   domain.Difficulty(query.Get("difficulty")),
		NumQuestions: num,
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	started, err := h.service.Start(r.Context(), req)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Error: err.Error()})
		return
	}
	sessionID := started.SessionID
	defer h.service.Abandon(context.Background(), sessionID)

	updates, cancel, err := h.service.Subscribe(r.Context(), sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Error: err.Error()})
		return
	}
	defer cancel()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Only the writer goroutine touches conn for writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case event, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage{Type: event.Type, Payload: event.State, Error: event.Error}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	reply := func(msg outboundMessage) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		var actionErr error
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Option == nil {
				reply(outboundMessage{Type: "error", Error: "invalid select payload"})
				continue
			}
			_, actionErr = h.service.Select(r.Context(), sessionID, *payload.Option)
		case "advance":
			_, actionErr = h.service.Advance(r.Context(), sessionID)
		case "retry":
			_, actionErr = h.service.Finalize(r.Context(), sessionID)
		default:
			reply(outboundMessage{Type: "error", Error: "unsupported message type"})
			continue
		}
		if actionErr != nil {
			reply(outboundMessage{Type: "error", Error: actionErr.Error()})
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
