package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"restart50-service/internal/app"
	"restart50-service/internal/logger"
)

// WSHandler carries the assistant chat over a websocket bound to one session.
type WSHandler struct {
	service  *app.Service
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.Service, log *logger.Logger) *WSHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &WSHandler{
		service: service,
		log:     log,
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

type chatPayload struct {
	Text string `json:"text"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and answers chat messages until the peer goes away.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if _, err := h.service.Session(r.Context(), sessionID); err != nil {
		status := statusFor(err)
		writeJSON(w, status, errorBodyFor(err, status))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	// Single writer; gorilla connections allow one concurrent writer.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Warn("ws write error", "error", err)
				_ = conn.Close()
				return
			}
		}
	}()

	sendError := func(msg string) {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "chat":
			var payload chatPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				sendError("invalid chat payload")
				continue
			}
			reply, err := h.service.Ask(r.Context(), sessionID, payload.Text)
			if err != nil {
				sendError(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "reply", Payload: reply}
		case "history":
			entries, err := h.service.ChatHistory(r.Context(), sessionID)
			if err != nil {
				sendError(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "history", Payload: entries}
		default:
			sendError("unsupported message type")
		}
	}

	close(send)
	<-writerDone
}
