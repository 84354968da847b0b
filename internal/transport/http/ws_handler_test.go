package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"restart50-service/internal/app"
	"restart50-service/internal/assistant"
	"restart50-service/internal/catalog"
	"restart50-service/internal/contact"
	"restart50-service/internal/domain"
	"restart50-service/internal/identity"
	"restart50-service/internal/infra/memory"
	"restart50-service/internal/progress"
	"restart50-service/internal/store"
)

func newTestService() *app.Service {
	backend := store.NewMemoryBackend()
	users := store.NewRepository[domain.User](backend, "users", nil)
	messages := store.NewRepository[domain.ContactMessage](backend, "contacts", nil)
	courses := catalog.Default()
	return app.NewService(app.Deps{
		Sessions:       memory.NewSessionStore(),
		Users:          identity.NewResolver(users, nil),
		Progress:       progress.NewTracker(users, courses),
		Contacts:       contact.NewLog(messages, nil),
		Catalog:        courses,
		Assistant:      assistant.New(courses, func(int) int { return 0 }),
		MaxChatHistory: 50,
	})
}

func TestWebSocketChatFlow(t *testing.T) {
	service := newTestService()
	session := service.StartSession(context.Background())
	wsHandler := NewWSHandler(service, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?session=" + session.ID()
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	chat := map[string]any{
		"type":    "chat",
		"payload": map[string]any{"text": "O que é IA?"},
	}
	if err := conn.WriteJSON(chat); err != nil {
		t.Fatalf("write chat: %v", err)
	}
	_, payload := readNext(conn, t, "reply")
	answer, _ := payload["answer"].(map[string]any)
	if answer["role"] != "bot" {
		t.Fatalf("expected bot answer, got %v", payload)
	}

	if err := conn.WriteJSON(map[string]any{"type": "history"}); err != nil {
		t.Fatalf("write history: %v", err)
	}
	readNext(conn, t, "history")

	if err := conn.WriteJSON(map[string]any{"type": "chat", "payload": map[string]any{"text": "   "}}); err != nil {
		t.Fatalf("write blank chat: %v", err)
	}
	readNext(conn, t, "error")

	if got := len(session.History(0)); got != 2 {
		t.Fatalf("expected 2 history entries, got %d", got)
	}
}

func TestWebSocketRejectsUnknownSession(t *testing.T) {
	wsHandler := NewWSHandler(newTestService(), nil)
	server := httptest.NewServer(http.HandlerFunc(wsHandler.ServeWS))
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?session=missing"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 response, got %+v", resp)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string `json:"type"`
		Payload any    `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	payload, _ := msg.Payload.(map[string]any)
	return msg.Type, payload
}
