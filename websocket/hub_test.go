package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SRIDEV20/AI-powered-interview-simulator/events"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client, err := hub.RegisterClient(conn, r.URL.Query().Get("user"))
		if err != nil {
			conn.Close()
			return
		}
		go client.WritePump()
		client.ReadPump()
	}))

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, user string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + user
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, user string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount(user) != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients for %s, got %d", n, user, hub.ClientCount(user))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubDeliversOnlyToOwner(t *testing.T) {
	hub, srv := startHub(t)

	alice := dial(t, srv, "alice")
	bob := dial(t, srv, "bob")
	waitForClients(t, hub, "alice", 1)
	waitForClients(t, hub, "bob", 1)

	event := events.New(events.AnswerEvaluated, "alice", "session-1", map[string]float64{"score": 80})
	if err := hub.Publish(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	alice.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := alice.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	var got events.Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if got.Type != events.AnswerEvaluated || got.SessionID != "session-1" {
		t.Fatalf("unexpected event: %+v", got)
	}

	bob.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := bob.ReadMessage(); err == nil {
		t.Fatal("expected bob to receive nothing")
	}
}

func TestHubAnswersPing(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "carol")
	waitForClients(t, hub, "carol", 1)

	if err := conn.WriteJSON(Message{Type: "ping"}); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	if msg.Type != "pong" {
		t.Fatalf("expected pong, got %q", msg.Type)
	}
}

func TestHubUnregistersClosedClients(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "dave")
	waitForClients(t, hub, "dave", 1)

	conn.Close()
	waitForClients(t, hub, "dave", 0)
}

func TestPublishAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	// fill the buffer so Publish has to observe the stopped hub
	for i := 0; i < sendBuffer; i++ {
		hub.broadcast <- delivery{}
	}
	if err := hub.Publish(context.Background(), events.New(events.ScoreComputed, "x", "", nil)); err != ErrHubStopped {
		t.Fatalf("expected ErrHubStopped, got %v", err)
	}
}
