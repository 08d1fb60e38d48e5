package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newClient(hub *Hub, id string, topics ...string) *Client {
	return &Client{
		ID:     id,
		Topics: topics,
		Send:   make(chan []byte, 256),
		hub:    hub,
	}
}

// ---------------------------------------------------------------------------
// Hub tests
// ---------------------------------------------------------------------------

func TestHub_RegisterClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := newClient(hub, "client-1", "session.abc")

	hub.Register(client)

	if hub.ClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.ClientCount())
	}
	if hub.TopicCount("session.abc") != 1 {
		t.Fatalf("expected 1 client on session.abc, got %d", hub.TopicCount("session.abc"))
	}
}

func TestHub_UnregisterClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := newClient(hub, "client-2", "session.def")

	hub.Register(client)
	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Fatalf("expected 0 clients, got %d", hub.ClientCount())
	}
	if hub.TopicCount("session.def") != 0 {
		t.Fatalf("expected 0 clients on session.def, got %d", hub.TopicCount("session.def"))
	}
}

func TestHub_BroadcastToTopic(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	subscriber := newClient(hub, "sub-1", "session.abc")
	nonSubscriber := newClient(hub, "non-sub-1", "session.other")

	hub.Register(subscriber)
	hub.Register(nonSubscriber)

	event := Event{
		Type:      "simulation.event",
		Topic:     "session.abc",
		Timestamp: time.Now(),
	}

	hub.Broadcast("session.abc", event)

	select {
	case msg := <-subscriber.Send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("failed to unmarshal event: %v", err)
		}
		if received.Type != "simulation.event" {
			t.Fatalf("expected event type simulation.event, got %s", received.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive event")
	}

	select {
	case <-nonSubscriber.Send:
		t.Fatal("non-subscriber should not have received event")
	default:
		// expected
	}
}

func TestHub_TopicCount(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	c1 := newClient(hub, "tc-1", "session.1")
	c2 := newClient(hub, "tc-2", "session.1")
	c3 := newClient(hub, "tc-3", "session.2")

	hub.Register(c1)
	hub.Register(c2)
	hub.Register(c3)

	if hub.TopicCount("session.1") != 2 {
		t.Fatalf("expected 2 on session.1, got %d", hub.TopicCount("session.1"))
	}
	if hub.TopicCount("session.2") != 1 {
		t.Fatalf("expected 1 on session.2, got %d", hub.TopicCount("session.2"))
	}
	if hub.TopicCount("session.none") != 0 {
		t.Fatalf("expected 0 on session.none, got %d", hub.TopicCount("session.none"))
	}
}

func TestHub_UnregisterClosesChannel(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := newClient(hub, "close-1", "session.a")

	hub.Register(client)
	hub.Unregister(client)

	// Reading from a closed channel returns zero value immediately
	_, ok := <-client.Send
	if ok {
		t.Fatal("expected Send channel to be closed after unregister")
	}
}

func TestHub_BroadcastToEmptyTopic(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	// Should not panic
	hub.Broadcast("session.nobody", Event{Type: "simulation.event", Topic: "session.nobody", Timestamp: time.Now()})
}

func TestHub_ConcurrentRegisterUnregister(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	const n = 100

	var wg sync.WaitGroup
	wg.Add(n * 2)

	clients := make([]*Client, n)
	for i := 0; i < n; i++ {
		clients[i] = newClient(hub, "concurrent-"+string(rune(i)), "session.concurrent")
	}

	// Register all concurrently
	for i := 0; i < n; i++ {
		go func(idx int) {
			defer wg.Done()
			hub.Register(clients[idx])
		}(i)
	}

	// Unregister all concurrently
	for i := 0; i < n; i++ {
		go func(idx int) {
			defer wg.Done()
			hub.Unregister(clients[idx])
		}(i)
	}

	wg.Wait()

	count := hub.ClientCount()
	if count < 0 {
		t.Fatalf("client count should not be negative, got %d", count)
	}
}

func TestHub_SubscribeAddsTopics(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := newClient(hub, "dynamic-sub-1")
	hub.Register(client)

	hub.Subscribe(client, []string{"session.new-a", "session.new-b"})

	if hub.TopicCount("session.new-a") != 1 {
		t.Fatalf("expected 1 on session.new-a, got %d", hub.TopicCount("session.new-a"))
	}
	if len(client.Topics) != 2 {
		t.Fatalf("expected 2 topics on client, got %d", len(client.Topics))
	}
}

func TestHub_UnsubscribeRemovesTopics(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := newClient(hub, "dynamic-unsub-1", "session.1", "session.2", "session.3")
	hub.Register(client)

	hub.Unsubscribe(client, []string{"session.1", "session.3"})

	if hub.TopicCount("session.1") != 0 {
		t.Fatalf("expected 0 on session.1, got %d", hub.TopicCount("session.1"))
	}
	if hub.TopicCount("session.2") != 1 {
		t.Fatalf("expected 1 on session.2, got %d", hub.TopicCount("session.2"))
	}
	if len(client.Topics) != 1 {
		t.Fatalf("expected 1 topic remaining, got %d", len(client.Topics))
	}
}

func TestClientMessage_ProcessSubscribe(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := newClient(hub, "process-1")
	hub.Register(client)

	raw := `{"action":"subscribe","topics":["session.123"]}`
	var msg ClientMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	hub.ProcessMessage(client, msg)

	if hub.TopicCount("session.123") != 1 {
		t.Fatalf("expected 1 subscriber on session.123, got %d", hub.TopicCount("session.123"))
	}
}

// ---------------------------------------------------------------------------
// Publisher tests
// ---------------------------------------------------------------------------

func TestPublisher_DeliversPayload(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := newClient(hub, "pub-1", "session.100")
	hub.Register(client)

	pub := NewPublisher(hub)
	pub.Publish("session.100", map[string]string{"title": "CBC ready"})

	select {
	case msg := <-client.Send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("failed to unmarshal: %v", err)
		}
		if received.Topic != "session.100" {
			t.Fatalf("topic = %s", received.Topic)
		}
		var payload map[string]string
		if err := json.Unmarshal(received.Data, &payload); err != nil {
			t.Fatalf("failed to unmarshal payload: %v", err)
		}
		if payload["title"] != "CBC ready" {
			t.Fatalf("payload = %v", payload)
		}
	case <-time.After(time.Second):
		t.Fatal("did not receive published event")
	}
}

func TestPublisher_OnlyTopicSubscribers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c1 := newClient(hub, "multi-pub-1", "session.200")
	c2 := newClient(hub, "multi-pub-2", "session.200")
	c3 := newClient(hub, "multi-pub-3", "session.300")

	hub.Register(c1)
	hub.Register(c2)
	hub.Register(c3)

	NewPublisher(hub).Publish("session.200", map[string]int{"minute": 30})

	for _, c := range []*Client{c1, c2} {
		select {
		case <-c.Send:
		case <-time.After(time.Second):
			t.Fatalf("client %s did not receive event", c.ID)
		}
	}

	select {
	case <-c3.Send:
		t.Fatal("c3 should not have received event for session.200")
	default:
		// expected
	}
}

// ---------------------------------------------------------------------------
// Handler tests
// ---------------------------------------------------------------------------

func TestWebSocketHandler_RegisterRoutes(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	handler := NewWebSocketHandler(hub)

	e := echo.New()
	g := e.Group("")
	handler.RegisterRoutes(g)

	routes := e.Routes()
	found := false
	for _, r := range routes {
		if r.Path == "/ws" && r.Method == http.MethodGet {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("expected GET /ws route to be registered")
	}
}

func TestWebSocketHandler_HandleConnectRequiresWebSocket(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	handler := NewWebSocketHandler(hub)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.HandleConnect(c)

	// gorilla/websocket upgrader will reject non-WS requests
	if err == nil && rec.Code == http.StatusSwitchingProtocols {
		t.Fatal("expected upgrade to fail for non-websocket request")
	}
}

func TestWebSocketHandler_FullUpgradeWithDialer(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	handler := NewWebSocketHandler(hub)

	e := echo.New()
	g := e.Group("")
	handler.RegisterRoutes(g)

	server := httptest.NewServer(e)
	defer server.Close()

	// Convert http URL to ws URL; pre-subscribe via query parameter.
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?topic=session.test-ws"

	dialer := gorillawebsocket.Dialer{}
	conn, resp, err := dialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	defer conn.Close()

	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}

	// Give the goroutine a moment to register
	time.Sleep(50 * time.Millisecond)
	if hub.TopicCount("session.test-ws") != 1 {
		t.Fatalf("expected 1 subscriber on session.test-ws, got %d", hub.TopicCount("session.test-ws"))
	}

	// Subscribe to a second topic over the wire
	subMsg := ClientMessage{
		Action: "subscribe",
		Topics: []string{"session.extra"},
	}
	if err := conn.WriteJSON(subMsg); err != nil {
		t.Fatalf("failed to send subscribe: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if hub.TopicCount("session.extra") != 1 {
		t.Fatalf("expected 1 subscriber on session.extra, got %d", hub.TopicCount("session.extra"))
	}

	// Broadcast an event and verify we receive it
	hub.Broadcast("session.test-ws", Event{
		Type:      "simulation.event",
		Topic:     "session.test-ws",
		Timestamp: time.Now(),
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var received Event
	if err := conn.ReadJSON(&received); err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	if received.Type != "simulation.event" {
		t.Fatalf("expected simulation.event, got %s", received.Type)
	}
}
