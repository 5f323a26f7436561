package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebSocketAnswerFlow(t *testing.T) {
	server, _ := newTestServer(t)
	defer server.Close()

	conn := dialWS(t, server.URL, "u1")
	defer conn.Close()

	_, question := readNext(conn, t, "question")
	questionID, _ := question["id"].(string)
	if questionID != "daily-2026-10-14" {
		t.Fatalf("unexpected question payload %v", question)
	}
	_, stats := readNext(conn, t, "stats")
	if stats["answeredToday"] != false {
		t.Fatalf("expected unanswered stats, got %v", stats)
	}

	answer := map[string]any{
		"type": "answer",
		"payload": map[string]any{
			"questionId": questionID,
			"answer":     "an answer sent over the socket",
		},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}

	// The accepted answer and the invalidation can arrive in either order.
	acceptedSeen := false
	invalidateSeen := false
	for i := 0; i < 2; i++ {
		typ, payload := readNext(conn, t, "")
		switch typ {
		case "answerAccepted":
			acceptedSeen = payload["questionId"] == questionID
		case "invalidate":
			channels, _ := payload["channels"].([]any)
			invalidateSeen = len(channels) == 3
		}
	}
	if !acceptedSeen || !invalidateSeen {
		t.Fatalf("expected answerAccepted and invalidate, got accepted=%v invalidate=%v", acceptedSeen, invalidateSeen)
	}

	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write duplicate: %v", err)
	}
	_, payload := readNext(conn, t, "alreadyAnswered")
	if payload["status"] != "already_answered" {
		t.Fatalf("unexpected duplicate payload %v", payload)
	}
}

func TestWebSocketReceivesInvalidationFromREST(t *testing.T) {
	server, _ := newTestServer(t)
	defer server.Close()

	conn := dialWS(t, server.URL, "u1")
	defer conn.Close()
	readNext(conn, t, "question")
	readNext(conn, t, "stats")

	postAnswer(t, server.URL, "u1", "daily-2026-10-14", "answer submitted over rest", http.StatusCreated, nil)

	_, payload := readNext(conn, t, "invalidate")
	if channels, _ := payload["channels"].([]any); len(channels) != 3 {
		t.Fatalf("expected three channels, got %v", payload)
	}
}

func TestWebSocketRequiresUser(t *testing.T) {
	server, _ := newTestServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without userId, got %d", resp.StatusCode)
	}
}

func TestDeliverStopsWhenWriterIsGone(t *testing.T) {
	send := make(chan outboundMessage, 1)
	writerDone := make(chan struct{})
	if !deliver(send, writerDone, outboundMessage{Type: "question"}) {
		t.Fatalf("expected delivery while the writer runs")
	}

	close(writerDone)
	result := make(chan bool, 1)
	go func() { result <- deliver(send, writerDone, outboundMessage{Type: "stats"}) }()
	select {
	case ok := <-result:
		if ok {
			t.Fatalf("expected delivery to fail on a full buffer with no writer")
		}
	case <-time.After(time.Second):
		t.Fatalf("deliver blocked after the writer stopped")
	}
}

func dialWS(t *testing.T, base, userID string) *websocket.Conn {
	t.Helper()
	u := "ws" + base[len("http"):] + "/ws?userId=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
