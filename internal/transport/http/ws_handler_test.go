package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"livecoder-service/internal/app"
	"livecoder-service/internal/domain"
	"livecoder-service/internal/infra/memory"
	"livecoder-service/internal/scoring"
	"github.com/gorilla/websocket"
)

func TestWebSocketChallengeFlow(t *testing.T) {
	server, _ := newTestServer(t)
	defer server.Close()

	conn := dial(t, server, "room-1", "alice", true)
	defer conn.Close()

	msgType, _ := readNext(conn, t, "joined")
	if msgType != "joined" {
		t.Fatalf("expected joined, got %s", msgType)
	}

	start := map[string]any{
		"type":    "start_challenge",
		"payload": map[string]any{"topic": "Arrays", "difficulty": "easy"},
	}
	if err := conn.WriteJSON(start); err != nil {
		t.Fatalf("write start: %v", err)
	}

	// Expect the closed-lobby broadcast and the first question.
	questionSeen := false
	lobbySeen := false
	for i := 0; i < 4 && !(questionSeen && lobbySeen); i++ {
		typ, _ := readNext(conn, t, "")
		switch typ {
		case "question":
			questionSeen = true
		case "lobby_state":
			lobbySeen = true
		}
	}
	if !questionSeen || !lobbySeen {
		t.Fatalf("expected question and lobby_state, got question=%v lobby=%v", questionSeen, lobbySeen)
	}

	submit := map[string]any{
		"type":    "submit_code",
		"payload": map[string]any{"code": "public class Main { public static void main(String[] a) { System.out.println(1+2); } }", "language": "java"},
	}
	if err := conn.WriteJSON(submit); err != nil {
		t.Fatalf("write submit: %v", err)
	}

	resultSeen := false
	nextSeen := false
	for i := 0; i < 5 && !(resultSeen && nextSeen); i++ {
		typ, _ := readNext(conn, t, "")
		switch typ {
		case "question_results":
			resultSeen = true
		case "next_question":
			nextSeen = true
		}
	}
	if !resultSeen || !nextSeen {
		t.Fatalf("expected question_results and next_question, got results=%v next=%v", resultSeen, nextSeen)
	}
}

func TestWebSocketJoinUnknownRoom(t *testing.T) {
	server, _ := newTestServer(t)
	defer server.Close()

	conn := dial(t, server, "missing", "alice", false)
	defer conn.Close()

	msgType, payload := readNext(conn, t, "error")
	if msgType != "error" || payload["message"] == "" {
		t.Fatalf("expected error message for unknown room, got %s %v", msgType, payload)
	}
}

// A client that floods unrecognized messages and vanishes without reading
// the replies must still release its room: the read loop has to keep making
// progress even after the writer bails out on a dead connection.
func TestAbruptDisconnectTearsDownSession(t *testing.T) {
	server, service := newTestServer(t)
	defer server.Close()

	conn := dial(t, server, "room-gone", "alice", true)
	if msgType, _ := readNext(conn, t, "joined"); msgType != "joined" {
		t.Fatalf("expected joined, got %s", msgType)
	}

	for i := 0; i < 64; i++ {
		if err := conn.WriteJSON(map[string]any{"type": "bogus"}); err != nil {
			break
		}
	}
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for service.RoomExists("room-gone") {
		if time.Now().After(deadline) {
			t.Fatalf("room not released after abrupt disconnect")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRESTRoomLifecycleAndSubmitFacade(t *testing.T) {
	server, service := newTestServer(t)
	defer server.Close()

	resp, err := http.Post(server.URL+"/rooms", "application/json", nil)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	var created map[string]string
	decodeBody(t, resp, &created)
	roomID := created["roomId"]
	if resp.StatusCode != http.StatusCreated || roomID == "" {
		t.Fatalf("unexpected create response %d %v", resp.StatusCode, created)
	}

	resp, err = http.Get(server.URL + "/rooms/" + roomID)
	if err != nil {
		t.Fatalf("room exists: %v", err)
	}
	var exists map[string]bool
	decodeBody(t, resp, &exists)
	if !exists["exists"] {
		t.Fatalf("expected room to exist")
	}

	resp, err = http.Get(server.URL + "/rooms/other")
	if err != nil {
		t.Fatalf("room exists: %v", err)
	}
	decodeBody(t, resp, &exists)
	if exists["exists"] {
		t.Fatalf("expected unknown room to not exist")
	}

	// Drive a challenge through the service, then grade via the facade.
	ctx := context.Background()
	if _, err := service.Join(ctx, roomID, "alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := service.StartChallenge(ctx, roomID, "alice", "Arrays", "easy"); err != nil {
		t.Fatalf("start: %v", err)
	}

	body := `{"roomId":"` + roomID + `","username":"alice","code":"public class Main { public static void main(String[] a) { System.out.println(1+1); } }","language":"java"}`
	resp, err = http.Post(server.URL+"/submit", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	var receipt domain.SubmitReceipt
	decodeBody(t, resp, &receipt)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected submit status %d", resp.StatusCode)
	}
	if receipt.QuestionNumber != 1 || receipt.TotalQuestions != 2 || receipt.Score <= 0 {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *app.RoomService) {
	t.Helper()
	registry := memory.NewRoomRegistry()
	repo := memory.NewQuestionRepository(memory.NewStaticCatalogLoader(sampleCatalog()), time.Minute)
	hub := NewHub()
	timers := app.NewTimerManagerWithInterval(time.Hour)
	service := app.NewRoomServiceWithTimers(registry, repo, scoring.NewKeywordScorer(), hub, 300, timers)
	wsHandler := NewWSHandler(service, hub)
	restHandler := NewRESTHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("POST /rooms", restHandler.CreateRoom)
	mux.HandleFunc("GET /rooms/{id}", restHandler.RoomExists)
	mux.HandleFunc("POST /submit", restHandler.Submit)
	return httptest.NewServer(mux), service
}

func dial(t *testing.T, server *httptest.Server, roomID, userID string, create bool) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?roomId=" + roomID + "&userId=" + userID
	if create {
		u += "&create=1"
	}
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

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func sampleCatalog() []domain.Question {
	return []domain.Question{
		{Title: "Array Sum", Topic: "Arrays", Difficulty: "easy"},
		{Title: "Reverse Array", Topic: "Arrays", Difficulty: "easy"},
	}
}
