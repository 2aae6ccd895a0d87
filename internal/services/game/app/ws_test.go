package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/websocket"
)

type wsTestFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type wsTestStatePayload struct {
	State struct {
		Phase     string `json:"phase"`
		Narrative string `json:"narrative"`
		Room      *struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"room"`
		Dossier *struct {
			Codename string `json:"codename"`
		} `json:"dossier"`
	} `json:"state"`
}

func dialWS(t *testing.T, handler http.Handler) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, err := websocket.Dial(wsURL, "", srv.URL)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})

	hello := readFrame(t, conn)
	if hello.Type != "game.hello" {
		t.Fatalf("first frame type = %q, want %q", hello.Type, "game.hello")
	}
	return conn
}

func writeFrame(t *testing.T, conn *websocket.Conn, frame map[string]any) {
	t.Helper()
	if err := json.NewEncoder(conn).Encode(frame); err != nil {
		t.Fatalf("encode frame: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) wsTestFrame {
	t.Helper()
	_ = conn.SetDeadline(time.Now().Add(2 * time.Second))
	var got wsTestFrame
	if err := json.NewDecoder(conn).Decode(&got); err != nil {
		t.Fatalf("decode server frame: %v", err)
	}
	return got
}

func decodeStatePayload(t *testing.T, payload json.RawMessage) wsTestStatePayload {
	t.Helper()
	var state wsTestStatePayload
	if err := json.Unmarshal(payload, &state); err != nil {
		t.Fatalf("decode state payload: %v", err)
	}
	return state
}

func beginMission(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	writeFrame(t, conn, map[string]any{
		"type":       "game.begin",
		"request_id": "req-begin",
		"payload":    map[string]any{},
	})
	got := readFrame(t, conn)
	if got.Type != "game.state" {
		t.Fatalf("frame type = %q, want %q", got.Type, "game.state")
	}
}

func TestWebSocketHelloCarriesSessionID(t *testing.T) {
	srv := httptest.NewServer(NewHandler())
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, err := websocket.Dial(wsURL, "", srv.URL)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})

	hello := readFrame(t, conn)
	if hello.Type != "game.hello" {
		t.Fatalf("frame type = %q, want %q", hello.Type, "game.hello")
	}
	var payload struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(hello.Payload, &payload); err != nil {
		t.Fatalf("decode hello payload: %v", err)
	}
	if payload.SessionID == "" {
		t.Fatal("expected non-empty session id")
	}
}

func TestWebSocketStateBeforeBeginShowsBriefing(t *testing.T) {
	conn := dialWS(t, NewHandler())

	writeFrame(t, conn, map[string]any{
		"type":       "game.state",
		"request_id": "req-state-1",
		"payload":    map[string]any{},
	})

	got := readFrame(t, conn)
	if got.Type != "game.state" {
		t.Fatalf("frame type = %q, want %q", got.Type, "game.state")
	}
	if got.RequestID != "req-state-1" {
		t.Fatalf("request id = %q, want %q", got.RequestID, "req-state-1")
	}
	state := decodeStatePayload(t, got.Payload)
	if state.State.Phase != "briefing" {
		t.Fatalf("phase = %q, want briefing", state.State.Phase)
	}
	if state.State.Dossier == nil || state.State.Dossier.Codename != "OPERATION: GLASS SHADOW" {
		t.Fatalf("dossier = %+v, want codename", state.State.Dossier)
	}
}

func TestWebSocketBeginEntersActivePhase(t *testing.T) {
	conn := dialWS(t, NewHandler())

	writeFrame(t, conn, map[string]any{
		"type":       "game.begin",
		"request_id": "req-begin",
		"payload":    map[string]any{},
	})

	got := readFrame(t, conn)
	if got.Type != "game.state" {
		t.Fatalf("frame type = %q, want %q", got.Type, "game.state")
	}
	state := decodeStatePayload(t, got.Payload)
	if state.State.Phase != "active" {
		t.Fatalf("phase = %q, want active", state.State.Phase)
	}
	if state.State.Room == nil || state.State.Room.ID != "entry" {
		t.Fatalf("room = %+v, want entry", state.State.Room)
	}
}

func TestWebSocketBeginTwiceReturnsError(t *testing.T) {
	conn := dialWS(t, NewHandler())
	beginMission(t, conn)

	writeFrame(t, conn, map[string]any{
		"type":       "game.begin",
		"request_id": "req-begin-2",
		"payload":    map[string]any{},
	})

	got := readFrame(t, conn)
	if got.Type != "game.error" {
		t.Fatalf("frame type = %q, want %q", got.Type, "game.error")
	}
	if !strings.Contains(string(got.Payload), "SESSION_INVALID_PHASE_TRANSITION") {
		t.Fatalf("error payload = %s, expected phase transition code", string(got.Payload))
	}
}

func TestWebSocketMoveBeforeBeginReturnsError(t *testing.T) {
	conn := dialWS(t, NewHandler())

	writeFrame(t, conn, map[string]any{
		"type":       "game.move",
		"request_id": "req-move-early",
		"payload":    map[string]any{"room_id": "server_a"},
	})

	got := readFrame(t, conn)
	if got.Type != "game.error" {
		t.Fatalf("frame type = %q, want %q", got.Type, "game.error")
	}
	if !strings.Contains(string(got.Payload), "SESSION_PHASE_DISALLOWS_OPERATION") {
		t.Fatalf("error payload = %s, expected phase code", string(got.Payload))
	}
}

func TestWebSocketMoveToKnownRoom(t *testing.T) {
	conn := dialWS(t, NewHandler())
	beginMission(t, conn)

	writeFrame(t, conn, map[string]any{
		"type":       "game.move",
		"request_id": "req-move-1",
		"payload":    map[string]any{"room_id": "server_a"},
	})

	got := readFrame(t, conn)
	if got.Type != "game.state" {
		t.Fatalf("frame type = %q, want %q", got.Type, "game.state")
	}
	state := decodeStatePayload(t, got.Payload)
	if state.State.Room == nil || state.State.Room.Name != "SERVER A" {
		t.Fatalf("room = %+v, want SERVER A", state.State.Room)
	}
}

func TestWebSocketMoveWithoutRouteIsRejected(t *testing.T) {
	conn := dialWS(t, NewHandler())
	beginMission(t, conn)

	writeFrame(t, conn, map[string]any{
		"type":       "game.move",
		"request_id": "req-move-vault",
		"payload":    map[string]any{"room_id": "vault"},
	})

	got := readFrame(t, conn)
	if got.Type != "game.error" {
		t.Fatalf("frame type = %q, want %q", got.Type, "game.error")
	}
	if !strings.Contains(string(got.Payload), "MISSION_MOVE_REJECTED") {
		t.Fatalf("error payload = %s, expected move rejection", string(got.Payload))
	}
}

func TestWebSocketLockedChallengeIsNotActionable(t *testing.T) {
	conn := dialWS(t, NewHandler())
	beginMission(t, conn)

	writeFrame(t, conn, map[string]any{
		"type":       "game.move",
		"request_id": "req-move-1",
		"payload":    map[string]any{"room_id": "server_a"},
	})
	_ = readFrame(t, conn)

	writeFrame(t, conn, map[string]any{
		"type":       "game.challenge.start",
		"request_id": "req-term",
		"payload":    map[string]any{"challenge_id": "term"},
	})

	got := readFrame(t, conn)
	if got.Type != "game.error" {
		t.Fatalf("frame type = %q, want %q", got.Type, "game.error")
	}
	if !strings.Contains(string(got.Payload), "SESSION_CHALLENGE_NOT_ACTIONABLE") {
		t.Fatalf("error payload = %s, expected locked challenge code", string(got.Payload))
	}
}

func TestWebSocketWaitReturnsNarrative(t *testing.T) {
	conn := dialWS(t, NewHandler())
	beginMission(t, conn)

	writeFrame(t, conn, map[string]any{
		"type":       "game.wait",
		"request_id": "req-wait",
		"payload":    map[string]any{},
	})

	got := readFrame(t, conn)
	if got.Type != "game.state" {
		t.Fatalf("frame type = %q, want %q", got.Type, "game.state")
	}
	state := decodeStatePayload(t, got.Payload)
	if state.State.Narrative != "Taking a breather? Smart." {
		t.Fatalf("narrative = %q, want wait line", state.State.Narrative)
	}
}

func TestWebSocketConverseReturnsHandlerFrame(t *testing.T) {
	conn := dialWS(t, NewHandler())
	beginMission(t, conn)

	writeFrame(t, conn, map[string]any{
		"type":       "game.converse",
		"request_id": "req-talk",
		"payload":    map[string]any{"message": "status report"},
	})

	got := readFrame(t, conn)
	if got.Type != "game.handler" {
		t.Fatalf("frame type = %q, want %q", got.Type, "game.handler")
	}
	if got.RequestID != "req-talk" {
		t.Fatalf("request id = %q, want %q", got.RequestID, "req-talk")
	}
	if !strings.Contains(string(got.Payload), "Making progress. Stay focused.") {
		t.Fatalf("handler payload = %s, expected canned status line", string(got.Payload))
	}
}

func TestWebSocketConverseRequiresMessage(t *testing.T) {
	conn := dialWS(t, NewHandler())

	writeFrame(t, conn, map[string]any{
		"type":       "game.converse",
		"request_id": "req-talk-empty",
		"payload":    map[string]any{"message": "   "},
	})

	got := readFrame(t, conn)
	if got.Type != "game.error" {
		t.Fatalf("frame type = %q, want %q", got.Type, "game.error")
	}
	if !strings.Contains(string(got.Payload), "CHALLENGE_INVALID_INPUT") {
		t.Fatalf("error payload = %s, expected invalid input code", string(got.Payload))
	}
}

func TestWebSocketInventoryStartsEmpty(t *testing.T) {
	conn := dialWS(t, NewHandler())
	beginMission(t, conn)

	writeFrame(t, conn, map[string]any{
		"type":       "game.inventory",
		"request_id": "req-inv",
		"payload":    map[string]any{},
	})

	got := readFrame(t, conn)
	if got.Type != "game.inventory" {
		t.Fatalf("frame type = %q, want %q", got.Type, "game.inventory")
	}
	var payload struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
	}
	if err := json.Unmarshal(got.Payload, &payload); err != nil {
		t.Fatalf("decode inventory payload: %v", err)
	}
	if len(payload.Items) != 0 {
		t.Fatalf("items = %d, want 0", len(payload.Items))
	}
}

func TestWebSocketUnknownTypeReturnsError(t *testing.T) {
	conn := dialWS(t, NewHandler())

	writeFrame(t, conn, map[string]any{
		"type":       "game.unknown",
		"request_id": "req-bad",
		"payload":    map[string]any{},
	})

	got := readFrame(t, conn)
	if got.Type != "game.error" {
		t.Fatalf("frame type = %q, want %q", got.Type, "game.error")
	}
	if !strings.Contains(string(got.Payload), "unsupported frame type") {
		t.Fatalf("error payload = %s, expected unsupported type", string(got.Payload))
	}
}

func TestWebSocketRestartReturnsToBriefing(t *testing.T) {
	conn := dialWS(t, NewHandler())
	beginMission(t, conn)

	writeFrame(t, conn, map[string]any{
		"type":       "game.restart",
		"request_id": "req-restart",
		"payload":    map[string]any{},
	})

	got := readFrame(t, conn)
	if got.Type != "game.state" {
		t.Fatalf("frame type = %q, want %q", got.Type, "game.state")
	}
	state := decodeStatePayload(t, got.Payload)
	if state.State.Phase != "briefing" {
		t.Fatalf("phase = %q, want briefing", state.State.Phase)
	}
}
