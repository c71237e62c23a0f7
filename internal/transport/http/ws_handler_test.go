package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/roomrelay/roomrelay-server/internal/config"
	"github.com/roomrelay/roomrelay-server/internal/core"
	"github.com/roomrelay/roomrelay-server/internal/proto"
	"github.com/roomrelay/roomrelay-server/internal/store/sqlite"
)

func testLogger() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}

func startTestServer(t *testing.T) (*httptest.Server, context.CancelFunc) {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	hub := core.NewHub(st, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := NewServer(hub, st, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}, testLogger())

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, cancel
}

// outboundFrame mirrors proto.Outbound with raw data for re-decoding.
type outboundFrame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()

	for {
		var frame outboundFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			t.Fatalf("read waiting for %q: %v", event, err)
		}
		if frame.Type == proto.OutboundTypeEvent && frame.Event == event {
			return frame.Data
		}
	}
}

func sendInbound(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s payload: %v", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts, cancel := startTestServer(t)
	defer cancel()

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestWebSocketJoinChatAndDisconnect(t *testing.T) {
	ts, cancel := startTestServer(t)
	defer cancel()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"

	ctx, closeCtx := context.WithTimeout(context.Background(), 10*time.Second)
	defer closeCtx()

	connA, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial A: %v", err)
	}
	defer connA.Close(websocket.StatusNormalClosure, "done")

	sendInbound(t, ctx, connA, proto.InboundTypeJoinRoom, proto.JoinRoomData{Username: "alice", Room: "general"})

	// Welcome notice, empty history batch, then roster.
	var welcome proto.WireMessage
	if err := json.Unmarshal(readEvent(t, ctx, connA, proto.EventMessage), &welcome); err != nil {
		t.Fatalf("decode welcome: %v", err)
	}
	if welcome.Username != "system" || !strings.Contains(welcome.Text, "Welcome") {
		t.Fatalf("unexpected welcome: %+v", welcome)
	}

	var history proto.RoomMessagesData
	if err := json.Unmarshal(readEvent(t, ctx, connA, proto.EventRoomMessages), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if history.Room != "general" || len(history.Messages) != 0 {
		t.Fatalf("expected empty history, got %+v", history)
	}

	var roster proto.RoomUsersData
	if err := json.Unmarshal(readEvent(t, ctx, connA, proto.EventRoomUsers), &roster); err != nil {
		t.Fatalf("decode roster: %v", err)
	}
	if len(roster.Users) != 1 || roster.Users[0].Username != "alice" {
		t.Fatalf("unexpected roster: %+v", roster)
	}

	connB, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial B: %v", err)
	}
	defer connB.Close(websocket.StatusNormalClosure, "done")

	sendInbound(t, ctx, connB, proto.InboundTypeJoinRoom, proto.JoinRoomData{Username: "bob", Room: "general"})

	// A sees the join notice and an updated roster.
	var joinNotice proto.WireMessage
	if err := json.Unmarshal(readEvent(t, ctx, connA, proto.EventMessage), &joinNotice); err != nil {
		t.Fatalf("decode join notice: %v", err)
	}
	if !strings.Contains(joinNotice.Text, "joined") {
		t.Fatalf("unexpected join notice: %+v", joinNotice)
	}
	if err := json.Unmarshal(readEvent(t, ctx, connA, proto.EventRoomUsers), &roster); err != nil {
		t.Fatalf("decode roster: %v", err)
	}
	if len(roster.Users) != 2 {
		t.Fatalf("expected two users, got %+v", roster)
	}

	// B's join sequence lands too; skip to the roster.
	if err := json.Unmarshal(readEvent(t, ctx, connB, proto.EventRoomUsers), &roster); err != nil {
		t.Fatalf("decode roster: %v", err)
	}

	// Chat from A reaches both, persisted with the sender as reader.
	sendInbound(t, ctx, connA, proto.InboundTypeChatMessage, proto.ChatMessageData{Text: "hi"})

	for _, conn := range []*websocket.Conn{connA, connB} {
		var msg proto.WireMessage
		if err := json.Unmarshal(readEvent(t, ctx, conn, proto.EventMessage), &msg); err != nil {
			t.Fatalf("decode chat message: %v", err)
		}
		if msg.Username != "alice" || msg.Text != "hi" || msg.Room != "general" || msg.IsPrivate {
			t.Fatalf("unexpected chat message: %+v", msg)
		}
		if len(msg.ReadBy) != 1 {
			t.Fatalf("expected one reader, got %v", msg.ReadBy)
		}
	}

	// REST surface agrees with what the relay delivered.
	resp, err := ts.Client().Get(ts.URL + "/api/rooms/general/messages")
	if err != nil {
		t.Fatalf("history request failed: %v", err)
	}
	defer resp.Body.Close()
	var apiHistory proto.RoomMessagesData
	if err := json.NewDecoder(resp.Body).Decode(&apiHistory); err != nil {
		t.Fatalf("decode api history: %v", err)
	}
	if len(apiHistory.Messages) != 1 || apiHistory.Messages[0].Text != "hi" {
		t.Fatalf("unexpected api history: %+v", apiHistory)
	}

	usersResp, err := ts.Client().Get(ts.URL + "/api/rooms/general/users")
	if err != nil {
		t.Fatalf("roster request failed: %v", err)
	}
	defer usersResp.Body.Close()
	var apiRoster proto.RoomUsersData
	if err := json.NewDecoder(usersResp.Body).Decode(&apiRoster); err != nil {
		t.Fatalf("decode api roster: %v", err)
	}
	if len(apiRoster.Users) != 2 {
		t.Fatalf("unexpected api roster: %+v", apiRoster)
	}

	// B disconnects; A hears the leave notice and shrunken roster.
	connB.Close(websocket.StatusNormalClosure, "done")

	var leftNotice proto.WireMessage
	if err := json.Unmarshal(readEvent(t, ctx, connA, proto.EventMessage), &leftNotice); err != nil {
		t.Fatalf("decode leave notice: %v", err)
	}
	if !strings.Contains(leftNotice.Text, "left") {
		t.Fatalf("unexpected leave notice: %+v", leftNotice)
	}
	if err := json.Unmarshal(readEvent(t, ctx, connA, proto.EventRoomUsers), &roster); err != nil {
		t.Fatalf("decode roster: %v", err)
	}
	if len(roster.Users) != 1 || roster.Users[0].Username != "alice" {
		t.Fatalf("expected alice alone, got %+v", roster)
	}
}

func TestWebSocketUnknownTypeGetsError(t *testing.T) {
	ts, cancel := startTestServer(t)
	defer cancel()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"

	ctx, closeCtx := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCtx()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: "bogus"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var frame outboundFrame
	if err := wsjson.Read(ctx, conn, &frame); err != nil {
		t.Fatalf("read: %v", err)
	}
	if frame.Type != proto.OutboundTypeError || frame.Error == nil || frame.Error.Code != core.ErrCodeInvalidMessage {
		t.Fatalf("expected protocol error, got %+v", frame)
	}
}
