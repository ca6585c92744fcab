package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hevlyo/pegabola/internal/sim/world"
)

func startTestServer(t *testing.T, cfg world.Config) (*httptest.Server, *world.World) {
	t.Helper()
	w := world.New(cfg, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	srv := httptest.NewServer(NewServer(w, nil).Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		w.Stop()
	})
	return srv, w
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// readUntil discards messages until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		_ = conn.SetReadDeadline(deadline)
		_, b, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if m["type"] == typ {
			return m
		}
	}
}

func joinConn(t *testing.T, conn *websocket.Conn, nick string) map[string]any {
	t.Helper()
	send(t, conn, map[string]any{"type": "JOIN", "nickname": nick})
	self := readUntil(t, conn, "SELF_INFO")
	return self["player"].(map[string]any)
}

func TestHandler_JoinSyncOverWire(t *testing.T) {
	srv, _ := startTestServer(t, world.Config{ItemCount: 3, Seed: 11})
	conn := dial(t, srv)

	send(t, conn, map[string]any{"type": "JOIN", "nickname": "Ana"})
	wi := readUntil(t, conn, "WORLD_INFO")
	if wi["protocol_version"] != "1.0" || wi["world_size"].(float64) != 50 {
		t.Fatalf("world info: %v", wi)
	}
	self := readUntil(t, conn, "SELF_INFO")["player"].(map[string]any)
	if self["nickname"] != "Ana" {
		t.Fatalf("self info: %v", self)
	}
	readUntil(t, conn, "ROSTER")
	batch := readUntil(t, conn, "ITEM_BATCH")
	if len(batch["items"].([]any)) != 3 {
		t.Fatalf("item batch: %v", batch)
	}
	pc := readUntil(t, conn, "PLAYER_COUNT")
	if pc["count"].(float64) != 1 {
		t.Fatalf("player count: %v", pc)
	}
}

func TestHandler_RejectsMalformedAndPrematureMessages(t *testing.T) {
	srv, _ := startTestServer(t, world.Config{ItemCount: 1, Seed: 11})
	conn := dial(t, srv)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if e := readUntil(t, conn, "ERROR"); e["code"] != "E_BAD_REQUEST" {
		t.Fatalf("malformed message: %v", e)
	}

	// Schema-invalid payload of a known type.
	send(t, conn, map[string]any{"type": "MOVE", "position": "nope"})
	if e := readUntil(t, conn, "ERROR"); e["code"] != "E_BAD_REQUEST" {
		t.Fatalf("schema rejection: %v", e)
	}

	// Valid MOVE before joining.
	send(t, conn, map[string]any{"type": "MOVE", "position": map[string]any{"x": 1, "y": 0, "z": 1}})
	if e := readUntil(t, conn, "ERROR"); e["code"] != "E_NOT_JOINED" {
		t.Fatalf("premature move: %v", e)
	}

	joinConn(t, conn, "Ana")
	send(t, conn, map[string]any{"type": "JOIN", "nickname": "Again"})
	if e := readUntil(t, conn, "ERROR"); e["code"] != "E_ALREADY_JOINED" {
		t.Fatalf("double join: %v", e)
	}
}

func TestHandler_MoveSeenByOtherClient(t *testing.T) {
	srv, _ := startTestServer(t, world.Config{ItemCount: 1, Seed: 11})
	connA := dial(t, srv)
	connB := dial(t, srv)

	selfA := joinConn(t, connA, "Ana")
	joinConn(t, connB, "Bob")

	send(t, connA, map[string]any{"type": "MOVE", "position": map[string]any{"x": 12.5, "y": 0, "z": -3}})
	pm := readUntil(t, connB, "PLAYER_MOVED")
	if pm["id"] != selfA["id"] {
		t.Fatalf("mover id: %v want %v", pm["id"], selfA["id"])
	}
	pos := pm["position"].(map[string]any)
	if pos["x"].(float64) != 12.5 || pos["z"].(float64) != -3 {
		t.Fatalf("position: %v", pos)
	}
}

func TestHandler_CollectScoresAndRespawn(t *testing.T) {
	srv, _ := startTestServer(t, world.Config{
		ItemCount:    2,
		RespawnDelay: 100 * time.Millisecond,
		Seed:         11,
	})
	conn := dial(t, srv)

	self := joinConn(t, conn, "Ana")
	batch := readUntil(t, conn, "ITEM_BATCH")
	item := batch["items"].([]any)[0].(map[string]any)
	itemPos := item["position"].(map[string]any)

	send(t, conn, map[string]any{"type": "MOVE", "position": itemPos})
	send(t, conn, map[string]any{"type": "COLLECT", "item_id": item["id"]})

	ic := readUntil(t, conn, "ITEM_COLLECTED")
	if ic["item_id"] != item["id"] || ic["player_id"] != self["id"] {
		t.Fatalf("collection: %v", ic)
	}
	sc := readUntil(t, conn, "SCORES")
	scores := sc["scores"].(map[string]any)
	if scores[self["id"].(string)].(float64) != item["value"].(float64) {
		t.Fatalf("scores: %v", sc)
	}
	if sc["top_scorer"] != self["id"] {
		t.Fatalf("top scorer: %v", sc)
	}

	// A replacement item shows up after the respawn delay.
	respawn := readUntil(t, conn, "ITEM_BATCH")
	items := respawn["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("respawn batch: %v", respawn)
	}
	if items[0].(map[string]any)["id"] == item["id"] {
		t.Fatalf("respawned item reused the collected id")
	}
}

func TestHandler_DisconnectBroadcastsLeave(t *testing.T) {
	srv, _ := startTestServer(t, world.Config{ItemCount: 1, Seed: 11})
	connA := dial(t, srv)
	connB := dial(t, srv)

	selfA := joinConn(t, connA, "Ana")
	joinConn(t, connB, "Bob")
	connA.Close()

	pl := readUntil(t, connB, "PLAYER_LEFT")
	if pl["id"] != selfA["id"] {
		t.Fatalf("left id: %v want %v", pl["id"], selfA["id"])
	}
	pc := readUntil(t, connB, "PLAYER_COUNT")
	if pc["count"].(float64) != 1 {
		t.Fatalf("player count after leave: %v", pc)
	}
}
