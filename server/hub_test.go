package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"foosball/game"
	"foosball/protocol"
)

func startHub(t *testing.T, opts HubOptions) (*Hub, *httptest.Server) {
	t.Helper()
	if opts.RoomCodes == nil {
		opts.RoomCodes = fixedCodes("TABLE1", "TABLE2")
	}
	h := NewHub(opts)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleWS)
	mux.HandleFunc("/metrics", h.HandleMetrics)
	mux.HandleFunc("/admin/rooms", h.HandleRooms)
	mux.HandleFunc("/admin/link", h.HandleLinkConfig)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-h.Done()
	})
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func send(t *testing.T, c *websocket.Conn, typ protocol.MessageType, payload any) {
	t.Helper()
	if err := c.WriteMessage(websocket.TextMessage, protocol.MustEncode(typ, payload)); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func expect(t *testing.T, c *websocket.Conn, typ protocol.MessageType, v any) {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, b, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("waiting for %s: %v", typ, err)
	}
	env, err := protocol.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Type != typ {
		t.Fatalf("expected %s, got %s (%s)", typ, env.Type, b)
	}
	if v != nil {
		if err := env.DecodeData(v); err != nil {
			t.Fatal(err)
		}
	}
}

func TestHubMatchOverWebsocket(t *testing.T) {
	_, srv := startHub(t, HubOptions{})
	host := dial(t, srv)
	guest := dial(t, srv)

	send(t, host, protocol.TypeCreateRoom, nil)
	var created protocol.RoomAssigned
	expect(t, host, protocol.TypeRoomCreated, &created)
	if created.Role != game.RoleHost || created.RoomID != "TABLE1" {
		t.Fatalf("unexpected room_created %+v", created)
	}

	send(t, guest, protocol.TypeJoinRoom, protocol.RoomRef{RoomID: "table1"})
	var joined protocol.RoomAssigned
	expect(t, guest, protocol.TypeRoomJoined, &joined)
	if joined.Role != game.RoleGuest {
		t.Fatalf("expected guest, got %s", joined.Role)
	}
	var count protocol.PlayerCount
	expect(t, guest, protocol.TypePlayerJoined, &count)
	expect(t, guest, protocol.TypeGameStart, nil)
	expect(t, host, protocol.TypePlayerJoined, &count)
	if count.PlayerCount != 2 {
		t.Fatalf("expected 2 players, got %d", count.PlayerCount)
	}
	expect(t, host, protocol.TypeGameStart, nil)

	controls := game.ControlState{Backward: true}
	send(t, guest, protocol.TypeInputChange, protocol.InputChange{RoomID: "TABLE1", Controls: controls})
	var up protocol.InputUpdate
	expect(t, host, protocol.TypeInputUpdate, &up)
	if up.Controls != controls || up.Timestamp == 0 {
		t.Fatalf("unexpected input_update %+v", up)
	}

	// guest 的进球上报被静默忽略，host 的下一条消息应为有效进球的比分
	send(t, guest, protocol.TypeGoalScored, protocol.GoalScored{RoomID: "TABLE1", Team: game.TeamAway})
	send(t, host, protocol.TypeGoalScored, protocol.GoalScored{RoomID: "TABLE1", Team: game.TeamHome})
	var score game.Score
	expect(t, host, protocol.TypeScoreUpdate, &score)
	if score != (game.Score{Home: 1}) {
		t.Fatalf("expected 1-0, got %+v", score)
	}
	expect(t, host, protocol.TypeBallReset, nil)
	expect(t, guest, protocol.TypeScoreUpdate, &score)
	expect(t, guest, protocol.TypeBallReset, nil)

	_ = host.Close()
	var left protocol.PlayerCount
	expect(t, guest, protocol.TypePlayerLeft, &left)
	if left.PlayerCount != 1 {
		t.Fatalf("expected 1 player left, got %d", left.PlayerCount)
	}
}

func TestHubRejectsJoinWithError(t *testing.T) {
	_, srv := startHub(t, HubOptions{})
	c := dial(t, srv)

	send(t, c, protocol.TypeJoinRoom, protocol.RoomRef{RoomID: "MISSING"})
	var e protocol.Error
	expect(t, c, protocol.TypeError, &e)
	if e.Code != protocol.CodeRoomNotFound {
		t.Fatalf("expected %s, got %+v", protocol.CodeRoomNotFound, e)
	}

	if err := c.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	expect(t, c, protocol.TypeError, &e)
	if e.Code != protocol.CodeBadRequest {
		t.Fatalf("expected bad_request, got %+v", e)
	}

	// 连接保持可用
	send(t, c, protocol.TypeCreateRoom, nil)
	expect(t, c, protocol.TypeRoomCreated, nil)
}

func TestAdminEndpoints(t *testing.T) {
	h, srv := startHub(t, HubOptions{})
	c := dial(t, srv)
	send(t, c, protocol.TypeCreateRoom, nil)
	expect(t, c, protocol.TypeRoomCreated, nil)

	resp, err := http.Get(srv.URL + "/admin/rooms")
	if err != nil {
		t.Fatal(err)
	}
	var rooms struct {
		Rooms []RoomSnapshot `json:"rooms"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if len(rooms.Rooms) != 1 || rooms.Rooms[0].ID != "TABLE1" || rooms.Rooms[0].State != game.StateWaitingForPeer {
		t.Fatalf("unexpected rooms %+v", rooms)
	}

	resp, err = http.Post(srv.URL+"/admin/link", "application/json", bytes.NewBufferString(`{"dropProb":0.25}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var cur LinkConditions
	h.Query(func(_ *SessionManager, l *LinkSimulator) { cur = l.Conditions() })
	if cur.DropProb != 0.25 {
		t.Fatalf("expected dropProb 0.25, got %+v", cur)
	}

	resp, err = http.Post(srv.URL+"/admin/link", "application/json", bytes.NewBufferString(`{"dropProb":3}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid dropProb, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	var m struct {
		ActiveRooms int              `json:"activeRooms"`
		Metrics     map[string]int64 `json:"metrics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if m.ActiveRooms != 1 || m.Metrics["rooms_created"] != 1 || m.Metrics["connections"] != 1 {
		t.Fatalf("unexpected metrics %+v", m)
	}
}
