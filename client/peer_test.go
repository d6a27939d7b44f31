package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"foosball/game"
	"foosball/protocol"
	"foosball/server"
)

func startBroker(t *testing.T) string {
	t.Helper()
	hub := server.NewHub(server.HubOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.HandleWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-hub.Done()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func connectPeer(t *testing.T, url string) *Peer {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, err := Dial(ctx, url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewPeer(conn)
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestPeersPlayThroughBroker(t *testing.T) {
	url := startBroker(t)
	host := connectPeer(t, url)
	guest := connectPeer(t, url)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	id, err := host.CreateRoom(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, role := host.Room(); role != game.RoleHost {
		t.Fatalf("expected host role, got %s", role)
	}
	if err := guest.JoinRoom(ctx, strings.ToLower(string(id))); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, role := guest.Room(); role != game.RoleGuest {
		t.Fatalf("expected guest role, got %s", role)
	}

	for _, p := range []*Peer{host, guest} {
		p := p
		eventually(t, "game_start", func() bool {
			v := p.Match().View()
			return v.State == game.StateActive && v.Players == 2
		})
	}

	if _, err := guest.Relay().Tick(game.ControlState{Forward: true}); err != nil {
		t.Fatal(err)
	}
	eventually(t, "remote input on host", func() bool { return host.Relay().Remote().Forward })

	for i := 0; i < game.WinThreshold; i++ {
		if err := host.ReportGoal(game.TeamAway); err != nil {
			t.Fatal(err)
		}
	}
	eventually(t, "game over on guest", func() bool {
		v := guest.Match().View()
		return v.State == game.StateMatchOver && v.Winner == game.TeamAway && v.Score.Away == 5
	})

	_ = host.Ready()
	_ = guest.Ready()
	eventually(t, "rematch", func() bool {
		v := host.Match().View()
		return v.State == game.StateActive && v.Score == (game.Score{})
	})

	if err := host.Leave(); err != nil {
		t.Fatal(err)
	}
	eventually(t, "player_left on guest", func() bool {
		v := guest.Match().View()
		return v.State == game.StateWaitingForPeer && v.Players == 1
	})
}

func TestHeldInputResentAfterRematch(t *testing.T) {
	url := startBroker(t)
	host := connectPeer(t, url)
	guest := connectPeer(t, url)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	id, err := host.CreateRoom(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := guest.JoinRoom(ctx, string(id)); err != nil {
		t.Fatal(err)
	}
	eventually(t, "game_start", func() bool { return guest.Match().View().State == game.StateActive })

	held := game.ControlState{Forward: true}
	if _, err := guest.Relay().Tick(held); err != nil {
		t.Fatal(err)
	}
	eventually(t, "held input on host", func() bool { return host.Relay().Remote() == held })

	for i := 0; i < game.WinThreshold; i++ {
		_ = host.ReportGoal(game.TeamHome)
	}
	eventually(t, "game over", func() bool { return guest.Match().View().State == game.StateMatchOver })
	_ = host.Ready()
	_ = guest.Ready()
	eventually(t, "rematch on both", func() bool {
		return host.Match().View().State == game.StateActive && guest.Match().View().State == game.StateActive
	})
	if !host.Relay().Remote().Idle() {
		t.Fatalf("host should treat the guest as idle when the new match starts")
	}

	// 按键一直按住：新一局的第一帧必须重新发送
	sent, err := guest.Relay().Tick(held)
	if err != nil || !sent {
		t.Fatalf("held input should be resent after game_start, sent=%v err=%v", sent, err)
	}
	eventually(t, "host sees held input again", func() bool { return host.Relay().Remote() == held })
}

func TestHeldInputResentToNewGuest(t *testing.T) {
	url := startBroker(t)
	host := connectPeer(t, url)
	first := connectPeer(t, url)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	id, err := host.CreateRoom(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.JoinRoom(ctx, string(id)); err != nil {
		t.Fatal(err)
	}
	eventually(t, "game_start", func() bool { return host.Match().View().State == game.StateActive })

	held := game.ControlState{RotateLeft: true}
	if sent, _ := host.Relay().Tick(held); !sent {
		t.Fatalf("first change should be sent")
	}
	eventually(t, "held input on first guest", func() bool { return first.Relay().Remote() == held })

	if err := first.Leave(); err != nil {
		t.Fatal(err)
	}
	eventually(t, "player_left on host", func() bool { return host.Match().View().State == game.StateWaitingForPeer })

	second := connectPeer(t, url)
	if err := second.JoinRoom(ctx, string(id)); err != nil {
		t.Fatal(err)
	}
	eventually(t, "game_start on host", func() bool { return host.Match().View().State == game.StateActive })

	if sent, err := host.Relay().Tick(held); err != nil || !sent {
		t.Fatalf("held input should be sent to the new guest, sent=%v err=%v", sent, err)
	}
	eventually(t, "held input on second guest", func() bool { return second.Relay().Remote() == held })
}

func TestGuestGoalReportIsIgnored(t *testing.T) {
	url := startBroker(t)
	host := connectPeer(t, url)
	guest := connectPeer(t, url)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	id, err := host.CreateRoom(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := guest.JoinRoom(ctx, string(id)); err != nil {
		t.Fatal(err)
	}
	eventually(t, "game_start", func() bool { return host.Match().View().State == game.StateActive })

	_ = guest.ReportGoal(game.TeamAway)
	// guest 的上报被服务端忽略，只有 host 的这一分生效
	_ = host.ReportGoal(game.TeamHome)
	eventually(t, "score", func() bool { return guest.Match().View().Score.Home == 1 })
	if s := guest.Match().View().Score; s.Away != 0 {
		t.Fatalf("guest report changed the score: %+v", s)
	}
}

func TestJoinMissingRoomReturnsRequestError(t *testing.T) {
	url := startBroker(t)
	p := connectPeer(t, url)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := p.JoinRoom(ctx, "nope00")
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if reqErr.Code != protocol.CodeRoomNotFound {
		t.Fatalf("expected %s, got %s", protocol.CodeRoomNotFound, reqErr.Code)
	}
	if id, _ := p.Room(); id != "" {
		t.Fatalf("failed join must not assign a room")
	}
	if err := p.SendInput(game.ControlState{}); !errors.Is(err, ErrNotInRoom) {
		t.Fatalf("expected ErrNotInRoom, got %v", err)
	}
}
