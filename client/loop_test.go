package client

import (
	"testing"
	"time"

	"foosball/game"
)

const testFrame = time.Second / 60

type fakeWorld struct {
	rods     map[game.Team][]*fakeRod
	onGoal   func(side game.Team)
	calls    []string
	advanced []time.Duration
	goals    []game.Team // 下一次 Advance 时触发的感应区事件
}

func newFakeWorld() *fakeWorld {
	w := &fakeWorld{rods: make(map[game.Team][]*fakeRod)}
	for _, slot := range game.RodLayout {
		w.rods[slot.Team] = append(w.rods[slot.Team], &fakeRod{spawnX: slot.X, x: slot.X})
	}
	return w
}

func (w *fakeWorld) Rods(team game.Team) []RodBody {
	out := make([]RodBody, 0, len(w.rods[team]))
	for _, r := range w.rods[team] {
		out = append(out, r)
	}
	w.calls = append(w.calls, "rods:"+string(team))
	return out
}

func (w *fakeWorld) Advance(frame time.Duration) int {
	w.calls = append(w.calls, "advance")
	w.advanced = append(w.advanced, frame)
	goals := w.goals
	w.goals = nil
	for _, side := range goals {
		w.onGoal(side)
	}
	return 1
}

func (w *fakeWorld) ResetBall() { w.calls = append(w.calls, "reset") }

func (w *fakeWorld) OnGoal(fn func(side game.Team)) { w.onGoal = fn }

func (w *fakeWorld) Snapshot() game.TableState {
	w.calls = append(w.calls, "snapshot")
	return game.TableState{}
}

type loopHarness struct {
	world    *fakeWorld
	match    *MatchState
	relay    *InputRelay
	sent     []game.ControlState
	reported []game.Team
	frames   []Frame
	loop     *SyncLoop
}

func newLoopHarness(role game.Role, sampler ControlSampler) *loopHarness {
	h := &loopHarness{world: newFakeWorld(), match: NewMatchState()}
	h.relay = NewInputRelay(func(cs game.ControlState) error {
		h.sent = append(h.sent, cs)
		return nil
	})
	h.loop = NewSyncLoop(LoopConfig{
		Role:    role,
		World:   h.world,
		Sampler: sampler,
		Relay:   h.relay,
		Match:   h.match,
		Report: func(team game.Team) error {
			h.reported = append(h.reported, team)
			return nil
		},
		Renderer: RendererFunc(func(f Frame) { h.frames = append(h.frames, f) }),
	})
	return h
}

func TestSyncLoopTickOrder(t *testing.T) {
	h := newLoopHarness(game.RoleHost, SamplerFunc(func() game.ControlState { return game.ControlState{Forward: true} }))
	h.match.Start()

	f := h.loop.Tick(testFrame)
	want := []string{"reset", "rods:home", "rods:away", "advance", "snapshot"}
	if len(h.world.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, h.world.calls)
	}
	for i := range want {
		if h.world.calls[i] != want[i] {
			t.Fatalf("expected calls %v, got %v", want, h.world.calls)
		}
	}
	if len(h.sent) != 1 || !h.sent[0].Forward {
		t.Fatalf("expected the local change to be sent in the same tick, got %v", h.sent)
	}
	if f.Steps != 1 || !f.Local.Forward || len(h.frames) != 1 {
		t.Fatalf("unexpected frame %+v", f)
	}
}

func TestSyncLoopDrivesLocalAndRemoteTeams(t *testing.T) {
	h := newLoopHarness(game.RoleGuest, SamplerFunc(func() game.ControlState { return game.ControlState{Backward: true} }))
	h.match.Start()
	h.relay.Receive(game.ControlState{RotateRight: true})

	h.loop.Tick(testFrame)
	for _, r := range h.world.rods[game.TeamAway] {
		if r.vy != -MoveSpeed || r.w != 0 {
			t.Fatalf("guest drives away rods locally, got vy=%v w=%v", r.vy, r.w)
		}
	}
	for _, r := range h.world.rods[game.TeamHome] {
		if r.vy != 0 || r.w != RotSpeed {
			t.Fatalf("home rods follow the remote state, got vy=%v w=%v", r.vy, r.w)
		}
	}
}

func TestSyncLoopPausedUntilActive(t *testing.T) {
	h := newLoopHarness(game.RoleHost, SamplerFunc(func() game.ControlState { return game.ControlState{Forward: true} }))

	f := h.loop.Tick(testFrame)
	if len(h.world.advanced) != 0 || len(h.sent) != 0 {
		t.Fatalf("waiting loop must not step or send")
	}
	if f.Match.State != game.StateWaitingForPeer || len(h.frames) != 1 {
		t.Fatalf("waiting loop should still render, got %+v", f.Match)
	}
}

func TestSyncLoopHostReportsOncePerReset(t *testing.T) {
	h := newLoopHarness(game.RoleHost, SamplerFunc(func() game.ControlState { return game.ControlState{} }))
	h.match.Start()
	h.loop.Tick(testFrame)

	h.world.goals = []game.Team{game.TeamAway}
	h.loop.Tick(testFrame)
	h.world.goals = []game.Team{game.TeamAway}
	h.loop.Tick(testFrame)
	if len(h.reported) != 1 || h.reported[0] != game.TeamHome {
		t.Fatalf("expected a single report for home, got %v", h.reported)
	}

	h.match.SetScore(game.Score{Home: 1})
	h.match.RequestReset()
	h.world.goals = []game.Team{game.TeamHome}
	f := h.loop.Tick(testFrame)
	if len(h.reported) != 2 || h.reported[1] != game.TeamAway {
		t.Fatalf("expected report after reset, got %v", h.reported)
	}
	if f.Match.Score != (game.Score{Home: 1}) {
		t.Fatalf("frame should carry the server score, got %+v", f.Match.Score)
	}
}

func TestSyncLoopGuestNeverReports(t *testing.T) {
	h := newLoopHarness(game.RoleGuest, SamplerFunc(func() game.ControlState { return game.ControlState{} }))
	h.match.Start()
	for i := 0; i < 3; i++ {
		h.world.goals = []game.Team{game.TeamHome}
		h.match.RequestReset()
		h.loop.Tick(testFrame)
	}
	if len(h.reported) != 0 {
		t.Fatalf("guest reported %v", h.reported)
	}
}

func TestSyncLoopResetAppliedOnce(t *testing.T) {
	h := newLoopHarness(game.RoleGuest, SamplerFunc(func() game.ControlState { return game.ControlState{} }))
	h.match.Start()
	h.loop.Tick(testFrame)
	h.loop.Tick(testFrame)
	resets := 0
	for _, c := range h.world.calls {
		if c == "reset" {
			resets++
		}
	}
	if resets != 1 {
		t.Fatalf("expected one reset, got %d", resets)
	}
}
