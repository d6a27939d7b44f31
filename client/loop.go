package client

import (
	"time"

	"foosball/game"
	"foosball/logger"
)

// World 物理世界的抽象。两端各自推进自己的世界，只同步操作与进球事件
type World interface {
	Rods(team game.Team) []RodBody
	Advance(frame time.Duration) int
	ResetBall()
	OnGoal(fn func(side game.Team))
	Snapshot() game.TableState
}

// Renderer 消费每帧的输出，不向模拟回写任何东西
type Renderer interface {
	Render(f Frame)
}

// RendererFunc 函数适配器
type RendererFunc func(f Frame)

func (fn RendererFunc) Render(f Frame) { fn(f) }

// Frame 一帧的渲染输入
type Frame struct {
	Table  game.TableState
	Match  MatchView
	Role   game.Role
	Local  game.ControlState
	Remote game.ControlState
	Steps  int
}

// LoopConfig SyncLoop 的依赖
type LoopConfig struct {
	Role     game.Role
	World    World
	Sampler  ControlSampler
	Relay    *InputRelay
	Match    *MatchState
	Report   func(scoring game.Team) error // host 上报进球
	Renderer Renderer
}

// SyncLoop 每帧的编排，两端相同，只有进球裁决依赖身份
type SyncLoop struct {
	role      game.Role
	world     World
	sampler   ControlSampler
	relay     *InputRelay
	rods      *RodController
	authority *GoalAuthority
	match     *MatchState
	renderer  Renderer
}

// NewSyncLoop 组装同步循环并把感应区事件接到进球裁决上
func NewSyncLoop(cfg LoopConfig) *SyncLoop {
	if cfg.Match == nil {
		cfg.Match = NewMatchState()
	}
	if cfg.Report == nil {
		cfg.Report = func(game.Team) error { return nil }
	}
	l := &SyncLoop{
		role:      cfg.Role,
		world:     cfg.World,
		sampler:   cfg.Sampler,
		relay:     cfg.Relay,
		rods:      NewRodController(cfg.Role.Team()),
		authority: NewGoalAuthority(cfg.Role, cfg.Report),
		match:     cfg.Match,
		renderer:  cfg.Renderer,
	}
	l.world.OnGoal(func(side game.Team) {
		if l.authority.OnSensor(side) {
			logger.Log.Infof("reported goal: %s scored", side.Opponent())
		}
	})
	return l
}

// Tick 依次执行：应用缓冲状态、采样并发送变化、驱动两队球杆、推进物理、交给渲染。
// 不等待任何网络 I/O；比赛未进行时只渲染
func (l *SyncLoop) Tick(frame time.Duration) Frame {
	mv := l.match.consume()
	if mv.Reset {
		l.world.ResetBall()
		l.authority.Rearm()
	}

	f := Frame{Role: l.role, Match: mv}
	if mv.State == game.StateActive {
		local := l.sampler.Sample()
		if _, err := l.relay.Tick(local); err != nil {
			logger.Log.Debugf("input change not sent, retrying next frame: %v", err)
		}
		remote := l.relay.Remote()
		l.rods.Apply(l.world, local, remote)
		f.Steps = l.world.Advance(frame)
		f.Local, f.Remote = local, remote
	}

	f.Table = l.world.Snapshot()
	if l.renderer != nil {
		l.renderer.Render(f)
	}
	return f
}
