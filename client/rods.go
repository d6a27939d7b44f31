package client

import (
	"math"

	"foosball/game"
)

// 球杆运动参数
const (
	MoveSpeed   = 6.0 // 单位/秒
	RotSpeed    = 8.0 // 弧度/秒
	TravelLimit = 2.5 // |y| 的行程上限
)

// RodBody 由速度驱动的运动学刚体，绑定到一个槽位
type RodBody interface {
	SpawnX() float64
	Position() (x, y float64)
	SetVelocity(vx, vy float64)
	SetAngularVelocity(w float64)
	PinX(x float64)
	Sleeping() bool
	Wake()
}

// ControlSource 一组杆的操作来源
type ControlSource int

const (
	Local ControlSource = iota
	Remote
)

func (s ControlSource) String() string {
	if s == Local {
		return "local"
	}
	return "remote"
}

// RodController 本队的杆由本地操作驱动，对方的杆由转发来的操作驱动
type RodController struct {
	sources map[game.Team]ControlSource
}

// NewRodController 绑定本地队伍
func NewRodController(local game.Team) *RodController {
	return &RodController{sources: map[game.Team]ControlSource{
		local:            Local,
		local.Opponent(): Remote,
	}}
}

// Source 某队的操作来源
func (c *RodController) Source(team game.Team) ControlSource {
	return c.sources[team]
}

// Apply 按来源为两队的杆下达指令
func (c *RodController) Apply(w World, local, remote game.ControlState) {
	for _, team := range []game.Team{game.TeamHome, game.TeamAway} {
		cs := remote
		if c.sources[team] == Local {
			cs = local
		}
		Drive(w.Rods(team), cs)
	}
}

// Drive 将操作转换为速度指令：先唤醒，行程到头时截断推拉速度，再钉回初始 X
func Drive(rods []RodBody, cs game.ControlState) {
	v := cs.Longitudinal() * MoveSpeed
	w := cs.Rotation() * RotSpeed
	for _, rod := range rods {
		if rod.Sleeping() {
			rod.Wake()
		}
		_, y := rod.Position()
		vy := v
		if atLimit(y, vy) {
			vy = 0
		}
		rod.SetVelocity(0, vy)
		rod.SetAngularVelocity(w)
		rod.PinX(rod.SpawnX())
	}
}

func atLimit(y, v float64) bool {
	return v != 0 && math.Abs(y) >= TravelLimit && math.Signbit(y) == math.Signbit(v)
}
