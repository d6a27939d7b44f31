// Package physics 球桌的刚体世界：球、8 根杆、边界与两个球门感应区。
// 俯视二维：X 为比赛方向（球门到球门），Y 为球杆移动方向，旋转绕桌面法线。
package physics

import (
	"math"
	"time"

	"github.com/jakecoffman/cp"

	"foosball/game"
)

// 固定步长与每帧最多子步数
const (
	Step        = time.Second / 60
	MaxSubsteps = 3
)

// 球
const (
	BallRadius = 0.2
	BallMass   = 0.45
)

// 边界尺寸
const (
	HalfWidth     = 3.6 // 长边墙 y = ±3.6
	HalfLength    = 6.1 // 端墙 x = ±6.1
	GoalHalfWidth = 1.0 // 球门口 |y| < 1.0
	CornerSize    = 0.5 // 45° 角块的直角边长
	PocketDepth   = 0.9 // 球门后兜的深度
	SensorX       = 6.6 // 感应区中心 x = ±6.6
	wallRadius    = 0.05
)

// 材质（摩擦, 弹性）。球的形状摩擦与弹性均为 1，引擎按乘积组合，因此接触参数即为表面参数
const (
	WallFriction      = 0.1
	WallRestitution   = 0.9
	FigureFriction    = 0.3
	FigureRestitution = 0.8
	GroundFriction    = 0.5
	GroundRestitution = 0.7 // 俯视平面内无效果，保留作记录
	Gravity           = 9.82
	rollingFactor     = 0.05
	LinearDamping     = 0.2
	SleepIdleTime     = 0.5
)

// 球杆上的人偶尺寸
const (
	FigureWidth  = 0.3 // 沿 X
	FigureHeight = 0.4 // 沿 Y
)

const (
	collisionBall cp.CollisionType = iota + 1
	collisionSensor
)

// Table 封装刚体世界，只在模拟循环所在的协程中使用
type Table struct {
	space     *cp.Space
	ball      *cp.Body
	rods      [len(game.RodLayout)]*Rod
	sensors   map[*cp.Shape]game.Team
	pending   []game.Team
	onGoal    func(side game.Team)
	acc       time.Duration
	rollDecel float64
}

// NewTable 按标准布局创建球桌，球位于中心静止
func NewTable() *Table {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{})
	space.SetDamping(1 - LinearDamping)
	space.SleepTimeThreshold = SleepIdleTime

	t := &Table{
		space:     space,
		sensors:   make(map[*cp.Shape]game.Team, 2),
		rollDecel: GroundFriction * Gravity * rollingFactor,
	}
	t.buildWalls()
	t.buildSensors()
	t.buildBall()
	for i, slot := range game.RodLayout {
		t.rods[i] = newRod(space, slot)
	}

	handler := space.NewCollisionHandler(collisionBall, collisionSensor)
	handler.BeginFunc = func(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
		a, b := arb.Shapes()
		if side, ok := t.sensors[a]; ok {
			t.pending = append(t.pending, side)
		} else if side, ok := t.sensors[b]; ok {
			t.pending = append(t.pending, side)
		}
		return true
	}
	return t
}

func (t *Table) buildWalls() {
	static := t.space.StaticBody
	seg := func(ax, ay, bx, by float64) {
		s := t.space.AddShape(cp.NewSegment(static, cp.Vector{X: ax, Y: ay}, cp.Vector{X: bx, Y: by}, wallRadius))
		s.SetFriction(WallFriction)
		s.SetElasticity(WallRestitution)
	}
	x, y, c := HalfLength, HalfWidth, CornerSize
	for _, sx := range []float64{-1, 1} {
		for _, sy := range []float64{-1, 1} {
			// 长边墙（到角块为止）
			seg(0, sy*y, sx*(x-c), sy*y)
			// 45° 角块
			seg(sx*(x-c), sy*y, sx*x, sy*(y-c))
			// 端墙（到球门口为止）
			seg(sx*x, sy*(y-c), sx*x, sy*GoalHalfWidth)
			// 球门侧壁
			seg(sx*x, sy*GoalHalfWidth, sx*(x+PocketDepth), sy*GoalHalfWidth)
		}
		// 球门后墙
		seg(sx*(x+PocketDepth), -GoalHalfWidth, sx*(x+PocketDepth), GoalHalfWidth)
	}
}

// buildSensors 感应区位于球门口后方：x < 0 一侧是 home 防守的球门
func (t *Table) buildSensors() {
	for _, side := range []game.Team{game.TeamHome, game.TeamAway} {
		bb := cp.NewBBForExtents(cp.Vector{X: SensorSide(side) * SensorX}, PocketDepth/3, GoalHalfWidth)
		s := t.space.AddShape(cp.NewBox2(t.space.StaticBody, bb, 0))
		s.SetSensor(true)
		s.SetCollisionType(collisionSensor)
		t.sensors[s] = side
	}
}

// SensorSide 某队防守的球门所在的 x 方向
func SensorSide(side game.Team) float64 {
	if side == game.TeamHome {
		return -1
	}
	return 1
}

func (t *Table) buildBall() {
	moment := cp.MomentForCircle(BallMass, 0, BallRadius, cp.Vector{})
	t.ball = t.space.AddBody(cp.NewBody(BallMass, moment))
	s := t.space.AddShape(cp.NewCircle(t.ball, BallRadius, cp.Vector{}))
	s.SetFriction(1)
	s.SetElasticity(1)
	s.SetCollisionType(collisionBall)
}

// OnGoal 注册感应区回调；回调在 Advance 的子步之间调用，不在引擎回调内部
func (t *Table) OnGoal(fn func(side game.Team)) {
	t.onGoal = fn
}

// Rod 返回某个槽位的杆
func (t *Table) Rod(slot int) *Rod {
	return t.rods[slot]
}

// TeamRods 某队的 4 根杆，按槽位顺序
func (t *Table) TeamRods(team game.Team) []*Rod {
	out := make([]*Rod, 0, 4)
	for _, i := range game.SlotsFor(team) {
		out = append(out, t.rods[i])
	}
	return out
}

// Advance 累积帧时间并以固定步长推进，最多 MaxSubsteps 步，多余的积压直接丢弃；返回实际步数
func (t *Table) Advance(frame time.Duration) int {
	if frame > 0 {
		t.acc += frame
	}
	steps := 0
	for t.acc >= Step && steps < MaxSubsteps {
		t.substep(Step.Seconds())
		t.acc -= Step
		steps++
	}
	t.acc %= Step
	return steps
}

func (t *Table) substep(dt float64) {
	t.rollingResistance(dt)
	t.space.Step(dt)
	for _, r := range t.rods {
		r.pin()
	}
	t.flushGoals()
}

// rollingResistance 桌面摩擦：速度方向上的恒定减速
func (t *Table) rollingResistance(dt float64) {
	v := t.ball.Velocity()
	speed := v.Length()
	if speed == 0 {
		return
	}
	next := math.Max(0, speed-t.rollDecel*dt)
	t.ball.SetVelocityVector(v.Mult(next / speed))
}

func (t *Table) flushGoals() {
	if len(t.pending) == 0 {
		return
	}
	pending := t.pending
	t.pending = nil
	if t.onGoal == nil {
		return
	}
	for _, side := range pending {
		t.onGoal(side)
	}
}

// ResetBall 球回到中心，线速度与角速度清零
func (t *Table) ResetBall() {
	t.PlaceBall(0, 0, 0, 0)
	t.pending = nil
}

// PlaceBall 直接设置球的位置与速度（发球、测试）
func (t *Table) PlaceBall(x, y, vx, vy float64) {
	t.ball.SetPosition(cp.Vector{X: x, Y: y})
	t.ball.SetVelocity(vx, vy)
	t.ball.SetAngularVelocity(0)
	t.ball.SetAngle(0)
	t.ball.Activate()
}

// BallVelocity 球的线速度
func (t *Table) BallVelocity() (vx, vy float64) {
	v := t.ball.Velocity()
	return v.X, v.Y
}

// Snapshot 球与所有杆的当前变换
func (t *Table) Snapshot() game.TableState {
	var s game.TableState
	p := t.ball.Position()
	s.Ball = game.Transform{X: p.X, Y: p.Y, Angle: t.ball.Angle()}
	for i, r := range t.rods {
		s.Rods[i] = r.Transform()
	}
	return s
}
