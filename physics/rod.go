package physics

import (
	"github.com/jakecoffman/cp"

	"foosball/game"
)

// Rod 运动学刚体：由速度驱动，不受碰撞影响；初始位置不可变
type Rod struct {
	slot   game.RodSlot
	body   *cp.Body
	spawnX float64
}

func newRod(space *cp.Space, slot game.RodSlot) *Rod {
	body := space.AddBody(cp.NewKinematicBody())
	body.SetPosition(cp.Vector{X: slot.X})

	for _, offset := range slot.FigureOffsets() {
		bb := cp.NewBBForExtents(cp.Vector{Y: offset}, FigureWidth/2, FigureHeight/2)
		s := space.AddShape(cp.NewBox2(body, bb, 0))
		s.SetFriction(FigureFriction)
		s.SetElasticity(FigureRestitution)
	}
	return &Rod{slot: slot, body: body, spawnX: slot.X}
}

// Slot 绑定的槽位
func (r *Rod) Slot() game.RodSlot {
	return r.slot
}

// SpawnX 初始 X 坐标
func (r *Rod) SpawnX() float64 {
	return r.spawnX
}

// Position 当前位置
func (r *Rod) Position() (x, y float64) {
	p := r.body.Position()
	return p.X, p.Y
}

// SetVelocity 设置线速度
func (r *Rod) SetVelocity(vx, vy float64) {
	r.body.SetVelocity(vx, vy)
}

// SetAngularVelocity 设置绕桌面法线的角速度
func (r *Rod) SetAngularVelocity(w float64) {
	r.body.SetAngularVelocity(w)
}

// PinX 将 X 坐标钉回 x，Y 保持不变
func (r *Rod) PinX(x float64) {
	p := r.body.Position()
	if p.X == x {
		return
	}
	r.body.SetPosition(cp.Vector{X: x, Y: p.Y})
}

func (r *Rod) pin() {
	r.PinX(r.spawnX)
}

// Sleeping 只反映杆自身的休眠状态；运动学刚体不会休眠，
// 休眠的球被移动中的杆接触时由引擎唤醒，因此驱动杆不会阻止球休眠
func (r *Rod) Sleeping() bool {
	return r.body.IsSleeping()
}

// Wake 唤醒杆本身
func (r *Rod) Wake() {
	r.body.Activate()
}

// Transform 当前变换
func (r *Rod) Transform() game.Transform {
	p := r.body.Position()
	return game.Transform{X: p.X, Y: p.Y, Angle: r.body.Angle()}
}
