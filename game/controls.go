package game

// ControlState 某一时刻玩家按住的操作键（值类型，可直接用 == 比较变化）
type ControlState struct {
	Forward     bool `json:"forward"`
	Backward    bool `json:"backward"`
	RotateLeft  bool `json:"rotateLeft"`
	RotateRight bool `json:"rotateRight"`
}

// Longitudinal 推拉方向：+1 前推，-1 后拉，同时按下或都未按下为 0
func (c ControlState) Longitudinal() float64 {
	return axis(c.Forward, c.Backward)
}

// Rotation 旋转方向：RotateRight 为 +1，RotateLeft 为 -1
func (c ControlState) Rotation() float64 {
	return axis(c.RotateRight, c.RotateLeft)
}

// Idle 没有任何按键
func (c ControlState) Idle() bool {
	return c == ControlState{}
}

func axis(pos, neg bool) float64 {
	switch {
	case pos && !neg:
		return 1
	case neg && !pos:
		return -1
	default:
		return 0
	}
}
