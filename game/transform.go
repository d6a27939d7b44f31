package game

// Transform 平面内的位置与朝向（俯视坐标：X 为比赛方向，Y 为球杆移动方向）
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
}

// TableState 渲染所需的物理输出：球与 8 根杆的变换
type TableState struct {
	Ball Transform
	Rods [len(RodLayout)]Transform
}
