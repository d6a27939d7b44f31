package game

// FigureSpan 人偶沿球杆均匀分布的总跨度
const FigureSpan = 6.0

// RodSlot 球杆槽位的静态配置
type RodSlot struct {
	Index   int
	X       float64 // 沿比赛方向的初始位置
	Figures int
	Team    Team
}

// RodLayout 标准球桌 8 根杆的布局，运行期不可修改
var RodLayout = [8]RodSlot{
	{Index: 0, X: -5.5, Figures: 1, Team: TeamHome}, // home 守门员
	{Index: 1, X: -4.0, Figures: 2, Team: TeamHome},
	{Index: 2, X: -2.0, Figures: 3, Team: TeamAway},
	{Index: 3, X: -0.7, Figures: 5, Team: TeamHome},
	{Index: 4, X: 0.7, Figures: 5, Team: TeamAway},
	{Index: 5, X: 2.0, Figures: 3, Team: TeamHome},
	{Index: 6, X: 4.0, Figures: 2, Team: TeamAway},
	{Index: 7, X: 5.5, Figures: 1, Team: TeamAway}, // away 守门员
}

// SlotsFor 返回某队所有杆的槽位序号（home: 0,1,3,5；away: 2,4,6,7）
func SlotsFor(t Team) []int {
	out := make([]int, 0, 4)
	for _, s := range RodLayout {
		if s.Team == t {
			out = append(out, s.Index)
		}
	}
	return out
}

// FigureOffsets 每个人偶相对杆中心的 Y 偏移：(i − (n−1)/2)·(FigureSpan/n)
func (s RodSlot) FigureOffsets() []float64 {
	n := float64(s.Figures)
	out := make([]float64, s.Figures)
	for i := range out {
		out[i] = (float64(i) - (n-1)/2) * (FigureSpan / n)
	}
	return out
}
