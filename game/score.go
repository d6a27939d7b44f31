package game

// WinThreshold 先进 5 球者获胜
const WinThreshold = 5

// Score 比分，只由服务端的会话管理器修改
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Add 为某队加一分并返回新比分
func (s Score) Add(t Team) Score {
	if t == TeamHome {
		s.Home++
	} else {
		s.Away++
	}
	return s
}

// Winner 达到获胜分数的队伍（若有）
func (s Score) Winner() (Team, bool) {
	switch {
	case s.Home >= WinThreshold:
		return TeamHome, true
	case s.Away >= WinThreshold:
		return TeamAway, true
	}
	return "", false
}
