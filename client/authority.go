package client

import (
	"foosball/game"
	"foosball/logger"
)

// GoalAuthority 只有 host 把感应区事件上报为进球；guest 同样运行感应区但从不上报。
// 上报后保持解除状态，直到 ball_reset 被应用，避免球停在球门里时重复上报
type GoalAuthority struct {
	role   game.Role
	report func(scoring game.Team) error
	armed  bool
}

// NewGoalAuthority report 不得阻塞
func NewGoalAuthority(role game.Role, report func(game.Team) error) *GoalAuthority {
	return &GoalAuthority{role: role, report: report, armed: true}
}

// OnSensor side 一侧的球门被攻破，得分方为对手；返回是否已上报
func (a *GoalAuthority) OnSensor(side game.Team) bool {
	if a.role != game.RoleHost || !a.armed {
		return false
	}
	scoring := side.Opponent()
	if err := a.report(scoring); err != nil {
		logger.Log.Warnf("goal report for %s failed: %v", scoring, err)
		return false
	}
	a.armed = false
	return true
}

// Rearm 球复位后重新允许上报
func (a *GoalAuthority) Rearm() {
	a.armed = true
}

// Armed 是否允许上报
func (a *GoalAuthority) Armed() bool {
	return a.armed
}
