// Package client 对端的同步逻辑：本地采样、操作转发、球杆驱动、进球裁决与每帧的同步循环，
// 以及连接 broker 的 WebSocket 会话。
package client

import (
	"sync"

	"foosball/game"
)

// ControlSampler 每帧给出本地玩家当前按住的操作
type ControlSampler interface {
	Sample() game.ControlState
}

// SamplerFunc 函数适配器
type SamplerFunc func() game.ControlState

func (f SamplerFunc) Sample() game.ControlState { return f() }

// ScriptStep 脚本中的一段：保持 State 若干帧
type ScriptStep struct {
	State  game.ControlState
	Frames int
}

// ScriptedSampler 按脚本循环回放操作，用于无界面机器人与测试
type ScriptedSampler struct {
	mu    sync.Mutex
	steps []ScriptStep
	total int
	frame int
}

// NewScriptedSampler 创建脚本采样器；Frames <= 0 的段被忽略
func NewScriptedSampler(steps ...ScriptStep) *ScriptedSampler {
	s := &ScriptedSampler{}
	for _, st := range steps {
		if st.Frames > 0 {
			s.steps = append(s.steps, st)
			s.total += st.Frames
		}
	}
	return s
}

// Sample 返回当前帧的操作并前进一帧
func (s *ScriptedSampler) Sample() game.ControlState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.total == 0 {
		return game.ControlState{}
	}
	at := s.frame % s.total
	s.frame++
	for _, st := range s.steps {
		if at < st.Frames {
			return st.State
		}
		at -= st.Frames
	}
	return game.ControlState{}
}

// DefaultBotScript 无界面机器人：来回推拉并不断转动
func DefaultBotScript() []ScriptStep {
	return []ScriptStep{
		{State: game.ControlState{Forward: true, RotateRight: true}, Frames: 25},
		{State: game.ControlState{}, Frames: 10},
		{State: game.ControlState{Backward: true, RotateLeft: true}, Frames: 25},
		{State: game.ControlState{RotateRight: true}, Frames: 20},
	}
}
