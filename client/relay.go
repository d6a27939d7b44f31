package client

import (
	"sync"

	"foosball/game"
)

// InputRelay 本地操作只在变化时发送；对手的操作放在单槽缓冲中，新值覆盖旧值。
// 没有队列与序号：丢失的消息使对手的杆保持上一次的指令，直到下一次变化到达
type InputRelay struct {
	send func(game.ControlState) error

	mu     sync.Mutex
	last   game.ControlState
	remote game.ControlState
}

// NewInputRelay send 不得阻塞
func NewInputRelay(send func(game.ControlState) error) *InputRelay {
	return &InputRelay{send: send}
}

// Tick 与上次成功发送的值比较，变化时发送；发送失败时不更新，下一帧重试
func (r *InputRelay) Tick(local game.ControlState) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if local == r.last {
		return false, nil
	}
	if err := r.send(local); err != nil {
		return false, err
	}
	r.last = local
	return true, nil
}

// Receive 网络协程写入对手的最新操作
func (r *InputRelay) Receive(remote game.ControlState) {
	r.mu.Lock()
	r.remote = remote
	r.mu.Unlock()
}

// Remote 对手当前的操作
func (r *InputRelay) Remote() game.ControlState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remote
}

// Reset 新一局开始或对手离开时清空两个方向的记录：
// 对端此时把我方的操作视为空闲，下一帧会重新发送仍按住的操作
func (r *InputRelay) Reset() {
	r.mu.Lock()
	r.last = game.ControlState{}
	r.remote = game.ControlState{}
	r.mu.Unlock()
}
