// Package tui 终端前端：键盘采样与俯视渲染
package tui

import (
	"sync"
	"time"

	"github.com/gdamore/tcell"
	"github.com/jonboulle/clockwork"

	"foosball/game"
)

// DefaultHold 终端只有按下事件没有松开事件，按键在最后一次（含自动重复）事件后保持该时长
const DefaultHold = 150 * time.Millisecond

type control int

const (
	ctlForward control = iota
	ctlBackward
	ctlRotateLeft
	ctlRotateRight
	numControls
)

// opposite 同一轴上的反向操作：按下一个会立即松开另一个
var opposite = [numControls]control{ctlBackward, ctlForward, ctlRotateRight, ctlRotateLeft}

// KeySampler 把终端按键事件锁存为持续按住的操作状态
type KeySampler struct {
	clock clockwork.Clock
	hold  time.Duration

	mu      sync.Mutex
	pressed [numControls]time.Time
}

// NewKeySampler hold <= 0 时使用 DefaultHold
func NewKeySampler(clock clockwork.Clock, hold time.Duration) *KeySampler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if hold <= 0 {
		hold = DefaultHold
	}
	return &KeySampler{clock: clock, hold: hold}
}

// HandleKey 记录一次按键；不是操作键时返回 false
// 方向键或 WASD：上/W 前推，下/S 后拉，左/A 左转，右/D 右转
func (k *KeySampler) HandleKey(ev *tcell.EventKey) bool {
	c, ok := keyControl(ev)
	if !ok {
		return false
	}
	k.mu.Lock()
	k.pressed[c] = k.clock.Now()
	k.pressed[opposite[c]] = time.Time{}
	k.mu.Unlock()
	return true
}

// Release 立即松开所有操作
func (k *KeySampler) Release() {
	k.mu.Lock()
	k.pressed = [numControls]time.Time{}
	k.mu.Unlock()
}

// Sample 实现 client.ControlSampler
func (k *KeySampler) Sample() game.ControlState {
	now := k.clock.Now()
	k.mu.Lock()
	defer k.mu.Unlock()
	held := func(c control) bool {
		t := k.pressed[c]
		return !t.IsZero() && now.Sub(t) < k.hold
	}
	return game.ControlState{
		Forward:     held(ctlForward),
		Backward:    held(ctlBackward),
		RotateLeft:  held(ctlRotateLeft),
		RotateRight: held(ctlRotateRight),
	}
}

func keyControl(ev *tcell.EventKey) (control, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return ctlForward, true
	case tcell.KeyDown:
		return ctlBackward, true
	case tcell.KeyLeft:
		return ctlRotateLeft, true
	case tcell.KeyRight:
		return ctlRotateRight, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w', 'W':
			return ctlForward, true
		case 's', 'S':
			return ctlBackward, true
		case 'a', 'A':
			return ctlRotateLeft, true
		case 'd', 'D':
			return ctlRotateRight, true
		}
	}
	return 0, false
}
