package server

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"

	"foosball/game"
)

// LinkConditions 人为的弱网参数，只作用于转发给对手的 input_update
type LinkConditions struct {
	DelayMinMs int     `json:"delayMinMs"`
	DelayMaxMs int     `json:"delayMaxMs"`
	DropProb   float64 `json:"dropProb"`
}

// Validate 检查取值范围
func (c LinkConditions) Validate() error {
	if c.DropProb < 0 || c.DropProb > 1 {
		return fmt.Errorf("dropProb must be within [0,1], got %v", c.DropProb)
	}
	if c.DelayMinMs < 0 || c.DelayMaxMs < c.DelayMinMs {
		return fmt.Errorf("delay range [%d,%d] is invalid", c.DelayMinMs, c.DelayMaxMs)
	}
	return nil
}

// LinkSimulator 按配置丢弃或延迟消息，再交给下游 Emitter。
// 延迟的消息通过 later 回到事件循环中投递，因此可能乱序，这与真实链路一致
type LinkSimulator struct {
	next    Emitter
	later   func(d time.Duration, to game.ParticipantID, frame []byte)
	cond    LinkConditions
	rng     *rand.Rand
	metrics *Metrics
}

// NewLinkSimulator 创建链路模拟器；later 负责在 d 之后重新投递
func NewLinkSimulator(next Emitter, later func(time.Duration, game.ParticipantID, []byte), seed uint64, metrics *Metrics) *LinkSimulator {
	if metrics == nil {
		metrics = &Metrics{}
	}
	return &LinkSimulator{
		next:    next,
		later:   later,
		rng:     rand.New(rand.NewSource(seed)),
		metrics: metrics,
	}
}

// Conditions 当前参数
func (l *LinkSimulator) Conditions() LinkConditions {
	return l.cond
}

// SetConditions 更新参数
func (l *LinkSimulator) SetConditions(c LinkConditions) error {
	if err := c.Validate(); err != nil {
		return err
	}
	l.cond = c
	return nil
}

// Emit 实现 Emitter
func (l *LinkSimulator) Emit(to game.ParticipantID, frame []byte) {
	if l.cond.DropProb > 0 && l.rng.Float64() < l.cond.DropProb {
		l.metrics.IncInputsDropped()
		return
	}
	d := l.delay()
	if d <= 0 || l.later == nil {
		l.next.Emit(to, frame)
		return
	}
	l.later(d, to, frame)
}

func (l *LinkSimulator) delay() time.Duration {
	lo, hi := l.cond.DelayMinMs, l.cond.DelayMaxMs
	if hi <= 0 {
		return 0
	}
	ms := lo
	if hi > lo {
		ms += l.rng.Intn(hi - lo + 1)
	}
	return time.Duration(ms) * time.Millisecond
}
