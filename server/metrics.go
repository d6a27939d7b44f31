package server

import (
	"sync/atomic"
)

// Metrics 记录 broker 运行期的关键指标（用于监控与调试）
// 计数在事件循环中累加，由 HTTP 协程读取，因此全部使用原子操作
type Metrics struct {
	Connections      int64 // 累计建立的连接
	Disconnects      int64 // 累计断开的连接
	RoomsCreated     int64
	JoinsAccepted    int64
	JoinsRejected    int64 // 房间已满 / 不存在等
	GoalsAccepted    int64
	GoalsRejected    int64 // 非 host 上报、比赛未进行等
	MatchesCompleted int64
	InputsRelayed    int64
	InputsDropped    int64 // 因模拟丢包被丢弃
	SendQueueFull    int64 // 因发送队列满被丢弃的消息
	BadRequests      int64
}

func (m *Metrics) IncConnections() { atomic.AddInt64(&m.Connections, 1) }
func (m *Metrics) IncDisconnects() { atomic.AddInt64(&m.Disconnects, 1) }
func (m *Metrics) IncRoomsCreated() { atomic.AddInt64(&m.RoomsCreated, 1) }
func (m *Metrics) IncJoinsAccepted() { atomic.AddInt64(&m.JoinsAccepted, 1) }
func (m *Metrics) IncJoinsRejected() { atomic.AddInt64(&m.JoinsRejected, 1) }
func (m *Metrics) IncGoalsAccepted() { atomic.AddInt64(&m.GoalsAccepted, 1) }
func (m *Metrics) IncGoalsRejected() { atomic.AddInt64(&m.GoalsRejected, 1) }
func (m *Metrics) IncMatchesCompleted() { atomic.AddInt64(&m.MatchesCompleted, 1) }
func (m *Metrics) IncInputsRelayed() { atomic.AddInt64(&m.InputsRelayed, 1) }
func (m *Metrics) IncInputsDropped() { atomic.AddInt64(&m.InputsDropped, 1) }
func (m *Metrics) IncSendQueueFull() { atomic.AddInt64(&m.SendQueueFull, 1) }
func (m *Metrics) IncBadRequests() { atomic.AddInt64(&m.BadRequests, 1) }

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"connections":       atomic.LoadInt64(&m.Connections),
		"disconnects":       atomic.LoadInt64(&m.Disconnects),
		"rooms_created":     atomic.LoadInt64(&m.RoomsCreated),
		"joins_accepted":    atomic.LoadInt64(&m.JoinsAccepted),
		"joins_rejected":    atomic.LoadInt64(&m.JoinsRejected),
		"goals_accepted":    atomic.LoadInt64(&m.GoalsAccepted),
		"goals_rejected":    atomic.LoadInt64(&m.GoalsRejected),
		"matches_completed": atomic.LoadInt64(&m.MatchesCompleted),
		"inputs_relayed":    atomic.LoadInt64(&m.InputsRelayed),
		"inputs_dropped":    atomic.LoadInt64(&m.InputsDropped),
		"send_queue_full":   atomic.LoadInt64(&m.SendQueueFull),
		"bad_requests":      atomic.LoadInt64(&m.BadRequests),
	}
}
