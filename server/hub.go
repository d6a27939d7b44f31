package server

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"foosball/game"
	"foosball/logger"
)

// HubOptions Hub 的可选依赖
type HubOptions struct {
	Clock     clockwork.Clock
	RoomCodes func() game.RoomID
	Publisher EventPublisher
	Link      LinkConditions
	Seed      uint64
}

// Hub 单线程事件循环：连接、消息、断线、延迟投递与管理查询都在同一个协程中依次处理，
// SessionManager 与连接表因此只有一个写者
type Hub struct {
	sessions *SessionManager
	link     *LinkSimulator
	metrics  *Metrics
	clock    clockwork.Clock

	conns  map[game.ParticipantID]*ClientConn
	events chan any
	done   chan struct{}
}

type connectEvent struct {
	id   game.ParticipantID
	conn *ClientConn
}

type messageEvent struct {
	id      game.ParticipantID
	payload []byte
}

type disconnectEvent struct {
	id game.ParticipantID
}

type deliverEvent struct {
	to    game.ParticipantID
	frame []byte
}

type queryEvent struct {
	fn   func()
	done chan struct{}
}

// NewHub 创建 Hub 及其拥有的房间表与会话管理器
func NewHub(opts HubOptions) *Hub {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(opts.Clock.Now().UnixNano())
	}
	h := &Hub{
		metrics: &Metrics{},
		clock:   opts.Clock,
		conns:   make(map[game.ParticipantID]*ClientConn),
		events:  make(chan any, 1024), // 足够缓冲，避免网络读阻塞
		done:    make(chan struct{}),
	}
	h.link = NewLinkSimulator(h, h.deliverLater, opts.Seed, h.metrics)
	if err := h.link.SetConditions(opts.Link); err != nil {
		logger.Log.Warnf("ignoring link conditions: %v", err)
	}

	sessionOpts := []Option{
		WithClock(opts.Clock),
		WithMetrics(h.metrics),
		WithInputLink(h.link),
	}
	if opts.RoomCodes != nil {
		sessionOpts = append(sessionOpts, WithRoomCodes(opts.RoomCodes))
	}
	if opts.Publisher != nil {
		sessionOpts = append(sessionOpts, WithEventPublisher(opts.Publisher))
	}
	h.sessions = NewSessionManager(NewRegistry(), h, sessionOpts...)
	return h
}

// Metrics 运行指标
func (h *Hub) Metrics() *Metrics {
	return h.metrics
}

// Run 事件循环，直到 ctx 取消
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for id, c := range h.conns {
				c.Close()
				delete(h.conns, id)
			}
			logger.Log.Info("hub stopped")
			return
		case ev := <-h.events:
			h.handle(ev)
		}
	}
}

// Done 事件循环退出后关闭
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// handle 每个事件处理完成后才处理下一个
func (h *Hub) handle(ev any) {
	switch e := ev.(type) {
	case connectEvent:
		h.conns[e.id] = e.conn
		h.metrics.IncConnections()
		logger.Log.Infof("participant %s connected", e.id)
	case messageEvent:
		h.dispatch(e.id, e.payload)
	case disconnectEvent:
		c, ok := h.conns[e.id]
		if !ok {
			return
		}
		delete(h.conns, e.id)
		c.Close()
		h.metrics.IncDisconnects()
		// 断线视为隐式离开
		h.sessions.Leave(e.id)
		logger.Log.Infof("participant %s disconnected", e.id)
	case deliverEvent:
		h.Emit(e.to, e.frame)
	case queryEvent:
		e.fn()
		close(e.done)
	}
}

// post 投递事件；Hub 已停止时返回 false
func (h *Hub) post(ev any) bool {
	select {
	case h.events <- ev:
		return true
	case <-h.done:
		return false
	}
}

// Register 登记新连接
func (h *Hub) Register(id game.ParticipantID, conn *ClientConn) bool {
	return h.post(connectEvent{id: id, conn: conn})
}

// Deliver 入站消息，交给事件循环解析处理
func (h *Hub) Deliver(id game.ParticipantID, payload []byte) bool {
	return h.post(messageEvent{id: id, payload: payload})
}

// Unregister 连接断开
func (h *Hub) Unregister(id game.ParticipantID) {
	h.post(disconnectEvent{id: id})
}

// Query 在事件循环中执行 fn 并等待完成，用于管理接口读取一致的状态
func (h *Hub) Query(fn func(s *SessionManager, l *LinkSimulator)) bool {
	done := make(chan struct{})
	if !h.post(queryEvent{fn: func() { fn(h.sessions, h.link) }, done: done}) {
		return false
	}
	select {
	case <-done:
		return true
	case <-h.done:
		return false
	}
}

// Emit 实现 Emitter：只在事件循环中调用，连接已断开则丢弃
func (h *Hub) Emit(to game.ParticipantID, frame []byte) {
	if c, ok := h.conns[to]; ok {
		c.Enqueue(frame)
	}
}

// deliverLater 延迟投递：到期后重新进入事件循环
func (h *Hub) deliverLater(d time.Duration, to game.ParticipantID, frame []byte) {
	h.clock.AfterFunc(d, func() {
		h.post(deliverEvent{to: to, frame: frame})
	})
}
