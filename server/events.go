package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"foosball/game"
	"foosball/logger"
)

// EventKind 对外发布的房间事件类型
type EventKind string

const (
	EventRoomCreated EventKind = "created"
	EventRoomStarted EventKind = "started"
	EventGoal        EventKind = "goal"
	EventGameOver    EventKind = "game_over"
	EventRoomClosed  EventKind = "closed"
)

// MatchEvent 房间生命周期与比分事件，供外部观察者（大屏、统计）订阅
type MatchEvent struct {
	Kind    EventKind   `json:"kind"`
	RoomID  game.RoomID `json:"roomId"`
	Score   game.Score  `json:"score"`
	Team    game.Team   `json:"team,omitempty"` // goal: 得分方；game_over: 获胜方
	Players int         `json:"players"`
	At      time.Time   `json:"at"`
}

// EventPublisher 发布房间事件；实现不得阻塞事件循环
type EventPublisher interface {
	Publish(ev MatchEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(MatchEvent) {}

// NATSPublisher 将事件发布到 NATS：<prefix>.rooms.<roomId>.<kind>
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

// NewNATSPublisher 连接 NATS；连接断开后由客户端自动重连
func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("foosball-broker"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Log.Warnf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Log.Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSPublisher{nc: nc, prefix: prefix}, nil
}

// Subject 事件对应的主题
func (p *NATSPublisher) Subject(ev MatchEvent) string {
	return fmt.Sprintf("%s.rooms.%s.%s", p.prefix, ev.RoomID, ev.Kind)
}

// Publish 写入客户端缓冲区后立即返回，不等待服务端确认
func (p *NATSPublisher) Publish(ev MatchEvent) {
	b, err := json.Marshal(ev)
	if err != nil {
		logger.Log.Errorf("marshal match event: %v", err)
		return
	}
	if err := p.nc.Publish(p.Subject(ev), b); err != nil {
		logger.Log.Warnf("publish %s for room %s: %v", ev.Kind, ev.RoomID, err)
	}
}

// Close 发送完缓冲区中的事件后断开
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}
