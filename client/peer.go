package client

import (
	"context"
	"fmt"
	"sync"

	"foosball/game"
	"foosball/logger"
	"foosball/protocol"
)

// Peer 对端会话：房间握手、入站消息写入缓冲状态、出站消息走连接的发送队列
type Peer struct {
	conn  *Conn
	relay *InputRelay
	match *MatchState

	mu      sync.Mutex
	roomID  game.RoomID
	role    game.Role
	waiting chan protocol.Envelope // 握手进行中时非空
}

// NewPeer 在连接上注册全部入站处理
func NewPeer(conn *Conn) *Peer {
	p := &Peer{conn: conn, match: NewMatchState()}
	p.relay = NewInputRelay(p.SendInput)

	conn.On(protocol.TypeRoomCreated, p.reply)
	conn.On(protocol.TypeRoomJoined, p.reply)
	conn.On(protocol.TypeError, p.onError)
	conn.On(protocol.TypePlayerJoined, p.onPlayerJoined)
	conn.On(protocol.TypeGameStart, p.onGameStart)
	conn.On(protocol.TypeInputUpdate, p.onInputUpdate)
	conn.On(protocol.TypeScoreUpdate, p.onScoreUpdate)
	conn.On(protocol.TypeBallReset, func(protocol.Envelope) { p.match.RequestReset() })
	conn.On(protocol.TypeGameOver, p.onGameOver)
	conn.On(protocol.TypePlayerLeft, p.onPlayerLeft)
	return p
}

// Relay 操作转发
func (p *Peer) Relay() *InputRelay {
	return p.relay
}

// Match 缓冲的比赛状态
func (p *Peer) Match() *MatchState {
	return p.match
}

// Room 当前房间与身份
func (p *Peer) Room() (game.RoomID, game.Role) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.roomID, p.role
}

// CreateRoom 创建房间，成为 host
func (p *Peer) CreateRoom(ctx context.Context) (game.RoomID, error) {
	a, err := p.request(ctx, protocol.TypeCreateRoom, nil)
	if err != nil {
		return "", fmt.Errorf("create room: %w", err)
	}
	return a.RoomID, nil
}

// JoinRoom 以 guest 身份加入
func (p *Peer) JoinRoom(ctx context.Context, code string) error {
	id := game.NormalizeRoomID(code)
	if _, err := p.request(ctx, protocol.TypeJoinRoom, protocol.RoomRef{RoomID: id}); err != nil {
		return fmt.Errorf("join room %s: %w", id, err)
	}
	return nil
}

func (p *Peer) request(ctx context.Context, t protocol.MessageType, payload any) (protocol.RoomAssigned, error) {
	ch := make(chan protocol.Envelope, 1)
	p.mu.Lock()
	if p.waiting != nil {
		p.mu.Unlock()
		return protocol.RoomAssigned{}, ErrRequestPending
	}
	p.waiting = ch
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.waiting = nil
		p.mu.Unlock()
	}()

	if err := p.conn.Send(t, payload); err != nil {
		return protocol.RoomAssigned{}, err
	}

	select {
	case env := <-ch:
		if env.Type == protocol.TypeError {
			var e protocol.Error
			_ = env.DecodeData(&e)
			return protocol.RoomAssigned{}, &RequestError{Code: e.Code, Message: e.Message}
		}
		var a protocol.RoomAssigned
		if err := env.DecodeData(&a); err != nil {
			return protocol.RoomAssigned{}, err
		}
		p.mu.Lock()
		p.roomID, p.role = a.RoomID, a.Role
		p.mu.Unlock()
		return a, nil
	case <-p.conn.Done():
		return protocol.RoomAssigned{}, ErrConnClosed
	case <-ctx.Done():
		return protocol.RoomAssigned{}, ctx.Err()
	}
}

func (p *Peer) reply(env protocol.Envelope) {
	p.mu.Lock()
	ch := p.waiting
	p.mu.Unlock()
	if ch == nil {
		logger.Log.Debugf("unexpected %s", env.Type)
		return
	}
	select {
	case ch <- env:
	default:
	}
}

func (p *Peer) onError(env protocol.Envelope) {
	var e protocol.Error
	_ = env.DecodeData(&e)
	logger.Log.Warnf("broker error %s: %s", e.Code, e.Message)
	p.reply(env)
}

// SendInput 发送本地操作变化
func (p *Peer) SendInput(cs game.ControlState) error {
	id, _ := p.Room()
	if id == "" {
		return ErrNotInRoom
	}
	return p.conn.Send(protocol.TypeInputChange, protocol.InputChange{RoomID: id, Controls: cs})
}

// ReportGoal 上报进球（仅 host 的上报会被服务端接受）
func (p *Peer) ReportGoal(scoring game.Team) error {
	id, _ := p.Room()
	if id == "" {
		return ErrNotInRoom
	}
	return p.conn.Send(protocol.TypeGoalScored, protocol.GoalScored{RoomID: id, Team: scoring})
}

// Ready 比赛结束后请求再来一局
func (p *Peer) Ready() error {
	id, _ := p.Room()
	if id == "" {
		return ErrNotInRoom
	}
	return p.conn.Send(protocol.TypeReady, protocol.RoomRef{RoomID: id})
}

// Leave 离开当前房间
func (p *Peer) Leave() error {
	p.mu.Lock()
	id := p.roomID
	p.roomID, p.role = "", ""
	p.mu.Unlock()
	if id == "" {
		return ErrNotInRoom
	}
	return p.conn.Send(protocol.TypeLeaveRoom, protocol.RoomRef{RoomID: id})
}

func (p *Peer) onPlayerJoined(env protocol.Envelope) {
	var pc protocol.PlayerCount
	if err := env.DecodeData(&pc); err != nil {
		logger.Log.Warnf("player_joined: %v", err)
		return
	}
	p.match.SetPlayers(pc.PlayerCount)
}

func (p *Peer) onGameStart(protocol.Envelope) {
	p.relay.Reset()
	p.match.Start()
	logger.Log.Info("match started")
}

func (p *Peer) onInputUpdate(env protocol.Envelope) {
	var up protocol.InputUpdate
	if err := env.DecodeData(&up); err != nil {
		logger.Log.Warnf("input_update: %v", err)
		return
	}
	p.relay.Receive(up.Controls)
}

func (p *Peer) onScoreUpdate(env protocol.Envelope) {
	var s game.Score
	if err := env.DecodeData(&s); err != nil {
		logger.Log.Warnf("score_update: %v", err)
		return
	}
	p.match.SetScore(s)
}

func (p *Peer) onGameOver(env protocol.Envelope) {
	var over protocol.GameOver
	if err := env.DecodeData(&over); err != nil {
		logger.Log.Warnf("game_over: %v", err)
		return
	}
	p.match.GameOver(over.Winner)
	logger.Log.Infof("game over, %s wins", over.Winner)
}

func (p *Peer) onPlayerLeft(env protocol.Envelope) {
	var pc protocol.PlayerCount
	_ = env.DecodeData(&pc)
	p.relay.Reset()
	p.match.PeerLeft(pc.PlayerCount)
	logger.Log.Info("opponent left the room")
}
