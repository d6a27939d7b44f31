package server

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"foosball/game"
	"foosball/logger"
	"foosball/protocol"
)

// Emitter 将编码好的消息帧投递给某个参与者
type Emitter interface {
	Emit(to game.ParticipantID, frame []byte)
}

// EmitterFunc 函数适配器
type EmitterFunc func(to game.ParticipantID, frame []byte)

func (f EmitterFunc) Emit(to game.ParticipantID, frame []byte) { f(to, frame) }

// SessionManager 房间成员、身份与比分的唯一权威。
// 只在 Hub 的事件循环中调用：每条消息处理完再处理下一条，因此无需加锁
type SessionManager struct {
	rooms   *Registry
	out     Emitter
	inputs  Emitter // 对手操作的转发链路，可替换为 LinkSimulator
	newID   func() game.RoomID
	clock   clockwork.Clock
	events  EventPublisher
	metrics *Metrics
}

// Option SessionManager 可选配置
type Option func(*SessionManager)

// WithRoomCodes 替换房间号生成器
func WithRoomCodes(gen func() game.RoomID) Option {
	return func(m *SessionManager) { m.newID = gen }
}

// WithClock 替换时钟（测试中使用 FakeClock）
func WithClock(c clockwork.Clock) Option {
	return func(m *SessionManager) { m.clock = c }
}

// WithEventPublisher 对外发布房间事件
func WithEventPublisher(p EventPublisher) Option {
	return func(m *SessionManager) { m.events = p }
}

// WithMetrics 共享指标
func WithMetrics(mt *Metrics) Option {
	return func(m *SessionManager) { m.metrics = mt }
}

// WithInputLink 替换 input_update 的投递链路
func WithInputLink(e Emitter) Option {
	return func(m *SessionManager) { m.inputs = e }
}

// NewSessionManager 使用显式传入的房间表创建会话管理器
func NewSessionManager(rooms *Registry, out Emitter, opts ...Option) *SessionManager {
	m := &SessionManager{
		rooms:   rooms,
		out:     out,
		inputs:  out,
		newID:   RandomRoomCodes(uint64(time.Now().UnixNano())),
		clock:   clockwork.NewRealClock(),
		events:  nopPublisher{},
		metrics: &Metrics{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Rooms 房间表
func (m *SessionManager) Rooms() *Registry {
	return m.rooms
}

// Metrics 会话相关计数
func (m *SessionManager) Metrics() *Metrics {
	return m.metrics
}

// CreateRoom 创建房间，创建者固定为 host；房间号冲突时重新生成
func (m *SessionManager) CreateRoom(p game.ParticipantID) (game.RoomID, game.Role) {
	id := m.newID()
	for m.rooms.Has(id) {
		logger.Log.Debugf("room code %s already active, retrying", id)
		id = m.newID()
	}

	room := newRoom(id, p, m.clock.Now())
	m.rooms.put(room)
	m.metrics.IncRoomsCreated()

	m.send(p, protocol.TypeRoomCreated, protocol.RoomAssigned{RoomID: id, Role: game.RoleHost})
	m.publish(EventRoomCreated, room, "")
	logger.Log.Infof("room %s created by %s", id, p)
	return id, game.RoleHost
}

// JoinRoom 以 guest 身份加入房间；成功后开始新的一局
// 失败时不修改任何状态
func (m *SessionManager) JoinRoom(p game.ParticipantID, roomID game.RoomID) (game.Role, error) {
	id := game.NormalizeRoomID(string(roomID))
	room, ok := m.rooms.Get(id)
	var err error
	switch {
	case !ok:
		err = ErrRoomNotFound
	case room.Member(p) != nil:
		err = ErrAlreadyInRoom
	case room.Full():
		err = ErrRoomFull
	case room.Host() == nil:
		err = ErrRoomClosed
	}
	if err != nil {
		m.metrics.IncJoinsRejected()
		logger.Log.Infof("join rejected: room=%s participant=%s err=%v", id, p, err)
		return "", fmt.Errorf("join room %s: %w", id, err)
	}

	room.addGuest(p)
	m.startMatch(room)
	m.metrics.IncJoinsAccepted()

	m.send(p, protocol.TypeRoomJoined, protocol.RoomAssigned{RoomID: id, Role: game.RoleGuest})
	m.broadcast(room, protocol.TypePlayerJoined, protocol.PlayerCount{PlayerCount: len(room.Members)})
	m.broadcast(room, protocol.TypeGameStart, nil)
	m.publish(EventRoomStarted, room, "")
	logger.Log.Infof("%s joined room %s", p, id)
	return game.RoleGuest, nil
}

// ReportGoal 记录一次进球。只接受该房间记录在案的 host 上报，身份以连接为准，
// 不信任消息内容；被拒绝的上报只记录日志，不通知上报方
func (m *SessionManager) ReportGoal(p game.ParticipantID, roomID game.RoomID, team game.Team) error {
	if err := m.reportGoal(p, roomID, team); err != nil {
		m.metrics.IncGoalsRejected()
		logger.Log.Warnf("goal rejected: room=%s participant=%s team=%s err=%v", roomID, p, team, err)
		return err
	}
	return nil
}

func (m *SessionManager) reportGoal(p game.ParticipantID, roomID game.RoomID, team game.Team) error {
	room, ok := m.rooms.Get(game.NormalizeRoomID(string(roomID)))
	if !ok {
		return ErrRoomNotFound
	}
	if member := room.Member(p); member == nil || member.Role != game.RoleHost {
		return ErrNotAuthorized
	}
	if !team.Valid() {
		return ErrInvalidTeam
	}
	if room.State != game.StateActive {
		return ErrMatchNotActive
	}

	room.Score = room.Score.Add(team)
	m.metrics.IncGoalsAccepted()
	// 先广播比分，再让两端重置球；在重置广播发出之前不会处理该房间的下一次进球
	m.broadcast(room, protocol.TypeScoreUpdate, room.Score)
	m.broadcast(room, protocol.TypeBallReset, nil)
	m.publish(EventGoal, room, team)
	logger.Log.Infof("goal: room=%s team=%s score=%d-%d", room.ID, team, room.Score.Home, room.Score.Away)

	if winner, over := room.Score.Winner(); over {
		m.broadcast(room, protocol.TypeGameOver, protocol.GameOver{Winner: winner})
		m.publish(EventGameOver, room, winner)
		room.Score = game.Score{}
		room.State = game.StateMatchOver
		room.clearReady()
		m.metrics.IncMatchesCompleted()
		logger.Log.Infof("game over: room=%s winner=%s", room.ID, winner)
	}
	return nil
}

// SetReady 比赛结束后的重新开局请求；双方都准备后开始新的一局
func (m *SessionManager) SetReady(p game.ParticipantID, roomID game.RoomID) error {
	room, ok := m.rooms.Get(game.NormalizeRoomID(string(roomID)))
	if !ok {
		return ErrRoomNotFound
	}
	member := room.Member(p)
	if member == nil {
		return ErrNotInRoom
	}
	if room.State != game.StateMatchOver {
		return ErrMatchNotActive
	}
	member.Ready = true
	if !room.allReady() {
		return nil
	}

	m.startMatch(room)
	m.broadcast(room, protocol.TypeGameStart, nil)
	m.publish(EventRoomStarted, room, "")
	logger.Log.Infof("rematch started in room %s", room.ID)
	return nil
}

// RelayInput 将操作变化转发给房间内其他成员，附带服务端时间戳；服务端不保存任何操作状态
func (m *SessionManager) RelayInput(p game.ParticipantID, roomID game.RoomID, controls game.ControlState) error {
	room, ok := m.rooms.Get(game.NormalizeRoomID(string(roomID)))
	if !ok {
		return ErrRoomNotFound
	}
	if room.Member(p) == nil {
		return ErrNotInRoom
	}
	frame, err := protocol.Encode(protocol.TypeInputUpdate, protocol.InputUpdate{
		PlayerID:  p,
		Controls:  controls,
		Timestamp: m.clock.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}
	for _, other := range room.Members {
		if other.ID == p {
			continue
		}
		m.inputs.Emit(other.ID, frame)
		m.metrics.IncInputsRelayed()
	}
	return nil
}

// LeaveRoom 主动离开某个房间
func (m *SessionManager) LeaveRoom(p game.ParticipantID, roomID game.RoomID) error {
	room, ok := m.rooms.Get(game.NormalizeRoomID(string(roomID)))
	if !ok {
		return ErrRoomNotFound
	}
	if room.Member(p) == nil {
		return ErrNotInRoom
	}
	m.removeMember(room, p)
	return nil
}

// Leave 将参与者移出其所在的所有房间（断线时调用）
func (m *SessionManager) Leave(p game.ParticipantID) {
	for _, room := range m.rooms.RoomsOf(p) {
		m.removeMember(room, p)
	}
}

// Snapshot 所有房间的只读快照
func (m *SessionManager) Snapshot() []RoomSnapshot {
	rooms := m.rooms.All()
	out := make([]RoomSnapshot, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Snapshot())
	}
	return out
}

// removeMember 移除成员；房间为空则销毁，否则回到等待对手状态
func (m *SessionManager) removeMember(room *Room, p game.ParticipantID) {
	if !room.remove(p) {
		return
	}
	if room.Empty() {
		m.rooms.delete(room.ID)
		m.publish(EventRoomClosed, room, "")
		logger.Log.Infof("room %s destroyed", room.ID)
		return
	}
	room.State = game.StateWaitingForPeer
	room.clearReady()
	m.broadcast(room, protocol.TypePlayerLeft, protocol.PlayerCount{PlayerCount: len(room.Members)})
	logger.Log.Infof("%s left room %s (%d remaining)", p, room.ID, len(room.Members))
}

// startMatch 新的一局：比分清零、准备标记清除、进入 active
func (m *SessionManager) startMatch(room *Room) {
	room.Score = game.Score{}
	room.clearReady()
	room.State = game.StateActive
}

func (m *SessionManager) send(to game.ParticipantID, t protocol.MessageType, payload any) {
	frame, err := protocol.Encode(t, payload)
	if err != nil {
		logger.Log.Errorf("encode %s: %v", t, err)
		return
	}
	m.out.Emit(to, frame)
}

// broadcast 房间内广播：编码一次，逐个投递
func (m *SessionManager) broadcast(room *Room, t protocol.MessageType, payload any) {
	frame, err := protocol.Encode(t, payload)
	if err != nil {
		logger.Log.Errorf("encode %s: %v", t, err)
		return
	}
	for _, p := range room.Members {
		m.out.Emit(p.ID, frame)
	}
}

func (m *SessionManager) publish(kind EventKind, room *Room, team game.Team) {
	m.events.Publish(MatchEvent{
		Kind:    kind,
		RoomID:  room.ID,
		Score:   room.Score,
		Team:    team,
		Players: len(room.Members),
		At:      m.clock.Now(),
	})
}
