package server

import (
	"time"

	"foosball/game"
)

// MaxParticipants 每个房间最多两名参与者
const MaxParticipants = 2

// Room 房间记录：成员、比分与会话状态，只由 SessionManager 修改
type Room struct {
	ID        game.RoomID
	Members   []*Participant // 有序：先 host 后 guest
	Score     game.Score
	State     game.SessionState
	CreatedAt time.Time
}

// RoomSnapshot 只读快照，便于 HTTP 输出
type RoomSnapshot struct {
	ID        game.RoomID       `json:"id"`
	State     game.SessionState `json:"state"`
	Score     game.Score        `json:"score"`
	Players   []PlayerState     `json:"players"`
	CreatedAt time.Time         `json:"createdAt"`
}

// newRoom 创建房间，创建者为唯一的 host，尚未准备
func newRoom(id game.RoomID, creator game.ParticipantID, now time.Time) *Room {
	return &Room{
		ID:        id,
		Members:   []*Participant{{ID: creator, Role: game.RoleHost}},
		State:     game.StateWaitingForPeer,
		CreatedAt: now,
	}
}

// Member 查找成员，不存在返回 nil
func (r *Room) Member(id game.ParticipantID) *Participant {
	for _, p := range r.Members {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Host 当前的 host；host 离开后返回 nil
func (r *Room) Host() *Participant {
	for _, p := range r.Members {
		if p.Role == game.RoleHost {
			return p
		}
	}
	return nil
}

// Full 房间已满
func (r *Room) Full() bool {
	return len(r.Members) >= MaxParticipants
}

// Empty 房间已无人
func (r *Room) Empty() bool {
	return len(r.Members) == 0
}

// addGuest 追加 guest
func (r *Room) addGuest(id game.ParticipantID) {
	r.Members = append(r.Members, &Participant{ID: id, Role: game.RoleGuest})
}

// remove 移除成员，返回是否存在
func (r *Room) remove(id game.ParticipantID) bool {
	for i, p := range r.Members {
		if p.ID == id {
			r.Members = append(r.Members[:i], r.Members[i+1:]...)
			return true
		}
	}
	return false
}

// clearReady 清除所有准备标记
func (r *Room) clearReady() {
	for _, p := range r.Members {
		p.Ready = false
	}
}

// allReady 满员且所有人都已准备
func (r *Room) allReady() bool {
	if !r.Full() {
		return false
	}
	for _, p := range r.Members {
		if !p.Ready {
			return false
		}
	}
	return true
}

// Snapshot 生成只读快照
func (r *Room) Snapshot() RoomSnapshot {
	players := make([]PlayerState, 0, len(r.Members))
	for _, p := range r.Members {
		players = append(players, PlayerState{ID: string(p.ID), Role: p.Role, Ready: p.Ready})
	}
	return RoomSnapshot{
		ID:        r.ID,
		State:     r.State,
		Score:     r.Score,
		Players:   players,
		CreatedAt: r.CreatedAt,
	}
}
