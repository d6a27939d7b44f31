package server

import (
	"sort"

	"golang.org/x/exp/rand"

	"foosball/game"
)

// Registry 活跃房间表。由创建者显式持有并传入 SessionManager，
// 只允许单个协程读写（Hub 的事件循环）
type Registry struct {
	rooms map[game.RoomID]*Room
}

// NewRegistry 创建空的房间表
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[game.RoomID]*Room)}
}

// Get 按房间号查找
func (g *Registry) Get(id game.RoomID) (*Room, bool) {
	r, ok := g.rooms[id]
	return r, ok
}

// Has 房间号是否已被占用
func (g *Registry) Has(id game.RoomID) bool {
	_, ok := g.rooms[id]
	return ok
}

// Len 活跃房间数
func (g *Registry) Len() int {
	return len(g.rooms)
}

func (g *Registry) put(r *Room) {
	g.rooms[r.ID] = r
}

func (g *Registry) delete(id game.RoomID) {
	delete(g.rooms, id)
}

// RoomsOf 返回参与者所在的所有房间（按房间号排序，保证处理顺序稳定）
func (g *Registry) RoomsOf(p game.ParticipantID) []*Room {
	var out []*Room
	for _, r := range g.rooms {
		if r.Member(p) != nil {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// All 返回所有房间（按房间号排序）
func (g *Registry) All() []*Room {
	out := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

const (
	// RoomCodeLength 房间号长度
	RoomCodeLength   = 6
	roomCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// RandomRoomCodes 返回房间号生成器：6 位大写字母数字。
// 生成器不做唯一性保证，冲突由 SessionManager 重试
func RandomRoomCodes(seed uint64) func() game.RoomID {
	rng := rand.New(rand.NewSource(seed))
	return func() game.RoomID {
		b := make([]byte, RoomCodeLength)
		for i := range b {
			b[i] = roomCodeAlphabet[rng.Intn(len(roomCodeAlphabet))]
		}
		return game.RoomID(b)
	}
}
