package client

import (
	"sync"

	"foosball/game"
)

// MatchState 网络协程写入、模拟循环在下一帧读取的缓冲状态。
// 比分只来自服务端，对端从不自行计算
type MatchState struct {
	mu           sync.Mutex
	state        game.SessionState
	score        game.Score
	winner       game.Team
	players      int
	resetPending bool
}

// MatchView 某一帧读取到的只读副本
type MatchView struct {
	State   game.SessionState
	Score   game.Score
	Winner  game.Team
	Players int
	Reset   bool // 本帧需要复位球
}

// NewMatchState 初始为等待对手
func NewMatchState() *MatchState {
	return &MatchState{state: game.StateWaitingForPeer, players: 1}
}

// Start 新的一局开始
func (m *MatchState) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = game.StateActive
	m.score = game.Score{}
	m.winner = ""
	m.resetPending = true
}

// SetPlayers 房间人数变化
func (m *MatchState) SetPlayers(n int) {
	m.mu.Lock()
	m.players = n
	m.mu.Unlock()
}

// SetScore 服务端广播的比分
func (m *MatchState) SetScore(s game.Score) {
	m.mu.Lock()
	m.score = s
	m.mu.Unlock()
}

// RequestReset 下一帧把球放回中心
func (m *MatchState) RequestReset() {
	m.mu.Lock()
	m.resetPending = true
	m.mu.Unlock()
}

// GameOver 比赛结束，保留最后显示的比分
func (m *MatchState) GameOver(winner game.Team) {
	m.mu.Lock()
	m.state = game.StateMatchOver
	m.winner = winner
	m.mu.Unlock()
}

// PeerLeft 对手离开，回到等待状态
func (m *MatchState) PeerLeft(remaining int) {
	m.mu.Lock()
	m.state = game.StateWaitingForPeer
	m.players = remaining
	m.mu.Unlock()
}

// View 当前状态的副本
func (m *MatchState) View() MatchView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view()
}

// consume 读取副本并清除待复位标记，每帧调用一次
func (m *MatchState) consume() MatchView {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.view()
	m.resetPending = false
	return v
}

func (m *MatchState) view() MatchView {
	return MatchView{
		State:   m.state,
		Score:   m.score,
		Winner:  m.winner,
		Players: m.players,
		Reset:   m.resetPending,
	}
}
