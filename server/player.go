package server

import "foosball/game"

// Participant 房间内的成员记录：身份在加入时确定，之后不再改变
type Participant struct {
	ID    game.ParticipantID
	Role  game.Role
	Ready bool // 比赛结束后用于重新开局的准备标记
}

// PlayerState 为管理接口输出的轻量状态
type PlayerState struct {
	ID    string    `json:"id"`
	Role  game.Role `json:"role"`
	Ready bool      `json:"ready"`
}
