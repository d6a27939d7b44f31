package protocol

import "foosball/game"

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端
const (
	TypeCreateRoom  MessageType = "create_room"
	TypeJoinRoom    MessageType = "join_room"
	TypeLeaveRoom   MessageType = "leave_room"
	TypeReady       MessageType = "ready"
	TypeInputChange MessageType = "input_change"
	TypeGoalScored  MessageType = "goal_scored"
)

// 服务端 → 客户端
const (
	TypeRoomCreated  MessageType = "room_created"
	TypeRoomJoined   MessageType = "room_joined"
	TypePlayerJoined MessageType = "player_joined"
	TypeGameStart    MessageType = "game_start"
	TypeInputUpdate  MessageType = "input_update"
	TypeScoreUpdate  MessageType = "score_update"
	TypeBallReset    MessageType = "ball_reset"
	TypeGameOver     MessageType = "game_over"
	TypePlayerLeft   MessageType = "player_left"
	TypeError        MessageType = "error"
)

// 错误码
const (
	CodeRoomFull      = "room_full"
	CodeRoomNotFound  = "room_not_found"
	CodeRoomClosed    = "room_closed"
	CodeAlreadyInRoom = "already_in_room"
	CodeBadRequest    = "bad_request"
)

// RoomRef 只携带房间号的载荷（join_room / leave_room / ready）
type RoomRef struct {
	RoomID game.RoomID `json:"roomId"`
}

// RoomAssigned room_created / room_joined
type RoomAssigned struct {
	RoomID game.RoomID `json:"roomId"`
	Role   game.Role   `json:"role"`
}

// PlayerCount player_joined / player_left
type PlayerCount struct {
	PlayerCount int `json:"playerCount"`
}

// InputChange 本地操作变化，由服务端转发给对手
type InputChange struct {
	RoomID   game.RoomID       `json:"roomId"`
	Controls game.ControlState `json:"controls"`
}

// InputUpdate 转发给对手的操作，附带服务端时间戳（毫秒）
type InputUpdate struct {
	PlayerID  game.ParticipantID `json:"playerId"`
	Controls  game.ControlState  `json:"controls"`
	Timestamp int64              `json:"timestamp"`
}

// GoalScored 仅 host 可上报
type GoalScored struct {
	RoomID game.RoomID `json:"roomId"`
	Team   game.Team   `json:"team"`
}

// GameOver 比赛结束通知
type GameOver struct {
	Winner game.Team `json:"winner"`
}

// Error 拒绝请求时返回给请求方
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
