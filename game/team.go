package game

import "strings"

// Team 球桌两侧的队伍
type Team string

const (
	TeamHome Team = "home"
	TeamAway Team = "away"
)

// Valid 判断是否为合法队伍
func (t Team) Valid() bool {
	return t == TeamHome || t == TeamAway
}

// Opponent 返回对方队伍
func (t Team) Opponent() Team {
	if t == TeamHome {
		return TeamAway
	}
	return TeamHome
}

// Role 参与者在房间中的固定身份：创建者为 host，唯一的加入者为 guest
type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// Team host 操控 home，guest 操控 away
func (r Role) Team() Team {
	if r == RoleHost {
		return TeamHome
	}
	return TeamAway
}

// RoomID 房间号：短小、可手动输入、统一大写
type RoomID string

// NormalizeRoomID 去除首尾空白并转为大写，便于用户手动输入
func NormalizeRoomID(s string) RoomID {
	return RoomID(strings.ToUpper(strings.TrimSpace(s)))
}

// ParticipantID 连接级别的参与者标识（由服务端分配）
type ParticipantID string

// SessionState 房间会话状态
type SessionState string

const (
	StateWaitingForPeer SessionState = "waiting-for-peer"
	StateActive         SessionState = "active"
	StateMatchOver      SessionState = "match-over"
)
