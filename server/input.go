package server

import (
	"errors"

	"foosball/game"
	"foosball/logger"
	"foosball/protocol"
)

// dispatch 解析一条入站消息并交给 SessionManager；在事件循环中调用
// 示例：{"type":"join_room","data":{"roomId":"K3ZQ8A"}}
func (h *Hub) dispatch(from game.ParticipantID, payload []byte) {
	env, err := protocol.Decode(payload)
	if err != nil {
		h.badRequest(from, err)
		return
	}

	switch env.Type {
	case protocol.TypeCreateRoom:
		h.sessions.CreateRoom(from)

	case protocol.TypeJoinRoom:
		var req protocol.RoomRef
		if err := env.DecodeData(&req); err != nil {
			h.badRequest(from, err)
			return
		}
		if _, err := h.sessions.JoinRoom(from, req.RoomID); err != nil {
			h.sessions.send(from, protocol.TypeError, errorPayload(err))
		}

	case protocol.TypeInputChange:
		var in protocol.InputChange
		if err := env.DecodeData(&in); err != nil {
			h.badRequest(from, err)
			return
		}
		if err := h.sessions.RelayInput(from, in.RoomID, in.Controls); err != nil {
			logger.Log.Debugf("input from %s not relayed: %v", from, err)
		}

	case protocol.TypeGoalScored:
		var gs protocol.GoalScored
		if err := env.DecodeData(&gs); err != nil {
			h.badRequest(from, err)
			return
		}
		// 拒绝原因已由 SessionManager 记录，不回复上报方
		_ = h.sessions.ReportGoal(from, gs.RoomID, gs.Team)

	case protocol.TypeLeaveRoom:
		var req protocol.RoomRef
		if err := env.DecodeData(&req); err != nil {
			h.badRequest(from, err)
			return
		}
		if err := h.sessions.LeaveRoom(from, req.RoomID); err != nil {
			logger.Log.Debugf("leave_room from %s: %v", from, err)
		}

	case protocol.TypeReady:
		var req protocol.RoomRef
		if err := env.DecodeData(&req); err != nil {
			h.badRequest(from, err)
			return
		}
		if err := h.sessions.SetReady(from, req.RoomID); err != nil {
			logger.Log.Debugf("ready from %s: %v", from, err)
		}

	default:
		h.badRequest(from, errors.New("unknown message type "+string(env.Type)))
	}
}

// badRequest 无法解析的消息：回复 error，保留连接
func (h *Hub) badRequest(to game.ParticipantID, err error) {
	h.metrics.IncBadRequests()
	logger.Log.Debugf("bad request from %s: %v", to, err)
	h.sessions.send(to, protocol.TypeError, protocol.Error{Code: protocol.CodeBadRequest, Message: err.Error()})
}
