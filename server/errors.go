package server

import (
	"errors"

	"foosball/protocol"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrRoomClosed     = errors.New("room has lost its host")
	ErrAlreadyInRoom  = errors.New("participant already in room")
	ErrNotInRoom      = errors.New("participant not in room")
	ErrNotAuthorized  = errors.New("only the host may report goals")
	ErrMatchNotActive = errors.New("match is not active")
	ErrInvalidTeam    = errors.New("invalid team")
)

// errorPayload 将成员类错误转换为返回给请求方的 error 消息
func errorPayload(err error) protocol.Error {
	code := protocol.CodeBadRequest
	switch {
	case errors.Is(err, ErrRoomFull):
		code = protocol.CodeRoomFull
	case errors.Is(err, ErrRoomNotFound):
		code = protocol.CodeRoomNotFound
	case errors.Is(err, ErrRoomClosed):
		code = protocol.CodeRoomClosed
	case errors.Is(err, ErrAlreadyInRoom):
		code = protocol.CodeAlreadyInRoom
	}
	return protocol.Error{Code: code, Message: err.Error()}
}
