package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingType 消息缺少 type 字段
var ErrMissingType = errors.New("protocol: message type is required")

// Envelope 所有 WebSocket 文本帧的统一外壳
// 示例：{"type":"goal_scored","data":{"roomId":"K3ZQ8A","team":"away"}}
type Envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode 将载荷编码为完整的消息帧，payload 可为 nil
func Encode(t MessageType, payload any) ([]byte, error) {
	env := Envelope{Type: t}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", t, err)
		}
		env.Data = b
	}
	return json.Marshal(env)
}

// MustEncode 用于载荷类型固定、不可能失败的场景
func MustEncode(t MessageType, payload any) []byte {
	b, err := Encode(t, payload)
	if err != nil {
		panic(err)
	}
	return b
}

// Decode 解析消息外壳，载荷延迟到 DecodeData 再解析
func Decode(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, ErrMissingType
	}
	return env, nil
}

// DecodeData 将载荷解析到 v；没有载荷时保持 v 的零值
func (e Envelope) DecodeData(v any) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}
