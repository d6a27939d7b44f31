package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"foosball/logger"
	"foosball/protocol"
)

var (
	ErrConnClosed     = errors.New("connection closed")
	ErrSendQueueFull  = errors.New("send queue full")
	ErrNotInRoom      = errors.New("not in a room")
	ErrRequestPending = errors.New("another request is pending")
)

const (
	writeWait     = 5 * time.Second
	pongWait      = 60 * time.Second
	sendQueueSize = 64
)

// Handler 处理一条入站消息，在读协程中调用，不得阻塞
type Handler func(env protocol.Envelope)

// Conn 到 broker 的 WebSocket 连接：发送走有界队列，由写协程写出；入站消息按类型分发
type Conn struct {
	ws   *websocket.Conn
	send chan []byte

	mu       sync.RWMutex
	handlers map[protocol.MessageType]Handler

	closeOnce sync.Once
	done      chan struct{}
}

// Dial 建立连接并启动读写协程
func Dial(ctx context.Context, url string) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &Conn{
		ws:       ws,
		send:     make(chan []byte, sendQueueSize),
		handlers: make(map[protocol.MessageType]Handler),
		done:     make(chan struct{}),
	}
	go c.writePump()
	go c.readPump()
	return c, nil
}

// On 注册某类消息的处理函数（覆盖旧的）
func (c *Conn) On(t protocol.MessageType, h Handler) {
	c.mu.Lock()
	c.handlers[t] = h
	c.mu.Unlock()
}

// Send 编码并放入发送队列，不阻塞
func (c *Conn) Send(t protocol.MessageType, payload any) error {
	frame, err := protocol.Encode(t, payload)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}
	select {
	case c.send <- frame:
		return nil
	case <-c.done:
		return ErrConnClosed
	default:
		return fmt.Errorf("send %s: %w", t, ErrSendQueueFull)
	}
}

// Done 连接关闭后关闭
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Close 关闭连接，可重复调用
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		err = c.ws.Close()
	})
	return err
}

func (c *Conn) writePump() {
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Log.Warnf("write to broker: %v", err)
				_ = c.Close()
				return
			}
		}
	}
}

func (c *Conn) readPump() {
	defer c.Close()
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPingHandler(func(data string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return c.ws.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})
	for {
		_, b, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				logger.Log.Infof("broker connection closed: %v", err)
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		env, err := protocol.Decode(b)
		if err != nil {
			logger.Log.Warnf("ignoring malformed frame: %v", err)
			continue
		}
		c.mu.RLock()
		h := c.handlers[env.Type]
		c.mu.RUnlock()
		if h == nil {
			logger.Log.Debugf("no handler for %s", env.Type)
			continue
		}
		h(env)
	}
}

// RequestError 服务端拒绝了请求
type RequestError struct {
	Code    string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request rejected (%s): %s", e.Code, e.Message)
}
