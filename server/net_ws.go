package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"foosball/game"
	"foosball/logger"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendQueueSize  = 64
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	ws      *websocket.Conn
	send    chan []byte
	metrics *Metrics
}

func NewClientConn(ws *websocket.Conn, metrics *Metrics) *ClientConn {
	if metrics == nil {
		metrics = &Metrics{}
	}
	return &ClientConn{
		ws:      ws,
		send:    make(chan []byte, sendQueueSize),
		metrics: metrics,
	}
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
// 只在 Hub 事件循环中调用，与 Close 不会并发
func (c *ClientConn) Enqueue(b []byte) {
	if c.send == nil {
		return
	}
	select {
	case c.send <- b:
	default:
		// 为了实时性，丢弃新消息，避免慢连接阻塞事件循环
		c.metrics.IncSendQueueFull()
	}
}

// Close 关闭发送队列，写协程发送完剩余消息后关闭连接
func (c *ClientConn) Close() {
	if c.send != nil {
		close(c.send)
		c.send = nil
	}
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定期发送 ping
func (c *ClientConn) writePump(send <-chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case msg, ok := <-send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端消息并交给 Hub；退出时通知 Hub 在事件循环中移除该参与者
func (c *ClientConn) readPump(h *Hub, id game.ParticipantID) {
	defer func() {
		h.Unregister(id)
		_ = c.ws.Close()
	}()
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warnf("participant %s closed unexpectedly: %v", id, err)
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		if !h.Deliver(id, payload) {
			return
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 跨域由外层 CORS 中间件与部署环境控制
		return true
	},
}

// HandleWS WebSocket 接入：每个连接分配一个参与者 ID
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warnf("upgrade error: %v", err)
		return
	}

	id := game.ParticipantID(uuid.New().String())
	client := NewClientConn(ws, h.metrics)
	send := client.send
	if !h.Register(id, client) {
		_ = ws.Close()
		return
	}

	go client.writePump(send)
	go client.readPump(h, id)
}
