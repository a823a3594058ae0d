package ws

import (
	log "log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// Session 一条已建立的实时连接，投递路由只依赖这组能力
type Session interface {
	// Send 非阻塞入队，队列已满或连接关闭时返回 false（实时推送允许丢失）
	Send(evt Event) bool
	// Ping 发送控制帧探活
	Ping() error
	Close()
}

// Client 基于 gorilla/websocket 的 Session 实现
// 所有写操作都经由 send 队列在 WritePump 单协程内完成
type Client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func NewClient(conn *websocket.Conn, buffer int) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func (c *Client) Send(evt Event) bool {
	payload, err := evt.Encode()
	if err != nil {
		log.Error("WS 事件编码失败", "type", evt.Type, "err", err)
		return false
	}

	select {
	case <-c.done:
		return false
	case c.send <- payload:
		return true
	default:
		// 队列堆满说明对端消费不动，放弃这条推送
		return false
	}
}

func (c *Client) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// WritePump 串行消费 send 队列并写入连接，写失败即终止
func (c *Client) WritePump() {
	defer c.Close()
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}
