package ws

import (
	"github.com/goccy/go-json"
)

// 实时通道的事件类型，客户端与服务端共用同一个信封格式
const (
	// 客户端 -> 服务端
	EventAuthenticate = "authenticate"
	EventSendMessage  = "send_message"
	EventMarkAsRead   = "mark_as_read"

	// 服务端 -> 客户端
	EventAuthenticated      = "authenticated"
	EventMessageSent        = "message_sent"
	EventNewMessage         = "new_message"
	EventMessagesMarkedRead = "messages_marked_read"
	EventError              = "error"
)

// Event 双向统一的事件信封
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent 构造携带业务数据的事件
func NewEvent(eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, Data: data}, nil
}

// NewErrorEvent 构造 error 事件，data 为字符串消息
func NewErrorEvent(message string) Event {
	data, _ := json.Marshal(message)
	return Event{Type: EventError, Data: data}
}

func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

func DecodeEvent(raw []byte) (Event, error) {
	var evt Event
	if err := json.Unmarshal(raw, &evt); err != nil {
		return Event{}, err
	}
	return evt, nil
}
