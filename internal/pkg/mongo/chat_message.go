package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatMessage 私信消息文档
// 除 read 标记外，消息一经写入不再变更；read 只会从 false 翻转为 true
type ChatMessage struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`    // 存储端分配，同进程内严格递增
	SenderID   string             `bson:"sender_id" json:"senderId"`  // 发送方参与者标识
	ReceiverID string             `bson:"receiver_id" json:"receiverId"`
	Content    string             `bson:"content" json:"content"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"` // 落库时由服务端赋值，不信任客户端时间
	Read       bool               `bson:"read" json:"read"`
}
