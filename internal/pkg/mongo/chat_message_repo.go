package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrInvalidMessage 落库前的字段校验失败
var ErrInvalidMessage = errors.New("invalid chat message")

type ChatMessageRepo interface {
	Append(ctx context.Context, senderID, receiverID, content string) (*ChatMessage, error)
	History(ctx context.Context, userA, userB string) ([]*ChatMessage, error)
	MarkRead(ctx context.Context, forUser string, messageIDs []string) ([]string, error)
	UnreadCount(ctx context.Context, forUser, fromContact string) (int64, error)
	ListByParticipant(ctx context.Context, userID string) ([]*ChatMessage, error)
	EnsureIndexes(ctx context.Context) error
}

type chatMessageRepoImpl struct {
	col *mongo.Collection
}

func NewChatMessageRepo(db *mongo.Database) ChatMessageRepo {
	return &chatMessageRepoImpl{
		col: db.Collection("chat_messages"),
	}
}

// EnsureIndexes 初始化会话查询所需的索引
func (s *chatMessageRepoImpl) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "receiver_id", Value: 1}}},
		{Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "read", Value: 1}}},
		{Keys: bson.D{{Key: "timestamp", Value: 1}}},
	})
	return errors.Wrap(err, "create chat_messages indexes")
}

// Append 持久化一条消息，id 与 timestamp 均由存储端分配
func (s *chatMessageRepoImpl) Append(ctx context.Context, senderID, receiverID, content string) (*ChatMessage, error) {
	if senderID == "" || receiverID == "" || content == "" {
		return nil, ErrInvalidMessage
	}

	msg := &ChatMessage{
		ID:         primitive.NewObjectID(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  time.Now().UTC(),
		Read:       false,
	}

	if _, err := s.col.InsertOne(ctx, msg); err != nil {
		return nil, errors.Wrap(err, "insert chat message")
	}
	return msg, nil
}

// History 双向拉取两个参与者之间的全部消息，按写入顺序升序
func (s *chatMessageRepoImpl) History(ctx context.Context, userA, userB string) ([]*ChatMessage, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender_id": userA, "receiver_id": userB},
		bson.M{"sender_id": userB, "receiver_id": userA},
	}}

	// timestamp 相同的消息按 _id 决出先后，_id 单进程内严格递增
	findOptions := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "find chat history")
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var messages []*ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, errors.Wrap(err, "decode chat history")
	}
	return messages, nil
}

// MarkRead 将 id 集合中属于 forUser 收件箱的消息置为已读
// 不属于该用户、不存在或已读的 id 都静默跳过，可重复调用
func (s *chatMessageRepoImpl) MarkRead(ctx context.Context, forUser string, messageIDs []string) ([]string, error) {
	objIDs := make([]primitive.ObjectID, 0, len(messageIDs))
	for _, id := range messageIDs {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objIDs = append(objIDs, objID)
	}
	if len(objIDs) == 0 {
		return []string{}, nil
	}

	// 先筛出归属于当前用户的消息，防止替他人标记已读
	cursor, err := s.col.Find(ctx,
		bson.M{"_id": bson.M{"$in": objIDs}, "receiver_id": forUser},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "filter owned messages")
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var owned []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &owned); err != nil {
		return nil, errors.Wrap(err, "decode owned messages")
	}
	if len(owned) == 0 {
		return []string{}, nil
	}

	acceptedObjIDs := make([]primitive.ObjectID, 0, len(owned))
	accepted := make([]string, 0, len(owned))
	for _, doc := range owned {
		acceptedObjIDs = append(acceptedObjIDs, doc.ID)
		accepted = append(accepted, doc.ID.Hex())
	}

	_, err = s.col.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": acceptedObjIDs}},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return nil, errors.Wrap(err, "mark messages read")
	}
	return accepted, nil
}

// UnreadCount 统计 fromContact 发给 forUser 的未读数量
func (s *chatMessageRepoImpl) UnreadCount(ctx context.Context, forUser, fromContact string) (int64, error) {
	count, err := s.col.CountDocuments(ctx, bson.M{
		"receiver_id": forUser,
		"sender_id":   fromContact,
		"read":        false,
	})
	if err != nil {
		return 0, errors.Wrap(err, "count unread messages")
	}
	return count, nil
}

// ListByParticipant 拉取用户参与的全部消息，按时间降序，供会话摘要折叠
func (s *chatMessageRepoImpl) ListByParticipant(ctx context.Context, userID string) ([]*ChatMessage, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender_id": userID},
		bson.M{"receiver_id": userID},
	}}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "find participant messages")
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var messages []*ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, errors.Wrap(err, "decode participant messages")
	}
	return messages, nil
}
