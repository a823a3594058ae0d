package service

import (
	"Mentora/internal/api/dto"
	"Mentora/internal/pkg/consts"
	"Mentora/internal/pkg/mongo"
	"Mentora/internal/pkg/util"
	"Mentora/internal/pkg/ws"
	"context"
	"errors"
	log "log/slog"

	"github.com/jinzhu/copier"
)

// Presence 投递路由对在线登记表的依赖
type Presence interface {
	BoundID(sess ws.Session) string
	ConnectionsFor(userID string) []ws.Session
	Online(userID string) bool
}

type ChatService interface {
	// Send 持久化消息并按接收方在线状态路由：在线推送、离线走触达
	Send(ctx context.Context, sess ws.Session, req *dto.SendMessageReq) (*dto.MessageDTO, error)
	History(ctx context.Context, userID, contactID string) ([]*dto.MessageDTO, error)
	MarkAsRead(ctx context.Context, forUser string, messageIDs []string) (*dto.MarkedReadDTO, error)
	RecentChats(ctx context.Context, userID string) ([]*dto.RecentChatDTO, error)
	Contacts(ctx context.Context) ([]*dto.ContactDTO, error)
}

type ChatServiceImpl struct {
	messageRepo    mongo.ChatMessageRepo
	presence       Presence
	contactService ContactService
	notifyService  NotifyService
}

func NewChatService(
	messageRepo mongo.ChatMessageRepo,
	presence Presence,
	contactService ContactService,
	notifyService NotifyService,
) ChatService {
	return &ChatServiceImpl{
		messageRepo:    messageRepo,
		presence:       presence,
		contactService: contactService,
		notifyService:  notifyService,
	}
}

func (s *ChatServiceImpl) Send(ctx context.Context, sess ws.Session, req *dto.SendMessageReq) (*dto.MessageDTO, error) {
	senderID := s.presence.BoundID(sess)
	if senderID == "" {
		return nil, ErrUnauthenticated
	}
	if err := util.ValidateDTO(req); err != nil {
		return nil, ErrParamInvalid
	}

	msg, err := s.messageRepo.Append(ctx, senderID, req.ReceiverID, req.Content)
	if err != nil {
		if errors.Is(err, mongo.ErrInvalidMessage) {
			return nil, ErrParamInvalid
		}
		// 落库失败不产生任何投递事件
		log.Error("消息持久化失败", "sender", senderID, "receiver", req.ReceiverID, "err", err)
		return nil, ErrPersistence
	}

	messageDTO := toMessageDTO(msg)

	// message_sent 回执只发回发起本次发送的那条连接
	if ackEvt, err := ws.NewEvent(ws.EventMessageSent, messageDTO); err == nil {
		sess.Send(ackEvt)
	}

	// 接收方在线则逐连接推送，不在线转离线触达
	conns := s.presence.ConnectionsFor(req.ReceiverID)
	if len(conns) == 0 {
		s.notifyService.NotifyOffline(req.ReceiverID, senderID, req.Content)
		return messageDTO, nil
	}
	if pushEvt, err := ws.NewEvent(ws.EventNewMessage, messageDTO); err == nil {
		for _, conn := range conns {
			conn.Send(pushEvt)
		}
	}
	return messageDTO, nil
}

func (s *ChatServiceImpl) History(ctx context.Context, userID, contactID string) ([]*dto.MessageDTO, error) {
	if userID == "" || contactID == "" {
		return nil, ErrParamInvalid
	}

	messages, err := s.messageRepo.History(ctx, userID, contactID)
	if err != nil {
		log.Error("拉取历史消息失败", "user", userID, "contact", contactID, "err", err)
		return nil, ErrPersistence
	}

	messageDTOList := make([]*dto.MessageDTO, 0, len(messages))
	for _, msg := range messages {
		messageDTOList = append(messageDTOList, toMessageDTO(msg))
	}
	return messageDTOList, nil
}

// MarkAsRead 只接受属于 forUser 收件箱的消息 id，返回实际生效的子集
func (s *ChatServiceImpl) MarkAsRead(ctx context.Context, forUser string, messageIDs []string) (*dto.MarkedReadDTO, error) {
	if forUser == "" {
		return nil, ErrMissingIdentity
	}
	if len(messageIDs) == 0 {
		return nil, ErrParamInvalid
	}

	accepted, err := s.messageRepo.MarkRead(ctx, forUser, messageIDs)
	if err != nil {
		log.Error("标记已读失败", "user", forUser, "err", err)
		return nil, ErrPersistence
	}
	return &dto.MarkedReadDTO{MessageIDs: accepted}, nil
}

// RecentChats 折叠出每个对端的最近一条消息，并带上未读数与通讯录信息
func (s *ChatServiceImpl) RecentChats(ctx context.Context, userID string) ([]*dto.RecentChatDTO, error) {
	if userID == "" {
		return nil, ErrMissingIdentity
	}

	messages, err := s.messageRepo.ListByParticipant(ctx, userID)
	if err != nil {
		log.Error("拉取会话消息失败", "user", userID, "err", err)
		return nil, ErrPersistence
	}

	// messages 已按时间降序，每个对端只保留遇到的第一条
	chats := make([]*dto.RecentChatDTO, 0)
	seen := make(map[string]struct{})
	for _, msg := range messages {
		contactID := msg.SenderID
		if contactID == userID {
			contactID = msg.ReceiverID
		}
		if _, ok := seen[contactID]; ok {
			continue
		}
		seen[contactID] = struct{}{}

		unread, err := s.messageRepo.UnreadCount(ctx, userID, contactID)
		if err != nil {
			log.Error("统计未读数失败", "user", userID, "contact", contactID, "err", err)
			return nil, ErrPersistence
		}

		chats = append(chats, &dto.RecentChatDTO{
			ContactID:       contactID,
			LastMessage:     msg.Content,
			LastMessageTime: msg.Timestamp,
			Read:            msg.Read,
			UnreadCount:     unread,
		})
	}

	if len(chats) == 0 {
		return chats, nil
	}

	// 通讯录信息只做锦上添花，查不到就降级为裸 id
	ids := make([]string, 0, len(chats))
	for _, chat := range chats {
		ids = append(ids, chat.ContactID)
	}
	contactMap, err := s.contactService.GetContactsByIds(ctx, ids)
	if err != nil {
		log.Warn("通讯录补全失败，会话列表降级返回", "user", userID, "err", err)
		return chats, nil
	}
	for _, chat := range chats {
		if contact, ok := contactMap[chat.ContactID]; ok {
			chat.ContactName = contact.Name
			chat.ContactEmail = contact.Email
		}
	}
	return chats, nil
}

// Contacts 通讯录全量列表，附带实时在线状态
func (s *ChatServiceImpl) Contacts(ctx context.Context) ([]*dto.ContactDTO, error) {
	contacts, err := s.contactService.ListContacts(ctx)
	if err != nil {
		log.Error("拉取通讯录失败", "err", err)
		return nil, ErrPersistence
	}
	for _, contact := range contacts {
		if s.presence.Online(contact.ID) {
			contact.Status = consts.ContactStatusOnline
		} else {
			contact.Status = consts.ContactStatusOffline
		}
	}
	return contacts, nil
}

func toMessageDTO(msg *mongo.ChatMessage) *dto.MessageDTO {
	messageDTO := &dto.MessageDTO{}
	_ = copier.Copy(messageDTO, msg)
	messageDTO.ID = msg.ID.Hex()
	return messageDTO
}
