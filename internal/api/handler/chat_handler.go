package handler

import (
	"Mentora/internal/api/dto"
	"Mentora/internal/pkg/response"
	"Mentora/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler 实时通道之外的 REST 兜底接口
type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// 带合法 Token 的请求以 Token 身份为准，否则回退到调用方自报的身份
func resolveUserID(c *gin.Context, fallback string) string {
	if userID := c.GetString("user_id"); userID != "" {
		return userID
	}
	return fallback
}

// GetMessages 拉取与某个联系人的全部历史消息，按时间升序
func (s *ChatHandler) GetMessages(c *gin.Context) {
	userID := resolveUserID(c, c.Query("userId"))
	contactID := c.Query("contactId")

	res, err := s.chatService.History(c.Request.Context(), userID, contactID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"messages": res})
}

// MarkRead 标记已读接口，返回实际生效的消息 id
func (s *ChatHandler) MarkRead(c *gin.Context) {
	var req dto.MarkAsReadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	userID := resolveUserID(c, req.UserID)

	res, err := s.chatService.MarkAsRead(c.Request.Context(), userID, req.MessageIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// RecentChats 获取会话列表
func (s *ChatHandler) RecentChats(c *gin.Context) {
	userID := resolveUserID(c, c.Query("userId"))

	res, err := s.chatService.RecentChats(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"recentChats": res})
}

// Contacts 获取通讯录，附带实时在线状态
func (s *ChatHandler) Contacts(c *gin.Context) {
	res, err := s.chatService.Contacts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"contacts": res})
}
