package handler

import (
	"Mentora/internal/api/dto"
	"Mentora/internal/pkg/security"
	"Mentora/internal/pkg/util"
	"Mentora/internal/pkg/ws"
	"Mentora/internal/service"
	"context"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WsHandler struct {
	chatService service.ChatService
	registry    *ws.Registry
	sendBuffer  int
}

func NewWsHandler(chatService service.ChatService, registry *ws.Registry, sendBuffer int) *WsHandler {
	return &WsHandler{
		chatService: chatService,
		registry:    registry,
		sendBuffer:  sendBuffer,
	}
}

// Connect 升级 Websocket 并进入事件循环
// 连接建立后默认未绑定身份，须先通过 ?token= 或 authenticate 事件完成认证
func (s *WsHandler) Connect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WS 协议升级失败", "err", err)
		return
	}

	client := ws.NewClient(conn, s.sendBuffer)
	go client.WritePump()
	defer func() {
		s.registry.Deauthenticate(client)
		client.Close()
	}()

	// 携带合法 Token 的连接直接完成绑定，无须再发 authenticate 事件
	if token := c.Query("token"); token != "" {
		if claims, err := security.ValidateToken(token); err == nil {
			s.bind(client, claims.UserID)
		} else {
			log.Warn("WS Token 预认证失败", "err", err)
		}
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Info("WS 连接已断开", "userID", s.registry.BoundID(client))
			return
		}

		evt, err := ws.DecodeEvent(raw)
		if err != nil {
			client.Send(ws.NewErrorEvent(service.ErrParamInvalid.Error()))
			continue
		}
		s.dispatch(client, evt)
	}
}

func (s *WsHandler) dispatch(client *ws.Client, evt ws.Event) {
	switch evt.Type {
	case ws.EventAuthenticate:
		s.handleAuthenticate(client, evt.Data)
	case ws.EventSendMessage:
		s.handleSendMessage(client, evt.Data)
	case ws.EventMarkAsRead:
		s.handleMarkAsRead(client, evt.Data)
	default:
		client.Send(ws.NewErrorEvent("未知事件类型"))
	}
}

func (s *WsHandler) handleAuthenticate(client *ws.Client, data json.RawMessage) {
	var req dto.AuthenticateReq
	if err := json.Unmarshal(data, &req); err != nil || util.ValidateDTO(&req) != nil {
		client.Send(ws.NewErrorEvent(service.ErrParamInvalid.Error()))
		return
	}
	s.bind(client, req.UserID)
}

func (s *WsHandler) bind(client *ws.Client, userID string) {
	s.registry.Authenticate(client, userID)
	if evt, err := ws.NewEvent(ws.EventAuthenticated, dto.AuthenticatedDTO{UserID: userID}); err == nil {
		client.Send(evt)
	}
	log.Info("WS 身份绑定完成", "userID", userID)
}

func (s *WsHandler) handleSendMessage(client *ws.Client, data json.RawMessage) {
	var req dto.SendMessageReq
	if err := json.Unmarshal(data, &req); err != nil {
		client.Send(ws.NewErrorEvent(service.ErrParamInvalid.Error()))
		return
	}

	if _, err := s.chatService.Send(context.Background(), client, &req); err != nil {
		client.Send(ws.NewErrorEvent(err.Error()))
	}
}

func (s *WsHandler) handleMarkAsRead(client *ws.Client, data json.RawMessage) {
	var req dto.MarkAsReadReq
	if err := json.Unmarshal(data, &req); err != nil {
		client.Send(ws.NewErrorEvent(service.ErrParamInvalid.Error()))
		return
	}

	userID := s.registry.BoundID(client)
	if userID == "" {
		client.Send(ws.NewErrorEvent(service.ErrUnauthenticated.Error()))
		return
	}

	res, err := s.chatService.MarkAsRead(context.Background(), userID, req.MessageIDs)
	if err != nil {
		client.Send(ws.NewErrorEvent(err.Error()))
		return
	}
	if evt, err := ws.NewEvent(ws.EventMessagesMarkedRead, res); err == nil {
		client.Send(evt)
	}
}
