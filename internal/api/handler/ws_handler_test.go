package handler

import (
	"Mentora/internal/api/dto"
	"Mentora/internal/pkg/security"
	"Mentora/internal/pkg/ws"
	"Mentora/internal/service"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func setupWsServer(t *testing.T, svc service.ChatService) (*httptest.Server, *ws.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	registry := ws.NewRegistry()
	h := NewWsHandler(svc, registry, 16)

	r := gin.New()
	r.GET("/ws", h.Connect)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, registry
}

func dialWs(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) ws.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	evt, err := ws.DecodeEvent(raw)
	require.NoError(t, err)
	return evt
}

func writeEvent(t *testing.T, conn *websocket.Conn, eventType string, payload any) {
	t.Helper()
	evt, err := ws.NewEvent(eventType, payload)
	require.NoError(t, err)
	raw, err := evt.Encode()
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, raw))
}

func decodeErrorMessage(t *testing.T, evt ws.Event) string {
	t.Helper()
	var msg string
	require.NoError(t, json.Unmarshal(evt.Data, &msg))
	return msg
}

func TestWsHandler_Authenticate_Acks_And_Binds(t *testing.T) {
	req := require.New(t)
	srv, registry := setupWsServer(t, &stubChatService{})
	conn := dialWs(t, srv, "")

	// Given a fresh connection, nobody is online
	req.False(registry.Online("alice"))

	writeEvent(t, conn, ws.EventAuthenticate, dto.AuthenticateReq{UserID: "alice"})

	evt := readEvent(t, conn)
	req.Equal(ws.EventAuthenticated, evt.Type)
	var ack dto.AuthenticatedDTO
	req.NoError(json.Unmarshal(evt.Data, &ack))
	req.Equal("alice", ack.UserID)
	req.True(registry.Online("alice"))
}

func TestWsHandler_Authenticate_Empty_UserId_Is_Rejected(t *testing.T) {
	req := require.New(t)
	srv, registry := setupWsServer(t, &stubChatService{})
	conn := dialWs(t, srv, "")

	writeEvent(t, conn, ws.EventAuthenticate, dto.AuthenticateReq{UserID: ""})

	evt := readEvent(t, conn)
	req.Equal(ws.EventError, evt.Type)
	req.Equal(service.ErrParamInvalid.Error(), decodeErrorMessage(t, evt))
	req.Empty(registry.Sessions())
}

func TestWsHandler_MarkAsRead_Before_Authenticate_Is_Rejected(t *testing.T) {
	req := require.New(t)
	svc := &stubChatService{}
	srv, _ := setupWsServer(t, svc)
	conn := dialWs(t, srv, "")

	// When marking read without ever authenticating
	writeEvent(t, conn, ws.EventMarkAsRead, dto.MarkAsReadReq{MessageIDs: []string{"m1"}})

	// Then the connection stays up and gets an error event, the service is never reached
	evt := readEvent(t, conn)
	req.Equal(ws.EventError, evt.Type)
	req.Equal(service.ErrUnauthenticated.Error(), decodeErrorMessage(t, evt))
	req.Empty(svc.markUser)
}

func TestWsHandler_MarkAsRead_After_Authenticate_Returns_Receipt(t *testing.T) {
	req := require.New(t)
	svc := &stubChatService{markRes: &dto.MarkedReadDTO{MessageIDs: []string{"m1"}}}
	srv, _ := setupWsServer(t, svc)
	conn := dialWs(t, srv, "")

	writeEvent(t, conn, ws.EventAuthenticate, dto.AuthenticateReq{UserID: "alice"})
	req.Equal(ws.EventAuthenticated, readEvent(t, conn).Type)

	writeEvent(t, conn, ws.EventMarkAsRead, dto.MarkAsReadReq{MessageIDs: []string{"m1", "m2"}})

	evt := readEvent(t, conn)
	req.Equal(ws.EventMessagesMarkedRead, evt.Type)
	var receipt dto.MarkedReadDTO
	req.NoError(json.Unmarshal(evt.Data, &receipt))
	req.Equal([]string{"m1"}, receipt.MessageIDs)
	req.Equal("alice", svc.markUser)
	req.Equal([]string{"m1", "m2"}, svc.markIDs)
}

func TestWsHandler_Token_Query_Prebinds_Connection(t *testing.T) {
	req := require.New(t)
	srv, registry := setupWsServer(t, &stubChatService{})
	token, err := security.GenerateToken("carol", "mentee")
	req.NoError(err)

	conn := dialWs(t, srv, "?token="+token)

	// The connection is bound without any authenticate event
	evt := readEvent(t, conn)
	req.Equal(ws.EventAuthenticated, evt.Type)
	var ack dto.AuthenticatedDTO
	req.NoError(json.Unmarshal(evt.Data, &ack))
	req.Equal("carol", ack.UserID)
	req.True(registry.Online("carol"))
}

func TestWsHandler_Invalid_Token_Leaves_Connection_Unbound(t *testing.T) {
	req := require.New(t)
	srv, registry := setupWsServer(t, &stubChatService{})
	conn := dialWs(t, srv, "?token=garbage")

	// The connection survives, stays unbound, and can still authenticate
	writeEvent(t, conn, ws.EventAuthenticate, dto.AuthenticateReq{UserID: "alice"})

	evt := readEvent(t, conn)
	req.Equal(ws.EventAuthenticated, evt.Type)
	req.True(registry.Online("alice"))
}

func TestWsHandler_Malformed_Frame_Gets_Error_Event(t *testing.T) {
	req := require.New(t)
	srv, _ := setupWsServer(t, &stubChatService{})
	conn := dialWs(t, srv, "")

	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	evt := readEvent(t, conn)
	req.Equal(ws.EventError, evt.Type)
	req.Equal(service.ErrParamInvalid.Error(), decodeErrorMessage(t, evt))
}

func TestWsHandler_Unknown_Event_Type_Gets_Error_Event(t *testing.T) {
	req := require.New(t)
	srv, _ := setupWsServer(t, &stubChatService{})
	conn := dialWs(t, srv, "")

	writeEvent(t, conn, "subscribe", map[string]string{"channel": "news"})

	evt := readEvent(t, conn)
	req.Equal(ws.EventError, evt.Type)
}

func TestWsHandler_Send_Error_Is_Surfaced_As_Error_Event(t *testing.T) {
	req := require.New(t)
	svc := &stubChatService{err: service.ErrUnauthenticated}
	srv, _ := setupWsServer(t, svc)
	conn := dialWs(t, srv, "")

	writeEvent(t, conn, ws.EventSendMessage, dto.SendMessageReq{ReceiverID: "bob", Content: "hi"})

	evt := readEvent(t, conn)
	req.Equal(ws.EventError, evt.Type)
	req.Equal(service.ErrUnauthenticated.Error(), decodeErrorMessage(t, evt))
}

func TestWsHandler_Disconnect_Unbinds_From_Registry(t *testing.T) {
	req := require.New(t)
	srv, registry := setupWsServer(t, &stubChatService{})
	conn := dialWs(t, srv, "")

	writeEvent(t, conn, ws.EventAuthenticate, dto.AuthenticateReq{UserID: "alice"})
	req.Equal(ws.EventAuthenticated, readEvent(t, conn).Type)

	req.NoError(conn.Close())

	req.Eventually(func() bool {
		return !registry.Online("alice")
	}, 2*time.Second, 10*time.Millisecond)
}
