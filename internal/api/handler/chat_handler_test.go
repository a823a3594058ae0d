package handler

import (
	"Mentora/internal/api/dto"
	"Mentora/internal/pkg/ws"
	"Mentora/internal/service"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

type stubChatService struct {
	historyUser    string
	historyContact string
	markUser       string
	markIDs        []string
	recentUser     string

	historyRes []*dto.MessageDTO
	markRes    *dto.MarkedReadDTO
	recentRes  []*dto.RecentChatDTO
	contacts   []*dto.ContactDTO
	err        error
}

func (s *stubChatService) Send(ctx context.Context, sess ws.Session, req *dto.SendMessageReq) (*dto.MessageDTO, error) {
	return nil, s.err
}

func (s *stubChatService) History(ctx context.Context, userID, contactID string) ([]*dto.MessageDTO, error) {
	s.historyUser, s.historyContact = userID, contactID
	return s.historyRes, s.err
}

func (s *stubChatService) MarkAsRead(ctx context.Context, forUser string, messageIDs []string) (*dto.MarkedReadDTO, error) {
	s.markUser, s.markIDs = forUser, messageIDs
	return s.markRes, s.err
}

func (s *stubChatService) RecentChats(ctx context.Context, userID string) ([]*dto.RecentChatDTO, error) {
	s.recentUser = userID
	return s.recentRes, s.err
}

func (s *stubChatService) Contacts(ctx context.Context) ([]*dto.ContactDTO, error) {
	return s.contacts, s.err
}

func setupRouter(svc service.ChatService, ctxUserID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewChatHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", ctxUserID)
		c.Next()
	})
	r.GET("/messages", h.GetMessages)
	r.POST("/mark-read", h.MarkRead)
	r.GET("/recent", h.RecentChats)
	r.GET("/contacts", h.Contacts)
	return r
}

func doRequest(r *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) *dto.Response {
	t.Helper()
	var res dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return &res
}

func TestChatHandler_GetMessages_Uses_Query_Identity(t *testing.T) {
	req := require.New(t)
	svc := &stubChatService{historyRes: []*dto.MessageDTO{{ID: "m1", Content: "hi"}}}
	r := setupRouter(svc, "")

	w := doRequest(r, http.MethodGet, "/messages?userId=alice&contactId=bob", nil)

	req.Equal(http.StatusOK, w.Code)
	req.Equal(200, decodeResponse(t, w).Code)
	req.Equal("alice", svc.historyUser)
	req.Equal("bob", svc.historyContact)
}

func TestChatHandler_GetMessages_Token_Identity_Wins(t *testing.T) {
	req := require.New(t)
	svc := &stubChatService{}
	r := setupRouter(svc, "token-user")

	doRequest(r, http.MethodGet, "/messages?userId=impostor&contactId=bob", nil)

	req.Equal("token-user", svc.historyUser)
}

func TestChatHandler_GetMessages_Service_Error_Maps_To_Business_Code(t *testing.T) {
	req := require.New(t)
	svc := &stubChatService{err: service.ErrParamInvalid}
	r := setupRouter(svc, "")

	w := doRequest(r, http.MethodGet, "/messages?userId=alice", nil)

	req.Equal(http.StatusOK, w.Code)
	req.Equal(400, decodeResponse(t, w).Code)
}

func TestChatHandler_MarkRead_Passes_Ids_And_Body_Identity(t *testing.T) {
	req := require.New(t)
	svc := &stubChatService{markRes: &dto.MarkedReadDTO{MessageIDs: []string{"m1"}}}
	r := setupRouter(svc, "")

	w := doRequest(r, http.MethodPost, "/mark-read", dto.MarkAsReadReq{
		MessageIDs: []string{"m1", "m2"},
		UserID:     "bob",
	})

	req.Equal(200, decodeResponse(t, w).Code)
	req.Equal("bob", svc.markUser)
	req.Equal([]string{"m1", "m2"}, svc.markIDs)
}

func TestChatHandler_MarkRead_Empty_Ids_Is_Rejected(t *testing.T) {
	req := require.New(t)
	svc := &stubChatService{}
	r := setupRouter(svc, "")

	w := doRequest(r, http.MethodPost, "/mark-read", map[string]any{"messageIds": []string{}})

	req.Equal(400, decodeResponse(t, w).Code)
	req.Empty(svc.markIDs)
}

func TestChatHandler_RecentChats_Resolves_Identity(t *testing.T) {
	req := require.New(t)
	svc := &stubChatService{recentRes: []*dto.RecentChatDTO{{ContactID: "bob"}}}
	r := setupRouter(svc, "")

	w := doRequest(r, http.MethodGet, "/recent?userId=alice", nil)

	req.Equal(200, decodeResponse(t, w).Code)
	req.Equal("alice", svc.recentUser)
}

func TestChatHandler_Contacts_Returns_List(t *testing.T) {
	req := require.New(t)
	svc := &stubChatService{contacts: []*dto.ContactDTO{{ID: "alice", Status: "online"}}}
	r := setupRouter(svc, "")

	w := doRequest(r, http.MethodGet, "/contacts", nil)

	res := decodeResponse(t, w)
	req.Equal(200, res.Code)
	req.NotNil(res.Data)
}
