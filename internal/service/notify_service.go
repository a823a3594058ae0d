package service

import (
	"Mentora/internal/api/config"
	"Mentora/internal/pkg/util"
	"context"
	log "log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// NotifyService 接收方不在线时的离线触达，尽力而为，失败只记日志
type NotifyService interface {
	NotifyOffline(receiverID, senderID, content string)
}

type NotifyServiceImpl struct {
	client     *resty.Client
	webhookURL string
}

func NewNotifyService(cfg config.NotifyConfig) NotifyService {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2)

	return &NotifyServiceImpl{
		client:     client,
		webhookURL: cfg.WebhookURL,
	}
}

func (s *NotifyServiceImpl) NotifyOffline(receiverID, senderID, content string) {
	if s.webhookURL == "" {
		return
	}

	body := map[string]string{
		"receiverId": receiverID,
		"senderId":   senderID,
		"preview":    util.TruncateRunes(content, 60),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		resp, err := s.client.R().
			SetContext(ctx).
			SetBody(body).
			Post(s.webhookURL)
		if err != nil {
			log.Warn("离线通知发送失败", "receiver", receiverID, "err", err)
			return
		}
		if resp.IsError() {
			log.Warn("离线通知被拒绝", "receiver", receiverID, "status", resp.StatusCode())
		}
	}()
}
