package job

import (
	"Mentora/internal/pkg/ws"
	log "log/slog"
)

// PresenceSweepJob 定期探活所有已绑定连接，清理对端已死的残留
type PresenceSweepJob struct {
	registry *ws.Registry
}

func NewPresenceSweepJob(registry *ws.Registry) *PresenceSweepJob {
	return &PresenceSweepJob{registry: registry}
}

func (s *PresenceSweepJob) Run() {
	sessions := s.registry.Sessions()
	count := 0

	for _, sess := range sessions {
		if err := sess.Ping(); err != nil {
			s.registry.Deauthenticate(sess)
			sess.Close()
			count++
		}
	}

	if count > 0 {
		log.Info("presence sweep job finished", "swept_count", count)
	}
}
