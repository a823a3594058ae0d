package wire

import (
	"Mentora/internal/api"
	"Mentora/internal/api/config"
	"Mentora/internal/api/handler"
	"Mentora/internal/job"
	"Mentora/internal/pkg/cron"
	"Mentora/internal/pkg/mongo"
	"Mentora/internal/pkg/ws"
	"Mentora/internal/repository"
	"Mentora/internal/service"
	"context"
	"time"

	"github.com/gin-gonic/gin"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router  *gin.Engine
	DB      *gorm.DB
	CronMgr *cron.Manager
}

func BuildApplication(db *gorm.DB, mongoDB *mongodriver.Database, cfg *config.Config) (*ApplicationContainer, error) {
	messageRepo := mongo.NewChatMessageRepo(mongoDB)
	contactRepo := repository.NewContactRepo(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := messageRepo.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	registry := ws.NewRegistry()

	contactService := service.NewContactService(contactRepo)
	notifyService := service.NewNotifyService(cfg.Notify)
	chatService := service.NewChatService(messageRepo, registry, contactService, notifyService)

	handlers := &api.HandlersGroup{
		ChatHandler: handler.NewChatHandler(chatService),
		WSHandler:   handler.NewWsHandler(chatService, registry, cfg.Chat.SendBuffer),
	}

	router := api.SetupRouter(handlers)

	presenceSweepJob := job.NewPresenceSweepJob(registry)
	cronMgr := cron.NewCronManager(presenceSweepJob, cfg.Chat.SweepSpec)

	return &ApplicationContainer{
		Router:  router,
		DB:      db,
		CronMgr: cronMgr,
	}, nil
}
