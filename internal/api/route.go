package api

import (
	"Mentora/internal/api/middleware"
	"Mentora/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		chatGroup := apiGroup.Group("/chat")
		{
			// 实时通道，认证在连接内部完成
			chatGroup.GET("/ws", group.WSHandler.Connect)

			restGroup := chatGroup.Group("")
			restGroup.Use(middleware.AuthOptionalMiddleware())
			{
				restGroup.GET("/messages", group.ChatHandler.GetMessages)
				restGroup.POST("/mark-read", group.ChatHandler.MarkRead)
				restGroup.GET("/recent", group.ChatHandler.RecentChats)
				restGroup.GET("/contacts", group.ChatHandler.Contacts)
			}
		}
	}

	return r
}
