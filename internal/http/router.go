package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configureaza routerul Gin cu middleware-uri si rute.
func NewRouter(
	logger *zap.Logger,
	sessionH *SessionHandler,
	chatH *ChatHandler,
	attachmentH *AttachmentHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	r.POST("/session", sessionH.CreateSession)
	r.POST("/session/reset", sessionH.ResetSession)

	r.GET("/chat/history", chatH.GetHistory)
	r.POST("/chat/message", chatH.PostMessage)
	r.GET("/export", chatH.ExportAnswer)

	r.POST("/attachments", attachmentH.Upload)
	r.GET("/attachments", attachmentH.List)
	r.DELETE("/attachments", attachmentH.Delete)

	return r
}

// zapLoggerMiddleware creeaza un middleware simplu de logging cu zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
