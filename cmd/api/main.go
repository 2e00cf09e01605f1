package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/roberta039/avocat-onrc/internal/config"
	"github.com/roberta039/avocat-onrc/internal/db"
	apihttp "github.com/roberta039/avocat-onrc/internal/http"
	"github.com/roberta039/avocat-onrc/internal/llm"
	"github.com/roberta039/avocat-onrc/internal/repository"
	"github.com/roberta039/avocat-onrc/internal/service"
	"github.com/roberta039/avocat-onrc/internal/tts"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		// Credential lipsa sau malformat: fatal, fara retry.
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal("db schema", zap.Error(err))
	}

	sessionRepo := repository.NewPgSessionRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)

	attachmentStore := repository.NewMemoryAttachmentStore()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, attachment registry stays in memory", zap.Error(err))
		} else {
			attachmentStore = repository.NewRedisAttachmentStore(redisClient)
		}
		cancel()
	}

	geminiClient, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Fatal("gemini client", zap.Error(err))
	}

	transcriptSvc := service.NewTranscriptService(messageRepo)
	attachmentSvc := service.NewAttachmentService(
		attachmentStore,
		geminiClient,
		logger,
		time.Duration(cfg.UploadPollSeconds)*time.Second,
		cfg.UploadPollMaxAttempts,
	)
	chatSvc := service.NewChatService(
		geminiClient,
		transcriptSvc,
		attachmentSvc,
		logger,
		time.Duration(cfg.LLMTimeoutSeconds)*time.Second,
	)
	speechClient := tts.NewClient(cfg.TTSBaseURL)

	sessionHandler := apihttp.NewSessionHandler(logger, sessionRepo, transcriptSvc, attachmentSvc)
	chatHandler := apihttp.NewChatHandler(logger, sessionRepo, transcriptSvc, chatSvc, speechClient, cfg.TTSLanguage)
	attachmentHandler := apihttp.NewAttachmentHandler(logger, attachmentSvc)
	router := apihttp.NewRouter(logger, sessionHandler, chatHandler, attachmentHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
