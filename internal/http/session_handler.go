package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roberta039/avocat-onrc/internal/domain"
	"github.com/roberta039/avocat-onrc/internal/repository"
	"github.com/roberta039/avocat-onrc/internal/service"
)

// SessionHandler expune ciclul de viata al dosarului: creare si reset.
type SessionHandler struct {
	logger      *zap.Logger
	sessions    repository.SessionRepository
	transcript  *service.TranscriptService
	attachments *service.AttachmentService
}

func NewSessionHandler(
	logger *zap.Logger,
	sessions repository.SessionRepository,
	transcript *service.TranscriptService,
	attachments *service.AttachmentService,
) *SessionHandler {
	return &SessionHandler{
		logger:      logger,
		sessions:    sessions,
		transcript:  transcript,
		attachments: attachments,
	}
}

// CreateSession gestioneaza POST /session. Clientul pune id-ul in URL ca
// reload-ul sa reatasheze acelasi dosar.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	session := domain.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	if err := h.sessions.Create(c.Request.Context(), session); err != nil {
		h.logger.Error("create session failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// ResetSession gestioneaza POST /session/reset: sterge transcriptul si
// actele dosarului. Idempotent.
func (h *SessionHandler) ResetSession(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	if err := h.transcript.Clear(c.Request.Context(), sessionID); err != nil {
		h.logger.Error("clear transcript failed", zap.Error(err), zap.String("session_id", sessionID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reset session"})
		return
	}
	if err := h.attachments.Clear(c.Request.Context(), sessionID); err != nil {
		h.logger.Error("clear attachments failed", zap.Error(err), zap.String("session_id", sessionID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reset session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "reset": true})
}
