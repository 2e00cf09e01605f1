package http

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roberta039/avocat-onrc/internal/domain"
	"github.com/roberta039/avocat-onrc/internal/repository"
	"github.com/roberta039/avocat-onrc/internal/service"
	"github.com/roberta039/avocat-onrc/internal/tts"
)

// ChatHandler expune tura de chat (SSE), istoricul si exportul raspunsului.
type ChatHandler struct {
	logger     *zap.Logger
	sessions   repository.SessionRepository
	transcript *service.TranscriptService
	chat       *service.ChatService
	speech     *tts.Client
	speechLang string
}

func NewChatHandler(
	logger *zap.Logger,
	sessions repository.SessionRepository,
	transcript *service.TranscriptService,
	chat *service.ChatService,
	speech *tts.Client,
	speechLang string,
) *ChatHandler {
	return &ChatHandler{
		logger:     logger,
		sessions:   sessions,
		transcript: transcript,
		chat:       chat,
		speech:     speech,
		speechLang: speechLang,
	}
}

// ensureSession reataseaza dosarul din query param sau creeaza unul nou cand
// parametrul lipseste; id-ul rezultat ajunge inapoi la client. Un id furnizat
// dar necunoscut primeste un rand de sesiune sub acelasi id, ca referinta
// salvata de client sa ramana valida dupa o resetare a bazei.
func (h *ChatHandler) ensureSession(c *gin.Context) (string, error) {
	ctx := c.Request.Context()

	id := c.Query("session_id")
	if id != "" {
		_, err := h.sessions.GetByID(ctx, id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return "", err
		}
	} else {
		id = uuid.NewString()
	}

	session := domain.Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.sessions.Create(ctx, session); err != nil {
		return "", err
	}
	return id, nil
}

// GetHistory gestioneaza GET /chat/history: transcriptul curatat, in ordinea
// adaugarii.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	messages, err := h.transcript.History(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("load history failed", zap.Error(err), zap.String("session_id", sessionID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "messages": messages})
}

// sseSink impinge fragmentele catre client ca evenimente SSE, in ordinea in
// care sosesc.
type sseSink struct {
	c *gin.Context
}

func (s *sseSink) Fragment(text string) error {
	s.c.SSEvent("fragment", gin.H{"text": text})
	s.c.Writer.Flush()
	return nil
}

func (s *sseSink) Final(string) error {
	// Actualizarea finala pleaca in evenimentul done, cu tot cu metadata.
	return nil
}

// PostMessage gestioneaza POST /chat/message. Raspunsul este un flux SSE:
// evenimente fragment, apoi done cu textul curatat, flagul de grounding si
// optional audio; la esec un eveniment error cu un hint de cauza.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
		Speech  bool   `json:"speech"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	sessionID, err := h.ensureSession(c)
	if err != nil {
		h.logger.Error("ensure session failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	result, err := h.chat.Send(c.Request.Context(), sessionID, req.Content, &sseSink{c: c})
	if err != nil {
		h.logger.Error("chat turn failed", zap.Error(err), zap.String("session_id", sessionID))
		c.SSEvent("error", gin.H{
			"error": "could not generate response",
			"kind":  errorKind(err),
		})
		c.Writer.Flush()
		return
	}

	done := gin.H{
		"session_id": sessionID,
		"text":       result.AssistantMessage.Content,
		"grounded":   result.Grounded,
	}

	if req.Speech && h.speech != nil {
		audio, synthErr := h.speech.Synthesize(c.Request.Context(), result.AssistantMessage.Content, h.speechLang)
		if synthErr != nil {
			h.logger.Warn("speech synthesis failed", zap.Error(synthErr), zap.String("session_id", sessionID))
		} else {
			done["audio"] = base64.StdEncoding.EncodeToString(audio)
		}
	}

	c.SSEvent("done", done)
	c.Writer.Flush()
}

// ExportAnswer gestioneaza GET /export: ultimul raspuns al asistentului ca
// document PDF.
func (h *ChatHandler) ExportAnswer(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	messages, err := h.transcript.History(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("load history failed", zap.Error(err), zap.String("session_id", sessionID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
		return
	}

	var answer string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleAssistant {
			answer = messages[i].Content
			break
		}
	}
	if answer == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no assistant answer to export"})
		return
	}

	doc, err := service.BuildPDF(answer)
	if err != nil {
		h.logger.Error("export failed", zap.Error(err), zap.String("session_id", sessionID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not export answer"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="consultanta.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

// errorKind mapeaza taxonomia de erori pe hint-ul afisat utilizatorului;
// timeout-ul sugereaza input mai mic.
func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrGenerationTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrContentBlocked):
		return "blocked"
	default:
		return "generic"
	}
}
