package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/roberta039/avocat-onrc/internal/domain"
	"github.com/roberta039/avocat-onrc/internal/llm"
)

// DisplaySink primeste fluxul de afisare: fragmentele incrementale in ordinea
// providerului, apoi o singura actualizare finala cu textul curatat.
type DisplaySink interface {
	Fragment(text string) error
	Final(text string) error
}

// Fazele unei ture de generare, raportate in logurile de tura.
type turnPhase string

const (
	phaseRequesting turnPhase = "requesting"
	phaseStreaming  turnPhase = "streaming"
	phaseCommitted  turnPhase = "committed"
	phaseFailed     turnPhase = "failed"
)

// ChatService conduce o tura cerere/raspuns: persista tura utilizatorului,
// asambleaza payload-ul din transcript si acte, consuma fluxul de fragmente
// si comite raspunsul. Orice eroare remote descarca acumulatorul fara commit.
type ChatService struct {
	generator   llm.Generator
	transcript  *TranscriptService
	attachments *AttachmentService
	logger      *zap.Logger
	timeout     time.Duration
}

var ErrChatInvalidInput = errors.New("chat invalid input")

func NewChatService(
	generator llm.Generator,
	transcript *TranscriptService,
	attachments *AttachmentService,
	logger *zap.Logger,
	timeout time.Duration,
) *ChatService {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &ChatService{
		generator:   generator,
		transcript:  transcript,
		attachments: attachments,
		logger:      logger,
		timeout:     timeout,
	}
}

// TurnResult descrie o tura comisa.
type TurnResult struct {
	UserMessage      domain.Message `json:"user_message"`
	AssistantMessage domain.Message `json:"assistant_message"`
	Grounded         bool           `json:"grounded"`
}

// Send ruleaza o tura completa. Ordinea e stricta: intai append-ul durabil al
// turei utilizatorului, apoi asamblarea din ce e in store.
func (s *ChatService) Send(ctx context.Context, sessionID, text string, sink DisplaySink) (TurnResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	text = strings.TrimSpace(text)
	if sessionID == "" || text == "" {
		return TurnResult{}, ErrChatInvalidInput
	}

	userMsg, err := s.transcript.Append(ctx, sessionID, domain.RoleUser, text)
	if err != nil {
		return TurnResult{}, err
	}

	history, err := s.transcript.History(ctx, sessionID)
	if err != nil {
		return TurnResult{}, err
	}
	// Tura abia comisa este ultima din transcript; payload-ul o primeste
	// separat, ca text curent.
	if n := len(history); n > 0 && history[n-1].ID == userMsg.ID {
		history = history[:n-1]
	}

	atts, err := s.attachments.List(ctx, sessionID)
	if err != nil {
		return TurnResult{}, err
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	phase := phaseRequesting
	result, err := s.generator.GenerateStream(genCtx, llm.Request{
		History:     history,
		Attachments: atts,
		UserText:    text,
	}, func(fragment string) error {
		phase = phaseStreaming
		return sink.Fragment(fragment)
	})
	if err != nil {
		phase = phaseFailed
		s.logger.Error("generation failed",
			zap.String("session_id", sessionID),
			zap.String("phase", string(phase)),
			zap.Error(err),
		)
		return TurnResult{}, mapTurnError(genCtx, err)
	}

	// Commit: raspunsul se persista brut, o singura data; efectele secundare
	// (export, audio) ruleaza doar dupa acest punct, la apelant.
	assistantMsg, err := s.transcript.Append(ctx, sessionID, domain.RoleAssistant, result.Text)
	if err != nil {
		phase = phaseFailed
		s.logger.Error("commit failed",
			zap.String("session_id", sessionID),
			zap.String("phase", string(phase)),
			zap.Error(err),
		)
		return TurnResult{}, err
	}
	phase = phaseCommitted

	cleaned := CleanResponse(result.Text)
	if err := sink.Final(cleaned); err != nil {
		s.logger.Warn("final display update failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}

	s.logger.Info("turn committed",
		zap.String("session_id", sessionID),
		zap.String("phase", string(phase)),
		zap.Bool("grounded", result.Grounded),
		zap.Int("attachments", len(atts)),
	)

	assistantMsg.Content = cleaned
	return TurnResult{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Grounded:         result.Grounded,
	}, nil
}

func mapTurnError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrGenerationTimeout), errors.Is(err, domain.ErrContentBlocked):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", domain.ErrGenerationTimeout, err)
	default:
		return fmt.Errorf("generate response: %w", err)
	}
}
