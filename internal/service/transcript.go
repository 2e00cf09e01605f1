package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roberta039/avocat-onrc/internal/domain"
	"github.com/roberta039/avocat-onrc/internal/repository"
)

// TranscriptService incapsuleaza jurnalul conversatiei. Politica de
// persistenta: textul asistentului se salveaza brut si se curata la fiecare
// citire, ca exportul si redarea sa vada acelasi lucru.
type TranscriptService struct {
	repo repository.MessageRepository
}

var (
	ErrTranscriptNotConfigured = errors.New("transcript service not configured")
	ErrTranscriptInvalidInput  = errors.New("transcript invalid input")
)

func NewTranscriptService(repo repository.MessageRepository) *TranscriptService {
	return &TranscriptService{repo: repo}
}

// Append inregistreaza durabil o tura cu timestamp proaspat. Esecul de
// storage se propaga nealterat: un append esuat nu e niciodata raportat ca
// reusit.
func (s *TranscriptService) Append(ctx context.Context, sessionID, role, content string) (domain.Message, error) {
	if s == nil || s.repo == nil {
		return domain.Message{}, ErrTranscriptNotConfigured
	}

	sessionID = strings.TrimSpace(sessionID)
	role = strings.TrimSpace(role)

	if sessionID == "" || content == "" {
		return domain.Message{}, ErrTranscriptInvalidInput
	}
	if role != domain.RoleUser && role != domain.RoleAssistant {
		return domain.Message{}, ErrTranscriptInvalidInput
	}

	msg := domain.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return domain.Message{}, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}

// History intoarce transcriptul in ordinea crescatoare a timestamp-urilor,
// cu textul asistentului deja curatat. Sesiune necunoscuta = lista goala.
func (s *TranscriptService) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	if s == nil || s.repo == nil {
		return nil, ErrTranscriptNotConfigured
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return []domain.Message{}, nil
	}

	messages, err := s.repo.ListBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	for i := range messages {
		if messages[i].Role == domain.RoleAssistant {
			messages[i].Content = CleanResponse(messages[i].Content)
		}
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// Clear sterge transcriptul dosarului; idempotent.
func (s *TranscriptService) Clear(ctx context.Context, sessionID string) error {
	if s == nil || s.repo == nil {
		return ErrTranscriptNotConfigured
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}
	if err := s.repo.DeleteBySessionID(ctx, sessionID); err != nil {
		return fmt.Errorf("clear transcript: %w", err)
	}
	return nil
}
