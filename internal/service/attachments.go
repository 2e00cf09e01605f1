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
	"github.com/roberta039/avocat-onrc/internal/repository"
)

// AttachmentService administreaza actele unui dosar: inregistrare cu
// rejectarea duplicatelor, urcarea in storage-ul providerului si polling
// marginit pe starea de procesare.
type AttachmentService struct {
	store    repository.AttachmentStore
	uploader llm.Uploader
	logger   *zap.Logger

	pollInterval time.Duration
	maxAttempts  int
}

var ErrAttachmentInvalidInput = errors.New("attachment invalid input")

func NewAttachmentService(
	store repository.AttachmentStore,
	uploader llm.Uploader,
	logger *zap.Logger,
	pollInterval time.Duration,
	maxAttempts int,
) *AttachmentService {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 60
	}
	return &AttachmentService{
		store:        store,
		uploader:     uploader,
		logger:       logger,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
	}
}

// Register urca un act si il inregistreaza in dosar. Un nume deja folosit
// intoarce ErrDuplicateAttachment si lasa registrul neschimbat.
func (s *AttachmentService) Register(ctx context.Context, sessionID, displayName, mimeType string, data []byte) (domain.Attachment, error) {
	sessionID = strings.TrimSpace(sessionID)
	displayName = strings.TrimSpace(displayName)
	if sessionID == "" || displayName == "" || len(data) == 0 {
		return domain.Attachment{}, ErrAttachmentInvalidInput
	}

	exists, err := s.store.Exists(ctx, sessionID, displayName)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("check duplicate: %w", err)
	}
	if exists {
		return domain.Attachment{}, domain.ErrDuplicateAttachment
	}

	att, err := s.uploader.Upload(ctx, displayName, mimeType, data)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	att, err = s.awaitProcessed(ctx, att)
	if err != nil {
		return domain.Attachment{}, err
	}
	att.CreatedAt = time.Now().UTC()

	if err := s.store.Put(ctx, sessionID, att); err != nil {
		return domain.Attachment{}, fmt.Errorf("persist attachment: %w", err)
	}

	s.logger.Info("attachment registered",
		zap.String("session_id", sessionID),
		zap.String("display_name", displayName),
		zap.String("remote_id", att.RemoteID),
	)
	return att, nil
}

// awaitProcessed asteapta iesirea din starea pending, cel mult maxAttempts
// interogari. Originalul facea polling nemarginit; aici exhaustarea devine
// ErrUploadTimeout.
func (s *AttachmentService) awaitProcessed(ctx context.Context, att domain.Attachment) (domain.Attachment, error) {
	for attempt := 0; att.State == domain.AttachmentPending; attempt++ {
		if attempt >= s.maxAttempts {
			return domain.Attachment{}, fmt.Errorf("%w: %q after %d polls", domain.ErrUploadTimeout, att.DisplayName, attempt)
		}
		select {
		case <-ctx.Done():
			return domain.Attachment{}, fmt.Errorf("%w: %v", domain.ErrUploadTimeout, ctx.Err())
		case <-time.After(s.pollInterval):
		}
		state, err := s.uploader.State(ctx, att.RemoteID)
		if err != nil {
			return domain.Attachment{}, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
		}
		att.State = state
	}

	if att.State == domain.AttachmentFailed {
		return domain.Attachment{}, fmt.Errorf("%w: %q", domain.ErrUploadFailed, att.DisplayName)
	}
	return att, nil
}

// FileInput este un act dintr-un lot de upload.
type FileInput struct {
	Name     string
	MIMEType string
	Data     []byte
}

// RegisterResult este rezultatul per-fisier al unui lot.
type RegisterResult struct {
	Name       string
	Attachment domain.Attachment
	Err        error
}

// RegisterBatch proceseaza fisierele independent: esecul unuia nu opreste
// restul lotului.
func (s *AttachmentService) RegisterBatch(ctx context.Context, sessionID string, files []FileInput) []RegisterResult {
	results := make([]RegisterResult, 0, len(files))
	for _, f := range files {
		att, err := s.Register(ctx, sessionID, f.Name, f.MIMEType, f.Data)
		if err != nil {
			s.logger.Warn("attachment rejected",
				zap.String("session_id", sessionID),
				zap.String("display_name", f.Name),
				zap.Error(err),
			)
		}
		results = append(results, RegisterResult{Name: f.Name, Attachment: att, Err: err})
	}
	return results
}

// List intoarce actele dosarului, fara ordine garantata.
func (s *AttachmentService) List(ctx context.Context, sessionID string) ([]domain.Attachment, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return []domain.Attachment{}, nil
	}
	atts, err := s.store.List(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	if atts == nil {
		atts = []domain.Attachment{}
	}
	return atts, nil
}

// Remove scoate un act din dosar dupa nume; idempotent. Referinta remote
// ramane la provider pana la expirarea ei.
func (s *AttachmentService) Remove(ctx context.Context, sessionID, displayName string) error {
	sessionID = strings.TrimSpace(sessionID)
	displayName = strings.TrimSpace(displayName)
	if sessionID == "" || displayName == "" {
		return ErrAttachmentInvalidInput
	}
	if err := s.store.Remove(ctx, sessionID, displayName); err != nil {
		return fmt.Errorf("remove attachment: %w", err)
	}
	s.logger.Info("attachment removed",
		zap.String("session_id", sessionID),
		zap.String("display_name", displayName),
	)
	return nil
}

// Clear goleste dosarul; idempotent.
func (s *AttachmentService) Clear(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clear attachments: %w", err)
	}
	return nil
}
