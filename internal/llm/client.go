package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/roberta039/avocat-onrc/internal/domain"
)

// Generator defineste interfata pentru o tura de generare cu raspuns in flux.
// Fragmentele ajung la onFragment exact in ordinea emisa de provider; orice
// eroare a callback-ului opreste consumul si esueaza tura.
type Generator interface {
	GenerateStream(ctx context.Context, req Request, onFragment func(string) error) (Result, error)
}

// Uploader defineste canalul secundar de fisiere al providerului.
type Uploader interface {
	Upload(ctx context.Context, displayName, mimeType string, data []byte) (domain.Attachment, error)
	State(ctx context.Context, remoteID string) (domain.AttachmentState, error)
}

// Request este intrarea asamblata pentru o tura: istoricul fara tura curenta,
// actele inregistrate si textul utilizatorului.
type Request struct {
	History     []domain.Message
	Attachments []domain.Attachment
	UserText    string
}

// Result descrie tura incheiata: textul brut acumulat si daca providerul a
// raportat metadata de grounding (cautare web folosita).
type Result struct {
	Text     string
	Grounded bool
}

// GeminiClient implementeaza Generator si Uploader peste SDK-ul genai.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) GenerateStream(ctx context.Context, req Request, onFragment func(string) error) (Result, error) {
	contents := BuildContents(req.History, req.Attachments, req.UserText)

	var buf bytes.Buffer
	var grounded bool

	for resp, err := range c.client.Models.GenerateContentStream(ctx, c.model, contents, GenerateConfig()) {
		if err != nil {
			return Result{}, mapGenerateError(ctx, err)
		}
		if blocked(resp) {
			return Result{}, domain.ErrContentBlocked
		}
		if len(resp.Candidates) > 0 && resp.Candidates[0].GroundingMetadata != nil {
			grounded = true
		}
		fragment := resp.Text()
		if fragment == "" {
			continue
		}
		buf.WriteString(fragment)
		if err := onFragment(fragment); err != nil {
			return Result{}, err
		}
	}

	return Result{Text: buf.String(), Grounded: grounded}, nil
}

func (c *GeminiClient) Upload(ctx context.Context, displayName, mimeType string, data []byte) (domain.Attachment, error) {
	file, err := c.client.Files.Upload(ctx, bytes.NewReader(data), &genai.UploadFileConfig{
		DisplayName: displayName,
		MIMEType:    mimeType,
	})
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("upload file: %w", err)
	}
	return domain.Attachment{
		Kind:        domain.AttachmentRemote,
		DisplayName: displayName,
		MIMEType:    mimeType,
		RemoteID:    file.Name,
		URI:         file.URI,
		State:       mapFileState(file.State),
	}, nil
}

func (c *GeminiClient) State(ctx context.Context, remoteID string) (domain.AttachmentState, error) {
	file, err := c.client.Files.Get(ctx, remoteID, nil)
	if err != nil {
		return domain.AttachmentFailed, fmt.Errorf("get file state: %w", err)
	}
	return mapFileState(file.State), nil
}

func mapFileState(state genai.FileState) domain.AttachmentState {
	switch state {
	case genai.FileStateActive:
		return domain.AttachmentReady
	case genai.FileStateFailed:
		return domain.AttachmentFailed
	default:
		return domain.AttachmentPending
	}
}

func blocked(resp *genai.GenerateContentResponse) bool {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		return true
	}
	for _, cand := range resp.Candidates {
		if cand.FinishReason == genai.FinishReasonSafety {
			return true
		}
	}
	return false
}

func mapGenerateError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrGenerationTimeout, err)
	}
	return fmt.Errorf("generate content stream: %w", err)
}
