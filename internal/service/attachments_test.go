package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/roberta039/avocat-onrc/internal/domain"
	"github.com/roberta039/avocat-onrc/internal/llm"
	"github.com/roberta039/avocat-onrc/internal/repository"
)

func newAttachmentService(uploader llm.Uploader, maxAttempts int) (*AttachmentService, repository.AttachmentStore) {
	store := repository.NewMemoryAttachmentStore()
	svc := NewAttachmentService(store, uploader, zap.NewNop(), time.Millisecond, maxAttempts)
	return svc, store
}

func readyUploader() *llm.MockUploader {
	return &llm.MockUploader{
		States: map[string][]domain.AttachmentState{
			"files/act.pdf": {domain.AttachmentReady},
		},
	}
}

func TestAttachmentRegister_Succeeds(t *testing.T) {
	svc, _ := newAttachmentService(readyUploader(), 5)

	att, err := svc.Register(context.Background(), "s1", "act.pdf", "application/pdf", []byte("pdf"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if att.Kind != domain.AttachmentRemote {
		t.Fatalf("expected remote attachment, got %q", att.Kind)
	}
	if att.State != domain.AttachmentReady {
		t.Fatalf("expected ready state, got %q", att.State)
	}
	if att.URI == "" || att.RemoteID == "" {
		t.Fatalf("expected remote reference, got %+v", att)
	}
}

func TestAttachmentRegister_DuplicateRejected(t *testing.T) {
	svc, _ := newAttachmentService(readyUploader(), 5)

	if _, err := svc.Register(context.Background(), "s1", "act.pdf", "application/pdf", []byte("pdf")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), "s1", "act.pdf", "application/pdf", []byte("alt")); !errors.Is(err, domain.ErrDuplicateAttachment) {
		t.Fatalf("expected ErrDuplicateAttachment, got %v", err)
	}

	atts, err := svc.List(context.Background(), "s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(atts) != 1 {
		t.Fatalf("registry changed by rejected duplicate: %d entries", len(atts))
	}
}

func TestAttachmentRegister_SameNameAfterClear(t *testing.T) {
	svc, _ := newAttachmentService(readyUploader(), 5)

	if _, err := svc.Register(context.Background(), "s1", "act.pdf", "application/pdf", []byte("pdf")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := svc.Clear(context.Background(), "s1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := svc.Register(context.Background(), "s1", "act.pdf", "application/pdf", []byte("pdf")); err != nil {
		t.Fatalf("register after clear: %v", err)
	}
}

func TestAttachmentRegister_PendingThenReady(t *testing.T) {
	uploader := &llm.MockUploader{
		States: map[string][]domain.AttachmentState{
			"files/act.pdf": {domain.AttachmentPending, domain.AttachmentPending, domain.AttachmentReady},
		},
	}
	svc, _ := newAttachmentService(uploader, 10)

	att, err := svc.Register(context.Background(), "s1", "act.pdf", "application/pdf", []byte("pdf"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if att.State != domain.AttachmentReady {
		t.Fatalf("expected ready, got %q", att.State)
	}
}

func TestAttachmentRegister_RemoteFailure(t *testing.T) {
	uploader := &llm.MockUploader{
		States: map[string][]domain.AttachmentState{
			"files/act.pdf": {domain.AttachmentPending, domain.AttachmentFailed},
		},
	}
	svc, _ := newAttachmentService(uploader, 10)

	if _, err := svc.Register(context.Background(), "s1", "act.pdf", "application/pdf", []byte("pdf")); !errors.Is(err, domain.ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}

	atts, _ := svc.List(context.Background(), "s1")
	if len(atts) != 0 {
		t.Fatalf("failed upload must not be registered, got %d entries", len(atts))
	}
}

func TestAttachmentRegister_BoundedPolling(t *testing.T) {
	// Starea nu iese niciodata din pending; bucla trebuie sa se opreasca.
	uploader := &llm.MockUploader{States: map[string][]domain.AttachmentState{}}
	svc, _ := newAttachmentService(uploader, 3)

	if _, err := svc.Register(context.Background(), "s1", "act.pdf", "application/pdf", []byte("pdf")); !errors.Is(err, domain.ErrUploadTimeout) {
		t.Fatalf("expected ErrUploadTimeout, got %v", err)
	}
}

func TestAttachmentRegisterBatch_PerFileIndependence(t *testing.T) {
	uploader := &llm.MockUploader{
		States: map[string][]domain.AttachmentState{
			"files/bun.pdf": {domain.AttachmentReady},
			"files/rau.pdf": {domain.AttachmentFailed},
			"files/ok.jpg":  {domain.AttachmentReady},
		},
	}
	svc, _ := newAttachmentService(uploader, 5)

	results := svc.RegisterBatch(context.Background(), "s1", []FileInput{
		{Name: "bun.pdf", MIMEType: "application/pdf", Data: []byte("a")},
		{Name: "rau.pdf", MIMEType: "application/pdf", Data: []byte("b")},
		{Name: "ok.jpg", MIMEType: "image/jpeg", Data: []byte("c")},
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("healthy files failed: %v / %v", results[0].Err, results[2].Err)
	}
	if !errors.Is(results[1].Err, domain.ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed for rau.pdf, got %v", results[1].Err)
	}

	atts, _ := svc.List(context.Background(), "s1")
	if len(atts) != 2 {
		t.Fatalf("expected 2 registered attachments, got %d", len(atts))
	}
}

func TestAttachmentRemove_FreesName(t *testing.T) {
	svc, _ := newAttachmentService(readyUploader(), 5)

	if _, err := svc.Register(context.Background(), "s1", "act.pdf", "application/pdf", []byte("pdf")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Remove(context.Background(), "s1", "act.pdf"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	atts, _ := svc.List(context.Background(), "s1")
	if len(atts) != 0 {
		t.Fatalf("expected empty registry after remove, got %d entries", len(atts))
	}
	if _, err := svc.Register(context.Background(), "s1", "act.pdf", "application/pdf", []byte("pdf")); err != nil {
		t.Fatalf("re-register after remove: %v", err)
	}

	// Nume inexistent: idempotent.
	if err := svc.Remove(context.Background(), "s1", "inexistent.pdf"); err != nil {
		t.Fatalf("remove missing name: %v", err)
	}
	if err := svc.Remove(context.Background(), "s1", "  "); !errors.Is(err, ErrAttachmentInvalidInput) {
		t.Fatalf("expected ErrAttachmentInvalidInput, got %v", err)
	}
}

func TestAttachmentClear_Idempotent(t *testing.T) {
	svc, _ := newAttachmentService(readyUploader(), 5)

	if err := svc.Clear(context.Background(), "gol"); err != nil {
		t.Fatalf("clear on empty session: %v", err)
	}
	if err := svc.Clear(context.Background(), "gol"); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestAttachmentRegister_InvalidInput(t *testing.T) {
	svc, _ := newAttachmentService(readyUploader(), 5)

	if _, err := svc.Register(context.Background(), "s1", "  ", "application/pdf", []byte("x")); !errors.Is(err, ErrAttachmentInvalidInput) {
		t.Fatalf("expected ErrAttachmentInvalidInput, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "s1", "act.pdf", "application/pdf", nil); !errors.Is(err, ErrAttachmentInvalidInput) {
		t.Fatalf("expected ErrAttachmentInvalidInput, got %v", err)
	}
}
