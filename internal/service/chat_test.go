package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/roberta039/avocat-onrc/internal/domain"
	"github.com/roberta039/avocat-onrc/internal/llm"
	"github.com/roberta039/avocat-onrc/internal/repository"
)

type captureSink struct {
	fragments []string
	finals    []string
}

func (s *captureSink) Fragment(text string) error {
	s.fragments = append(s.fragments, text)
	return nil
}

func (s *captureSink) Final(text string) error {
	s.finals = append(s.finals, text)
	return nil
}

func newChatFixture(gen llm.Generator) (*ChatService, *mockMessageRepo, *AttachmentService) {
	repo := &mockMessageRepo{}
	transcript := NewTranscriptService(repo)
	attachments := NewAttachmentService(repository.NewMemoryAttachmentStore(), &llm.MockUploader{}, zap.NewNop(), time.Millisecond, 3)
	chat := NewChatService(gen, transcript, attachments, zap.NewNop(), time.Second)
	return chat, repo, attachments
}

func TestChatSend_StreamingCommit(t *testing.T) {
	gen := &llm.MockGenerator{Fragments: []string{"Hel", "lo"}}
	chat, repo, _ := newChatFixture(gen)
	sink := &captureSink{}

	result, err := chat.Send(context.Background(), "s1", "salut", sink)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(sink.fragments) != 2 || sink.fragments[0] != "Hel" || sink.fragments[1] != "lo" {
		t.Fatalf("expected fragments in provider order, got %v", sink.fragments)
	}
	if len(sink.finals) != 1 || sink.finals[0] != "Hello" {
		t.Fatalf("expected one final update %q, got %v", "Hello", sink.finals)
	}

	// Exact doua randuri: tura utilizatorului si un singur mesaj assistant
	// cu textul brut acumulat.
	if len(repo.messages) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(repo.messages))
	}
	if repo.messages[0].Role != domain.RoleUser || repo.messages[0].Content != "salut" {
		t.Fatalf("unexpected user row: %+v", repo.messages[0])
	}
	if repo.messages[1].Role != domain.RoleAssistant || repo.messages[1].Content != "Hello" {
		t.Fatalf("unexpected assistant row: %+v", repo.messages[1])
	}

	if result.AssistantMessage.Content != "Hello" {
		t.Fatalf("unexpected result content %q", result.AssistantMessage.Content)
	}
}

func TestChatSend_FailureDoesNotCommit(t *testing.T) {
	gen := &llm.MockGenerator{
		Fragments: []string{"Hel", "lo"},
		Err:       errors.New("stream broke"),
		FailAfter: 1,
	}
	chat, repo, _ := newChatFixture(gen)
	sink := &captureSink{}

	_, err := chat.Send(context.Background(), "s1", "salut", sink)
	if err == nil {
		t.Fatalf("expected error")
	}

	if len(sink.fragments) != 1 || sink.fragments[0] != "Hel" {
		t.Fatalf("expected one fragment before failure, got %v", sink.fragments)
	}
	if len(sink.finals) != 0 {
		t.Fatalf("no final update on failure, got %v", sink.finals)
	}

	// Tura utilizatorului ramane; niciun mesaj assistant pentru tura esuata.
	for _, msg := range repo.messages {
		if msg.Role == domain.RoleAssistant {
			t.Fatalf("assistant message committed on failure: %+v", msg)
		}
	}
	if len(repo.messages) != 1 {
		t.Fatalf("expected only the user turn persisted, got %d", len(repo.messages))
	}
}

func TestChatSend_HistoryExcludesCurrentTurn(t *testing.T) {
	gen := &llm.MockGenerator{Fragments: []string{"B"}}
	chat, _, _ := newChatFixture(gen)

	if _, err := chat.Send(context.Background(), "s1", "A", &captureSink{}); err != nil {
		t.Fatalf("first turn: %v", err)
	}
	if _, err := chat.Send(context.Background(), "s1", "C", &captureSink{}); err != nil {
		t.Fatalf("second turn: %v", err)
	}

	// La a doua tura, istoricul trimis generatorului contine exact primele
	// doua mesaje, nu si textul curent.
	hist := gen.LastRequest.History
	if len(hist) != 2 {
		t.Fatalf("expected 2 history messages, got %d", len(hist))
	}
	if hist[0].Role != domain.RoleUser || hist[0].Content != "A" {
		t.Fatalf("unexpected history[0]: %+v", hist[0])
	}
	if hist[1].Role != domain.RoleAssistant || hist[1].Content != "B" {
		t.Fatalf("unexpected history[1]: %+v", hist[1])
	}
	if gen.LastRequest.UserText != "C" {
		t.Fatalf("expected current text %q, got %q", "C", gen.LastRequest.UserText)
	}
}

func TestChatSend_AttachmentsIncludedInRequest(t *testing.T) {
	gen := &llm.MockGenerator{Fragments: []string{"ok"}}
	uploader := &llm.MockUploader{
		States: map[string][]domain.AttachmentState{
			"files/act.pdf": {domain.AttachmentReady},
		},
	}
	transcript := NewTranscriptService(&mockMessageRepo{})
	attachments := NewAttachmentService(repository.NewMemoryAttachmentStore(), uploader, zap.NewNop(), time.Millisecond, 3)
	chat := NewChatService(gen, transcript, attachments, zap.NewNop(), time.Second)

	if _, err := attachments.Register(context.Background(), "s1", "act.pdf", "application/pdf", []byte("pdf")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := chat.Send(context.Background(), "s1", "Analizeaza", &captureSink{}); err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(gen.LastRequest.Attachments) != 1 {
		t.Fatalf("expected 1 attachment in request, got %d", len(gen.LastRequest.Attachments))
	}
	if gen.LastRequest.Attachments[0].DisplayName != "act.pdf" {
		t.Fatalf("unexpected attachment %+v", gen.LastRequest.Attachments[0])
	}
}

func TestChatSend_TimeoutMapped(t *testing.T) {
	gen := &llm.MockGenerator{Err: context.DeadlineExceeded, FailAfter: 0}
	chat, _, _ := newChatFixture(gen)

	_, err := chat.Send(context.Background(), "s1", "salut", &captureSink{})
	if !errors.Is(err, domain.ErrGenerationTimeout) {
		t.Fatalf("expected ErrGenerationTimeout, got %v", err)
	}
}

func TestChatSend_BlockedPassthrough(t *testing.T) {
	gen := &llm.MockGenerator{Err: domain.ErrContentBlocked, FailAfter: 0}
	chat, _, _ := newChatFixture(gen)

	_, err := chat.Send(context.Background(), "s1", "salut", &captureSink{})
	if !errors.Is(err, domain.ErrContentBlocked) {
		t.Fatalf("expected ErrContentBlocked, got %v", err)
	}
}

func TestChatSend_PhaseReportedInLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	transcript := NewTranscriptService(&mockMessageRepo{})
	attachments := NewAttachmentService(repository.NewMemoryAttachmentStore(), &llm.MockUploader{}, zap.NewNop(), time.Millisecond, 3)

	ok := NewChatService(&llm.MockGenerator{Fragments: []string{"ok"}}, transcript, attachments, logger, time.Second)
	if _, err := ok.Send(context.Background(), "s1", "salut", &captureSink{}); err != nil {
		t.Fatalf("send: %v", err)
	}
	committed := logs.FilterMessage("turn committed").All()
	if len(committed) != 1 || committed[0].ContextMap()["phase"] != "committed" {
		t.Fatalf("expected committed phase in turn log, got %+v", committed)
	}

	bad := NewChatService(&llm.MockGenerator{Err: errors.New("stream broke"), FailAfter: 0}, transcript, attachments, logger, time.Second)
	if _, err := bad.Send(context.Background(), "s1", "salut", &captureSink{}); err == nil {
		t.Fatalf("expected error")
	}
	failed := logs.FilterMessage("generation failed").All()
	if len(failed) != 1 || failed[0].ContextMap()["phase"] != "failed" {
		t.Fatalf("expected failed phase in turn log, got %+v", failed)
	}
}

func TestChatSend_InvalidInput(t *testing.T) {
	chat, _, _ := newChatFixture(&llm.MockGenerator{})

	if _, err := chat.Send(context.Background(), "", "text", &captureSink{}); !errors.Is(err, ErrChatInvalidInput) {
		t.Fatalf("expected ErrChatInvalidInput, got %v", err)
	}
	if _, err := chat.Send(context.Background(), "s1", "   ", &captureSink{}); !errors.Is(err, ErrChatInvalidInput) {
		t.Fatalf("expected ErrChatInvalidInput, got %v", err)
	}
}
