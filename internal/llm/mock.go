package llm

import (
	"context"
	"strings"

	"github.com/roberta039/avocat-onrc/internal/domain"
)

// MockGenerator permite teste fara a apela un LLM real. Emite Fragments in
// ordine; daca Err este setat, esueaza dupa FailAfter fragmente.
type MockGenerator struct {
	Fragments []string
	Err       error
	FailAfter int
	Grounded  bool

	LastRequest Request
}

func (m *MockGenerator) GenerateStream(_ context.Context, req Request, onFragment func(string) error) (Result, error) {
	m.LastRequest = req

	var emitted []string
	for i, frag := range m.Fragments {
		if m.Err != nil && i == m.FailAfter {
			return Result{}, m.Err
		}
		if err := onFragment(frag); err != nil {
			return Result{}, err
		}
		emitted = append(emitted, frag)
	}
	if m.Err != nil && m.FailAfter >= len(m.Fragments) {
		return Result{}, m.Err
	}
	return Result{Text: strings.Join(emitted, ""), Grounded: m.Grounded}, nil
}

// MockUploader simuleaza canalul de fisiere: intoarce referinte remote si o
// secventa de stari programata per fisier.
type MockUploader struct {
	UploadErr error
	States    map[string][]domain.AttachmentState

	polls map[string]int
}

func (m *MockUploader) Upload(_ context.Context, displayName, mimeType string, _ []byte) (domain.Attachment, error) {
	if m.UploadErr != nil {
		return domain.Attachment{}, m.UploadErr
	}
	return domain.Attachment{
		Kind:        domain.AttachmentRemote,
		DisplayName: displayName,
		MIMEType:    mimeType,
		RemoteID:    "files/" + displayName,
		URI:         "https://files.example/" + displayName,
		State:       domain.AttachmentPending,
	}, nil
}

func (m *MockUploader) State(_ context.Context, remoteID string) (domain.AttachmentState, error) {
	if m.polls == nil {
		m.polls = make(map[string]int)
	}
	states := m.States[remoteID]
	idx := m.polls[remoteID]
	m.polls[remoteID]++
	if idx >= len(states) {
		if len(states) == 0 {
			return domain.AttachmentPending, nil
		}
		return states[len(states)-1], nil
	}
	return states[idx], nil
}
