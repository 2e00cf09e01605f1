package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roberta039/avocat-onrc/internal/domain"
)

// AttachmentStore pastreaza referintele actelor unui dosar, cheie = nume afisat.
// Multimea nu are ordine garantata.
type AttachmentStore interface {
	Put(ctx context.Context, sessionID string, att domain.Attachment) error
	Exists(ctx context.Context, sessionID, displayName string) (bool, error)
	List(ctx context.Context, sessionID string) ([]domain.Attachment, error)
	Remove(ctx context.Context, sessionID, displayName string) error
	Clear(ctx context.Context, sessionID string) error
}

type memoryAttachmentStore struct {
	mu    sync.Mutex
	cases map[string]map[string]domain.Attachment
}

// NewMemoryAttachmentStore tine registrul doar in memoria procesului;
// folosit cand Redis nu este configurat si in teste.
func NewMemoryAttachmentStore() AttachmentStore {
	return &memoryAttachmentStore{
		cases: make(map[string]map[string]domain.Attachment),
	}
}

func (s *memoryAttachmentStore) Put(_ context.Context, sessionID string, att domain.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cases[sessionID] == nil {
		s.cases[sessionID] = make(map[string]domain.Attachment)
	}
	s.cases[sessionID][att.DisplayName] = att
	return nil
}

func (s *memoryAttachmentStore) Exists(_ context.Context, sessionID, displayName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cases[sessionID][displayName]
	return ok, nil
}

func (s *memoryAttachmentStore) List(_ context.Context, sessionID string) ([]domain.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	atts := make([]domain.Attachment, 0, len(s.cases[sessionID]))
	for _, att := range s.cases[sessionID] {
		atts = append(atts, att)
	}
	return atts, nil
}

func (s *memoryAttachmentStore) Remove(_ context.Context, sessionID, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cases[sessionID], displayName)
	return nil
}

func (s *memoryAttachmentStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cases, sessionID)
	return nil
}

// Limita unei operatii Redis; registrul nu merita sa blocheze o tura.
const redisOpTimeout = 500 * time.Millisecond

type redisAttachmentStore struct {
	client *redis.Client
	prefix string
}

// NewRedisAttachmentStore pastreaza registrul intr-un hash per dosar, astfel
// incat reload-ul paginii regaseste aceleasi referinte ca si transcriptul.
func NewRedisAttachmentStore(client *redis.Client) AttachmentStore {
	if client == nil {
		return nil
	}
	return &redisAttachmentStore{
		client: client,
		prefix: "case:att:",
	}
}

func (s *redisAttachmentStore) Put(ctx context.Context, sessionID string, att domain.Attachment) error {
	raw, err := json.Marshal(att)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	return s.client.HSet(ctx, s.prefix+sessionID, att.DisplayName, raw).Err()
}

func (s *redisAttachmentStore) Exists(ctx context.Context, sessionID, displayName string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	return s.client.HExists(ctx, s.prefix+sessionID, displayName).Result()
}

func (s *redisAttachmentStore) List(ctx context.Context, sessionID string) ([]domain.Attachment, error) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	values, err := s.client.HGetAll(ctx, s.prefix+sessionID).Result()
	if err != nil {
		return nil, err
	}
	atts := make([]domain.Attachment, 0, len(values))
	for _, raw := range values {
		var att domain.Attachment
		if err := json.Unmarshal([]byte(raw), &att); err != nil {
			return nil, err
		}
		atts = append(atts, att)
	}
	return atts, nil
}

func (s *redisAttachmentStore) Remove(ctx context.Context, sessionID, displayName string) error {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	return s.client.HDel(ctx, s.prefix+sessionID, displayName).Err()
}

func (s *redisAttachmentStore) Clear(ctx context.Context, sessionID string) error {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	return s.client.Del(ctx, s.prefix+sessionID).Err()
}
