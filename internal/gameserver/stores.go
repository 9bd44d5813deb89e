package gameserver

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/pf2-flat-check/internal/scripting"
	"github.com/cory-johannsen/pf2-flat-check/internal/storage/postgres"
)

//go:generate mockgen -source=stores.go -destination=mock_stores_test.go -package=gameserver

// MessageStore persists posted chat cards.
type MessageStore interface {
	Create(ctx context.Context, msg postgres.Message) (postgres.Message, error)
	ListRecent(ctx context.Context, limit int) ([]postgres.Message, error)
}

// SettingsStore reads and writes world settings.
type SettingsStore interface {
	GetBool(ctx context.Context, key string) (bool, error)
	SetBool(ctx context.Context, key string, v bool) error
}

// RollPresenter is told about every flat check roll before the card is posted.
type RollPresenter interface {
	ShowRoll(ctx context.Context, roll scripting.RollInfo)
}

var (
	_ MessageStore  = (*MemoryMessages)(nil)
	_ MessageStore  = (*postgres.MessageRepository)(nil)
	_ SettingsStore = (*MemorySettings)(nil)
	_ SettingsStore = (*postgres.SettingsRepository)(nil)
)

// MemoryMessages is a MessageStore that keeps cards in process memory.
type MemoryMessages struct {
	mu   sync.Mutex
	msgs []postgres.Message
	now  func() time.Time
}

// NewMemoryMessages returns an empty in-memory MessageStore.
func NewMemoryMessages() *MemoryMessages {
	return &MemoryMessages{now: time.Now}
}

// Create stores m, assigning an ID and CreatedAt as the postgres repository does.
func (s *MemoryMessages) Create(_ context.Context, m postgres.Message) (postgres.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	for _, existing := range s.msgs {
		if existing.ID == m.ID {
			return postgres.Message{}, fmt.Errorf("chat message %s already exists", m.ID)
		}
	}
	m.Whisper = append([]string(nil), m.Whisper...)
	m.CreatedAt = s.now()
	s.msgs = append(s.msgs, m)
	return m, nil
}

// ListRecent returns up to limit cards, newest first.
func (s *MemoryMessages) ListRecent(_ context.Context, limit int) ([]postgres.Message, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0, got %d", limit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]postgres.Message, 0, min(limit, len(s.msgs)))
	for i := len(s.msgs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.msgs[i])
	}
	return out, nil
}

// MemorySettings is a SettingsStore that keeps settings in process memory.
type MemorySettings struct {
	mu     sync.RWMutex
	values map[string]bool
}

// NewMemorySettings returns an empty in-memory SettingsStore.
func NewMemorySettings() *MemorySettings {
	return &MemorySettings{values: make(map[string]bool)}
}

// GetBool returns postgres.ErrSettingNotFound for keys never set.
func (s *MemorySettings) GetBool(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return false, fmt.Errorf("%s: %w", key, postgres.ErrSettingNotFound)
	}
	return v, nil
}

// SetBool stores v under key.
func (s *MemorySettings) SetBool(_ context.Context, key string, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = v
	return nil
}

// Keys returns the stored setting keys in sorted order.
func (s *MemorySettings) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
