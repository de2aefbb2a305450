package history

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/HysterChat/pinco-clone/internal/domain"
)

type record struct {
	items   []string
	updated time.Time
}

// MemoryStore хранит историю в памяти процесса.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*record
	ttl     time.Duration
	now     func() time.Time
}

var _ domain.ContentHistoryStore = (*MemoryStore)(nil)

// NewMemoryStore создаёт хранилище в памяти.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*record), ttl: domain.HistoryTTL, now: time.Now}
}

func memoryKey(userID string, category domain.Category) string {
	return userID + "\x00" + string(category)
}

// Recent возвращает копию истории.
func (s *MemoryStore) Recent(_ context.Context, userID string, category domain.Category) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[memoryKey(userID, category)]
	if !ok || s.now().Sub(rec.updated) > s.ttl {
		return nil, nil
	}
	return slices.Clone(rec.items), nil
}

// Append добавляет элементы, сохраняя уникальность и лимит.
func (s *MemoryStore) Append(_ context.Context, userID string, category domain.Category, items []string, limit int) error {
	if len(items) == 0 || limit <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memoryKey(userID, category)
	now := s.now()
	rec, ok := s.records[key]
	if !ok || now.Sub(rec.updated) > s.ttl {
		rec = &record{}
		s.records[key] = rec
	}
	for _, it := range items {
		rec.items = slices.DeleteFunc(rec.items, func(x string) bool { return x == it })
		rec.items = append(rec.items, it)
	}
	if over := len(rec.items) - limit; over > 0 {
		rec.items = slices.Clone(rec.items[over:])
	}
	rec.updated = now
	return nil
}
