package session

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type memoryEntry struct {
	ident     Identity
	expiresAt time.Time
}

// MemoryStore 进程内 LRU 存储，单实例部署和测试使用
type MemoryStore struct {
	cache *lru.Cache[string, memoryEntry]
}

func NewMemoryStore(size int) (*MemoryStore, error) {
	if size <= 0 {
		size = 10000
	}
	c, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{cache: c}, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Identity, error) {
	entry, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		s.cache.Remove(id)
		return nil, ErrNotFound
	}
	ident := entry.ident
	return &ident, nil
}

func (s *MemoryStore) Set(_ context.Context, id string, ident *Identity, ttl time.Duration) error {
	s.cache.Add(id, memoryEntry{ident: *ident, expiresAt: time.Now().Add(ttl)})
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Remove(id)
	return nil
}
