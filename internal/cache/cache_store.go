package cache

import (
	"context"
	"sync"
	"time"

	"telegram-chat-stats/internal/domain"
)

// Entry - нормализованный набор одного файла экспорта со сроком жизни.
type Entry struct {
	Dataset   *domain.Dataset
	StoredAt  time.Time
	ExpiresAt time.Time
}

func (e *Entry) expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// CacheStore хранит нормализованные наборы по хешу содержимого, чтобы повторная
// загрузка того же файла не требовала разбора. Набор только читается,
// статистика по нему каждый раз пересчитывается.
type CacheStore struct {
	mu      sync.Mutex
	entries map[string]*Entry
	now     func() time.Time
}

// NewCacheStore создает пустое хранилище.
func NewCacheStore() *CacheStore {
	return &CacheStore{
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
}

// Get возвращает запись по хешу. Просроченная запись удаляется сразу.
func (cs *CacheStore) Get(key string) (*Entry, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	entry, ok := cs.entries[key]
	if !ok {
		return nil, false
	}
	if entry.expired(cs.now()) {
		delete(cs.entries, key)
		return nil, false
	}
	return entry, true
}

// Put сохраняет набор на ttl.
func (cs *CacheStore) Put(key string, ds *domain.Dataset, ttl time.Duration) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	now := cs.now()
	cs.entries[key] = &Entry{Dataset: ds, StoredAt: now, ExpiresAt: now.Add(ttl)}
}

// Len возвращает число записей, включая просроченные, которые еще не удалены.
func (cs *CacheStore) Len() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.entries)
}

// CleanupExpired удаляет просроченные записи и возвращает их число.
func (cs *CacheStore) CleanupExpired() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	now := cs.now()
	removed := 0
	for key, entry := range cs.entries {
		if entry.expired(now) {
			delete(cs.entries, key)
			removed++
		}
	}
	return removed
}

// StartCleanupTicker периодически чистит хранилище до отмены ctx.
func (cs *CacheStore) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cs.CleanupExpired()
			}
		}
	}()
}
