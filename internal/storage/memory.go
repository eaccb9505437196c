package storage

import (
	"context"
	"sync"
	"time"

	"resume-docx-go/internal/types"
)

type memoryEntry struct {
	rec       *types.ResumeRecord
	expiresAt time.Time
}

// MemoryStore 进程内会话记录存储，保存的是副本，调用方修改返回值不影响存储内容
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore 创建内存存储，ttl <= 0 表示不过期
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Save 实现 session.Store
func (m *MemoryStore) Save(_ context.Context, sessionID string, rec *types.ResumeRecord) error {
	e := memoryEntry{rec: rec.Clone()}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[sessionID] = e
	return nil
}

// Load 实现 session.Store，过期记录视为不存在
func (m *MemoryStore) Load(_ context.Context, sessionID string) (*types.ResumeRecord, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, sessionID)
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.rec.Clone(), true, nil
}

// Delete 实现 session.Store
func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sessionID)
	return nil
}

// Len 当前保存的会话数（包括尚未清理的过期记录）
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
