package history

import (
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps logs in process memory. It backs tests and the
// "memory" storage backend.
type MemoryStore struct {
	mu   sync.RWMutex
	logs map[string]*Log
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{logs: make(map[string]*Log)}
}

func (m *MemoryStore) Create(meta Meta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.logs[meta.GameID]; ok {
		return fmt.Errorf("%w: %s", ErrExists, meta.GameID)
	}
	m.logs[meta.GameID] = &Log{Meta: meta}
	return nil
}

func (m *MemoryStore) Append(gameID string, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	log, ok := m.logs[gameID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, gameID)
	}
	if err := nextSeqCheck(log, e); err != nil {
		return err
	}
	log.Entries = append(log.Entries, cloneEntries([]Entry{e})...)
	return nil
}

func (m *MemoryStore) LoadAll(gameID string) (Log, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	log, ok := m.logs[gameID]
	if !ok {
		return Log{}, fmt.Errorf("%w: %s", ErrNotFound, gameID)
	}
	return Log{Meta: log.Meta, Entries: cloneEntries(log.Entries)}, nil
}

func (m *MemoryStore) Delete(gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.logs[gameID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, gameID)
	}
	delete(m.logs, gameID)
	return nil
}

func (m *MemoryStore) List() ([]Meta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Meta, 0, len(m.logs))
	for _, log := range m.logs {
		out = append(out, log.Meta)
	}
	sortMetas(out)
	return out, nil
}

func sortMetas(metas []Meta) {
	sort.Slice(metas, func(i, j int) bool {
		if !metas[i].CreatedAt.Equal(metas[j].CreatedAt) {
			return metas[i].CreatedAt.Before(metas[j].CreatedAt)
		}
		return metas[i].GameID < metas[j].GameID
	})
}
