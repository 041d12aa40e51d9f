package store

import (
	"context"
	"sync"
)

// MemoryStore keeps sheets in process memory
type MemoryStore struct {
	mu     sync.RWMutex
	sheets map[string]*memorySheet
}

// NewMemory creates a store with the named sheets already present
func NewMemory(names ...string) *MemoryStore {
	m := &MemoryStore{sheets: make(map[string]*memorySheet)}
	for _, name := range names {
		if name != "" {
			m.sheets[name] = &memorySheet{name: name}
		}
	}
	return m
}

func (m *MemoryStore) Backend() string { return BackendMemory }

func (m *MemoryStore) Open(_ context.Context, name string) (Sheet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sh, ok := m.sheets[name]
	if !ok {
		return nil, ErrNotFound
	}
	return sh, nil
}

func (m *MemoryStore) Create(_ context.Context, name string) (Sheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sh, ok := m.sheets[name]; ok {
		return sh, nil
	}
	sh := &memorySheet{name: name}
	m.sheets[name] = sh
	return sh, nil
}

func (m *MemoryStore) Close(context.Context) error { return nil }

type memorySheet struct {
	name string
	mu   sync.RWMutex
	rows [][]string
}

func (s *memorySheet) Name() string { return s.name }

func (s *memorySheet) AppendRow(_ context.Context, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, append([]string(nil), row...))
	return nil
}

func (s *memorySheet) ReadAll(context.Context) ([][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]string, len(s.rows))
	for i, row := range s.rows {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (s *memorySheet) IsInitialized(context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return hasContent(s.rows), nil
}

func (s *memorySheet) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = nil
	return nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// hasContent reports whether any row holds a non-empty cell
func hasContent(rows [][]string) bool {
	for _, row := range rows {
		if !blankRow(row) {
			return true
		}
	}
	return false
}
