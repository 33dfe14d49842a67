package ledger

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-memory Ledger for tests and throwaway runs.
type Memory struct {
	mu      sync.RWMutex
	records map[Kind]map[string][]byte
}

// NewMemory returns an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{records: make(map[Kind]map[string][]byte)}
}

func (m *Memory) Put(ctx context.Context, kind Kind, id string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	byID, ok := m.records[kind]
	if !ok {
		byID = make(map[string][]byte)
		m.records[kind] = byID
	}
	byID[id] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Get(ctx context.Context, kind Kind, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.records[kind][id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) List(ctx context.Context, kind Kind) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, 0, len(m.records[kind]))
	for id, data := range m.records[kind] {
		out = append(out, Entry{ID: id, Data: append([]byte(nil), data...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Delete(ctx context.Context, kind Kind, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records[kind], id)
	return nil
}

var _ Ledger = (*Memory)(nil)
