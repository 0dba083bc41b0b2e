package sheet

import (
	"context"
	"sync"

	"github.com/okian/roster/internal/domain/model"
)

// MemorySheet keeps rows in process memory.
type MemorySheet struct {
	mu     sync.RWMutex
	header []string
	rows   []model.Row
	index  map[string]struct{}
	closed bool
}

var _ Sheet = (*MemorySheet)(nil)

// NewMemorySheet returns an uninitialized in-memory sheet.
func NewMemorySheet() *MemorySheet {
	return &MemorySheet{index: make(map[string]struct{})}
}

func (m *MemorySheet) Init(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, ErrClosed
	}
	if m.header != nil {
		return false, nil
	}
	m.header = append([]string(nil), model.Header...)
	return true, nil
}

func (m *MemorySheet) Header(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string{}, m.header...), nil
}

func (m *MemorySheet) Contains(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.usableLocked(); err != nil {
		return false, err
	}
	_, ok := m.index[id]
	return ok, nil
}

func (m *MemorySheet) Append(_ context.Context, row model.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usableLocked(); err != nil {
		return err
	}
	if _, ok := m.index[row.ID]; ok {
		return ErrDuplicate
	}
	m.index[row.ID] = struct{}{}
	m.rows = append(m.rows, row)
	return nil
}

func (m *MemorySheet) Rows(_ context.Context) ([]model.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.usableLocked(); err != nil {
		return nil, err
	}
	return append([]model.Row{}, m.rows...), nil
}

func (m *MemorySheet) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.usableLocked(); err != nil {
		return 0, err
	}
	return len(m.rows), nil
}

func (m *MemorySheet) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *MemorySheet) usableLocked() error {
	if m.closed {
		return ErrClosed
	}
	if m.header == nil {
		return ErrNotInitialized
	}
	return nil
}
