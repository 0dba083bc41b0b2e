package localstore

import (
	"context"
	"sync"

	"github.com/okian/roster/internal/domain/model"
)

// MemoryStore keeps State in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	state State
	err   error
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store seeded with initial.
func NewMemoryStore(initial State) *MemoryStore {
	return &MemoryStore{state: initial.clone()}
}

func (m *MemoryStore) Load(_ context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone(), nil
}

func (m *MemoryStore) Append(_ context.Context, row model.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.state.Submissions = append(m.state.Submissions, row)
	m.state.SubmittedIDs = append(m.state.SubmittedIDs, row.ID)
	return nil
}

// FailAppends makes every later Append return err. A nil err clears it.
func (m *MemoryStore) FailAppends(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}
