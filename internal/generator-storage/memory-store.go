package generator_storage

import (
	"context"
	"fmt"
	"sync"

	"custom-id-generator/internal/customid"
)

type MemoryStore struct {
	mu          sync.Mutex
	sequences   map[string]int64
	issued      map[string]map[string]struct{}
	maxSequence int64
}

func NewMemoryStore(maxSequence int64) *MemoryStore {
	return &MemoryStore{
		sequences:   make(map[string]int64),
		issued:      make(map[string]map[string]struct{}),
		maxSequence: maxSequence,
	}
}

func (m *MemoryStore) Allocate(ctx context.Context, scope string) (int64, error) {
	return m.AllocateBlock(ctx, scope, 1)
}

func (m *MemoryStore) AllocateBlock(ctx context.Context, scope string, n int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid block size %d", n)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.sequences[scope]
	if m.maxSequence > 0 && current+n > m.maxSequence {
		return 0, fmt.Errorf("scope %q: %w", scope, customid.ErrSequenceExhausted)
	}
	m.sequences[scope] = current + n

	return current + 1, nil
}

func (m *MemoryStore) IsUnique(ctx context.Context, scope, candidate string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ids, ok := m.issued[scope]
	if !ok {
		ids = make(map[string]struct{})
		m.issued[scope] = ids
	}
	if _, taken := ids[candidate]; taken {
		return false, nil
	}
	ids[candidate] = struct{}{}

	return true, nil
}

func (m *MemoryStore) Current(_ context.Context, scope string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sequences[scope], nil
}

func (m *MemoryStore) DeleteScope(_ context.Context, scope string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sequences, scope)
	delete(m.issued, scope)

	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
