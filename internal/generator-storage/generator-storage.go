package generator_storage

import (
	"context"
	"fmt"
	"sync"

	"custom-id-generator/internal/customid"
)

// BlockSource reserves n consecutive sequence values and returns the first.
type BlockSource interface {
	AllocateBlock(ctx context.Context, scope string, n int64) (int64, error)
}

// Store is the persistence collaborator behind the generator.
type Store interface {
	BlockSource
	customid.SequenceAllocator
	customid.UniquenessChecker
	Current(ctx context.Context, scope string) (int64, error)
	DeleteScope(ctx context.Context, scope string) error
	Close() error
}

type block struct {
	mu   sync.Mutex
	next int64
	end  int64 // exclusive
}

// Storage leases blocks of sequence values from a BlockSource and hands them
// out one by one, so the backing store is hit once per block instead of once
// per id. Values left in a block when the process exits are never handed out
// again.
type Storage struct {
	source    BlockSource
	blockSize int64

	mu     sync.Mutex
	blocks map[string]*block
}

func NewStorage(source BlockSource, blockSize int64) (*Storage, error) {
	if source == nil {
		return nil, fmt.Errorf("block source must not be nil")
	}
	if blockSize < 1 {
		return nil, fmt.Errorf("block size must be positive, got %d", blockSize)
	}

	return &Storage{
		source:    source,
		blockSize: blockSize,
		blocks:    make(map[string]*block),
	}, nil
}

func (s *Storage) Allocate(ctx context.Context, scope string) (int64, error) {
	b := s.scopeBlock(scope)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.next >= b.end {
		if err := s.fill(ctx, scope, b); err != nil {
			return 0, err
		}
	}

	v := b.next
	b.next++

	return v, nil
}

// Forget drops the leased values of scope without touching the source.
func (s *Storage) Forget(scope string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blocks, scope)
}

// DeleteScope forgets the leased values of scope and, when the source keeps
// per scope state, deletes it there too.
func (s *Storage) DeleteScope(ctx context.Context, scope string) error {
	s.Forget(scope)

	if d, ok := s.source.(interface {
		DeleteScope(ctx context.Context, scope string) error
	}); ok {
		return d.DeleteScope(ctx, scope)
	}

	return nil
}

func (s *Storage) scopeBlock(scope string) *block {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blocks[scope]
	if !ok {
		b = &block{}
		s.blocks[scope] = b
	}

	return b
}

func (s *Storage) fill(ctx context.Context, scope string, b *block) error {
	first, err := s.source.AllocateBlock(ctx, scope, s.blockSize)
	if err != nil {
		return err
	}

	b.next = first
	b.end = first + s.blockSize

	return nil
}
