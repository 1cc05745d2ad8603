package customid

import (
	"context"
	"io"
	"time"
)

// RandomSource supplies entropy. Uint64N must return a uniformly distributed
// value in [0, n); Read feeds GUID generation.
type RandomSource interface {
	io.Reader
	Uint64N(n uint64) uint64
}

type Clock interface {
	Now() time.Time
}

// SequenceAllocator hands out the next counter value for a scope. Concurrent
// calls for the same scope must never return the same value, and a failed
// call must not consume one.
type SequenceAllocator interface {
	Allocate(ctx context.Context, scope string) (int64, error)
}

// UniquenessChecker reports whether candidate has not been issued in scope
// yet. Implementations backed by a registry may reserve the candidate as a
// side effect of returning true.
type UniquenessChecker interface {
	IsUnique(ctx context.Context, scope, candidate string) (bool, error)
}

type SequenceAllocatorFunc func(ctx context.Context, scope string) (int64, error)

func (f SequenceAllocatorFunc) Allocate(ctx context.Context, scope string) (int64, error) {
	return f(ctx, scope)
}

type UniquenessCheckerFunc func(ctx context.Context, scope, candidate string) (bool, error)

func (f UniquenessCheckerFunc) IsUnique(ctx context.Context, scope, candidate string) (bool, error) {
	return f(ctx, scope, candidate)
}
