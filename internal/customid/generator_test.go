package customid

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRandom struct {
	value uint64
	calls atomic.Int32
}

func (r *fixedRandom) Uint64N(n uint64) uint64 {
	r.calls.Add(1)
	if r.value >= n {
		return n - 1
	}
	return r.value
}

func (r *fixedRandom) Read(p []byte) (int, error) {
	r.calls.Add(1)
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var jan15 = fixedClock{time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)}

func counter(start int64) SequenceAllocator {
	var mu sync.Mutex
	next := start
	return SequenceAllocatorFunc(func(context.Context, string) (int64, error) {
		mu.Lock()
		defer mu.Unlock()
		v := next
		next++
		return v, nil
	})
}

func newTestGenerator(t *testing.T, deps Deps, opts ...Option) *Generator {
	t.Helper()
	if deps.Random == nil {
		deps.Random = &fixedRandom{}
	}
	if deps.Clock == nil {
		deps.Clock = jan15
	}
	g, err := NewGenerator(deps, opts...)
	require.NoError(t, err)
	return g
}

func TestGenerateLiteralAndSequence(t *testing.T) {
	g := newTestGenerator(t, Deps{Sequences: counter(1)})

	id, err := g.Generate(context.Background(), "inv1", Template{Literal(1, "LAP"), Sequence(2)})
	require.NoError(t, err)

	assert.Equal(t, "LAP001", id.Value)
	require.NotNil(t, id.Sequence)
	assert.Equal(t, int64(1), *id.Sequence)
	assert.Equal(t, 1, id.Attempts)
}

func TestGenerateLiteralAndRandomDigits(t *testing.T) {
	g := newTestGenerator(t, Deps{Random: &fixedRandom{value: 42}})

	id, err := g.Generate(context.Background(), "inv2", Template{Literal(1, "BOOK"), RandomDigits(2, 6)})
	require.NoError(t, err)

	assert.Equal(t, "BOOK000042", id.Value)
	assert.Nil(t, id.Sequence)
}

func TestGenerateConcatenatesInOrder(t *testing.T) {
	g := newTestGenerator(t, Deps{Random: &fixedRandom{value: 7}, Sequences: counter(12)})

	tmpl := Template{
		{Kind: KindSequence, Order: 40, Width: 5},
		GUID(30),
		Literal(10, "INV-"),
		Datetime(20),
		Literal(25, "-"),
		RandomBits(50, 20),
	}

	id, err := g.Generate(context.Background(), "scope", tmpl)
	require.NoError(t, err)

	assert.Equal(t, "INV-20240115-00000000-0000-4000-8000-000000000000000120000007", id.Value)
}

func TestGenerateSequenceWiderThanPad(t *testing.T) {
	g := newTestGenerator(t, Deps{Sequences: counter(1234)})

	id, err := g.Generate(context.Background(), "s", Template{Literal(1, "FURN"), Sequence(2)})
	require.NoError(t, err)
	assert.Equal(t, "FURN1234", id.Value)
}

func TestRandomFragmentWidths(t *testing.T) {
	cases := []struct {
		name  string
		el    Element
		width int
	}{
		{"digits 6", RandomDigits(1, 6), 6},
		{"digits 9", RandomDigits(1, 9), 9},
		{"digits 19", RandomDigits(1, 19), 19},
		{"bits 20", RandomBits(1, 20), 7},
		{"bits 32", RandomBits(1, 32), 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, v := range []uint64{0, 1, 42, 1 << 63} {
				g := newTestGenerator(t, Deps{Random: &fixedRandom{value: v}})
				id, err := g.Generate(context.Background(), "s", Template{tc.el})
				require.NoError(t, err)
				assert.Len(t, id.Value, tc.width, "value %d rendered as %q", v, id.Value)
			}
		})
	}
}

func TestGenerateInvalidTemplate(t *testing.T) {
	g := newTestGenerator(t, Deps{Sequences: counter(1)})

	cases := map[string]Template{
		"empty":          {},
		"duplicate":      {Literal(1, "A"), GUID(1)},
		"duplicate same": {Literal(3, "A"), Literal(3, "A")},
	}

	for name, tmpl := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := g.Generate(context.Background(), "s", tmpl)
			assert.ErrorIs(t, err, ErrInvalidTemplate)
		})
	}
}

func TestGenerateUniquenessExhausted(t *testing.T) {
	random := &fixedRandom{value: 1}
	var checks int
	unique := UniquenessCheckerFunc(func(context.Context, string, string) (bool, error) {
		checks++
		return checks > 5, nil
	})

	g := newTestGenerator(t, Deps{Random: random, Uniqueness: unique}, WithMaxAttempts(5))

	_, err := g.Generate(context.Background(), "s", Template{Literal(1, "X"), RandomDigits(2, 6)})

	assert.ErrorIs(t, err, ErrUniquenessExhausted)
	assert.Equal(t, 5, checks)
	assert.Equal(t, int32(5), random.calls.Load())
}

func TestGenerateRetriesUntilUnique(t *testing.T) {
	seen := map[string]bool{"S001": true, "S002": true}
	unique := UniquenessCheckerFunc(func(_ context.Context, scope, candidate string) (bool, error) {
		assert.Equal(t, "inv", scope)
		if seen[candidate] {
			return false, nil
		}
		seen[candidate] = true
		return true, nil
	})

	g := newTestGenerator(t, Deps{Sequences: counter(1), Uniqueness: unique})

	id, err := g.Generate(context.Background(), "inv", Template{Literal(1, "S"), Sequence(2)})
	require.NoError(t, err)

	assert.Equal(t, "S003", id.Value)
	assert.Equal(t, int64(3), *id.Sequence)
	assert.Equal(t, 3, id.Attempts)
}

func TestGenerateUniquenessCheckError(t *testing.T) {
	boom := errors.New("registry down")
	unique := UniquenessCheckerFunc(func(context.Context, string, string) (bool, error) {
		return false, boom
	})

	g := newTestGenerator(t, Deps{Uniqueness: unique})

	_, err := g.Generate(context.Background(), "s", Template{GUID(1)})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUniquenessExhausted)
}

func TestGenerateSequenceFailureShortCircuits(t *testing.T) {
	locked := errors.New("scope locked")
	random := &fixedRandom{}
	var allocations int
	alloc := SequenceAllocatorFunc(func(context.Context, string) (int64, error) {
		allocations++
		return 0, locked
	})

	g := newTestGenerator(t, Deps{Random: random, Sequences: alloc})

	tmpl := Template{Literal(1, "A"), Sequence(2), RandomDigits(3, 6), GUID(4)}
	_, err := g.Generate(context.Background(), "s", tmpl)

	assert.ErrorIs(t, err, ErrSequenceAllocationFailed)
	assert.ErrorIs(t, err, locked)
	assert.Equal(t, 1, allocations)
	assert.Zero(t, random.calls.Load())
}

func TestGenerateWithoutAllocator(t *testing.T) {
	g := newTestGenerator(t, Deps{})

	_, err := g.Generate(context.Background(), "s", Template{Sequence(1)})
	assert.ErrorIs(t, err, ErrSequenceAllocationFailed)
}

func TestGenerateCanceledContext(t *testing.T) {
	var allocations int
	alloc := SequenceAllocatorFunc(func(context.Context, string) (int64, error) {
		allocations++
		return 1, nil
	})
	g := newTestGenerator(t, Deps{Sequences: alloc})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, "s", Template{Sequence(1)})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, allocations)
}

func TestNewGeneratorRequiresRandomAndClock(t *testing.T) {
	_, err := NewGenerator(Deps{Clock: jan15})
	assert.Error(t, err)

	_, err = NewGenerator(Deps{Random: &fixedRandom{}})
	assert.Error(t, err)

	g, err := NewGenerator(Deps{Random: &fixedRandom{}, Clock: jan15}, WithMaxAttempts(0))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxAttempts, g.MaxAttempts())
}

// slowAllocator widens the window between reading and writing the counter so
// that a missing lock would show up as duplicate values.
type slowAllocator struct {
	mu     sync.Mutex
	values map[string]int64
}

func (a *slowAllocator) Allocate(ctx context.Context, scope string) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.values[scope] + 1
	time.Sleep(50 * time.Microsecond)
	a.values[scope] = next

	return next, nil
}

func TestGenerateConcurrentSequencesAreDistinct(t *testing.T) {
	alloc := &slowAllocator{values: map[string]int64{}}
	g := newTestGenerator(t, Deps{Sequences: alloc})

	const workers, perWorker = 16, 25
	tmpl := Template{Literal(1, "LAP"), Sequence(2)}

	var (
		wg   sync.WaitGroup
		sMap sync.Map
		dups atomic.Int32
	)

	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				id, err := g.Generate(context.Background(), "inv1", tmpl)
				if !assert.NoError(t, err, "worker %d", w) {
					return
				}
				if _, loaded := sMap.LoadOrStore(*id.Sequence, id.Value); loaded {
					dups.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, dups.Load())

	count := 0
	sMap.Range(func(_, _ any) bool {
		count++
		return true
	})
	assert.Equal(t, workers*perWorker, count)
	assert.Equal(t, int64(workers*perWorker), alloc.values["inv1"])
}

func TestPreview(t *testing.T) {
	got, err := Preview(Template{Literal(1, "LAP"), Sequence(2)}, &fixedRandom{}, jan15)
	require.NoError(t, err)
	assert.Equal(t, "LAP001", got)

	_, err = Preview(nil, &fixedRandom{}, jan15)
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}

func ExampleGenerator_Generate() {
	g, _ := NewGenerator(Deps{
		Random:    &fixedRandom{value: 42},
		Clock:     jan15,
		Sequences: counter(7),
	})

	id, _ := g.Generate(context.Background(), "inv1", Template{
		Literal(1, "LAP-"),
		Datetime(2),
		Literal(3, "-"),
		Sequence(4),
	})

	fmt.Println(id.Value)
	// Output: LAP-20240115-007
}
