package customid

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Deps struct {
	Random RandomSource
	Clock  Clock
	// Sequences is required only by templates with a sequence element.
	Sequences SequenceAllocator
	// Uniqueness is optional; without it the first composition is returned.
	Uniqueness UniquenessChecker
}

type GeneratedID struct {
	Value string
	// Sequence is the counter value consumed by the returned id, nil when the
	// template has no sequence element.
	Sequence *int64
	Attempts int
}

type Generator struct {
	deps        Deps
	maxAttempts int
}

type Option func(*Generator)

// WithMaxAttempts bounds how many compositions are tried when a uniqueness
// checker rejects candidates. Values below 1 keep the default.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n >= 1 {
			g.maxAttempts = n
		}
	}
}

func NewGenerator(deps Deps, opts ...Option) (*Generator, error) {
	if deps.Random == nil {
		return nil, errors.New("customid: random source is required")
	}
	if deps.Clock == nil {
		return nil, errors.New("customid: clock is required")
	}

	g := &Generator{deps: deps, maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

func (g *Generator) MaxAttempts() int {
	return g.maxAttempts
}

// Generate validates tmpl and composes an identifier for scope. With a
// uniqueness checker configured, colliding compositions are retried from
// scratch up to the attempt bound; every attempt that reaches a sequence
// element consumes a fresh counter value.
func (g *Generator) Generate(ctx context.Context, scope string, tmpl Template) (GeneratedID, error) {
	sorted, err := Validate(tmpl)
	if err != nil {
		return GeneratedID{}, err
	}

	if sorted.HasSequence() && g.deps.Sequences == nil {
		return GeneratedID{}, fmt.Errorf("%w: no sequence allocator configured", ErrSequenceAllocationFailed)
	}

	attempts := 1
	if g.deps.Uniqueness != nil {
		attempts = g.maxAttempts
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return GeneratedID{}, err
		}

		value, seq, err := g.compose(ctx, scope, sorted)
		if err != nil {
			return GeneratedID{}, err
		}

		id := GeneratedID{Value: value, Sequence: seq, Attempts: attempt}
		if g.deps.Uniqueness == nil {
			return id, nil
		}

		unique, err := g.deps.Uniqueness.IsUnique(ctx, scope, value)
		if err != nil {
			return GeneratedID{}, fmt.Errorf("check uniqueness of %q: %w", value, err)
		}
		if unique {
			return id, nil
		}
	}

	return GeneratedID{}, fmt.Errorf("%w: %d attempts in scope %q", ErrUniquenessExhausted, attempts, scope)
}

// compose renders one candidate. Rendering stops at the first failing
// element, so nothing after a failed sequence allocation is computed.
func (g *Generator) compose(ctx context.Context, scope string, sorted Template) (string, *int64, error) {
	var (
		sb  strings.Builder
		seq *int64
	)

	for _, el := range sorted {
		switch el.Kind {
		case KindLiteral:
			sb.WriteString(el.Value)
		case KindRandomDigits:
			sb.WriteString(RenderRandomDigits(g.deps.Random, el.Width))
		case KindRandomBits:
			sb.WriteString(RenderRandomBits(g.deps.Random, el.Width))
		case KindGUID:
			guid, err := RenderGUID(g.deps.Random)
			if err != nil {
				return "", nil, err
			}
			sb.WriteString(guid)
		case KindDatetime:
			sb.WriteString(RenderDatetime(g.deps.Clock))
		case KindSequence:
			v, err := g.deps.Sequences.Allocate(ctx, scope)
			if err != nil {
				return "", nil, fmt.Errorf("%w: scope %q: %w", ErrSequenceAllocationFailed, scope, err)
			}
			if v < 0 {
				return "", nil, fmt.Errorf("%w: scope %q: negative value %d", ErrSequenceAllocationFailed, scope, v)
			}
			seq = &v
			sb.WriteString(RenderSequence(v, el.Width))
		}
	}

	return sb.String(), seq, nil
}

// Preview renders tmpl as the first item of an empty scope would look,
// without touching any counter or registry.
func Preview(tmpl Template, random RandomSource, clock Clock) (string, error) {
	g, err := NewGenerator(Deps{
		Random: random,
		Clock:  clock,
		Sequences: SequenceAllocatorFunc(func(context.Context, string) (int64, error) {
			return 1, nil
		}),
	})
	if err != nil {
		return "", err
	}

	id, err := g.Generate(context.Background(), "", tmpl)
	if err != nil {
		return "", err
	}

	return id.Value, nil
}
