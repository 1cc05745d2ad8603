package cache

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"custom-id-generator/internal/customid"
)

const (
	REDIS_SEQUENCE_KEY = "sequence"
	REDIS_ISSUED_KEY   = "issued"
)

//go:embed sequence-script.lua
var sequenceScriptSource string

var sequenceScript = redis.NewScript(sequenceScriptSource)

type Options struct {
	KeyPrefix string
	// MaxSequence caps every scope counter, 0 means unbounded.
	MaxSequence int64
}

// Dragonfly keeps sequence counters and issued ids in a Redis compatible
// store (Dragonfly, Redis, Valkey).
type Dragonfly struct {
	RawClient   redis.UniversalClient
	keyPrefix   string
	maxSequence int64
}

func NewDragonfly(client redis.UniversalClient, opts Options) *Dragonfly {
	return &Dragonfly{
		RawClient:   client,
		keyPrefix:   opts.KeyPrefix,
		maxSequence: opts.MaxSequence,
	}
}

func (dg *Dragonfly) Allocate(ctx context.Context, scope string) (int64, error) {
	return dg.AllocateBlock(ctx, scope, 1)
}

// AllocateBlock reserves n consecutive values and returns the first one. The
// counter is left untouched when the block would cross MaxSequence.
func (dg *Dragonfly) AllocateBlock(ctx context.Context, scope string, n int64) (int64, error) {
	if n < 1 {
		return 0, fmt.Errorf("invalid block size %d", n)
	}

	last, err := sequenceScript.Run(ctx, dg.RawClient, []string{dg.key(REDIS_SEQUENCE_KEY, scope)}, n, dg.maxSequence).Int64()
	if err != nil {
		if strings.Contains(err.Error(), customid.ErrSequenceExhausted.Error()) {
			return 0, fmt.Errorf("scope %q: %w", scope, customid.ErrSequenceExhausted)
		}
		return 0, fmt.Errorf("failed on incrementing sequence: %v", err)
	}

	return last - n + 1, nil
}

// IsUnique records candidate as issued for scope and reports whether it was
// new.
func (dg *Dragonfly) IsUnique(ctx context.Context, scope, candidate string) (bool, error) {
	isKeyUnique, err := dg.RawClient.HSetNX(ctx, dg.key(REDIS_ISSUED_KEY, scope), candidate, 1).Result()
	if err != nil {
		return false, fmt.Errorf("error while setting to dragonfly db: %v", err)
	}

	return isKeyUnique, nil
}

func (dg *Dragonfly) Current(ctx context.Context, scope string) (int64, error) {
	v, err := dg.RawClient.Get(ctx, dg.key(REDIS_SEQUENCE_KEY, scope)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed on reading sequence: %v", err)
	}

	return v, nil
}

// DeleteScope drops the counter and the issued ids of a deleted inventory.
func (dg *Dragonfly) DeleteScope(ctx context.Context, scope string) error {
	_, err := dg.RawClient.Del(ctx, dg.key(REDIS_SEQUENCE_KEY, scope), dg.key(REDIS_ISSUED_KEY, scope)).Result()
	if err != nil {
		return fmt.Errorf("failed on deleting scope keys: %v", err)
	}

	return nil
}

func (dg *Dragonfly) Close() error {
	return dg.RawClient.Close()
}

func (dg *Dragonfly) key(kind, scope string) string {
	return fmt.Sprintf("%s%s:{%s}", dg.keyPrefix, kind, scope)
}
