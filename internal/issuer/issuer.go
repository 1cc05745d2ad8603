// Package issuer is the item creation workflow around the id generator: it
// resolves the inventory, checks the caller may add items to it and asks the
// generator for an id scoped to that inventory.
package issuer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"custom-id-generator/internal/customid"
	"custom-id-generator/internal/inventory"
	"custom-id-generator/internal/metrics"
)

type Catalog interface {
	Inventory(id string) (inventory.Inventory, bool)
	User(id string) (inventory.User, bool)
	Delete(id string) bool
}

// ScopeStore drops the counter and issued ids of a deleted inventory.
type ScopeStore interface {
	DeleteScope(ctx context.Context, scope string) error
}

type Config struct {
	Catalog   Catalog
	Generator *customid.Generator
	Scopes    ScopeStore
	// Random and Clock feed previews.
	Random  customid.RandomSource
	Clock   customid.Clock
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

type Issuer struct {
	catalog   Catalog
	generator *customid.Generator
	scopes    ScopeStore
	random    customid.RandomSource
	clock     customid.Clock
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func New(cfg Config) (*Issuer, error) {
	if cfg.Catalog == nil || cfg.Generator == nil {
		return nil, fmt.Errorf("issuer: catalog and generator are required")
	}
	if cfg.Random == nil || cfg.Clock == nil {
		return nil, fmt.Errorf("issuer: random source and clock are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Issuer{
		catalog:   cfg.Catalog,
		generator: cfg.Generator,
		scopes:    cfg.Scopes,
		random:    cfg.Random,
		clock:     cfg.Clock,
		metrics:   cfg.Metrics,
		logger:    logger,
	}, nil
}

func (i *Issuer) Issue(ctx context.Context, userID, inventoryID string) (customid.GeneratedID, error) {
	start := time.Now()

	id, err := i.issue(ctx, userID, inventoryID)
	if err != nil {
		if i.metrics != nil {
			i.metrics.ObserveFailure(err, time.Since(start))
		}
		i.logger.Warn("custom id not issued",
			"inventory", inventoryID, "user", userID, "reason", metrics.Reason(err), "error", err)
		return customid.GeneratedID{}, err
	}

	if i.metrics != nil {
		i.metrics.ObserveSuccess(inventoryID, id.Attempts, time.Since(start))
	}
	i.logger.Debug("custom id issued", "inventory", inventoryID, "user", userID, "id", id.Value, "attempts", id.Attempts)

	return id, nil
}

func (i *Issuer) issue(ctx context.Context, userID, inventoryID string) (customid.GeneratedID, error) {
	inv, err := i.authorize(userID, inventoryID, inventory.CanWrite)
	if err != nil {
		return customid.GeneratedID{}, err
	}

	return i.generator.Generate(ctx, inv.ID, inv.Template)
}

// Preview renders tmpl the way the first item of a new inventory would be
// numbered. Nothing is allocated or recorded.
func (i *Issuer) Preview(tmpl customid.Template) (string, error) {
	return customid.Preview(tmpl, i.random, i.clock)
}

// DeleteInventory removes an inventory and releases its id scope. Only the
// owner or an admin may do this.
func (i *Issuer) DeleteInventory(ctx context.Context, userID, inventoryID string) error {
	if _, err := i.authorize(userID, inventoryID, inventory.CanManage); err != nil {
		return err
	}

	if i.scopes != nil {
		if err := i.scopes.DeleteScope(ctx, inventoryID); err != nil {
			return fmt.Errorf("release scope %q: %w", inventoryID, err)
		}
	}
	i.catalog.Delete(inventoryID)

	i.logger.Info("inventory deleted", "inventory", inventoryID, "user", userID)

	return nil
}

func (i *Issuer) authorize(userID, inventoryID string, allowed func(*inventory.User, inventory.Inventory) bool) (inventory.Inventory, error) {
	inv, ok := i.catalog.Inventory(inventoryID)
	if !ok {
		return inventory.Inventory{}, fmt.Errorf("%w: %s", inventory.ErrInventoryNotFound, inventoryID)
	}

	var user *inventory.User
	if u, ok := i.catalog.User(userID); ok {
		user = &u
	}

	if !allowed(user, inv) {
		return inventory.Inventory{}, fmt.Errorf("%w: user %q on inventory %q", inventory.ErrForbidden, userID, inventoryID)
	}

	return inv, nil
}
