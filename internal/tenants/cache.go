// ABOUTME: Per-platform cache of authenticated client handles keyed by tenant id.
// ABOUTME: RWMutex-guarded map; implicit env-derived construction is collapsed with singleflight.

package tenants

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Tenant cache errors
var (
	ErrUnregisteredTenant = errors.New("no client registered for tenant")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidTenant      = errors.New("invalid tenant id")
)

// Credentials is a platform-specific credential set.
type Credentials interface {
	// Validate reports missing or malformed fields.
	Validate() error
}

// Factory builds an authenticated client handle. It must not perform network I/O
// that depends on cache state; it runs outside the cache lock.
type Factory[C Credentials, H any] func(tenantID string, creds C) (H, error)

// Source supplies credentials for tenants that were never registered explicitly.
type Source[C Credentials] interface {
	// Lookup returns ok=false when the tenant has no credentials in the source.
	Lookup(tenantID string) (creds C, ok bool, err error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc[C Credentials] func(tenantID string) (C, bool, error)

// Lookup calls f(tenantID).
func (f SourceFunc[C]) Lookup(tenantID string) (C, bool, error) {
	return f(tenantID)
}

// Config configures a Cache.
type Config[C Credentials, H any] struct {
	Platform string
	Factory  Factory[C, H]
	// Source enables implicit registration on first lookup. Optional.
	Source Source[C]
	Logger *slog.Logger
}

// Cache holds at most one client handle per tenant for a single platform.
type Cache[C Credentials, H any] struct {
	platform string
	factory  Factory[C, H]
	source   Source[C]
	logger   *slog.Logger

	mu      sync.RWMutex
	clients map[string]H

	implicit singleflight.Group
}

// NewCache creates an empty cache for one platform.
func NewCache[C Credentials, H any](cfg Config[C, H]) (*Cache[C, H], error) {
	if cfg.Platform == "" {
		return nil, errors.New("platform is required")
	}
	if cfg.Factory == nil {
		return nil, fmt.Errorf("%s: factory is required", cfg.Platform)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache[C, H]{
		platform: cfg.Platform,
		factory:  cfg.Factory,
		source:   cfg.Source,
		logger:   logger.With("component", "tenants", "platform", cfg.Platform),
		clients:  make(map[string]H),
	}, nil
}

// Platform returns the platform this cache serves.
func (c *Cache[C, H]) Platform() string {
	return c.platform
}

// Register validates the credentials, builds a handle, and stores it under the tenant
// id, replacing any existing handle. On failure the cache is unchanged.
func (c *Cache[C, H]) Register(tenantID string, creds C) error {
	handle, err := c.build(tenantID, creds)
	if err != nil {
		return err
	}

	c.mu.Lock()
	_, replaced := c.clients[tenantID]
	c.clients[tenantID] = handle
	c.mu.Unlock()

	c.logger.Info("tenant client registered", "tenant_id", tenantID, "replaced", replaced)
	return nil
}

// Get returns the handle for the tenant. Without a Source, unknown tenants fail with
// ErrUnregisteredTenant. With one, the first lookup builds the handle from the
// source's credentials; concurrent first lookups share a single construction.
func (c *Cache[C, H]) Get(tenantID string) (H, error) {
	c.mu.RLock()
	handle, ok := c.clients[tenantID]
	c.mu.RUnlock()
	if ok {
		return handle, nil
	}

	var zero H
	if c.source == nil {
		return zero, c.unregistered(tenantID)
	}

	v, err, _ := c.implicit.Do(tenantID, func() (interface{}, error) {
		// Double-check after acquiring the flight
		c.mu.RLock()
		existing, ok := c.clients[tenantID]
		c.mu.RUnlock()
		if ok {
			return existing, nil
		}

		creds, found, err := c.source.Lookup(tenantID)
		if err != nil {
			return nil, fmt.Errorf("%s: loading credentials for tenant '%s': %w", c.platform, tenantID, err)
		}
		if !found {
			return nil, c.unregistered(tenantID)
		}

		built, err := c.build(tenantID, creds)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		// An explicit registration that landed meanwhile wins
		if existing, ok := c.clients[tenantID]; ok {
			return existing, nil
		}
		c.clients[tenantID] = built
		c.logger.Info("tenant client registered from environment", "tenant_id", tenantID)
		return built, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(H), nil
}

// Remove drops the tenant's handle. It reports whether one was present.
func (c *Cache[C, H]) Remove(tenantID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.clients[tenantID]
	delete(c.clients, tenantID)
	return ok
}

// Tenants returns the registered tenant ids, sorted.
func (c *Cache[C, H]) Tenants() []string {
	c.mu.RLock()
	ids := make([]string, 0, len(c.clients))
	for id := range c.clients {
		ids = append(ids, id)
	}
	c.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Len returns the number of cached handles.
func (c *Cache[C, H]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.clients)
}

func (c *Cache[C, H]) build(tenantID string, creds C) (H, error) {
	var zero H
	if strings.TrimSpace(tenantID) == "" {
		return zero, ErrInvalidTenant
	}
	if err := creds.Validate(); err != nil {
		return zero, fmt.Errorf("%w: %s tenant '%s': %v", ErrInvalidCredentials, c.platform, tenantID, err)
	}
	handle, err := c.factory(tenantID, creds)
	if err != nil {
		return zero, fmt.Errorf("%s: building client for tenant '%s': %w", c.platform, tenantID, err)
	}
	return handle, nil
}

func (c *Cache[C, H]) unregistered(tenantID string) error {
	return fmt.Errorf("%w: %s tenant '%s'", ErrUnregisteredTenant, c.platform, tenantID)
}
