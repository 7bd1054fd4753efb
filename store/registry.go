// Package store selects a record store driver from the configured URI.
package store

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/documentfs/mongofs"
	"github.com/documentfs/mongofs/config"
	"github.com/documentfs/mongofs/store/memstore"
	"github.com/documentfs/mongofs/store/mongostore"
)

// Factory dials a record store for the given config.
type Factory func(ctx context.Context, cfg *config.Config) (mongofs.Store, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register ties a factory to a URI scheme and should be called for each
// store driver during app init.
func Register(scheme string, f Factory) {
	mu.Lock()
	factories[scheme] = f
	mu.Unlock()
}

// RegisterBuiltins registers every store driver shipped with mongofs.
func RegisterBuiltins() {
	Register("mongodb", mongostore.Dial)
	Register("mongodb+srv", mongostore.Dial)
	Register("memory", memstore.Dial)
}

// Dial picks the driver registered for the config URI's scheme and dials it.
// All expected drivers should be registered with [Register] before calling
// this function.
func Dial(ctx context.Context, cfg *config.Config) (mongofs.Store, error) {
	u, err := url.Parse(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("parse store uri: %w", err)
	}
	mu.RLock()
	f, ok := factories[u.Scheme]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no store driver for scheme %q", u.Scheme)
	}
	return f(ctx, cfg)
}
