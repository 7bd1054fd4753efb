// Package filesystem implements the path-to-record mapping engine: it
// translates filesystem operations into record store queries while
// synthesizing the tree semantics (parent guards, recursive deletion,
// child listing, attribute synthesis) the flat store does not provide.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/documentfs/mongofs"
	"github.com/documentfs/mongofs/config"
	"github.com/documentfs/mongofs/internal/util"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/rs/zerolog"
)

// Engine is the facade consumed by the kernel bridge. It is stateless beyond
// the store handle: no locks, no handle table, no cache — every operation is
// a fresh store round-trip, so the engine is safe for concurrent use as long
// as the store is.
type Engine struct {
	store  mongofs.Store
	cfg    *config.Config
	logger zerolog.Logger
}

// NewEngine wires the engine to its record store and bootstraps the root
// directory record if this is the first mount of the collection. A
// concurrent mount winning the bootstrap race is tolerated.
func NewEngine(ctx context.Context, store mongofs.Store, cfg *config.Config) (*Engine, error) {
	e := &Engine{
		store:  store,
		cfg:    cfg,
		logger: util.GetLogger("filesystem"),
	}

	_, err := store.FindOne(ctx, "/")
	switch {
	case err == nil:
		return e, nil
	case !errors.Is(err, mongofs.ErrNotFound):
		return nil, fmt.Errorf("root lookup: %w", err)
	}

	e.logger.Info().Str("collection", cfg.Collection).Msg("No root record, bootstrapping")
	if err := store.InsertOne(ctx, newRecord("/", mongofs.DirNode)); err != nil && !errors.Is(err, mongofs.ErrDuplicateKey) {
		return nil, fmt.Errorf("root bootstrap: %w", err)
	}
	return e, nil
}

// Store exposes the engine's record store handle.
func (e *Engine) Store() mongofs.Store {
	return e.store
}

// Lookup returns the record stored at path, or ErrNotFound.
func (e *Engine) Lookup(ctx context.Context, path string) (*mongofs.Record, error) {
	return e.store.FindOne(ctx, path)
}

// Getattr synthesizes filesystem attributes for the record at path.
// Read-only: nothing is persisted, including atime.
func (e *Engine) Getattr(ctx context.Context, path string, caller Caller) (*fuse.Attr, error) {
	rec, err := e.store.FindOne(ctx, path)
	if err != nil {
		return nil, err
	}
	return BuildAttr(rec, caller), nil
}

// StatFS reports capacity figures for the mount.
type StatFS struct {
	BlockSize    uint32
	FragmentSize uint32
	Blocks       uint64
	Free         uint64
	Avail        uint64
}

// StatFS returns fixed, non-reflective capacity figures: the store has no
// meaningful block accounting to surface.
func (e *Engine) StatFS() StatFS {
	return StatFS{
		BlockSize:    256,
		FragmentSize: 256,
		Blocks:       200_000,
		Free:         200_000,
		Avail:        200_000,
	}
}

// Wipe deletes every record and re-bootstraps the root directory. This is an
// administrative operation; concurrent filesystem callers will observe the
// tree vanishing underneath them.
func (e *Engine) Wipe(ctx context.Context) error {
	if _, err := e.store.DeleteMany(ctx, mongofs.PathQuery{Dir: "/", Scope: mongofs.ScopeSubtree}); err != nil {
		return fmt.Errorf("wipe: %w", err)
	}
	if _, err := e.store.DeleteOne(ctx, "/"); err != nil {
		return fmt.Errorf("wipe: %w", err)
	}
	e.logger.Warn().Msg("Store wiped, re-creating root")
	return e.store.InsertOne(ctx, newRecord("/", mongofs.DirNode))
}

// createNode inserts a new record at path after the parent-existence guard:
// the parent path must hold a directory record. Duplicate paths are rejected
// by the store's unique key and surface as ErrDuplicateKey.
func (e *Engine) createNode(ctx context.Context, path string, t mongofs.NodeType) error {
	parent := ParentPath(path)
	prec, err := e.store.FindOne(ctx, parent)
	if err != nil {
		if errors.Is(err, mongofs.ErrNotFound) {
			return fmt.Errorf("create %s: %w", path, mongofs.ErrParentMissing)
		}
		return fmt.Errorf("create %s: %w", path, err)
	}
	if !prec.IsDir() {
		return fmt.Errorf("create %s: parent is a file: %w", path, mongofs.ErrParentMissing)
	}

	if err := e.store.InsertOne(ctx, newRecord(path, t)); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	e.logger.Debug().Str("path", path).Str("type", string(t)).Msg("Created node")
	return nil
}

// newRecord builds a record with both timestamps set to now. File records
// start with explicit empty content so size stays coherent from birth.
func newRecord(path string, t mongofs.NodeType) *mongofs.Record {
	now := time.Now().UTC()
	rec := &mongofs.Record{
		Path:          path,
		Type:          t,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
	if t == mongofs.FileNode {
		rec.Content = []byte{}
		rec.Size = 0
	}
	return rec
}
