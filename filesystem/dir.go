package filesystem

import (
	"context"
	"fmt"
	"sort"

	"github.com/documentfs/mongofs"
)

// DirEntry is one readdir row: the bare child name plus its node type.
type DirEntry struct {
	Name string
	Type mongofs.NodeType
}

// Mkdir inserts a directory record at path. The parent path must already
// hold a directory record (ErrParentMissing otherwise, which the bridge
// reports as EIO, not ENOENT).
func (e *Engine) Mkdir(ctx context.Context, path string) error {
	return e.createNode(ctx, path, mongofs.DirNode)
}

// Rmdir deletes the record at path, then best-effort every descendant
// record. The two deletions are not atomic with each other, emptiness is
// not checked, and a missing directory is a success: unlike unlink, rmdir
// is idempotent. That asymmetry is part of the legacy interface and is
// pinned by tests.
func (e *Engine) Rmdir(ctx context.Context, path string) error {
	if _, err := e.store.DeleteOne(ctx, path); err != nil {
		return fmt.Errorf("rmdir %s: %w", path, err)
	}
	n, err := e.store.DeleteMany(ctx, mongofs.PathQuery{Dir: path, Scope: mongofs.ScopeSubtree})
	if err != nil {
		return fmt.Errorf("rmdir %s: %w", path, err)
	}
	e.logger.Debug().Str("path", path).Int64("descendants", n).Msg("Removed directory")
	return nil
}

// ReadDir lists path: the two structural entries "." and "..", then every
// direct child (one path segment below, not the full subtree) as its bare
// name, in ascending path order. The readdir offset accepted at the bridge
// is ignored; the listing is re-derived per call.
func (e *Engine) ReadDir(ctx context.Context, path string) ([]DirEntry, error) {
	recs, err := e.store.FindMany(ctx, mongofs.PathQuery{Dir: path, Scope: mongofs.ScopeChildren})
	if err != nil {
		return nil, fmt.Errorf("readdir %s: %w", path, err)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Path < recs[j].Path })

	entries := make([]DirEntry, 0, len(recs)+2)
	entries = append(entries,
		DirEntry{Name: ".", Type: mongofs.DirNode},
		DirEntry{Name: "..", Type: mongofs.DirNode},
	)
	for i := range recs {
		entries = append(entries, DirEntry{
			Name: ChildName(path, recs[i].Path),
			Type: recs[i].Type,
		})
	}
	return entries, nil
}

// Unlink removes the file record at path. A missing record is ErrNotFound
// (strict, unlike rmdir); a directory record is ErrIsDirectory and nothing
// is deleted.
func (e *Engine) Unlink(ctx context.Context, path string) error {
	rec, err := e.store.FindOne(ctx, path)
	if err != nil {
		return fmt.Errorf("unlink %s: %w", path, err)
	}
	if rec.IsDir() {
		return fmt.Errorf("unlink %s: %w", path, mongofs.ErrIsDirectory)
	}
	if _, err := e.store.DeleteOne(ctx, path); err != nil {
		return fmt.Errorf("unlink %s: %w", path, err)
	}
	e.logger.Debug().Str("path", path).Msg("Unlinked file")
	return nil
}
