package filesystem

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/documentfs/mongofs"
)

// Create inserts an empty file record at path, guarded by the same
// parent-existence check as Mkdir.
func (e *Engine) Create(ctx context.Context, path string) error {
	return e.createNode(ctx, path, mongofs.FileNode)
}

// Open succeeds iff a record exists at path; a missing record is
// ErrAccessDenied (the legacy interface's EACCES, not ENOENT). No handle is
// allocated and no lock is taken: every subsequent read and write re-resolves
// the record by path.
func (e *Engine) Open(ctx context.Context, path string) error {
	if _, err := e.store.FindOne(ctx, path); err != nil {
		if errors.Is(err, mongofs.ErrNotFound) {
			return fmt.Errorf("open %s: %w", path, mongofs.ErrAccessDenied)
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	return nil
}

// Read returns up to length bytes of the file at path starting at offset:
// fewer if the content is shorter, none if offset is at or past the end.
// A missing record is ErrIO.
func (e *Engine) Read(ctx context.Context, path string, length, offset int64) ([]byte, error) {
	rec, err := e.loadFile(ctx, path, "read")
	if err != nil {
		return nil, err
	}
	content := rec.Content
	if offset >= int64(len(content)) {
		return nil, nil
	}
	end := offset + length
	if end > int64(len(content)) {
		end = int64(len(content))
	}
	return content[offset:end], nil
}

// Write overlays buf onto the file's content at offset and persists the
// result. A write past the current end extends the content, zero-filling the
// gap. Size is set to the true new content length, and the returned count is
// len(buf). Concurrent writers to the same path race last-write-wins.
func (e *Engine) Write(ctx context.Context, path string, buf []byte, offset int64) (int64, error) {
	rec, err := e.loadFile(ctx, path, "write")
	if err != nil {
		return 0, err
	}

	content := rec.Content
	end := offset + int64(len(buf))
	newLen := int64(len(content))
	if end > newLen {
		newLen = end
	}
	updated := make([]byte, newLen)
	copy(updated, content) // bytes between len(content) and offset stay zero
	copy(updated[offset:], buf)

	size := int64(len(updated))
	now := time.Now().UTC()
	matched, err := e.store.UpdateOne(ctx, path, mongofs.RecordUpdate{
		Content:       &updated,
		Size:          &size,
		LastUpdatedAt: &now,
	})
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	if matched == 0 {
		return 0, fmt.Errorf("write %s: update matched nothing: %w", path, mongofs.ErrIO)
	}
	e.logger.Debug().Str("path", path).Int("bytes", len(buf)).Int64("offset", offset).Msg("Wrote content")
	return int64(len(buf)), nil
}

// Truncate resets the file at path to empty content and size 0. The
// requested length is accepted and ignored: the legacy engine always
// truncated to zero, and existing consumers depend on that (see DESIGN.md).
func (e *Engine) Truncate(ctx context.Context, path string, length int64) error {
	empty := []byte{}
	var size int64
	now := time.Now().UTC()
	matched, err := e.store.UpdateOne(ctx, path, mongofs.RecordUpdate{
		Content:       &empty,
		Size:          &size,
		LastUpdatedAt: &now,
	})
	if err != nil {
		return fmt.Errorf("truncate %s: %w", path, err)
	}
	if matched == 0 {
		return fmt.Errorf("truncate %s: update matched nothing: %w", path, mongofs.ErrIO)
	}
	e.logger.Debug().Str("path", path).Int64("requested", length).Msg("Truncated to empty")
	return nil
}

// loadFile resolves the record backing a content operation. The legacy
// interface reports a missing content target as an I/O failure, not ENOENT.
func (e *Engine) loadFile(ctx context.Context, path, op string) (*mongofs.Record, error) {
	rec, err := e.store.FindOne(ctx, path)
	if err != nil {
		if errors.Is(err, mongofs.ErrNotFound) {
			return nil, fmt.Errorf("%s %s: %w", op, path, mongofs.ErrIO)
		}
		return nil, fmt.Errorf("%s %s: %w", op, path, err)
	}
	return rec, nil
}
