package filesystem

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/documentfs/mongofs"
)

// Rename rewrites the record's path in place and refreshes its timestamp,
// then rewrites every descendant's path prefix so a renamed directory keeps
// its children. Descendant rewrites are one store update per record; the
// store offers no multi-record atomicity, so a concurrent crash can leave a
// partially moved subtree (each record individually remains consistent).
// A missing source is ErrNotFound, reported from the zero-match update.
func (e *Engine) Rename(ctx context.Context, oldPath, newPath string) error {
	now := time.Now().UTC()
	matched, err := e.store.UpdateOne(ctx, oldPath, mongofs.RecordUpdate{
		Path:          &newPath,
		LastUpdatedAt: &now,
	})
	if err != nil {
		return fmt.Errorf("rename %s: %w", oldPath, err)
	}
	if matched == 0 {
		return fmt.Errorf("rename %s: %w", oldPath, mongofs.ErrNotFound)
	}

	descendants, err := e.store.FindMany(ctx, mongofs.PathQuery{Dir: oldPath, Scope: mongofs.ScopeSubtree})
	if err != nil {
		return fmt.Errorf("rename %s: list descendants: %w", oldPath, err)
	}
	for i := range descendants {
		moved := newPath + strings.TrimPrefix(descendants[i].Path, oldPath)
		if _, err := e.store.UpdateOne(ctx, descendants[i].Path, mongofs.RecordUpdate{
			Path:          &moved,
			LastUpdatedAt: &now,
		}); err != nil {
			return fmt.Errorf("rename %s: move %s: %w", oldPath, descendants[i].Path, err)
		}
	}

	e.logger.Debug().Str("old", oldPath).Str("new", newPath).Int("descendants", len(descendants)).Msg("Renamed")
	return nil
}
