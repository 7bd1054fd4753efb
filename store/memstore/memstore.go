// Package memstore provides an in-memory record store with the same
// unique-path and per-operation atomicity semantics as the MongoDB adapter.
// It backs the engine's tests and memory:// mounts.
package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/documentfs/mongofs"
	"github.com/documentfs/mongofs/config"
	"github.com/puzpuzpuz/xsync/v4"
)

// Store keeps records in a concurrent map keyed by path. Point reads are
// lock-free; mutations serialize on a mutex so read-modify-write updates and
// path rewrites keep the unique-key guarantee.
type Store struct {
	recs *xsync.Map[string, mongofs.Record]
	mu   sync.Mutex
}

var _ mongofs.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{recs: xsync.NewMap[string, mongofs.Record]()}
}

// Dial is the memory:// store factory. The config is unused beyond driver
// selection.
func Dial(_ context.Context, _ *config.Config) (mongofs.Store, error) {
	return New(), nil
}

func (s *Store) FindOne(_ context.Context, path string) (*mongofs.Record, error) {
	rec, ok := s.recs.Load(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, mongofs.ErrNotFound)
	}
	return cloneRecord(rec), nil
}

func (s *Store) FindMany(_ context.Context, q mongofs.PathQuery) ([]mongofs.Record, error) {
	var out []mongofs.Record
	s.recs.Range(func(path string, rec mongofs.Record) bool {
		if matches(q, path) {
			out = append(out, *cloneRecord(rec))
		}
		return true
	})
	return out, nil
}

func (s *Store) InsertOne(_ context.Context, rec *mongofs.Record) error {
	if _, loaded := s.recs.LoadOrStore(rec.Path, *cloneRecord(*rec)); loaded {
		return fmt.Errorf("%s: %w", rec.Path, mongofs.ErrDuplicateKey)
	}
	return nil
}

func (s *Store) UpdateOne(_ context.Context, path string, upd mongofs.RecordUpdate) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recs.Load(path)
	if !ok {
		return 0, nil
	}

	if upd.Content != nil {
		rec.Content = append([]byte(nil), *upd.Content...)
	}
	if upd.Size != nil {
		rec.Size = *upd.Size
	}
	if upd.LastUpdatedAt != nil {
		rec.LastUpdatedAt = *upd.LastUpdatedAt
	}

	if upd.Path != nil && *upd.Path != path {
		// A path rewrite is a keyed move; the unique key still applies.
		if _, exists := s.recs.Load(*upd.Path); exists {
			return 0, fmt.Errorf("%s: %w", *upd.Path, mongofs.ErrDuplicateKey)
		}
		s.recs.Delete(path)
		rec.Path = *upd.Path
		s.recs.Store(rec.Path, rec)
		return 1, nil
	}

	s.recs.Store(path, rec)
	return 1, nil
}

func (s *Store) DeleteOne(_ context.Context, path string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, loaded := s.recs.LoadAndDelete(path); loaded {
		return 1, nil
	}
	return 0, nil
}

func (s *Store) DeleteMany(_ context.Context, q mongofs.PathQuery) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var paths []string
	s.recs.Range(func(path string, _ mongofs.Record) bool {
		if matches(q, path) {
			paths = append(paths, path)
		}
		return true
	})
	for _, p := range paths {
		s.recs.Delete(p)
	}
	return int64(len(paths)), nil
}

func (s *Store) Close(context.Context) error {
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	return s.recs.Size()
}

// matches decides whether path falls inside the query: strictly below
// q.Dir, and for ScopeChildren with no further separator in the remainder.
func matches(q mongofs.PathQuery, path string) bool {
	prefix := q.Dir + "/"
	if q.Dir == "/" {
		prefix = "/"
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	if rest == "" {
		return false
	}
	if q.Scope == mongofs.ScopeChildren {
		return !strings.Contains(rest, "/")
	}
	return true
}

// cloneRecord copies a record including its content bytes so callers never
// alias stored state.
func cloneRecord(rec mongofs.Record) *mongofs.Record {
	out := rec
	if rec.Content != nil {
		out.Content = append([]byte(nil), rec.Content...)
	}
	return &out
}
