// Package mongofs defines the shared types of the document-store filesystem:
// the persisted node record, the record store contract every adapter
// implements, and the typed error kinds the engine and the kernel bridge
// agree on.
package mongofs

import (
	"context"
	"time"
)

// NodeType is the kind of a stored node.
type NodeType string

const (
	DirNode  NodeType = "dir"
	FileNode NodeType = "file"
)

// Record is the persisted unit representing either a directory or a file.
// Path is the unique key: absolute, '/'-separated, no trailing slash except
// the root "/". Content and Size are meaningful only for file records;
// directory records never carry them.
type Record struct {
	Path          string    `bson:"path" json:"path"`
	Type          NodeType  `bson:"type" json:"type"`
	Content       []byte    `bson:"content,omitempty" json:"content,omitempty"`
	Size          int64     `bson:"size,omitempty" json:"size,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	LastUpdatedAt time.Time `bson:"last_updated_at" json:"last_updated_at"`
}

// IsDir reports whether the record is a directory.
func (r *Record) IsDir() bool {
	return r.Type == DirNode
}

// Scope selects how much of the tree below a directory a PathQuery matches.
type Scope int

const (
	// ScopeChildren matches records exactly one path segment below Dir.
	ScopeChildren Scope = iota
	// ScopeSubtree matches every record strictly below Dir, at any depth.
	ScopeSubtree
)

// PathQuery describes a prefix query over record paths. Adapters compile it
// to their store's own pattern syntax; callers never hand-build patterns, so
// metacharacter escaping stays an adapter concern. The directory itself is
// never part of the result set.
type PathQuery struct {
	Dir   string
	Scope Scope
}

// RecordUpdate names the record fields a single update may set. Nil fields
// are left untouched, letting adapters build minimal field-set updates.
type RecordUpdate struct {
	Path          *string
	Content       *[]byte
	Size          *int64
	LastUpdatedAt *time.Time
}

// Store is the record store contract. Implementations provide per-operation
// atomicity only: there are no multi-record transactions, and callers must
// not assume any ordering between separate calls. Implementations must be
// safe for concurrent use by multiple goroutines.
type Store interface {
	// FindOne returns the record whose path equals path, or ErrNotFound.
	FindOne(ctx context.Context, path string) (*Record, error)

	// FindMany returns every record matching the query, in no particular
	// order; callers impose their own ordering.
	FindMany(ctx context.Context, q PathQuery) ([]Record, error)

	// InsertOne stores a new record. A record already present at the same
	// path is rejected with ErrDuplicateKey.
	InsertOne(ctx context.Context, rec *Record) error

	// UpdateOne applies upd to the record whose path equals path and
	// returns the matched count (0 or 1). Rewriting Path onto an occupied
	// path is rejected with ErrDuplicateKey.
	UpdateOne(ctx context.Context, path string, upd RecordUpdate) (int64, error)

	// DeleteOne removes the record whose path equals path and returns the
	// deleted count (0 or 1). A missing record is not an error.
	DeleteOne(ctx context.Context, path string) (int64, error)

	// DeleteMany removes every record matching the query and returns the
	// deleted count.
	DeleteMany(ctx context.Context, q PathQuery) (int64, error)

	// Close releases the underlying connection or session.
	Close(ctx context.Context) error
}
