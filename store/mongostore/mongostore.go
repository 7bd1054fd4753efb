// Package mongostore adapts a MongoDB collection to the record store
// contract. Records live as path-keyed documents; a unique index on the
// path field enforces the filesystem's unique-path invariant at the store
// level, and prefix queries compile to anchored regexes.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/documentfs/mongofs"
	"github.com/documentfs/mongofs/config"
	"github.com/documentfs/mongofs/internal/util"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Store is the MongoDB record store adapter. The driver's connection pool
// makes it safe for concurrent use; every call is bounded by the configured
// per-operation timeout.
type Store struct {
	client    *mongo.Client
	col       *mongo.Collection
	opTimeout time.Duration
	logger    zerolog.Logger
}

var _ mongofs.Store = (*Store)(nil)

// Dial connects to MongoDB per the config, verifies the connection, and
// ensures the unique path index before returning the adapter.
func Dial(ctx context.Context, cfg *config.Config) (mongofs.Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.URI, err)
	}

	s := &Store{
		client:    client,
		col:       client.Database(cfg.Database).Collection(cfg.Collection),
		opTimeout: cfg.OpTimeout,
		logger:    util.GetLogger("mongostore"),
	}

	octx, cancel := s.opCtx(ctx)
	defer cancel()
	if err := client.Ping(octx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping %s: %w", cfg.URI, err)
	}
	if _, err := s.col.Indexes().CreateOne(octx, mongo.IndexModel{
		Keys:    bson.D{{Key: "path", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ensure path index: %w", err)
	}

	s.logger.Info().Str("database", cfg.Database).Str("collection", cfg.Collection).Msg("Connected")
	return s, nil
}

func (s *Store) FindOne(ctx context.Context, path string) (*mongofs.Record, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var rec mongofs.Record
	err := s.col.FindOne(ctx, bson.D{{Key: "path", Value: path}}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", path, mongofs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", path, err)
	}
	return &rec, nil
}

func (s *Store) FindMany(ctx context.Context, q mongofs.PathQuery) ([]mongofs.Record, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	cursor, err := s.col.Find(ctx,
		bson.D{{Key: "path", Value: bson.D{{Key: "$regex", Value: pathPattern(q)}}}},
		options.Find().SetSort(bson.D{{Key: "path", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find under %s: %w", q.Dir, err)
	}
	var recs []mongofs.Record
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("find under %s: %w", q.Dir, err)
	}
	return recs, nil
}

func (s *Store) InsertOne(ctx context.Context, rec *mongofs.Record) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	_, err := s.col.InsertOne(ctx, insertDoc(rec))
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", rec.Path, mongofs.ErrDuplicateKey)
	}
	if err != nil {
		return fmt.Errorf("insert %s: %w", rec.Path, err)
	}
	return nil
}

func (s *Store) UpdateOne(ctx context.Context, path string, upd mongofs.RecordUpdate) (int64, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	res, err := s.col.UpdateOne(ctx,
		bson.D{{Key: "path", Value: path}},
		bson.D{{Key: "$set", Value: setDoc(upd)}},
	)
	if mongo.IsDuplicateKeyError(err) {
		// A path rewrite landed on an occupied path.
		return 0, fmt.Errorf("%s: %w", path, mongofs.ErrDuplicateKey)
	}
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", path, err)
	}
	return res.MatchedCount, nil
}

func (s *Store) DeleteOne(ctx context.Context, path string) (int64, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	res, err := s.col.DeleteOne(ctx, bson.D{{Key: "path", Value: path}})
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", path, err)
	}
	return res.DeletedCount, nil
}

func (s *Store) DeleteMany(ctx context.Context, q mongofs.PathQuery) (int64, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	res, err := s.col.DeleteMany(ctx,
		bson.D{{Key: "path", Value: bson.D{{Key: "$regex", Value: pathPattern(q)}}}},
	)
	if err != nil {
		return 0, fmt.Errorf("delete under %s: %w", q.Dir, err)
	}
	return res.DeletedCount, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// opCtx bounds a single store round-trip. The engine carries no timeout of
// its own; this is the only cancellation point.
func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// pathPattern compiles a query to an anchored regex. The directory path is
// quoted: node names may contain regex metacharacters and must match
// literally.
func pathPattern(q mongofs.PathQuery) string {
	prefix := q.Dir + "/"
	if q.Dir == "/" {
		prefix = "/"
	}
	quoted := regexp.QuoteMeta(prefix)
	if q.Scope == mongofs.ScopeChildren {
		return "^" + quoted + "[^/]+$"
	}
	return "^" + quoted + ".+"
}

// insertDoc builds the insert document. Content and size are written only
// for file records; directory documents never carry them.
func insertDoc(rec *mongofs.Record) bson.D {
	doc := bson.D{
		{Key: "path", Value: rec.Path},
		{Key: "type", Value: string(rec.Type)},
		{Key: "created_at", Value: rec.CreatedAt},
		{Key: "last_updated_at", Value: rec.LastUpdatedAt},
	}
	if rec.Type == mongofs.FileNode {
		doc = append(doc,
			bson.E{Key: "content", Value: rec.Content},
			bson.E{Key: "size", Value: rec.Size},
		)
	}
	return doc
}

// setDoc builds a minimal $set document from the update's non-nil fields.
func setDoc(upd mongofs.RecordUpdate) bson.D {
	set := bson.D{}
	if upd.Path != nil {
		set = append(set, bson.E{Key: "path", Value: *upd.Path})
	}
	if upd.Content != nil {
		set = append(set, bson.E{Key: "content", Value: *upd.Content})
	}
	if upd.Size != nil {
		set = append(set, bson.E{Key: "size", Value: *upd.Size})
	}
	if upd.LastUpdatedAt != nil {
		set = append(set, bson.E{Key: "last_updated_at", Value: *upd.LastUpdatedAt})
	}
	return set
}
