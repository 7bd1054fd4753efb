package mongostore

import (
	"context"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/documentfs/mongofs"
	"github.com/documentfs/mongofs/config"
	"github.com/documentfs/mongofs/internal/util"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		q    mongofs.PathQuery
		want string
	}{
		{
			"children_of_root",
			mongofs.PathQuery{Dir: "/", Scope: mongofs.ScopeChildren},
			"^/[^/]+$",
		},
		{
			"children_of_dir",
			mongofs.PathQuery{Dir: "/a/b", Scope: mongofs.ScopeChildren},
			"^/a/b/[^/]+$",
		},
		{
			"subtree_of_root",
			mongofs.PathQuery{Dir: "/", Scope: mongofs.ScopeSubtree},
			"^/.+",
		},
		{
			"subtree_of_dir",
			mongofs.PathQuery{Dir: "/a", Scope: mongofs.ScopeSubtree},
			"^/a/.+",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pathPattern(tt.q))
		})
	}
}

// Directory names may contain regex metacharacters; they must match
// literally, never as patterns.
func TestPathPattern_EscapesMetacharacters(t *testing.T) {
	t.Parallel()

	q := mongofs.PathQuery{Dir: "/logs (2026)/app+web", Scope: mongofs.ScopeChildren}
	re, err := regexp.Compile(pathPattern(q))
	require.NoError(t, err)

	assert.True(t, re.MatchString("/logs (2026)/app+web/today.log"))
	assert.False(t, re.MatchString("/logs 2026X/appweb/today.log"),
		"metacharacters must not act as pattern operators")
	assert.False(t, re.MatchString("/logs (2026)/app+web/x/y"), "children scope excludes deeper paths")
}

func TestInsertDoc_DirectoriesCarryNoContent(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	doc := insertDoc(&mongofs.Record{Path: "/d", Type: mongofs.DirNode, CreatedAt: now, LastUpdatedAt: now})
	for _, e := range doc {
		assert.NotEqual(t, "content", e.Key)
		assert.NotEqual(t, "size", e.Key)
	}

	doc = insertDoc(&mongofs.Record{Path: "/f", Type: mongofs.FileNode, Content: []byte{}, CreatedAt: now, LastUpdatedAt: now})
	keys := make([]string, 0, len(doc))
	for _, e := range doc {
		keys = append(keys, e.Key)
	}
	assert.Contains(t, keys, "content")
	assert.Contains(t, keys, "size")
}

func TestSetDoc_OnlyNonNilFields(t *testing.T) {
	t.Parallel()

	set := setDoc(mongofs.RecordUpdate{Size: util.Pointer(int64(7))})
	require.Len(t, set, 1)
	assert.Equal(t, "size", set[0].Key)
	assert.Equal(t, int64(7), set[0].Value)
}

// TestIntegration exercises the adapter against a live MongoDB. Set
// MONGOFS_TEST_URI (e.g. mongodb://localhost:27017) to enable; each run uses
// a fresh uniquely named collection.
func TestIntegration(t *testing.T) {
	uri := os.Getenv("MONGOFS_TEST_URI")
	if uri == "" {
		t.Skip("MONGOFS_TEST_URI not set, skipping mongostore integration test")
	}

	ctx := context.Background()
	cfg := config.NewConfig(&config.ConfigOverride{
		URI:        &uri,
		Database:   util.Pointer("mongofs-test"),
		Collection: util.Pointer("records-" + uuid.NewString()),
	})

	s, err := Dial(ctx, cfg)
	require.NoError(t, err)
	defer func() {
		_, _ = s.DeleteMany(ctx, mongofs.PathQuery{Dir: "/", Scope: mongofs.ScopeSubtree})
		_, _ = s.DeleteOne(ctx, "/")
		require.NoError(t, s.Close(ctx))
	}()

	now := time.Now().UTC().Truncate(time.Millisecond) // BSON datetimes are ms precision
	root := &mongofs.Record{Path: "/", Type: mongofs.DirNode, CreatedAt: now, LastUpdatedAt: now}
	file := &mongofs.Record{Path: "/f.txt", Type: mongofs.FileNode, Content: []byte("hello"), Size: 5, CreatedAt: now, LastUpdatedAt: now}

	require.NoError(t, s.InsertOne(ctx, root))
	require.NoError(t, s.InsertOne(ctx, file))
	assert.ErrorIs(t, s.InsertOne(ctx, file), mongofs.ErrDuplicateKey, "unique path index enforced")

	got, err := s.FindOne(ctx, "/f.txt")
	require.NoError(t, err)
	assert.Equal(t, mongofs.FileNode, got.Type)
	assert.Equal(t, []byte("hello"), got.Content)
	assert.Equal(t, int64(5), got.Size)
	assert.Equal(t, now, got.LastUpdatedAt.UTC())

	_, err = s.FindOne(ctx, "/missing")
	assert.ErrorIs(t, err, mongofs.ErrNotFound)

	children, err := s.FindMany(ctx, mongofs.PathQuery{Dir: "/", Scope: mongofs.ScopeChildren})
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "/f.txt", children[0].Path)

	matched, err := s.UpdateOne(ctx, "/f.txt", mongofs.RecordUpdate{
		Content: util.Pointer([]byte("rewritten")),
		Size:    util.Pointer(int64(9)),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), matched)

	got, err = s.FindOne(ctx, "/f.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("rewritten"), got.Content)

	n, err := s.DeleteOne(ctx, "/f.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
