package filesystem

import (
	"syscall"
	"testing"
	"time"

	"github.com/documentfs/mongofs"
	"github.com/stretchr/testify/assert"
)

func TestBuildAttr_Directory(t *testing.T) {
	t.Parallel()

	updated := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	rec := &mongofs.Record{
		Path:          "/docs",
		Type:          mongofs.DirNode,
		CreatedAt:     updated,
		LastUpdatedAt: updated,
	}

	attr := BuildAttr(rec, Caller{UID: 1000, GID: 1000, PID: 42})

	assert.Equal(t, uint64(4096), attr.Size, "directories report a fixed 4KB size")
	assert.Equal(t, uint32(syscall.S_IFDIR|0o777), attr.Mode)
	assert.Equal(t, uint32(2), attr.Nlink)
	assert.Equal(t, uint32(1000), attr.Owner.Uid)
	assert.Equal(t, uint32(1000), attr.Owner.Gid)
	assert.Equal(t, uint64(updated.Unix()), attr.Mtime)
	assert.Equal(t, uint64(updated.Unix()), attr.Ctime, "ctime mirrors mtime")
	assert.Equal(t, uint64(1), attr.Blocks)
}

func TestBuildAttr_File(t *testing.T) {
	t.Parallel()

	updated := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	rec := &mongofs.Record{
		Path:          "/docs/report.txt",
		Type:          mongofs.FileNode,
		Content:       []byte("hello"),
		Size:          5,
		CreatedAt:     updated,
		LastUpdatedAt: updated,
	}

	attr := BuildAttr(rec, Caller{UID: 500, GID: 501})

	assert.Equal(t, uint64(5), attr.Size)
	assert.Equal(t, uint32(syscall.S_IFREG|0o666), attr.Mode)
	assert.Equal(t, uint32(1), attr.Nlink)
	assert.Equal(t, uint32(500), attr.Owner.Uid)
	assert.Equal(t, uint32(501), attr.Owner.Gid)
	assert.Equal(t, uint64(1), attr.Blocks)
}

func TestBuildAttr_Blocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		size int64
		want uint64
	}{
		{"empty", 0, 0},
		{"one_byte", 1, 1},
		{"just_under_block", 999_999, 1},
		{"exact_block", 1_000_000, 1},
		{"one_over_block", 1_000_001, 2},
		{"several_blocks", 3_500_000, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &mongofs.Record{Type: mongofs.FileNode, Size: tt.size}
			attr := BuildAttr(rec, Caller{})
			assert.Equal(t, tt.want, attr.Blocks)
		})
	}
}

func TestBuildAttr_AtimeIsCallTime(t *testing.T) {
	t.Parallel()

	before := time.Now().Unix()
	rec := &mongofs.Record{Type: mongofs.FileNode, LastUpdatedAt: time.Unix(0, 0)}
	attr := BuildAttr(rec, Caller{})
	after := time.Now().Unix()

	assert.GreaterOrEqual(t, attr.Atime, uint64(before))
	assert.LessOrEqual(t, attr.Atime, uint64(after))
	assert.Equal(t, uint64(0), attr.Mtime, "mtime stays on the record's timestamp")
}
