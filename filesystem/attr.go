package filesystem

import (
	"syscall"
	"time"

	"github.com/documentfs/mongofs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// attrBlockSize is the legacy accounting block: st_blocks counts 1 MB units.
const attrBlockSize = 1_000_000

// dirSize is the fixed reported size of a directory.
const dirSize = 4096

// Caller identifies the requesting process. The bridge supplies it per call
// from the kernel request context; it is never persisted.
type Caller struct {
	UID uint32
	GID uint32
	PID uint32
}

// BuildAttr synthesizes filesystem attributes from a stored record and the
// caller identity. Permission bits are fixed (no per-node modes are ever
// persisted): directories report 0777, files 0666. mtime and ctime both
// reflect the record's last update; atime is the wall clock at call time.
func BuildAttr(rec *mongofs.Record, caller Caller) *fuse.Attr {
	now := time.Now()
	updated := rec.LastUpdatedAt

	attr := &fuse.Attr{
		Owner: fuse.Owner{
			Uid: caller.UID,
			Gid: caller.GID,
		},
		Atime:     uint64(now.Unix()),
		Atimensec: uint32(now.Nanosecond()),
		Mtime:     uint64(updated.Unix()),
		Mtimensec: uint32(updated.Nanosecond()),
		Ctime:     uint64(updated.Unix()),
		Ctimensec: uint32(updated.Nanosecond()),
		Blksize:   4096,
	}

	if rec.IsDir() {
		attr.Size = dirSize
		attr.Mode = uint32(syscall.S_IFDIR | 0o777)
		attr.Nlink = 2
	} else {
		attr.Size = uint64(rec.Size)
		attr.Mode = uint32(syscall.S_IFREG | 0o666)
		attr.Nlink = 1
	}

	attr.Blocks = (attr.Size + attrBlockSize - 1) / attrBlockSize
	return attr
}
