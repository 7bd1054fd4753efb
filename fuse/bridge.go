// Package fuse is the kernel-facing bridge: it marshals FUSE requests into
// engine calls and maps typed engine failures back onto OS status codes.
package fuse

import (
	"context"
	"syscall"

	"github.com/documentfs/mongofs"
	"github.com/documentfs/mongofs/filesystem"
	"github.com/documentfs/mongofs/internal/util"
	gofs "github.com/hanwen/go-fuse/v2/fs"
	gofuse "github.com/hanwen/go-fuse/v2/fuse"
)

// Node is a kernel-facing node bound to one record path. Nodes hold no
// record state and allocate no handles: every operation re-resolves its path
// against the engine, so concurrent kernel requests race only at the store.
type Node struct {
	gofs.Inode
	engine *filesystem.Engine
	path   string
}

var (
	_ = (gofs.NodeLookuper)((*Node)(nil))
	_ = (gofs.NodeGetattrer)((*Node)(nil))
	_ = (gofs.NodeSetattrer)((*Node)(nil))
	_ = (gofs.NodeReaddirer)((*Node)(nil))
	_ = (gofs.NodeMkdirer)((*Node)(nil))
	_ = (gofs.NodeRmdirer)((*Node)(nil))
	_ = (gofs.NodeCreater)((*Node)(nil))
	_ = (gofs.NodeUnlinker)((*Node)(nil))
	_ = (gofs.NodeRenamer)((*Node)(nil))
	_ = (gofs.NodeOpener)((*Node)(nil))
	_ = (gofs.NodeReader)((*Node)(nil))
	_ = (gofs.NodeWriter)((*Node)(nil))
	_ = (gofs.NodeStatfser)((*Node)(nil))
	_ = (gofs.NodeFsyncer)((*Node)(nil))
	_ = (gofs.NodeSymlinker)((*Node)(nil))
	_ = (gofs.NodeLinker)((*Node)(nil))
	_ = (gofs.NodeReadlinker)((*Node)(nil))
	_ = (gofs.NodeMknoder)((*Node)(nil))
)

// NewRoot returns the bridge node for the filesystem root.
func NewRoot(engine *filesystem.Engine) *Node {
	return &Node{engine: engine, path: "/"}
}

func (n *Node) childPath(name string) string {
	if n.path == "/" {
		return "/" + name
	}
	return n.path + "/" + name
}

// caller extracts the requesting process identity from the kernel request.
func caller(ctx context.Context) filesystem.Caller {
	if c, ok := gofuse.FromContext(ctx); ok {
		return filesystem.Caller{UID: c.Uid, GID: c.Gid, PID: c.Pid}
	}
	return filesystem.Caller{}
}

func modeOf(t mongofs.NodeType) uint32 {
	if t == mongofs.DirNode {
		return syscall.S_IFDIR
	}
	return syscall.S_IFREG
}

func (n *Node) Lookup(ctx context.Context, name string, out *gofuse.EntryOut) (*gofs.Inode, syscall.Errno) {
	path := n.childPath(name)
	rec, err := n.engine.Lookup(ctx, path)
	if err != nil {
		return nil, errno(err)
	}
	out.Attr = *filesystem.BuildAttr(rec, caller(ctx))
	child := n.NewInode(ctx, &Node{engine: n.engine, path: path}, gofs.StableAttr{Mode: modeOf(rec.Type)})
	return child, 0
}

func (n *Node) Getattr(ctx context.Context, _ gofs.FileHandle, out *gofuse.AttrOut) syscall.Errno {
	attr, err := n.engine.Getattr(ctx, n.path, caller(ctx))
	if err != nil {
		return errno(err)
	}
	out.Attr = *attr
	return 0
}

// Setattr accepts mode, owner, and time changes without effect; only a size
// change carries semantics and is routed through truncate.
func (n *Node) Setattr(ctx context.Context, _ gofs.FileHandle, in *gofuse.SetAttrIn, out *gofuse.AttrOut) syscall.Errno {
	if sz, ok := in.GetSize(); ok {
		if err := n.engine.Truncate(ctx, n.path, int64(sz)); err != nil {
			return errno(err)
		}
	}
	attr, err := n.engine.Getattr(ctx, n.path, caller(ctx))
	if err != nil {
		return errno(err)
	}
	out.Attr = *attr
	return 0
}

func (n *Node) Readdir(ctx context.Context) (gofs.DirStream, syscall.Errno) {
	entries, err := n.engine.ReadDir(ctx, n.path)
	if err != nil {
		return nil, errno(err)
	}
	out := make([]gofuse.DirEntry, 0, len(entries))
	for _, ent := range entries {
		out = append(out, gofuse.DirEntry{Name: ent.Name, Mode: modeOf(ent.Type)})
	}
	return gofs.NewListDirStream(out), 0
}

func (n *Node) Mkdir(ctx context.Context, name string, mode uint32, out *gofuse.EntryOut) (*gofs.Inode, syscall.Errno) {
	path := n.childPath(name)
	if err := n.engine.Mkdir(ctx, path); err != nil {
		return nil, errno(err)
	}
	rec, err := n.engine.Lookup(ctx, path)
	if err != nil {
		return nil, errno(err)
	}
	out.Attr = *filesystem.BuildAttr(rec, caller(ctx))
	return n.NewInode(ctx, &Node{engine: n.engine, path: path}, gofs.StableAttr{Mode: syscall.S_IFDIR}), 0
}

func (n *Node) Rmdir(ctx context.Context, name string) syscall.Errno {
	return errno(n.engine.Rmdir(ctx, n.childPath(name)))
}

func (n *Node) Create(ctx context.Context, name string, flags, mode uint32, out *gofuse.EntryOut) (*gofs.Inode, gofs.FileHandle, uint32, syscall.Errno) {
	path := n.childPath(name)
	if err := n.engine.Create(ctx, path); err != nil {
		return nil, nil, 0, errno(err)
	}
	rec, err := n.engine.Lookup(ctx, path)
	if err != nil {
		return nil, nil, 0, errno(err)
	}
	out.Attr = *filesystem.BuildAttr(rec, caller(ctx))
	child := n.NewInode(ctx, &Node{engine: n.engine, path: path}, gofs.StableAttr{Mode: syscall.S_IFREG})
	return child, nil, gofuse.FOPEN_DIRECT_IO, 0
}

func (n *Node) Unlink(ctx context.Context, name string) syscall.Errno {
	return errno(n.engine.Unlink(ctx, n.childPath(name)))
}

func (n *Node) Rename(ctx context.Context, name string, newParent gofs.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	np, ok := newParent.(*Node)
	if !ok {
		return syscall.EXDEV
	}
	return errno(n.engine.Rename(ctx, n.childPath(name), np.childPath(newName)))
}

// Open allocates nothing: reads and writes re-resolve the path per call, so
// the kernel's page cache is bypassed with direct IO.
func (n *Node) Open(ctx context.Context, flags uint32) (gofs.FileHandle, uint32, syscall.Errno) {
	if err := n.engine.Open(ctx, n.path); err != nil {
		return nil, 0, errno(err)
	}
	return nil, gofuse.FOPEN_DIRECT_IO, 0
}

func (n *Node) Read(ctx context.Context, _ gofs.FileHandle, dest []byte, off int64) (gofuse.ReadResult, syscall.Errno) {
	data, err := n.engine.Read(ctx, n.path, int64(len(dest)), off)
	if err != nil {
		return nil, errno(err)
	}
	return gofuse.ReadResultData(data), 0
}

func (n *Node) Write(ctx context.Context, _ gofs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	written, err := n.engine.Write(ctx, n.path, data, off)
	if err != nil {
		return 0, errno(err)
	}
	return uint32(written), 0
}

func (n *Node) Statfs(ctx context.Context, out *gofuse.StatfsOut) syscall.Errno {
	st := n.engine.StatFS()
	out.Bsize = st.BlockSize
	out.Frsize = st.FragmentSize
	out.Blocks = st.Blocks
	out.Bfree = st.Free
	out.Bavail = st.Avail
	return 0
}

// Fsync is a no-op: every write already round-trips to the store.
func (n *Node) Fsync(ctx context.Context, _ gofs.FileHandle, flags uint32) syscall.Errno {
	return 0
}

// Symlink is accepted without effect. No record is created; the returned
// entry is ephemeral and will not survive a fresh lookup.
func (n *Node) Symlink(ctx context.Context, target, name string, out *gofuse.EntryOut) (*gofs.Inode, syscall.Errno) {
	logger := util.GetLogger("fuse")
	logger.Debug().Str("name", name).Str("target", target).Msg("Symlink accepted as no-op")
	out.Attr.Mode = uint32(syscall.S_IFLNK | 0o777)
	child := n.NewInode(ctx, &Node{engine: n.engine, path: n.childPath(name)}, gofs.StableAttr{Mode: syscall.S_IFLNK})
	return child, 0
}

// Link is accepted without effect.
func (n *Node) Link(ctx context.Context, target gofs.InodeEmbedder, name string, out *gofuse.EntryOut) (*gofs.Inode, syscall.Errno) {
	out.Attr.Mode = uint32(syscall.S_IFREG | 0o666)
	child := n.NewInode(ctx, &Node{engine: n.engine, path: n.childPath(name)}, gofs.StableAttr{Mode: syscall.S_IFREG})
	return child, 0
}

// Readlink is accepted without effect; no link targets are ever stored.
func (n *Node) Readlink(ctx context.Context) ([]byte, syscall.Errno) {
	return nil, 0
}

// Mknod is accepted without effect.
func (n *Node) Mknod(ctx context.Context, name string, mode, dev uint32, out *gofuse.EntryOut) (*gofs.Inode, syscall.Errno) {
	out.Attr.Mode = mode
	child := n.NewInode(ctx, &Node{engine: n.engine, path: n.childPath(name)}, gofs.StableAttr{Mode: mode & syscall.S_IFMT})
	return child, 0
}
