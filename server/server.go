// Package server composes the engine with the kernel bridge and owns the
// fuse server lifecycle.
package server

import (
	"time"

	"github.com/documentfs/mongofs/config"
	"github.com/documentfs/mongofs/filesystem"
	mfuse "github.com/documentfs/mongofs/fuse"
	"github.com/documentfs/mongofs/internal/util"
	gofs "github.com/hanwen/go-fuse/v2/fs"
	gofuse "github.com/hanwen/go-fuse/v2/fuse"
)

// MongoFs is a mounted (or mountable) filesystem instance.
type MongoFs struct {
	engine *filesystem.Engine
	cfg    *config.Config
	server *gofuse.Server
}

// New creates a MongoFs instance over an initialized engine.
func New(engine *filesystem.Engine, cfg *config.Config) *MongoFs {
	return &MongoFs{engine: engine, cfg: cfg}
}

// Engine exposes the underlying engine, e.g. for administrative operations.
func (m *MongoFs) Engine() *filesystem.Engine {
	return m.engine
}

// Serve mounts the filesystem at the given mountPoint and starts serving
// kernel requests in the background. It returns once the mount is visible.
func (m *MongoFs) Serve(mountPoint string) error {
	root := mfuse.NewRoot(m.engine)

	attrTimeout := time.Duration(m.cfg.AttrTimeout * float64(time.Second))
	entryTimeout := time.Duration(m.cfg.EntryTimeout * float64(time.Second))
	slogger := util.NewLogLogger("fuseserver", util.DebugLevel)

	srv, err := gofs.Mount(mountPoint, root, &gofs.Options{
		AttrTimeout:  &attrTimeout,
		EntryTimeout: &entryTimeout,
		MountOptions: gofuse.MountOptions{
			Name:       m.cfg.Name,
			FsName:     m.cfg.FsName,
			AllowOther: m.cfg.AllowOther,
			Debug:      m.cfg.Debug || m.cfg.LogLvl == util.TraceLevel,
			Logger:     slogger,
		},
	})
	if err != nil {
		return err
	}
	m.server = srv
	return nil
}

// Wait blocks until the filesystem is unmounted.
func (m *MongoFs) Wait() {
	if m.server != nil {
		m.server.Wait()
	}
}

// Unmount cleanly unmounts the filesystem.
func (m *MongoFs) Unmount() error {
	if m.server == nil {
		return nil
	}
	return m.server.Unmount()
}
