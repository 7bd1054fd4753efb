package fuse

import (
	"errors"
	"syscall"

	"github.com/documentfs/mongofs"
)

// errno maps typed engine failures onto OS status codes. Each error kind
// maps to exactly one code. The legacy interface is deliberately asymmetric
// here: a missing parent on create is EIO rather than ENOENT, and an open on
// a missing path is EACCES. Store transport failures fall through to EIO.
func errno(err error) syscall.Errno {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, mongofs.ErrNotFound):
		return syscall.ENOENT
	case errors.Is(err, mongofs.ErrParentMissing):
		return syscall.EIO
	case errors.Is(err, mongofs.ErrIsDirectory):
		return syscall.EISDIR
	case errors.Is(err, mongofs.ErrAccessDenied):
		return syscall.EACCES
	case errors.Is(err, mongofs.ErrDuplicateKey):
		return syscall.EEXIST
	case errors.Is(err, mongofs.ErrIO):
		return syscall.EIO
	default:
		return syscall.EIO
	}
}
