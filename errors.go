package mongofs

import "errors"

// Error kinds shared by the engine, the store adapters, and the kernel
// bridge. The bridge maps each onto exactly one OS status code; see the
// fuse package for the table. Wrap with fmt.Errorf("...: %w") to add path
// context and match with errors.Is.
var (
	// ErrNotFound reports that no record exists at the path.
	ErrNotFound = errors.New("no record at path")

	// ErrParentMissing reports a create whose parent directory record does
	// not exist. The bridge surfaces it as EIO, not ENOENT, preserving the
	// legacy interface's asymmetry.
	ErrParentMissing = errors.New("parent directory does not exist")

	// ErrIsDirectory reports an unlink targeting a directory record.
	ErrIsDirectory = errors.New("path is a directory")

	// ErrAccessDenied reports an open on a path with no record.
	ErrAccessDenied = errors.New("access denied")

	// ErrIO reports a read, write, or truncate the store rejected, or a
	// read/write target with no record.
	ErrIO = errors.New("i/o failure")

	// ErrDuplicateKey reports an insert or path rewrite that collided with
	// the store's unique path key.
	ErrDuplicateKey = errors.New("record already exists at path")
)
