package fuse

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/documentfs/mongofs"
	"github.com/stretchr/testify/assert"
)

func TestErrno_Mapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want syscall.Errno
	}{
		{"nil", nil, 0},
		{"not_found", mongofs.ErrNotFound, syscall.ENOENT},
		{"parent_missing_is_eio_not_enoent", mongofs.ErrParentMissing, syscall.EIO},
		{"is_directory", mongofs.ErrIsDirectory, syscall.EISDIR},
		{"access_denied_open_on_missing", mongofs.ErrAccessDenied, syscall.EACCES},
		{"duplicate_key", mongofs.ErrDuplicateKey, syscall.EEXIST},
		{"io", mongofs.ErrIO, syscall.EIO},
		{"unknown_falls_through_to_eio", errors.New("socket reset"), syscall.EIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errno(tt.err))
		})
	}
}

// Wrapped errors keep their mapping: the engine always adds path context.
func TestErrno_WrappedErrors(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("create /a/b: %w", mongofs.ErrParentMissing)
	assert.Equal(t, syscall.EIO, errno(err))

	err = fmt.Errorf("unlink /d: %w", mongofs.ErrIsDirectory)
	assert.Equal(t, syscall.EISDIR, errno(err))
}
