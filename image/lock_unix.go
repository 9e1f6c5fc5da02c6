//go:build linux || darwin || freebsd || netbsd || openbsd

package image

import (
	"errors"
	"os"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

var ErrLocked = errors.New("image: locked by another process")

type fder interface {
	Fd() uintptr
}

var _ fder = (*os.File)(nil)

// Lock takes an exclusive advisory lock on f, failing with ErrLocked rather
// than waiting. Files without a descriptor (in-memory files) are not locked.
func Lock(f afero.File) error {
	fd, ok := f.(fder)
	if !ok {
		return nil
	}
	err := unix.Flock(int(fd.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == unix.EWOULDBLOCK {
		return ErrLocked
	}
	return err
}

func Unlock(f afero.File) error {
	fd, ok := f.(fder)
	if !ok {
		return nil
	}
	return unix.Flock(int(fd.Fd()), unix.LOCK_UN)
}
