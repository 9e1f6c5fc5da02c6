//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package image

import (
	"errors"

	"github.com/spf13/afero"
)

var ErrLocked = errors.New("image: locked by another process")

func Lock(f afero.File) error {
	return nil
}

func Unlock(f afero.File) error {
	return nil
}
