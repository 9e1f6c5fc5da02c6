// Package image opens the backing file of a cbfs image.
package image

import (
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/mit-pdos/go-cbfs/util"
)

// Mode selects between formatting an image file that already exists and
// creating a new one.
type Mode int

const (
	FormatExisting Mode = iota
	CreateNew
)

func (m Mode) String() string {
	switch m {
	case FormatExisting:
		return "existing"
	case CreateNew:
		return "create"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

type OpenError struct {
	Path string
	Mode Mode
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("image %s cannot be opened (%v): %v", e.Path, e.Mode, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// Open opens path for writing. In CreateNew mode the file is created (or
// truncated) and sized to size bytes; in FormatExisting mode it must exist
// and its size is left alone.
func Open(fs afero.Fs, path string, mode Mode, size int64) (afero.File, error) {
	var f afero.File
	var err error
	switch mode {
	case FormatExisting:
		f, err = fs.OpenFile(path, os.O_RDWR, 0)
	case CreateNew:
		f, err = fs.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err == nil {
			err = f.Truncate(size)
			if err != nil {
				f.Close()
			}
		}
	default:
		err = fmt.Errorf("unknown mode")
	}
	if err != nil {
		return nil, &OpenError{Path: path, Mode: mode, Err: err}
	}
	util.DPrintf(1, "image.Open: %s (%v)\n", path, mode)
	return f, nil
}

// Sync flushes f to stable storage.
func Sync(f afero.File) error {
	return f.Sync()
}
