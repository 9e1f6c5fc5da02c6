// Package blkdev exposes a goose block disk as a byte-addressed image, so
// that an image can be formatted directly onto any disk.Disk.
//
// A Device may be opened several times; each Image has its own offset. Writes
// that cover part of a block are read-modify-write under a per-block lock, so
// images on the same device may write concurrently, even into the same block.
//
// cbfs-format only formats files; callers with a disk.Disk format it with
// mkfs.Format(MkDevice(d).Open(), geo, n).
package blkdev

import (
	"errors"
	"fmt"
	"io"

	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-cbfs/addr"
	"github.com/mit-pdos/go-cbfs/buf"
	"github.com/mit-pdos/go-cbfs/lockmap"
	"github.com/mit-pdos/go-cbfs/util"
)

var ErrNegativeOffset = errors.New("blkdev: negative offset")

type OutOfBounds struct {
	Off  int64
	Size int64
}

func (e *OutOfBounds) Error() string {
	return fmt.Sprintf("blkdev: offset %d past end of device (%d bytes)", e.Off, e.Size)
}

type Device struct {
	d     disk.Disk
	locks *lockmap.LockMap
}

func MkDevice(d disk.Disk) *Device {
	return &Device{
		d:     d,
		locks: lockmap.MkLockMap(),
	}
}

// Size is the size of the device in bytes.
func (dev *Device) Size() int64 {
	return int64(dev.d.Size() * disk.BlockSize)
}

// chunk is the part of [off, off+n) that falls in the block containing off.
func chunk(off uint64, n uint64) (addr.Addr, uint64) {
	a := addr.MkByteAddr(off)
	return a, util.Min(n, disk.BlockSize-a.ByteOff())
}

func (dev *Device) check(off int64, n int) error {
	if off < 0 {
		return ErrNegativeOffset
	}
	if off+int64(n) > dev.Size() {
		return &OutOfBounds{Off: off + int64(n), Size: dev.Size()}
	}
	return nil
}

// WriteAt writes all of p at off, or nothing if it does not fit.
func (dev *Device) WriteAt(p []byte, off int64) (int, error) {
	if err := dev.check(off, len(p)); err != nil {
		return 0, err
	}
	var done uint64
	for done < uint64(len(p)) {
		a, n := chunk(uint64(off)+done, uint64(len(p))-done)
		b := buf.MkBuf(a, n*8, p[done:done+n])
		dev.locks.Acquire(a.Blkno)
		b.WriteDirect(dev.d)
		dev.locks.Release(a.Blkno)
		util.DPrintf(10, "blkdev: wrote %d bytes to block %d at %d\n", n, a.Blkno, a.ByteOff())
		done += n
	}
	return len(p), nil
}

// ReadAt fills p from off; it returns io.EOF if p reaches past the device.
func (dev *Device) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, ErrNegativeOffset
	}
	var err error
	want := uint64(len(p))
	if off >= dev.Size() {
		return 0, io.EOF
	}
	if off+int64(len(p)) > dev.Size() {
		want = uint64(dev.Size() - off)
		err = io.EOF
	}
	var done uint64
	for done < want {
		a, n := chunk(uint64(off)+done, want-done)
		dev.locks.Acquire(a.Blkno)
		blk := dev.d.Read(a.Blkno)
		dev.locks.Release(a.Blkno)
		b := buf.MkBufLoad(a, n*8, blk)
		copy(p[done:], b.Data)
		done += n
	}
	return int(done), err
}

// Open returns a new image handle positioned at offset 0.
func (dev *Device) Open() *Image {
	return &Image{dev: dev}
}

// Image is a seekable handle on a Device. It is not safe for concurrent use;
// open one Image per goroutine.
type Image struct {
	dev *Device
	off int64
}

func (img *Image) Read(p []byte) (int, error) {
	n, err := img.dev.ReadAt(p, img.off)
	img.off += int64(n)
	return n, err
}

func (img *Image) Write(p []byte) (int, error) {
	n, err := img.dev.WriteAt(p, img.off)
	img.off += int64(n)
	return n, err
}

func (img *Image) Seek(offset int64, whence int) (int64, error) {
	var off int64
	switch whence {
	case io.SeekStart:
		off = offset
	case io.SeekCurrent:
		off = img.off + offset
	case io.SeekEnd:
		off = img.dev.Size() + offset
	default:
		return img.off, fmt.Errorf("blkdev: bad whence %d", whence)
	}
	if off < 0 {
		return img.off, ErrNegativeOffset
	}
	img.off = off
	return off, nil
}
