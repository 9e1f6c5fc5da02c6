// Package mkfs writes the boot record and free-space bitmap of a cbfs image.
//
// Every write seeks to an absolute offset immediately before writing, so the
// writes do not depend on the image's current offset and may be issued in
// any order. They must not be issued concurrently on one Image.
package mkfs

//go:generate mockgen -source=mkfs.go -destination=mock_image_test.go -package=mkfs

import (
	"fmt"
	"io"

	"github.com/mit-pdos/go-cbfs/alloc"
	"github.com/mit-pdos/go-cbfs/common"
	"github.com/mit-pdos/go-cbfs/super"
	"github.com/mit-pdos/go-cbfs/util"
)

// Image is the backing store being formatted, typically an afero.File or a
// blkdev.Image.
type Image interface {
	io.Writer
	io.Seeker
}

// IOError reports a failed seek, write or read. Nothing written before the
// failure is undone.
type IOError struct {
	Op  string
	Off int64
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("mkfs: %s at offset %d: %v", e.Op, e.Off, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func seek(img io.Seeker, off int64, op string) error {
	got, err := img.Seek(off, io.SeekStart)
	if err != nil {
		return &IOError{Op: op + " seek", Off: off, Err: err}
	}
	if got != off {
		return &IOError{Op: op + " seek", Off: off,
			Err: fmt.Errorf("landed at offset %d", got)}
	}
	return nil
}

func writeAt(img Image, off int64, data []byte, op string) error {
	if err := seek(img, off, op); err != nil {
		return err
	}
	n, err := img.Write(data)
	if err == nil && n != len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return &IOError{Op: op + " write", Off: off, Err: err}
	}
	util.DPrintf(2, "%s: wrote %d bytes at %d\n", op, n, off)
	return nil
}

// WriteBootRecord writes br to sector 0, zero padded to one full sector.
func WriteBootRecord(img Image, br *super.BootRecord) error {
	return writeAt(img, br.ByteOffset(common.BOOTSNUM), br.Encode(), "boot record")
}

// WriteBitmap writes the bitmap to its region, zero padding the last sector
// so that exactly BitmapSize sectors are written.
func WriteBitmap(img Image, br *super.BootRecord, a *alloc.Alloc) error {
	bits := a.Bytes()
	if uint64(len(bits)) > br.BitmapBytes() {
		return fmt.Errorf("mkfs: bitmap of %d bytes does not fit in %d sectors",
			len(bits), br.BitmapSize)
	}
	region := make([]byte, br.BitmapBytes())
	copy(region, bits)
	return writeAt(img, br.ByteOffset(uint64(br.BitmapStart)), region, "bitmap")
}

// Format lays out an image of totalSectors sectors with geometry geo and
// writes its boot record and bitmap. The root directory and data regions
// are not touched.
func Format(img Image, geo super.Geometry, totalSectors uint32) (*super.BootRecord, error) {
	if err := geo.Validate(); err != nil {
		return nil, err
	}
	br := super.MkBootRecord(geo, totalSectors)
	a, err := alloc.Build(br)
	if err != nil {
		return nil, err
	}
	if err := WriteBootRecord(img, br); err != nil {
		return nil, err
	}
	if err := WriteBitmap(img, br, a); err != nil {
		return nil, err
	}
	util.DPrintf(1, "Format: %v\n", br)
	return br, nil
}

func readAt(img io.ReadSeeker, off int64, data []byte, op string) error {
	if err := seek(img, off, op); err != nil {
		return err
	}
	if _, err := io.ReadFull(img, data); err != nil {
		return &IOError{Op: op + " read", Off: off, Err: err}
	}
	return nil
}

// ReadBootRecord reads and decodes the boot record in sector 0.
func ReadBootRecord(img io.ReadSeeker) (*super.BootRecord, error) {
	b := make([]byte, super.RecordSize)
	if err := readAt(img, 0, b, "boot record"); err != nil {
		return nil, err
	}
	return super.Decode(b)
}

// ReadBitmap reads the bitmap described by br. The bitmap must be exactly
// as large as TotalSectors requires and lie inside the image; it is not
// allocated otherwise.
func ReadBitmap(img io.ReadSeeker, br *super.BootRecord) (*alloc.Alloc, error) {
	geo := br.Geometry()
	if geo.SectorSize == 0 ||
		uint64(br.BitmapSize) != util.RoundUp(uint64(br.TotalSectors), geo.BitsPerSector()) {
		return nil, fmt.Errorf("%w: %d bitmap sectors for %d sectors",
			super.ErrBadRecord, br.BitmapSize, br.TotalSectors)
	}
	off := br.ByteOffset(uint64(br.BitmapStart))
	size, err := img.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, &IOError{Op: "bitmap seek", Off: 0, Err: err}
	}
	if off+int64(br.BitmapBytes()) > size {
		return nil, &IOError{Op: "bitmap read", Off: off, Err: io.ErrUnexpectedEOF}
	}
	b := make([]byte, br.BitmapBytes())
	if err := readAt(img, off, b, "bitmap"); err != nil {
		return nil, err
	}
	return alloc.MkAllocFrom(b, uint64(br.TotalSectors)), nil
}
