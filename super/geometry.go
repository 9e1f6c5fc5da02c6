package super

import (
	"errors"
	"fmt"

	"github.com/mit-pdos/go-cbfs/common"
	"github.com/mit-pdos/go-cbfs/dirent"
)

var ErrBadGeometry = errors.New("super: bad geometry")

// Geometry holds the fixed parameters of an image. Everything else in the
// boot record is derived from a Geometry and the total sector count.
type Geometry struct {
	SectorSize      uint16 // bytes per sector
	ReservedSectors uint16 // sectors before the bitmap, including the boot sector
	RootDirEntries  uint16
	RootDirSectors  uint16
}

func DefaultGeometry() Geometry {
	return Geometry{
		SectorSize:      uint16(common.SECTORSZ),
		ReservedSectors: uint16(common.NRESERVED),
		RootDirEntries:  uint16(common.NROOTENTRIES),
		RootDirSectors:  uint16(common.NROOTSECTORS),
	}
}

// BitsPerSector is the number of sectors one bitmap sector can track.
func (geo Geometry) BitsPerSector() uint64 {
	return uint64(geo.SectorSize) * 8
}

// Validate checks that geo describes a layout MkBootRecord can serve.
func (geo Geometry) Validate() error {
	if uint64(geo.SectorSize) < RecordSize {
		return fmt.Errorf("%w: sector size %d smaller than boot record (%d bytes)",
			ErrBadGeometry, geo.SectorSize, RecordSize)
	}
	if geo.ReservedSectors < 1 {
		return fmt.Errorf("%w: boot sector must be reserved", ErrBadGeometry)
	}
	need := uint64(geo.RootDirEntries) * dirent.Size
	have := uint64(geo.RootDirSectors) * uint64(geo.SectorSize)
	if need > have {
		return fmt.Errorf("%w: %d root entries need %d bytes, root directory has %d",
			ErrBadGeometry, geo.RootDirEntries, need, have)
	}
	return nil
}
