// Package super derives the layout of a cbfs image and encodes its boot
// record (the superblock stored in sector 0).
//
// An image is a sequence of contiguous, non-overlapping regions:
//
//	[ boot (reserved) | bitmap | root directory | data ]
//
// starting at sectors 0, BitmapStart, RootDirStart and DataRegionStart.
package super

import (
	"errors"
	"fmt"

	"github.com/mit-pdos/go-cbfs/common"
	"github.com/mit-pdos/go-cbfs/util"
)

var ErrLayoutTooLarge = errors.New("super: layout does not fit in the image")

type BootRecord struct {
	SectorSize      uint16
	ReservedSectors uint16
	RootDirEntries  uint16
	RootDirSectors  uint16
	TotalSectors    uint32
	BitmapStart     uint32
	BitmapSize      uint32
	RootDirStart    uint32
	DataRegionStart uint32
	FSName          [8]byte
	Signature       uint16
}

// MkBootRecord computes the layout of an image of totalSectors sectors.
//
// It does not check the layout; a totalSectors too small for the metadata
// regions yields a record whose regions run past the end of the image (see
// CheckFits). geo should pass Validate; a zero SectorSize panics.
func MkBootRecord(geo Geometry, totalSectors uint32) *BootRecord {
	if geo.SectorSize == 0 {
		panic("MkBootRecord: zero sector size")
	}
	br := &BootRecord{
		SectorSize:      geo.SectorSize,
		ReservedSectors: geo.ReservedSectors,
		RootDirEntries:  geo.RootDirEntries,
		RootDirSectors:  geo.RootDirSectors,
		TotalSectors:    totalSectors,
		Signature:       common.SIGNATURE,
	}
	copy(br.FSName[:], common.FSNAME)

	br.BitmapStart = uint32(geo.ReservedSectors)
	br.BitmapSize = uint32(util.RoundUp(uint64(totalSectors), geo.BitsPerSector()))
	br.RootDirStart = br.BitmapStart + br.BitmapSize
	br.DataRegionStart = br.RootDirStart + uint32(geo.RootDirSectors)
	util.DPrintf(3, "MkBootRecord: total %d bitmap %d+%d root %d+%d data %d\n",
		totalSectors, br.BitmapStart, br.BitmapSize, br.RootDirStart,
		geo.RootDirSectors, br.DataRegionStart)
	return br
}

func (br *BootRecord) Geometry() Geometry {
	return Geometry{
		SectorSize:      br.SectorSize,
		ReservedSectors: br.ReservedSectors,
		RootDirEntries:  br.RootDirEntries,
		RootDirSectors:  br.RootDirSectors,
	}
}

// Fits reports whether all metadata regions lie inside the image.
func (br *BootRecord) Fits() bool {
	return br.DataRegionStart <= br.TotalSectors
}

func (br *BootRecord) CheckFits() error {
	if !br.Fits() {
		return fmt.Errorf("%w: metadata needs %d sectors, image has %d",
			ErrLayoutTooLarge, br.DataRegionStart, br.TotalSectors)
	}
	return nil
}

// ByteOffset returns the byte offset of sector sn.
func (br *BootRecord) ByteOffset(sn common.Snum) int64 {
	return int64(sn) * int64(br.SectorSize)
}

func (br *BootRecord) BitmapBytes() uint64 {
	return uint64(br.BitmapSize) * uint64(br.SectorSize)
}

// Region is the half-open sector range [Start, Start+Len).
type Region struct {
	Name  string
	Start common.Snum
	Len   uint64
}

func (r Region) End() common.Snum {
	return r.Start + r.Len
}

func (r Region) Contains(sn common.Snum) bool {
	return sn >= r.Start && sn < r.End()
}

// Regions returns the boot, bitmap, root directory and data regions, in
// on-disk order. The data region is empty if the layout does not fit.
func (br *BootRecord) Regions() []Region {
	var ndata uint64
	if br.Fits() {
		ndata = uint64(br.TotalSectors - br.DataRegionStart)
	}
	return []Region{
		{"boot", common.BOOTSNUM, uint64(br.ReservedSectors)},
		{"bitmap", uint64(br.BitmapStart), uint64(br.BitmapSize)},
		{"rootdir", uint64(br.RootDirStart), uint64(br.RootDirSectors)},
		{"data", uint64(br.DataRegionStart), ndata},
	}
}

func (br *BootRecord) String() string {
	return fmt.Sprintf("%q sig 0x%x: %d sectors of %d bytes, reserved %d, "+
		"bitmap %d+%d, root %d+%d (%d entries), data %d",
		br.FSName[:], br.Signature, br.TotalSectors, br.SectorSize,
		br.ReservedSectors, br.BitmapStart, br.BitmapSize, br.RootDirStart,
		br.RootDirSectors, br.RootDirEntries, br.DataRegionStart)
}
