package addr

import (
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-cbfs/common"
)

// Addr identifies a location on a goose disk.
//
// Blkno is the block number containing the location, and Off is the location
// within the block, expressed as a bit offset.
type Addr struct {
	Blkno common.Bnum
	Off   uint64 // offset in bits
}

func (a Addr) Flatid() uint64 {
	return uint64(a.Blkno)*common.NBITBLOCK + a.Off
}

// ByteOff is the offset of a within its block, in bytes.
func (a Addr) ByteOff() uint64 {
	return a.Off / 8
}

func MkAddr(blkno common.Bnum, off uint64) Addr {
	return Addr{Blkno: blkno, Off: off}
}

// MkByteAddr locates byte off of the disk.
func MkByteAddr(off uint64) Addr {
	return MkAddr(off/disk.BlockSize, (off%disk.BlockSize)*8)
}
