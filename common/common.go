package common

import (
	"github.com/tchajed/goose/machine/disk"
)

// Default geometry of a cbfs image.
const (
	SECTORSZ     uint64 = 512
	NRESERVED    uint64 = 1 // boot sector
	NROOTENTRIES uint64 = 128
	NROOTSECTORS uint64 = 8 // size of the root directory region
	NSECTORS     uint64 = 30000

	NBITBLOCK uint64 = disk.BlockSize * 8
)

// Snum is a sector number within an image.
type Snum = uint64

// Bnum is a block number on a goose disk.
type Bnum = uint64

const BOOTSNUM Snum = 0

const (
	FSNAME    = "CBFS    "
	SIGNATURE = uint16(0x7777)
)
