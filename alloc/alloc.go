// Package alloc builds the free-space bitmap of a cbfs image.
package alloc

import (
	"fmt"

	"github.com/mit-pdos/go-cbfs/common"
	"github.com/mit-pdos/go-cbfs/super"
	"github.com/mit-pdos/go-cbfs/util"
)

type OutOfRange struct {
	Num  uint64
	Bits uint64
}

func (e *OutOfRange) Error() string {
	return fmt.Sprintf("alloc: sector %d out of range, bitmap has %d bits", e.Num, e.Bits)
}

// Alloc is a bit map with one bit per sector. Bit n is bit n%8 of byte n/8,
// least significant bit first; 1 means used.
type Alloc struct {
	bitmap []byte
	nbits  uint64
}

func MkAlloc(nbits uint64) *Alloc {
	a := &Alloc{
		bitmap: make([]byte, util.RoundUp(nbits, 8)),
		nbits:  nbits,
	}
	return a
}

// MkAllocFrom wraps a bitmap read back from an image.
func MkAllocFrom(bitmap []byte, nbits uint64) *Alloc {
	if uint64(len(bitmap))*8 < nbits {
		panic("MkAllocFrom")
	}
	return &Alloc{bitmap: bitmap[:util.RoundUp(nbits, 8)], nbits: nbits}
}

func (a *Alloc) check(n uint64) error {
	if n >= a.nbits {
		return &OutOfRange{Num: n, Bits: a.nbits}
	}
	return nil
}

// MarkUsed sets bit n. Setting a bit twice is a no-op.
func (a *Alloc) MarkUsed(n uint64) error {
	if err := a.check(n); err != nil {
		return err
	}
	a.bitmap[n/8] = a.bitmap[n/8] | (1 << (n % 8))
	return nil
}

// MarkRange sets bits [start, start+n). It checks the whole range before
// touching the bitmap, so a failed call leaves it unchanged.
func (a *Alloc) MarkRange(start uint64, n uint64) error {
	if n == 0 {
		return nil
	}
	if util.SumOverflows(start, n) {
		return &OutOfRange{Num: start, Bits: a.nbits}
	}
	if err := a.check(start + n - 1); err != nil {
		return err
	}
	for i := start; i < start+n; i++ {
		a.bitmap[i/8] = a.bitmap[i/8] | (1 << (i % 8))
	}
	return nil
}

func (a *Alloc) IsUsed(n uint64) (bool, error) {
	if err := a.check(n); err != nil {
		return false, err
	}
	return a.bitmap[n/8]&(1<<(n%8)) != 0, nil
}

func popCnt(b byte) uint64 {
	var count uint64
	var x = b
	for i := uint64(0); i < 8; i++ {
		count += uint64(x & 1)
		x = x >> 1
	}
	return count
}

// NumUsed counts the used sectors, ignoring padding bits in the last byte.
func (a *Alloc) NumUsed() uint64 {
	var count uint64
	for i, b := range a.bitmap {
		if uint64(i) == a.nbits/8 {
			b = b & byte((1<<(a.nbits%8))-1)
		}
		count += popCnt(b)
	}
	return count
}

func (a *Alloc) NumFree() uint64 {
	return a.nbits - a.NumUsed()
}

func (a *Alloc) Len() uint64 {
	return a.nbits
}

// Bytes returns the bitmap itself, ceil(Len()/8) bytes long.
func (a *Alloc) Bytes() []byte {
	return a.bitmap
}

// Build returns the bitmap of a freshly formatted image: the reserved
// sectors, the bitmap and the root directory are used, the data region is
// free. It fails with super.ErrLayoutTooLarge if those regions do not fit.
func Build(br *super.BootRecord) (*Alloc, error) {
	if err := br.CheckFits(); err != nil {
		return nil, err
	}
	a := MkAlloc(uint64(br.TotalSectors))
	// boot sector and anything else reserved ahead of the bitmap
	if err := a.MarkRange(common.BOOTSNUM, uint64(br.ReservedSectors)); err != nil {
		return nil, err
	}
	if err := a.MarkRange(uint64(br.BitmapStart), uint64(br.BitmapSize)); err != nil {
		return nil, err
	}
	if err := a.MarkRange(uint64(br.RootDirStart), uint64(br.RootDirSectors)); err != nil {
		return nil, err
	}
	util.DPrintf(1, "alloc.Build: %d of %d sectors used\n", a.NumUsed(), a.nbits)
	return a, nil
}
