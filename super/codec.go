package super

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-cbfs/common"
	"github.com/mit-pdos/go-cbfs/util"
)

// RecordSize is the encoded size of a BootRecord, before sector padding.
const RecordSize uint64 = 4*2 + 5*4 + 8 + 2

var (
	ErrShortRecord  = errors.New("super: buffer shorter than a boot record")
	ErrBadSignature = errors.New("super: bad boot signature")
	ErrBadRecord    = errors.New("super: inconsistent boot record")
)

func put16(enc marshal.Enc, x uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], x)
	enc.PutBytes(b[:])
}

func get16(dec marshal.Dec) uint16 {
	return binary.LittleEndian.Uint16(dec.GetBytes(2))
}

// Encode returns the boot record as one sector: the fields in on-disk
// order, followed by zeros up to SectorSize. A SectorSize smaller than
// RecordSize (which Geometry.Validate rejects) still yields the whole
// record, RecordSize bytes long.
func (br *BootRecord) Encode() []byte {
	enc := marshal.NewEnc(util.Max(uint64(br.SectorSize), RecordSize))
	put16(enc, br.SectorSize)
	put16(enc, br.ReservedSectors)
	put16(enc, br.RootDirEntries)
	put16(enc, br.RootDirSectors)
	enc.PutInt32(br.TotalSectors)
	enc.PutInt32(br.BitmapStart)
	enc.PutInt32(br.BitmapSize)
	enc.PutInt32(br.RootDirStart)
	enc.PutInt32(br.DataRegionStart)
	enc.PutBytes(br.FSName[:])
	put16(enc, br.Signature)
	return enc.Finish()
}

// check rejects a record whose geometry is invalid or whose derived fields
// are not the ones MkBootRecord computes for its geometry and size.
func (br *BootRecord) check() error {
	if err := br.Geometry().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	want := MkBootRecord(br.Geometry(), br.TotalSectors)
	if *want != *br {
		return fmt.Errorf("%w: %v, layout for %d sectors is %v",
			ErrBadRecord, br, br.TotalSectors, want)
	}
	return nil
}

// Decode parses a boot record from the start of b. Besides the signature,
// it checks that the geometry is valid and that the region starts and
// sizes agree with it.
func Decode(b []byte) (*BootRecord, error) {
	if uint64(len(b)) < RecordSize {
		return nil, ErrShortRecord
	}
	br := &BootRecord{}
	dec := marshal.NewDec(b)
	br.SectorSize = get16(dec)
	br.ReservedSectors = get16(dec)
	br.RootDirEntries = get16(dec)
	br.RootDirSectors = get16(dec)
	br.TotalSectors = dec.GetInt32()
	br.BitmapStart = dec.GetInt32()
	br.BitmapSize = dec.GetInt32()
	br.RootDirStart = dec.GetInt32()
	br.DataRegionStart = dec.GetInt32()
	copy(br.FSName[:], dec.GetBytes(8))
	br.Signature = get16(dec)
	if br.Signature != common.SIGNATURE {
		return nil, ErrBadSignature
	}
	if err := br.check(); err != nil {
		return nil, err
	}
	return br, nil
}
