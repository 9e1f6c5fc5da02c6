// Package dirent fixes the on-disk layout of a root directory entry.
//
// The formatter never populates the root directory; the layout lives here so
// the geometry can be checked against it and so a driver agrees on it.
package dirent

import (
	"errors"

	"github.com/tchajed/marshal"
)

const (
	NAMELEN = 16
	EXTLEN  = 3

	// Size is the encoded size of a DirEnt in bytes.
	Size uint64 = NAMELEN + EXTLEN + 1 + 4 + 4 + 4
)

var ErrShortEntry = errors.New("dirent: buffer shorter than an entry")

type DirEnt struct {
	Name       [NAMELEN]byte
	Ext        [EXTLEN]byte
	Attributes uint8
	FileSize   uint32
	FirstSnum  uint32
	NumSectors uint32
}

func MkDirEnt(name string, ext string, attr uint8) DirEnt {
	var de DirEnt
	copy(de.Name[:], name)
	copy(de.Ext[:], ext)
	de.Attributes = attr
	return de
}

func (de *DirEnt) Encode() []byte {
	enc := marshal.NewEnc(Size)
	enc.PutBytes(de.Name[:])
	enc.PutBytes(de.Ext[:])
	enc.PutBytes([]byte{de.Attributes})
	enc.PutInt32(de.FileSize)
	enc.PutInt32(de.FirstSnum)
	enc.PutInt32(de.NumSectors)
	return enc.Finish()
}

func Decode(b []byte) (DirEnt, error) {
	var de DirEnt
	if uint64(len(b)) < Size {
		return de, ErrShortEntry
	}
	dec := marshal.NewDec(b)
	copy(de.Name[:], dec.GetBytes(NAMELEN))
	copy(de.Ext[:], dec.GetBytes(EXTLEN))
	de.Attributes = dec.GetBytes(1)[0]
	de.FileSize = dec.GetInt32()
	de.FirstSnum = dec.GetInt32()
	de.NumSectors = dec.GetInt32()
	return de, nil
}

// PerSector is the number of whole entries that fit in one sector.
func PerSector(sectorSize uint64) uint64 {
	return sectorSize / Size
}
