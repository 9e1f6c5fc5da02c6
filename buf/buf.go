// buf manages byte ranges of disk blocks, to be installed into (or loaded
// from) whole blocks.
package buf

import (
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-cbfs/addr"
	"github.com/mit-pdos/go-cbfs/util"
)

// A Buf is a byte-aligned piece of one disk block.
type Buf struct {
	Addr addr.Addr
	Sz   uint64 // number of bits
	Data []byte
}

func MkBuf(addr addr.Addr, sz uint64, data []byte) *Buf {
	if addr.Off%8 != 0 || sz%8 != 0 {
		panic("MkBuf: unaligned")
	}
	if addr.Off+sz > disk.BlockSize*8 {
		panic("MkBuf: crosses block boundary")
	}
	b := &Buf{
		Addr: addr,
		Sz:   sz,
		Data: data,
	}
	return b
}

// Load the bytes of a disk block into a new buf, as specified by addr
func MkBufLoad(addr addr.Addr, sz uint64, blk disk.Block) *Buf {
	b := MkBuf(addr, sz, nil)
	b.Load(blk)
	return b
}

// Whole reports whether buf covers its entire block.
func (buf *Buf) Whole() bool {
	return buf.Addr.Off == 0 && buf.Sz == disk.BlockSize*8
}

// Install the bytes from buf into blk.
func (buf *Buf) Install(blk disk.Block) {
	util.DPrintf(20, "%v: install %d bits\n", buf.Addr, buf.Sz)
	copy(blk[buf.Addr.ByteOff():], buf.Data[:buf.Sz/8])
}

// Load the bytes buf covers from blk into buf.Data.
func (buf *Buf) Load(blk disk.Block) {
	first := buf.Addr.ByteOff()
	buf.Data = util.CloneByteSlice(blk[first : first+buf.Sz/8])
}

// WriteDirect writes buf to its block on d, reading the block first unless
// buf covers all of it.
func (buf *Buf) WriteDirect(d disk.Disk) {
	if buf.Whole() {
		d.Write(buf.Addr.Blkno, util.CloneByteSlice(buf.Data))
	} else {
		blk := d.Read(buf.Addr.Blkno)
		buf.Install(blk)
		d.Write(buf.Addr.Blkno, blk)
	}
}
