package super

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeIsOneSector(t *testing.T) {
	for _, sz := range []uint16{64, 512, 4096} {
		geo := DefaultGeometry()
		geo.SectorSize = sz
		b := MkBootRecord(geo, 30000).Encode()
		require.Equal(t, int(sz), len(b))
		for i := RecordSize; i < uint64(sz); i++ {
			assert.Equal(t, byte(0), b[i], "byte %d past the record", i)
		}
	}
}

func TestEncodeLayout(t *testing.T) {
	assert := assert.New(t)
	b := MkBootRecord(DefaultGeometry(), 30000).Encode()

	le := binary.LittleEndian
	assert.Equal(uint16(512), le.Uint16(b[0:]))
	assert.Equal(uint16(1), le.Uint16(b[2:]))
	assert.Equal(uint16(128), le.Uint16(b[4:]))
	assert.Equal(uint16(8), le.Uint16(b[6:]))
	assert.Equal(uint32(30000), le.Uint32(b[8:]))
	assert.Equal(uint32(1), le.Uint32(b[12:]))
	assert.Equal(uint32(8), le.Uint32(b[16:]))
	assert.Equal(uint32(9), le.Uint32(b[20:]))
	assert.Equal(uint32(17), le.Uint32(b[24:]))
	assert.Equal("CBFS    ", string(b[28:36]))
	assert.Equal(uint16(0x7777), le.Uint16(b[36:]))
}

func TestDecodeRoundTrip(t *testing.T) {
	geo := Geometry{SectorSize: 1024, ReservedSectors: 2, RootDirEntries: 64, RootDirSectors: 2}
	br := MkBootRecord(geo, 123456)
	br2, err := Decode(br.Encode())
	require.NoError(t, err)
	assert.Equal(t, br, br2)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(make([]byte, RecordSize-1))
	assert.Equal(t, ErrShortRecord, err)

	_, err = Decode(make([]byte, 512))
	assert.Equal(t, ErrBadSignature, err, "all-zero sector is not a boot record")
}

func TestDecodeInconsistent(t *testing.T) {
	le := binary.LittleEndian
	tests := []struct {
		name  string
		patch func(b []byte)
	}{
		{"huge sector and bitmap", func(b []byte) {
			le.PutUint16(b[0:], 65535)
			le.PutUint32(b[16:], 1<<24)
		}},
		{"sector smaller than record", func(b []byte) { le.PutUint16(b[0:], 16) }},
		{"no reserved sector", func(b []byte) { le.PutUint16(b[2:], 0) }},
		{"root directory too small", func(b []byte) { le.PutUint16(b[6:], 1) }},
		{"bitmap moved", func(b []byte) { le.PutUint32(b[12:], 2) }},
		{"data start off by one", func(b []byte) { le.PutUint32(b[24:], 18) }},
		{"wrong tag", func(b []byte) { copy(b[28:], "FAT12   ") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := MkBootRecord(DefaultGeometry(), 30000).Encode()
			tt.patch(b)
			_, err := Decode(b)
			assert.True(t, errors.Is(err, ErrBadRecord), "got %v", err)
		})
	}
}

func TestEncodeShortSector(t *testing.T) {
	geo := DefaultGeometry()
	geo.SectorSize = 32
	b := MkBootRecord(geo, 100).Encode()
	require.Equal(t, int(RecordSize), len(b), "record is never cut short")
	assert.Equal(t, uint16(0x7777), binary.LittleEndian.Uint16(b[36:]))
}
