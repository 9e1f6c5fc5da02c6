package mkfs

import (
	"errors"
	"io"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-cbfs/alloc"
	"github.com/mit-pdos/go-cbfs/super"
)

var errDisk = errors.New("disk on fire")

func TestWriteBootRecordErrors(t *testing.T) {
	type mock struct {
		seekResult int64
		seekError  error
		writeN     int
		writeError error
		writes     bool
	}
	tests := []struct {
		name     string
		mockData mock
		wantOp   string
		wantErr  error
	}{
		{
			name:     "seek fails",
			mockData: mock{seekError: errDisk},
			wantOp:   "boot record seek",
			wantErr:  errDisk,
		},
		{
			name:     "write fails",
			mockData: mock{writes: true, writeError: errDisk},
			wantOp:   "boot record write",
			wantErr:  errDisk,
		},
		{
			name:     "short write",
			mockData: mock{writes: true, writeN: 100},
			wantOp:   "boot record write",
			wantErr:  io.ErrShortWrite,
		},
		{
			name:     "seek lands elsewhere",
			mockData: mock{seekResult: 7},
			wantOp:   "boot record seek",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCtrl := gomock.NewController(t)
			img := NewMockImage(mockCtrl)
			img.EXPECT().
				Seek(int64(0), io.SeekStart).
				Return(tt.mockData.seekResult, tt.mockData.seekError)
			if tt.mockData.writes {
				img.EXPECT().
					Write(gomock.Any()).
					Return(tt.mockData.writeN, tt.mockData.writeError)
			}

			err := WriteBootRecord(img, super.MkBootRecord(super.DefaultGeometry(), 30000))

			mockCtrl.Finish()

			var ioe *IOError
			require.True(t, errors.As(err, &ioe), "got %v", err)
			assert.Equal(t, tt.wantOp, ioe.Op)
			assert.Equal(t, int64(0), ioe.Off)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			}
		})
	}
}

func TestFormatSequence(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()
	img := NewMockImage(mockCtrl)

	writeLen := func(n int) func(p []byte) (int, error) {
		return func(p []byte) (int, error) {
			assert.Equal(t, n, len(p))
			return len(p), nil
		}
	}
	gomock.InOrder(
		img.EXPECT().Seek(int64(0), io.SeekStart).Return(int64(0), nil),
		img.EXPECT().Write(gomock.Any()).DoAndReturn(writeLen(512)),
		img.EXPECT().Seek(int64(512), io.SeekStart).Return(int64(512), nil),
		img.EXPECT().Write(gomock.Any()).DoAndReturn(writeLen(8*512)),
	)

	_, err := Format(img, super.DefaultGeometry(), 30000)
	assert.NoError(t, err)
}

func TestFormatStopsAfterFailedBootRecord(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()
	img := NewMockImage(mockCtrl)

	img.EXPECT().Seek(int64(0), io.SeekStart).Return(int64(0), nil)
	img.EXPECT().Write(gomock.Any()).Return(0, errDisk)

	_, err := Format(img, super.DefaultGeometry(), 30000)
	assert.True(t, errors.Is(err, errDisk))
}

func TestWriteBitmapErrorOffset(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()
	img := NewMockImage(mockCtrl)

	geo := super.DefaultGeometry()
	geo.ReservedSectors = 4
	br := super.MkBootRecord(geo, 30000)
	a, err := alloc.Build(br)
	require.NoError(t, err)

	img.EXPECT().Seek(int64(4*512), io.SeekStart).Return(int64(0), errDisk)

	err = WriteBitmap(img, br, a)
	var ioe *IOError
	require.True(t, errors.As(err, &ioe))
	assert.Equal(t, int64(2048), ioe.Off)
	assert.Equal(t, "bitmap seek", ioe.Op)
}

func TestWriteBitmapTooBig(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()
	img := NewMockImage(mockCtrl)

	br := super.MkBootRecord(super.DefaultGeometry(), 30000)
	err := WriteBitmap(img, br, alloc.MkAlloc(8*512*8+1))
	assert.Error(t, err, "no seek or write expected")
}
