package flate

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitWriterPacksLSBFirst(t *testing.T) {
	var buf bytes.Buffer
	var w bitWriter
	w.reset(&buf)
	for _, b := range []uint{1, 1, 1, 1, 0, 0, 0, 0, 1, 0} {
		w.writeBit(b)
	}
	assert.Equal(t, 1, buf.Len(), "a full byte is emitted as soon as it is complete")
	w.align()
	require.NoError(t, w.err)
	assert.Equal(t, []byte{0x0F, 0x01}, buf.Bytes())
}

func TestBitWriterBitStrings(t *testing.T) {
	var buf bytes.Buffer
	var w bitWriter
	w.reset(&buf)
	w.writeBitString("110", lsbFirst) // 0, 1, 1
	w.writeBitString("10", msbFirst)  // 1, 0
	w.writeBits(0x5, 3)               // 1, 0, 1
	w.align()
	assert.Equal(t, []byte{0b10101110}, buf.Bytes())
}

func TestBitWriterCode(t *testing.T) {
	var buf bytes.Buffer
	var w bitWriter
	w.reset(&buf)
	w.writeCode(Code{Bits: 0b110, Len: 3})
	w.writeCode(Code{Bits: 0b01, Len: 2})
	w.align()
	assert.Equal(t, []byte{0b00010011}, buf.Bytes())
}

func TestBitWriterRawBytesNeedAlignment(t *testing.T) {
	var buf bytes.Buffer
	var w bitWriter
	w.reset(&buf)
	w.writeBit(1)
	assert.Panics(t, func() { w.writeBytes([]byte{1}) })
	w.align()
	w.writeBytes([]byte{0xAB, 0xCD})
	assert.Equal(t, []byte{0x01, 0xAB, 0xCD}, buf.Bytes())
}

type failingByteWriter struct{}

func (failingByteWriter) WriteByte(byte) error { return errors.New("disk full") }

func TestBitWriterErrorIsSticky(t *testing.T) {
	var w bitWriter
	w.reset(failingByteWriter{})
	w.writeBits(0xFFFF, 16)
	require.Error(t, w.err)
	assert.Contains(t, w.err.Error(), "disk full")
}

func TestBitReader(t *testing.T) {
	var br bitReader
	br.reset(bytes.NewReader([]byte{0x0F, 0x01, 0xAB}))

	v, err := br.readBits(4)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xF), v)

	s, err := br.readBitString(5)
	require.NoError(t, err)
	assert.Equal(t, "10000", s, "last bit read is on the left")

	br.align()
	b, err := br.readByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0xAB), b)

	assert.True(t, br.eof())
	_, err = br.readBit()
	assert.True(t, errors.Is(err, ErrTruncatedStream))
}

func TestBitReaderEOFKeepsByte(t *testing.T) {
	var br bitReader
	br.reset(bytes.NewReader([]byte{0x12, 0x34}))
	assert.False(t, br.eof())
	b, err := br.readByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x12), b)

	assert.False(t, br.eof())
	v, err := br.readBits(8)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x34), v)
	assert.True(t, br.eof())
}

func TestBitReaderReadsOnDemand(t *testing.T) {
	r := bytes.NewReader([]byte{0xFF, 0xFF})
	var br bitReader
	br.reset(r)
	_, err := br.readBits(3)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
}
