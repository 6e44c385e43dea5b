package flate

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeTableEncode(t *testing.T) {
	for _, tc := range []struct {
		table      *codeTable
		v          int
		code       int
		extra      uint32
		extraWidth uint
	}{
		{&lengthCodes, 3, 257, 0, 0},
		{&lengthCodes, 10, 264, 0, 0},
		{&lengthCodes, 11, 265, 0, 1},
		{&lengthCodes, 12, 265, 1, 1},
		{&lengthCodes, 99, 278, 0, 4},
		{&lengthCodes, 257, 284, 30, 5},
		{&lengthCodes, 258, 285, 0, 0},
		{&distanceCodes, 1, 0, 0, 0},
		{&distanceCodes, 4, 3, 0, 0},
		{&distanceCodes, 6, 4, 1, 1},
		{&distanceCodes, 1000, 19, 231, 8},
		{&distanceCodes, 32768, 29, 8191, 13},
	} {
		code, extra, n := tc.table.encode(tc.v)
		assert.Equal(t, tc.code, code, "code for %d", tc.v)
		assert.Equal(t, tc.extra, extra, "extra bits for %d", tc.v)
		assert.Equal(t, tc.extraWidth, n, "extra bit count for %d", tc.v)
	}
}

func TestCodeTableRoundTrip(t *testing.T) {
	for _, table := range []*codeTable{&lengthCodes, &distanceCodes} {
		lo := table.base[0]
		hi := table.base[len(table.base)-1] + 1<<table.extra[len(table.extra)-1] - 1
		for v := lo; v <= hi; v++ {
			code, extra, n := table.encode(v)

			var buf bytes.Buffer
			var w bitWriter
			w.reset(&buf)
			w.writeBits(extra, n)
			w.align()

			var br bitReader
			br.reset(bytes.NewReader(buf.Bytes()))
			got, err := table.decode(code, &br)
			require.NoError(t, err)
			require.Equal(t, v, got)
		}
	}
}

func TestCodeTableDecodeOutOfRange(t *testing.T) {
	var br bitReader
	br.reset(bytes.NewReader([]byte{0}))
	for _, code := range []int{256, 286, 287} {
		_, err := lengthCodes.decode(code, &br)
		assert.True(t, errors.Is(err, ErrInvalidSymbol), "length code %d: %v", code, err)
	}
	for _, code := range []int{30, 31} {
		_, err := distanceCodes.decode(code, &br)
		assert.True(t, errors.Is(err, ErrInvalidSymbol), "distance code %d: %v", code, err)
	}
}

func TestFixedEncodings(t *testing.T) {
	assert.Equal(t, "00110000", fixedLitLenEncoding[0].String())
	assert.Equal(t, "10111111", fixedLitLenEncoding[143].String())
	assert.Equal(t, "110010000", fixedLitLenEncoding[144].String())
	assert.Equal(t, "0000000", fixedLitLenEncoding[256].String())
	assert.Equal(t, "11000000", fixedLitLenEncoding[280].String())
	assert.Equal(t, "00000", fixedDistEncoding[0].String())
	assert.Equal(t, "11111", fixedDistEncoding[31].String())
}
