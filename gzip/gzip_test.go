package gzip

import (
	"bytes"
	"io/ioutil"
	"strings"
	"testing"
	"time"

	kgzip "github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flatepack/pack/flate"
)

var sample = []byte(strings.Repeat("Grateful for the gzip container. ", 300))

func compress(t *testing.T, h Header, data []byte) []byte {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, flate.Auto)
	require.NoError(t, err)
	w.Header = h
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestReferenceReaderReadsOurs(t *testing.T) {
	mtime := time.Unix(1600000000, 0)
	h := Header{
		Text:      true,
		HeaderCRC: true,
		Extra:     []byte{'A', 'P', 2, 0, 1, 2},
		Name:      "sample.txt",
		Comment:   "a comment",
		ModTime:   mtime,
		OS:        OSUnix,
	}
	compressed := compress(t, h, sample)

	r, err := kgzip.NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	assert.Equal(t, "sample.txt", r.Name)
	assert.Equal(t, "a comment", r.Comment)
	assert.Equal(t, h.Extra, r.Extra)
	assert.True(t, mtime.Equal(r.ModTime))
	assert.Equal(t, byte(OSUnix), r.OS)

	out, err := ioutil.ReadAll(r)
	require.NoError(t, err)
	if !bytes.Equal(out, sample) {
		t.Fatal("decompressed output doesn't match")
	}
}

func TestWeReadReferenceWriter(t *testing.T) {
	var buf bytes.Buffer
	w := kgzip.NewWriter(&buf)
	w.Name = "ref.txt"
	w.Comment = "from the reference encoder"
	w.ModTime = time.Unix(1500000000, 0)
	_, err := w.Write(sample)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := NewReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, "ref.txt", r.Name)
	assert.Equal(t, "from the reference encoder", r.Comment)
	assert.Equal(t, int64(1500000000), r.ModTime.Unix())

	out, err := ioutil.ReadAll(r)
	require.NoError(t, err)
	if !bytes.Equal(out, sample) {
		t.Fatal("decompressed output doesn't match")
	}
	assert.Equal(t, int64(len(sample)), r.Summary().Count)
}

func TestRoundTripAllMethods(t *testing.T) {
	for _, m := range []flate.Method{flate.Auto, flate.Stored, flate.Fixed, flate.Dynamic} {
		var buf bytes.Buffer
		w, err := NewWriter(&buf, m)
		require.NoError(t, err)
		w.Name = "x"
		_, err = w.Write(sample)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		r, err := NewReader(&buf)
		require.NoError(t, err)
		out, err := ioutil.ReadAll(r)
		require.NoError(t, err, m.String())
		assert.Equal(t, sample, out, m.String())
	}
}

func TestEmptyMember(t *testing.T) {
	compressed := compress(t, Header{}, nil)
	r, err := NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	out, err := ioutil.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.True(t, r.ModTime.IsZero())
}

func TestHeaderErrors(t *testing.T) {
	good := compress(t, Header{Name: "n", HeaderCRC: true}, sample)

	for _, tc := range []struct {
		name   string
		mangle func(b []byte)
		want   error
	}{
		{"magic", func(b []byte) { b[0] = 0x1e }, ErrHeaderMismatch},
		{"method", func(b []byte) { b[2] = 7 }, ErrHeaderMismatch},
		{"reserved flag", func(b []byte) { b[3] |= 0x80 }, ErrHeaderMismatch},
		{"header crc", func(b []byte) { b[4] ^= 1 }, ErrHeaderMismatch},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := append([]byte(nil), good...)
			tc.mangle(b)
			_, err := NewReader(bytes.NewReader(b))
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}

	_, err := NewReader(bytes.NewReader(good[:5]))
	assert.True(t, errors.Is(err, flate.ErrTruncatedStream), "got %v", err)
}

func TestTrailerErrors(t *testing.T) {
	good := compress(t, Header{}, sample)
	n := len(good)

	for _, tc := range []struct {
		name string
		in   []byte
		want error
	}{
		{"crc", func() []byte { b := append([]byte(nil), good...); b[n-8] ^= 0xff; return b }(), ErrTrailerMismatch},
		{"size", func() []byte { b := append([]byte(nil), good...); b[n-4]++; return b }(), ErrTrailerMismatch},
		{"truncated", good[:n-3], flate.ErrTruncatedStream},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewReader(bytes.NewReader(tc.in))
			require.NoError(t, err)
			_, err = ioutil.ReadAll(r)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestInvalidHeaderFields(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, flate.Auto)
	require.NoError(t, err)
	w.Name = "bad\x00name"
	_, err = w.Write([]byte("x"))
	assert.Error(t, err)
	assert.Error(t, w.Close())
}

func TestUnsupportedMethod(t *testing.T) {
	_, err := NewWriter(ioutil.Discard, flate.Method(7))
	assert.True(t, errors.Is(err, flate.ErrUnsupportedMethod))
}
