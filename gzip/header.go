// Package gzip reads and writes the gzip container format (RFC 1952)
// around a DEFLATE stream produced by the flate package.
package gzip

import (
	"hash/crc32"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/flatepack/pack/flate"
)

const (
	gzipID1     = 0x1f
	gzipID2     = 0x8b
	gzipDeflate = 8

	flagText    = 1 << 0
	flagHdrCrc  = 1 << 1
	flagExtra   = 1 << 2
	flagName    = 1 << 3
	flagComment = 1 << 4
	flagsKnown  = flagText | flagHdrCrc | flagExtra | flagName | flagComment
)

// Operating system IDs for Header.OS.
const (
	OSFAT     = 0
	OSUnix    = 3
	OSUnknown = 255
)

var (
	// ErrHeaderMismatch means the input does not start with a gzip header
	// this package can read.
	ErrHeaderMismatch = errors.New("gzip: invalid header")

	// ErrTrailerMismatch means the CRC-32 or size in the trailer disagrees
	// with the decompressed data.
	ErrTrailerMismatch = errors.New("gzip: trailer mismatch")
)

// The Header holds the metadata of a gzip member.
type Header struct {
	Text       bool      // FTEXT: the data is probably text
	HeaderCRC  bool      // FHCRC: a CRC-16 of the header follows it
	Extra      []byte    // FEXTRA field
	Name       string    // original file name, without directories
	Comment    string
	ModTime    time.Time // zero means not set
	ExtraFlags byte
	OS         byte
}

func appendUint16(dst []byte, n uint16) []byte {
	return append(dst, byte(n), byte(n>>8))
}

func appendUint32(dst []byte, n uint32) []byte {
	return append(dst,
		byte(n),
		byte(n>>8),
		byte(n>>16),
		byte(n>>24),
	)
}

func uint32At(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// appendHeader appends the encoded header to dst.
func (h *Header) appendHeader(dst []byte) ([]byte, error) {
	if strings.IndexByte(h.Name, 0) >= 0 {
		return dst, errors.Errorf("gzip: file name %q contains a NUL byte", h.Name)
	}
	if strings.IndexByte(h.Comment, 0) >= 0 {
		return dst, errors.Errorf("gzip: comment %q contains a NUL byte", h.Comment)
	}
	if len(h.Extra) > 0xffff {
		return dst, errors.Errorf("gzip: extra field of %d bytes is too long", len(h.Extra))
	}

	var flg byte
	if h.Text {
		flg |= flagText
	}
	if h.HeaderCRC {
		flg |= flagHdrCrc
	}
	if h.Extra != nil {
		flg |= flagExtra
	}
	if h.Name != "" {
		flg |= flagName
	}
	if h.Comment != "" {
		flg |= flagComment
	}

	start := len(dst)
	dst = append(dst,
		gzipID1, gzipID2, // magic number
		gzipDeflate, // CM
		flg,
	)
	var mtime uint32
	if !h.ModTime.IsZero() && h.ModTime.Unix() > 0 {
		mtime = uint32(h.ModTime.Unix())
	}
	dst = appendUint32(dst, mtime)
	dst = append(dst, h.ExtraFlags, h.OS)

	if h.Extra != nil {
		dst = appendUint16(dst, uint16(len(h.Extra)))
		dst = append(dst, h.Extra...)
	}
	if h.Name != "" {
		dst = append(append(dst, h.Name...), 0)
	}
	if h.Comment != "" {
		dst = append(append(dst, h.Comment...), 0)
	}
	if h.HeaderCRC {
		dst = appendUint16(dst, uint16(crc32.ChecksumIEEE(dst[start:])))
	}
	return dst, nil
}

// headerReader reads header bytes while keeping a CRC-32 of them.
type headerReader struct {
	r   io.ByteReader
	crc uint32
}

func (hr *headerReader) readByte() (byte, error) {
	b, err := hr.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return 0, errors.Wrap(flate.ErrTruncatedStream, "gzip: reading header")
		}
		return 0, errors.Wrap(err, "gzip: reading header")
	}
	hr.crc = crc32.Update(hr.crc, crc32.IEEETable, []byte{b})
	return b, nil
}

func (hr *headerReader) read(n int) ([]byte, error) {
	buf := make([]byte, n)
	for i := range buf {
		b, err := hr.readByte()
		if err != nil {
			return nil, err
		}
		buf[i] = b
	}
	return buf, nil
}

func (hr *headerReader) readString() (string, error) {
	var buf []byte
	for {
		b, err := hr.readByte()
		if err != nil {
			return "", err
		}
		if b == 0 {
			return string(buf), nil
		}
		buf = append(buf, b)
	}
}

// readHeader parses a gzip header from r.
func readHeader(r io.ByteReader) (Header, error) {
	var h Header
	hr := &headerReader{r: r}
	fixed, err := hr.read(10)
	if err != nil {
		return h, err
	}
	if fixed[0] != gzipID1 || fixed[1] != gzipID2 {
		return h, errors.Wrapf(ErrHeaderMismatch, "magic number %#02x %#02x", fixed[0], fixed[1])
	}
	if fixed[2] != gzipDeflate {
		return h, errors.Wrapf(ErrHeaderMismatch, "compression method %d", fixed[2])
	}
	flg := fixed[3]
	if flg&^flagsKnown != 0 {
		return h, errors.Wrapf(ErrHeaderMismatch, "reserved flags %#02x", flg&^flagsKnown)
	}
	h.Text = flg&flagText != 0
	h.HeaderCRC = flg&flagHdrCrc != 0
	if t := uint32At(fixed[4:8]); t > 0 {
		h.ModTime = time.Unix(int64(t), 0)
	}
	h.ExtraFlags = fixed[8]
	h.OS = fixed[9]

	if flg&flagExtra != 0 {
		n, err := hr.read(2)
		if err != nil {
			return h, err
		}
		if h.Extra, err = hr.read(int(n[0]) | int(n[1])<<8); err != nil {
			return h, err
		}
	}
	if flg&flagName != 0 {
		if h.Name, err = hr.readString(); err != nil {
			return h, err
		}
	}
	if flg&flagComment != 0 {
		if h.Comment, err = hr.readString(); err != nil {
			return h, err
		}
	}
	if h.HeaderCRC {
		want := uint16(hr.crc)
		sum, err := hr.read(2)
		if err != nil {
			return h, err
		}
		if got := uint16(sum[0]) | uint16(sum[1])<<8; got != want {
			return h, errors.Wrapf(ErrHeaderMismatch, "header CRC %#04x, computed %#04x", got, want)
		}
	}
	return h, nil
}
