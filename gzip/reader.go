package gzip

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/flatepack/pack/flate"
)

// A Reader decompresses a single gzip member. The trailer is checked when
// the compressed data runs out; a mismatch is reported in place of io.EOF.
// Data after the member is left unread in the underlying bufio.Reader.
type Reader struct {
	Header
	Logger logrus.FieldLogger

	r   *bufio.Reader
	z   *flate.Reader
	err error
}

// NewReader reads the gzip header from r and returns a Reader for the data
// that follows.
func NewReader(r io.Reader) (*Reader, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	hdr, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	return &Reader{
		Header: hdr,
		r:      br,
		z:      flate.NewReader(br),
	}, nil
}

// Read reads decompressed data into p.
func (g *Reader) Read(p []byte) (int, error) {
	if g.err != nil {
		return 0, g.err
	}
	g.z.Logger = g.Logger
	n, err := g.z.Read(p)
	if err == io.EOF {
		err = g.checkTrailer()
		if err == nil {
			err = io.EOF
		}
	}
	g.err = err
	return n, err
}

func (g *Reader) checkTrailer() error {
	var buf [8]byte
	if _, err := io.ReadFull(g.r, buf[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errors.Wrap(flate.ErrTruncatedStream, "gzip: reading trailer")
		}
		return errors.Wrap(err, "gzip: reading trailer")
	}

	sum := g.z.Summary()
	crc, size := uint32At(buf[:4]), uint32At(buf[4:])
	if g.Logger != nil {
		g.Logger.WithFields(logrus.Fields{
			"name":  g.Name,
			"bytes": sum.Count,
			"crc32": sum.CRC32,
		}).Debug("gzip: read member")
	}
	if crc != sum.CRC32 {
		return errors.Wrapf(ErrTrailerMismatch, "CRC-32 %#08x, computed %#08x", crc, sum.CRC32)
	}
	if size != uint32(sum.Count) {
		return errors.Wrapf(ErrTrailerMismatch, "size %d, computed %d", size, uint32(sum.Count))
	}
	return nil
}

// Summary returns the byte count and CRC-32 of the data decompressed so
// far.
func (g *Reader) Summary() flate.Summary {
	return g.z.Summary()
}
