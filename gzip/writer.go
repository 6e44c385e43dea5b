package gzip

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/flatepack/pack/flate"
)

// A Writer compresses data into a gzip member. The Header fields may be
// set before the first call to Write or Close.
type Writer struct {
	Header
	Logger logrus.FieldLogger

	w           io.Writer
	z           *flate.Writer
	wroteHeader bool
	closed      bool
	err         error
}

// NewWriter returns a Writer that compresses to w with the given method.
// The header defaults to OS Unix and no optional fields.
func NewWriter(w io.Writer, method flate.Method) (*Writer, error) {
	z, err := flate.NewWriter(w, method)
	if err != nil {
		return nil, err
	}
	return &Writer{
		Header: Header{OS: OSUnix},
		w:      w,
		z:      z,
	}, nil
}

func (g *Writer) writeHeader() error {
	g.wroteHeader = true
	hdr, err := g.Header.appendHeader(make([]byte, 0, 10+len(g.Name)+len(g.Comment)+len(g.Extra)+6))
	if err != nil {
		return err
	}
	if _, err := g.w.Write(hdr); err != nil {
		return errors.Wrap(err, "gzip: writing header")
	}
	g.z.Logger = g.Logger
	return nil
}

// Write compresses p.
func (g *Writer) Write(p []byte) (int, error) {
	if g.err != nil {
		return 0, g.err
	}
	if !g.wroteHeader {
		if g.err = g.writeHeader(); g.err != nil {
			return 0, g.err
		}
	}
	n, err := g.z.Write(p)
	if err != nil {
		g.err = err
	}
	return n, err
}

// Close finishes the compressed stream and writes the trailer. It does not
// close the underlying writer.
func (g *Writer) Close() error {
	if g.err != nil {
		return g.err
	}
	if g.closed {
		return nil
	}
	g.closed = true
	if !g.wroteHeader {
		if g.err = g.writeHeader(); g.err != nil {
			return g.err
		}
	}
	if g.err = g.z.Close(); g.err != nil {
		return g.err
	}

	sum := g.z.Summary()
	trailer := appendUint32(make([]byte, 0, 8), sum.CRC32)
	trailer = appendUint32(trailer, uint32(sum.Count))
	if _, err := g.w.Write(trailer); err != nil {
		g.err = errors.Wrap(err, "gzip: writing trailer")
		return g.err
	}
	if g.Logger != nil {
		g.Logger.WithFields(logrus.Fields{
			"name":  g.Name,
			"bytes": sum.Count,
			"crc32": sum.CRC32,
		}).Debug("gzip: wrote member")
	}
	return nil
}

// Summary returns the byte count and CRC-32 of the data written so far.
func (g *Writer) Summary() flate.Summary {
	return g.z.Summary()
}
