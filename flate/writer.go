package flate

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/flatepack/pack"
)

// A Writer compresses data written to it in DEFLATE format. Blocks are
// written as they fill up; Close writes the final block.
type Writer struct {
	// Logger, if set, receives a debug entry for every block written.
	Logger logrus.FieldLogger

	dst     *bufio.Writer
	bits    bitWriter
	matcher pack.Matcher
	block   blockBuilder
	summary Summary
	closed  bool
	err     error
}

// NewWriter returns a Writer that compresses to w. With method Auto, each
// block uses whichever encoding comes out smallest; any other method forces
// that encoding for every block.
func NewWriter(w io.Writer, method Method) (*Writer, error) {
	if !method.valid() {
		return nil, errors.Wrapf(ErrUnsupportedMethod, "method %v", method)
	}
	z := &Writer{dst: bufio.NewWriter(w)}
	z.block.method = method
	z.init()
	return z, nil
}

func (z *Writer) init() {
	z.bits.reset(z.dst)
	z.matcher.MaxDistance = pack.WindowSize
	z.matcher.MaxLength = pack.MaxMatchLength
	z.matcher.Reset()
	z.block.reset()
	z.summary = Summary{}
	z.closed = false
	z.err = nil
}

// Write compresses p. Matching needs a full lookahead, so the last few
// hundred bytes written stay buffered until more input arrives or the Writer
// is closed.
func (z *Writer) Write(p []byte) (int, error) {
	if z.err != nil {
		return 0, z.err
	}
	if z.closed {
		return 0, errors.New("flate: write to closed Writer")
	}
	z.summary.update(p)
	total := len(p)
	// The matcher copies what it is fed, so feed it at most a window at a
	// time.
	for len(p) > 0 {
		n := len(p)
		if n > pack.WindowSize {
			n = pack.WindowSize
		}
		z.matcher.Feed(p[:n])
		p = p[n:]
		if err := z.drain(false); err != nil {
			z.err = err
			return 0, err
		}
	}
	return total, nil
}

// drain moves every element the matcher can produce into blocks, writing
// each block that fills up.
func (z *Writer) drain(flush bool) error {
	for {
		e, ok := z.matcher.Next(flush)
		if !ok {
			return nil
		}
		if z.block.wouldOverflow(e) {
			if err := z.block.emit(&z.bits, false, z.Logger); err != nil {
				return errors.Wrap(err, "flate: writing block")
			}
		}
		z.block.tally(e, z.matcher.Consumed())
	}
}

// Close compresses any buffered input, writes the final block and flushes
// the underlying writer. It does not close the underlying writer.
func (z *Writer) Close() error {
	if z.err != nil {
		return z.err
	}
	if z.closed {
		return nil
	}
	z.closed = true
	if err := z.drain(true); err != nil {
		z.err = err
		return err
	}
	if err := z.block.emit(&z.bits, true, z.Logger); err != nil {
		z.err = errors.Wrap(err, "flate: writing final block")
		return z.err
	}
	z.bits.align()
	if z.bits.err != nil {
		z.err = errors.Wrap(z.bits.err, "flate: writing final block")
		return z.err
	}
	if err := z.dst.Flush(); err != nil {
		z.err = errors.Wrap(err, "flate: flushing output")
		return z.err
	}
	return nil
}

// Summary returns the byte count and CRC-32 of everything written so far.
func (z *Writer) Summary() Summary {
	return z.summary
}

// Reset discards the Writer's state and makes it write a new stream to w,
// keeping its method and Logger.
func (z *Writer) Reset(w io.Writer) {
	z.dst.Reset(w)
	z.init()
}

// Compress compresses src in one call.
func Compress(src []byte, method Method) ([]byte, Summary, error) {
	var buf bytes.Buffer
	z, err := NewWriter(&buf, method)
	if err != nil {
		return nil, Summary{}, err
	}
	if _, err := z.Write(src); err != nil {
		return nil, Summary{}, err
	}
	if err := z.Close(); err != nil {
		return nil, Summary{}, err
	}
	return buf.Bytes(), z.Summary(), nil
}
