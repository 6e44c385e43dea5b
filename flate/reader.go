package flate

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/flatepack/pack"
)

type readerState int

const (
	stateHeader readerState = iota
	stateStored
	stateHuffman
	stateDone
)

// A Reader decompresses a DEFLATE stream. It decodes one element at a time,
// only as far as its caller reads, and never reads past the end of the
// stream when its source is an io.ByteReader.
type Reader struct {
	// Logger, if set, receives a debug entry for every block header read.
	Logger logrus.FieldLogger

	bits     bitReader
	expander pack.Expander
	state    readerState
	final    bool
	blocks   int

	storedLeft   int
	litLen, dist *Tree

	buf     []byte // expanded bytes not yet returned
	off     int
	summary Summary
	err     error
}

// NewReader returns a Reader that decompresses r. If r is not an
// io.ByteReader it is buffered, and the Reader may read past the end of the
// compressed data.
func NewReader(r io.Reader) *Reader {
	z := new(Reader)
	z.Reset(r)
	return z
}

// Reset discards the Reader's state and makes it read a new stream from r.
func (z *Reader) Reset(r io.Reader) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	z.bits.reset(br)
	z.expander.MaxDistance = pack.WindowSize
	z.expander.MaxLength = pack.MaxMatchLength
	z.expander.Reset()
	z.state = stateHeader
	z.final = false
	z.blocks = 0
	z.storedLeft = 0
	z.litLen, z.dist = nil, nil
	z.buf, z.off = z.buf[:0], 0
	z.summary = Summary{}
	z.err = nil
}

// Read reads decompressed data into p. It returns io.EOF after the final
// block; any other error is permanent.
func (z *Reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if z.off < len(z.buf) {
			c := copy(p[n:], z.buf[z.off:])
			z.off += c
			n += c
			continue
		}
		if z.err != nil {
			break
		}
		z.buf, z.off = z.buf[:0], 0
		e, err := z.nextElement()
		if err != nil {
			z.err = err
			continue
		}
		if z.buf, err = z.expander.Expand(z.buf, e); err != nil {
			z.err = err
			continue
		}
		z.summary.update(z.buf)
	}
	if n > 0 {
		return n, nil
	}
	return 0, z.err
}

// Summary returns the byte count and CRC-32 of everything decompressed so
// far.
func (z *Reader) Summary() Summary {
	return z.summary
}

// nextElement decodes the next element of the stream, reading block headers
// as it comes to them. It returns io.EOF after the final block.
func (z *Reader) nextElement() (pack.Element, error) {
	for {
		switch z.state {
		case stateDone:
			return pack.Element{}, io.EOF

		case stateHeader:
			if err := z.readHeader(); err != nil {
				return pack.Element{}, err
			}

		case stateStored:
			if z.storedLeft == 0 {
				z.endBlock()
				continue
			}
			b, err := z.bits.readByte()
			if err != nil {
				return pack.Element{}, err
			}
			z.storedLeft--
			return pack.Literal(b), nil

		case stateHuffman:
			sym, err := z.litLen.Decode(&z.bits)
			if err != nil {
				return pack.Element{}, err
			}
			if sym < endOfBlock {
				return pack.Literal(byte(sym)), nil
			}
			if sym == endOfBlock {
				z.endBlock()
				continue
			}
			length, err := lengthCodes.decode(sym, &z.bits)
			if err != nil {
				return pack.Element{}, err
			}
			dsym, err := z.dist.Decode(&z.bits)
			if err != nil {
				return pack.Element{}, err
			}
			distance, err := distanceCodes.decode(dsym, &z.bits)
			if err != nil {
				return pack.Element{}, err
			}
			return pack.Copy(length, distance), nil
		}
	}
}

func (z *Reader) endBlock() {
	if z.final {
		z.state = stateDone
	} else {
		z.state = stateHeader
	}
}

func (z *Reader) readHeader() error {
	final, err := z.bits.readBit()
	if err != nil {
		return err
	}
	typ, err := z.bits.readBits(2)
	if err != nil {
		return err
	}
	z.final = final == 1
	z.blocks++
	if z.Logger != nil {
		z.Logger.WithFields(logrus.Fields{
			"block": z.blocks,
			"final": z.final,
			"type":  typ,
		}).Debug("flate: reading block")
	}

	switch typ {
	case blockStored:
		return z.readStoredHeader()
	case blockFixed:
		z.litLen, z.dist = fixedLitLenTree, fixedDistTree
		z.state = stateHuffman
		return nil
	case blockDynamic:
		return z.readDynamicHeader()
	}
	return errors.Wrapf(ErrReservedBlockType, "block %d", z.blocks)
}

func (z *Reader) readStoredHeader() error {
	z.bits.align()
	n, err := z.bits.readBits(16)
	if err != nil {
		return err
	}
	nn, err := z.bits.readBits(16)
	if err != nil {
		return err
	}
	if nn != ^n&0xffff {
		return errors.Wrapf(ErrCorruptStoredBlock, "length %#04x, complement %#04x", n, nn)
	}
	z.storedLeft = int(n)
	z.state = stateStored
	return nil
}

func (z *Reader) readDynamicHeader() error {
	hlit, err := z.bits.readBits(5)
	if err != nil {
		return err
	}
	hdist, err := z.bits.readBits(5)
	if err != nil {
		return err
	}
	hclen, err := z.bits.readBits(4)
	if err != nil {
		return err
	}
	nlit, ndist, nclen := int(hlit)+257, int(hdist)+1, int(hclen)+4
	if nlit > numLitLenCodes || ndist > numDistCodes {
		return errors.Wrapf(ErrInvalidCodeLengths, "%d literal/length and %d distance codes", nlit, ndist)
	}

	var clLens [numCodeLengthCodes]int
	for i := 0; i < nclen; i++ {
		l, err := z.bits.readBits(3)
		if err != nil {
			return err
		}
		clLens[codeLengthOrder[i]] = int(l)
	}
	if err := checkLengths(clLens[:]); err != nil {
		return errors.Wrap(err, "code length code")
	}

	lens, err := decodeCodeLengths(&z.bits, NewTree(clLens[:]), nlit+ndist)
	if err != nil {
		return err
	}
	if lens[endOfBlock] == 0 {
		return errors.Wrap(ErrInvalidCodeLengths, "no code for end of block")
	}
	if err := checkLengths(lens[:nlit]); err != nil {
		return errors.Wrap(err, "literal/length code")
	}
	if err := checkLengths(lens[nlit:]); err != nil {
		return errors.Wrap(err, "distance code")
	}
	z.litLen, z.dist = NewTree(lens[:nlit]), NewTree(lens[nlit:])
	z.state = stateHuffman
	return nil
}

// checkLengths rejects code lengths that assign more codes than there are
// bit patterns. Incomplete codes are allowed; decoding fails only if an
// unassigned pattern actually turns up.
func checkLengths(lens []int) error {
	left := 1
	var count [maxCodeLength + 1]int
	for _, l := range lens {
		count[l]++
	}
	for l := 1; l <= maxCodeLength; l++ {
		left = left<<1 - count[l]
		if left < 0 {
			return errors.Wrapf(ErrInvalidCodeLengths, "too many codes of length %d", l)
		}
	}
	return nil
}

// Decompress decompresses src in one call.
func Decompress(src []byte) ([]byte, Summary, error) {
	z := NewReader(bytes.NewReader(src))
	var out bytes.Buffer
	if _, err := io.Copy(&out, z); err != nil {
		return nil, Summary{}, err
	}
	return out.Bytes(), z.Summary(), nil
}
