package flate

import (
	"io"

	"github.com/pkg/errors"
)

// A bitReader pulls bits from a byte source on demand, least significant
// bit of each byte first. It never reads a byte before it needs one of its
// bits, so data following a DEFLATE stream stays in the source.
type bitReader struct {
	r    io.ByteReader
	cur  byte
	off  uint  // bits of cur already consumed; 8 means cur is spent
	read int64 // bytes taken from r

	// peeked is set while cur holds a byte that eof read ahead and no
	// bit of it has been used.
	peeked bool
}

func (br *bitReader) reset(r io.ByteReader) {
	*br = bitReader{r: r, off: 8}
}

func (br *bitReader) nextByte() error {
	b, err := br.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return errors.Wrapf(ErrTruncatedStream, "input ends after %d bytes", br.read)
		}
		return errors.Wrap(err, "flate: reading input")
	}
	br.cur = b
	br.off = 0
	br.read++
	return nil
}

func (br *bitReader) readBit() (uint, error) {
	if br.off == 8 {
		if err := br.nextByte(); err != nil {
			return 0, err
		}
	}
	bit := uint(br.cur>>br.off) & 1
	br.off++
	br.peeked = false
	return bit, nil
}

// readBits reads an n-bit number transmitted least significant bit first.
func (br *bitReader) readBits(n uint) (uint32, error) {
	var v uint32
	for i := uint(0); i < n; i++ {
		bit, err := br.readBit()
		if err != nil {
			return 0, err
		}
		v |= uint32(bit) << i
	}
	return v, nil
}

// readBitString reads n bits and returns them as a string with the last
// bit read on the left.
func (br *bitReader) readBitString(n int) (string, error) {
	buf := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		bit, err := br.readBit()
		if err != nil {
			return "", err
		}
		buf[i] = '0' + byte(bit)
	}
	return string(buf), nil
}

// align discards the rest of the current byte.
func (br *bitReader) align() {
	if !br.peeked {
		br.off = 8
	}
}

// readByte reads a raw byte. The reader must be byte-aligned.
func (br *bitReader) readByte() (byte, error) {
	if br.peeked {
		br.peeked = false
		br.off = 8
		return br.cur, nil
	}
	if br.off != 8 {
		panic("flate: raw byte read at a non-byte boundary")
	}
	if err := br.nextByte(); err != nil {
		return 0, err
	}
	br.off = 8
	return br.cur, nil
}

// eof reports whether no buffered bit remains and the source is exhausted.
// When the source still has data, one byte is read and kept buffered.
func (br *bitReader) eof() bool {
	if br.off < 8 {
		return false
	}
	if err := br.nextByte(); err != nil {
		return true
	}
	br.peeked = true
	return false
}
