package flate

import "io"

// bitOrder says which end of a bit string is transmitted first.
type bitOrder int

const (
	lsbFirst bitOrder = iota // rightmost character first, as for numeric fields
	msbFirst                 // leftmost character first, as for Huffman codes
)

// A bitWriter packs bits into bytes in transmission order, least
// significant bit first, and hands each byte to its sink as soon as it is
// complete. Write errors are sticky and reported by err.
type bitWriter struct {
	w     io.ByteWriter
	cur   byte
	nbits uint // bits used in cur, 0-7
	err   error
}

func (w *bitWriter) reset(dst io.ByteWriter) {
	*w = bitWriter{w: dst}
}

func (w *bitWriter) writeBit(bit uint) {
	w.cur |= byte(bit&1) << w.nbits
	w.nbits++
	if w.nbits == 8 {
		w.emit(w.cur)
		w.cur = 0
		w.nbits = 0
	}
}

// writeBits writes the low n bits of v, least significant first.
func (w *bitWriter) writeBits(v uint32, n uint) {
	for i := uint(0); i < n; i++ {
		w.writeBit(uint(v >> i))
	}
}

// writeCode writes a Huffman code, most significant bit first.
func (w *bitWriter) writeCode(c Code) {
	for i := int(c.Len) - 1; i >= 0; i-- {
		w.writeBit(uint(c.Bits >> uint(i)))
	}
}

// writeBitString writes a string of '0' and '1' characters in the given
// order.
func (w *bitWriter) writeBitString(s string, order bitOrder) {
	for i := range s {
		c := s[i]
		if order == lsbFirst {
			c = s[len(s)-1-i]
		}
		if c == '1' {
			w.writeBit(1)
		} else {
			w.writeBit(0)
		}
	}
}

// writeBytes writes raw bytes. The writer must be byte-aligned.
func (w *bitWriter) writeBytes(p []byte) {
	if w.nbits != 0 {
		panic("flate: raw bytes written at a non-byte boundary")
	}
	for _, b := range p {
		w.emit(b)
	}
}

// align zero-fills the current byte, if one is partly written, and emits
// it.
func (w *bitWriter) align() {
	for w.nbits != 0 {
		w.writeBit(0)
	}
}

func (w *bitWriter) emit(b byte) {
	if w.err != nil {
		return
	}
	w.err = w.w.WriteByte(b)
}
