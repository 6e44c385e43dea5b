package flate

import (
	"github.com/sirupsen/logrus"

	"github.com/flatepack/pack"
)

// maxStoredBlockSize is the most bytes a block may cover, since a stored
// block's length field has 16 bits.
const maxStoredBlockSize = 1<<16 - 1

// A blockBuilder collects the elements of one block and then emits the
// block in whichever encoding is cheapest, or in the encoding its method
// forces.
type blockBuilder struct {
	method Method

	elems  []pack.Element
	raw    []byte // the bytes elems stand for
	litLen [numLitLenCodes]int
	dist   [numDistCodes]int
}

func (b *blockBuilder) reset() {
	b.elems = b.elems[:0]
	b.raw = b.raw[:0]
	b.litLen = [numLitLenCodes]int{}
	b.dist = [numDistCodes]int{}
	// The end of block symbol is always sent once.
	b.litLen[endOfBlock] = 1
}

func (b *blockBuilder) empty() bool {
	return len(b.raw) == 0
}

// wouldOverflow reports whether tallying e would make the block cover more
// than maxStoredBlockSize bytes. If so, the block must be emitted first.
func (b *blockBuilder) wouldOverflow(e pack.Element) bool {
	return len(b.raw)+e.Size() > maxStoredBlockSize
}

// tally adds e, which stands for the bytes in raw, to the block.
func (b *blockBuilder) tally(e pack.Element, raw []byte) {
	b.elems = append(b.elems, e)
	b.raw = append(b.raw, raw...)
	if !e.IsMatch() {
		b.litLen[e.Literal]++
		return
	}
	lc, _, _ := lengthCodes.encode(e.Length)
	dc, _, _ := distanceCodes.encode(e.Distance)
	b.litLen[lc]++
	b.dist[dc]++
}

// dynamicTables holds everything needed to write a dynamic block.
type dynamicTables struct {
	litLen, dist Encoding
	clSyms       []clSymbol
	clEnc        Encoding
	clLens       []int // code-length code lengths, in codeLengthOrder
}

func (b *blockBuilder) buildDynamic() (*dynamicTables, error) {
	nlit := numLitLenCodes
	for nlit > endOfBlock+1 && b.litLen[nlit-1] == 0 {
		nlit--
	}
	ndist := numDistCodes
	for ndist > 1 && b.dist[ndist-1] == 0 {
		ndist--
	}

	var err error
	t := new(dynamicTables)
	if t.litLen, err = BuildEncoding(b.litLen[:nlit], maxCodeLength); err != nil {
		return nil, err
	}
	if t.dist, err = BuildEncoding(b.dist[:ndist], maxCodeLength); err != nil {
		return nil, err
	}

	t.clSyms = encodeCodeLengths(append(t.litLen.Lengths(), t.dist.Lengths()...))
	var clCounts [numCodeLengthCodes]int
	for _, s := range t.clSyms {
		clCounts[s.sym]++
	}
	if t.clEnc, err = BuildEncoding(clCounts[:], maxCodeLengthCodeLength); err != nil {
		return nil, err
	}

	t.clLens = make([]int, numCodeLengthCodes)
	for i, sym := range codeLengthOrder {
		t.clLens[i] = int(t.clEnc[sym].Len)
	}
	n := numCodeLengthCodes
	for n > 4 && t.clLens[n-1] == 0 {
		n--
	}
	t.clLens = t.clLens[:n]
	return t, nil
}

// elementBits returns the number of bits needed to send the block's
// elements and end of block symbol with the given codes.
func (b *blockBuilder) elementBits(litLen, dist Encoding) int {
	n := int(litLen[endOfBlock].Len)
	for _, e := range b.elems {
		if !e.IsMatch() {
			n += int(litLen[e.Literal].Len)
			continue
		}
		lc, _, lx := lengthCodes.encode(e.Length)
		dc, _, dx := distanceCodes.encode(e.Distance)
		n += int(litLen[lc].Len) + int(lx) + int(dist[dc].Len) + int(dx)
	}
	return n
}

func (b *blockBuilder) storedBits() int {
	return 32 + 8*len(b.raw)
}

func (b *blockBuilder) fixedBits() int {
	return b.elementBits(fixedLitLenEncoding, fixedDistEncoding)
}

func (b *blockBuilder) dynamicBits(t *dynamicTables) int {
	n := 14 + 3*len(t.clLens)
	for _, s := range t.clSyms {
		n += int(t.clEnc[s.sym].Len) + int(s.extraBits())
	}
	return n + b.elementBits(t.litLen, t.dist)
}

// emit writes the block to w and resets b.
func (b *blockBuilder) emit(w *bitWriter, final bool, log logrus.FieldLogger) error {
	defer b.reset()

	method := b.method
	var tables *dynamicTables
	if method == Auto || method == Dynamic {
		var err error
		if tables, err = b.buildDynamic(); err != nil {
			return err
		}
	}

	fields := logrus.Fields{
		"bytes":    len(b.raw),
		"elements": len(b.elems),
		"final":    final,
	}
	if method == Auto {
		stored, fixed, dynamic := b.storedBits(), b.fixedBits(), b.dynamicBits(tables)
		method = Stored
		if fixed < stored {
			method = Fixed
		}
		if dynamic < stored && dynamic < fixed {
			method = Dynamic
		}
		fields["stored_bits"] = stored
		fields["fixed_bits"] = fixed
		fields["dynamic_bits"] = dynamic
	}
	if log != nil {
		fields["method"] = method.String()
		log.WithFields(fields).Debug("flate: emitting block")
	}

	if final {
		w.writeBit(1)
	} else {
		w.writeBit(0)
	}
	w.writeBits(method.blockType(), 2)

	switch method {
	case Stored:
		n := uint32(len(b.raw))
		w.align()
		w.writeBits(n, 16)
		w.writeBits(^n&0xffff, 16)
		w.writeBytes(b.raw)
	case Fixed:
		b.writeElements(w, fixedLitLenEncoding, fixedDistEncoding)
	case Dynamic:
		w.writeBits(uint32(len(tables.litLen)-257), 5)
		w.writeBits(uint32(len(tables.dist)-1), 5)
		w.writeBits(uint32(len(tables.clLens)-4), 4)
		for _, l := range tables.clLens {
			w.writeBits(uint32(l), 3)
		}
		for _, s := range tables.clSyms {
			w.writeCode(tables.clEnc[s.sym])
			w.writeBits(s.extra, s.extraBits())
		}
		b.writeElements(w, tables.litLen, tables.dist)
	}
	return w.err
}

func (b *blockBuilder) writeElements(w *bitWriter, litLen, dist Encoding) {
	for _, e := range b.elems {
		if !e.IsMatch() {
			w.writeCode(litLen[e.Literal])
			continue
		}
		lc, lv, lx := lengthCodes.encode(e.Length)
		dc, dv, dx := distanceCodes.encode(e.Distance)
		w.writeCode(litLen[lc])
		w.writeBits(lv, lx)
		w.writeCode(dist[dc])
		w.writeBits(dv, dx)
	}
	w.writeCode(litLen[endOfBlock])
}
