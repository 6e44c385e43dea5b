package flate

import (
	"sort"

	"github.com/pkg/errors"
)

const (
	endOfBlock = 256

	// maxCodeLength limits literal/length and distance codes.
	maxCodeLength = 15

	// maxCodeLengthCodeLength limits codes of the code-length alphabet,
	// whose lengths are sent in 3 bits.
	maxCodeLengthCodeLength = 7

	numLitLenCodes     = 286
	numDistCodes       = 30
	numCodeLengthCodes = 19
)

// A codeTable converts values to a code plus extra bits and back. Entry i
// covers the values from base[i] to base[i] + 2^extra[i] - 1, and is sent
// as code firstCode + i.
type codeTable struct {
	firstCode int
	base      []int
	extra     []uint
}

// Length codes 257-285.
var lengthCodes = codeTable{
	firstCode: 257,
	base: []int{
		3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
		35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
	},
	extra: []uint{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
	},
}

// Distance codes 0-29.
var distanceCodes = codeTable{
	firstCode: 0,
	base: []int{
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
		257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
	},
	extra: []uint{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
		7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	},
}

// encode returns the code for v, and the extra bits that refine it. It
// uses the highest entry whose base is <= v.
func (t *codeTable) encode(v int) (code int, extra uint32, nbits uint) {
	i := sort.Search(len(t.base), func(i int) bool { return t.base[i] > v }) - 1
	if i < 0 {
		i = 0
	}
	return t.firstCode + i, uint32(v - t.base[i]), t.extra[i]
}

// decode reads the extra bits for code and returns the value.
func (t *codeTable) decode(code int, br *bitReader) (int, error) {
	i := code - t.firstCode
	if i < 0 || i >= len(t.base) {
		return 0, errors.Wrapf(ErrInvalidSymbol, "unexpected code %d", code)
	}
	v := t.base[i]
	if t.extra[i] > 0 {
		x, err := br.readBits(t.extra[i])
		if err != nil {
			return 0, err
		}
		v += int(x)
	}
	return v, nil
}

// The fixed Huffman codes of RFC 1951 section 3.2.6.
var (
	fixedLitLenEncoding = CanonicalEncoding(fixedLitLenLengths())
	fixedDistEncoding   = CanonicalEncoding(fixedDistLengths())
	fixedLitLenTree     = treeFromEncoding(fixedLitLenEncoding)
	fixedDistTree       = treeFromEncoding(fixedDistEncoding)
)

func fixedLitLenLengths() []int {
	lens := make([]int, 288)
	for i := range lens {
		switch {
		case i < 144:
			lens[i] = 8
		case i < 256:
			lens[i] = 9
		case i < 280:
			lens[i] = 7
		default:
			lens[i] = 8
		}
	}
	return lens
}

func fixedDistLengths() []int {
	lens := make([]int, 32)
	for i := range lens {
		lens[i] = 5
	}
	return lens
}
