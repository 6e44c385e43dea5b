package flate

import "github.com/pkg/errors"

// Symbols of the code-length alphabet above the literal lengths 0-15.
const (
	repeatPrevious = 16 // previous length 3-6 times, 2 extra bits
	repeatZero3    = 17 // zero 3-10 times, 3 extra bits
	repeatZero11   = 18 // zero 11-138 times, 7 extra bits
)

// codeLengthOrder is the order in which the lengths of the code-length code
// are transmitted.
var codeLengthOrder = [numCodeLengthCodes]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// A Run is a maximal sequence of Count equal code lengths.
type Run struct {
	Value, Count int
}

// Runs splits lens into runs of equal values.
func Runs(lens []int) []Run {
	var runs []Run
	for _, l := range lens {
		if n := len(runs); n > 0 && runs[n-1].Value == l {
			runs[n-1].Count++
			continue
		}
		runs = append(runs, Run{Value: l, Count: 1})
	}
	return runs
}

// A clSymbol is one symbol of the code-length alphabet, with the extra-bits
// value that follows it for the repeat symbols.
type clSymbol struct {
	sym   int
	extra uint32
}

func (s clSymbol) extraBits() uint {
	switch s.sym {
	case repeatPrevious:
		return 2
	case repeatZero3:
		return 3
	case repeatZero11:
		return 7
	}
	return 0
}

// encodeCodeLengths run-length encodes a sequence of code lengths.
//
// Each run is cut into groups: zero runs into groups of at most 138, other
// runs into groups of at most 6. A group shorter than its repeat symbol can
// express (3 for zeros, 4 for other lengths) is sent as single lengths.
func encodeCodeLengths(lens []int) []clSymbol {
	var out []clSymbol
	group := func(v, n int) {
		switch {
		case n == 1:
			out = append(out, clSymbol{sym: v})
		case v == 0 && n <= 10:
			out = append(out, clSymbol{sym: repeatZero3, extra: uint32(n - 3)})
		case v == 0:
			out = append(out, clSymbol{sym: repeatZero11, extra: uint32(n - 11)})
		default:
			out = append(out, clSymbol{sym: v}, clSymbol{sym: repeatPrevious, extra: uint32(n - 1 - 3)})
		}
	}

	for _, r := range Runs(lens) {
		lo, hi := 4, 6
		if r.Value == 0 {
			lo, hi = 3, 138
		}
		n := r.Count
		for ; n > hi; n -= hi {
			group(r.Value, hi)
		}
		if n < lo {
			for ; n > 0; n-- {
				group(r.Value, 1)
			}
		} else {
			group(r.Value, n)
		}
	}
	return out
}

// decodeCodeLengths reads n code lengths encoded with the code-length
// code t.
func decodeCodeLengths(br *bitReader, t *Tree, n int) ([]int, error) {
	lens := make([]int, 0, n)
	prev := -1
	for len(lens) < n {
		sym, err := t.Decode(br)
		if err != nil {
			return nil, err
		}

		var value int
		var bits uint
		var offset int
		switch {
		case sym < repeatPrevious:
			lens = append(lens, sym)
			prev = sym
			continue
		case sym == repeatPrevious:
			if prev < 0 {
				return nil, errors.Wrapf(ErrMissingRepeatContext, "at code length %d", len(lens))
			}
			value, bits, offset = prev, 2, 3
		case sym == repeatZero3:
			value, bits, offset = 0, 3, 3
		case sym == repeatZero11:
			value, bits, offset = 0, 7, 11
		default:
			return nil, errors.Wrapf(ErrInvalidSymbol, "code length symbol %d", sym)
		}

		x, err := br.readBits(bits)
		if err != nil {
			return nil, err
		}
		count := int(x) + offset
		if len(lens)+count > n {
			return nil, errors.Wrapf(ErrInvalidCodeLengths, "repeat of %d at %d overruns %d code lengths", count, len(lens), n)
		}
		for i := 0; i < count; i++ {
			lens = append(lens, value)
		}
		prev = value
	}
	return lens, nil
}
