package pack

import "strconv"

// A TextEncoder produces a human-readable representation of an LZ77 element
// stream. Literals are copied through; matches are replaced with
// <Length,Distance> symbols.
type TextEncoder struct{}

// Encode appends the text form of elems to dst and returns dst.
func (t TextEncoder) Encode(dst []byte, elems []Element) []byte {
	for _, e := range elems {
		if !e.IsMatch() {
			dst = append(dst, e.Literal)
			continue
		}
		dst = append(dst, '<')
		dst = strconv.AppendInt(dst, int64(e.Length), 10)
		dst = append(dst, ',')
		dst = strconv.AppendInt(dst, int64(e.Distance), 10)
		dst = append(dst, '>')
	}
	return dst
}
