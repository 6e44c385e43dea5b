// The pack package is the LZ77 layer of a DEFLATE implementation.
//
// DEFLATE compression has two main parts:
//   - Something that looks for repeated sequences of bytes
//   - An encoder for the compressed data format (an entropy coder)
//
// This package holds the first part, and its inverse: a Matcher that turns
// bytes into a stream of Elements, and an Expander that turns Elements back
// into bytes. The flate subpackage does the bit-level encoding of Elements.
package pack

import "fmt"

const (
	// WindowSize is how far back a DEFLATE match may reach.
	WindowSize = 1 << 15

	// MinMatchLength is the shortest match worth emitting; anything shorter
	// costs more than the literals it replaces.
	MinMatchLength = 3

	// MaxMatchLength is the longest match DEFLATE can represent.
	MaxMatchLength = 258
)

// An Element is the basic unit of LZ77 compression. It is either a literal
// byte (Length == 0) or a back-reference copying Length bytes from Distance
// bytes back.
type Element struct {
	Literal  byte
	Length   int
	Distance int
}

// Literal returns an Element holding the single byte b.
func Literal(b byte) Element {
	return Element{Literal: b}
}

// Copy returns an Element that repeats length bytes starting distance
// bytes back.
func Copy(length, distance int) Element {
	return Element{Length: length, Distance: distance}
}

// IsMatch reports whether e is a back-reference rather than a literal.
func (e Element) IsMatch() bool {
	return e.Length > 0
}

// Size returns the number of uncompressed bytes e stands for.
func (e Element) Size() int {
	if e.Length > 0 {
		return e.Length
	}
	return 1
}

func (e Element) String() string {
	if e.IsMatch() {
		return fmt.Sprintf("<%d,%d>", e.Length, e.Distance)
	}
	return fmt.Sprintf("%q", e.Literal)
}

// A MatchFinder performs the LZ77 stage of compression, looking for matches.
type MatchFinder interface {
	// FindMatches converts src into Elements, appends them to dst, and
	// returns dst. Matches may refer back to data passed in earlier calls.
	FindMatches(dst []Element, src []byte) []Element

	// Reset forgets all earlier input, so that the next FindMatches starts
	// a new stream.
	Reset()
}
