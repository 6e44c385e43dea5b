package pack

import "github.com/pkg/errors"

var (
	// ErrInvalidDistance means a match reached further back than the window
	// or than the output produced so far.
	ErrInvalidDistance = errors.New("invalid match distance")

	// ErrInvalidLength means a match was longer than the maximum match
	// length.
	ErrInvalidLength = errors.New("invalid match length")
)

// An Expander reverses a Matcher: it replays Elements against a window of
// recent output to reconstruct the original bytes.
type Expander struct {
	// MaxDistance is the window size in force for the stream. The default
	// is WindowSize.
	MaxDistance int

	// MaxLength is the longest match accepted. The default is
	// MaxMatchLength.
	MaxLength int

	window  *Window
	scratch []byte
}

func (x *Expander) init() {
	if x.window != nil {
		return
	}
	if x.MaxDistance == 0 {
		x.MaxDistance = WindowSize
	}
	if x.MaxLength == 0 {
		x.MaxLength = MaxMatchLength
	}
	x.window = NewWindow(x.MaxDistance)
}

// Expand appends the bytes that e stands for to dst and returns dst.
// A match that reaches outside the window fails with ErrInvalidDistance, and
// one longer than MaxLength with ErrInvalidLength; nothing is appended in
// either case.
func (x *Expander) Expand(dst []byte, e Element) ([]byte, error) {
	x.init()
	if !e.IsMatch() {
		x.window.Push(e.Literal)
		return append(dst, e.Literal), nil
	}

	switch {
	case e.Distance < 1 || e.Distance > x.window.Cap():
		return dst, errors.Wrapf(ErrInvalidDistance, "distance %d outside window size %d", e.Distance, x.window.Cap())
	case e.Distance > x.window.Len():
		return dst, errors.Wrapf(ErrInvalidDistance, "distance %d > output length produced so far %d", e.Distance, x.window.Len())
	case e.Length > x.MaxLength:
		return dst, errors.Wrapf(ErrInvalidLength, "length %d > max match length %d", e.Length, x.MaxLength)
	}

	// The source may overlap the bytes being produced (Length > Distance),
	// so cycle through the last Distance bytes.
	src := x.window.Last(x.scratch[:0], e.Distance)
	x.scratch = src
	for i := 0; i < e.Length; i++ {
		b := src[i%len(src)]
		x.window.Push(b)
		dst = append(dst, b)
	}
	return dst, nil
}

// Reset clears the window, preparing the Expander for a new stream.
func (x *Expander) Reset() {
	if x.window != nil {
		x.window.Reset()
	}
}
