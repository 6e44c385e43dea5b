package flate

import (
	"github.com/pkg/errors"

	"github.com/flatepack/pack"
)

var (
	ErrUnsupportedMethod    = errors.New("flate: unsupported compression method")
	ErrCorruptStoredBlock   = errors.New("flate: corrupt stored block length")
	ErrReservedBlockType    = errors.New("flate: reserved block type")
	ErrMissingRepeatContext = errors.New("flate: code length repeat with no previous length")
	ErrTruncatedStream      = errors.New("flate: truncated stream")

	// ErrInvalidSymbol means the bit stream walked off an incomplete
	// Huffman code, or decoded a symbol outside its alphabet.
	ErrInvalidSymbol = errors.New("flate: invalid symbol")

	// ErrInvalidCodeLengths means a dynamic block's code-length sequence
	// ran past the number of lengths its header announced.
	ErrInvalidCodeLengths = errors.New("flate: invalid code lengths")

	ErrInvalidDistance = pack.ErrInvalidDistance
	ErrInvalidLength   = pack.ErrInvalidLength
)
