package flate

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A Method selects how blocks are encoded.
type Method int

const (
	// Auto picks, for each block, whichever encoding is estimated to be
	// smallest.
	Auto Method = iota
	Stored
	Fixed
	Dynamic
)

var methodNames = map[Method]string{
	Auto:    "auto",
	Stored:  "stored",
	Fixed:   "fixed",
	Dynamic: "dynamic",
}

func (m Method) String() string {
	if s, ok := methodNames[m]; ok {
		return s
	}
	return "Method(" + strconv.Itoa(int(m)) + ")"
}

func (m Method) valid() bool {
	_, ok := methodNames[m]
	return ok
}

// ParseMethod converts a method name to a Method. "none" is accepted as
// another name for "stored".
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "stored", "none":
		return Stored, nil
	case "fixed":
		return Fixed, nil
	case "dynamic":
		return Dynamic, nil
	}
	return Auto, errors.Wrapf(ErrUnsupportedMethod, "unknown method %q", s)
}

// block type bits, as transmitted.
const (
	blockStored   = 0
	blockFixed    = 1
	blockDynamic  = 2
	blockReserved = 3
)

func (m Method) blockType() uint32 {
	switch m {
	case Fixed:
		return blockFixed
	case Dynamic:
		return blockDynamic
	}
	return blockStored
}
