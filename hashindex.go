package pack

const (
	hashBits = 15
	hashSize = 1 << hashBits
	hashMask = hashSize - 1

	hashMul32 = 0x1e35a7bd
)

// A shingleIndex maps each 3-byte substring seen in a window to the
// positions where it started, newest first. Positions are absolute stream
// offsets, so they never need rebasing.
//
// It is a hash chain: head holds the newest position for each hash value,
// and chain links every position to the previous one with the same hash.
// Both store position+1, so that 0 means "none". Entries that have slid out
// of the window are never removed; a walk simply stops when it reaches one.
type shingleIndex struct {
	head  [hashSize]int64
	chain []int64
}

func newShingleIndex(windowSize int) *shingleIndex {
	return &shingleIndex{chain: make([]int64, windowSize)}
}

func hash3(a, b, c byte) uint32 {
	u := uint32(a)<<16 | uint32(b)<<8 | uint32(c)
	return (u * hashMul32) >> (32 - hashBits)
}

// insert records that the shingle a, b, c starts at pos.
func (x *shingleIndex) insert(pos int64, a, b, c byte) {
	h := hash3(a, b, c) & hashMask
	x.chain[pos%int64(len(x.chain))] = x.head[h]
	x.head[h] = pos + 1
}

// candidates calls yield with every recorded position >= oldest whose
// shingle hashes like a, b, c, newest first, until yield returns false.
// Hash collisions are possible; callers must compare the bytes.
func (x *shingleIndex) candidates(a, b, c byte, oldest int64, yield func(pos int64) bool) {
	p := x.head[hash3(a, b, c)&hashMask] - 1
	for p >= 0 && p >= oldest {
		if !yield(p) {
			return
		}
		next := x.chain[p%int64(len(x.chain))] - 1
		if next >= p {
			// The slot was reused by a newer position.
			return
		}
		p = next
	}
}

func (x *shingleIndex) reset() {
	x.head = [hashSize]int64{}
	for i := range x.chain {
		x.chain[i] = 0
	}
}
