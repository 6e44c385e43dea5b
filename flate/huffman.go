package flate

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// A Code is a Huffman code of Len bits, transmitted most significant bit
// first.
type Code struct {
	Bits uint16
	Len  uint8
}

func (c Code) String() string {
	return fmt.Sprintf("%0*b", int(c.Len), c.Bits)
}

// An Encoding maps each symbol of an alphabet to its code. Symbols that
// never occur have no code; their entry is the zero Code.
type Encoding []Code

// Lookup returns the code for sym, and whether it has one.
func (e Encoding) Lookup(sym int) (Code, bool) {
	if sym < 0 || sym >= len(e) || e[sym].Len == 0 {
		return Code{}, false
	}
	return e[sym], true
}

// Lengths returns the code length of every symbol, 0 for unused ones.
func (e Encoding) Lengths() []int {
	lens := make([]int, len(e))
	for i, c := range e {
		lens[i] = int(c.Len)
	}
	return lens
}

// BuildEncoding builds a canonical Huffman code for an alphabet whose
// symbol frequencies are counts, with no code longer than maxLen bits.
func BuildEncoding(counts []int, maxLen int) (Encoding, error) {
	lens, err := CodeLengths(counts, maxLen)
	if err != nil {
		return nil, err
	}
	return CanonicalEncoding(lens), nil
}

// CanonicalEncoding assigns canonical codes to symbols given their code
// lengths, as described in RFC 1951 section 3.2.2. Symbols of length 0 get
// no code.
func CanonicalEncoding(lens []int) Encoding {
	var blCount [maxCodeLength + 1]int
	maxBits := 0
	for _, l := range lens {
		if l > 0 {
			blCount[l]++
			if l > maxBits {
				maxBits = l
			}
		}
	}

	var nextCode [maxCodeLength + 1]int
	code := 0
	for bits := 1; bits <= maxBits; bits++ {
		code = (code + blCount[bits-1]) << 1
		nextCode[bits] = code
	}

	enc := make(Encoding, len(lens))
	for sym, l := range lens {
		if l == 0 {
			continue
		}
		enc[sym] = Code{Bits: uint16(nextCode[l]), Len: uint8(l)}
		nextCode[l]++
	}
	return enc
}

// A mergeNode is a node of the tree built while merging symbols by weight.
// Leaves have left == -1.
type mergeNode struct {
	sym         int
	left, right int
}

type mergeItem struct {
	weight int
	depth  int // depth of the deepest leaf below this node, counting itself
	seq    int // insertion order, to make ties deterministic
	node   int
}

type mergeQueue []mergeItem

func (q mergeQueue) Len() int { return len(q) }

func (q mergeQueue) Less(i, j int) bool {
	a, b := q[i], q[j]
	if a.weight != b.weight {
		return a.weight < b.weight
	}
	if a.depth != b.depth {
		return a.depth < b.depth
	}
	return a.seq < b.seq
}

func (q mergeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *mergeQueue) Push(x interface{}) { *q = append(*q, x.(mergeItem)) }

func (q *mergeQueue) Pop() interface{} {
	old := *q
	x := old[len(old)-1]
	*q = old[:len(old)-1]
	return x
}

type symLen struct {
	sym, len int
}

// CodeLengths computes Huffman code lengths for the symbol frequencies in
// counts, limited to maxLen bits. Symbols with a zero count get length 0.
//
// The tree is built by repeatedly merging the two lightest nodes, breaking
// ties in favor of the shallower node to keep the tree balanced. If that
// still leaves codes longer than maxLen, the tree is rebalanced using only
// the per-length leaf counts.
func CodeLengths(counts []int, maxLen int) ([]int, error) {
	lens := make([]int, len(counts))

	var nodes []mergeNode
	var q mergeQueue
	for sym, c := range counts {
		if c > 0 {
			q = append(q, mergeItem{weight: c, depth: 1, seq: len(nodes), node: len(nodes)})
			nodes = append(nodes, mergeNode{sym: sym, left: -1, right: -1})
		}
	}
	switch {
	case len(nodes) == 0:
		return lens, nil
	case len(nodes) == 1:
		lens[nodes[0].sym] = 1
		return lens, nil
	case len(nodes) > 1<<uint(maxLen):
		return nil, errors.Errorf("flate: %d symbols cannot fit in codes of at most %d bits", len(nodes), maxLen)
	}

	heap.Init(&q)
	seq := len(nodes)
	for q.Len() > 1 {
		l := heap.Pop(&q).(mergeItem)
		r := heap.Pop(&q).(mergeItem)
		depth := l.depth
		if r.depth > depth {
			depth = r.depth
		}
		nodes = append(nodes, mergeNode{sym: -1, left: l.node, right: r.node})
		heap.Push(&q, mergeItem{weight: l.weight + r.weight, depth: depth + 1, seq: seq, node: len(nodes) - 1})
		seq++
	}
	root := q[0].node

	// Walk the tree. Every internal node at depth maxLen roots a subtree
	// whose leaves are all too deep.
	var sorted []symLen
	overflow, subtrees := 0, 0
	type visit struct{ node, depth int }
	stack := []visit{{root, 0}}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := nodes[v.node]
		if n.left < 0 {
			lens[n.sym] = v.depth
			sorted = append(sorted, symLen{n.sym, v.depth})
			if v.depth > maxLen {
				overflow++
			}
			continue
		}
		if v.depth == maxLen {
			subtrees++
		}
		stack = append(stack, visit{n.left, v.depth + 1}, visit{n.right, v.depth + 1})
	}
	if overflow == 0 {
		return lens, nil
	}

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].len != sorted[j].len {
			return sorted[i].len < sorted[j].len
		}
		return sorted[i].sym < sorted[j].sym
	})

	perLen := make([]int, maxLen+1)
	for _, s := range sorted {
		if s.len <= maxLen {
			perLen[s.len]++
		}
	}

	// Each too-deep subtree collapses into a single leaf at maxLen.
	perLen[maxLen] += subtrees

	// Every other too-deep leaf needs room: turn the deepest leaf above
	// maxLen into two leaves one level down.
	for i := overflow - subtrees; i > 0; i-- {
		d := maxLen - 1
		for d > 0 && perLen[d] == 0 {
			d--
		}
		if d == 0 {
			return nil, errors.Errorf("flate: cannot limit code lengths to %d bits", maxLen)
		}
		perLen[d]--
		perLen[d+1] += 2
	}

	// Hand out the new lengths in the old (length, symbol) order.
	k := 0
	for l := 1; l <= maxLen; l++ {
		for j := 0; j < perLen[l]; j++ {
			lens[sorted[k].sym] = l
			k++
		}
	}
	return lens, nil
}
