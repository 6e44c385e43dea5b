package flate

import "github.com/pkg/errors"

// A Tree decodes Huffman codes one bit at a time. It is stored as an array
// of nodes; nodes[0] is the root, and a child index of 0 means "no child".
type Tree struct {
	nodes []treeNode
}

type treeNode struct {
	child [2]int32
	sym   int32 // -1 for internal nodes
}

// NewTree builds a decoding tree for the canonical code with the given
// code lengths.
func NewTree(lens []int) *Tree {
	return treeFromEncoding(CanonicalEncoding(lens))
}

func treeFromEncoding(enc Encoding) *Tree {
	t := &Tree{nodes: []treeNode{{sym: -1}}}
	for sym, c := range enc {
		if c.Len == 0 {
			continue
		}
		n := int32(0)
		for i := int(c.Len) - 1; i >= 0; i-- {
			bit := (c.Bits >> uint(i)) & 1
			next := t.nodes[n].child[bit]
			if next == 0 {
				next = int32(len(t.nodes))
				t.nodes = append(t.nodes, treeNode{sym: -1})
				t.nodes[n].child[bit] = next
			}
			n = next
		}
		t.nodes[n].sym = int32(sym)
	}
	return t
}

// Decode reads one symbol from br.
func (t *Tree) Decode(br *bitReader) (int, error) {
	n := int32(0)
	for {
		bit, err := br.readBit()
		if err != nil {
			return 0, err
		}
		next := t.nodes[n].child[bit]
		if next == 0 {
			return 0, errors.Wrapf(ErrInvalidSymbol, "no code continues with bit %d", bit)
		}
		n = next
		if s := t.nodes[n].sym; s >= 0 {
			return int(s), nil
		}
	}
}
