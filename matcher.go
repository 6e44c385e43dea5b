package pack

// DefaultSearchLen bounds the hash chain walk when Matcher.SearchLen is
// unset.
const DefaultSearchLen = 1024

// A Matcher is a greedy LZ77 match finder. At each position it emits the
// longest match it can find in the window, or a literal if no match of at
// least MinMatchLength bytes exists.
//
// Input is supplied with Feed and pulled out one Element at a time with
// Next, so a Matcher can be driven incrementally and stopped at any point.
// The window and index persist across calls, so later input can match
// against earlier input.
type Matcher struct {
	// MaxDistance is the maximum distance (in bytes) to look back for
	// a match. The default is WindowSize.
	MaxDistance int

	// MaxLength is the longest match to emit. The default is
	// MaxMatchLength.
	MaxLength int

	// SearchLen is how many entries to examine on the hash chain for each
	// match. The default is DefaultSearchLen.
	SearchLen int

	window    *Window // bytes already emitted
	lookahead *Window // bytes not yet emitted
	index     *shingleIndex

	pending []byte // fed input that hasn't fit into lookahead yet
	off     int

	pos      int64 // absolute position of the next byte entering window
	consumed []byte
}

func (m *Matcher) init() {
	if m.window != nil {
		return
	}
	if m.MaxDistance == 0 {
		m.MaxDistance = WindowSize
	}
	if m.MaxLength == 0 {
		m.MaxLength = MaxMatchLength
	}
	if m.SearchLen == 0 {
		m.SearchLen = DefaultSearchLen
	}
	m.window = NewWindow(m.MaxDistance)
	m.lookahead = NewWindow(m.MaxLength)
	m.index = newShingleIndex(m.MaxDistance)
}

// Feed queues p for matching. The Matcher keeps its own copy.
func (m *Matcher) Feed(p []byte) {
	m.init()
	if m.off == len(m.pending) {
		m.pending = m.pending[:0]
		m.off = 0
	}
	m.pending = append(m.pending, p...)
}

// Buffered returns the number of fed bytes that have not been emitted yet.
func (m *Matcher) Buffered() int {
	if m.window == nil {
		return 0
	}
	return len(m.pending) - m.off + m.lookahead.Len()
}

// Next returns the next Element. Unless flush is true, Next only produces
// an Element when a full lookahead is available, so that a match is never
// cut short by a batch boundary; ok is false when more input is needed
// (or, with flush, when all input has been emitted).
func (m *Matcher) Next(flush bool) (e Element, ok bool) {
	m.init()
	m.fill()
	if m.lookahead.Empty() || !flush && !m.lookahead.Full() {
		return Element{}, false
	}

	distance, length := m.search()
	if length >= MinMatchLength {
		e = Copy(length, distance)
	} else {
		e = Literal(m.lookahead.At(0))
	}
	m.advance(e.Size())
	return e, true
}

// Consumed returns the bytes covered by the Element most recently returned
// by Next. It is only valid until the next call to Next.
func (m *Matcher) Consumed() []byte {
	return m.consumed
}

func (m *Matcher) fill() {
	if m.lookahead.Full() || m.off == len(m.pending) {
		return
	}
	n := m.lookahead.Cap() - m.lookahead.Len()
	if rest := len(m.pending) - m.off; rest < n {
		n = rest
	}
	m.lookahead.Write(m.pending[m.off : m.off+n])
	m.off += n
}

// at returns the byte at index i of the window followed by the lookahead.
func (m *Matcher) at(i int) byte {
	if w := m.window.Len(); i >= w {
		return m.lookahead.At(i - w)
	}
	return m.window.At(i)
}

// search looks for the longest prefix of the lookahead that also starts in
// the window. Matches may run past the end of the window into the lookahead
// itself, which is how runs like "aaaa..." become one long match.
func (m *Matcher) search() (distance, length int) {
	winLen := m.window.Len()
	needle := m.lookahead
	limit := needle.Len()
	if limit > m.MaxLength {
		limit = m.MaxLength
	}

	// try checks the candidate starting at window index i, and reports
	// whether the search should continue.
	try := func(i int) bool {
		// A candidate can only beat the current best if it also matches
		// at the best length.
		if m.at(i+length) != needle.At(length) {
			return true
		}
		n := 0
		for n < limit && m.at(i+n) == needle.At(n) {
			n++
		}
		if n > length {
			distance, length = winLen-i, n
			if n == limit {
				return false
			}
		}
		return true
	}

	// The hash index only knows complete 3-byte shingles, so the last two
	// window positions have to be checked by hand.
	first := needle.At(0)
	for d := 1; d <= 2 && d <= winLen; d++ {
		if m.window.At(winLen-d) == first && !try(winLen-d) {
			return
		}
	}

	if needle.Len() < MinMatchLength {
		return
	}
	oldest := m.pos - int64(winLen)
	tries := 0
	m.index.candidates(first, needle.At(1), needle.At(2), oldest, func(p int64) bool {
		if tries == m.SearchLen {
			return false
		}
		tries++
		return try(int(p - oldest))
	})
	return
}

// advance moves n bytes from the lookahead into the window, indexing every
// shingle that they complete.
func (m *Matcher) advance(n int) {
	m.consumed = m.lookahead.Drop(m.consumed[:0], n)
	for _, b := range m.consumed {
		m.window.Push(b)
		m.pos++
		if m.window.Len() >= 3 {
			m.index.insert(m.pos-3, m.window.At(-3), m.window.At(-2), b)
		}
	}
}

// FindMatches converts all of src into Elements, appends them to dst, and
// returns dst.
func (m *Matcher) FindMatches(dst []Element, src []byte) []Element {
	m.Feed(src)
	for {
		e, ok := m.Next(true)
		if !ok {
			return dst
		}
		dst = append(dst, e)
	}
}

// Reset clears the window and any buffered input, preparing the Matcher to
// be used with a new stream.
func (m *Matcher) Reset() {
	if m.window == nil {
		return
	}
	m.window.Reset()
	m.lookahead.Reset()
	m.index.reset()
	m.pending = m.pending[:0]
	m.off = 0
	m.pos = 0
	m.consumed = m.consumed[:0]
}
