package pack

// A Window is a fixed-capacity ring buffer of bytes. Pushing onto a full
// Window silently evicts the oldest byte.
//
// Indexes passed to At count from the oldest byte (0) when non-negative and
// from the newest byte (-1) when negative.
type Window struct {
	buf   []byte
	start int // index in buf of the oldest byte
	size  int
}

// NewWindow returns an empty Window that holds at most capacity bytes.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		panic("pack: window capacity must be positive")
	}
	return &Window{buf: make([]byte, capacity)}
}

// Cap returns the maximum number of bytes w can hold.
func (w *Window) Cap() int { return len(w.buf) }

// Len returns the number of bytes currently in w.
func (w *Window) Len() int { return w.size }

func (w *Window) Full() bool  { return w.size == len(w.buf) }
func (w *Window) Empty() bool { return w.size == 0 }

func (w *Window) wrap(i int) int {
	if i >= len(w.buf) {
		i -= len(w.buf)
	}
	return i
}

// Push appends b, evicting the oldest byte if w is full.
func (w *Window) Push(b byte) {
	w.buf[w.wrap(w.start+w.size)] = b
	if w.size == len(w.buf) {
		w.start = w.wrap(w.start + 1)
	} else {
		w.size++
	}
}

// Write pushes every byte of p. It never fails.
func (w *Window) Write(p []byte) (int, error) {
	if len(p) >= len(w.buf) {
		// Only the tail survives.
		copy(w.buf, p[len(p)-len(w.buf):])
		w.start = 0
		w.size = len(w.buf)
		return len(p), nil
	}
	for _, b := range p {
		w.Push(b)
	}
	return len(p), nil
}

// At returns the byte at index i. It panics if i is out of range.
func (w *Window) At(i int) byte {
	if i < 0 {
		i += w.size
	}
	if i < 0 || i >= w.size {
		panic("pack: window index out of range")
	}
	return w.buf[w.wrap(w.start+i)]
}

// Drop removes the n oldest bytes, appends them to dst, and returns dst.
func (w *Window) Drop(dst []byte, n int) []byte {
	if n > w.size {
		n = w.size
	}
	dst = w.appendRange(dst, 0, n)
	w.start = w.wrap(w.start + n)
	w.size -= n
	return dst
}

// Take appends the n oldest bytes to dst without removing them.
func (w *Window) Take(dst []byte, n int) []byte {
	if n > w.size {
		n = w.size
	}
	return w.appendRange(dst, 0, n)
}

// Last appends the n newest bytes to dst, oldest first.
func (w *Window) Last(dst []byte, n int) []byte {
	if n > w.size {
		n = w.size
	}
	return w.appendRange(dst, w.size-n, n)
}

func (w *Window) appendRange(dst []byte, from, n int) []byte {
	if n <= 0 {
		return dst
	}
	i := w.wrap(w.start + from)
	if i+n <= len(w.buf) {
		return append(dst, w.buf[i:i+n]...)
	}
	dst = append(dst, w.buf[i:]...)
	return append(dst, w.buf[:n-(len(w.buf)-i)]...)
}

// Reset empties w.
func (w *Window) Reset() {
	w.start = 0
	w.size = 0
}
