package rolling

// Window is a fixed-capacity FIFO ring buffer. Pushing onto a full window
// evicts the oldest value, so Len never exceeds Cap.
type Window struct {
	buf  []float64
	head int // index of the oldest value
	size int
}

// NewWindow allocates a window holding at most capacity values.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{buf: make([]float64, capacity)}
}

// Push appends v, evicting the oldest value when full.
func (w *Window) Push(v float64) {
	if w.size < len(w.buf) {
		w.buf[(w.head+w.size)%len(w.buf)] = v
		w.size++
		return
	}
	w.buf[w.head] = v
	w.head = (w.head + 1) % len(w.buf)
}

// Len returns the number of stored values.
func (w *Window) Len() int { return w.size }

// Cap returns the capacity.
func (w *Window) Cap() int { return len(w.buf) }

// Recent returns the i-th most recent value (0 = newest).
func (w *Window) Recent(i int) float64 {
	return w.buf[(w.head+w.size-1-i)%len(w.buf)]
}

// Values returns the stored values oldest first.
func (w *Window) Values() []float64 {
	out := make([]float64, w.size)
	for i := range out {
		out[i] = w.buf[(w.head+i)%len(w.buf)]
	}
	return out
}
