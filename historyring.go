package synth

// historyRing is a single-writer, random-read circular buffer of
// complex128 history samples, indexed by absolute sample position. Unlike
// ring (which serves independent cursor readers), historyRing serves
// fractional-index interpolation lookups a bounded distance behind the
// write position, as needed by Delay and MultitapDelay (spec.md 4.9).
type historyRing struct {
	buf   []complex128
	base  int64 // absolute position stored at buf[0]
	write int64 // absolute count of samples written so far
}

func newHistoryRing(capacity int) *historyRing {
	if capacity < 1 {
		capacity = 1
	}
	return &historyRing{buf: make([]complex128, capacity)}
}

// growTo enlarges the ring to at least capacity, retaining the most recent
// `retain` samples (older ones may be dropped since no live delay can ever
// address further back than maxDelay samples).
func (h *historyRing) growTo(capacity int, retain int64) {
	if capacity <= len(h.buf) {
		return
	}
	lo := h.write - retain
	if lo < h.base {
		lo = h.base
	}
	if lo < 0 {
		lo = 0
	}
	nb := make([]complex128, capacity)
	n := h.write - lo
	for i := int64(0); i < n; i++ {
		nb[i] = h.at(lo + i)
	}
	h.buf = nb
	h.base = lo
}

// write1 appends v at the next absolute position.
func (h *historyRing) write1(v complex128) {
	h.buf[(h.write-h.base)%int64(len(h.buf))] = v
	h.write++
}

// at returns the sample stored at absolute position pos, or 0 if pos falls
// outside the window currently retained (before start-of-stream, or already
// evicted).
func (h *historyRing) at(pos int64) complex128 {
	if pos < h.base || pos >= h.write || pos < h.write-int64(len(h.buf)) {
		return 0
	}
	return h.buf[(pos-h.base)%int64(len(h.buf))]
}

func (h *historyRing) capacity() int { return len(h.buf) }
