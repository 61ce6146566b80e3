// Copyright 2024 The Arborsound Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the License file.

package synth

import "errors"

// errOverflow is the ring-level sentinel a full writeSamples call returns
// when growth would exceed the caller's maxBacklog; Tee and
// InputChannelSplit translate it into a BranchOverflowError carrying their
// own node/branch identity.
var errOverflow = errors.New("synth: ring overflow")

// ring is a fixed-capacity (grow-on-demand) circular buffer of complex128
// samples supporting a single writer and any number of independent readers.
// Each reader holds its own tail position; the writer's only obligation is
// to never overwrite a sample still unread by the slowest live reader. A
// write that would do so is reported to the caller as an overflow rather
// than silently dropping data, matching spec.md's Tee/MultitapDelay
// contract.
//
// ring generalizes the teacher's packet.buffer helper (packet.go), which
// grew a flat []float64 by a fixed 5/3 slack factor whenever capacity ran
// out. Here growth preserves existing contents and reader offsets, and the
// same slack factor is reused so capacity bursts settle into a stable size
// rather than reallocating every call.
type ring struct {
	buf     []complex128
	base    int64 // absolute sample index stored at buf[0]
	write   int64 // absolute number of samples ever written
	readers []*reader
}

type reader struct {
	id     int
	read   int64 // absolute number of samples ever consumed
	closed bool
}

func newRing(capacity int) *ring {
	if capacity < 1 {
		capacity = 1
	}
	return &ring{buf: make([]complex128, capacity)}
}

// grow enlarges the ring to at least capacity, preserving live contents.
// Grounded on packet.go's buffer(): when the requested size exceeds
// capacity, grow by 5/3 rather than the exact requested amount.
func (r *ring) grow(capacity int) {
	if capacity <= len(r.buf) {
		return
	}
	newCap := capacity
	if slack := (5 * len(r.buf)) / 3; slack > newCap {
		newCap = slack
	}
	nb := make([]complex128, newCap)
	lo := r.minTail()
	n := r.write - lo
	for i := int64(0); i < n; i++ {
		nb[i] = r.at(lo + i)
	}
	r.buf = nb
	r.base = lo
}

func (r *ring) at(i int64) complex128 {
	return r.buf[(i-r.base)%int64(len(r.buf))]
}

// newReader opens a new independent read cursor starting at the current
// write position (it sees only samples written from now on).
func (r *ring) newReader(id int) *reader {
	rd := &reader{id: id, read: r.write}
	r.readers = append(r.readers, rd)
	return rd
}

// closeReader removes rd from the set of live readers. Dropping a handle
// never stalls the writer: the writer's min-tail computation simply omits
// closed readers from then on.
func (r *ring) closeReader(rd *reader) {
	rd.closed = true
	out := r.readers[:0]
	for _, x := range r.readers {
		if !x.closed {
			out = append(out, x)
		}
	}
	r.readers = out
}

// minTail is the smallest read position among live readers, i.e. the oldest
// sample the writer must still preserve. With no live readers, the writer
// may discard everything already written.
func (r *ring) minTail() int64 {
	if len(r.readers) == 0 {
		return r.write
	}
	m := r.readers[0].read
	for _, rd := range r.readers[1:] {
		if rd.read < m {
			m = rd.read
		}
	}
	return m
}

// available reports how many unread samples rd still has buffered.
func (r *ring) available(rd *reader) int {
	return int(r.write - rd.read)
}

// writeSamples appends samples to the ring, growing it first if the write would
// advance past the oldest unread sample the current capacity can hold.
// It returns errOverflow if growth alone cannot make room, i.e. a
// reader has fallen behind by more than is reasonable to buffer (the caller
// decides the cap via maxBacklog; 0 means unbounded growth).
func (r *ring) writeSamples(samples []complex128, maxBacklog int) error {
	need := int(r.write-r.minTail()) + len(samples)
	if need > len(r.buf) {
		if maxBacklog > 0 && need > maxBacklog {
			return errOverflow
		}
		r.grow(need)
	}
	for _, s := range samples {
		r.buf[(r.write-r.base)%int64(len(r.buf))] = s
		r.write++
	}
	return nil
}

// peek copies up to n unread samples for rd without consuming them.
func (r *ring) peek(rd *reader, n int) []complex128 {
	avail := r.available(rd)
	if n > avail {
		n = avail
	}
	out := make([]complex128, n)
	for i := 0; i < n; i++ {
		out[i] = r.at(rd.read + int64(i))
	}
	return out
}

// readSamples copies and consumes up to n unread samples for rd.
func (r *ring) readSamples(rd *reader, n int) []complex128 {
	out := r.peek(rd, n)
	rd.read += int64(len(out))
	return out
}

// discard advances rd's cursor by n without returning the samples.
func (r *ring) discard(rd *reader, n int) {
	avail := r.available(rd)
	if n > avail {
		n = avail
	}
	rd.read += int64(n)
}
