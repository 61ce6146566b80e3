package synth

import (
	"errors"
)

// BufferAdapter decouples a downstream's variable produce(n) request from an
// upstream that can only be pulled in fixed-size blocks (spec.md 4.5).
type BufferAdapter struct {
	base
	src           Node
	upstreamCount int
	rb            *ring
	rd            *reader
	ended         bool
	drained       bool
	dtype         Dtype
	dtypeSet      bool
}

// NewBufferAdapter wraps src, pulling it in fixed blocks of upstreamCount
// samples regardless of what size the downstream requests.
func NewBufferAdapter(src Node, upstreamCount int) *BufferAdapter {
	rb := newRing(2*upstreamCount + 64)
	rd := rb.newReader(0)
	return &BufferAdapter{
		base:          newBase(src.SampleRate()),
		src:           src,
		upstreamCount: upstreamCount,
		rb:            rb,
		rd:            rd,
	}
}

func (a *BufferAdapter) Sources() map[string]any { return map[string]any{"upstream": a.src} }

func (a *BufferAdapter) For(seconds float64) Node { a.setDuration(seconds); return a }

func (a *BufferAdapter) Reset() {
	a.reset()
	a.ended = false
	a.drained = false
	a.rb = newRing(2*a.upstreamCount + 64)
	a.rd = a.rb.newReader(0)
	if r, ok := a.src.(Resetter); ok {
		r.Reset()
	}
}

func (a *BufferAdapter) Produce(n int) (*Buffer, error) {
	n2, limited := a.remaining(n)
	if limited && n2 == 0 {
		return nil, ErrEndOfStream
	}
	n = n2
	if a.drained {
		return nil, ErrEndOfStream
	}
	for !a.ended && a.rb.available(a.rd) < n {
		buf, err := a.src.Produce(a.upstreamCount)
		L := buf.Len()
		if L > 0 {
			if !a.dtypeSet {
				a.dtype = buf.Dtype
				a.dtypeSet = true
			} else {
				a.dtype = LUB(a.dtype, buf.Dtype)
			}
			cs := make([]complex128, L)
			for i := 0; i < L; i++ {
				cs[i] = buf.At(i)
			}
			if werr := a.rb.writeSamples(cs, 0); werr != nil {
				return nil, werr
			}
		}
		if err != nil {
			if errors.Is(err, ErrEndOfStream) {
				a.ended = true
				break
			}
			return nil, err
		}
		if L == 0 {
			a.ended = true
			break
		}
	}
	avail := a.rb.available(a.rd)
	want := n
	if avail < want {
		want = avail
	}
	if want == 0 {
		a.drained = true
		return nil, ErrEndOfStream
	}
	samples := a.rb.readSamples(a.rd, want)
	dt := a.dtype
	if !a.dtypeSet {
		dt = Real64
	}
	out := NewBuffer(dt, want)
	for i, s := range samples {
		out.Set(i, s)
	}
	if want < n {
		a.drained = true
	}
	a.advance(want)
	return out, nil
}
