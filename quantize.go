package synth

import "math"

// Quantize rounds samples to a step size, which may be a scalar or a
// per-sample stream (spec.md 4.7). A step of zero or non-finite leaves that
// sample unchanged. Complex inputs quantize their real and imaginary
// components independently against the step's real and imaginary parts.
type Quantize struct {
	base
	src   Node
	step  Node
	dtype Dtype
}

// NewQuantize creates a Quantize over src with step as the (possibly
// per-sample) step source. If step's rate differs from src's, it is coerced
// to src's rate at construction.
func NewQuantize(src, step Node) (*Quantize, error) {
	rate := src.SampleRate()
	if step.SampleRate() != rate {
		if rs, ok := step.(RateSetter); ok {
			if err := rs.SetRate(rate); err != nil {
				return nil, &RateMismatchError{Node: "Quantize", Want: rate, Got: step.SampleRate()}
			}
		} else {
			return nil, &RateMismatchError{Node: "Quantize", Want: rate, Got: step.SampleRate()}
		}
	}
	return &Quantize{base: newBase(rate), src: src, step: step, dtype: Real64}, nil
}

// NewQuantizeScalar is NewQuantize with a constant step value.
func NewQuantizeScalar(src Node, step complex128) *Quantize {
	q, _ := NewQuantize(src, NewConstant(src.SampleRate(), step, false))
	return q
}

func (q *Quantize) Sources() map[string]any {
	return map[string]any{"source": q.src, "step": q.step}
}

func (q *Quantize) For(seconds float64) Node { q.setDuration(seconds); return q }

func (q *Quantize) Reset() {
	q.reset()
	if r, ok := q.src.(Resetter); ok {
		r.Reset()
	}
	if r, ok := q.step.(Resetter); ok {
		r.Reset()
	}
}

func (q *Quantize) Produce(n int) (*Buffer, error) {
	n2, limited := q.remaining(n)
	if limited && n2 == 0 {
		return nil, ErrEndOfStream
	}
	n = n2

	sbuf, serr := q.src.Produce(n)
	if serr != nil {
		return nil, serr
	}
	stepbuf, terr := q.step.Produce(sbuf.Len())
	if terr != nil {
		return nil, terr
	}
	L := sbuf.Len()
	if stepbuf.Len() < L {
		L = stepbuf.Len()
	}

	dtype := LUB(q.dtype, sbuf.Dtype)
	q.dtype = dtype
	out := NewBuffer(dtype, L)
	for i := 0; i < L; i++ {
		v := sbuf.At(i)
		s := stepbuf.At(i)
		re := quantizeComponent(real(v), real(s))
		im := quantizeComponent(imag(v), imag(s))
		out.Set(i, complex(re, im))
	}
	q.advance(L)
	return out, nil
}

func quantizeComponent(x, step float64) float64 {
	if step == 0 || math.IsInf(step, 0) || math.IsNaN(step) {
		return x
	}
	return math.Round(x/step) * step
}
