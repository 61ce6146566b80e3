package synth

import (
	"math"
	"math/cmplx"
)

// ComponentMode selects which part of a (possibly complex) sample a
// ComponentExtractor emits (spec.md 4.8).
type ComponentMode int

const (
	ComponentReal ComponentMode = iota
	ComponentImag
	ComponentAbs
	ComponentArg
)

// ComponentExtractor pulls from src and emits one real-valued component per
// sample. Real inputs use the simplified real-valued rules from spec.md 4.8
// (imag is identically zero, arg is 0/π by sign bit) rather than routing
// through complex arithmetic.
type ComponentExtractor struct {
	base
	src  Node
	mode ComponentMode
}

func NewComponentExtractor(src Node, mode ComponentMode) *ComponentExtractor {
	return &ComponentExtractor{base: newBase(src.SampleRate()), src: src, mode: mode}
}

func (c *ComponentExtractor) Sources() map[string]any { return map[string]any{"source": c.src} }

func (c *ComponentExtractor) For(seconds float64) Node { c.setDuration(seconds); return c }

func (c *ComponentExtractor) Reset() {
	c.reset()
	if r, ok := c.src.(Resetter); ok {
		r.Reset()
	}
}

func (c *ComponentExtractor) Produce(n int) (*Buffer, error) {
	n2, limited := c.remaining(n)
	if limited && n2 == 0 {
		return nil, ErrEndOfStream
	}
	n = n2
	buf, err := c.src.Produce(n)
	if err != nil {
		return nil, err
	}
	L := buf.Len()
	out := NewBuffer(Real64, L)
	complexIn := buf.Dtype.IsComplex()
	for i := 0; i < L; i++ {
		v := buf.At(i)
		var r float64
		switch c.mode {
		case ComponentReal:
			r = real(v)
		case ComponentImag:
			if complexIn {
				r = imag(v)
			} else {
				r = 0
			}
		case ComponentAbs:
			if complexIn {
				r = cmplx.Abs(v)
			} else if real(v) < 0 {
				r = -real(v)
			} else {
				r = real(v)
			}
		case ComponentArg:
			if complexIn {
				r = cmplx.Phase(v)
			} else if real(v) < 0 {
				r = math.Pi
			} else {
				r = 0
			}
		}
		out.Set(i, complex(r, 0))
	}
	c.advance(L)
	return out, nil
}
