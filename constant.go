package synth

import "zikichombo.org/sound/freq"

// Constant emits a scalar value, optionally smoothing retunes across a
// single block via a cubic smoothstep S-curve (spec.md 4.2) and optionally
// bounding its own output to a fixed duration.
type Constant struct {
	base
	value      complex128
	prev       complex128
	smoothing  bool
	transition bool
	dtype      Dtype
}

// NewConstant creates a Constant at the given sample rate and initial
// value. smoothing controls whether future calls to Set interpolate (true)
// or snap immediately (false).
func NewConstant(rate freq.T, value complex128, smoothing bool) *Constant {
	return &Constant{
		base:      newBase(rate),
		value:     value,
		prev:      value,
		smoothing: smoothing,
		dtype:     dtypeOf(value),
	}
}

func dtypeOf(v complex128) Dtype {
	if imag(v) != 0 {
		return Complex128
	}
	return Real64
}

// Set reassigns the constant's value. With smoothing enabled, the very next
// produced block interpolates from the prior value to v via smoothstep;
// every block after that is flat at v. With smoothing disabled, the next
// block is flat at v immediately. Dtype promotes to complex the moment
// either the old or the new value is complex, and never demotes back to
// real afterward.
func (c *Constant) Set(v complex128) {
	if c.smoothing {
		c.prev = c.value
		c.transition = true
	}
	c.value = v
	c.dtype = LUB(c.dtype, dtypeOf(v))
}

func (c *Constant) Sources() map[string]any { return nil }

// Constant returns the node's current value. Together with SetConstant,
// this satisfies GraphVoice's frequency-constant discovery heuristic
// (spec.md 4.14), which treats *Constant and *Mixer uniformly.
func (c *Constant) Constant() complex128 { return c.value }

// SetConstant is Set without smoothing semantics layered on top by a
// caller; it defers to Set so smoothing (if enabled) still applies.
func (c *Constant) SetConstant(v complex128) { c.Set(v) }

// For bounds this Constant's total output to seconds of audio.
func (c *Constant) For(seconds float64) Node {
	c.setDuration(seconds)
	return c
}

func (c *Constant) Reset() {
	c.reset()
	c.transition = false
	c.prev = c.value
}

func (c *Constant) Produce(n int) (*Buffer, error) {
	n, limited := c.remaining(n)
	if limited && n == 0 {
		return nil, ErrEndOfStream
	}
	out := NewBuffer(c.dtype, n)
	if c.transition && n > 0 {
		for i := 0; i < n; i++ {
			t := 1.0
			if n > 1 {
				t = float64(i) / float64(n-1)
			}
			s := smoothstep(t)
			v := c.prev + complex(s, 0)*(c.value-c.prev)
			out.Set(i, v)
		}
		c.transition = false
		c.prev = c.value
	} else {
		for i := 0; i < n; i++ {
			out.Set(i, c.value)
		}
	}
	c.advance(n)
	return out, nil
}

// smoothstep is the classic cubic Hermite S-curve 3t^2 - 2t^3, smooth
// (zero derivative) at both t=0 and t=1.
func smoothstep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}
