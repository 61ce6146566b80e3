package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zikichombo.org/sound/freq"
)

// rampSource emits successive integers 0,1,2,... one per sample, for
// deterministic delay-line tests.
type rampSource struct {
	base
	next float64
}

func newRampSource(rate freq.T) *rampSource { return &rampSource{base: newBase(rate)} }

func (r *rampSource) Sources() map[string]any { return nil }
func (r *rampSource) For(seconds float64) Node { r.setDuration(seconds); return r }
func (r *rampSource) Reset()                   { r.reset(); r.next = 0 }

func (r *rampSource) Produce(n int) (*Buffer, error) {
	n2, limited := r.remaining(n)
	if limited && n2 == 0 {
		return nil, ErrEndOfStream
	}
	n = n2
	out := NewBuffer(Real64, n)
	for i := 0; i < n; i++ {
		out.Set(i, complex(r.next, 0))
		r.next++
	}
	r.advance(n)
	return out, nil
}

func TestDelayZeroIsIdentity(t *testing.T) {
	rate := 44100 * freq.Hertz
	src := newRampSource(rate)
	delaySrc := NewConstant(rate, complex(0, 0), false)
	d := NewDelay(src, delaySrc, 10)

	buf, err := d.Produce(5)
	require.NoError(t, err)
	for i := 0; i < buf.Len(); i++ {
		assert.InDelta(t, float64(i), real(buf.At(i)), 1e-9)
	}
}

func TestDelayIntegerShift(t *testing.T) {
	rate := 44100 * freq.Hertz
	src := newRampSource(rate)
	delaySrc := NewConstant(rate, complex(3, 0), false)
	d := NewDelay(src, delaySrc, 10)

	buf, err := d.Produce(8)
	require.NoError(t, err)
	for i := 0; i < buf.Len(); i++ {
		want := float64(i) - 3
		if want < 0 {
			want = 0 // history before start-of-stream reads as zero
		}
		assert.InDelta(t, want, real(buf.At(i)), 1e-9)
	}
}

func TestDelayFractionalInterpolates(t *testing.T) {
	rate := 44100 * freq.Hertz
	src := newRampSource(rate)
	delaySrc := NewConstant(rate, complex(1.5, 0), false)
	d := NewDelay(src, delaySrc, 10)

	// prime the history so interpolation reads between two known ramp samples
	_, err := d.Produce(5)
	require.NoError(t, err)
	buf, err := d.Produce(1)
	require.NoError(t, err)
	// at absPos=5, reading 1.5 samples back averages samples 3 and 4: 3.5
	assert.InDelta(t, 3.5, real(buf.At(0)), 1e-9)
}
