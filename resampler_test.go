package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zikichombo.org/sound/freq"
)

func TestResamplerLinearUpsampleMatchesRampExactly(t *testing.T) {
	src := newRampSource(100 * freq.Hertz)
	r := NewResampler(src, 400*freq.Hertz, ResampleLinear)

	buf, err := r.Produce(6)
	require.NoError(t, err)
	want := []float64{0, 0.25, 0.5, 0.75, 1, 1.25}
	for i, w := range want {
		assert.InDelta(t, w, real(buf.At(i)), 1e-9)
	}
}

func TestResamplerChunkSizeIndependent(t *testing.T) {
	srcA := newRampSource(100 * freq.Hertz)
	rA := NewResampler(srcA, 400*freq.Hertz, ResampleLinear)
	wholeBuf, err := rA.Produce(8)
	require.NoError(t, err)

	srcB := newRampSource(100 * freq.Hertz)
	rB := NewResampler(srcB, 400*freq.Hertz, ResampleLinear)
	var chunked []complex128
	for _, n := range []int{3, 1, 4} {
		buf, err := rB.Produce(n)
		require.NoError(t, err)
		for i := 0; i < buf.Len(); i++ {
			chunked = append(chunked, buf.At(i))
		}
	}

	require.Equal(t, wholeBuf.Len(), len(chunked))
	for i := 0; i < wholeBuf.Len(); i++ {
		assert.InDelta(t, real(wholeBuf.At(i)), real(chunked[i]), 1e-9)
	}
}

func TestResamplerZOHHoldsLastSample(t *testing.T) {
	src := newRampSource(100 * freq.Hertz)
	r := NewResampler(src, 200*freq.Hertz, ResampleZOH) // ratio 0.5
	buf, err := r.Produce(4)
	require.NoError(t, err)
	want := []float64{0, 0, 1, 1}
	for i, w := range want {
		assert.InDelta(t, w, real(buf.At(i)), 1e-9)
	}
}
