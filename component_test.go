package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zikichombo.org/sound/freq"
)

func TestComponentExtractorRealInputSimplifiedRules(t *testing.T) {
	rate := 44100 * freq.Hertz

	pos := NewConstant(rate, complex(3, 0), false)
	neg := NewConstant(rate, complex(-3, 0), false)

	cases := []struct {
		mode ComponentMode
		src  Node
		want float64
	}{
		{ComponentReal, pos, 3},
		{ComponentImag, pos, 0},
		{ComponentAbs, neg, 3},
		{ComponentArg, pos, 0},
		{ComponentArg, neg, math.Pi},
	}
	for _, c := range cases {
		e := NewComponentExtractor(c.src, c.mode)
		buf, err := e.Produce(1)
		require.NoError(t, err)
		assert.InDelta(t, c.want, real(buf.At(0)), 1e-9)
	}
}

func TestComponentExtractorComplexInputFullArithmetic(t *testing.T) {
	rate := 44100 * freq.Hertz
	src := NewConstant(rate, complex(3, 4), false)

	abs := NewComponentExtractor(src, ComponentAbs)
	buf, err := abs.Produce(1)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, real(buf.At(0)), 1e-9)

	src2 := NewConstant(rate, complex(0, 1), false)
	arg := NewComponentExtractor(src2, ComponentArg)
	buf2, err := arg.Produce(1)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, real(buf2.At(0)), 1e-9)
}
