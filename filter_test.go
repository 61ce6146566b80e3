package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zikichombo.org/sound/freq"
)

// gainKernel is a trivial FilterKernel that scales its input by a constant,
// used to exercise SampleWrapper/FilterChain/FilterSum without depending on
// a real filter design.
type gainKernel struct {
	gain complex128
	rate freq.T
}

func (k *gainKernel) Process(in []complex128) []complex128 {
	out := make([]complex128, len(in))
	for i, v := range in {
		out[i] = v * k.gain
	}
	return out
}
func (k *gainKernel) Reset(steadyValue complex128)    {}
func (k *gainKernel) Response(omega float64) complex128 { return k.gain }
func (k *gainKernel) SampleRate() freq.T              { return k.rate }
func (k *gainKernel) SetRate(r freq.T) error           { k.rate = r; return nil }

type dynGainKernel struct {
	gainKernel
}

func (k *dynGainKernel) DynamicProcess(in []complex128, params ...[]float64) []complex128 {
	out := make([]complex128, len(in))
	for i, v := range in {
		g := 1.0
		if len(params) > 0 && i < len(params[0]) {
			g = params[0][i]
		}
		out[i] = v * complex(g, 0)
	}
	return out
}

func TestSampleWrapperAppliesKernel(t *testing.T) {
	rate := 44100 * freq.Hertz
	src := NewConstant(rate, complex(2, 0), false)
	k := &gainKernel{gain: complex(3, 0), rate: rate}
	w, err := NewSampleWrapper(src, k)
	require.NoError(t, err)

	buf, err := w.Produce(4)
	require.NoError(t, err)
	for i := 0; i < buf.Len(); i++ {
		assert.Equal(t, complex(6, 0), buf.At(i))
	}
}

func TestSampleWrapperDynamicProcessUsesParamStream(t *testing.T) {
	rate := 44100 * freq.Hertz
	src := NewConstant(rate, complex(1, 0), false)
	param := NewConstant(rate, complex(5, 0), false)
	k := &dynGainKernel{gainKernel: gainKernel{gain: complex(1, 0), rate: rate}}
	w, err := NewSampleWrapper(src, k, param)
	require.NoError(t, err)

	buf, err := w.Produce(3)
	require.NoError(t, err)
	for i := 0; i < buf.Len(); i++ {
		assert.Equal(t, complex(5, 0), buf.At(i))
	}
}

func TestFilterChainComposesInOrder(t *testing.T) {
	rate := 44100 * freq.Hertz
	k1 := &gainKernel{gain: complex(2, 0), rate: rate}
	k2 := &gainKernel{gain: complex(3, 0), rate: rate}
	chain, err := NewFilterChain(k1, k2)
	require.NoError(t, err)

	out := chain.Process([]complex128{complex(1, 0)})
	assert.Equal(t, complex(6, 0), out[0])
	assert.Equal(t, complex(6, 0), chain.Response(0))
}

func TestFilterChainRejectsDuplicateStage(t *testing.T) {
	rate := 44100 * freq.Hertz
	k1 := &gainKernel{gain: complex(2, 0), rate: rate}
	_, err := NewFilterChain(k1, k1)
	assert.Error(t, err)
}

func TestFilterSumAddsKernelOutputs(t *testing.T) {
	rate := 44100 * freq.Hertz
	k1 := &gainKernel{gain: complex(2, 0), rate: rate}
	k2 := &gainKernel{gain: complex(3, 0), rate: rate}
	sum, err := NewFilterSum(k1, k2)
	require.NoError(t, err)

	out := sum.Process([]complex128{complex(1, 0)})
	assert.Equal(t, complex(5, 0), out[0])
	assert.Equal(t, complex(5, 0), sum.Response(0))
}

func TestFilterSumRejectsEmptyKernelList(t *testing.T) {
	_, err := NewFilterSum()
	assert.Error(t, err)
}
