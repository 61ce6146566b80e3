package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zikichombo.org/sound/freq"
)

func TestAllpassStageFirstStepFromSilence(t *testing.T) {
	a := newAllpassStage(1, complex(0.5, 0))
	y := a.step(complex(1, 0))
	assert.Equal(t, complex(-0.5, 0), y)
}

func TestReverbFirstSampleIsSilentBeforeFeedbackArrives(t *testing.T) {
	rate := 44100 * freq.Hertz
	src := NewConstant(rate, complex(1, 0), false)
	r := NewReverb(src, nil, 0, []int{1, 1}, 0.5, 0, 0.7)

	buf, err := r.Produce(1)
	require.NoError(t, err)
	assert.Equal(t, complex(0, 0), buf.At(0))
}

func TestReverbSecondSampleCarriesDiffusedInput(t *testing.T) {
	rate := 44100 * freq.Hertz
	src := NewConstant(rate, complex(1, 0), false)
	r := NewReverb(src, nil, 0, []int{1, 1}, 0.5, 0, 0.7)

	buf, err := r.Produce(2)
	require.NoError(t, err)
	assert.InDelta(t, 0, real(buf.At(0)), 1e-9)
	assert.InDelta(t, 0.7, real(buf.At(1)), 1e-9)
}

func TestReverbResetRestoresInitialSilence(t *testing.T) {
	rate := 44100 * freq.Hertz
	src := NewConstant(rate, complex(1, 0), false)
	r := NewReverb(src, nil, 0, []int{1, 1}, 0.5, 0, 0.7)

	_, err := r.Produce(2)
	require.NoError(t, err)
	r.Reset()

	buf, err := r.Produce(1)
	require.NoError(t, err)
	assert.Equal(t, complex(0, 0), buf.At(0))
}
