package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zikichombo.org/sound/freq"
)

func TestNodeSequenceAdvancesWhenSourceEnds(t *testing.T) {
	rate := 1 * freq.Hertz
	a := NewConstant(rate, complex(1, 0), false).For(2)
	b := NewConstant(rate, complex(2, 0), false).For(2)
	seq := NewNodeSequence(rate, a, b)

	var got []complex128
	for i := 0; i < 4; i++ {
		buf, err := seq.Produce(1)
		require.NoError(t, err)
		got = append(got, buf.At(0))
	}
	assert.Equal(t, []complex128{1, 1, 2, 2}, got)

	_, err := seq.Produce(1)
	assert.ErrorIs(t, err, ErrEndOfStream)
}

func TestNodeSequenceAppendRestartsAfterEnd(t *testing.T) {
	rate := 1 * freq.Hertz
	a := NewConstant(rate, complex(1, 0), false).For(1)
	seq := NewNodeSequence(rate, a)

	_, err := seq.Produce(1)
	require.NoError(t, err)
	_, err = seq.Produce(1)
	assert.ErrorIs(t, err, ErrEndOfStream)

	b := NewConstant(rate, complex(9, 0), false).For(1)
	require.NoError(t, seq.Append(b))

	buf, err := seq.Produce(1)
	require.NoError(t, err)
	assert.Equal(t, complex(9, 0), buf.At(0))
}

func TestNodeSequenceRejectsRateMismatch(t *testing.T) {
	seq := NewNodeSequence(1 * freq.Hertz)
	mismatched := NewConstant(2*freq.Hertz, complex(1, 0), false)
	err := seq.Append(mismatched)
	assert.Error(t, err)
}
