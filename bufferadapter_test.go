package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zikichombo.org/sound/freq"
)

// recordingRampSource emits successive integers starting at 0 and records
// the size of every Produce call it receives, so tests can confirm
// BufferAdapter pulls it in fixed blocks regardless of the downstream
// request size.
type recordingRampSource struct {
	base
	calls []int
	next  float64
}

func newRecordingRampSource(rate freq.T) *recordingRampSource {
	return &recordingRampSource{base: newBase(rate)}
}

func (s *recordingRampSource) Sources() map[string]any { return nil }

func (s *recordingRampSource) Produce(n int) (*Buffer, error) {
	s.calls = append(s.calls, n)
	out := NewBuffer(Real64, n)
	for i := 0; i < n; i++ {
		out.Set(i, complex(s.next, 0))
		s.next++
	}
	return out, nil
}

func TestBufferAdapterPullsUpstreamInFixedBlocks(t *testing.T) {
	rate := 44100 * freq.Hertz
	src := newRecordingRampSource(rate)
	a := NewBufferAdapter(src, 5)

	buf1, err := a.Produce(3)
	require.NoError(t, err)
	assert.Equal(t, []complex128{0, 1, 2}, []complex128{buf1.At(0), buf1.At(1), buf1.At(2)})

	buf2, err := a.Produce(3)
	require.NoError(t, err)
	assert.Equal(t, []complex128{3, 4, 5}, []complex128{buf2.At(0), buf2.At(1), buf2.At(2)})

	assert.Equal(t, []int{5, 5}, src.calls)
}

func TestBufferAdapterReportsEndOfStreamAfterShortRead(t *testing.T) {
	rate := 1 * freq.Hertz
	src := NewConstant(rate, complex(1, 0), false).For(2)
	a := NewBufferAdapter(src, 5)

	buf, err := a.Produce(5)
	require.NoError(t, err)
	assert.Equal(t, 2, buf.Len())

	_, err = a.Produce(5)
	assert.ErrorIs(t, err, ErrEndOfStream)
}
