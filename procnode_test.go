package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zikichombo.org/sound/freq"
)

func sumProc(out, in *Buffer, extras map[string]*Buffer) error {
	extra := extras["extra"]
	for i := 0; i < out.Len(); i++ {
		out.Set(i, in.At(i)+extra.At(i))
	}
	return nil
}

func TestProcNodeRejectsMissingExtra(t *testing.T) {
	rate := 44100 * freq.Hertz
	primary := NewConstant(rate, complex(1, 0), false)
	p := NewProcNode(primary, []string{"extra"}, sumProc, Real64, true)

	_, err := p.Produce(4)
	assert.Error(t, err)
}

func TestProcNodeStopEarlyTruncatesToShortestSource(t *testing.T) {
	rate := 1 * freq.Hertz
	primary := NewConstant(rate, complex(1, 0), false).For(5)
	extra := NewConstant(rate, complex(2, 0), false).For(3)
	p := NewProcNode(primary, []string{"extra"}, sumProc, Real64, true)
	require.NoError(t, p.SetExtra("extra", extra))

	buf, err := p.Produce(5)
	require.NoError(t, err)
	assert.Equal(t, 3, buf.Len())
	for i := 0; i < buf.Len(); i++ {
		assert.Equal(t, complex(3, 0), buf.At(i))
	}
}

func TestProcNodeNonStopEarlyZeroPadsShortExtra(t *testing.T) {
	rate := 1 * freq.Hertz
	primary := NewConstant(rate, complex(1, 0), false).For(5)
	extra := NewConstant(rate, complex(2, 0), false).For(3)
	p := NewProcNode(primary, []string{"extra"}, sumProc, Real64, false)
	require.NoError(t, p.SetExtra("extra", extra))

	buf, err := p.Produce(5)
	require.NoError(t, err)
	require.Equal(t, 5, buf.Len())
	for i := 0; i < 3; i++ {
		assert.Equal(t, complex(3, 0), buf.At(i))
	}
	for i := 3; i < 5; i++ {
		assert.Equal(t, complex(1, 0), buf.At(i))
	}
}
