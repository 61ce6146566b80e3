package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferAtSetRoundTrip(t *testing.T) {
	for _, dt := range []Dtype{Real32, Real64, Complex64, Complex128} {
		b := NewBuffer(dt, 4)
		require.Equal(t, 4, b.Len())
		var v complex128 = complex(1.5, 0)
		if dt.IsComplex() {
			v = complex(1.5, -2.5)
		}
		b.Set(2, v)
		assert.InDelta(t, real(v), real(b.At(2)), 1e-6)
		assert.InDelta(t, imag(v), imag(b.At(2)), 1e-6)
	}
}

func TestBufferSetRealPanicsOnComplex(t *testing.T) {
	b := NewBuffer(Real64, 1)
	assert.Panics(t, func() { b.Set(0, complex(1, 1)) })
}

func TestBufferPromoteWidensValues(t *testing.T) {
	b := NewBuffer(Real64, 3)
	b.Set(0, complex(1, 0))
	b.Set(1, complex(2, 0))
	b.Set(2, complex(3, 0))

	p := b.Promote(Complex128)
	require.Equal(t, Complex128, p.Dtype)
	for i := 0; i < 3; i++ {
		assert.Equal(t, b.At(i), p.At(i))
	}
}

func TestBufferPromoteNoOpSameDtype(t *testing.T) {
	b := NewBuffer(Real64, 2)
	assert.Same(t, b, b.Promote(Real64))
}

func TestBufferSliceSharesStorage(t *testing.T) {
	b := NewBuffer(Real64, 5)
	for i := 0; i < 5; i++ {
		b.Set(i, complex(float64(i), 0))
	}
	s := b.Slice(1, 3)
	require.Equal(t, 2, s.Len())
	s.Set(0, complex(99, 0))
	assert.Equal(t, complex(99, 0), b.At(1), "Slice must alias the parent buffer's storage")
}

func TestCopyBufferIsIndependent(t *testing.T) {
	b := NewBuffer(Real64, 3)
	b.Set(0, complex(7, 0))
	c := CopyBuffer(b)
	c.Set(0, complex(-1, 0))
	assert.Equal(t, complex(7, 0), b.At(0))
	assert.Equal(t, complex(-1, 0), c.At(0))
}

func TestCopyBufferNil(t *testing.T) {
	assert.Nil(t, CopyBuffer(nil))
}
