package synth

import "testing"

import "github.com/stretchr/testify/assert"

func TestLUBMonotonic(t *testing.T) {
	assert.Equal(t, Real64, LUB(Real32, Real64))
	assert.Equal(t, Complex64, LUB(Real32, Complex64))
	assert.Equal(t, Complex128, LUB(Real64, Complex64))
	assert.Equal(t, Complex128, LUB(Complex64, Real64))
	assert.Equal(t, Complex128, LUB(Complex128, Real32))
}

func TestLUBCommutative(t *testing.T) {
	pairs := []Dtype{Real32, Real64, Complex64, Complex128}
	for _, a := range pairs {
		for _, b := range pairs {
			assert.Equal(t, LUB(a, b), LUB(b, a), "LUB(%v,%v) != LUB(%v,%v)", a, b, b, a)
		}
	}
}

func TestLUBAllEmpty(t *testing.T) {
	assert.Equal(t, Real64, LUBAll())
}

func TestLUBAllReduces(t *testing.T) {
	assert.Equal(t, Complex128, LUBAll(Real32, Real64, Complex64))
}

func TestDtypeIsComplex(t *testing.T) {
	assert.False(t, Real32.IsComplex())
	assert.False(t, Real64.IsComplex())
	assert.True(t, Complex64.IsComplex())
	assert.True(t, Complex128.IsComplex())
}
