package synth

// Buffer is an ordered run of L samples of a single Dtype. It is logically
// immutable from a consumer's point of view: a node may return the same
// backing storage across successive Produce calls, so a caller that needs to
// retain a frame past its next call to Produce on that node must copy it.
//
// Exactly one of the four slices is populated, selected by Dtype; the others
// are nil. L is len of the populated slice.
type Buffer struct {
	Dtype Dtype
	R32   []float32
	R64   []float64
	C64   []complex64
	C128  []complex128
}

// Len returns the number of samples held, independent of Dtype.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	switch b.Dtype {
	case Real32:
		return len(b.R32)
	case Real64:
		return len(b.R64)
	case Complex64:
		return len(b.C64)
	case Complex128:
		return len(b.C128)
	default:
		return 0
	}
}

// NewBuffer allocates a zeroed Buffer of the given dtype and length.
func NewBuffer(dt Dtype, n int) *Buffer {
	b := &Buffer{Dtype: dt}
	switch dt {
	case Real32:
		b.R32 = make([]float32, n)
	case Real64:
		b.R64 = make([]float64, n)
	case Complex64:
		b.C64 = make([]complex64, n)
	case Complex128:
		b.C128 = make([]complex128, n)
	}
	return b
}

// At returns sample i as complex128, regardless of the buffer's underlying
// dtype, so combinators can do dtype-agnostic arithmetic before narrowing the
// result back down at the point of promotion.
func (b *Buffer) At(i int) complex128 {
	switch b.Dtype {
	case Real32:
		return complex(float64(b.R32[i]), 0)
	case Real64:
		return complex(b.R64[i], 0)
	case Complex64:
		return complex128(b.C64[i])
	case Complex128:
		return b.C128[i]
	default:
		return 0
	}
}

// Set assigns sample i from a complex128, narrowing to the buffer's dtype.
// Setting a non-zero imaginary part on a real buffer is a programmer error
// and panics: promotion must happen before Set is called, per the "real
// never silently returns complex" invariant.
func (b *Buffer) Set(i int, v complex128) {
	switch b.Dtype {
	case Real32:
		if imag(v) != 0 {
			panic("synth: complex value written into real32 buffer")
		}
		b.R32[i] = float32(real(v))
	case Real64:
		if imag(v) != 0 {
			panic("synth: complex value written into real64 buffer")
		}
		b.R64[i] = real(v)
	case Complex64:
		b.C64[i] = complex64(v)
	case Complex128:
		b.C128[i] = v
	}
}

// Slice returns a Buffer sharing storage with b, covering [lo,hi).
func (b *Buffer) Slice(lo, hi int) *Buffer {
	r := &Buffer{Dtype: b.Dtype}
	switch b.Dtype {
	case Real32:
		r.R32 = b.R32[lo:hi]
	case Real64:
		r.R64 = b.R64[lo:hi]
	case Complex64:
		r.C64 = b.C64[lo:hi]
	case Complex128:
		r.C128 = b.C128[lo:hi]
	}
	return r
}

// Promote returns a Buffer holding the same samples as b but widened to dt.
// Promote panics if dt ranks lower than b.Dtype; callers are expected to
// compute dt via LUB first.
func (b *Buffer) Promote(dt Dtype) *Buffer {
	if dt == b.Dtype {
		return b
	}
	if dt.rank() < b.Dtype.rank() {
		panic("synth: Promote to a lower-ranked dtype")
	}
	n := b.Len()
	out := NewBuffer(dt, n)
	for i := 0; i < n; i++ {
		out.Set(i, b.At(i))
	}
	return out
}

// CopyBuffer returns an independent copy of b, for callers that must retain
// a frame past the producer's next Produce call.
func CopyBuffer(b *Buffer) *Buffer {
	if b == nil {
		return nil
	}
	out := &Buffer{Dtype: b.Dtype}
	switch b.Dtype {
	case Real32:
		out.R32 = append([]float32(nil), b.R32...)
	case Real64:
		out.R64 = append([]float64(nil), b.R64...)
	case Complex64:
		out.C64 = append([]complex64(nil), b.C64...)
	case Complex128:
		out.C128 = append([]complex128(nil), b.C128...)
	}
	return out
}
