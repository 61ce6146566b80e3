package synth

// truncateTo returns b shortened to L samples (L <= b.Len()).
func truncateTo(b *Buffer, L int) *Buffer {
	if b == nil {
		return NewBuffer(Real64, 0)
	}
	if b.Len() == L {
		return b
	}
	return b.Slice(0, L)
}

// zeroPadTo returns b extended to L samples with zero-valued padding,
// promoted to dt first if necessary. Used by combinators' stop_early=false
// policy for additive combination (Mixer).
func zeroPadTo(b *Buffer, dt Dtype, L int) *Buffer {
	if b == nil {
		b = NewBuffer(dt, 0)
	}
	if b.Dtype != dt {
		b = b.Promote(dt)
	}
	if b.Len() >= L {
		return b
	}
	out := NewBuffer(dt, L)
	for i := 0; i < b.Len(); i++ {
		out.Set(i, b.At(i))
	}
	return out
}

// onePadTo is zeroPadTo's multiplicative analogue: the padding value is 1
// (the multiplicative identity) rather than 0, so padded samples don't
// zero out a Multiplier's running product.
func onePadTo(b *Buffer, dt Dtype, L int) *Buffer {
	if b == nil {
		b = NewBuffer(dt, 0)
	}
	if b.Dtype != dt {
		b = b.Promote(dt)
	}
	if b.Len() >= L {
		return b
	}
	out := NewBuffer(dt, L)
	for i := 0; i < L; i++ {
		if i < b.Len() {
			out.Set(i, b.At(i))
		} else {
			out.Set(i, 1)
		}
	}
	return out
}

// minLen returns the smallest Len() among bufs, counting a nil as zero
// length.
func minLen(bufs ...*Buffer) int {
	m := -1
	for _, b := range bufs {
		l := b.Len()
		if m == -1 || l < m {
			m = l
		}
	}
	if m == -1 {
		return 0
	}
	return m
}

// maxLen returns the largest Len() among bufs.
func maxLen(bufs ...*Buffer) int {
	m := 0
	for _, b := range bufs {
		if l := b.Len(); l > m {
			m = l
		}
	}
	return m
}
