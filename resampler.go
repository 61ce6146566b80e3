package synth

import (
	"errors"
	"math"

	"zikichombo.org/sound/freq"
)

// ResampleMode selects a Resampler's interpolation algorithm (spec.md
// 4.11).
type ResampleMode int

const (
	ResampleZOH ResampleMode = iota
	ResampleLinear
	ResampleSinc
)

// sincHalfWidth is the number of upstream samples considered on each side of
// the interpolation point in ResampleSinc mode (a Lanczos-windowed sinc
// kernel).
const sincHalfWidth = 4

// Resampler converts src from its upstream rate to outRate (spec.md 4.11).
// The output clock is authoritative: Produce(n) returns exactly n samples
// until upstream end-of-stream is reached, at which point it drains
// whatever remains computable.
type Resampler struct {
	base
	src        Node
	ratio      float64 // upstream samples per output sample = inRate/outRate
	mode       ResampleMode
	hist       *historyRing
	startpoint float64 // fractional upstream index of the next output sample
	srcEnded   bool
	dtype      Dtype
	dtypeSet   bool
}

// NewResampler creates a Resampler pulling src (at its own upstream rate)
// and producing samples at outRate using mode.
func NewResampler(src Node, outRate freq.T, mode ResampleMode) *Resampler {
	inHz := float64(src.SampleRate() / freq.Hertz)
	outHz := float64(outRate / freq.Hertz)
	return &Resampler{
		base:  newBase(outRate),
		src:   src,
		ratio: inHz / outHz,
		mode:  mode,
		hist:  newHistoryRing(256),
	}
}

func (r *Resampler) Sources() map[string]any { return map[string]any{"source": r.src} }

func (r *Resampler) For(seconds float64) Node { r.setDuration(seconds); return r }

func (r *Resampler) Reset() {
	r.reset()
	r.hist = newHistoryRing(256)
	r.startpoint = 0
	r.srcEnded = false
	if rs, ok := r.src.(Resetter); ok {
		rs.Reset()
	}
}

func (r *Resampler) contextAhead() float64 {
	switch r.mode {
	case ResampleZOH:
		return 0
	case ResampleLinear:
		return 1
	case ResampleSinc:
		return sincHalfWidth + 1
	}
	return 1
}

// ensureUpstream pulls src until hist holds every sample up to and
// including floor(uptoIndex), or src ends.
func (r *Resampler) ensureUpstream(uptoIndex float64) error {
	if r.srcEnded {
		return nil
	}
	target := int64(math.Ceil(uptoIndex)) + 1
	for r.hist.write < target {
		pullN := int(target - r.hist.write)
		if pullN < 1 {
			pullN = 1
		}
		buf, err := r.src.Produce(pullN)
		L := buf.Len()
		if L > 0 {
			if !r.dtypeSet {
				r.dtype = buf.Dtype
				r.dtypeSet = true
			} else {
				r.dtype = LUB(r.dtype, buf.Dtype)
			}
			needCap := int(r.hist.write-r.hist.base) + L + 16
			r.hist.growTo(needCap, int64(sincHalfWidth)+int64(pullN)+16)
			for i := 0; i < L; i++ {
				r.hist.write1(buf.At(i))
			}
		}
		if err != nil {
			if errors.Is(err, ErrEndOfStream) {
				r.srcEnded = true
				return nil
			}
			return err
		}
		if L == 0 {
			r.srcEnded = true
			return nil
		}
	}
	return nil
}

func (r *Resampler) Produce(n int) (*Buffer, error) {
	n2, limited := r.remaining(n)
	if limited && n2 == 0 {
		return nil, ErrEndOfStream
	}
	n = n2

	ahead := r.contextAhead()
	lastIdx := r.startpoint + float64(n-1)*r.ratio + ahead
	if err := r.ensureUpstream(lastIdx); err != nil {
		return nil, err
	}

	lastAvail := r.hist.write - 1
	L := n
	if r.srcEnded {
		maxI := -1
		for i := 0; i < n; i++ {
			idx := r.startpoint + float64(i)*r.ratio
			if int64(math.Floor(idx)) > lastAvail {
				break
			}
			maxI = i
		}
		L = maxI + 1
	}
	if L <= 0 {
		return nil, ErrEndOfStream
	}

	dtype := r.dtype
	if !r.dtypeSet {
		dtype = Real64
	}
	out := NewBuffer(dtype, L)
	for i := 0; i < L; i++ {
		idx := r.startpoint + float64(i)*r.ratio
		out.Set(i, r.interpolate(idx))
	}
	r.startpoint += float64(L) * r.ratio
	r.advance(L)
	return out, nil
}

func (r *Resampler) interpolate(idx float64) complex128 {
	switch r.mode {
	case ResampleZOH:
		return r.hist.at(int64(math.Floor(idx)))
	case ResampleLinear:
		lo := int64(math.Floor(idx))
		frac := idx - float64(lo)
		v0 := r.hist.at(lo)
		v1 := r.hist.at(lo + 1)
		return v0 + complex(frac, 0)*(v1-v0)
	default:
		return r.sincInterpolate(idx)
	}
}

func (r *Resampler) sincInterpolate(idx float64) complex128 {
	lo := int64(math.Floor(idx))
	var acc complex128
	for k := lo - sincHalfWidth + 1; k <= lo+sincHalfWidth; k++ {
		d := idx - float64(k)
		w := lanczosKernel(d, sincHalfWidth)
		if w == 0 {
			continue
		}
		acc += complex(w, 0) * r.hist.at(k)
	}
	return acc
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

func lanczosKernel(x float64, a int) float64 {
	af := float64(a)
	if x <= -af || x >= af {
		return 0
	}
	return sinc(x) * sinc(x/af)
}
