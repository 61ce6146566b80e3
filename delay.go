package synth

import (
	"errors"
	"math"
)

// Delay models y[n] = x[n - D(n)] for a possibly fractional, possibly
// time-varying delay D (spec.md 4.9). D is itself a Node (a Constant for a
// fixed delay, or any other source for per-sample modulation).
type Delay struct {
	base
	src          Node
	delay        Node
	maxDelay     float64 // samples
	hist         *historyRing
	dtype        Dtype
	dtypeSet     bool
	smoother     *LinearFollower
	onePole      *OnePole
}

// NewDelay creates a Delay over src with delay source delaySrc (typically a
// Constant) and maxDelaySamples as the largest delay that will ever be
// requested, used to size the history buffer.
func NewDelay(src, delaySrc Node, maxDelaySamples float64) *Delay {
	cap0 := int(math.Ceil(maxDelaySamples)) + 256
	return &Delay{
		base:     newBase(src.SampleRate()),
		src:      src,
		delay:    delaySrc,
		maxDelay: maxDelaySamples,
		hist:     newHistoryRing(cap0),
	}
}

// SetSmoothing arms an optional rate-limiter + one-pole low-pass on the
// delay-time control itself (spec.md 4.9's "optional output smoothing
// filter on the delay-time control", see §4.10).
func (d *Delay) SetSmoothing(maxRise, maxFall, cutoffHz float64) {
	d.smoother = NewLinearFollower(d.rate, maxRise, maxFall)
	d.onePole = NewOnePole(d.rate, cutoffHz)
}

func (d *Delay) Sources() map[string]any {
	return map[string]any{"source": d.src, "delay": d.delay}
}

func (d *Delay) For(seconds float64) Node { d.setDuration(seconds); return d }

func (d *Delay) Reset() {
	d.reset()
	d.hist = newHistoryRing(int(math.Ceil(d.maxDelay)) + 256)
	if r, ok := d.src.(Resetter); ok {
		r.Reset()
	}
	if r, ok := d.delay.(Resetter); ok {
		r.Reset()
	}
	if d.smoother != nil {
		d.smoother.Reset()
		d.onePole.Reset()
	}
}

func (d *Delay) Produce(n int) (*Buffer, error) {
	n2, limited := d.remaining(n)
	if limited && n2 == 0 {
		return nil, ErrEndOfStream
	}
	n = n2

	needCap := int(math.Ceil(d.maxDelay)) + 2*n
	d.hist.growTo(needCap, int64(math.Ceil(d.maxDelay))+int64(n))

	inBuf, inErr := d.src.Produce(n)
	if inErr != nil && !errors.Is(inErr, ErrEndOfStream) {
		return nil, inErr
	}
	L := inBuf.Len()
	if L == 0 && errors.Is(inErr, ErrEndOfStream) {
		return nil, ErrEndOfStream
	}

	delayBuf, dErr := d.delay.Produce(L)
	if dErr != nil {
		return nil, dErr
	}

	if !d.dtypeSet {
		d.dtype = inBuf.Dtype
		d.dtypeSet = true
	} else {
		d.dtype = LUB(d.dtype, inBuf.Dtype)
	}

	start := d.hist.write
	out := NewBuffer(d.dtype, L)
	for i := 0; i < L; i++ {
		d.hist.write1(inBuf.At(i))
		absPos := start + int64(i)

		var delayVal float64
		if i < delayBuf.Len() {
			delayVal = real(delayBuf.At(i))
		} else if delayBuf.Len() > 0 {
			delayVal = real(delayBuf.At(delayBuf.Len() - 1))
		}
		if d.smoother != nil {
			delayVal = d.smoother.Step(delayVal)
			delayVal = d.onePole.Step(delayVal)
		}
		out.Set(i, d.sampleAt(absPos, delayVal))
	}
	d.advance(L)
	return out, nil
}

// sampleAt returns the linearly-interpolated historical sample delayVal
// samples behind absPos, clamping delayVal to [0, capacity-1] per spec.md
// 4.9.
func (d *Delay) sampleAt(absPos int64, delayVal float64) complex128 {
	if delayVal < 0 {
		delayVal = 0
	}
	maxD := float64(d.hist.capacity() - 1)
	if delayVal > maxD {
		delayVal = maxD
	}
	readPos := float64(absPos) - delayVal
	lo := int64(math.Floor(readPos))
	frac := readPos - float64(lo)
	v0 := d.hist.at(lo)
	v1 := d.hist.at(lo + 1)
	return v0 + complex(frac, 0)*(v1-v0)
}
