package synth

import (
	"errors"
	"math"

	"zikichombo.org/sound/freq"
)

// MultitapDelay shares one audio source and one write pointer across K
// taps, each with its own (possibly dynamic) delay source and gain (spec.md
// 4.9). The shared buffer is pulled once per frame; if a tap is produced
// from again before every other tap has been served, the served-set is
// cleared and a fresh source pull occurs for the new frame — the same
// pattern MatrixMixer uses for its shared input cache.
type MultitapDelay struct {
	rate     freq.T
	src      Node
	maxDelay float64 // largest delay in samples across all taps, sizes the history window
	hist     *historyRing
	taps     []*DelayTap
	served   map[int]bool
	ended    bool
	dtype    Dtype
	dtypeSet bool

	frameStart int64
	frameLen   int
}

// NewMultitapDelay creates a MultitapDelay over src with the given
// maxDelaySamples sizing the shared history window.
func NewMultitapDelay(src Node, maxDelaySamples float64) *MultitapDelay {
	cap0 := int(math.Ceil(maxDelaySamples)) + 256
	return &MultitapDelay{
		rate:     src.SampleRate(),
		src:      src,
		maxDelay: maxDelaySamples,
		hist:     newHistoryRing(cap0),
		served:   make(map[int]bool),
	}
}

// AddTap registers a new tap reading delaySrc samples behind the shared
// input, scaled by gain.
func (md *MultitapDelay) AddTap(delaySrc Node, gain complex128) *DelayTap {
	t := &DelayTap{base: newBase(md.rate), md: md, idx: len(md.taps), delay: delaySrc, gain: gain}
	md.taps = append(md.taps, t)
	return t
}

// DelayTap is one read head into a MultitapDelay's shared history.
type DelayTap struct {
	base
	md    *MultitapDelay
	idx   int
	delay Node
	gain  complex128
}

func (t *DelayTap) Sources() map[string]any {
	return map[string]any{"source": t.md.src, "delay": t.delay}
}

func (t *DelayTap) For(seconds float64) Node { t.setDuration(seconds); return t }

func (t *DelayTap) Reset() {
	t.reset()
	if t.idx == 0 {
		t.md.hist = newHistoryRing(int(math.Ceil(t.md.maxDelay)) + 256)
		t.md.ended = false
		for k := range t.md.served {
			delete(t.md.served, k)
		}
		if r, ok := t.md.src.(Resetter); ok {
			r.Reset()
		}
	}
	if r, ok := t.delay.(Resetter); ok {
		r.Reset()
	}
}

func (t *DelayTap) Produce(n int) (*Buffer, error) {
	n2, limited := t.remaining(n)
	if limited && n2 == 0 {
		return nil, ErrEndOfStream
	}
	n = n2
	md := t.md
	if md.ended {
		return nil, ErrEndOfStream
	}
	if md.served[t.idx] {
		for k := range md.served {
			delete(md.served, k)
		}
	}
	if len(md.served) == 0 {
		if err := md.pullFrame(n); err != nil {
			if errors.Is(err, ErrEndOfStream) {
				md.ended = true
			}
			return nil, err
		}
	}
	md.served[t.idx] = true

	delayBuf, dErr := t.delay.Produce(md.frameLen)
	if dErr != nil {
		return nil, dErr
	}

	out := NewBuffer(md.dtype, md.frameLen)
	for i := 0; i < md.frameLen; i++ {
		absPos := md.frameStart + int64(i)
		var dv float64
		if i < delayBuf.Len() {
			dv = real(delayBuf.At(i))
		} else if delayBuf.Len() > 0 {
			dv = real(delayBuf.At(delayBuf.Len() - 1))
		}
		v := md.sampleAt(absPos, dv)
		out.Set(i, t.gain*v)
	}
	t.advance(md.frameLen)
	return out, nil
}

// pullFrame pulls one shared frame from src, recording frameStart/frameLen
// so every tap can address the same frame's history window.
func (md *MultitapDelay) pullFrame(n int) error {
	needCap := int(math.Ceil(md.maxDelay)) + 2*n
	md.hist.growTo(needCap, int64(math.Ceil(md.maxDelay))+int64(n))

	buf, err := md.src.Produce(n)
	L := buf.Len()
	if L == 0 {
		return ErrEndOfStream
	}
	if !md.dtypeSet {
		md.dtype = buf.Dtype
		md.dtypeSet = true
	} else {
		md.dtype = LUB(md.dtype, buf.Dtype)
	}
	md.frameStart = md.hist.write
	md.frameLen = L
	for i := 0; i < L; i++ {
		md.hist.write1(buf.At(i))
	}
	if err != nil && !errors.Is(err, ErrEndOfStream) {
		return err
	}
	return nil
}

func (md *MultitapDelay) sampleAt(absPos int64, delayVal float64) complex128 {
	if delayVal < 0 {
		delayVal = 0
	}
	maxD := float64(md.hist.capacity() - 1)
	if delayVal > maxD {
		delayVal = maxD
	}
	readPos := float64(absPos) - delayVal
	lo := int64(math.Floor(readPos))
	frac := readPos - float64(lo)
	v0 := md.hist.at(lo)
	v1 := md.hist.at(lo + 1)
	return v0 + complex(frac, 0)*(v1-v0)
}
