package synth

import (
	"math"

	"zikichombo.org/sound/freq"
)

// Waveform is a periodic function of phase in [0,1), evaluated once per
// sample by Phasor.
type Waveform func(phase float64) float64

func SineWave(phase float64) float64 { return math.Sin(2 * math.Pi * phase) }

func SquareWave(phase float64) float64 {
	if phase < 0.5 {
		return 1
	}
	return -1
}

func SawWave(phase float64) float64 { return 2*phase - 1 }

func TriangleWave(phase float64) float64 {
	if phase < 0.5 {
		return 4*phase - 1
	}
	return 3 - 4*phase
}

// Phasor is a free-running phase-accumulator oscillator, the Oscillator
// GraphVoice discovers by default when an instrument needs a tone source
// (spec.md 4.14's oscillator role, not otherwise specified by the core
// itself). Frequency is either a plain scalar (SetFrequency) or driven by a
// Node subgraph (NewPhasorFM), in which case GraphVoice's frequency-constant
// heuristic retunes the subgraph instead.
type Phasor struct {
	base
	freqSrc      Node
	scalarHz     float64
	phase        float64
	wave         Waveform
	noTriggerTag bool
}

// NewPhasor creates a free Phasor at a fixed scalar frequency.
func NewPhasor(rate freq.T, hz float64, wave Waveform) *Phasor {
	return &Phasor{base: newBase(rate), scalarHz: hz, wave: wave}
}

// NewPhasorFM creates a Phasor whose instantaneous frequency is driven by
// freqSrc (a Node producing Hz values per sample).
func NewPhasorFM(freqSrc Node, wave Waveform) *Phasor {
	return &Phasor{base: newBase(freqSrc.SampleRate()), freqSrc: freqSrc, wave: wave}
}

// SetNoTrigger marks this oscillator as exempt from GraphVoice's
// reset-on-trigger step (e.g. a slow LFO that should keep running across
// notes).
func (p *Phasor) SetNoTrigger(v bool) { p.noTriggerTag = v }

func (p *Phasor) SetFrequency(hz float64) { p.scalarHz = hz }
func (p *Phasor) FrequencySource() Node   { return p.freqSrc }
func (p *Phasor) NoTrigger() bool         { return p.noTriggerTag }

func (p *Phasor) Sources() map[string]any {
	if p.freqSrc == nil {
		return nil
	}
	return map[string]any{"frequency": p.freqSrc}
}

func (p *Phasor) For(seconds float64) Node { p.setDuration(seconds); return p }

func (p *Phasor) Reset() {
	p.reset()
	p.phase = 0
	if r, ok := p.freqSrc.(Resetter); ok {
		r.Reset()
	}
}

func (p *Phasor) Produce(n int) (*Buffer, error) {
	n, limited := p.remaining(n)
	if limited && n == 0 {
		return nil, ErrEndOfStream
	}
	rateHz := float64(p.rate / freq.Hertz)

	var freqBuf *Buffer
	if p.freqSrc != nil {
		buf, err := p.freqSrc.Produce(n)
		if err != nil {
			return nil, err
		}
		freqBuf = buf
		n = buf.Len()
	}

	out := NewBuffer(Real64, n)
	for i := 0; i < n; i++ {
		hz := p.scalarHz
		if freqBuf != nil {
			hz = real(freqBuf.At(i))
		}
		out.Set(i, complex(p.wave(p.phase), 0))
		p.phase += hz / rateHz
		p.phase -= math.Floor(p.phase)
	}
	p.advance(n)
	return out, nil
}
