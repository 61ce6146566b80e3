package synth

import "zikichombo.org/sound/freq"

type envState int

const (
	envIdle envState = iota
	envAttack
	envDecay
	envSustain
	envRelease
)

// ADEnvelope is a standard attack/decay/sustain/release envelope, the
// Envelope GraphVoice discovers by default for amplitude and filter
// modulation (spec.md 4.14's envelope role; the core itself specifies only
// the Trigger/Release contract, not a concrete envelope shape).
type ADEnvelope struct {
	base
	attackSamples, decaySamples, releaseSamples int64
	sustainFrac                                 float64
	role                                         EnvelopeRole

	state      envState
	level      float64
	startValue float64
	value      float64
	elapsed    int64
}

// NewADEnvelope creates an envelope at rate with the given attack/decay/
// release times in seconds and a sustain level expressed as a fraction of
// the triggered level.
func NewADEnvelope(rate freq.T, attackSec, decaySec, releaseSec, sustainFrac float64, role EnvelopeRole) *ADEnvelope {
	rateHz := float64(rate / freq.Hertz)
	return &ADEnvelope{
		base:           newBase(rate),
		attackSamples:  int64(attackSec * rateHz),
		decaySamples:   int64(decaySec * rateHz),
		releaseSamples: int64(releaseSec * rateHz),
		sustainFrac:    sustainFrac,
		role:           role,
	}
}

func (e *ADEnvelope) Role() EnvelopeRole { return e.role }

func (e *ADEnvelope) Sources() map[string]any { return nil }

func (e *ADEnvelope) For(seconds float64) Node { e.setDuration(seconds); return e }

func (e *ADEnvelope) Reset() {
	e.reset()
	e.state = envIdle
	e.value = 0
	e.elapsed = 0
}

// Trigger starts (or restarts) the envelope at the given level in [0,1].
func (e *ADEnvelope) Trigger(level float64) {
	e.level = level
	e.startValue = e.value
	e.state = envAttack
	e.elapsed = 0
}

// Release begins the release phase from wherever the envelope currently
// is.
func (e *ADEnvelope) Release() {
	e.startValue = e.value
	e.state = envRelease
	e.elapsed = 0
}

func (e *ADEnvelope) Produce(n int) (*Buffer, error) {
	n, limited := e.remaining(n)
	if limited && n == 0 {
		return nil, ErrEndOfStream
	}
	out := NewBuffer(Real64, n)
	for i := 0; i < n; i++ {
		out.Set(i, complex(e.step(), 0))
	}
	e.advance(n)
	return out, nil
}

func (e *ADEnvelope) step() float64 {
	switch e.state {
	case envAttack:
		if e.attackSamples <= 0 {
			e.value = e.level
			e.state = envDecay
			e.startValue = e.value
			e.elapsed = 0
			break
		}
		t := float64(e.elapsed) / float64(e.attackSamples)
		e.value = e.startValue + (e.level-e.startValue)*t
		e.elapsed++
		if e.elapsed >= e.attackSamples {
			e.state = envDecay
			e.startValue = e.level
			e.elapsed = 0
		}
	case envDecay:
		target := e.level * e.sustainFrac
		if e.decaySamples <= 0 {
			e.value = target
			e.state = envSustain
			break
		}
		t := float64(e.elapsed) / float64(e.decaySamples)
		e.value = e.startValue + (target-e.startValue)*t
		e.elapsed++
		if e.elapsed >= e.decaySamples {
			e.value = target
			e.state = envSustain
		}
	case envSustain:
		e.value = e.level * e.sustainFrac
	case envRelease:
		if e.releaseSamples <= 0 {
			e.value = 0
			e.state = envIdle
			break
		}
		t := float64(e.elapsed) / float64(e.releaseSamples)
		e.value = e.startValue * (1 - t)
		e.elapsed++
		if e.elapsed >= e.releaseSamples {
			e.value = 0
			e.state = envIdle
		}
	case envIdle:
		e.value = 0
	}
	return e.value
}
