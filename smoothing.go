package synth

import (
	"math"

	"zikichombo.org/sound/freq"
)

// LinearFollower implements the rate-limiting half of spec.md 4.10: given a
// target value, state moves toward it no faster than maxRise per second
// (rising) or maxFall per second (falling). A non-positive limit is treated
// as unbounded in that direction.
type LinearFollower struct {
	rate    freq.T
	maxRise float64 // per-second
	maxFall float64 // per-second
	state   float64
	armed   bool
}

// NewLinearFollower creates a follower at rate with the given per-second
// rise/fall limits.
func NewLinearFollower(rate freq.T, maxRise, maxFall float64) *LinearFollower {
	return &LinearFollower{rate: rate, maxRise: maxRise, maxFall: maxFall}
}

// Step advances state one sample toward target and returns the new state.
func (f *LinearFollower) Step(target float64) float64 {
	if !f.armed {
		f.state = target
		f.armed = true
		return f.state
	}
	rateHz := float64(f.rate / freq.Hertz)
	diff := target - f.state
	var step float64
	if diff >= 0 {
		step = diff
		if f.maxRise > 0 {
			limit := f.maxRise / rateHz
			if step > limit {
				step = limit
			}
		}
	} else {
		step = diff
		if f.maxFall > 0 {
			limit := -f.maxFall / rateHz
			if step < limit {
				step = limit
			}
		}
	}
	f.state += step
	return f.state
}

// Reset clears the follower so the next Step snaps directly to its target.
func (f *LinearFollower) Reset() {
	f.state = 0
	f.armed = false
}

// OnePole is a first-order low-pass filter with coefficient derived from a
// cutoff frequency and the sample rate (spec.md 4.10). A non-positive cutoff
// disables filtering (pass-through).
type OnePole struct {
	rate    freq.T
	cutoff  float64
	a       float64
	state   float64
	armed   bool
}

// NewOnePole creates a one-pole LPF at rate with the given cutoff in Hz.
func NewOnePole(rate freq.T, cutoffHz float64) *OnePole {
	p := &OnePole{rate: rate, cutoff: cutoffHz}
	p.recompute()
	return p
}

func (p *OnePole) recompute() {
	if p.cutoff <= 0 {
		p.a = 0
		return
	}
	rateHz := float64(p.rate / freq.Hertz)
	p.a = math.Exp(-2 * math.Pi * p.cutoff / rateHz)
}

// SetCutoff changes the filter's cutoff frequency in Hz.
func (p *OnePole) SetCutoff(hz float64) {
	p.cutoff = hz
	p.recompute()
}

// Step filters one sample and returns the new output.
func (p *OnePole) Step(x float64) float64 {
	if !p.armed {
		p.state = x
		p.armed = true
		return p.state
	}
	p.state = (1-p.a)*x + p.a*p.state
	return p.state
}

// Reset clears filter state so the next Step snaps directly to its input.
func (p *OnePole) Reset() {
	p.state = 0
	p.armed = false
}
