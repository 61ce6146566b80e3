package synth

import (
	"sync"

	"zikichombo.org/sound/freq"
)

// ParamTemplate selects which MidiEvents a Parameter responds to: a class,
// plus optional channel and index/note constraints (spec.md 4.13).
type ParamTemplate struct {
	Class      EventClass
	Channel    int
	HasChannel bool
	Index      int // CC index, or note number for note-keyed parameters
	HasIndex   bool
}

func (t ParamTemplate) matches(e MidiEvent) bool {
	if e.Class != t.Class {
		return false
	}
	if t.HasChannel && e.Channel != t.Channel {
		return false
	}
	if !t.HasIndex {
		return true
	}
	switch e.Class {
	case ControlChange:
		return e.Index == t.Index
	case NoteOn, NoteOff, PolyAftertouch:
		return e.Note == t.Index
	default:
		return true
	}
}

func rawValue(e MidiEvent) float64 {
	switch e.Class {
	case ControlChange:
		return float64(e.Value)
	case NoteOn, NoteOff:
		return float64(e.Velocity)
	case PolyAftertouch, ChannelAftertouch, ProgramChange:
		return float64(e.Value)
	case PitchBend:
		return float64(e.Bend)
	default:
		return 0
	}
}

// Parameter maps a MIDI event template to a smoothed control value in
// [lo,hi] (spec.md 4.13). Its target updates synchronously with matching
// events (on the Manager's thread); Tick evaluates LinearFollower+OnePole
// once per update tick; Value is read by audio-thread producers and is
// safe for concurrent access with Tick/HandleEvent (spec.md 5).
type Parameter struct {
	mu       sync.RWMutex
	template ParamTemplate
	lo, hi   float64
	rawLo    float64 // raw MIDI domain, typically 0..127 or -8192..8191
	rawHi    float64
	target   float64
	value    float64
	follower *LinearFollower
	pole     *OnePole
}

// NewParameter creates a Parameter matching template, mapping its raw MIDI
// domain [rawLo,rawHi] onto [lo,hi], smoothed at updateRate with the given
// one-pole cutoff and linear rise/fall limits (per second, in output
// units).
func NewParameter(template ParamTemplate, lo, hi, def float64, rawLo, rawHi float64, updateRate freq.T, filterHz, maxRise, maxFall float64) *Parameter {
	p := &Parameter{
		template: template,
		lo:       lo, hi: hi,
		rawLo: rawLo, rawHi: rawHi,
		target:   def,
		value:    def,
		follower: NewLinearFollower(updateRate, maxRise, maxFall),
		pole:     NewOnePole(updateRate, filterHz),
	}
	return p
}

// HandleEvent updates the Parameter's target if e matches its template.
func (p *Parameter) HandleEvent(e MidiEvent) bool {
	if !p.template.matches(e) {
		return false
	}
	raw := rawValue(e)
	span := p.rawHi - p.rawLo
	var t float64
	if span == 0 {
		t = p.lo
	} else {
		t = p.lo + (raw-p.rawLo)/span*(p.hi-p.lo)
	}
	if t < p.lo {
		t = p.lo
	}
	if t > p.hi {
		t = p.hi
	}
	p.mu.Lock()
	p.target = t
	p.mu.Unlock()
	return true
}

// Tick evaluates the Parameter's smoothing chain once and updates Value.
// Called once per update tick by Manager.Update.
func (p *Parameter) Tick() float64 {
	p.mu.Lock()
	target := p.target
	v := p.follower.Step(target)
	v = p.pole.Step(v)
	p.value = v
	p.mu.Unlock()
	return v
}

// Value returns the parameter's current smoothed value.
func (p *Parameter) Value() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value
}

// ParameterNode exposes a Parameter as an audio-rate Node: each Produce
// reads Value() once and holds it flat across the block (spec.md 5's "read
// once at the start of the block" sufficiency rule).
type ParameterNode struct {
	base
	param *Parameter
}

func NewParameterNode(rate freq.T, p *Parameter) *ParameterNode {
	return &ParameterNode{base: newBase(rate), param: p}
}

func (n *ParameterNode) Sources() map[string]any { return nil }

func (n *ParameterNode) For(seconds float64) Node { n.setDuration(seconds); return n }

func (n *ParameterNode) Reset() { n.reset() }

func (n *ParameterNode) Produce(count int) (*Buffer, error) {
	count, limited := n.remaining(count)
	if limited && count == 0 {
		return nil, ErrEndOfStream
	}
	v := n.param.Value()
	out := NewBuffer(Real64, count)
	for i := 0; i < count; i++ {
		out.Set(i, complex(v, 0))
	}
	n.advance(count)
	return out, nil
}
