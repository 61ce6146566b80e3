package synth

import "math"

// Oscillator is a Node with a controllable pitch, discoverable by
// GraphVoice (spec.md 4.14). FrequencySource returns the subgraph driving
// pitch when the oscillator's frequency is wired to one (rather than being
// a plain scalar parameter); nil means SetFrequency alone determines pitch.
type Oscillator interface {
	Node
	SetFrequency(hz float64)
	FrequencySource() Node
	NoTrigger() bool
}

// EnvelopeRole distinguishes an amplitude envelope from a filter envelope,
// since GraphVoice.Trigger derives a different level for each (spec.md
// 4.14).
type EnvelopeRole int

const (
	RoleAmplitude EnvelopeRole = iota
	RoleFilter
)

// Envelope is a Node that can be triggered and released, discoverable by
// GraphVoice.
type Envelope interface {
	Node
	Trigger(level float64)
	Release()
	Role() EnvelopeRole
}

// Rewinder is implemented by sample-array sources GraphVoice rewinds on
// trigger (spec.md 4.14 step 5).
type Rewinder interface {
	Rewind()
}

// constSetter is implemented by nodes whose constant term GraphVoice's
// frequency-constant heuristic can retune: *Constant and *Mixer.
type constSetter interface {
	Constant() complex128
	SetConstant(v complex128)
}

// minBaseFrequencyHz is the "frequency >= 20 Hz" heuristic threshold
// distinguishing a base-pitch constant from a modulation constant inside an
// oscillator's frequency subgraph (spec.md 4.14, flagged as a design smell
// in 9 rather than replaced by explicit role tags).
const minBaseFrequencyHz = 20.0

// freqTarget is one frequency-constant node discovered inside an
// oscillator's frequency subgraph, paired with the setter used to retune
// it.
type freqTarget struct {
	setter constSetter
}

func (t freqTarget) set(hz float64) {
	v := t.setter.Constant()
	t.setter.SetConstant(complex(hz, imag(v)))
}

// oscEntry pairs a discovered Oscillator with the frequency-constant
// targets found in its frequency subgraph (empty if the oscillator's
// frequency is a plain scalar).
type oscEntry struct {
	osc     Oscillator
	targets []freqTarget
}

// GraphVoice is a reusable instrument graph whose oscillators, envelopes,
// and frequency constants are discovered once at construction by
// enumerating the subgraph rooted at a sink Node (spec.md 4.14).
type GraphVoice struct {
	root        Node
	oscillators []oscEntry
	ampEnv      []Envelope
	filterEnv   []Envelope
	rewinders   []Rewinder

	currentNote float64
	bend        float64
}

// NewGraphVoice discovers the instrument structure reachable from root and
// returns a GraphVoice ready to be triggered.
func NewGraphVoice(root Node) (*GraphVoice, error) {
	g := BuildGraph(root)
	if err := g.CheckAcyclic(); err != nil {
		return nil, err
	}
	gv := &GraphVoice{root: root}
	for _, n := range g.Order() {
		switch v := n.(type) {
		case Oscillator:
			entry := oscEntry{osc: v}
			if fs := v.FrequencySource(); fs != nil {
				fg := BuildGraph(fs)
				for _, fn := range fg.Order() {
					if cs, ok := fn.(constSetter); ok && real(cs.Constant()) >= minBaseFrequencyHz {
						entry.targets = append(entry.targets, freqTarget{setter: cs})
					}
				}
			}
			gv.oscillators = append(gv.oscillators, entry)
		case Envelope:
			if v.Role() == RoleAmplitude {
				gv.ampEnv = append(gv.ampEnv, v)
			} else {
				gv.filterEnv = append(gv.filterEnv, v)
			}
		case Rewinder:
			gv.rewinders = append(gv.rewinders, v)
		}
	}
	return gv, nil
}

func noteToHz(note float64) float64 {
	return 440 * math.Pow(2, (note-69)/12)
}

func (gv *GraphVoice) applyFrequency(hz float64) {
	for _, e := range gv.oscillators {
		if e.osc.FrequencySource() == nil {
			e.osc.SetFrequency(hz)
			continue
		}
		for _, t := range e.targets {
			t.set(hz)
		}
	}
}

// Trigger starts the voice on note (MIDI note number) with velocity vel in
// [0,127] (spec.md 4.14).
func (gv *GraphVoice) Trigger(note, vel int) {
	gv.currentNote = float64(note)
	for _, e := range gv.oscillators {
		if !e.osc.NoTrigger() {
			if r, ok := e.osc.(Resetter); ok {
				r.Reset()
			}
		}
	}
	gv.applyFrequency(noteToHz(gv.currentNote + gv.bend))

	level := float64(vel) / 127
	for _, env := range gv.ampEnv {
		env.Trigger(level)
	}
	for _, env := range gv.filterEnv {
		env.Trigger(level)
	}
	for _, r := range gv.rewinders {
		r.Rewind()
	}
}

// Release releases every envelope in the voice.
func (gv *GraphVoice) Release(note, vel int) {
	for _, env := range gv.ampEnv {
		env.Release()
	}
	for _, env := range gv.filterEnv {
		env.Release()
	}
}

// SetBend retunes every discovered oscillator live, without retriggering
// envelopes, by semitones relative to the voice's current note.
func (gv *GraphVoice) SetBend(semitones float64) {
	gv.bend = semitones
	gv.applyFrequency(noteToHz(gv.currentNote + gv.bend))
}

// Sample pulls n samples from the voice's root Node.
func (gv *GraphVoice) Sample(n int) (*Buffer, error) {
	return gv.root.Produce(n)
}

// sample satisfies voiceSampler so a GraphVoice can run inside a
// VoicePool's threaded mode worker.
func (gv *GraphVoice) sample(n int) (*Buffer, error) {
	return gv.Sample(n)
}

func (gv *GraphVoice) Reset() {
	if r, ok := gv.root.(Resetter); ok {
		r.Reset()
	}
}
