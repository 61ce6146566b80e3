package synth

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
	"zikichombo.org/sound/freq"
)

type ccBinding struct {
	param *Parameter
	cb    func(float64)
}

type ccThreshold struct {
	index           int
	rising, falling float64
	state           bool
	cb              func(bool)
}

func (t *ccThreshold) handle(e MidiEvent) {
	if e.Class != ControlChange || e.Index != t.index {
		return
	}
	v := float64(e.Value)
	if !t.state && v >= t.rising {
		t.state = true
		t.cb(true)
	} else if t.state && v <= t.falling {
		t.state = false
		t.cb(false)
	}
}

type midiBinding struct {
	template ParamTemplate
	cb       func(MidiEvent)
}

// Manager owns a MIDI input stream, a set of Parameters, and the callbacks
// registered against them (spec.md 4.13). Update must be called at the
// configured tick rate; callbacks run inline and a panicking callback is
// recovered and logged rather than propagating.
type Manager struct {
	input      MidiInput
	parser     midiParser
	updateRate freq.T
	limiter    *rate.Limiter
	transpose  int

	eventCbs  []func(MidiEvent)
	noteCbs   []func(note, vel int, on bool)
	ccs       []ccBinding
	ccThresh  []*ccThreshold
	bendCbs   []func(int)
	progCbs   []func(int)
	midiBinds []midiBinding
}

// NewManager creates a Manager reading from input, ticking its Parameters
// at updateRate (typically 60 Hz).
func NewManager(input MidiInput, updateRate freq.T) *Manager {
	hz := float64(updateRate / freq.Hertz)
	return &Manager{
		input:      input,
		updateRate: updateRate,
		limiter:    rate.NewLimiter(rate.Limit(hz), 1),
	}
}

// SetTranspose sets the semitone offset OnNote adds to delivered note
// numbers.
func (m *Manager) SetTranspose(semitones int) { m.transpose = semitones }

// OnEvent registers cb for every parsed event, unfiltered.
func (m *Manager) OnEvent(cb func(MidiEvent)) { m.eventCbs = append(m.eventCbs, cb) }

// OnNote registers cb, delivered as (note+transpose, velocity, isOn).
func (m *Manager) OnNote(cb func(note, vel int, on bool)) { m.noteCbs = append(m.noteCbs, cb) }

// OnCC registers a Parameter tracking Control-Change index, mapped from
// [0,127] onto [lo,hi] with the given smoothing, and a callback invoked
// with the parameter's freshly ticked value on every Update.
func (m *Manager) OnCC(index int, lo, hi, def, filterHz, maxRise, maxFall float64, cb func(float64)) *Parameter {
	p := NewParameter(ParamTemplate{Class: ControlChange, Index: index, HasIndex: true}, lo, hi, def, 0, 127, m.updateRate, filterHz, maxRise, maxFall)
	m.ccs = append(m.ccs, ccBinding{param: p, cb: cb})
	return p
}

// OnCCThreshold registers a hysteresis switch over Control-Change index:
// cb(true) fires the first time the value reaches rising from below, cb
// (false) the first time it falls back to falling or below.
func (m *Manager) OnCCThreshold(index int, rising, falling float64, cb func(bool)) {
	m.ccThresh = append(m.ccThresh, &ccThreshold{index: index, rising: rising, falling: falling, cb: cb})
}

// OnBend registers cb for PitchBend events, delivered as the 14-bit
// centered value.
func (m *Manager) OnBend(cb func(bend int)) { m.bendCbs = append(m.bendCbs, cb) }

// OnProgram registers cb for ProgramChange events.
func (m *Manager) OnProgram(cb func(program int)) { m.progCbs = append(m.progCbs, cb) }

// OnMidi registers cb for any event matching template.
func (m *Manager) OnMidi(template ParamTemplate, cb func(MidiEvent)) {
	m.midiBinds = append(m.midiBinds, midiBinding{template: template, cb: cb})
}

// Update drains the MIDI input, dispatches parsed events to every matching
// callback, then evaluates every registered Parameter once and invokes its
// callback with the result. Must be invoked at the Manager's configured
// update rate.
func (m *Manager) Update(blocking bool) error {
	data, err := m.input.Read(blocking)
	if err != nil {
		return err
	}
	events := m.parser.Feed(data)
	for _, e := range events {
		m.dispatch(e)
	}
	for _, b := range m.ccs {
		v := b.param.Tick()
		if b.cb != nil {
			m.safeCall(func() { b.cb(v) })
		}
	}
	return nil
}

func (m *Manager) dispatch(e MidiEvent) {
	for _, cb := range m.eventCbs {
		m.safeCall(func() { cb(e) })
	}
	switch e.Class {
	case NoteOn, NoteOff:
		for _, cb := range m.noteCbs {
			note := e.Note + m.transpose
			on := e.Class == NoteOn
			m.safeCall(func() { cb(note, e.Velocity, on) })
		}
	case PitchBend:
		for _, cb := range m.bendCbs {
			m.safeCall(func() { cb(e.Bend) })
		}
	case ProgramChange:
		for _, cb := range m.progCbs {
			m.safeCall(func() { cb(e.Value) })
		}
	}
	for _, b := range m.ccs {
		b.param.HandleEvent(e)
	}
	for _, t := range m.ccThresh {
		t.handle(e)
	}
	for _, b := range m.midiBinds {
		if b.template.matches(e) {
			m.safeCall(func() { b.cb(e) })
		}
	}
}

// RunLoop calls Update(blocking) repeatedly, paced to the Manager's
// configured update rate via a token-bucket limiter, until ctx is
// cancelled. Use this instead of driving Update from a bare ticker when the
// host doesn't already run its own fixed-rate control loop.
func (m *Manager) RunLoop(ctx context.Context, blocking bool) error {
	for {
		if err := m.limiter.Wait(ctx); err != nil {
			return err
		}
		if err := m.Update(blocking); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (m *Manager) safeCall(f func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("midi callback panic", "recovered", fmt.Sprint(r))
		}
	}()
	f()
}
