package synth

// pooledNoteVel is a deferred Note-Off held while the sustain pedal is down.
type pooledNoteVel struct {
	note, vel int
}

// VoicePool owns a fixed set of GraphVoices and allocates/steals them in
// response to Note-On/Note-Off, sustain, and pitch-bend events (spec.md
// 4.13).
type VoicePool struct {
	voices []*GraphVoice

	available []int // voice indices not currently assigned to a note
	used      []int // voice indices assigned to a note, oldest-triggered first

	keyToVoice map[int]int // note -> voice index
	voiceToKey map[int]int // voice index -> note

	sustain  bool
	bend     float64
	released []pooledNoteVel

	workers []*voiceWorker // non-nil only in threaded mode
}

// NewVoicePool creates a pool over voices, initially all available.
func NewVoicePool(voices []*GraphVoice) *VoicePool {
	p := &VoicePool{
		voices:     voices,
		keyToVoice: make(map[int]int),
		voiceToKey: make(map[int]int),
	}
	for i := range voices {
		p.available = append(p.available, i)
	}
	return p
}

// EnableThreading starts one worker goroutine per voice; Sample then
// dispatches to every voice in parallel. Results are identical to serial
// mode (spec.md 4.13, 5).
func (p *VoicePool) EnableThreading() {
	if p.workers != nil {
		return
	}
	p.workers = make([]*voiceWorker, len(p.voices))
	for i, v := range p.voices {
		p.workers[i] = newVoiceWorker(v)
	}
}

// Close stops any worker goroutines started by EnableThreading. Safe to
// call even if threading was never enabled.
func (p *VoicePool) Close() {
	for _, w := range p.workers {
		if w != nil {
			w.stop()
		}
	}
	p.workers = nil
}

func removeInt(s []int, v int) []int {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// NoteOn allocates or retriggers a voice for note at velocity vel. If note
// is already live, that voice is retriggered. Otherwise a free voice is
// used; if none is free, the least-recently-triggered live voice is stolen.
func (p *VoicePool) NoteOn(note, vel int) {
	if idx, ok := p.keyToVoice[note]; ok {
		p.voices[idx].Trigger(note+int(p.bend), vel)
		p.used = removeInt(p.used, idx)
		p.used = append(p.used, idx)
		return
	}
	var idx int
	if len(p.available) > 0 {
		idx = p.available[0]
		p.available = p.available[1:]
	} else {
		idx = p.used[0]
		p.used = p.used[1:]
		if oldNote, ok := p.voiceToKey[idx]; ok {
			delete(p.keyToVoice, oldNote)
			delete(p.voiceToKey, idx)
		}
	}
	p.voices[idx].Trigger(note+int(p.bend), vel)
	p.keyToVoice[note] = idx
	p.voiceToKey[idx] = note
	p.used = append(p.used, idx)
}

// NoteOff releases the voice playing note, unless the sustain pedal is
// down, in which case the release is deferred.
func (p *VoicePool) NoteOff(note, vel int) {
	if p.sustain {
		p.released = append(p.released, pooledNoteVel{note: note, vel: vel})
		return
	}
	p.releaseNote(note, vel)
}

func (p *VoicePool) releaseNote(note, vel int) {
	idx, ok := p.keyToVoice[note]
	if !ok {
		return
	}
	p.voices[idx].Release(note, vel)
	delete(p.keyToVoice, note)
	delete(p.voiceToKey, idx)
	p.used = removeInt(p.used, idx)
	p.available = append(p.available, idx)
}

// Sustain sets the sustain pedal state. Rising (true) defers future
// Note-Offs; falling (false) releases every deferred note in one step.
func (p *VoicePool) Sustain(down bool) {
	if down {
		p.sustain = true
		return
	}
	p.sustain = false
	deferred := p.released
	p.released = nil
	for _, nv := range deferred {
		p.releaseNote(nv.note, nv.vel)
	}
}

// SetBend updates every voice's (live or idle) pitch offset to semitones.
func (p *VoicePool) SetBend(semitones float64) {
	p.bend = semitones
	for _, v := range p.voices {
		v.SetBend(semitones)
	}
}

// Sample returns the sum of every voice's Sample(n), widening dtype as
// needed.
func (p *VoicePool) Sample(n int) (*Buffer, error) {
	bufs := make([]*Buffer, len(p.voices))
	if p.workers != nil {
		resps := make([]chan voiceResult, len(p.workers))
		for i, w := range p.workers {
			resps[i] = w.send(n)
		}
		for i, w := range p.workers {
			buf, err := w.collect(resps[i])
			if err != nil {
				return nil, err
			}
			bufs[i] = buf
		}
	} else {
		for i, v := range p.voices {
			buf, err := v.Sample(n)
			if err != nil {
				return nil, err
			}
			bufs[i] = buf
		}
	}

	L := 0
	dtype := Real64
	for _, b := range bufs {
		if b.Len() > L {
			L = b.Len()
		}
		dtype = LUB(dtype, b.Dtype)
	}
	out := NewBuffer(dtype, L)
	for i := 0; i < L; i++ {
		var acc complex128
		for _, b := range bufs {
			if i < b.Len() {
				acc += b.At(i)
			}
		}
		out.Set(i, acc)
	}
	return out, nil
}
