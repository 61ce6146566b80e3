package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zikichombo.org/sound/freq"
)

type queueMidiInput struct {
	chunks [][]byte
	i      int
}

func (q *queueMidiInput) Read(blocking bool) ([]byte, error) {
	if q.i >= len(q.chunks) {
		return nil, nil
	}
	c := q.chunks[q.i]
	q.i++
	return c, nil
}

func TestManagerDispatchesNoteEvents(t *testing.T) {
	input := &queueMidiInput{chunks: [][]byte{{0x90, 60, 100}}}
	m := NewManager(input, 60*freq.Hertz)

	var gotNote, gotVel int
	var gotOn bool
	m.OnNote(func(note, vel int, on bool) { gotNote, gotVel, gotOn = note, vel, on })

	require.NoError(t, m.Update(false))
	assert.Equal(t, 60, gotNote)
	assert.Equal(t, 100, gotVel)
	assert.True(t, gotOn)
}

func TestManagerTransposeShiftsDeliveredNote(t *testing.T) {
	input := &queueMidiInput{chunks: [][]byte{{0x90, 60, 100}}}
	m := NewManager(input, 60*freq.Hertz)
	m.SetTranspose(12)

	var gotNote int
	m.OnNote(func(note, vel int, on bool) { gotNote = note })
	require.NoError(t, m.Update(false))
	assert.Equal(t, 72, gotNote)
}

func TestManagerOnCCTicksBoundParameter(t *testing.T) {
	input := &queueMidiInput{chunks: [][]byte{{0xB0, 74, 127}}}
	m := NewManager(input, 1000*freq.Hertz)

	var got float64
	m.OnCC(74, 0, 1, 0, 0, 0, 0, func(v float64) { got = v })
	require.NoError(t, m.Update(false))
	assert.InDelta(t, 1.0, got, 1e-6)
}

func TestManagerCallbackPanicIsRecovered(t *testing.T) {
	input := &queueMidiInput{chunks: [][]byte{{0x90, 60, 100}}}
	m := NewManager(input, 60*freq.Hertz)
	m.OnNote(func(note, vel int, on bool) { panic("boom") })

	assert.NotPanics(t, func() {
		require.NoError(t, m.Update(false))
	})
}

func TestManagerOnCCThresholdFiresOnce(t *testing.T) {
	input := &queueMidiInput{chunks: [][]byte{{0xB0, 64, 127}, {0xB0, 64, 0}}}
	m := NewManager(input, 60*freq.Hertz)

	var states []bool
	m.OnCCThreshold(64, 100, 20, func(up bool) { states = append(states, up) })

	require.NoError(t, m.Update(false))
	require.NoError(t, m.Update(false))
	require.Equal(t, []bool{true, false}, states)
}
