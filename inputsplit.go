package synth

import (
	"errors"

	"zikichombo.org/sound/freq"
)

// AudioInput is the external audio-device collaborator (spec.md 6): a
// provider of interleaved-by-channel frames, with end-of-stream signalled by
// a nil or empty outer slice, or any empty inner channel buffer.
type AudioInput interface {
	Read(n int) ([][]float64, error)
	Channels() int
	SampleRate() freq.T
	BufferSize() int
}

// InputChannelSplit is InputChannelSplit from spec.md 4.4: the same
// one-writer-many-readers pattern as Tee, but over a multi-channel
// AudioInput instead of a single Node, one ring per channel so a channel
// read more aggressively than its siblings overflows independently.
type InputChannelSplit struct {
	src        AudioInput
	rate       freq.T
	rbs        []*ring
	channels   []*InputChannel
	ended      bool
	maxBacklog int
}

// NewInputChannelSplit wraps src, creating one InputChannel Node per
// underlying audio channel.
func NewInputChannelSplit(src AudioInput) *InputChannelSplit {
	n := src.Channels()
	s := &InputChannelSplit{
		src:        src,
		rate:       src.SampleRate(),
		rbs:        make([]*ring, n),
		channels:   make([]*InputChannel, n),
		maxBacklog: defaultTeeBacklog,
	}
	for i := 0; i < n; i++ {
		s.rbs[i] = newRing(4096)
		rd := s.rbs[i].newReader(i)
		s.channels[i] = &InputChannel{base: newBase(s.rate), split: s, rd: rd, idx: i}
	}
	return s
}

// Channel returns the i'th channel Node.
func (s *InputChannelSplit) Channel(i int) *InputChannel { return s.channels[i] }

// fill pulls frames from the underlying AudioInput until every channel's
// reader holds at least n samples or the input ends.
func (s *InputChannelSplit) fill(n int) error {
	if s.ended {
		return nil
	}
	for {
		slowest := n
		for i, ch := range s.channels {
			if a := s.rbs[i].available(ch.rd); a < slowest {
				slowest = a
			}
		}
		if slowest >= n {
			return nil
		}
		frames, err := s.src.Read(n)
		if len(frames) == 0 || len(frames[0]) == 0 {
			s.ended = true
			return nil
		}
		for i, ch := range frames {
			if i >= len(s.rbs) {
				break
			}
			cs := make([]complex128, len(ch))
			for j, v := range ch {
				cs[j] = complex(v, 0)
			}
			if werr := s.rbs[i].writeSamples(cs, s.maxBacklog); werr != nil {
				return s.overflowError(i, len(cs))
			}
		}
		if err != nil {
			if errors.Is(err, ErrEndOfStream) {
				s.ended = true
				return nil
			}
			return err
		}
	}
}

func (s *InputChannelSplit) overflowError(idx, writeLen int) error {
	rd := s.channels[idx].rd
	return &BranchOverflowError{
		Node:      "InputChannelSplit",
		Branch:    idx,
		ReaderLen: s.rbs[idx].available(rd),
		WriteLen:  writeLen,
	}
}

// InputChannel is one channel's Node out of an InputChannelSplit.
type InputChannel struct {
	base
	split *InputChannelSplit
	rd    *reader
	idx   int
}

func (c *InputChannel) Sources() map[string]any {
	return map[string]any{"input": c.split.src}
}

func (c *InputChannel) Produce(n int) (*Buffer, error) {
	n2, limited := c.remaining(n)
	if limited && n2 == 0 {
		return nil, ErrEndOfStream
	}
	n = n2
	if err := c.split.fill(n); err != nil {
		return nil, err
	}
	avail := c.split.rbs[c.idx].available(c.rd)
	want := n
	if avail < want {
		want = avail
	}
	if want == 0 {
		return nil, ErrEndOfStream
	}
	samples := c.split.rbs[c.idx].readSamples(c.rd, want)
	out := NewBuffer(Real64, want)
	for i, v := range samples {
		out.Set(i, v)
	}
	c.advance(want)
	return out, nil
}

func (c *InputChannel) For(seconds float64) Node { c.setDuration(seconds); return c }
func (c *InputChannel) Reset()                   { c.reset() }
