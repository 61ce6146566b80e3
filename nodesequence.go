package synth

import (
	"errors"

	"zikichombo.org/sound/freq"
)

// NodeSequence produces samples from an ordered list of sources, advancing
// to the next when the current one ends (spec.md 4.6). Short reads from a
// source are passed through unpadded; sources may be appended after
// end-of-stream was reported once, which restarts production.
type NodeSequence struct {
	base
	rate    freq.T
	sources []Node
	idx     int
	ended   bool
}

// NewNodeSequence creates a NodeSequence at rate over the given sources, in
// order.
func NewNodeSequence(rate freq.T, sources ...Node) *NodeSequence {
	return &NodeSequence{base: newBase(rate), rate: rate, sources: append([]Node(nil), sources...)}
}

// Append adds src to the end of the sequence. If the sequence had already
// reported end-of-stream, this restarts production from src.
func (s *NodeSequence) Append(src Node) error {
	if src.SampleRate() != s.rate {
		if rs, ok := src.(RateSetter); ok {
			if err := rs.SetRate(s.rate); err != nil {
				return &RateMismatchError{Node: "NodeSequence", Want: s.rate, Got: src.SampleRate()}
			}
		} else {
			return &RateMismatchError{Node: "NodeSequence", Want: s.rate, Got: src.SampleRate()}
		}
	}
	if s.ended {
		s.ended = false
		s.idx = len(s.sources)
	}
	s.sources = append(s.sources, src)
	return nil
}

func (s *NodeSequence) Sources() map[string]any {
	out := make(map[string]any, len(s.sources))
	for i, n := range s.sources {
		out[sourceKey(i)] = n
	}
	return out
}

func (s *NodeSequence) For(seconds float64) Node { s.setDuration(seconds); return s }

func (s *NodeSequence) Reset() {
	s.reset()
	s.idx = 0
	s.ended = false
	for _, n := range s.sources {
		if r, ok := n.(Resetter); ok {
			r.Reset()
		}
	}
}

func (s *NodeSequence) Produce(n int) (*Buffer, error) {
	n2, limited := s.remaining(n)
	if limited && n2 == 0 {
		return nil, ErrEndOfStream
	}
	n = n2
	for {
		if s.ended || s.idx >= len(s.sources) {
			s.ended = true
			return nil, ErrEndOfStream
		}
		cur := s.sources[s.idx]
		buf, err := cur.Produce(n)
		if err != nil {
			if !errors.Is(err, ErrEndOfStream) {
				return nil, err
			}
			s.idx++
			continue
		}
		if buf.Len() == 0 {
			s.idx++
			continue
		}
		s.advance(buf.Len())
		return buf, nil
	}
}
