package synth

import (
	"errors"
	"strconv"

	"github.com/google/uuid"
	"zikichombo.org/sound/freq"
)

// Mixer produces constant + sum(gain_i * source_i) (spec.md 4.3). Adding
// the same underlying Node more than once sums its gains into a single
// upstream pull rather than pulling it twice (spec.md 4.3's "operator
// identity", 8's property 3).
type Mixer struct {
	base
	reg       *regkey
	gains     map[uuid.UUID]complex128
	nodes     map[uuid.UUID]Node
	ended     map[uuid.UUID]bool
	constant  complex128
	stopEarly bool
	dtype     Dtype
}

// NewMixer creates a Mixer at rate, starting from the given constant term.
// stopEarly selects the spec.md 4.3 short-read policy.
func NewMixer(rate freq.T, constant complex128, stopEarly bool) *Mixer {
	return &Mixer{
		base:      newBase(rate),
		reg:       newRegkey(),
		gains:     make(map[uuid.UUID]complex128),
		nodes:     make(map[uuid.UUID]Node),
		ended:     make(map[uuid.UUID]bool),
		constant:  constant,
		stopEarly: stopEarly,
		dtype:     dtypeOf(constant),
	}
}

// Add registers source with the given gain. If source was already added,
// its gains are summed rather than creating a second pull (spec.md 4.3,
// 8-3).
func (m *Mixer) Add(source Node, gain complex128) error {
	if source.SampleRate() != m.rate {
		if rs, ok := source.(RateSetter); ok {
			if err := rs.SetRate(m.rate); err != nil {
				return &RateMismatchError{Node: "Mixer", Want: m.rate, Got: source.SampleRate()}
			}
		} else {
			return &RateMismatchError{Node: "Mixer", Want: m.rate, Got: source.SampleRate()}
		}
	}
	id, _ := m.reg.token(source)
	m.nodes[id] = source
	m.gains[id] += gain
	m.dtype = LUB(m.dtype, dtypeOf(gain))
	return nil
}

// Constant returns the Mixer's constant term, used by GraphVoice's
// frequency-constant discovery heuristic (spec.md 4.14, 9).
func (m *Mixer) Constant() complex128 { return m.constant }

// SetConstant reassigns the Mixer's constant term.
func (m *Mixer) SetConstant(v complex128) {
	m.constant = v
	m.dtype = LUB(m.dtype, dtypeOf(v))
}

func (m *Mixer) Sources() map[string]any {
	out := make(map[string]any, m.reg.len()+1)
	out["constant"] = m.constant
	for i, n := range m.reg.nodes() {
		out[sourceKey(i)] = n
	}
	return out
}

func sourceKey(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	if i < len(letters) {
		return "source_" + string(letters[i])
	}
	return "source_" + strconv.Itoa(i)
}

func (m *Mixer) For(seconds float64) Node { m.setDuration(seconds); return m }

func (m *Mixer) Reset() {
	m.reset()
	for k := range m.ended {
		delete(m.ended, k)
	}
	for _, n := range m.reg.nodes() {
		if r, ok := n.(Resetter); ok {
			r.Reset()
		}
	}
}

func (m *Mixer) Produce(n int) (*Buffer, error) {
	if n2, limited := m.remaining(n); limited {
		n = n2
		if n == 0 {
			return nil, ErrEndOfStream
		}
	}
	ids := m.reg.order
	bufs := make(map[uuid.UUID]*Buffer, len(ids))
	dtype := m.dtype

	for _, id := range ids {
		if !m.stopEarly && m.ended[id] {
			continue
		}
		src := m.nodes[id]
		buf, err := src.Produce(n)
		if err != nil {
			if !errors.Is(err, ErrEndOfStream) {
				return nil, err
			}
			m.ended[id] = true
			if m.stopEarly {
				return nil, ErrEndOfStream
			}
			continue
		}
		if buf.Len() == 0 {
			m.ended[id] = true
			if m.stopEarly {
				return nil, ErrEndOfStream
			}
			continue
		}
		bufs[id] = buf
		dtype = LUB(dtype, buf.Dtype)
	}

	var L int
	if m.stopEarly {
		if len(bufs) != len(ids) {
			// a source ended with a genuinely empty (not erroring) buffer
			return nil, ErrEndOfStream
		}
		L = n
		for _, b := range bufs {
			if b.Len() < L {
				L = b.Len()
			}
		}
		if L == 0 {
			return nil, ErrEndOfStream
		}
	} else {
		if allEndedSet(m.ended, ids) {
			return nil, ErrEndOfStream
		}
		for _, b := range bufs {
			if b.Len() > L {
				L = b.Len()
			}
		}
		if L == 0 {
			L = n
		}
	}
	m.dtype = dtype

	out := NewBuffer(dtype, L)
	for i := 0; i < L; i++ {
		acc := m.constant
		for _, id := range ids {
			b, ok := bufs[id]
			if !ok || i >= b.Len() {
				continue // ended source or short read beyond its length: zero contribution
			}
			acc += m.gains[id] * b.At(i)
		}
		out.Set(i, acc)
	}
	m.advance(L)
	return out, nil
}

func allEndedSet(ended map[uuid.UUID]bool, ids []uuid.UUID) bool {
	for _, id := range ids {
		if !ended[id] {
			return false
		}
	}
	return true
}
