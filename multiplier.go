package synth

import (
	"errors"

	"github.com/google/uuid"
	"zikichombo.org/sound/freq"
)

// multiplierEntry tracks, for one distinct underlying Node added to a
// Multiplier, whether a second (or further) addition has required wrapping
// it in a Tee so every occurrence gets an independent read of the same
// upstream values (spec.md 4.3's operator identity for Multiplier, distinct
// from Mixer's gain-summing identity since a product needs the same value
// at each occurrence, not a combined coefficient).
type multiplierEntry struct {
	orig Node
	tee  *Tee
}

// Multiplier produces constant * product(source_i) per spec.md 4.3.
type Multiplier struct {
	base
	reg       *regkey
	entries   map[uuid.UUID]*multiplierEntry
	slots     []Node // the Node actually pulled from for each occurrence, in Add order
	slotID    []uuid.UUID
	ended     map[uuid.UUID]bool
	constant  complex128
	stopEarly bool
	dtype     Dtype
}

func NewMultiplier(rate freq.T, constant complex128, stopEarly bool) *Multiplier {
	return &Multiplier{
		base:      newBase(rate),
		reg:       newRegkey(),
		entries:   make(map[uuid.UUID]*multiplierEntry),
		ended:     make(map[uuid.UUID]bool),
		constant:  constant,
		stopEarly: stopEarly,
		dtype:     dtypeOf(constant),
	}
}

// Add registers source as one multiplicand. Adding the same source a
// second time wraps it in a 2-branch Tee so the underlying node is still
// pulled once per frame; a third addition adds a third branch to that same
// Tee, and so on.
func (mu *Multiplier) Add(source Node) error {
	if source.SampleRate() != mu.rate {
		if rs, ok := source.(RateSetter); ok {
			if err := rs.SetRate(mu.rate); err != nil {
				return &RateMismatchError{Node: "Multiplier", Want: mu.rate, Got: source.SampleRate()}
			}
		} else {
			return &RateMismatchError{Node: "Multiplier", Want: mu.rate, Got: source.SampleRate()}
		}
	}
	id, fresh := mu.reg.token(source)
	if fresh {
		mu.entries[id] = &multiplierEntry{orig: source}
		mu.slots = append(mu.slots, source)
		mu.slotID = append(mu.slotID, id)
		return nil
	}
	e := mu.entries[id]
	if e.tee == nil {
		e.tee = NewTee(e.orig, 2)
		for i, sid := range mu.slotID {
			if sid == id {
				mu.slots[i] = e.tee.Branch(0)
			}
		}
		mu.slots = append(mu.slots, e.tee.Branch(1))
	} else {
		mu.slots = append(mu.slots, e.tee.AddBranch())
	}
	mu.slotID = append(mu.slotID, id)
	return nil
}

func (mu *Multiplier) Sources() map[string]any {
	out := make(map[string]any, len(mu.slots)+1)
	out["constant"] = mu.constant
	for i, n := range mu.reg.nodes() {
		out[sourceKey(i)] = n
	}
	return out
}

func (mu *Multiplier) For(seconds float64) Node { mu.setDuration(seconds); return mu }

func (mu *Multiplier) Reset() {
	mu.reset()
	for k := range mu.ended {
		delete(mu.ended, k)
	}
	for _, n := range mu.reg.nodes() {
		if r, ok := n.(Resetter); ok {
			r.Reset()
		}
	}
}

func (mu *Multiplier) Produce(n int) (*Buffer, error) {
	if n2, limited := mu.remaining(n); limited {
		n = n2
		if n == 0 {
			return nil, ErrEndOfStream
		}
	}
	slotBufs := make([]*Buffer, len(mu.slots))
	dtype := mu.dtype

	for i, slot := range mu.slots {
		id := mu.slotID[i]
		if !mu.stopEarly && mu.ended[id] {
			continue
		}
		buf, err := slot.Produce(n)
		if err != nil {
			if !errors.Is(err, ErrEndOfStream) {
				return nil, err
			}
			mu.ended[id] = true
			if mu.stopEarly {
				return nil, ErrEndOfStream
			}
			continue
		}
		if buf.Len() == 0 {
			mu.ended[id] = true
			if mu.stopEarly {
				return nil, ErrEndOfStream
			}
			continue
		}
		slotBufs[i] = buf
		dtype = LUB(dtype, buf.Dtype)
	}

	var L int
	if mu.stopEarly {
		L = n
		for _, b := range slotBufs {
			if b == nil {
				return nil, ErrEndOfStream
			}
			if b.Len() < L {
				L = b.Len()
			}
		}
		if L == 0 {
			return nil, ErrEndOfStream
		}
	} else {
		allDone := true
		for _, id := range mu.slotID {
			if !mu.ended[id] {
				allDone = false
				break
			}
		}
		if allDone {
			return nil, ErrEndOfStream
		}
		for _, b := range slotBufs {
			if b.Len() > L {
				L = b.Len()
			}
		}
		if L == 0 {
			L = n
		}
	}
	mu.dtype = dtype

	out := NewBuffer(dtype, L)
	for i := 0; i < L; i++ {
		acc := mu.constant
		for _, b := range slotBufs {
			if b == nil || i >= b.Len() {
				acc *= 1 // one-padded: ended/short multiplicand contributes identity
				continue
			}
			acc *= b.At(i)
		}
		out.Set(i, acc)
	}
	mu.advance(L)
	return out, nil
}
