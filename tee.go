package synth

import (
	"errors"

	"zikichombo.org/sound/freq"
)

// Tee turns one upstream Node into k independent-reader Branch nodes, each
// seeing the identical sample stream. One writer ring buffer backs all
// branches; each Branch holds its own reader cursor into it (spec.md 4.4).
type Tee struct {
	src        Node
	rate       freq.T
	dtype      Dtype
	dtypeSet   bool
	rb         *ring
	branches   []*Branch
	nextID     int
	ended      bool
	maxBacklog int
}

// defaultTeeBacklog bounds how far a starved branch may lag before Tee
// reports BranchOverflowError instead of growing its ring forever.
const defaultTeeBacklog = 1 << 22

// Branch is one reader of a Tee's shared upstream.
type Branch struct {
	base
	tee *reader
	t   *Tee
	idx int
}

// NewTee creates a Tee over src with k initial branches. A single-branch
// Tee is a direct pass-through per spec.md 4.4; extra branches may be added
// later with AddBranch.
func NewTee(src Node, k int) *Tee {
	t := &Tee{src: src, rate: src.SampleRate(), rb: newRing(4096), maxBacklog: defaultTeeBacklog}
	for i := 0; i < k; i++ {
		t.AddBranch()
	}
	return t
}

// AddBranch opens a new Branch reading from the current write position
// onward (it does not see samples already written before it was added).
func (t *Tee) AddBranch() *Branch {
	id := t.nextID
	t.nextID++
	rd := t.rb.newReader(id)
	b := &Branch{base: newBase(t.rate), tee: rd, t: t, idx: len(t.branches)}
	t.branches = append(t.branches, b)
	return b
}

// Branch returns the i'th branch created so far.
func (t *Tee) Branch(i int) *Branch { return t.branches[i] }

// RemoveBranch destroys branch b, closing its reader so the writer no
// longer needs to preserve samples on its account.
func (t *Tee) RemoveBranch(b *Branch) {
	t.rb.closeReader(b.tee)
	out := t.branches[:0]
	for _, x := range t.branches {
		if x != b {
			out = append(out, x)
		}
	}
	t.branches = out
}

// fill pulls from the shared source until every live branch's reader holds
// at least n samples, or the source ends.
func (t *Tee) fill(n int) error {
	if t.ended {
		return nil
	}
	for {
		slowest := n
		for _, b := range t.branches {
			if a := t.rb.available(b.tee); a < slowest {
				slowest = a
			}
		}
		if slowest >= n || len(t.branches) == 0 {
			return nil
		}
		buf, err := t.src.Produce(n)
		L := buf.Len()
		if L > 0 {
			if !t.dtypeSet {
				t.dtype = buf.Dtype
				t.dtypeSet = true
			} else {
				t.dtype = LUB(t.dtype, buf.Dtype)
			}
			cs := make([]complex128, L)
			for i := 0; i < L; i++ {
				cs[i] = buf.At(i)
			}
			if werr := t.rb.writeSamples(cs, t.maxBacklog); werr != nil {
				return t.overflowError(L)
			}
		}
		if err != nil {
			if errors.Is(err, ErrEndOfStream) {
				t.ended = true
				return nil
			}
			return err
		}
		if L == 0 {
			t.ended = true
			return nil
		}
	}
}

// overflowError identifies the most-starved branch for diagnostic purposes.
func (t *Tee) overflowError(writeLen int) error {
	worst := -1
	worstAvail := 0
	for i, b := range t.branches {
		a := t.rb.available(b.tee)
		if worst == -1 || a < worstAvail {
			worst, worstAvail = i, a
		}
	}
	return &BranchOverflowError{Node: "Tee", Branch: worst, ReaderLen: worstAvail, WriteLen: writeLen}
}

func (b *Branch) Produce(n int) (*Buffer, error) {
	if n2, limited := b.remaining(n); limited {
		n = n2
		if n == 0 {
			return nil, ErrEndOfStream
		}
	}
	// Single-branch Tees short-circuit to direct pass-through (spec.md 4.4):
	// no point buffering into the ring when there is only one reader.
	if len(b.t.branches) == 1 && b.t.rb.available(b.tee) == 0 {
		out, err := b.t.src.Produce(n)
		if err == nil {
			b.advance(out.Len())
		}
		return out, err
	}
	if err := b.t.fill(n); err != nil {
		return nil, err
	}
	avail := b.t.rb.available(b.tee)
	want := n
	if avail < want {
		want = avail
	}
	if want == 0 {
		return nil, ErrEndOfStream
	}
	samples := b.t.rb.readSamples(b.tee, want)
	dt := b.t.dtype
	if dt == 0 {
		dt = Real64
	}
	out := NewBuffer(dt, want)
	for i, s := range samples {
		out.Set(i, s)
	}
	b.advance(want)
	return out, nil
}

func (b *Branch) SampleRate() freq.T       { return b.t.rate }
func (b *Branch) Sources() map[string]any  { return map[string]any{"tee": b.t.src} }
func (b *Branch) For(seconds float64) Node { b.setDuration(seconds); return b }
func (b *Branch) Reset()                   { b.reset() }
