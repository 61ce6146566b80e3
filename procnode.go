// Copyright 2024 The Arborsound Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the License file.

package synth

import (
	"errors"
	"fmt"
)

// ProcFunc computes an output block from a primary input block and any
// named extra input blocks. It may assume len(out) == len(in) unless a
// short read from the primary occurred, in which case out has already been
// sized to match by ProcNode before the call; ProcFunc need only fill it.
type ProcFunc func(out, in *Buffer, extras map[string]*Buffer) error

// ProcNode adapts the teacher's Processor/ProcFunc split (proc.go) from the
// IO tier's push model to the pull Node model: instead of IO driving
// NextFrames()/Process() on a fixed cadence, a ProcNode's Produce pulls a
// requested block from its primary source, pulls the same count from every
// named extra, and then hands all of it to a single user function in one
// call — the "named extras" generalizing the teacher's channel-indexed
// inputs into named rather than positional ports.
type ProcNode struct {
	base
	primary        Node
	extraNames     []string
	extras         map[string]Node
	fn             ProcFunc
	dtype          Dtype
	stopEarly      bool
	primaryEnded   bool
	extrasEnded    map[string]bool
}

// NewProcNode creates a ProcNode pulling from primary and the named
// requiredExtras (which must each be wired with SetExtra before the first
// Produce call), applying fn to produce a dt-typed output block.
func NewProcNode(primary Node, requiredExtras []string, fn ProcFunc, dt Dtype, stopEarly bool) *ProcNode {
	return &ProcNode{
		base:         newBase(primary.SampleRate()),
		primary:      primary,
		extraNames:   append([]string(nil), requiredExtras...),
		extras:       make(map[string]Node, len(requiredExtras)),
		fn:           fn,
		dtype:        dt,
		stopEarly:    stopEarly,
		extrasEnded:  make(map[string]bool, len(requiredExtras)),
	}
}

// SetExtra wires a declared named extra input to a producing Node. name
// must have been listed in requiredExtras at construction.
func (p *ProcNode) SetExtra(name string, n Node) error {
	found := false
	for _, want := range p.extraNames {
		if want == name {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("synth: ProcNode has no declared extra %q", name)
	}
	if n.SampleRate() != p.rate {
		return &RateMismatchError{Node: "ProcNode", Want: p.rate, Got: n.SampleRate()}
	}
	p.extras[name] = n
	return nil
}

func (p *ProcNode) Sources() map[string]any {
	m := map[string]any{"primary": p.primary}
	for name, n := range p.extras {
		m[name] = n
	}
	return m
}

func (p *ProcNode) Produce(n int) (*Buffer, error) {
	for _, name := range p.extraNames {
		if _, ok := p.extras[name]; !ok {
			return nil, dce("ProcNode", name)
		}
	}
	if n, limited := p.remaining(n); limited && n == 0 {
		return nil, ErrEndOfStream
	} else {
		return p.produce(n)
	}
}

func (p *ProcNode) produce(n int) (*Buffer, error) {
	in, err := p.primary.Produce(n)
	inLen := in.Len()
	if err != nil {
		if !errors.Is(err, ErrEndOfStream) {
			return nil, err
		}
		p.primaryEnded = true
		if p.stopEarly {
			return nil, ErrEndOfStream
		}
	}

	extraBufs := make(map[string]*Buffer, len(p.extraNames))
	want := n
	if inLen > 0 && inLen < want {
		want = inLen
	}
	for _, name := range p.extraNames {
		src := p.extras[name]
		eb, eerr := src.Produce(want)
		if eerr != nil {
			if !errors.Is(eerr, ErrEndOfStream) {
				return nil, eerr
			}
			p.extrasEnded[name] = true
			if p.stopEarly {
				return nil, ErrEndOfStream
			}
		}
		extraBufs[name] = eb
	}

	if p.stopEarly {
		// every source must agree on the same length for this frame
		L := inLen
		for _, eb := range extraBufs {
			if eb.Len() < L {
				L = eb.Len()
			}
		}
		if L == 0 {
			return nil, ErrEndOfStream
		}
		in = truncateTo(in, L)
		for name, eb := range extraBufs {
			extraBufs[name] = truncateTo(eb, L)
		}
		n = L
	} else {
		if p.primaryEnded && allEnded(p.extrasEnded, p.extraNames) {
			return nil, ErrEndOfStream
		}
		L := inLen
		for _, eb := range extraBufs {
			if eb.Len() > L {
				L = eb.Len()
			}
		}
		if L == 0 {
			L = n
		}
		in = zeroPadTo(in, p.dtype, L)
		for name, eb := range extraBufs {
			extraBufs[name] = zeroPadTo(eb, p.dtype, L)
		}
		n = L
	}

	out := NewBuffer(p.dtype, n)
	if err := p.fn(out, in, extraBufs); err != nil {
		return nil, err
	}
	p.advance(n)
	return out, nil
}

func (p *ProcNode) Reset() {
	p.reset()
	p.primaryEnded = false
	for k := range p.extrasEnded {
		delete(p.extrasEnded, k)
	}
	if r, ok := p.primary.(Resetter); ok {
		r.Reset()
	}
}

func (p *ProcNode) For(seconds float64) Node {
	p.setDuration(seconds)
	return p
}

func allEnded(ended map[string]bool, names []string) bool {
	for _, name := range names {
		if !ended[name] {
			return false
		}
	}
	return true
}
