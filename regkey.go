// Copyright 2024 The Arborsound Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the License file.

package synth

import "github.com/google/uuid"

// regkey is a registry assigning a stable identity token to each distinct
// Node added to a combinator, so that adding the same underlying Node more
// than once (Mixer.Add(n, gain) twice, say) resolves to a single upstream
// pull with combined bookkeeping, rather than pulling n twice per frame.
//
// This adapts the teacher's cmap, which mapped IO channel indices to
// positions in a packet's sample slice so that a channel could be read from
// or duplicated into more than one logical position without re-deriving the
// mapping on every packet. Here the keys are Node identity tokens instead of
// channel numbers, and the values are per-source bookkeeping entries instead
// of channel positions.
type regkey struct {
	order []uuid.UUID
	ids   map[Node]uuid.UUID
}

func newRegkey() *regkey {
	return &regkey{ids: make(map[Node]uuid.UUID)}
}

// token returns the identity token for n, minting one and recording
// insertion order the first time n is seen.
func (r *regkey) token(n Node) (id uuid.UUID, fresh bool) {
	if id, ok := r.ids[n]; ok {
		return id, false
	}
	id = uuid.New()
	r.ids[n] = id
	r.order = append(r.order, id)
	return id, true
}

// nodes returns the distinct Nodes in first-registration order.
func (r *regkey) nodes() []Node {
	out := make([]Node, 0, len(r.order))
	seen := make(map[uuid.UUID]Node, len(r.ids))
	for n, id := range r.ids {
		seen[id] = n
	}
	for _, id := range r.order {
		out = append(out, seen[id])
	}
	return out
}

func (r *regkey) len() int { return len(r.order) }
