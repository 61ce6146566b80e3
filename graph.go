// Copyright 2024 The Arborsound Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the License file.

package synth

import (
	"fmt"
	"sort"
	"strings"
)

// Graph is a read-only view over a constructed subgraph, built by walking
// Sources() from one or more roots. It supports the diagnostic operations
// spec.md 2 and 9 call out: topological enumeration, cycle detection, and a
// typed visitor GraphVoice uses to discover oscillators and envelopes.
//
// The teacher's Graph (graph.go) tracked a slice of IO plugs it had created
// and offered CheckConnectivity, which walked that slice asking each node to
// verify its own ins/outs were wired. Graph here is built by walking the
// pull Sources() edges from given roots instead of from a registration list,
// and generalizes "check connectivity" into full topological order plus
// cycle detection, exactly as spec.md 9 asks for.
type Graph struct {
	roots []Node
	order []Node       // topological order, roots last
	index map[Node]int // position of each node in order; unvisited nodes are absent
	cyc   [][]Node     // any cycles found (node-object-graph cycles should not occur per spec.md 3, but FilterChain/MatrixMixer misuse can still create Sources() loops)
}

// BuildGraph walks Sources() from roots and returns the resulting Graph.
func BuildGraph(roots ...Node) *Graph {
	g := &Graph{roots: roots, index: make(map[Node]int)}
	state := make(map[Node]int) // 0=unvisited 1=visiting 2=done
	var path []Node
	var visit func(n Node)
	visit = func(n Node) {
		switch state[n] {
		case 2:
			return
		case 1:
			// found a cycle: path[...]->n
			cyc := append([]Node{}, path...)
			cyc = append(cyc, n)
			g.cyc = append(g.cyc, cyc)
			return
		}
		state[n] = 1
		path = append(path, n)
		srcs := n.Sources()
		keys := make([]string, 0, len(srcs))
		for k := range srcs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if child, ok := srcs[k].(Node); ok {
				visit(child)
			}
		}
		path = path[:len(path)-1]
		state[n] = 2
		g.index[n] = len(g.order)
		g.order = append(g.order, n)
	}
	for _, r := range roots {
		if r != nil {
			visit(r)
		}
	}
	return g
}

// Order returns nodes in topological order (every source of a node appears
// before it).
func (g *Graph) Order() []Node { return g.order }

// Cycles returns every cycle BuildGraph detected. A well-formed graph built
// per spec.md 3's invariant ("no graph cycles in the node object graph;
// feedback happens through named buffers instead") has none.
func (g *Graph) Cycles() [][]Node { return g.cyc }

// CheckAcyclic is the generalized form of the teacher's CheckConnectivity:
// rather than checking that each IO's channel counts are all wired, it
// returns a CycleError describing the first cycle found, or nil.
func (g *Graph) CheckAcyclic() error {
	if len(g.cyc) == 0 {
		return nil
	}
	cyc := g.cyc[0]
	names := make([]string, len(cyc))
	for i, n := range cyc {
		names[i] = describeNode(n)
	}
	return &CycleError{Node: "Graph", Path: names}
}

// Walk calls fn once for every node in topological order.
func (g *Graph) Walk(fn func(Node)) {
	for _, n := range g.order {
		fn(n)
	}
}

// FindByRole returns every node in the graph for which match returns true;
// GraphVoice uses this with role-matching predicates to discover
// oscillators, envelopes, and frequency constants (spec.md 4.14, 9).
func (g *Graph) FindByRole(match func(Node) bool) []Node {
	var out []Node
	for _, n := range g.order {
		if match(n) {
			out = append(out, n)
		}
	}
	return out
}

// Describe renders a human-readable topological listing, one line per node,
// naming it (via Named, if implemented) and its immediate sources.
func (g *Graph) Describe() string {
	var b strings.Builder
	for i, n := range g.order {
		fmt.Fprintf(&b, "%d: %s\n", i, describeNode(n))
		srcs := n.Sources()
		keys := make([]string, 0, len(srcs))
		for k := range srcs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch v := srcs[k].(type) {
			case Node:
				fmt.Fprintf(&b, "    %s -> %s\n", k, describeNode(v))
			default:
				fmt.Fprintf(&b, "    %s = %v\n", k, v)
			}
		}
	}
	return b.String()
}

func describeNode(n Node) string {
	if named, ok := n.(Named); ok && named.Name() != "" {
		return fmt.Sprintf("%T(%s)", n, named.Name())
	}
	return fmt.Sprintf("%T", n)
}
