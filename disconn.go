// Copyright 2024 The Arborsound Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the License file.

package synth

import "fmt"

// DisconnectedError reports a named source port of a combinator that was
// declared but never wired to a producer before the graph was run. ProcNode
// is the only node that returns it, for a named extra with no source.
type DisconnectedError struct {
	Node string
	Port string
}

func (d *DisconnectedError) Error() string {
	return fmt.Sprintf("%s: port %q not connected", d.Node, d.Port)
}

func dce(node, port string) *DisconnectedError {
	return &DisconnectedError{Node: node, Port: port}
}
