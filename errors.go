package synth

import (
	"errors"
	"fmt"

	"zikichombo.org/sound/freq"
)

// ErrEndOfStream is the sentinel a Node's Produce returns once it and
// everything upstream of it has nothing left to give. Nodes return it bare;
// callers may attach context with fmt.Errorf("%w", ...) and
// errors.Is(err, ErrEndOfStream) keeps working.
var ErrEndOfStream = errors.New("synth: end of stream")

// RateMismatchError reports that a combinator was asked to combine sources
// of different sample rates with no way to reconcile them.
type RateMismatchError struct {
	Node string
	Want freq.T
	Got  freq.T
}

func (e *RateMismatchError) Error() string {
	return fmt.Sprintf("%s: rate mismatch: want %s, got %s", e.Node, e.Want, e.Got)
}

// CycleError reports a cycle detected among FilterChain stages or in a
// Graph's node object graph at construction time.
type CycleError struct {
	Node string
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: cycle detected: %v", e.Node, e.Path)
}

// DtypeError reports an unsupported or contradictory dtype combination, such
// as a Quantize step stream whose dtype cannot be reconciled with its input.
type DtypeError struct {
	Node string
	Msg  string
}

func (e *DtypeError) Error() string {
	return fmt.Sprintf("%s: dtype error: %s", e.Node, e.Msg)
}

// FilterGraphError reports a duplicated or cyclic filter kernel in a
// FilterChain or FilterSum.
type FilterGraphError struct {
	Node string
	Msg  string
}

func (e *FilterGraphError) Error() string {
	return fmt.Sprintf("%s: %s", e.Node, e.Msg)
}

// BranchOverflowError reports that a Tee or InputChannelSplit branch was
// starved: a write would have crossed its read tail because some other
// branch (or the branch itself) fell too far behind.
type BranchOverflowError struct {
	Node      string
	Branch    int
	ReaderLen int
	WriteLen  int
}

func (e *BranchOverflowError) Error() string {
	return fmt.Sprintf("%s: branch %d overflow: reader holds %d, write would add %d past capacity",
		e.Node, e.Branch, e.ReaderLen, e.WriteLen)
}

// FatalInvariantError reports a programmer error: double-destroy, sampling
// after destroy, or misuse of VoicePool/GraphVoice internal state.
type FatalInvariantError struct {
	Msg string
}

func (e *FatalInvariantError) Error() string {
	return "synth: fatal invariant violation: " + e.Msg
}
