package synth

import "zikichombo.org/sound/freq"

// Node is the single required capability of every graph element: pull up to
// n samples of the node's current Dtype, or report ErrEndOfStream once the
// node and everything upstream of it is drained. n is always >= 1; a
// returned Buffer may be shorter than n (a short read) but is never padded
// by the producer itself — combinators decide whether to pad or truncate.
//
// Produce may return the node's own scratch storage; a caller that must
// retain a frame past its next call to Produce on this node should copy it
// with CopyBuffer.
type Node interface {
	Produce(n int) (*Buffer, error)
	SampleRate() freq.T
	Sources() map[string]any
}

// RateSetter is implemented by nodes that can propagate a sample rate
// imposed by a downstream combinator, rather than rejecting the mismatch at
// construction.
type RateSetter interface {
	SetRate(r freq.T) error
}

// Durationer is implemented by nodes that can be bound to a fixed output
// duration in seconds. For returns a node (typically the receiver) that
// stops producing once the duration has elapsed.
type Durationer interface {
	For(seconds float64) Node
}

// Named is implemented by nodes carrying a diagnostic name, used by Graph's
// Describe and by error messages.
type Named interface {
	Name() string
	SetName(s string)
}

// Resetter is implemented by stateful nodes: it returns internal buffers to
// zero and re-arms any For(...) timer, without needing reconstruction.
type Resetter interface {
	Reset()
}

// base is embedded by concrete node types to provide Name/SetName, a
// duration timer, and sample-rate storage without reimplementing the same
// bookkeeping in every file. It mirrors the teacher's node struct in io.go,
// which centralized rate/shape bookkeeping for every IO plug; here the same
// bookkeeping serves every pull Node instead of every push IO.
type base struct {
	name       string
	rate       freq.T
	elapsed    int64
	limitSet   bool
	limitSamp  int64
	defaultLim int64
}

func newBase(r freq.T) base {
	return base{rate: r}
}

func (b *base) Name() string     { return b.name }
func (b *base) SetName(s string) { b.name = s }

func (b *base) SampleRate() freq.T { return b.rate }

// setDuration arms the node's For(...) timer. It is exported to node
// implementations (not external callers) via the lower-case helper so each
// concrete For method can stay short.
func (b *base) setDuration(seconds float64) {
	b.limitSamp = int64(seconds * float64(b.rate/freq.Hertz))
	b.limitSet = true
	b.elapsed = 0
}

// remaining returns how many more samples this node may produce before its
// For(...) duration elapses, and whether a limit is even armed. A node with
// no limit may always produce up to the caller's request.
func (b *base) remaining(n int) (int, bool) {
	if !b.limitSet {
		return n, false
	}
	left := b.limitSamp - b.elapsed
	if left <= 0 {
		return 0, true
	}
	if int64(n) > left {
		n = int(left)
	}
	return n, true
}

func (b *base) advance(n int) {
	if b.limitSet {
		b.elapsed += int64(n)
	}
}

func (b *base) reset() {
	b.elapsed = 0
}
