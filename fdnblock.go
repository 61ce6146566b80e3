// Copyright 2024 The Arborsound Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the License file.

package synth

// fdnBlock is the internal multi-channel scratch buffer used by Reverb's
// feedback delay network: Channels independent delay lines' worth of
// Frames samples each, stored channel-deinterleaved (channel c occupies
// Samples[c*Frames : (c+1)*Frames]) exactly as the teacher's Block stored
// one processing block of multi-channel audio in io.go.
//
// The teacher used Block to hand a slab of interleaved-by-channel samples
// across the IO/Processor boundary once per call to node.process(). Reverb
// reuses the same shape for the same reason: a Householder mix step needs
// every channel's current frame side by side before it can redistribute
// energy across channels, just as a FullMode Processor needed every input
// channel side by side before it could write every output channel.
type fdnBlock struct {
	Samples  []complex128
	Frames   int
	Channels int
}

// resize ensures Samples can hold Channels*Frames samples, growing with the
// same 5/3 slack the ring buffer uses so repeated same-size calls from a
// steady-state reverb don't reallocate every frame.
func (b *fdnBlock) resize(channels, frames int) {
	b.Channels = channels
	b.Frames = frames
	need := channels * frames
	if cap(b.Samples) < need {
		newCap := need
		if slack := (5 * cap(b.Samples)) / 3; slack > newCap {
			newCap = slack
		}
		tmp := make([]complex128, newCap)
		copy(tmp, b.Samples)
		b.Samples = tmp
	}
	b.Samples = b.Samples[:need]
}

// channel returns the slice of samples belonging to channel c.
func (b *fdnBlock) channel(c int) []complex128 {
	lo := c * b.Frames
	return b.Samples[lo : lo+b.Frames]
}

func (b *fdnBlock) zero() {
	for i := range b.Samples {
		b.Samples[i] = 0
	}
}
