// Copyright 2024 The Arborsound Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the License file.

// Package synth provides a pull-based, block-oriented signal graph for audio
// synthesis, filtering, and MIDI-driven instruments.
//
// Unlike a push pipeline, evaluation is driven entirely by a downstream
// Produce call. A sink calls Produce(n) on its terminal node; that node
// recursively pulls from its own sources, adapting block sizes and sample
// rates as needed, until every leaf Constant, Delay, or external collaborator
// has contributed its share of the next frame.
//
// Node contract
//
// The single required capability of every graph element is Node: Produce(n)
// returns up to n samples of the node's dtype, or ErrEndOfStream once the node and
// everything upstream of it has nothing left to give. Nodes may optionally
// implement RateSetter, Durationer, Named, or Resetter; combinators query for
// these via type assertion rather than requiring a fatter interface.
//
// Combinators
//
// Mixer, Multiplier, and MatrixMixer fan multiple sources into one or more
// outputs; Tee and InputChannelSplit fan a single source out to independent
// readers. BufferAdapter, NodeSequence, Quantize, and the complex-component
// extractor decouple block size, sequence sources, and post-process samples.
// Delay, MultitapDelay, Resampler, the filter-kernel adapters, Reverb, and the
// MIDI-driven VoicePool are built on top of these primitives.
package synth // import "github.com/arborsound/synth"
