// Copyright 2024 The Arborsound Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the License file.

package synth

// voiceSampler is the capability a VoicePool worker drives: produce n
// samples of this voice's current output, summed across whatever subgraph
// the voice wraps.
type voiceSampler interface {
	sample(n int) (*Buffer, error)
}

// voiceJob is one request/response round trip between VoicePool.sample and
// a voice's dedicated worker goroutine.
type voiceJob struct {
	n    int
	resp chan voiceResult
}

type voiceResult struct {
	buf *Buffer
	err error
}

// voiceWorker runs one voice on its own goroutine so VoicePool's threaded
// mode can sample every voice in parallel with no shared mutable state
// between voices, per spec.md 4.13's "Threaded mode" and 9's "one worker
// per voice with a bounded request/response channel pair".
//
// This is a direct generalization of the teacher's conn, which ran a
// goroutine shuttling packets between an IO node and its source/sink over
// iC/oC/doneC channels (conn.go). voiceWorker keeps the same shape — one
// request channel, one done channel, a serve loop selecting between them —
// but the payload is a sample-count request and a Buffer/error response
// instead of a *packet, and there is exactly one channel direction (request
// in, response out over a channel carried in the request itself) since a
// voice's only operation is "give me n samples".
type voiceWorker struct {
	voice voiceSampler
	reqC  chan voiceJob
	doneC chan struct{}
}

func newVoiceWorker(v voiceSampler) *voiceWorker {
	w := &voiceWorker{
		voice: v,
		reqC:  make(chan voiceJob),
		doneC: make(chan struct{}),
	}
	go w.serve()
	return w
}

func (w *voiceWorker) serve() {
	for {
		select {
		case <-w.doneC:
			return
		case job := <-w.reqC:
			buf, err := w.voice.sample(job.n)
			select {
			case job.resp <- voiceResult{buf: buf, err: err}:
			case <-w.doneC:
				return
			}
		}
	}
}

// send dispatches a request for n samples and returns immediately with the
// channel the response will arrive on, without blocking for that response.
// Callers fan a request out to every worker with send before collecting any
// of the responses, so the workers' serve loops actually run concurrently
// (spec.md 4.13's "pushes n to each voice's request queue and collects
// buffers" — the push and the collect are two separate passes).
func (w *voiceWorker) send(n int) chan voiceResult {
	resp := make(chan voiceResult, 1)
	w.reqC <- voiceJob{n: n, resp: resp}
	return resp
}

// collect blocks for the response to a request previously started with send.
func (w *voiceWorker) collect(resp chan voiceResult) (*Buffer, error) {
	r := <-resp
	return r.buf, r.err
}

// request performs one blocking round trip: ask the worker for n samples
// and wait for its response. Equivalent to send followed by collect; kept
// for callers that only ever need one voice at a time.
func (w *voiceWorker) request(n int) (*Buffer, error) {
	return w.collect(w.send(n))
}

// stop terminates the worker goroutine. Safe to call more than once.
func (w *voiceWorker) stop() {
	select {
	case <-w.doneC:
		// already stopped
	default:
		close(w.doneC)
	}
}
