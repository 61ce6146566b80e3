package synth

// allpassStage is one Schroeder allpass diffuser: y[n] = -g*x[n] + x[n-D] +
// g*y[n-D]. A chain of a few of these smears a transient into a dense
// pattern before it enters the feedback delay network proper.
type allpassStage struct {
	buf []complex128
	pos int
	g   complex128
}

func newAllpassStage(delayLen int, g complex128) *allpassStage {
	if delayLen < 1 {
		delayLen = 1
	}
	return &allpassStage{buf: make([]complex128, delayLen), g: g}
}

func (a *allpassStage) step(x complex128) complex128 {
	delayed := a.buf[a.pos]
	y := -a.g*x + delayed
	a.buf[a.pos] = x + a.g*y
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return y
}

func (a *allpassStage) reset() {
	for i := range a.buf {
		a.buf[i] = 0
	}
	a.pos = 0
}

// Reverb is a multi-channel feedback delay network (spec.md 4.2's
// OVERVIEW table entry, detailed design per §9's FDN note): a short chain of
// allpass diffusers feeds N delay lines whose outputs are mixed back into
// their inputs through a Householder reflection, a lossless N-channel mix
// that redistributes energy across lines without amplifying it.
type Reverb struct {
	base
	src Node

	diffusion []*allpassStage

	lines     int
	delayLen  []int
	buf       *fdnBlock
	writePos  []int
	dampState []complex128
	dampCoeff float64

	feedbackGain  float64
	diffusionGain float64 // left unnormalized per design decision, see DESIGN.md

	dtype    Dtype
	dtypeSet bool
}

// NewReverb creates a Reverb over src with one delay line per entry of
// delayLensSamples (a Householder mix needs at least two lines to do
// anything), a shared feedback gain and one-pole damping coefficient
// applied in the feedback path, and diffusionGain scaling how much of the
// diffused input each line's delay receives per sample.
func NewReverb(src Node, diffusionDelays []int, diffusionGainStage float64, delayLensSamples []int, feedbackGain, dampCoeff, diffusionGain float64) *Reverb {
	lines := len(delayLensSamples)
	maxLen := 1
	for _, d := range delayLensSamples {
		if d > maxLen {
			maxLen = d
		}
	}
	buf := &fdnBlock{}
	buf.resize(lines, maxLen)
	buf.zero()

	diffusion := make([]*allpassStage, len(diffusionDelays))
	for i, d := range diffusionDelays {
		diffusion[i] = newAllpassStage(d, complex(diffusionGainStage, 0))
	}

	return &Reverb{
		base:          newBase(src.SampleRate()),
		src:           src,
		diffusion:     diffusion,
		lines:         lines,
		delayLen:      append([]int(nil), delayLensSamples...),
		buf:           buf,
		writePos:      make([]int, lines),
		dampState:     make([]complex128, lines),
		dampCoeff:     dampCoeff,
		feedbackGain:  feedbackGain,
		diffusionGain: diffusionGain,
		dtype:         Real64,
	}
}

func (r *Reverb) Sources() map[string]any { return map[string]any{"source": r.src} }

func (r *Reverb) For(seconds float64) Node { r.setDuration(seconds); return r }

func (r *Reverb) Reset() {
	r.reset()
	r.buf.zero()
	for i := range r.writePos {
		r.writePos[i] = 0
		r.dampState[i] = 0
	}
	for _, d := range r.diffusion {
		d.reset()
	}
	if rs, ok := r.src.(Resetter); ok {
		rs.Reset()
	}
}

func (r *Reverb) Produce(n int) (*Buffer, error) {
	n2, limited := r.remaining(n)
	if limited && n2 == 0 {
		return nil, ErrEndOfStream
	}
	n = n2

	in, err := r.src.Produce(n)
	if err != nil {
		return nil, err
	}
	L := in.Len()
	r.dtype = LUB(r.dtype, in.Dtype)

	out := NewBuffer(r.dtype, L)
	lines := r.lines
	y := make([]complex128, lines)
	damped := make([]complex128, lines)
	mixed := make([]complex128, lines)
	hFactor := complex(2.0/float64(lines), 0)

	for i := 0; i < L; i++ {
		x := in.At(i)
		for _, d := range r.diffusion {
			x = d.step(x)
		}

		var sum complex128
		for c := 0; c < lines; c++ {
			row := r.buf.channel(c)
			idx := r.writePos[c] % r.delayLen[c]
			y[c] = row[idx]

			st := complex(r.dampCoeff, 0)*r.dampState[c] + complex(1-r.dampCoeff, 0)*y[c]
			r.dampState[c] = st
			damped[c] = st
			sum += st
		}
		for c := 0; c < lines; c++ {
			mixed[c] = damped[c] - hFactor*sum
		}
		for c := 0; c < lines; c++ {
			row := r.buf.channel(c)
			idx := r.writePos[c] % r.delayLen[c]
			row[idx] = x*complex(r.diffusionGain, 0) + mixed[c]*complex(r.feedbackGain, 0)
			r.writePos[c]++
		}

		var outv complex128
		for _, v := range y {
			outv += v
		}
		out.Set(i, outv/complex(float64(lines), 0))
	}
	r.advance(L)
	return out, nil
}
