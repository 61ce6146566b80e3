package synth

import (
	"zikichombo.org/sound/freq"
)

// FilterKernel is the external filter collaborator (spec.md 4.12, 6): an
// opaque sample-in/sample-out object. The core never computes filter
// coefficients itself; it only adapts a kernel to the Node protocol.
type FilterKernel interface {
	Process(in []complex128) []complex128
	Reset(steadyValue complex128)
	Response(omega float64) complex128
	SampleRate() freq.T
	SetRate(r freq.T) error
}

// DynamicFilterKernel is a FilterKernel that also accepts sample-by-sample
// parameter streams (e.g. cutoff, quality) alongside its audio input.
type DynamicFilterKernel interface {
	FilterKernel
	DynamicProcess(in []complex128, params ...[]float64) []complex128
}

// SampleWrapper adapts a FilterKernel to the Node protocol (spec.md 4.12):
// it pulls audio from src and, if any parameter streams are registered and
// the kernel supports DynamicProcess, pulls those too and invokes it;
// otherwise it calls Process. Short reads from src propagate unpadded.
type SampleWrapper struct {
	base
	src     Node
	kernel  FilterKernel
	params  []Node
	dtype   Dtype
}

// NewSampleWrapper wraps kernel around src. params are optional per-sample
// parameter source Nodes passed to the kernel's DynamicProcess, in order,
// when kernel implements DynamicFilterKernel.
func NewSampleWrapper(src Node, kernel FilterKernel, params ...Node) (*SampleWrapper, error) {
	if kernel.SampleRate() != src.SampleRate() {
		if err := kernel.SetRate(src.SampleRate()); err != nil {
			return nil, &RateMismatchError{Node: "SampleWrapper", Want: src.SampleRate(), Got: kernel.SampleRate()}
		}
	}
	return &SampleWrapper{base: newBase(src.SampleRate()), src: src, kernel: kernel, params: params, dtype: Real64}, nil
}

func (w *SampleWrapper) Sources() map[string]any {
	out := make(map[string]any, len(w.params)+1)
	out["source"] = w.src
	for i, p := range w.params {
		out[sourceKey(i)] = p
	}
	return out
}

func (w *SampleWrapper) For(seconds float64) Node { w.setDuration(seconds); return w }

func (w *SampleWrapper) Reset() {
	w.reset()
	w.kernel.Reset(0)
	if r, ok := w.src.(Resetter); ok {
		r.Reset()
	}
}

func (w *SampleWrapper) Produce(n int) (*Buffer, error) {
	n2, limited := w.remaining(n)
	if limited && n2 == 0 {
		return nil, ErrEndOfStream
	}
	n = n2

	buf, err := w.src.Produce(n)
	if err != nil {
		return nil, err
	}
	L := buf.Len()
	w.dtype = LUB(w.dtype, buf.Dtype)

	in := make([]complex128, L)
	for i := 0; i < L; i++ {
		in[i] = buf.At(i)
	}

	var outSamples []complex128
	if dyn, ok := w.kernel.(DynamicFilterKernel); ok && len(w.params) > 0 {
		paramSamples := make([][]float64, len(w.params))
		for i, p := range w.params {
			pbuf, perr := p.Produce(L)
			if perr != nil {
				return nil, perr
			}
			ps := make([]float64, L)
			for j := 0; j < L && j < pbuf.Len(); j++ {
				ps[j] = real(pbuf.At(j))
			}
			paramSamples[i] = ps
		}
		outSamples = dyn.DynamicProcess(in, paramSamples...)
	} else {
		outSamples = w.kernel.Process(in)
	}

	out := NewBuffer(w.dtype, len(outSamples))
	for i, v := range outSamples {
		out.Set(i, v)
	}
	w.advance(out.Len())
	return out, nil
}

// FilterChain composes kernels in series, itself satisfying FilterKernel so
// chains can nest. Cycles (a kernel appearing more than once, directly or
// via a nested chain) are rejected at construction.
type FilterChain struct {
	stages []FilterKernel
	rate   freq.T
}

// NewFilterChain builds a chain from stages, in order. Returns
// FilterGraphError if any stage (recursively, through nested FilterChains)
// repeats.
func NewFilterChain(stages ...FilterKernel) (*FilterChain, error) {
	if len(stages) == 0 {
		return nil, &FilterGraphError{Node: "FilterChain", Msg: "no stages"}
	}
	seen := make(map[FilterKernel]bool)
	var walk func(k FilterKernel) error
	walk = func(k FilterKernel) error {
		if seen[k] {
			return &FilterGraphError{Node: "FilterChain", Msg: "duplicate or cyclic kernel"}
		}
		seen[k] = true
		if c, ok := k.(*FilterChain); ok {
			for _, s := range c.stages {
				if err := walk(s); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for _, s := range stages {
		if err := walk(s); err != nil {
			return nil, err
		}
	}
	return &FilterChain{stages: stages, rate: stages[0].SampleRate()}, nil
}

func (c *FilterChain) Process(in []complex128) []complex128 {
	cur := in
	for _, s := range c.stages {
		cur = s.Process(cur)
	}
	return cur
}

func (c *FilterChain) Reset(steadyValue complex128) {
	for _, s := range c.stages {
		s.Reset(steadyValue)
	}
}

func (c *FilterChain) Response(omega float64) complex128 {
	acc := complex(1.0, 0)
	for _, s := range c.stages {
		acc *= s.Response(omega)
	}
	return acc
}

func (c *FilterChain) SampleRate() freq.T { return c.rate }

func (c *FilterChain) SetRate(r freq.T) error {
	for _, s := range c.stages {
		if err := s.SetRate(r); err != nil {
			return err
		}
	}
	c.rate = r
	return nil
}

// FilterSum sums the outputs of several kernels driven by the same input
// (spec.md 4.12). Mismatched sample rates are rejected unless a kernel
// supports SetRate.
type FilterSum struct {
	kernels []FilterKernel
	rate    freq.T
}

func NewFilterSum(kernels ...FilterKernel) (*FilterSum, error) {
	if len(kernels) == 0 {
		return nil, &FilterGraphError{Node: "FilterSum", Msg: "no kernels"}
	}
	rate := kernels[0].SampleRate()
	for _, k := range kernels[1:] {
		if k.SampleRate() != rate {
			if err := k.SetRate(rate); err != nil {
				return nil, &RateMismatchError{Node: "FilterSum", Want: rate, Got: k.SampleRate()}
			}
		}
	}
	return &FilterSum{kernels: kernels, rate: rate}, nil
}

func (s *FilterSum) Process(in []complex128) []complex128 {
	var out []complex128
	for _, k := range s.kernels {
		r := k.Process(in)
		if out == nil {
			out = append([]complex128(nil), r...)
			continue
		}
		for i := range out {
			if i < len(r) {
				out[i] += r[i]
			}
		}
	}
	return out
}

func (s *FilterSum) Reset(steadyValue complex128) {
	for _, k := range s.kernels {
		k.Reset(steadyValue)
	}
}

func (s *FilterSum) Response(omega float64) complex128 {
	var acc complex128
	for _, k := range s.kernels {
		acc += k.Response(omega)
	}
	return acc
}

func (s *FilterSum) SampleRate() freq.T { return s.rate }

func (s *FilterSum) SetRate(r freq.T) error {
	for _, k := range s.kernels {
		if err := k.SetRate(r); err != nil {
			return err
		}
	}
	s.rate = r
	return nil
}
