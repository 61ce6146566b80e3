package synth

import (
	"errors"

	"zikichombo.org/sound/freq"
)

// matrixFrame caches one downstream frame's worth of pulled input buffers,
// shared across every MatrixOutput so the N inputs are pulled exactly once
// per frame regardless of how many of the M outputs are read (spec.md 4.3,
// 5).
type matrixFrame struct {
	bufs  []*Buffer
	L     int
	dtype Dtype
}

// MatrixMixer has N input nodes and M outputs driven by a static M×N
// matrix: output j = sum_i matrix[j][i] * input_i. Each output is its own
// Node (MatrixOutput); MatrixMixer itself is not a Node.
type MatrixMixer struct {
	rate    freq.T
	inputs  []Node
	matrix  [][]complex128
	dtype   Dtype
	cache   *matrixFrame
	served  map[int]bool
	outputs []*MatrixOutput
	ended   bool
}

// NewMatrixMixer creates a MatrixMixer over inputs with the given M×N
// matrix (M rows, one per output; N columns, one per input) and returns its
// M MatrixOutput nodes.
func NewMatrixMixer(inputs []Node, matrix [][]complex128) (*MatrixMixer, []*MatrixOutput, error) {
	if len(inputs) == 0 {
		return nil, nil, &DtypeError{Node: "MatrixMixer", Msg: "no inputs"}
	}
	rate := inputs[0].SampleRate()
	dtype := Real64
	for _, in := range inputs {
		if in.SampleRate() != rate {
			return nil, nil, &RateMismatchError{Node: "MatrixMixer", Want: rate, Got: in.SampleRate()}
		}
		dtype = LUB(dtype, Real64) // inputs promote lazily per-frame below
	}
	for _, row := range matrix {
		if len(row) != len(inputs) {
			return nil, nil, &DtypeError{Node: "MatrixMixer", Msg: "matrix row width must equal input count"}
		}
	}
	mm := &MatrixMixer{
		rate:   rate,
		inputs: inputs,
		matrix: matrix,
		dtype:  dtype,
		served: make(map[int]bool),
	}
	mm.outputs = make([]*MatrixOutput, len(matrix))
	for j, row := range matrix {
		rowDtype := Real64
		for _, gain := range row {
			rowDtype = LUB(rowDtype, dtypeOf(gain))
		}
		mm.outputs[j] = &MatrixOutput{base: newBase(rate), mm: mm, j: j, rowDtype: rowDtype}
	}
	return mm, mm.outputs, nil
}

// MatrixOutput is one row's worth of output from a MatrixMixer.
type MatrixOutput struct {
	base
	mm *MatrixMixer
	j  int
	// rowDtype is the LUB over this row's own matrix coefficients (spec.md
	// 4.3's "gains" term of the promotion rule), folded into the frame's
	// input-derived dtype at Produce time so a complex gain over real
	// inputs promotes the output instead of panicking on Set.
	rowDtype Dtype
}

func (o *MatrixOutput) Sources() map[string]any {
	out := make(map[string]any, len(o.mm.inputs))
	for i, in := range o.mm.inputs {
		out[sourceKey(i)] = in
	}
	return out
}

func (o *MatrixOutput) Produce(n int) (*Buffer, error) {
	n2, limited := o.remaining(n)
	if limited && n2 == 0 {
		return nil, ErrEndOfStream
	}
	n = n2
	mm := o.mm
	if mm.ended {
		return nil, ErrEndOfStream
	}
	if mm.served[o.j] {
		// output j is being sampled again before every other output caught
		// up with the current frame: start a fresh frame (spec.md 4.3).
		mm.cache = nil
		for k := range mm.served {
			delete(mm.served, k)
		}
	}
	if mm.cache == nil {
		f, err := mm.pullFrame(n)
		if err != nil {
			if errors.Is(err, ErrEndOfStream) {
				mm.ended = true
			}
			return nil, err
		}
		mm.cache = f
	}
	f := mm.cache
	mm.served[o.j] = true

	row := mm.matrix[o.j]
	out := NewBuffer(LUB(f.dtype, o.rowDtype), f.L)
	for i := 0; i < f.L; i++ {
		var acc complex128
		for k, b := range f.bufs {
			if i < b.Len() {
				acc += row[k] * b.At(i)
			}
		}
		out.Set(i, acc)
	}
	o.advance(f.L)
	return out, nil
}

func (mm *MatrixMixer) pullFrame(n int) (*matrixFrame, error) {
	bufs := make([]*Buffer, len(mm.inputs))
	dtype := mm.dtype
	L := n
	for i, in := range mm.inputs {
		b, err := in.Produce(n)
		if err != nil {
			if !errors.Is(err, ErrEndOfStream) {
				return nil, err
			}
			return nil, ErrEndOfStream
		}
		if b.Len() == 0 {
			return nil, ErrEndOfStream
		}
		bufs[i] = b
		if b.Len() < L {
			L = b.Len()
		}
		dtype = LUB(dtype, b.Dtype)
	}
	mm.dtype = dtype
	return &matrixFrame{bufs: bufs, L: L, dtype: dtype}, nil
}

func (o *MatrixOutput) For(seconds float64) Node { o.setDuration(seconds); return o }

func (o *MatrixOutput) Reset() {
	o.reset()
	if o.j == 0 {
		o.mm.cache = nil
		o.mm.ended = false
		for k := range o.mm.served {
			delete(o.mm.served, k)
		}
		for _, in := range o.mm.inputs {
			if r, ok := in.(Resetter); ok {
				r.Reset()
			}
		}
	}
}
