package hlim

import "github.com/sarchlab/hlimgo/bitvec"

// RewireSliceSource selects where one concatenated slice of a REWIRE
// node's output comes from.
type RewireSliceSource int

const (
	SliceFromInput RewireSliceSource = iota
	SliceConstZero
	SliceConstOne
)

// RewireSlice is one entry of a REWIRE node's configured output: either a
// [Offset, Offset+Width) range of input InputIndex, or a constant run of
// zeros/ones.
type RewireSlice struct {
	Source     RewireSliceSource
	InputIndex int
	Offset     int
	Width      int
}

// RewireDetail configures a REWIRE node: N inputs and an ordered list of
// output slices whose concatenation forms the output.
type RewireDetail struct {
	Slices     []RewireSlice
	InputTypes []ConnectionType
}

func (d *RewireDetail) outputWidth() int {
	w := 0
	for _, s := range d.Slices {
		w += s.Width
	}
	return w
}

// CreateRewire appends an N-input, one-output REWIRE node. inputTypes gives
// the connection type each input must accept; slices describe the ordered
// concatenation making up the output, which is always a raw BITVEC of the
// sum of slice widths.
func (c *Circuit) CreateRewire(inputTypes []ConnectionType, slices []RewireSlice) *Node {
	d := &RewireDetail{Slices: slices, InputTypes: inputTypes}
	n := c.createNode(KindRewire, d)
	for range inputTypes {
		n.addInput("IN")
	}
	n.addOutput("OUT", BitVecType(d.outputWidth(), Raw), OutputCombinational)
	return n
}

// IsSingleBitExtraction reports the special case of a rewire whose entire
// output is one bit taken from input 0, which the VHDL emitter renders as
// indexed access rather than a generic concatenation.
func (d *RewireDetail) IsSingleBitExtraction() bool {
	return len(d.Slices) == 1 &&
		d.Slices[0].Source == SliceFromInput &&
		d.Slices[0].InputIndex == 0 &&
		d.Slices[0].Width == 1
}

// IsIdentity reports whether the rewire's configured output is bit-identical
// to its single input: exactly one input, one slice, covering the whole
// input width starting at offset 0.
func (d *RewireDetail) IsIdentity() bool {
	return len(d.InputTypes) == 1 && len(d.Slices) == 1 &&
		d.Slices[0].Source == SliceFromInput &&
		d.Slices[0].InputIndex == 0 &&
		d.Slices[0].Offset == 0 &&
		d.Slices[0].Width == d.InputTypes[0].Width
}

func rewireCompatible(n *Node, idx int, pt ConnectionType) bool {
	d := n.detail.(*RewireDetail)
	return dataCompatible(d.InputTypes[idx], pt)
}

func rewireEvaluate(n *Node, buf *bitvec.State, inOff, outOff []int) {
	d := n.detail.(*RewireDetail)
	cursor := outOff[0]
	for _, s := range d.Slices {
		switch s.Source {
		case SliceFromInput:
			buf.CopyRange(cursor, buf, inOff[s.InputIndex]+s.Offset, s.Width)
		case SliceConstZero:
			buf.SetRange(bitvec.Defined, cursor, s.Width, true)
			buf.SetRange(bitvec.Value, cursor, s.Width, false)
		case SliceConstOne:
			buf.SetRange(bitvec.Defined, cursor, s.Width, true)
			buf.SetRange(bitvec.Value, cursor, s.Width, true)
		}
		cursor += s.Width
	}
}
