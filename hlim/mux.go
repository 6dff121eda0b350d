package hlim

import "github.com/sarchlab/hlimgo/bitvec"

// MultiplexerDetail configures a MULTIPLEXER node: the selector width and
// the shared data-path connection type.
type MultiplexerDetail struct {
	SelectorWidth int
	DataType      ConnectionType
}

// CreateMultiplexer appends a multiplexer node. Input 0 is the selector
// (selectorWidth bits); numInputs additional data-path inputs follow, all
// of dataType. The output equals data[selector]; with an undefined
// selector, or a selector exceeding the attached data-path count, the
// output is undefined.
func (c *Circuit) CreateMultiplexer(selectorWidth int, dataType ConnectionType, numInputs int) *Node {
	n := c.createNode(KindMultiplexer, &MultiplexerDetail{SelectorWidth: selectorWidth, DataType: dataType})
	n.addInput("SEL")
	for i := 0; i < numInputs; i++ {
		n.addInput("DATA")
	}
	n.addOutput("OUT", dataType, OutputCombinational)
	return n
}

// selectorType is the connection type a mux's SEL input accepts: the
// canonical BIT type for a two-way mux, a raw BITVEC for wider selectors.
func selectorType(selectorWidth int) ConnectionType {
	if selectorWidth == 1 {
		return BitType()
	}
	return BitVecType(selectorWidth, Raw)
}

func muxCompatible(n *Node, idx int, pt ConnectionType) bool {
	d := n.detail.(*MultiplexerDetail)
	if idx == 0 {
		return dataCompatible(selectorType(d.SelectorWidth), pt)
	}
	return dataCompatible(d.DataType, pt)
}

func muxEvaluate(n *Node, buf *bitvec.State, inOff, outOff []int) {
	d := n.detail.(*MultiplexerDetail)
	width := d.DataType.Width
	numData := len(n.inputs) - 1

	if d.SelectorWidth > 64 || !buf.AllDefined(inOff[0], d.SelectorWidth) {
		buf.ClearRange(bitvec.Defined, outOff[0], width)
		return
	}

	sel, _ := buf.ExtractWord(inOff[0], d.SelectorWidth)
	if int(sel) >= numData {
		buf.ClearRange(bitvec.Defined, outOff[0], width)
		return
	}

	buf.CopyRange(outOff[0], buf, inOff[1+int(sel)], width)
}
