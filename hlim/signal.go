package hlim

import "github.com/sarchlab/hlimgo/bitvec"

// CreateSignal appends a pure rename node: one input, one output of
// identical type. Signals exist to carry names, comments, and grouping
// through the IR; unnamed signals are eligible for removal by the
// optimizer.
func (c *Circuit) CreateSignal(inputType ConnectionType) *Node {
	n := c.createNode(KindSignal, nil)
	n.addInput("IN")
	n.addOutput("OUT", inputType, OutputCombinational)
	return n
}

func signalCompatible(n *Node, idx int, pt ConnectionType) bool {
	return dataCompatible(n.outputs[0].connType, pt)
}

func signalEvaluate(n *Node, buf *bitvec.State, inOff, outOff []int) {
	width := n.outputs[0].connType.Width
	buf.CopyRange(outOff[0], buf, inOff[0], width)
}
