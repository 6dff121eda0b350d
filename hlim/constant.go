package hlim

import "github.com/sarchlab/hlimgo/bitvec"

// ConstantDetail holds the literal value of a CONSTANT node.
type ConstantDetail struct {
	Literal *bitvec.State
}

// CreateConstant appends a zero-input, one-output CONSTANT node whose
// output is fixed at construction to literal. On reset it writes literal
// into the output region.
func (c *Circuit) CreateConstant(literal *bitvec.State, numeric NumericKind) *Node {
	ct := BitVecType(literal.Size(), numeric)
	n := c.createNode(KindConstant, &ConstantDetail{Literal: literal})
	n.addOutput("OUT", ct, OutputConstant)
	return n
}

func constantReset(n *Node, buf *bitvec.State, outOff []int) {
	d := n.detail.(*ConstantDetail)
	buf.Insert(outOff[0], d.Literal)
}
