package hlim

import "github.com/sarchlab/hlimgo/bitvec"

// PriorityConditionalDetail configures a PRIORITY_CONDITIONAL node: the
// number of (condition, value) pairs and the shared value connection type.
type PriorityConditionalDetail struct {
	NumChoices int
	ValueType  ConnectionType
}

// CreatePriorityConditional appends a node with input 0 as the default
// value, followed by numChoices (condition, value) input pairs. The output
// equals value_k for the smallest k whose condition is 1; if no condition
// fires, the output is the default; if any condition examined before a
// firing one is undefined, the output is undefined.
func (c *Circuit) CreatePriorityConditional(valueType ConnectionType, numChoices int) *Node {
	n := c.createNode(KindPriorityConditional, &PriorityConditionalDetail{NumChoices: numChoices, ValueType: valueType})
	n.addInput("DEFAULT")
	for i := 0; i < numChoices; i++ {
		n.addInput("COND")
		n.addInput("VALUE")
	}
	n.addOutput("OUT", valueType, OutputCombinational)
	return n
}

func priorityCompatible(n *Node, idx int, pt ConnectionType) bool {
	d := n.detail.(*PriorityConditionalDetail)
	if idx == 0 {
		return dataCompatible(d.ValueType, pt)
	}
	rel := (idx - 1) % 2
	if rel == 0 {
		return bitCompatible(pt)
	}
	return dataCompatible(d.ValueType, pt)
}

func priorityEvaluate(n *Node, buf *bitvec.State, inOff, outOff []int) {
	d := n.detail.(*PriorityConditionalDetail)
	width := d.ValueType.Width

	for k := 0; k < d.NumChoices; k++ {
		condOff := inOff[1+2*k]
		valOff := inOff[2+2*k]

		if !buf.Get(bitvec.Defined, condOff) {
			buf.ClearRange(bitvec.Defined, outOff[0], width)
			return
		}
		if buf.Get(bitvec.Value, condOff) {
			buf.CopyRange(outOff[0], buf, valOff, width)
			return
		}
	}

	buf.CopyRange(outOff[0], buf, inOff[0], width)
}
