package hlim

import "github.com/sarchlab/hlimgo/bitvec"

// LogicOp enumerates the bitwise operations a LOGIC node can perform. NOT
// is unary; every other operation is binary.
type LogicOp int

const (
	And LogicOp = iota
	Nand
	Or
	Nor
	Xor
	Xnor
	Not
)

// LogicDetail configures a LOGIC node.
type LogicDetail struct {
	Op LogicOp
}

// CreateLogic appends a LOGIC node: unary for Not, binary otherwise. All
// inputs must have equal width; the output matches the input width. A
// width of 1 produces the canonical BIT type, so boolean logic composes
// directly with comparisons, mux selectors, and register enables; wider
// widths produce a raw BITVEC for bitwise use.
func (c *Circuit) CreateLogic(op LogicOp, width int, numeric NumericKind) *Node {
	n := c.createNode(KindLogic, &LogicDetail{Op: op})
	n.addInput("A")
	if op != Not {
		n.addInput("B")
	}
	n.addOutput("OUT", logicType(width, numeric), OutputCombinational)
	return n
}

func logicType(width int, numeric NumericKind) ConnectionType {
	if width == 1 {
		return BitType()
	}
	return BitVecType(width, numeric)
}

func logicCompatible(n *Node, idx int, pt ConnectionType) bool {
	return dataCompatible(n.outputs[0].connType, pt)
}

// logicEvaluate applies a two-valued (value,defined) logic rule bit by bit,
// honoring four-valued absorption: AND(x,0)=0 and OR(x,1)=1 regardless of
// the definedness of x.
func logicEvaluate(n *Node, buf *bitvec.State, inOff, outOff []int) {
	d := n.detail.(*LogicDetail)
	width := n.outputs[0].connType.Width

	for i := 0; i < width; i++ {
		aDef := buf.Get(bitvec.Defined, inOff[0]+i)
		aVal := buf.Get(bitvec.Value, inOff[0]+i)

		if d.Op == Not {
			if !aDef {
				buf.Set(bitvec.Defined, outOff[0]+i, false)
				continue
			}
			buf.Set(bitvec.Defined, outOff[0]+i, true)
			buf.Set(bitvec.Value, outOff[0]+i, !aVal)
			continue
		}

		bDef := buf.Get(bitvec.Defined, inOff[1]+i)
		bVal := buf.Get(bitvec.Value, inOff[1]+i)

		def, val := binaryLogicBit(d.Op, aDef, aVal, bDef, bVal)
		buf.Set(bitvec.Defined, outOff[0]+i, def)
		buf.Set(bitvec.Value, outOff[0]+i, val)
	}
}

func binaryLogicBit(op LogicOp, aDef, aVal, bDef, bVal bool) (def, val bool) {
	switch op {
	case And, Nand:
		// A defined 0 on either side forces the AND result to 0
		// regardless of the other side's definedness.
		if (aDef && !aVal) || (bDef && !bVal) {
			return true, op == Nand
		}
		if !aDef || !bDef {
			return false, false
		}
		return true, (aVal && bVal) == (op == And)
	case Or, Nor:
		if (aDef && aVal) || (bDef && bVal) {
			return true, op == Or
		}
		if !aDef || !bDef {
			return false, false
		}
		return true, (aVal || bVal) == (op == Or)
	case Xor, Xnor:
		if !aDef || !bDef {
			return false, false
		}
		return true, (aVal != bVal) == (op == Xor)
	}
	return false, false
}
