package hlim

import "github.com/sarchlab/hlimgo/bitvec"

// CompareOp enumerates the operations a COMPARE node can perform.
type CompareOp int

const (
	Eq CompareOp = iota
	Neq
	Lt
	Gt
	Leq
	Geq
)

// CompareDetail configures a COMPARE node.
type CompareDetail struct {
	Op      CompareOp
	Width   int
	Numeric NumericKind
}

// CreateCompare appends a two-input COMPARE node with a one-bit BIT output.
// Both inputs must have equal width; numeric selects unsigned or
// two's-complement ordering for the relational operations.
func (c *Circuit) CreateCompare(op CompareOp, width int, numeric NumericKind) *Node {
	n := c.createNode(KindCompare, &CompareDetail{Op: op, Width: width, Numeric: numeric})
	n.addInput("LHS")
	n.addInput("RHS")
	n.addOutput("OUT", BitType(), OutputCombinational)
	return n
}

func compareCompatible(n *Node, idx int, pt ConnectionType) bool {
	d := n.detail.(*CompareDetail)
	return dataCompatible(BitVecType(d.Width, Raw), pt)
}

func compareEvaluate(n *Node, buf *bitvec.State, inOff, outOff []int) {
	d := n.detail.(*CompareDetail)
	width := d.Width

	if width > 64 || !buf.AllDefined(inOff[0], width) || !buf.AllDefined(inOff[1], width) {
		buf.Set(bitvec.Defined, outOff[0], false)
		return
	}

	lv, _ := buf.ExtractWord(inOff[0], width)
	rv, _ := buf.ExtractWord(inOff[1], width)

	var result bool
	switch d.Op {
	case Eq:
		result = lv == rv
	case Neq:
		result = lv != rv
	default:
		result = orderedCompare(d.Op, lv, rv, width, d.Numeric == TwosComplement)
	}

	buf.Set(bitvec.Defined, outOff[0], true)
	buf.Set(bitvec.Value, outOff[0], result)
}

// orderedCompare evaluates the relational operations, which unlike EQ/NEQ
// are not bit-identical between unsigned and two's-complement operands.
func orderedCompare(op CompareOp, lv, rv uint64, width int, signed bool) bool {
	if signed {
		ls, rs := signExtend(lv, width), signExtend(rv, width)
		switch op {
		case Lt:
			return ls < rs
		case Gt:
			return ls > rs
		case Leq:
			return ls <= rs
		case Geq:
			return ls >= rs
		}
		return false
	}
	switch op {
	case Lt:
		return lv < rv
	case Gt:
		return lv > rv
	case Leq:
		return lv <= rv
	case Geq:
		return lv >= rv
	}
	return false
}
