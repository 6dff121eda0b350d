package hlim

import "github.com/sarchlab/hlimgo/bitvec"

// ArithmeticOp enumerates the operations an ARITHMETIC node can perform.
type ArithmeticOp int

const (
	Add ArithmeticOp = iota
	Sub
	Mul
	Div
	Rem
)

// ArithmeticDetail configures an ARITHMETIC node.
type ArithmeticDetail struct {
	Op ArithmeticOp
}

// CreateArithmetic appends a two-input, one-output ARITHMETIC node. Both
// inputs must have equal width; the output width equals the input width
// (no growth).
func (c *Circuit) CreateArithmetic(op ArithmeticOp, width int, numeric NumericKind) *Node {
	n := c.createNode(KindArithmetic, &ArithmeticDetail{Op: op})
	n.addInput("LHS")
	n.addInput("RHS")
	n.addOutput("OUT", BitVecType(width, numeric), OutputCombinational)
	return n
}

func arithmeticCompatible(n *Node, idx int, pt ConnectionType) bool {
	return dataCompatible(n.outputs[0].connType, pt)
}

func arithmeticEvaluate(n *Node, buf *bitvec.State, inOff, outOff []int) {
	d := n.detail.(*ArithmeticDetail)
	width := n.outputs[0].connType.Width

	if !buf.AllDefined(inOff[0], width) || !buf.AllDefined(inOff[1], width) {
		buf.ClearRange(bitvec.Defined, outOff[0], width)
		return
	}

	lv, _ := buf.ExtractWord(inOff[0], min64(width, 64))
	rv, _ := buf.ExtractWord(inOff[1], min64(width, 64))
	if width > 64 {
		// Arbitrary-width arithmetic beyond one machine word is out of
		// scope for this evaluator; widths above 64 bits fall back to
		// leaving the result undefined rather than silently truncating.
		buf.ClearRange(bitvec.Defined, outOff[0], width)
		return
	}

	// ADD/SUB/MUL are bit-identical under both interpretations modulo the
	// output width; DIV/REM are not, so they honor the two's-complement
	// hint on the connection type.
	signed := n.outputs[0].connType.Numeric == TwosComplement

	var result uint64
	switch d.Op {
	case Add:
		result = lv + rv
	case Sub:
		result = lv - rv
	case Mul:
		result = lv * rv
	case Div:
		if rv == 0 {
			buf.ClearRange(bitvec.Defined, outOff[0], width)
			return
		}
		if signed {
			result = signedDivRem(lv, rv, width, false)
		} else {
			result = lv / rv
		}
	case Rem:
		if rv == 0 {
			buf.ClearRange(bitvec.Defined, outOff[0], width)
			return
		}
		if signed {
			result = signedDivRem(lv, rv, width, true)
		} else {
			result = lv % rv
		}
	}

	mask := uint64(1)<<uint(width) - 1
	if width == 64 {
		mask = ^uint64(0)
	}
	buf.InsertWord(outOff[0], width, result&mask, mask)
}

// signExtend reinterprets the low width bits of v as a two's-complement
// value.
func signExtend(v uint64, width int) int64 {
	shift := uint(64 - width)
	return int64(v<<shift) >> shift
}

// signedDivRem computes a truncating two's-complement quotient or
// remainder. The one overflowing case, minimum-value / -1 at full 64-bit
// width, wraps to the dividend the way the addition and subtraction cases
// wrap.
func signedDivRem(lv, rv uint64, width int, rem bool) uint64 {
	ls, rs := signExtend(lv, width), signExtend(rv, width)
	if rs == -1 && ls != 0 && ls == -ls {
		if rem {
			return 0
		}
		return lv
	}
	if rem {
		return uint64(ls % rs)
	}
	return uint64(ls / rs)
}

func min64(a, b int) int {
	if a < b {
		return a
	}
	return b
}
