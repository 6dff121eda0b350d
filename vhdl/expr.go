package vhdl

import (
	"fmt"
	"strings"

	"github.com/sarchlab/hlimgo/bitvec"
	"github.com/sarchlab/hlimgo/hlim"
)

// sourceOf names the signal a node input reads from: the driver's output
// port name within ns, or "open" for an unconnected input (only ever valid
// on genuinely optional inputs; combinational nodes never leave a
// mandatory input unconnected).
func sourceOf(ns *NamespaceScope, in *hlim.InputPort) string {
	driver := in.Driver()
	if !driver.Connected() {
		return "open"
	}
	return ns.NameForPort(driver)
}

// formatExpr renders the VHDL expression that computes a combinational
// node's single output, per spec.md §4.5's wire-format notes. Nodes whose
// semantics have no direct VHDL expression (PIN, SIGNAL_GENERATOR,
// SIGNAL_TAP) are handled by their own callers, never through this path.
func formatExpr(ns *NamespaceScope, n *hlim.Node) (string, error) {
	switch n.Kind() {
	case hlim.KindSignal:
		return sourceOf(ns, n.Input(0)), nil
	case hlim.KindConstant:
		d := n.Detail().(*hlim.ConstantDetail)
		return literalBits(d.Literal, n.Output(0).ConnectionType()), nil
	case hlim.KindLogic:
		return formatLogic(ns, n), nil
	case hlim.KindCompare:
		return formatCompare(ns, n), nil
	case hlim.KindArithmetic:
		return formatArithmetic(ns, n), nil
	case hlim.KindMultiplexer:
		return formatMux(ns, n), nil
	case hlim.KindPriorityConditional:
		return formatPriority(ns, n), nil
	case hlim.KindRewire:
		return formatRewire(ns, n), nil
	case hlim.KindPin:
		// PIN's DATA input drives the internal view of the pin; the
		// output-enable/high-Z/external-override semantics are
		// simulation-only (see hlim.PinDetail) and have no synthesizable
		// VHDL counterpart in this generator's scope.
		return sourceOf(ns, n.Input(0)), nil
	default:
		return "", &hlim.Error{
			Kind: hlim.InternalInvariant, HasNode: true, NodeID: n.ID(),
			Message: "node kind has no combinational VHDL expression: " + n.Kind().String(),
		}
	}
}

func formatLogic(ns *NamespaceScope, n *hlim.Node) string {
	d := n.Detail().(*hlim.LogicDetail)
	a := sourceOf(ns, n.Input(0))
	if d.Op == hlim.Not {
		return "not " + a
	}
	b := sourceOf(ns, n.Input(1))
	op := map[hlim.LogicOp]string{
		hlim.And: "and", hlim.Nand: "nand", hlim.Or: "or",
		hlim.Nor: "nor", hlim.Xor: "xor", hlim.Xnor: "xnor",
	}[d.Op]
	return fmt.Sprintf("(%s %s %s)", a, op, b)
}

func formatCompare(ns *NamespaceScope, n *hlim.Node) string {
	d := n.Detail().(*hlim.CompareDetail)
	a := sourceOf(ns, n.Input(0))
	b := sourceOf(ns, n.Input(1))
	op := map[hlim.CompareOp]string{
		hlim.Eq: "=", hlim.Neq: "/=", hlim.Lt: "<",
		hlim.Gt: ">", hlim.Leq: "<=", hlim.Geq: ">=",
	}[d.Op]
	cast := numericCast(d.Numeric)
	return fmt.Sprintf("bool2stdlogic(%s(%s) %s %s(%s))", cast, a, op, cast, b)
}

func formatArithmetic(ns *NamespaceScope, n *hlim.Node) string {
	d := n.Detail().(*hlim.ArithmeticDetail)
	a := sourceOf(ns, n.Input(0))
	b := sourceOf(ns, n.Input(1))
	op := map[hlim.ArithmeticOp]string{
		hlim.Add: "+", hlim.Sub: "-", hlim.Mul: "*", hlim.Div: "/", hlim.Rem: "rem",
	}[d.Op]
	cast := numericCast(n.Output(0).ConnectionType().Numeric)
	return fmt.Sprintf("std_logic_vector(%s(%s) %s %s(%s))", cast, a, op, cast, b)
}

// numericCast is the numeric_std view matching a signal's interpretation:
// SIGNED for two's-complement operands, UNSIGNED otherwise.
func numericCast(numeric hlim.NumericKind) string {
	if numeric == hlim.TwosComplement {
		return "signed"
	}
	return "unsigned"
}

func formatMux(ns *NamespaceScope, n *hlim.Node) string {
	d := n.Detail().(*hlim.MultiplexerDetail)
	sel := sourceOf(ns, n.Input(0))
	numData := n.NumInputs() - 1

	var b strings.Builder
	for i := 0; i < numData; i++ {
		b.WriteString(sourceOf(ns, n.Input(1+i)))
		b.WriteString(" when ")
		b.WriteString(sel)
		b.WriteString(" = ")
		b.WriteString(selectorLiteral(d.SelectorWidth, i))
		b.WriteString(" else ")
	}
	b.WriteString(undefinedLiteral(d.DataType))
	return b.String()
}

// undefinedLiteral is the all-X right-hand side matching ct's declared
// VHDL subtype.
func undefinedLiteral(ct hlim.ConnectionType) string {
	if ct.Interpretation == hlim.Bit {
		return "'X'"
	}
	return "(others => 'X')"
}

func formatPriority(ns *NamespaceScope, n *hlim.Node) string {
	d := n.Detail().(*hlim.PriorityConditionalDetail)
	def := sourceOf(ns, n.Input(0))

	var b strings.Builder
	for k := 0; k < d.NumChoices; k++ {
		cond := sourceOf(ns, n.Input(1+2*k))
		val := sourceOf(ns, n.Input(2+2*k))
		b.WriteString(val)
		b.WriteString(" when ")
		b.WriteString(cond)
		b.WriteString(" = '1' else ")
	}
	b.WriteString(def)
	return b.String()
}

func formatRewire(ns *NamespaceScope, n *hlim.Node) string {
	d := n.Detail().(*hlim.RewireDetail)
	if d.IsIdentity() {
		return sourceOf(ns, n.Input(0))
	}
	if d.IsSingleBitExtraction() {
		s := d.Slices[0]
		return fmt.Sprintf("(0 => %s(%d))", sourceOf(ns, n.Input(0)), s.Offset)
	}

	// Slice 0 occupies the output's least-significant bits, so the VHDL
	// concatenation (leftmost operand is most significant) lists the
	// slices in reverse.
	parts := make([]string, len(d.Slices))
	for i, s := range d.Slices {
		var part string
		switch s.Source {
		case hlim.SliceFromInput:
			in := sourceOf(ns, n.Input(s.InputIndex))
			if s.Width == 1 {
				part = fmt.Sprintf("(0 => %s(%d))", in, s.Offset)
			} else {
				part = fmt.Sprintf("%s(%d downto %d)", in, s.Offset+s.Width-1, s.Offset)
			}
		case hlim.SliceConstZero:
			part = fmt.Sprintf("(%d downto 0 => '0')", s.Width-1)
		case hlim.SliceConstOne:
			part = fmt.Sprintf("(%d downto 0 => '1')", s.Width-1)
		}
		parts[len(d.Slices)-1-i] = part
	}
	return strings.Join(parts, " & ")
}

// selectorLiteral renders n as a width-bit std_logic_vector binary literal
// for a mux's `when` comparison.
func selectorLiteral(width, n int) string {
	bits := make([]byte, width)
	for i := 0; i < width; i++ {
		if n&(1<<uint(width-1-i)) != 0 {
			bits[i] = '1'
		} else {
			bits[i] = '0'
		}
	}
	if width == 1 {
		return "'" + string(bits) + "'"
	}
	return "\"" + string(bits) + "\""
}

// literalBits renders a constant's value as a VHDL literal: a
// single-quoted bit for BitType, a double-quoted vector otherwise.
func literalBits(state *bitvec.State, ct hlim.ConnectionType) string {
	width := ct.Width
	buf := make([]byte, width)
	for i := 0; i < width; i++ {
		idx := width - 1 - i
		switch {
		case !state.Get(bitvec.Defined, idx):
			buf[i] = 'X'
		case state.Get(bitvec.Value, idx):
			buf[i] = '1'
		default:
			buf[i] = '0'
		}
	}
	if width == 1 {
		return "'" + string(buf) + "'"
	}
	return "\"" + string(buf) + "\""
}
