package hlim

import "github.com/sarchlab/hlimgo/bitvec"

// RegisterDetail configures a REGISTER node.
type RegisterDetail struct {
	Width int
}

func (d *RegisterDetail) internalStateWidth() int { return d.Width + 1 }

// CreateRegister appends a register node: inputs DATA, RESET_VALUE, ENABLE,
// one clock slot, and a latched output. RESET_VALUE must, at compile time,
// be connected to a CONSTANT reachable through signal nodes only.
func (c *Circuit) CreateRegister(width int, numeric NumericKind) *Node {
	n := c.createNode(KindRegister, &RegisterDetail{Width: width})
	n.addInput("DATA")
	n.addInput("RESET_VALUE")
	n.addInput("ENABLE")
	n.addOutput("OUT", BitVecType(width, numeric), OutputLatched)
	n.addClockSlot()
	return n
}

func registerCompatible(n *Node, idx int, pt ConnectionType) bool {
	d := n.detail.(*RegisterDetail)
	if idx == 2 {
		return bitCompatible(pt)
	}
	return dataCompatible(BitVecType(d.Width, Raw), pt)
}

// registerReset copies the RESET_VALUE constant's literal into the output.
// A register with no reset value comes up undefined instead; a reset value
// that does not resolve to a constant through signal nodes is a
// DesignAssertFailed.
func registerReset(c *Circuit, n *Node, buf *bitvec.State, outOff []int) {
	driver := c.GetNonSignalDriver(&n.inputs[1])
	if !driver.Connected() {
		buf.ClearRange(bitvec.Defined, outOff[0], n.outputs[0].connType.Width)
		return
	}
	if driver.Node.kind != KindConstant {
		fatal(DesignAssertFailed, "register reset value is not a reachable constant")
	}
	lit := driver.Node.detail.(*ConstantDetail).Literal
	buf.Insert(outOff[0], lit)
}

// registerEvaluate samples DATA and ENABLE into the register's internal
// state every combinational pass; the output itself only changes on
// registerAdvance. An unconnected ENABLE samples as a constant 1: the
// register loads on every matching edge.
func registerEvaluate(n *Node, buf *bitvec.State, inOff, outOff []int, internalOff int) {
	d := n.detail.(*RegisterDetail)
	buf.CopyRange(internalOff, buf, inOff[0], d.Width)
	if n.inputs[2].driver.Connected() {
		buf.Set(bitvec.Defined, internalOff+d.Width, buf.Get(bitvec.Defined, inOff[2]))
		buf.Set(bitvec.Value, internalOff+d.Width, buf.Get(bitvec.Value, inOff[2]))
	} else {
		buf.Set(bitvec.Defined, internalOff+d.Width, true)
		buf.Set(bitvec.Value, internalOff+d.Width, true)
	}
}

// registerAdvance applies the sampled DATA to the output on a matching
// clock edge, per the enable's sampled state: 1 loads, 0 holds, undefined
// makes the output undefined.
func registerAdvance(n *Node, buf *bitvec.State, outOff []int, internalOff int) {
	d := n.detail.(*RegisterDetail)
	enableDef := buf.Get(bitvec.Defined, internalOff+d.Width)
	enableVal := buf.Get(bitvec.Value, internalOff+d.Width)

	if !enableDef {
		buf.ClearRange(bitvec.Defined, outOff[0], d.Width)
		return
	}
	if !enableVal {
		return
	}
	buf.CopyRange(outOff[0], buf, internalOff, d.Width)
}
