package hlim

import "github.com/sarchlab/hlimgo/bitvec"

// MemoryDetail configures a MEMORY node: its word geometry and power-on
// contents.
type MemoryDetail struct {
	WordWidth int
	NumWords  int
	PowerOn   *bitvec.State // WordWidth*NumWords bits, X/0/1 per bit
}

func (d *MemoryDetail) internalStateWidth() int { return d.WordWidth * d.NumWords }

// CreateMemory appends a zero-input MEMORY node exposing a single
// DEPENDENCY output that read/write ports attach to. The memory itself has
// no side effects; write ports carry the side effect.
func (c *Circuit) CreateMemory(wordWidth, numWords int, powerOn *bitvec.State) *Node {
	n := c.createNode(KindMemory, &MemoryDetail{WordWidth: wordWidth, NumWords: numWords, PowerOn: powerOn})
	n.addOutput("DEP", DependencyType(), OutputCombinational)
	return n
}

func memoryReset(n *Node, buf *bitvec.State, internalOff int) {
	d := n.detail.(*MemoryDetail)
	buf.Insert(internalOff, d.PowerOn)
}

// MemReadPortDetail configures a MEM_READ_PORT node.
type MemReadPortDetail struct {
	WordWidth int
	AddrWidth int
}

// CreateMemReadPort appends an asynchronous read port: inputs memory(dep),
// enable, address; output data. A following register, detected by the
// memory pass, can make the read synchronous.
func (c *Circuit) CreateMemReadPort(wordWidth, addrWidth int) *Node {
	n := c.createNode(KindMemReadPort, &MemReadPortDetail{WordWidth: wordWidth, AddrWidth: addrWidth})
	n.addInput("MEM")
	n.addInput("ENABLE")
	n.addInput("ADDRESS")
	n.addOutput("DATA", BitVecType(wordWidth, Raw), OutputCombinational)
	return n
}

func memReadPortCompatible(n *Node, idx int, pt ConnectionType) bool {
	d := n.detail.(*MemReadPortDetail)
	switch idx {
	case 0:
		return pt.Interpretation == Dependency
	case 1:
		return bitCompatible(pt)
	case 2:
		return dataCompatible(BitVecType(d.AddrWidth, Raw), pt)
	}
	return false
}

// memReadPortEvaluate reads wordWidth bits from the attached memory's
// storage at the sampled address. memoryOff is the offset of the connected
// MEMORY node's internal storage region, resolved by the simulator
// compiler by walking the MEM input's non-signal driver.
func memReadPortEvaluate(n *Node, buf *bitvec.State, inOff, outOff []int, memoryOff int) {
	d := n.detail.(*MemReadPortDetail)

	enDef := buf.Get(bitvec.Defined, inOff[1])
	enVal := buf.Get(bitvec.Value, inOff[1])
	if !enDef || !enVal {
		buf.ClearRange(bitvec.Defined, outOff[0], d.WordWidth)
		return
	}

	if d.AddrWidth > 31 || !buf.AllDefined(inOff[2], d.AddrWidth) {
		buf.ClearRange(bitvec.Defined, outOff[0], d.WordWidth)
		return
	}
	addr, _ := buf.ExtractWord(inOff[2], d.AddrWidth)
	if mem := n.circuit.GetNonSignalDriver(&n.inputs[0]); mem.Connected() {
		if md, ok := mem.Node.detail.(*MemoryDetail); ok && int(addr) >= md.NumWords {
			buf.ClearRange(bitvec.Defined, outOff[0], d.WordWidth)
			return
		}
	}
	buf.CopyRange(outOff[0], buf, memoryOff+int(addr)*d.WordWidth, d.WordWidth)
}

// MemWritePortDetail configures a MEM_WRITE_PORT node.
type MemWritePortDetail struct {
	WordWidth int
	AddrWidth int
}

// internalStateWidth reserves the write port's pre-sampled inputs: wrData,
// address, and the enable/wrEnable pair, latched during combinational
// evaluation so the commit on the clock edge never reads a value a
// same-clock register already advanced.
func (d *MemWritePortDetail) internalStateWidth() int { return d.WordWidth + d.AddrWidth + 2 }

// CreateMemWritePort appends a clocked write port: inputs memory(dep),
// enable, wrEnable, address, wrData, orderAfter(dep); one clock slot; and
// an orderBefore DEPENDENCY output the memory pass uses to serialize ports
// sharing a memory.
func (c *Circuit) CreateMemWritePort(wordWidth, addrWidth int) *Node {
	n := c.createNode(KindMemWritePort, &MemWritePortDetail{WordWidth: wordWidth, AddrWidth: addrWidth})
	n.addInput("MEM")
	n.addInput("ENABLE")
	n.addInput("WR_ENABLE")
	n.addInput("ADDRESS")
	n.addInput("WR_DATA")
	n.addInput("ORDER_AFTER")
	n.addOutput("ORDER_BEFORE", DependencyType(), OutputCombinational)
	n.addClockSlot()
	return n
}

func memWritePortCompatible(n *Node, idx int, pt ConnectionType) bool {
	d := n.detail.(*MemWritePortDetail)
	switch idx {
	case 0, 5:
		return pt.Interpretation == Dependency
	case 1, 2:
		return bitCompatible(pt)
	case 3:
		return dataCompatible(BitVecType(d.AddrWidth, Raw), pt)
	case 4:
		return dataCompatible(BitVecType(d.WordWidth, Raw), pt)
	}
	return false
}

// memWritePortEvaluate samples wrData, address, enable, and wrEnable into
// the write port's internal state every combinational pass; the storage
// commit itself only happens on memWritePortAdvance, the same
// sample-then-commit split registerEvaluate/registerAdvance use.
func memWritePortEvaluate(n *Node, buf *bitvec.State, inOff []int, internalOff int) {
	d := n.detail.(*MemWritePortDetail)
	buf.CopyRange(internalOff, buf, inOff[4], d.WordWidth)
	buf.CopyRange(internalOff+d.WordWidth, buf, inOff[3], d.AddrWidth)
	enOff := internalOff + d.WordWidth + d.AddrWidth
	buf.Set(bitvec.Value, enOff, buf.Get(bitvec.Value, inOff[1]))
	buf.Set(bitvec.Defined, enOff, buf.Get(bitvec.Defined, inOff[1]))
	buf.Set(bitvec.Value, enOff+1, buf.Get(bitvec.Value, inOff[2]))
	buf.Set(bitvec.Defined, enOff+1, buf.Get(bitvec.Defined, inOff[2]))
}

// memWritePortAdvance commits the pre-sampled wrData into the attached
// memory's storage on a matching clock edge, when both sampled enables are
// 1 and the sampled address is fully defined and in range.
func memWritePortAdvance(n *Node, buf *bitvec.State, internalOff, memoryOff int) {
	d := n.detail.(*MemWritePortDetail)
	addrOff := internalOff + d.WordWidth
	enOff := addrOff + d.AddrWidth

	if !buf.Get(bitvec.Defined, enOff) || !buf.Get(bitvec.Value, enOff) {
		return
	}
	if !buf.Get(bitvec.Defined, enOff+1) || !buf.Get(bitvec.Value, enOff+1) {
		return
	}
	if d.AddrWidth > 31 || !buf.AllDefined(addrOff, d.AddrWidth) {
		return
	}
	addr := 0
	for i := d.AddrWidth - 1; i >= 0; i-- {
		addr <<= 1
		if buf.Get(bitvec.Value, addrOff+i) {
			addr |= 1
		}
	}
	if mem := n.circuit.GetNonSignalDriver(&n.inputs[0]); mem.Connected() {
		if md, ok := mem.Node.detail.(*MemoryDetail); ok && addr >= md.NumWords {
			return
		}
	}
	buf.CopyRange(memoryOff+addr*d.WordWidth, buf, internalOff, d.WordWidth)
}
