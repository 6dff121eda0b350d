package hlim

import "github.com/sarchlab/hlimgo/bitvec"

// compatibleInput is the per-kind input-type compatibility check invoked by
// Circuit.Connect. It is an exhaustive switch over Kind by design: adding a
// node kind means adding a case here.
func compatibleInput(n *Node, idx int, pt ConnectionType) bool {
	switch n.kind {
	case KindSignal:
		return signalCompatible(n, idx, pt)
	case KindArithmetic:
		return arithmeticCompatible(n, idx, pt)
	case KindCompare:
		return compareCompatible(n, idx, pt)
	case KindLogic:
		return logicCompatible(n, idx, pt)
	case KindMultiplexer:
		return muxCompatible(n, idx, pt)
	case KindPriorityConditional:
		return priorityCompatible(n, idx, pt)
	case KindRegister:
		return registerCompatible(n, idx, pt)
	case KindRewire:
		return rewireCompatible(n, idx, pt)
	case KindPin:
		return pinCompatible(n, idx, pt)
	case KindMemReadPort:
		return memReadPortCompatible(n, idx, pt)
	case KindMemWritePort:
		return memWritePortCompatible(n, idx, pt)
	case KindSignalTap:
		return signalTapCompatible(n, idx, pt)
	case KindExternal:
		return externalCompatible(n, idx, pt)
	case KindConstant, KindMemory, KindSignalGenerator:
		// No inputs; never reached.
		return false
	default:
		return false
	}
}

// InternalStateWidth returns the number of packed internal-state bits the
// simulator's bit allocator must reserve for n, beyond its outputs. Most
// kinds need none.
func InternalStateWidth(n *Node) int {
	switch n.kind {
	case KindRegister:
		return n.detail.(*RegisterDetail).internalStateWidth()
	case KindMemory:
		return n.detail.(*MemoryDetail).internalStateWidth()
	case KindPin:
		return n.detail.(*PinDetail).internalStateWidth()
	case KindSignalTap:
		return n.detail.(*SignalTapDetail).internalStateWidth()
	case KindMemWritePort:
		return n.detail.(*MemWritePortDetail).internalStateWidth()
	default:
		return 0
	}
}

// ExpectedInputWidth returns the number of bits n's evaluator reads from
// input idx, so the simulator compiler can size the always-undefined
// scratch region backing an unconnected input. DEPENDENCY inputs read
// nothing and report zero.
func ExpectedInputWidth(n *Node, idx int) int {
	switch n.kind {
	case KindSignal, KindArithmetic, KindLogic:
		return n.outputs[0].connType.Width
	case KindCompare:
		return n.detail.(*CompareDetail).Width
	case KindMultiplexer:
		d := n.detail.(*MultiplexerDetail)
		if idx == 0 {
			return d.SelectorWidth
		}
		return d.DataType.Width
	case KindPriorityConditional:
		d := n.detail.(*PriorityConditionalDetail)
		if idx > 0 && (idx-1)%2 == 0 {
			return 1
		}
		return d.ValueType.Width
	case KindRegister:
		d := n.detail.(*RegisterDetail)
		if idx == 2 {
			return 1
		}
		return d.Width
	case KindRewire:
		d := n.detail.(*RewireDetail)
		if idx < len(d.InputTypes) {
			return d.InputTypes[idx].Width
		}
		return 0
	case KindPin:
		d := n.detail.(*PinDetail)
		if idx == 1 {
			return 1
		}
		return d.Width
	case KindMemReadPort:
		d := n.detail.(*MemReadPortDetail)
		switch idx {
		case 1:
			return 1
		case 2:
			return d.AddrWidth
		default:
			return 0
		}
	case KindMemWritePort:
		d := n.detail.(*MemWritePortDetail)
		switch idx {
		case 1, 2:
			return 1
		case 3:
			return d.AddrWidth
		case 4:
			return d.WordWidth
		default:
			return 0
		}
	case KindSignalTap:
		d := n.detail.(*SignalTapDetail)
		if d.HasTrigger {
			if idx == 0 {
				return 1
			}
			return d.PayloadTypes[idx-1].Width
		}
		return d.PayloadTypes[idx].Width
	default:
		return 0
	}
}

// Reset runs n's reset behavior: constants and signal generators write
// their tick-0 value, registers validate and copy their reset constant,
// memories copy their power-on image. circuit is needed to resolve a
// register's reset-value driver.
func Reset(circuit *Circuit, n *Node, buf *bitvec.State, outOff []int, internalOff int) {
	switch n.kind {
	case KindConstant:
		constantReset(n, buf, outOff)
	case KindRegister:
		registerReset(circuit, n, buf, outOff)
	case KindMemory:
		memoryReset(n, buf, internalOff)
	case KindSignalGenerator:
		signalGeneratorReset(n, buf, outOff)
	}
}

// Evaluate runs n's combinational evaluation step. memoryOff is only
// meaningful for MEM_READ_PORT; it is the offset of the attached MEMORY
// node's internal storage, resolved by the simulator compiler.
func Evaluate(n *Node, buf *bitvec.State, inOff, outOff []int, internalOff, memoryOff int) {
	switch n.kind {
	case KindSignal:
		signalEvaluate(n, buf, inOff, outOff)
	case KindArithmetic:
		arithmeticEvaluate(n, buf, inOff, outOff)
	case KindCompare:
		compareEvaluate(n, buf, inOff, outOff)
	case KindLogic:
		logicEvaluate(n, buf, inOff, outOff)
	case KindMultiplexer:
		muxEvaluate(n, buf, inOff, outOff)
	case KindPriorityConditional:
		priorityEvaluate(n, buf, inOff, outOff)
	case KindRewire:
		rewireEvaluate(n, buf, inOff, outOff)
	case KindPin:
		pinEvaluate(n, buf, inOff, outOff, internalOff)
	case KindRegister:
		registerEvaluate(n, buf, inOff, outOff, internalOff)
	case KindMemReadPort:
		memReadPortEvaluate(n, buf, inOff, outOff, memoryOff)
	case KindMemWritePort:
		memWritePortEvaluate(n, buf, inOff, internalOff)
	}
}

// Advance runs n's clock-edge behavior for the clock bound at slot. Only
// kinds with a latched output or a clocked side effect do anything here.
func Advance(n *Node, slot int, buf *bitvec.State, inOff, outOff []int, internalOff, memoryOff int) {
	switch n.kind {
	case KindRegister:
		registerAdvance(n, buf, outOff, internalOff)
	case KindMemWritePort:
		memWritePortAdvance(n, buf, internalOff, memoryOff)
	case KindSignalGenerator:
		signalGeneratorAdvance(n, buf, outOff)
	}
}
