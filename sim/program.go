// Package sim is the event-driven four-valued simulator: it compiles an
// optimized hlim.Circuit into a flat state layout and an ordered
// combinational execution block, then runs reset/reevaluate/clock-advance
// cycles over it, per spec.md §4.4.
package sim

import (
	"sort"

	"github.com/sarchlab/hlimgo/hlim"
)

// nodeIO is a node's precomputed state-buffer offsets, resolved once at
// compile time so Reset/Evaluate/Advance dispatch never has to walk the IR
// again.
type nodeIO struct {
	in       []int
	out      []int
	internal int
	memory   int // meaningful only for MEM_READ_PORT/MEM_WRITE_PORT
}

// execStep is one entry of the compiled combinational execution block.
type execStep struct {
	node        *hlim.Node
	isSignalTap bool
}

// Program is the compiled, immutable artifact CompileProgram produces: a
// bit-allocator layout, a reset list, a per-clock latch map, and a
// topologically ordered combinational execution block. A Program is safe
// to share across multiple Simulator instances simulating identical
// stimulus in parallel, since it holds no mutable simulation state itself.
type Program struct {
	circuit *hlim.Circuit

	size int
	io   map[*hlim.Node]nodeIO
	kept map[*hlim.Node]bool

	resetList    []*hlim.Node
	steps        []execStep
	clockDomains map[*hlim.Clock][]hlim.ClockSlotRef
}

// Size returns the total number of bits the compiled state buffer needs.
func (p *Program) Size() int { return p.size }

// kindsInExecutionBlock are the node kinds with a per-reevaluation
// Evaluate step, per spec.md §4.4's compilation order: everything with
// combinational behavior, plus REGISTER and MEM_WRITE_PORT (which sample
// their inputs every pass even though their effect only lands on a clock
// edge) and SIGNAL_TAP (which only checks its trigger and never produces
// an output a downstream node can depend on).
var kindsInExecutionBlock = map[hlim.Kind]bool{
	hlim.KindArithmetic:          true,
	hlim.KindCompare:             true,
	hlim.KindLogic:               true,
	hlim.KindMultiplexer:         true,
	hlim.KindPriorityConditional: true,
	hlim.KindRewire:              true,
	hlim.KindPin:                 true,
	hlim.KindRegister:            true,
	hlim.KindMemReadPort:         true,
	hlim.KindMemWritePort:        true,
	hlim.KindSignalTap:           true,
}

// kindsNeedingReset are the kinds dispatch.Reset has a case for: constants
// and signal generators write their tick-0 value, registers validate and
// copy their reset constant, memories copy their power-on image.
var kindsNeedingReset = map[hlim.Kind]bool{
	hlim.KindConstant:        true,
	hlim.KindRegister:        true,
	hlim.KindMemory:          true,
	hlim.KindSignalGenerator: true,
}

// CompileProgram compiles circuit into a Program. If outputs is non-empty,
// compilation is restricted to the transitive input cone of those ports;
// any node outside that cone is omitted from the compiled program and
// later reported by (*Simulator).OutputOptimizedAway.
func CompileProgram(circuit *hlim.Circuit, outputs ...hlim.NodePort) (*Program, error) {
	var nodes []*hlim.Node
	if len(outputs) > 0 {
		keep := reachableNodes(outputs)
		for _, n := range circuit.Nodes() {
			if keep[n] {
				nodes = append(nodes, n)
			}
		}
	} else {
		nodes = circuit.Nodes()
	}

	kept := make(map[*hlim.Node]bool, len(nodes))
	for _, n := range nodes {
		kept[n] = true
	}

	p := &Program{circuit: circuit, kept: kept, clockDomains: map[*hlim.Clock][]hlim.ClockSlotRef{}}

	alloc := newAllocator()
	offsets := make(map[hlim.NodePort]int)
	internalOffsets := make(map[*hlim.Node]int)

	// Pass 1: allocate every non-signal node's output regions and internal
	// state, so every alias target in pass 2 already has an offset.
	for _, n := range nodes {
		if n.Kind() == hlim.KindSignal {
			continue
		}
		for i := 0; i < n.NumOutputs(); i++ {
			offsets[hlim.NodePort{Node: n, Port: i}] = alloc.Alloc(n.Output(i).ConnectionType().Width)
		}
		if w := hlim.InternalStateWidth(n); w > 0 {
			internalOffsets[n] = alloc.Alloc(w)
		}
	}

	// Pass 2: signal nodes point to the same offset as their ultimate
	// non-signal driver, allocating a dedicated "always undefined" scratch
	// region for a dangling chain.
	unconnected := map[int]int{}
	offsetOfDriver := func(driver hlim.NodePort, width int) int {
		if driver.Connected() {
			if off, ok := offsets[driver]; ok {
				return off
			}
		}
		off, ok := unconnected[width]
		if !ok {
			off = alloc.Alloc(width)
			unconnected[width] = off
		}
		return off
	}
	for _, n := range nodes {
		if n.Kind() != hlim.KindSignal {
			continue
		}
		driver := circuit.GetNonSignalDriver(n.Input(0))
		offsets[hlim.NodePort{Node: n, Port: 0}] = offsetOfDriver(driver, n.Output(0).ConnectionType().Width)
	}

	// Reset list, in creation order.
	for _, n := range nodes {
		if kindsNeedingReset[n.Kind()] {
			p.resetList = append(p.resetList, n)
		}
	}

	// Clock domains: every node clock-slot bound to a clock, regardless of
	// whether its own output is latched (MEM_WRITE_PORT has a clock slot
	// but a combinational DEPENDENCY output; it still needs an Advance
	// call on its clock to commit writes).
	for _, n := range nodes {
		for slot := 0; slot < n.NumClockSlots(); slot++ {
			clk := n.ClockSlot(slot)
			if clk == nil {
				continue
			}
			p.clockDomains[clk] = append(p.clockDomains[clk], hlim.ClockSlotRef{Node: n, Slot: slot})
		}
	}

	order, err := topologicalOrder(circuit, nodes)
	if err != nil {
		return nil, err
	}
	for _, n := range order {
		p.steps = append(p.steps, execStep{node: n, isSignalTap: n.Kind() == hlim.KindSignalTap})
	}

	// Resolve every kept node's per-call IO once.
	p.io = make(map[*hlim.Node]nodeIO, len(nodes))
	for _, n := range nodes {
		io := nodeIO{internal: internalOffsets[n]}
		io.out = make([]int, n.NumOutputs())
		for i := range io.out {
			io.out[i] = offsets[hlim.NodePort{Node: n, Port: i}]
		}
		io.in = make([]int, n.NumInputs())
		for i := 0; i < n.NumInputs(); i++ {
			driver := n.Input(i).Driver()
			width := hlim.ExpectedInputWidth(n, i)
			if driver.Connected() {
				width = driver.Node.Output(driver.Port).ConnectionType().Width
			}
			io.in[i] = offsetOfDriver(driver, width)
		}
		if n.Kind() == hlim.KindMemReadPort || n.Kind() == hlim.KindMemWritePort {
			mem := circuit.GetNonSignalDriver(n.Input(0))
			if mem.Connected() {
				io.memory = internalOffsets[mem.Node]
			}
		}
		p.io[n] = io
	}

	// The io resolution above may have allocated further scratch regions
	// for unconnected inputs; only now is the layout final.
	p.size = alloc.Size()

	return p, nil
}

// reachableNodes returns the set of nodes in the transitive input cone of
// outputs, found by walking backward through direct (not non-signal)
// drivers so signal nodes stay part of the kept set too.
func reachableNodes(outputs []hlim.NodePort) map[*hlim.Node]bool {
	seen := make(map[*hlim.Node]bool)
	var visit func(n *hlim.Node)
	visit = func(n *hlim.Node) {
		if seen[n] {
			return
		}
		seen[n] = true
		for i := 0; i < n.NumInputs(); i++ {
			d := n.Input(i).Driver()
			if d.Connected() {
				visit(d.Node)
			}
		}
	}
	for _, op := range outputs {
		if op.Connected() {
			visit(op.Node)
		}
	}
	return seen
}

// topologicalOrder orders the combinational execution block by data
// dependency, taking edges from GetNonSignalDriver per spec.md §4.4. An
// edge into a REGISTER is real (its DATA/ENABLE sampling must run after
// its producers), but an edge out of a REGISTER is not: a register's
// OUTPUT is stable for the whole reevaluation pass (it only changes on a
// clock edge), so nothing needs to wait on it.
func topologicalOrder(circuit *hlim.Circuit, nodes []*hlim.Node) ([]*hlim.Node, error) {
	inSet := make(map[*hlim.Node]bool)
	for _, n := range nodes {
		if kindsInExecutionBlock[n.Kind()] {
			inSet[n] = true
		}
	}

	indeg := make(map[*hlim.Node]int, len(inSet))
	successors := make(map[*hlim.Node][]*hlim.Node)
	for n := range inSet {
		indeg[n] = 0
	}
	for n := range inSet {
		for i := 0; i < n.NumInputs(); i++ {
			driver := circuit.GetNonSignalDriver(n.Input(i))
			if !driver.Connected() || !inSet[driver.Node] {
				continue
			}
			if driver.Node.Kind() == hlim.KindRegister {
				continue
			}
			successors[driver.Node] = append(successors[driver.Node], n)
			indeg[n]++
		}
	}

	var order []*hlim.Node
	queue := readyQueue(inSet, indeg)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)

		var freed []*hlim.Node
		for _, m := range successors[n] {
			indeg[m]--
			if indeg[m] == 0 {
				freed = append(freed, m)
			}
		}
		sortByID(freed)
		queue = append(queue, freed...)
	}

	if len(order) != len(inSet) {
		return nil, &hlim.Error{Kind: hlim.CyclicCombinational, Message: "combinational execution block has no topological order"}
	}
	return order, nil
}

func readyQueue(inSet map[*hlim.Node]bool, indeg map[*hlim.Node]int) []*hlim.Node {
	var ready []*hlim.Node
	for n := range inSet {
		if indeg[n] == 0 {
			ready = append(ready, n)
		}
	}
	sortByID(ready)
	return ready
}

func sortByID(nodes []*hlim.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
}
