package optimizer

import "github.com/sarchlab/hlimgo/hlim"

// Optimize runs the pass pipeline up through level on circuit, editing it in
// place. Level 0 is a no-op; each further level runs a longer prefix of the
// pipeline, per the progression below.
func Optimize(circuit *hlim.Circuit, level int) {
	if level >= 1 {
		cullOrphanedSignalNodes(circuit)
	}
	if level >= 2 {
		cullUnnamedSignalNodes(circuit)
		cullUnusedNodes(circuit)
	}
	if level >= 3 {
		propagateConstants(circuit)
		cullOrphanedSignalNodes(circuit)
		cullUnnamedSignalNodes(circuit)
		mergeMuxes(circuit)
		removeIrrelevantMuxes(circuit)
		cullMuxConditionNegations(circuit)
		removeNoOps(circuit)
		foldRegisterMuxEnableLoops(circuit)
		propagateConstants(circuit)
		cullUnusedNodes(circuit)
		findMemoryGroups(circuit)
	}
}
