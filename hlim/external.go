package hlim

// ExternalDetail configures an EXTERNAL node: a black-box instantiation
// whose body is not represented in the IR. It exists so a caller can place
// a vendor-specific or pluggable primitive in the circuit for the VHDL
// emitter's ExternalNodeHandler hook to claim at emission time; see
// spec.md §6 and §7's VHDL_UNHANDLED_EXTERNAL.
type ExternalDetail struct {
	ComponentKind string
	InputNames    []string
	OutputNames   []string
}

// CreateExternalComponent appends a node representing an opaque external
// component instantiation. It has no simulateable behavior of its own: it
// is never compiled into the simulator's execution block, only into the
// VHDL back end's external-instantiation path.
func (c *Circuit) CreateExternalComponent(componentKind string, inputs, outputs []ConnectionType, inputNames, outputNames []string) *Node {
	d := &ExternalDetail{ComponentKind: componentKind, InputNames: inputNames, OutputNames: outputNames}
	n := c.createNode(KindExternal, d)
	for i := range inputs {
		name := "IN"
		if i < len(inputNames) {
			name = inputNames[i]
		}
		n.addInput(name)
	}
	for i, t := range outputs {
		name := "OUT"
		if i < len(outputNames) {
			name = outputNames[i]
		}
		n.addOutput(name, t, OutputCombinational)
	}
	return n
}

func externalCompatible(n *Node, idx int, pt ConnectionType) bool {
	// External components accept whatever the caller configured the input
	// connection type as; no narrower invariant is known to the core.
	return true
}
