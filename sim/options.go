package sim

import "github.com/sarchlab/hlimgo/hlim"

// CompileOptions configures a CompileProgram run via a fluent With* chain,
// in the style of the other value-receiver builders in this codebase
// (optimizer.Options, vhdl.VHDLExport).
type CompileOptions struct {
	outputs []hlim.NodePort
}

// NewCompileOptions returns the default CompileOptions: compile every node
// in the circuit, with no output-cone restriction.
func NewCompileOptions() CompileOptions {
	return CompileOptions{}
}

// WithOutputs restricts compilation to the transitive input cone of ports;
// any node outside that cone is omitted from the compiled program and
// later reported by (*Simulator).OutputOptimizedAway. Calling WithOutputs
// again replaces the prior restriction rather than extending it.
func (o CompileOptions) WithOutputs(ports ...hlim.NodePort) CompileOptions {
	o.outputs = ports
	return o
}

// Compile runs CompileProgram against circuit with the configured options.
func (o CompileOptions) Compile(circuit *hlim.Circuit) (*Program, error) {
	return CompileProgram(circuit, o.outputs...)
}
