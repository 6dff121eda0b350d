package optimizer

import "github.com/sarchlab/hlimgo/hlim"

// Options configures an optimizer run via a fluent With* chain, in the
// style of the other value-receiver builders in this codebase
// (sim.CompileOptions, vhdl.VHDLExport).
type Options struct {
	level int
}

// NewOptions returns the default Options: level 0, a no-op.
func NewOptions() Options {
	return Options{level: 0}
}

// WithLevel sets the optimization level, 0 through 3.
func (o Options) WithLevel(level int) Options {
	if level < 0 || level > 3 {
		panic("Invalid optimization level")
	}
	o.level = level
	return o
}

// Apply runs the configured pipeline against circuit, editing it in place.
func (o Options) Apply(circuit *hlim.Circuit) {
	Optimize(circuit, o.level)
}
