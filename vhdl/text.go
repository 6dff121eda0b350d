package vhdl

import (
	"sort"
	"strings"

	"github.com/sarchlab/hlimgo/hlim"
)

// vhdlType renders a ConnectionType as a VHDL subtype: the canonical
// std_logic for BitType, std_logic_vector otherwise. DEPENDENCY ports never
// reach this path since they carry no signal.
func vhdlType(ct hlim.ConnectionType) string {
	if ct.Interpretation == hlim.Bit {
		return "std_logic"
	}
	return "std_logic_vector(" + itoa(ct.Width-1) + " downto 0)"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// clocksUsed collects every clock configuration an entity's process tree
// references, including the clocks of its sub-entities (which the entity
// must expose as its own ports to forward them down), used to build the
// clock/reset ports every entity needs in addition to its inferred data IO.
func clocksUsed(e *Entity) []RegisterConfig {
	var out []RegisterConfig
	seen := map[*hlim.Clock]bool{}
	add := func(cfg RegisterConfig) {
		if cfg.Clock != nil && !seen[cfg.Clock] {
			seen[cfg.Clock] = true
			out = append(out, cfg)
		}
	}
	walkProcs := func(procs []*Process) {
		for _, p := range procs {
			if p.Kind == RegisterProcess {
				add(p.Config)
			}
		}
	}
	var walk func(e *Entity)
	walk = func(e *Entity) {
		if e.Memory != nil {
			walkProcs(buildMemoryProcesses(e.Memory.Info, memStorageName))
			return
		}
		walkProcs(e.Processes)
		for _, b := range e.Blocks {
			walkProcs(b.Processes)
		}
		for _, sub := range allSubEntities(e) {
			walk(sub)
		}
	}
	walk(e)
	return out
}

// RenderEntity assembles one entity's full `entity ... architecture` VHDL
// text, per spec.md §4.5 and §6's wire-level format note. registry
// resolves EXTERNAL node instantiations; helperPkgName is the work library
// name the helper functions (bool2stdlogic, stdlogic2bool) live in.
func RenderEntity(e *Entity, registry *ExternalHandlerRegistry, helperPkgName string) (string, error) {
	var b strings.Builder

	b.WriteString("library ieee;\n")
	b.WriteString("use ieee.std_logic_1164.all;\n")
	b.WriteString("use ieee.numeric_std.all;\n")
	b.WriteString("use work." + helperPkgName + ".all;\n\n")

	b.WriteString("entity " + e.Name + " is\n")

	var ports []string
	for _, in := range e.Inputs {
		ports = append(ports, "    "+e.NS.NameForPort(in)+" : in "+vhdlType(in.Node.Output(in.Port).ConnectionType())+";")
	}
	for _, cfg := range clocksUsed(e) {
		ports = append(ports, "    "+e.NS.NameForClock(cfg.Clock)+" : in std_logic;")
		if cfg.HasReset {
			_, _, _, resetSig := cfg.Clock.Reset()
			ports = append(ports, "    "+resetSig+" : in std_logic;")
		}
	}
	for _, out := range e.Outputs {
		ports = append(ports, "    "+e.NS.NameForPort(out)+" : out "+vhdlType(out.Node.Output(out.Port).ConnectionType())+";")
	}
	if len(ports) > 0 {
		ports[len(ports)-1] = strings.TrimSuffix(ports[len(ports)-1], ";")
		b.WriteString("  port (\n")
		b.WriteString(strings.Join(ports, "\n") + "\n")
		b.WriteString("  );\n")
	}
	b.WriteString("end entity " + e.Name + ";\n\n")

	b.WriteString("architecture rtl of " + e.Name + " is\n\n")

	outputSet := map[hlim.NodePort]bool{}
	for _, out := range e.Outputs {
		outputSet[out] = true
	}
	inputSet := map[hlim.NodePort]bool{}
	for _, in := range e.Inputs {
		inputSet[in] = true
	}

	declared := map[string]bool{}
	declareSignal := func(port hlim.NodePort, ct hlim.ConnectionType) {
		if outputSet[port] || inputSet[port] || ct.Interpretation == hlim.Dependency {
			return
		}
		name := e.NS.NameForPort(port)
		if declared[name] {
			return
		}
		declared[name] = true
		b.WriteString("  signal " + name + " : " + vhdlType(ct) + ";\n")
	}
	declareNodes := func(nodes []*hlim.Node) {
		for _, n := range nodes {
			for i := 0; i < n.NumOutputs(); i++ {
				declareSignal(hlim.NodePort{Node: n, Port: i}, n.Output(i).ConnectionType())
			}
		}
	}
	for _, p := range e.Processes {
		declareNodes(p.Nodes)
		declareNodes(p.Registers)
	}
	for _, blk := range e.Blocks {
		for _, p := range blk.Processes {
			declareNodes(p.Nodes)
			declareNodes(p.Registers)
		}
	}
	// A sub-entity's outputs surface here as plain signals its
	// instantiation drives; same for an external instantiation's outputs.
	// Sub-entities nested in blocks instantiate at the architecture level
	// alongside the blocks, so their IO signals are declared here too.
	for _, sub := range allSubEntities(e) {
		for _, out := range subEntityOutputs(sub) {
			declareSignal(out, out.Node.Output(out.Port).ConnectionType())
		}
	}
	declareExternalOutputs := func(insts []*ExternalInstance) {
		for _, inst := range insts {
			for i := 0; i < inst.Node.NumOutputs(); i++ {
				declareSignal(hlim.NodePort{Node: inst.Node, Port: i}, inst.Node.Output(i).ConnectionType())
			}
		}
	}
	declareExternalOutputs(e.Externals)
	for _, blk := range e.Blocks {
		declareExternalOutputs(blk.Externals)
	}
	b.WriteString("\nbegin\n\n")

	for _, p := range e.Processes {
		if err := renderProcessInto(&b, e.NS, p); err != nil {
			return "", err
		}
	}
	for _, blk := range e.Blocks {
		if err := renderBlockInto(&b, blk, registry); err != nil {
			return "", err
		}
	}
	for i, sub := range allSubEntities(e) {
		b.WriteString(renderInstantiation(e, sub, i))
	}
	if err := renderExternalsInto(&b, e.NS, e.Externals, registry); err != nil {
		return "", err
	}

	b.WriteString("\nend architecture rtl;\n")
	return b.String(), nil
}

func renderProcessInto(b *strings.Builder, ns *NamespaceScope, p *Process) error {
	b.WriteString("  process (")
	if p.Kind == CombinatoryProcess {
		sensitivity, body, err := combinationalStatements(ns, p)
		if err != nil {
			return err
		}
		b.WriteString(strings.Join(sensitivity, ", "))
		b.WriteString(")\n  begin\n")
		for _, s := range body {
			b.WriteString("    " + s + "\n")
		}
	} else {
		clkName := ns.NameForClock(p.Config.Clock)
		sens := []string{clkName}
		if p.Config.HasReset {
			_, _, _, resetSig := p.Config.Clock.Reset()
			sens = append(sens, resetSig)
		}
		b.WriteString(strings.Join(sens, ", "))
		b.WriteString(")\n  begin\n")
		for _, s := range registerStatements(ns, p) {
			b.WriteString("    " + s + "\n")
		}
	}
	b.WriteString("  end process;\n\n")
	return nil
}

// renderExternalsInto resolves and writes each external instantiation via
// the first handler that claims it.
func renderExternalsInto(b *strings.Builder, ns *NamespaceScope, insts []*ExternalInstance, registry *ExternalHandlerRegistry) error {
	for _, inst := range insts {
		inNames := make([]string, inst.Node.NumInputs())
		for i := range inNames {
			inNames[i] = sourceOf(ns, inst.Node.Input(i))
		}
		outNames := make([]string, inst.Node.NumOutputs())
		for i := range outNames {
			outNames[i] = ns.NameForPort(hlim.NodePort{Node: inst.Node, Port: i})
		}
		body, err := registry.Resolve(inst, inNames, outNames)
		if err != nil {
			return err
		}
		inst.Body = body
		b.WriteString(body)
	}
	return nil
}

// renderBlockInto renders a nested Block as a VHDL `block` statement
// wrapping its own processes, external instantiations, and sub-blocks.
func renderBlockInto(b *strings.Builder, blk *Block, registry *ExternalHandlerRegistry) error {
	b.WriteString("  " + blk.Name + "_block : block\n  begin\n")
	for _, p := range blk.Processes {
		if err := renderProcessInto(b, blk.NS, p); err != nil {
			return err
		}
	}
	if err := renderExternalsInto(b, blk.NS, blk.Externals, registry); err != nil {
		return err
	}
	for _, sub := range blk.SubBlocks {
		if err := renderBlockInto(b, sub, registry); err != nil {
			return err
		}
	}
	b.WriteString("  end block;\n\n")
	return nil
}

// allSubEntities lists the sub-entities an entity instantiates directly or
// through its nested blocks.
func allSubEntities(e *Entity) []*Entity {
	out := append([]*Entity{}, e.SubEntities...)
	var walkBlocks func(blocks []*Block)
	walkBlocks = func(blocks []*Block) {
		for _, blk := range blocks {
			out = append(out, blk.SubEntities...)
			walkBlocks(blk.SubBlocks)
		}
	}
	walkBlocks(e.Blocks)
	return out
}

// subEntityOutputs lists the ports a sub-entity's instantiation drives in
// its parent: the inferred entity outputs, or for a memory entity each read
// port's final data output.
func subEntityOutputs(sub *Entity) []hlim.NodePort {
	if sub.Memory == nil {
		return sub.Outputs
	}
	var out []hlim.NodePort
	seen := map[hlim.NodePort]bool{}
	for _, rp := range sub.Memory.Info.ReadPorts {
		if !seen[rp.DataOutput] {
			seen[rp.DataOutput] = true
			out = append(out, rp.DataOutput)
		}
	}
	return out
}

// renderInstantiation emits a direct entity instantiation of sub inside
// parent, associating each of sub's ports with the parent-scope signal of
// the same IR handle. Clock and reset lines forward under the parent's own
// port names for them.
func renderInstantiation(parent *Entity, sub *Entity, idx int) string {
	var assoc []string
	if sub.Memory != nil {
		// Memory entities allocate their port names in the parent's own
		// scope, so formal and actual coincide.
		for _, p := range memoryEntityPorts(sub.Memory.Info, sub.NS) {
			assoc = append(assoc, p.name+" => "+p.name)
		}
	} else {
		for _, in := range sub.Inputs {
			assoc = append(assoc, sub.NS.NameForPort(in)+" => "+parent.NS.NameForPort(in))
		}
		for _, out := range sub.Outputs {
			assoc = append(assoc, sub.NS.NameForPort(out)+" => "+parent.NS.NameForPort(out))
		}
	}
	for _, cfg := range clocksUsed(sub) {
		assoc = append(assoc, sub.NS.NameForClock(cfg.Clock)+" => "+parent.NS.NameForClock(cfg.Clock))
		if cfg.HasReset {
			_, _, _, resetSig := cfg.Clock.Reset()
			assoc = append(assoc, resetSig+" => "+resetSig)
		}
	}
	label := sub.Name + "_i" + itoa(idx)
	return "  " + label + " : entity work." + sub.Name + "\n    port map (\n      " +
		strings.Join(assoc, ",\n      ") + "\n    );\n\n"
}

// RenderHelperPackage emits the fixed helper package every rendered entity
// depends on: the bool2stdlogic/stdlogic2bool conversion pair, per spec.md
// §6. Memory entities declare their own fixed-width mem_type array.
func RenderHelperPackage(pkg HelperPackage) string {
	var b strings.Builder
	b.WriteString("library ieee;\n")
	b.WriteString("use ieee.std_logic_1164.all;\n\n")
	b.WriteString("package " + pkg.Name + " is\n")
	b.WriteString("  function bool2stdlogic(b : boolean) return std_logic;\n")
	b.WriteString("  function stdlogic2bool(s : std_logic) return boolean;\n")
	b.WriteString("end package " + pkg.Name + ";\n\n")

	b.WriteString("package body " + pkg.Name + " is\n")
	b.WriteString("  function bool2stdlogic(b : boolean) return std_logic is\n")
	b.WriteString("  begin\n    if b then return '1'; else return '0'; end if;\n  end function;\n\n")
	b.WriteString("  function stdlogic2bool(s : std_logic) return boolean is\n")
	b.WriteString("  begin\n    return s = '1';\n  end function;\n")
	b.WriteString("end package body " + pkg.Name + ";\n")
	return b.String()
}

// getDependencySortedEntities flattens ast's entity tree into an emission
// order where every sub-entity precedes its parent, so the GHDL analysis
// script and file writer can process units in dependency order.
func getDependencySortedEntities(ast *AST) []*Entity {
	var order []*Entity
	seen := map[*Entity]bool{}
	var visit func(e *Entity)
	visit = func(e *Entity) {
		if seen[e] {
			return
		}
		seen[e] = true
		sorted := append([]*Entity{}, e.SubEntities...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
		for _, sub := range sorted {
			visit(sub)
		}
		for _, blk := range e.Blocks {
			for _, sub := range blk.SubEntities {
				visit(sub)
			}
		}
		order = append(order, e)
	}
	visit(ast.Root)
	return order
}
