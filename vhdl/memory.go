package vhdl

import (
	"fmt"
	"strings"

	"github.com/sarchlab/hlimgo/bitvec"
	"github.com/sarchlab/hlimgo/hlim"
	"github.com/sarchlab/hlimgo/optimizer"
)

// MemoryEntity is the specialized entity emitted for an SFU memory group:
// a typed 1-D array signal, its power-on constant, and one clocked process
// per clock driving a fused read or write port, per spec.md §4.5's memory
// entity rule.
type MemoryEntity struct {
	Name      string
	Info      *optimizer.MemoryGroupInfo
	WordWidth int
	NumWords  int
}

// buildMemoryEntity reads the *optimizer.MemoryGroupInfo the memory
// detector attached to group's Metadata and renders the entity shell
// around it. It fails with an INTERNAL_INVARIANT error if the group was not
// produced by the memory detector, since that is an internal invariant
// violation rather than a user-facing condition.
func buildMemoryEntity(group *hlim.NodeGroup, ns *NamespaceScope) (*MemoryEntity, error) {
	info, ok := group.Metadata.(*optimizer.MemoryGroupInfo)
	if !ok || info == nil {
		return nil, &hlim.Error{Kind: hlim.InternalInvariant, Message: "SFU group has no memory detector metadata"}
	}

	d := info.Memory.Detail().(*hlim.MemoryDetail)
	name := ns.NameForInternalStorage(info.Memory)

	return &MemoryEntity{
		Name:      "mem_" + name,
		Info:      info,
		WordWidth: d.WordWidth,
		NumWords:  d.NumWords,
	}, nil
}

// memStorageName is the architecture-local signal holding a memory
// entity's storage array. Every port-prefixed name stays clear of it.
const memStorageName = "ram"

// buildMemoryProcesses builds one RegisterProcess per clock involved in
// the group: write ports commit wrData into storage on their clock's edge
// via the MemSignal statement path, and a read port's fused SyncReadReg /
// OutputReg latch its asynchronously-read data through the ordinary
// register-enable path. The asynchronous reads themselves are concurrent
// assignments, emitted by renderMemoryEntity outside any process.
func buildMemoryProcesses(info *optimizer.MemoryGroupInfo, memSignal string) []*Process {
	var procs []*Process

	byClock := map[*hlim.Clock]*Process{}
	procFor := func(clk *hlim.Clock) *Process {
		p := byClock[clk]
		if p == nil {
			kind, polarity, _, _ := clk.Reset()
			p = &Process{
				BaseGrouping: newBaseGrouping(memSignal + "_clocked"),
				Kind:         RegisterProcess,
				Config: RegisterConfig{
					Clock:    clk,
					HasReset: kind != hlim.NoReset,
					Async:    kind == hlim.AsyncReset,
					Polarity: polarity,
				},
				MemSignal: memSignal,
			}
			byClock[clk] = p
			procs = append(procs, p)
		}
		return p
	}

	for _, wp := range info.WritePorts {
		p := procFor(wp.ClockSlot(0))
		p.Nodes = append(p.Nodes, wp)
	}
	for _, rp := range info.ReadPorts {
		if rp.SyncReadReg == nil {
			continue
		}
		p := procFor(rp.SyncReadReg.ClockSlot(0))
		p.Registers = append(p.Registers, rp.SyncReadReg)
		if rp.OutputReg != nil {
			p.Registers = append(p.Registers, rp.OutputReg)
		}
	}
	return procs
}

// memoryProcessStatements renders one clocked memory process's body: every
// MEM_WRITE_PORT in p.Nodes as a memoryStatement guarded by the clock edge,
// followed by the ordinary register-enable statements for any fused
// sync-read/output registers in p.Registers. Reset, where configured,
// clears only the fused registers (the storage array itself has no
// RESET_VALUE input to reset from, per spec.md §4.2's MEMORY contract).
func memoryProcessStatements(ns *NamespaceScope, p *Process) []string {
	clkName := ns.NameForClock(p.Config.Clock)
	edgeFn := "rising_edge"
	if p.Config.Clock.Trigger() == hlim.Falling {
		edgeFn = "falling_edge"
	}

	var stmts []string
	if p.Config.HasReset {
		_, polarity, _, resetSig := p.Config.Clock.Reset()
		cond := resetSig
		if !polarity {
			cond = "not " + resetSig
		}
		if p.Config.Async {
			stmts = append(stmts, "if "+cond+" = '1' then")
		} else {
			stmts = append(stmts, "if "+edgeFn+"("+clkName+") and "+cond+" = '1' then")
		}
		for _, reg := range p.Registers {
			if !reg.Input(1).Driver().Connected() {
				continue
			}
			target := ns.NameForPort(hlim.NodePort{Node: reg, Port: 0})
			stmts = append(stmts, "  "+target+" <= "+sourceOf(ns, reg.Input(1))+";")
		}
		stmts = append(stmts, "elsif "+edgeFn+"("+clkName+") then")
	} else {
		stmts = append(stmts, "if "+edgeFn+"("+clkName+") then")
	}

	for _, n := range p.Nodes {
		stmts = append(stmts, "  "+memoryStatement(ns, n, p.MemSignal))
	}
	stmts = append(stmts, registerEdgeStatements(ns, p.Registers)...)
	stmts = append(stmts, "end if;")
	return stmts
}

// memoryStatement renders one port's effect on memSignal. A MEM_WRITE_PORT
// yields the sequential gated array store for its clocked process; a
// MEM_READ_PORT yields the concurrent asynchronous read assignment
// renderMemoryEntity places outside any process (a fused sync-read
// register then latches that signal through the ordinary register path).
func memoryStatement(ns *NamespaceScope, n *hlim.Node, memSignal string) string {
	switch n.Kind() {
	case hlim.KindMemReadPort:
		data := ns.NameForPort(hlim.NodePort{Node: n, Port: 0})
		enable := sourceOf(ns, n.Input(1))
		addr := sourceOf(ns, n.Input(2))
		return data + " <= std_logic_vector(" + memSignal + "(to_integer(unsigned(" + addr + ")))) when " + enable + " = '1' else (others => 'X');"
	case hlim.KindMemWritePort:
		enable := sourceOf(ns, n.Input(1))
		wrEnable := sourceOf(ns, n.Input(2))
		addr := sourceOf(ns, n.Input(3))
		data := sourceOf(ns, n.Input(4))
		return "if " + enable + " = '1' and " + wrEnable + " = '1' then " + memSignal + "(to_integer(unsigned(" + addr + "))) <= unsigned(" + data + "); end if;"
	default:
		return ""
	}
}

// powerOnLiteral renders a memory's power-on contents as a VHDL aggregate
// literal of mem_type, one element per word, using '0'/'1'/'X' per bit.
func powerOnLiteral(d *hlim.MemoryDetail) string {
	out := "("
	for w := 0; w < d.NumWords; w++ {
		if w > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%d => \"%s\"", w, wordBits(d, w))
	}
	out += ")"
	return out
}

// wordBits renders one memory word's power-on bits MSB-first, matching the
// vector-literal convention VHDL expects for a downto-indexed subtype.
func wordBits(d *hlim.MemoryDetail, word int) string {
	buf := make([]byte, d.WordWidth)
	for i := 0; i < d.WordWidth; i++ {
		idx := word*d.WordWidth + (d.WordWidth - 1 - i)
		switch {
		case !d.PowerOn.Get(bitvec.Defined, idx):
			buf[i] = 'X'
		case d.PowerOn.Get(bitvec.Value, idx):
			buf[i] = '1'
		default:
			buf[i] = '0'
		}
	}
	return string(buf)
}

type memIOPort struct {
	name string
	dir  string
	ct   hlim.ConnectionType
}

// memoryEntityPorts infers a memory entity's IO: one input per
// externally-driven read/write port control signal, one output per read
// port's final data output. Names are allocated in ns, the enclosing
// entity's scope, so instantiation formals and actuals coincide.
func memoryEntityPorts(info *optimizer.MemoryGroupInfo, ns *NamespaceScope) []memIOPort {
	var ports []memIOPort
	seenIn := map[hlim.NodePort]bool{}
	addInput := func(in *hlim.InputPort) {
		driver := in.Driver()
		if !driver.Connected() || seenIn[driver] {
			return
		}
		seenIn[driver] = true
		ports = append(ports, memIOPort{
			name: ns.NameForPort(driver),
			dir:  "in",
			ct:   driver.Node.Output(driver.Port).ConnectionType(),
		})
	}
	for _, wp := range info.WritePorts {
		addInput(wp.Input(1))
		addInput(wp.Input(2))
		addInput(wp.Input(3))
		addInput(wp.Input(4))
	}
	for _, rp := range info.ReadPorts {
		addInput(rp.Port.Input(1))
		addInput(rp.Port.Input(2))
	}

	seenOut := map[hlim.NodePort]bool{}
	for _, rp := range info.ReadPorts {
		if seenOut[rp.DataOutput] {
			continue
		}
		seenOut[rp.DataOutput] = true
		ports = append(ports, memIOPort{
			name: ns.NameForPort(rp.DataOutput),
			dir:  "out",
			ct:   rp.DataOutput.Node.Output(rp.DataOutput.Port).ConnectionType(),
		})
	}
	return ports
}

// renderMemoryEntity assembles a memory SFU group's full standalone
// `entity ... architecture` VHDL text: the mem_type array declaration and
// its power-on constant, entity ports inferred from each read/write port's
// externally-driven inputs and data outputs, one concurrent asynchronous
// read per read port, and one process per clock domain (via
// memoryProcessStatements) committing writes and latching fused sync-read
// and output registers, per spec.md §4.5's memory-entity rule.
func renderMemoryEntity(me *MemoryEntity, ns *NamespaceScope, helperPkgName string) (string, error) {
	info := me.Info
	d := info.Memory.Detail().(*hlim.MemoryDetail)

	ports := memoryEntityPorts(info, ns)
	portNames := map[string]bool{}
	for _, p := range ports {
		portNames[p.name] = true
	}

	procs := buildMemoryProcesses(info, memStorageName)
	var clocks []RegisterConfig
	clockSeen := map[*hlim.Clock]bool{}
	for _, p := range procs {
		if !clockSeen[p.Config.Clock] {
			clockSeen[p.Config.Clock] = true
			clocks = append(clocks, p.Config)
		}
	}

	var b strings.Builder
	b.WriteString("library ieee;\n")
	b.WriteString("use ieee.std_logic_1164.all;\n")
	b.WriteString("use ieee.numeric_std.all;\n")
	b.WriteString("use work." + helperPkgName + ".all;\n\n")

	b.WriteString("entity " + me.Name + " is\n")

	var lines []string
	for _, p := range ports {
		lines = append(lines, "    "+p.name+" : "+p.dir+" "+vhdlType(p.ct)+";")
	}
	for _, cfg := range clocks {
		lines = append(lines, "    "+ns.NameForClock(cfg.Clock)+" : in std_logic;")
		if cfg.HasReset {
			_, _, _, resetSig := cfg.Clock.Reset()
			lines = append(lines, "    "+resetSig+" : in std_logic;")
		}
	}
	if len(lines) > 0 {
		lines[len(lines)-1] = strings.TrimSuffix(lines[len(lines)-1], ";")
		b.WriteString("  port (\n")
		b.WriteString(strings.Join(lines, "\n") + "\n")
		b.WriteString("  );\n")
	}
	b.WriteString("end entity " + me.Name + ";\n\n")

	b.WriteString("architecture rtl of " + me.Name + " is\n\n")
	b.WriteString("  type mem_type is array (0 to " + itoa(me.NumWords-1) + ") of unsigned(" +
		itoa(me.WordWidth-1) + " downto 0);\n")
	b.WriteString("  signal " + memStorageName + " : mem_type := " + powerOnLiteral(d) + ";\n")

	// Fusion leaves the read port's raw data (and, under an output
	// register, the sync-read register's output) as architecture-internal
	// signals between the concurrent read and the clocked latch.
	declared := map[string]bool{}
	declareSignal := func(np hlim.NodePort) {
		name := ns.NameForPort(np)
		if portNames[name] || declared[name] {
			return
		}
		declared[name] = true
		b.WriteString("  signal " + name + " : " + vhdlType(np.Node.Output(np.Port).ConnectionType()) + ";\n")
	}
	for _, rp := range info.ReadPorts {
		if rp.SyncReadReg != nil {
			declareSignal(hlim.NodePort{Node: rp.Port, Port: 0})
		}
		if rp.OutputReg != nil {
			declareSignal(hlim.NodePort{Node: rp.SyncReadReg, Port: 0})
		}
	}

	b.WriteString("\nbegin\n\n")

	for _, rp := range info.ReadPorts {
		b.WriteString("  " + memoryStatement(ns, rp.Port, memStorageName) + "\n")
	}
	b.WriteString("\n")

	for _, p := range procs {
		clkName := ns.NameForClock(p.Config.Clock)
		sens := []string{clkName}
		if p.Config.HasReset {
			_, _, _, resetSig := p.Config.Clock.Reset()
			sens = append(sens, resetSig)
		}
		b.WriteString("  process (" + strings.Join(sens, ", ") + ")\n  begin\n")
		for _, s := range memoryProcessStatements(ns, p) {
			b.WriteString("    " + s + "\n")
		}
		b.WriteString("  end process;\n\n")
	}

	b.WriteString("end architecture rtl;\n")
	return b.String(), nil
}
