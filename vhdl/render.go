package vhdl

import "github.com/sarchlab/hlimgo/hlim"

// dependencySort orders nodes so that every node's input drivers which are
// themselves in nodes precede it, detecting combinational cycles the
// optimizer failed to break. It implements the same topological discipline
// the simulator's Program compiler uses, specialized to one process's node
// set rather than the whole circuit.
func dependencySort(nodes []*hlim.Node) ([]*hlim.Node, error) {
	members := make(map[*hlim.Node]bool, len(nodes))
	for _, n := range nodes {
		members[n] = true
	}

	indegree := make(map[*hlim.Node]int, len(nodes))
	dependents := make(map[*hlim.Node][]*hlim.Node, len(nodes))
	for _, n := range nodes {
		for i := 0; i < n.NumInputs(); i++ {
			driver := n.Input(i).Driver()
			if driver.Connected() && members[driver.Node] {
				indegree[n]++
				dependents[driver.Node] = append(dependents[driver.Node], n)
			}
		}
	}

	var ready []*hlim.Node
	for _, n := range nodes {
		if indegree[n] == 0 {
			ready = append(ready, n)
		}
	}

	var order []*hlim.Node
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		for _, dep := range dependents[n] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) != len(nodes) {
		return nil, &hlim.Error{Kind: hlim.CyclicCombinational, Message: "combinational process has a dependency cycle"}
	}
	return order, nil
}

// renderableOutput reports whether a node's output is one formatExpr knows
// how to render. SIGNAL_GENERATOR and SIGNAL_TAP are simulation-only and
// never appear in a combinational process's Nodes in the first place.
func renderableOutput(k hlim.Kind) bool {
	switch k {
	case hlim.KindSignal, hlim.KindConstant, hlim.KindLogic, hlim.KindCompare,
		hlim.KindArithmetic, hlim.KindMultiplexer, hlim.KindPriorityConditional,
		hlim.KindRewire, hlim.KindPin:
		return true
	default:
		return false
	}
}

// combinationalStatements renders p's sensitivity list and ordered body
// statements. The sensitivity list is every signal read by a member node
// but driven outside the process.
func combinationalStatements(ns *NamespaceScope, p *Process) (sensitivity []string, body []string, err error) {
	order, err := dependencySort(p.Nodes)
	if err != nil {
		return nil, nil, err
	}

	members := make(map[*hlim.Node]bool, len(p.Nodes))
	for _, n := range p.Nodes {
		members[n] = true
	}
	seen := map[string]bool{}
	for _, n := range order {
		for i := 0; i < n.NumInputs(); i++ {
			driver := n.Input(i).Driver()
			if !driver.Connected() || members[driver.Node] {
				continue
			}
			if driver.Node.Output(driver.Port).ConnectionType().Interpretation == hlim.Dependency {
				continue
			}
			name := ns.NameForPort(driver)
			if !seen[name] {
				seen[name] = true
				sensitivity = append(sensitivity, name)
			}
		}
	}

	for _, n := range order {
		if !renderableOutput(n.Kind()) {
			continue
		}
		expr, err := formatExpr(ns, n)
		if err != nil {
			return nil, nil, err
		}
		target := ns.NameForPort(hlim.NodePort{Node: n, Port: 0})
		body = append(body, target+" <= "+expr+";")
	}
	return sensitivity, body, nil
}

// registerStatements renders one RegisterProcess's if/elsif ladder: a
// reset branch (sync or async, per Config) and an edge branch per
// register, gated by its own sampled ENABLE.
func registerStatements(ns *NamespaceScope, p *Process) []string {
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

	stmts = append(stmts, registerEdgeStatements(ns, p.Registers)...)
	stmts = append(stmts, "end if;")
	return stmts
}

// registerEdgeStatements renders the clock-edge load for each register,
// gated by its ENABLE where one is connected; a register with no enable
// loads unconditionally.
func registerEdgeStatements(ns *NamespaceScope, regs []*hlim.Node) []string {
	var stmts []string
	for _, reg := range regs {
		target := ns.NameForPort(hlim.NodePort{Node: reg, Port: 0})
		data := sourceOf(ns, reg.Input(0))
		if !reg.Input(2).Driver().Connected() {
			stmts = append(stmts, "  "+target+" <= "+data+";")
			continue
		}
		enable := sourceOf(ns, reg.Input(2))
		stmts = append(stmts, "  if "+enable+" = '1' then")
		stmts = append(stmts, "    "+target+" <= "+data+";")
		stmts = append(stmts, "  end if;")
	}
	return stmts
}
