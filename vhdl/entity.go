package vhdl

import "github.com/sarchlab/hlimgo/hlim"

// CompileAST builds the full VHDL mirror of circuit: a namespace root, the
// helper package, and one Entity per ENTITY-kind group starting from the
// circuit's root group, per spec.md §4.5.
func CompileAST(circuit *hlim.Circuit) (*AST, error) {
	ast := &AST{Namespace: NewRootNamespace(), Helper: HelperPackage{Name: "hlim_helpers"}}

	root, err := ast.buildEntity(circuit.RootGroup(), ast.Namespace.NewChild())
	if err != nil {
		return nil, err
	}
	ast.Root = root
	return ast, nil
}

// buildEntity implements Entity.buildFrom: it partitions group's direct
// nodes and children into sub-entities, external instantiations, one
// combinational process, and one register process per distinct
// (clock, has-reset) configuration, then propagates entity IO.
func (a *AST) buildEntity(group *hlim.NodeGroup, ns *NamespaceScope) (*Entity, error) {
	e := &Entity{BaseGrouping: newBaseGrouping(groupLabel(group)), Group: group, NS: ns}

	combProc := &Process{BaseGrouping: newBaseGrouping(e.Name + "_comb"), Kind: CombinatoryProcess}
	regBuckets := map[RegisterConfig]*Process{}

	assignNode := func(n *hlim.Node) {
		switch {
		case n.Kind() == hlim.KindExternal:
			e.Externals = append(e.Externals, &ExternalInstance{Node: n, Name: ns.NameForIOPin(n)})
			a.setOwner(n, &e.BaseGrouping)
		case n.Kind() == hlim.KindRegister:
			cfg := registerConfig(n)
			p := regBuckets[cfg]
			if p == nil {
				p = &Process{BaseGrouping: newBaseGrouping(e.Name + "_reg"), Kind: RegisterProcess, Config: cfg}
				regBuckets[cfg] = p
				e.Processes = append(e.Processes, p)
			}
			p.Registers = append(p.Registers, n)
			p.Nodes = append(p.Nodes, n)
			a.setOwner(n, &p.BaseGrouping)
		case n.Kind() == hlim.KindPin && !n.Input(0).Driver().Connected():
			// A PIN whose DATA is undriven is a genuine top-level input: its
			// output IS the entity port, not a combinationally-assigned
			// internal signal.
			e.addInput(hlim.NodePort{Node: n, Port: 0})
			a.setOwner(n, &e.BaseGrouping)
		default:
			combProc.Nodes = append(combProc.Nodes, n)
			a.setOwner(n, &combProc.BaseGrouping)
			if n.Kind() == hlim.KindPin {
				// A PIN with driven DATA is an output of the design: the
				// combinational process assigns its observed value straight
				// to the entity port.
				e.addOutput(hlim.NodePort{Node: n, Port: 0})
			}
		}
	}

	for _, n := range group.Nodes() {
		assignNode(n)
	}

	for _, child := range group.Children() {
		switch child.Kind() {
		case hlim.Entity:
			sub, err := a.buildEntity(child, a.Namespace.NewChild())
			if err != nil {
				return nil, err
			}
			e.SubEntities = append(e.SubEntities, sub)
		case hlim.SFU:
			mem, err := buildMemoryEntity(child, ns)
			if err != nil {
				return nil, err
			}
			sub := &Entity{BaseGrouping: newBaseGrouping(mem.Name), Group: child, NS: ns, Memory: mem}
			e.SubEntities = append(e.SubEntities, sub)
			for _, n := range child.Nodes() {
				a.setOwner(n, &sub.BaseGrouping)
			}
		case hlim.Area:
			if isFlattenable(child) {
				for _, n := range child.Nodes() {
					assignNode(n)
				}
			} else {
				blk, err := a.buildBlock(child, ns)
				if err != nil {
					return nil, err
				}
				e.Blocks = append(e.Blocks, blk)
			}
		}
	}

	if len(combProc.Nodes) > 0 {
		e.Processes = append([]*Process{combProc}, e.Processes...)
	}

	a.propagateIO(&e.BaseGrouping, entityNodeSet(e))
	return e, nil
}

func (a *AST) buildBlock(group *hlim.NodeGroup, ns *NamespaceScope) (*Block, error) {
	b := &Block{BaseGrouping: newBaseGrouping(groupLabel(group)), Group: group, NS: ns}
	comb := &Process{BaseGrouping: newBaseGrouping(b.Name + "_comb"), Kind: CombinatoryProcess}
	regBuckets := map[RegisterConfig]*Process{}

	for _, n := range group.Nodes() {
		switch {
		case n.Kind() == hlim.KindExternal:
			b.Externals = append(b.Externals, &ExternalInstance{Node: n, Name: ns.NameForIOPin(n)})
			a.setOwner(n, &b.BaseGrouping)
		case n.Kind() == hlim.KindRegister:
			cfg := registerConfig(n)
			p := regBuckets[cfg]
			if p == nil {
				p = &Process{BaseGrouping: newBaseGrouping(b.Name + "_reg"), Kind: RegisterProcess, Config: cfg}
				regBuckets[cfg] = p
				b.Processes = append(b.Processes, p)
			}
			p.Registers = append(p.Registers, n)
			p.Nodes = append(p.Nodes, n)
			a.setOwner(n, &p.BaseGrouping)
		default:
			comb.Nodes = append(comb.Nodes, n)
			a.setOwner(n, &comb.BaseGrouping)
		}
	}
	if len(comb.Nodes) > 0 {
		b.Processes = append([]*Process{comb}, b.Processes...)
	}

	for _, child := range group.Children() {
		switch child.Kind() {
		case hlim.Entity:
			sub, err := a.buildEntity(child, a.Namespace.NewChild())
			if err != nil {
				return nil, err
			}
			b.SubEntities = append(b.SubEntities, sub)
		case hlim.Area:
			sub, err := a.buildBlock(child, ns)
			if err != nil {
				return nil, err
			}
			b.SubBlocks = append(b.SubBlocks, sub)
		}
	}

	nodeSet := map[*hlim.Node]bool{}
	for _, n := range group.Nodes() {
		nodeSet[n] = true
	}
	a.propagateIO(&b.BaseGrouping, nodeSet)
	return b, nil
}

// isFlattenable reports whether an AREA group contains no entities,
// externals, or sub-areas, so it can merge directly into its parent's
// processes instead of becoming a nested Block, per spec.md §4.5 step 3.
func isFlattenable(group *hlim.NodeGroup) bool {
	for _, n := range group.Nodes() {
		if n.Kind() == hlim.KindExternal {
			return false
		}
	}
	for _, child := range group.Children() {
		if child.Kind() == hlim.Entity || child.Kind() == hlim.Area || child.Kind() == hlim.SFU {
			return false
		}
	}
	return true
}

func registerConfig(n *hlim.Node) RegisterConfig {
	clk := n.ClockSlot(0)
	kind, polarity, _, _ := clk.Reset()
	return RegisterConfig{
		Clock:    clk,
		HasReset: kind != hlim.NoReset,
		Async:    kind == hlim.AsyncReset,
		Polarity: polarity,
	}
}

func groupLabel(group *hlim.NodeGroup) string {
	if group.Name() != "" {
		return group.Name()
	}
	return "top"
}

func entityNodeSet(e *Entity) map[*hlim.Node]bool {
	set := map[*hlim.Node]bool{}
	for _, n := range e.Group.Nodes() {
		set[n] = true
	}
	var walk func(g *hlim.NodeGroup)
	walk = func(g *hlim.NodeGroup) {
		for _, n := range g.Nodes() {
			set[n] = true
		}
		for _, c := range g.Children() {
			if c.Kind() != hlim.Entity {
				walk(c)
			}
		}
	}
	for _, c := range e.Group.Children() {
		if c.Kind() != hlim.Entity {
			walk(c)
		}
	}
	return set
}

// propagateIO marks a port as a grouping input if any driver feeding a
// member node originates outside the membership set, and as an output if
// any consumer of a member node's output lies outside it.
func (a *AST) propagateIO(g *BaseGrouping, members map[*hlim.Node]bool) {
	for n := range members {
		for i := 0; i < n.NumInputs(); i++ {
			driver := n.Input(i).Driver()
			if driver.Connected() && !members[driver.Node] {
				g.addInput(driver)
			}
		}
		for o := 0; o < n.NumOutputs(); o++ {
			for _, consumer := range n.Output(o).Consumers() {
				if !members[consumer.Node] {
					g.addOutput(hlim.NodePort{Node: n, Port: o})
					break
				}
			}
		}
	}
}
