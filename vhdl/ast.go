package vhdl

import "github.com/sarchlab/hlimgo/hlim"

// BaseGrouping is the common shape of every emission unit the AST builds:
// entities, blocks, and processes all collect a set of IO ports inferred
// from which drivers/consumers cross their boundary.
type BaseGrouping struct {
	Name    string
	Inputs  []hlim.NodePort
	Outputs []hlim.NodePort

	inputSet  map[hlim.NodePort]bool
	outputSet map[hlim.NodePort]bool
}

func newBaseGrouping(name string) BaseGrouping {
	return BaseGrouping{
		Name:      name,
		inputSet:  make(map[hlim.NodePort]bool),
		outputSet: make(map[hlim.NodePort]bool),
	}
}

func (b *BaseGrouping) addInput(p hlim.NodePort) {
	if !b.inputSet[p] {
		b.inputSet[p] = true
		b.Inputs = append(b.Inputs, p)
	}
}

func (b *BaseGrouping) addOutput(p hlim.NodePort) {
	if !b.outputSet[p] {
		b.outputSet[p] = true
		b.Outputs = append(b.Outputs, p)
	}
}

// Block is a nested scope inside an Entity: a sub-AREA group that itself
// contains entities, externals, or further sub-areas, so it cannot be
// flattened into a single process.
type Block struct {
	BaseGrouping
	Group       *hlim.NodeGroup
	NS          *NamespaceScope
	Processes   []*Process
	SubBlocks   []*Block
	SubEntities []*Entity
	Externals   []*ExternalInstance
}

// Entity is one VHDL entity built from an ENTITY-kind NodeGroup: it owns
// the processes and nested blocks directly inside it, plus references to
// any sub-entities it instantiates.
type Entity struct {
	BaseGrouping
	Group       *hlim.NodeGroup
	NS          *NamespaceScope
	Processes   []*Process
	Blocks      []*Block
	SubEntities []*Entity
	Externals   []*ExternalInstance
	Memory      *MemoryEntity // non-nil iff this entity mirrors an SFU memory group
}

// ExternalInstance is one instantiation of an EXTERNAL node, whose
// component declaration and port map an ExternalNodeHandler supplies.
type ExternalInstance struct {
	Node *hlim.Node
	Name string
	Body string // the handler's rendered instantiation block
}

// ProcessKind distinguishes a combinational process, built from ordered
// assignment statements, from a register process, built from a clocked
// if/elsif ladder.
type ProcessKind int

const (
	CombinatoryProcess ProcessKind = iota
	RegisterProcess
)

// RegisterConfig identifies one distinct (clock, has-reset) configuration
// an Entity's registers are grouped by: every register sharing a
// configuration emits into the same synchronous process.
type RegisterConfig struct {
	Clock     *hlim.Clock
	HasReset  bool
	Async     bool
	Polarity  bool
}

// Process is one VHDL `process` statement: a CombinatoryProcess holds an
// ordered Statements list built by dependency sort over the nodes
// assigned to it; a RegisterProcess holds the Registers sharing its
// RegisterConfig.
type Process struct {
	BaseGrouping
	Kind      ProcessKind
	Config    RegisterConfig
	Nodes     []*hlim.Node // combinational nodes, in emission order
	Registers []*hlim.Node // REGISTER nodes sharing Config

	// MemSignal is non-empty for a memory entity's read/write processes:
	// it names the mem_type signal Nodes' MEM_READ_PORT/MEM_WRITE_PORT
	// statements index into, bypassing the ordinary register/expression
	// rendering path.
	MemSignal string
}

// AST is the top-level emission artifact CompileAST builds: one namespace
// root, one HelperPackage, the root Entity, and the full node→grouping map
// used by expression formatting to decide whether a value must be named
// or can be inlined.
type AST struct {
	Namespace *NamespaceScope
	Root      *Entity
	Helper    HelperPackage

	owner map[*hlim.Node]*BaseGrouping
}

// HelperPackage is the fixed VHDL helper package every emission depends
// on: the bool2stdlogic/stdlogic2bool conversion pair, per spec.md §6's
// wire-level format note.
type HelperPackage struct {
	Name string
}

// OwnerOf returns the grouping (entity, block, or process) a node was
// assigned to during buildFrom, or nil if it has not been assigned yet.
func (a *AST) OwnerOf(n *hlim.Node) *BaseGrouping {
	return a.owner[n]
}

func (a *AST) setOwner(n *hlim.Node, g *BaseGrouping) {
	if a.owner == nil {
		a.owner = make(map[*hlim.Node]*BaseGrouping)
	}
	a.owner[n] = g
}
