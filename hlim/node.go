package hlim

// ID is a stable, circuit-scoped node or clock identifier reflecting
// creation order. Subgraph copies assign new ids that preserve the
// relative order of the copied set.
type ID int

// Kind tags the closed set of primitive node kinds described in spec.md
// §4.2. Adding a kind is a breaking change: every exhaustive switch on Kind
// in this module must be updated together.
type Kind int

const (
	KindConstant Kind = iota
	KindSignal
	KindArithmetic
	KindCompare
	KindLogic
	KindMultiplexer
	KindPriorityConditional
	KindRegister
	KindRewire
	KindPin
	KindMemory
	KindMemReadPort
	KindMemWritePort
	KindSignalTap
	KindSignalGenerator
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindConstant:
		return "CONSTANT"
	case KindSignal:
		return "SIGNAL"
	case KindArithmetic:
		return "ARITHMETIC"
	case KindCompare:
		return "COMPARE"
	case KindLogic:
		return "LOGIC"
	case KindMultiplexer:
		return "MULTIPLEXER"
	case KindPriorityConditional:
		return "PRIORITY_CONDITIONAL"
	case KindRegister:
		return "REGISTER"
	case KindRewire:
		return "REWIRE"
	case KindPin:
		return "PIN"
	case KindMemory:
		return "MEMORY"
	case KindMemReadPort:
		return "MEM_READ_PORT"
	case KindMemWritePort:
		return "MEM_WRITE_PORT"
	case KindSignalTap:
		return "SIGNAL_TAP"
	case KindSignalGenerator:
		return "SIGNAL_GENERATOR"
	case KindExternal:
		return "EXTERNAL"
	default:
		return "UNKNOWN"
	}
}

// OutputDiscipline is whether an output is driven combinationally every
// reevaluation, latched by a clock edge, or fixed at a constant.
type OutputDiscipline int

const (
	OutputCombinational OutputDiscipline = iota
	OutputLatched
	OutputConstant
)

// NodePort identifies a (node, port-index) pair. The zero value, with Node
// nil, is the unconnected sentinel.
type NodePort struct {
	Node *Node
	Port int
}

// Connected reports whether this NodePort refers to an actual node.
func (p NodePort) Connected() bool { return p.Node != nil }

// InputPort is one input slot of a node: either unconnected, or bound to
// exactly one producer (node, output-port) pair.
type InputPort struct {
	owner  *Node
	index  int
	driver NodePort
	name   string // optional descriptive name, e.g. "DATA", "ENABLE"
}

// Driver returns the producer bound to this input, or the unconnected
// sentinel.
func (p *InputPort) Driver() NodePort { return p.driver }

// Name returns this input's descriptive role name, if any.
func (p *InputPort) Name() string { return p.name }

// Index returns the input's position within its owner's input list.
func (p *InputPort) Index() int { return p.index }

// OutputPort is one output slot of a node: carries a connection type (locked
// once it gains its first consumer), an output discipline, and a fan-out
// list.
type OutputPort struct {
	owner      *Node
	index      int
	connType   ConnectionType
	typeLocked bool
	discipline OutputDiscipline
	consumers  []NodePort
	name       string
}

// ConnectionType returns the output's current connection type.
func (p *OutputPort) ConnectionType() ConnectionType { return p.connType }

// Discipline returns the output's discipline.
func (p *OutputPort) Discipline() OutputDiscipline { return p.discipline }

// SetConnectionType changes the output's connection type. It fails with
// ConnectionTypeLocked once the output has gained its first consumer; the
// type is then frozen for the circuit's lifetime.
func (p *OutputPort) SetConnectionType(ct ConnectionType) error {
	if p.typeLocked {
		return newNodeError(ConnectionTypeLocked,
			"output connection type is locked by an attached consumer", p.owner.id)
	}
	p.connType = ct
	return nil
}

// Consumers returns the fan-out list of this output. Order is not
// meaningful and is not preserved across disconnects.
func (p *OutputPort) Consumers() []NodePort {
	out := make([]NodePort, len(p.consumers))
	copy(out, p.consumers)
	return out
}

// Index returns the output's position within its owner's output list.
func (p *OutputPort) Index() int { return p.index }

// Name returns this output's descriptive role name, if any.
func (p *OutputPort) Name() string { return p.name }

// clockSlot is one clock-binding slot of a node: either unbound, or bound
// to exactly one clock.
type clockSlot struct {
	owner *Node
	index int
	clock *Clock
}

// Clock returns the clock bound to this slot, or nil if unbound.
func (s *clockSlot) Clock() *Clock { return s.clock }

// Node is a typed vertex in the IR: a kind tag, input/output ports, clock
// slots, and group membership, plus optional name/comment/stack-trace
// metadata for diagnostics and VHDL naming.
type Node struct {
	id      ID
	circuit *Circuit
	kind    Kind
	detail  interface{}

	name    string
	comment string
	stack   string
	group   *NodeGroup

	inputs     []InputPort
	outputs    []OutputPort
	clockSlots []clockSlot
}

// ID returns the node's stable identifier within its circuit.
func (n *Node) ID() ID { return n.id }

// Kind returns the node's primitive kind tag.
func (n *Node) Kind() Kind { return n.kind }

// Detail returns the kind-specific configuration value for this node (e.g.
// *ArithmeticDetail for KindArithmetic). Callers type-assert on Kind().
func (n *Node) Detail() interface{} { return n.detail }

// Name returns the node's desired name, or "" if none was set.
func (n *Node) Name() string { return n.name }

// SetName sets the node's desired name, used for VHDL signal naming hints.
func (n *Node) SetName(name string) { n.name = name }

// Comment returns the node's attached comment, if any.
func (n *Node) Comment() string { return n.comment }

// SetComment attaches a comment to the node.
func (n *Node) SetComment(c string) { n.comment = c }

// Stack returns the stack trace captured at creation time, for diagnostics.
func (n *Node) Stack() string { return n.stack }

// Group returns the node group containing this node.
func (n *Node) Group() *NodeGroup { return n.group }

// NumInputs returns the number of input ports.
func (n *Node) NumInputs() int { return len(n.inputs) }

// Input returns the input port at the given index.
func (n *Node) Input(i int) *InputPort { return &n.inputs[i] }

// NumOutputs returns the number of output ports.
func (n *Node) NumOutputs() int { return len(n.outputs) }

// Output returns the output port at the given index.
func (n *Node) Output(i int) *OutputPort { return &n.outputs[i] }

// NumClockSlots returns the number of clock slots.
func (n *Node) NumClockSlots() int { return len(n.clockSlots) }

// ClockSlot returns the clock bound at slot index i, or nil if unbound.
func (n *Node) ClockSlot(i int) *Clock { return n.clockSlots[i].clock }

// HasSideEffects reports whether the node must not be culled by
// dead-code-elimination passes: true for any node with a latched output, for
// every pin, for signal taps, and for memory write ports.
func (n *Node) HasSideEffects() bool {
	switch n.kind {
	case KindPin, KindSignalTap, KindMemWritePort:
		return true
	}
	for i := range n.outputs {
		if n.outputs[i].discipline == OutputLatched {
			return true
		}
	}
	return false
}

func (n *Node) addInput(name string) int {
	n.inputs = append(n.inputs, InputPort{owner: n, index: len(n.inputs), name: name})
	return len(n.inputs) - 1
}

func (n *Node) addOutput(name string, ct ConnectionType, discipline OutputDiscipline) int {
	n.outputs = append(n.outputs, OutputPort{
		owner: n, index: len(n.outputs), name: name,
		connType: ct, discipline: discipline,
	})
	return len(n.outputs) - 1
}

func (n *Node) addClockSlot() int {
	n.clockSlots = append(n.clockSlots, clockSlot{owner: n, index: len(n.clockSlots)})
	return len(n.clockSlots) - 1
}
