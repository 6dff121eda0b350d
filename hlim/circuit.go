package hlim

import "math/big"

// Circuit is the top-level container: it exclusively owns every node,
// clock, and the root node group. Node ids are assigned in creation order
// and are stable for the lifetime of the circuit.
type Circuit struct {
	nodes  []*Node
	clocks []*Clock
	root   *NodeGroup

	nextNodeID         ID
	nextClockID        ID
	nextGroupIDCounter ID
}

// NewCircuit creates an empty circuit with a single root ENTITY group
// named "top".
func NewCircuit() *Circuit {
	c := &Circuit{}
	c.root = &NodeGroup{id: c.nextGroupID(), circuit: c, kind: Entity, name: "top"}
	return c
}

func (c *Circuit) nextGroupID() ID {
	id := c.nextGroupIDCounter
	c.nextGroupIDCounter++
	return id
}

// RootGroup returns the circuit's root node group.
func (c *Circuit) RootGroup() *NodeGroup { return c.root }

// Nodes returns every live node in creation order.
func (c *Circuit) Nodes() []*Node {
	out := make([]*Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// Clocks returns every clock in creation order.
func (c *Circuit) Clocks() []*Clock {
	out := make([]*Clock, len(c.clocks))
	copy(out, c.clocks)
	return out
}

// Stats summarizes a circuit's size for CLI/report output: a histogram of
// live node kinds and the total number of node groups reachable from the
// root, not used by any invariant.
type Stats struct {
	NodeKindCounts map[string]int
	NodeCount      int
	ClockCount     int
	GroupCount     int
}

// Stats computes a fresh Stats snapshot.
func (c *Circuit) Stats() Stats {
	s := Stats{NodeKindCounts: map[string]int{}}
	for _, n := range c.nodes {
		s.NodeKindCounts[n.Kind().String()]++
	}
	s.NodeCount = len(c.nodes)
	s.ClockCount = len(c.clocks)

	var walk func(g *NodeGroup)
	walk = func(g *NodeGroup) {
		s.GroupCount++
		for _, child := range g.Children() {
			walk(child)
		}
	}
	walk(c.root)
	return s
}

// createNode appends an owned node of the given kind to the circuit,
// assigns the next id, places it in the root group, and returns a
// non-owning handle. Node creation never fails.
func (c *Circuit) createNode(kind Kind, detail interface{}) *Node {
	n := &Node{
		id:      c.nextNodeID,
		circuit: c,
		kind:    kind,
		detail:  detail,
		group:   c.root,
		stack:   captureStack(),
	}
	c.nextNodeID++
	c.nodes = append(c.nodes, n)
	c.root.nodes = append(c.root.nodes, n)
	return n
}

// CreateRootClock creates a root clock with an absolute frequency in Hz,
// expressed as a rational to avoid rounding error in derived-clock chains.
func (c *Circuit) CreateRootClock(name string, frequencyHz *big.Rat) *Clock {
	clk := &Clock{
		id:                c.nextClockID,
		name:              name,
		absoluteFrequency: new(big.Rat).Set(frequencyHz),
	}
	c.nextClockID++
	c.clocks = append(c.clocks, clk)
	return clk
}

// CreateDerivedClock creates a clock derived from parent by a rational
// multiplier and phase shift (a fraction of one parent period).
func (c *Circuit) CreateDerivedClock(parent *Clock, name string, multiplier, phaseShift *big.Rat) *Clock {
	clk := &Clock{
		id:         c.nextClockID,
		name:       name,
		parent:     parent,
		multiplier: new(big.Rat).Set(multiplier),
		phaseShift: new(big.Rat).Set(phaseShift),
	}
	c.nextClockID++
	c.clocks = append(c.clocks, clk)
	return clk
}

// Connect binds input to producer. If the input was already bound, the
// previous producer is detached first. On the output's first consumer
// attach, its connection type becomes immutable. Returns a TypeMismatch
// error if the consuming node kind rejects the producer's connection type;
// otherwise never fails.
func (c *Circuit) Connect(input *InputPort, producer NodePort) error {
	if producer.Connected() {
		pt := producer.Node.outputs[producer.Port].connType
		if !compatibleInput(input.owner, input.index, pt) {
			return newNodeError(TypeMismatch,
				"producer connection type incompatible with input "+input.name,
				input.owner.id)
		}
	}

	if input.driver.Connected() {
		c.disconnectInputNoCheck(input)
	}

	input.driver = producer
	if producer.Connected() {
		out := &producer.Node.outputs[producer.Port]
		out.typeLocked = true
		out.consumers = append(out.consumers, NodePort{Node: input.owner, Port: input.index})
	}
	return nil
}

// DisconnectInput symmetrically removes the producer bound to input, if
// any. The order of the producer's remaining fan-out entries is not
// preserved.
func (c *Circuit) DisconnectInput(input *InputPort) {
	if !input.driver.Connected() {
		return
	}
	c.disconnectInputNoCheck(input)
}

func (c *Circuit) disconnectInputNoCheck(input *InputPort) {
	producer := input.driver
	out := &producer.Node.outputs[producer.Port]
	for i, cons := range out.consumers {
		if cons.Node == input.owner && cons.Port == input.index {
			out.consumers[i] = out.consumers[len(out.consumers)-1]
			out.consumers = out.consumers[:len(out.consumers)-1]
			break
		}
	}
	input.driver = NodePort{}
}

// GetDriver returns the producer bound to the given input port, or the
// unconnected sentinel.
func (c *Circuit) GetDriver(input *InputPort) NodePort {
	return input.driver
}

// GetNonSignalDriver walks through KindSignal producers until it reaches
// the first non-signal producer or an unconnected sentinel.
func (c *Circuit) GetNonSignalDriver(input *InputPort) NodePort {
	cur := input.driver
	for cur.Connected() && cur.Node.kind == KindSignal {
		cur = cur.Node.inputs[0].driver
	}
	return cur
}

// MoveToGroup removes n from its current group and appends it to dst.
func (c *Circuit) MoveToGroup(n *Node, dst *NodeGroup) {
	if n.group == dst {
		return
	}
	if n.group != nil {
		n.group.removeNode(n)
	}
	n.group = dst
	dst.nodes = append(dst.nodes, n)
}

// AttachClock symmetrically binds the node's clock slot to clk.
func (c *Circuit) AttachClock(n *Node, slot int, clk *Clock) {
	c.DetachClock(n, slot)
	n.clockSlots[slot].clock = clk
	clk.attachSlot(n, slot)
}

// DetachClock symmetrically unbinds the node's clock slot.
func (c *Circuit) DetachClock(n *Node, slot int) {
	cur := n.clockSlots[slot].clock
	if cur == nil {
		return
	}
	cur.detachSlot(n, slot)
	n.clockSlots[slot].clock = nil
}

// RemoveNode deletes n from the circuit's node list and its group. Used by
// optimizer passes; callers must have already disconnected every input and
// fan-out consumer.
func (c *Circuit) RemoveNode(n *Node) {
	for i, cand := range c.nodes {
		if cand == n {
			c.nodes = append(c.nodes[:i], c.nodes[i+1:]...)
			break
		}
	}
	if n.group != nil {
		n.group.removeNode(n)
	}
	for slot := range n.clockSlots {
		c.DetachClock(n, slot)
	}
}
