package optimizer

import (
	"github.com/sarchlab/hlimgo/bitvec"
	"github.com/sarchlab/hlimgo/hlim"
)

// propagateConstants seeds a work list from every constant output and walks
// forward: whenever a side-effect-free, state-free node's evaluation comes
// out fully defined with all of its non-constant inputs left undefined, it
// is replaced by a freshly minted constant and the propagation continues
// from there.
func propagateConstants(c *hlim.Circuit) {
	var open []hlim.NodePort
	for _, n := range c.Nodes() {
		if n.Kind() == hlim.KindConstant {
			open = append(open, hlim.NodePort{Node: n, Port: 0})
		}
	}

	for len(open) > 0 {
		constPort := open[len(open)-1]
		open = open[:len(open)-1]

		for _, succ := range constPort.Node.Output(constPort.Port).Consumers() {
			n := succ.Node

			if n.Kind() == hlim.KindSignal {
				open = append(open, hlim.NodePort{Node: n, Port: 0})
				continue
			}
			if n.HasSideEffects() || hlim.InternalStateWidth(n) != 0 || !foldable(n.Kind()) {
				continue
			}

			if np, ok := tryFold(c, n); ok {
				open = append(open, np)
			}
		}
	}
}

// foldable reports whether propagateConstants may evaluate a node kind in
// isolation. Ports into a MEMORY carry state no scratch buffer can see, so
// they are never folded even when side-effect-free and address-constant.
func foldable(k hlim.Kind) bool {
	switch k {
	case hlim.KindArithmetic, hlim.KindCompare, hlim.KindLogic,
		hlim.KindMultiplexer, hlim.KindPriorityConditional, hlim.KindRewire:
		return true
	default:
		return false
	}
}

// tryFold evaluates n with every non-constant input left undefined; if
// every bit of some output comes out fully defined, it replaces n with a
// constant carrying that result and rewires n's consumers to it.
func tryFold(c *hlim.Circuit, n *hlim.Node) (hlim.NodePort, bool) {
	buf := bitvec.New(0)
	inOff := make([]int, n.NumInputs())

	for i := 0; i < n.NumInputs(); i++ {
		driver := c.GetNonSignalDriver(n.Input(i))
		if !driver.Connected() {
			// An unconnected input reads its own undefined region instead
			// of aliasing another input's offset.
			off := buf.Size()
			buf.Grow(off + hlim.ExpectedInputWidth(n, i))
			inOff[i] = off
			continue
		}
		ct := driver.Node.Output(driver.Port).ConnectionType()
		off := buf.Size()
		buf.Grow(off + ct.Width)
		inOff[i] = off

		if driver.Node.Kind() == hlim.KindConstant {
			hlim.Reset(c, driver.Node, buf, []int{off}, 0)
		}
	}

	outOff := make([]int, n.NumOutputs())
	for i := 0; i < n.NumOutputs(); i++ {
		ct := n.Output(i).ConnectionType()
		off := buf.Size()
		buf.Grow(off + ct.Width)
		outOff[i] = off
	}

	hlim.Evaluate(n, buf, inOff, outOff, 0, 0)

	for i := 0; i < n.NumOutputs(); i++ {
		ct := n.Output(i).ConnectionType()
		if ct.Width == 0 || !buf.AllDefined(outOff[i], ct.Width) {
			continue
		}

		literal := buf.Extract(outOff[i], ct.Width)
		constant := c.CreateConstant(literal, ct.Numeric)
		c.MoveToGroup(constant, n.Group())
		newSource := hlim.NodePort{Node: constant, Port: 0}

		for _, cons := range n.Output(i).Consumers() {
			_ = c.Connect(cons.Node.Input(cons.Port), newSource)
		}

		return newSource, true
	}

	return hlim.NodePort{}, false
}
