package optimizer

import "github.com/sarchlab/hlimgo/hlim"

// removeNoOps removes rewire nodes whose configured output is bit-identical
// to their single input, bypassing consumers straight to that input's
// driver. Block-RAM and mux-fusion passes otherwise stall on these, since a
// pass-through rewire looks like a use.
func removeNoOps(c *hlim.Circuit) {
	for _, n := range c.Nodes() {
		if n.Kind() != hlim.KindRewire {
			continue
		}
		d := n.Detail().(*hlim.RewireDetail)
		if !d.IsIdentity() {
			continue
		}

		driver := n.Input(0).Driver()
		for _, cons := range n.Output(0).Consumers() {
			_ = c.Connect(cons.Node.Input(cons.Port), driver)
		}
		if len(n.Output(0).Consumers()) != 0 {
			// A consumer rejected the underlying driver's type; the rewire
			// still carries real information for it and has to stay.
			continue
		}
		c.DisconnectInput(n.Input(0))
		c.RemoveNode(n)
	}
}
