package optimizer

import "github.com/sarchlab/hlimgo/hlim"

// cullOrphanedSignalNodes removes signal nodes with no driver and no
// fan-out: artifacts of earlier rewrites that carry nothing anymore.
func cullOrphanedSignalNodes(c *hlim.Circuit) {
	for _, n := range c.Nodes() {
		if n.Kind() != hlim.KindSignal {
			continue
		}
		if n.Input(0).Driver().Connected() {
			continue
		}
		if len(n.Output(0).Consumers()) != 0 {
			continue
		}
		c.RemoveNode(n)
	}
}

// cullUnnamedSignalNodes removes signal nodes whose presence carries no
// naming information worth keeping: either their driver is itself a signal
// (or nothing), or every one of their consumers is itself a signal. Their
// consumers are rewired directly to the original driver.
func cullUnnamedSignalNodes(c *hlim.Circuit) {
	for _, n := range c.Nodes() {
		if n.Kind() != hlim.KindSignal || n.Name() != "" {
			continue
		}

		driver := n.Input(0).Driver()
		inputIsSignalOrUnconnected := !driver.Connected() || driver.Node.Kind() == hlim.KindSignal

		allConsumersAreSignals := true
		consumers := n.Output(0).Consumers()
		for _, cons := range consumers {
			if cons.Node.Kind() != hlim.KindSignal {
				allConsumersAreSignals = false
				break
			}
		}

		if !inputIsSignalOrUnconnected && !allConsumersAreSignals {
			continue
		}

		for _, cons := range consumers {
			// A signal's input and output share one connection type, so
			// rewiring its consumers straight to its own driver can never
			// fail a type check.
			_ = c.Connect(cons.Node.Input(cons.Port), driver)
		}
		c.DisconnectInput(n.Input(0))
		c.RemoveNode(n)
	}
}

func isUnusedNode(n *hlim.Node) bool {
	if n.HasSideEffects() {
		return false
	}
	for i := 0; i < n.NumOutputs(); i++ {
		if len(n.Output(i).Consumers()) != 0 {
			return false
		}
	}
	return true
}

// cullUnusedNodes repeatedly removes any node with no side effects and no
// connected output consumer, until a pass removes nothing.
func cullUnusedNodes(c *hlim.Circuit) {
	for {
		removedAny := false
		for _, n := range c.Nodes() {
			if isUnusedNode(n) {
				for i := 0; i < n.NumInputs(); i++ {
					c.DisconnectInput(n.Input(i))
				}
				c.RemoveNode(n)
				removedAny = true
			}
		}
		if !removedAny {
			return
		}
	}
}
