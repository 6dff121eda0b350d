package optimizer

import "github.com/sarchlab/hlimgo/hlim"

func asTwoWayMux(np hlim.NodePort) *hlim.Node {
	if !np.Connected() || np.Node.Kind() != hlim.KindMultiplexer {
		return nil
	}
	if np.Node.NumInputs() != 3 { // SEL + two data inputs
		return nil
	}
	return np.Node
}

// mergeMuxes collapses a two-input mux whose data input is itself a
// two-input mux gated by an equal or negated hierarchy condition: the outer
// mux is rewired to bypass the inner mux's redundant side.
func mergeMuxes(c *hlim.Circuit) {
	for {
		progress := false

		for _, n := range c.Nodes() {
			mux := asTwoWayMux(hlim.NodePort{Node: n, Port: 0})
			if mux == nil {
				continue
			}
			condition := parseCondition(c, mux.Input(0))

			for _, dataPort := range [2]int{1, 2} {
				driver := c.GetNonSignalDriver(mux.Input(dataPort))
				prevMux := asTwoWayMux(driver)
				if prevMux == nil {
					continue
				}

				prevCondition := parseCondition(c, prevMux.Input(0))

				var matches, prevNegated bool
				switch {
				case prevCondition.isEqualOf(condition):
					matches, prevNegated = true, dataPort == 2
				case condition.isNegationOf(prevCondition):
					matches, prevNegated = true, dataPort == 1
				}
				if !matches {
					continue
				}

				bypassPort := 1
				if prevNegated {
					bypassPort = 2
				}
				bypass := prevMux.Input(bypassPort).Driver()
				if err := c.Connect(mux.Input(dataPort), bypass); err == nil {
					progress = true
				}
			}
		}

		if !progress {
			return
		}
	}
}

// cullMuxConditionNegations rewires a mux whose selector is a NOT node to
// the inner signal, swapping the two data inputs to compensate.
func cullMuxConditionNegations(c *hlim.Circuit) {
	for i := 0; i < len(c.Nodes()); i++ {
		mux := asTwoWayMux(hlim.NodePort{Node: c.Nodes()[i], Port: 0})
		if mux == nil {
			continue
		}

		condition := c.GetNonSignalDriver(mux.Input(0))
		if !condition.Connected() || condition.Node.Kind() != hlim.KindLogic {
			continue
		}
		if condition.Node.Detail().(*hlim.LogicDetail).Op != hlim.Not {
			continue
		}

		inner := condition.Node.Input(0).Driver()
		in1 := mux.Input(1).Driver()
		in2 := mux.Input(2).Driver()

		_ = c.Connect(mux.Input(0), inner)
		_ = c.Connect(mux.Input(1), in2)
		_ = c.Connect(mux.Input(2), in1)

		i-- // re-examine in case NOT(NOT(...)) chains need unraveling
	}
}

// removeIrrelevantMuxes bypasses a mux data input when every downstream
// path within the same node group re-muxes on the same condition: the
// subnet behind that data input is then dead weight, since whichever path
// is taken the result is re-selected by an equivalent condition anyway.
func removeIrrelevantMuxes(c *hlim.Circuit) {
	for {
		progress := false

		for _, n := range c.Nodes() {
			mux := asTwoWayMux(hlim.NodePort{Node: n, Port: 0})
			if mux == nil {
				continue
			}
			condition := parseCondition(c, mux.Input(0))

			for _, dataPort := range [2]int{1, 2} {
				for _, muxOutput := range mux.Output(0).Consumers() {
					if subnetAlwaysRemuxed(c, mux, condition, dataPort, muxOutput) {
						if err := c.Connect(muxOutput.Node.Input(muxOutput.Port), mux.Input(dataPort).Driver()); err == nil {
							progress = true
						}
					}
				}
			}
		}

		if !progress {
			return
		}
	}
}

func subnetAlwaysRemuxed(c *hlim.Circuit, mux *hlim.Node, condition *hierarchyCondition, dataPort int, start hlim.NodePort) bool {
	open := []hlim.NodePort{start}
	closed := map[hlim.NodePort]bool{}

	for len(open) > 0 {
		cur := open[len(open)-1]
		open = open[:len(open)-1]
		if closed[cur] {
			continue
		}
		closed[cur] = true

		if cur.Node.HasSideEffects() {
			return false
		}
		if cur.Node.Group() != mux.Group() {
			return false
		}

		if otherMux := asTwoWayMux(hlim.NodePort{Node: cur.Node, Port: 0}); otherMux != nil {
			otherCondition := parseCondition(c, otherMux.Input(0))
			if cur.Port == dataPort && condition.isEqualOf(otherCondition) {
				continue
			}
			if cur.Port != dataPort && condition.isNegationOf(otherCondition) {
				continue
			}
		}

		for i := 0; i < cur.Node.NumOutputs(); i++ {
			open = append(open, cur.Node.Output(i).Consumers()...)
		}
	}

	return true
}
