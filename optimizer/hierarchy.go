package optimizer

import "github.com/sarchlab/hlimgo/hlim"

// hierarchyCondition normalizes the AND-of-literals condition reaching a
// node's boolean input, peeling NOT and flattening AND so that two muxes
// gated by differently-shaped but logically identical selector expressions
// can still be recognized as sharing (or negating) a condition.
type hierarchyCondition struct {
	literals      map[hlim.NodePort]bool
	undefined     bool
	contradicting bool
}

type conditionFrame struct {
	np  hlim.NodePort
	neg bool
}

// parseCondition walks the boolean expression feeding input, peeling NOT
// nodes (flipping the running negation) and flattening AND nodes (visiting
// every operand with the same negation), and collects every other terminal
// as a (port, negated) literal.
func parseCondition(c *hlim.Circuit, input *hlim.InputPort) *hierarchyCondition {
	hc := &hierarchyCondition{literals: map[hlim.NodePort]bool{}}

	var stack []conditionFrame
	if driver := c.GetNonSignalDriver(input); driver.Connected() {
		stack = append(stack, conditionFrame{driver, false})
	} else {
		hc.undefined = true
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := top.np.Node
		if n.Kind() == hlim.KindLogic {
			d := n.Detail().(*hlim.LogicDetail)
			switch d.Op {
			case hlim.Not:
				if driver := c.GetNonSignalDriver(n.Input(0)); driver.Connected() {
					stack = append(stack, conditionFrame{driver, !top.neg})
				} else {
					hc.undefined = true
				}
				continue
			case hlim.And:
				for i := 0; i < n.NumInputs(); i++ {
					if driver := c.GetNonSignalDriver(n.Input(i)); driver.Connected() {
						stack = append(stack, conditionFrame{driver, top.neg})
					} else {
						hc.undefined = true
					}
				}
				continue
			}
		}

		if existing, ok := hc.literals[top.np]; ok {
			if existing != top.neg {
				hc.contradicting = true
			}
		} else {
			hc.literals[top.np] = top.neg
		}
	}

	return hc
}

func (hc *hierarchyCondition) isEqualOf(o *hierarchyCondition) bool {
	if hc.undefined || o.undefined {
		return false
	}
	if hc.contradicting && o.contradicting {
		return true
	}
	if len(hc.literals) != len(o.literals) {
		return false
	}
	for np, neg := range hc.literals {
		if oneg, ok := o.literals[np]; !ok || oneg != neg {
			return false
		}
	}
	return true
}

func (hc *hierarchyCondition) isNegationOf(o *hierarchyCondition) bool {
	if hc.undefined || o.undefined {
		return false
	}
	if hc.contradicting && o.contradicting {
		return false
	}
	if len(hc.literals) != len(o.literals) {
		return false
	}
	for np, neg := range hc.literals {
		oneg, ok := o.literals[np]
		if !ok || oneg == neg {
			return false
		}
	}
	return true
}
