package optimizer

import "github.com/sarchlab/hlimgo/hlim"

// foldRegisterMuxEnableLoops detects a register whose data is a two-way mux
// with regOut on the select-0 input and a on the select-1 input (data :=
// mux(c, regOut, a), data inputs in port order), and rewrites it to an
// enabled load: register{enable=c, data=a}. The symmetric mux(c, a, regOut)
// pattern folds to register{enable=!c, data=a}. An
// existing enable is ANDed with the discovered condition rather than
// overwritten.
func foldRegisterMuxEnableLoops(c *hlim.Circuit) {
	for _, n := range c.Nodes() {
		if n.Kind() != hlim.KindRegister {
			continue
		}
		reg := n

		data := c.GetNonSignalDriver(reg.Input(0))
		mux := asTwoWayMux(data)
		if mux == nil {
			continue
		}

		in1 := c.GetNonSignalDriver(mux.Input(1))
		in2 := c.GetNonSignalDriver(mux.Input(2))
		muxCondition := mux.Input(0).Driver()
		enableCondition := c.GetNonSignalDriver(reg.Input(2))

		var newData hlim.NodePort
		var newEnable hlim.NodePort

		switch {
		case in1.Connected() && in1.Node == reg:
			newData = mux.Input(2).Driver()
			newEnable = muxCondition
		case in2.Connected() && in2.Node == reg:
			notNode := c.CreateLogic(hlim.Not, 1, hlim.Raw)
			c.MoveToGroup(notNode, reg.Group())
			if err := c.Connect(notNode.Input(0), muxCondition); err != nil {
				continue
			}
			newData = mux.Input(1).Driver()
			newEnable = hlim.NodePort{Node: notNode, Port: 0}
		default:
			continue
		}

		if enableCondition.Connected() {
			andNode := c.CreateLogic(hlim.And, 1, hlim.Raw)
			c.MoveToGroup(andNode, reg.Group())
			if err := c.Connect(andNode.Input(0), enableCondition); err != nil {
				continue
			}
			if err := c.Connect(andNode.Input(1), newEnable); err != nil {
				continue
			}
			newEnable = hlim.NodePort{Node: andNode, Port: 0}
		}

		_ = c.Connect(reg.Input(2), newEnable)
		_ = c.Connect(reg.Input(0), newData)
	}
}
