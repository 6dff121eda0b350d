package optimizer

import "github.com/sarchlab/hlimgo/hlim"

// MemoryGroupInfo is the SFU group metadata attached by findMemoryGroups,
// recording the fused shape of each read port so the simulator compiler and
// VHDL emitter can tell a synchronous read (and its optional output
// register) from a plain asynchronous one.
type MemoryGroupInfo struct {
	Memory     *hlim.Node
	WritePorts []*hlim.Node
	ReadPorts  []ReadPortInfo
}

// ReadPortInfo is one read port's fusion result: DataOutput names the final
// (node, port) downstream consumers should read from, which is the read
// port itself unless a sync-read register (and possibly an output
// register) fused into it.
type ReadPortInfo struct {
	Port        *hlim.Node
	SyncReadReg *hlim.Node
	OutputReg   *hlim.Node
	DataOutput  hlim.NodePort
}

// findMemoryGroups gives every MEMORY node its own SFU child group,
// absorbs its read and write ports into it, and attempts to fuse a
// following register onto each read port as a synchronous read — and,
// beyond that, an optional pipeline output register — moving the fused
// signal path and registers into the group as it goes.
func findMemoryGroups(c *hlim.Circuit) {
	for _, n := range c.Nodes() {
		if n.Kind() != hlim.KindMemory {
			continue
		}
		buildMemoryGroup(c, n)
	}
}

func buildMemoryGroup(c *hlim.Circuit, memory *hlim.Node) *MemoryGroupInfo {
	group := memory.Group().CreateChildGroup(hlim.SFU, "memory")
	group.SetComment("Auto generated")

	info := &MemoryGroupInfo{Memory: memory}
	group.Metadata = info
	c.MoveToGroup(memory, group)

	for _, np := range memory.Output(0).Consumers() {
		switch np.Node.Kind() {
		case hlim.KindMemWritePort:
			info.WritePorts = append(info.WritePorts, np.Node)
			c.MoveToGroup(np.Node, group)
		case hlim.KindMemReadPort:
			rp := fuseReadPort(c, group, np.Node)
			info.ReadPorts = append(info.ReadPorts, rp)
		}
	}

	return info
}

func fuseReadPort(c *hlim.Circuit, group *hlim.NodeGroup, readPort *hlim.Node) ReadPortInfo {
	c.MoveToGroup(readPort, group)

	rp := ReadPortInfo{
		Port:       readPort,
		DataOutput: hlim.NodePort{Node: readPort, Port: 0},
	}

	readEnable := c.GetNonSignalDriver(readPort.Input(1))

	syncReg, chain := chaseRegisterFusion(c, hlim.NodePort{Node: readPort, Port: 0}, func(reg *hlim.Node) bool {
		regEnable := c.GetNonSignalDriver(reg.Input(2))
		if !regEnable.Connected() || regEnable != readEnable {
			return false
		}
		return !c.GetNonSignalDriver(reg.Input(1)).Connected()
	})
	if syncReg == nil {
		return rp
	}

	for _, node := range chain {
		c.MoveToGroup(node, group)
	}
	c.MoveToGroup(syncReg, group)
	rp.SyncReadReg = syncReg
	rp.DataOutput = hlim.NodePort{Node: syncReg, Port: 0}

	syncClock := syncReg.ClockSlot(0)
	outReg, outChain := chaseRegisterFusion(c, hlim.NodePort{Node: syncReg, Port: 0}, func(reg *hlim.Node) bool {
		return reg.ClockSlot(0) == syncClock
	})
	if outReg == nil {
		return rp
	}

	for _, node := range outChain {
		c.MoveToGroup(node, group)
	}
	c.MoveToGroup(outReg, group)
	rp.OutputReg = outReg
	rp.DataOutput = hlim.NodePort{Node: outReg, Port: 0}

	return rp
}

// chaseRegisterFusion follows a non-branching chain of pure signal nodes
// from start looking for a register node satisfying accept. Any branch
// (more than one consumer) along the way stops the search, since the
// unregistered value would still be observed elsewhere.
func chaseRegisterFusion(c *hlim.Circuit, start hlim.NodePort, accept func(reg *hlim.Node) bool) (*hlim.Node, []*hlim.Node) {
	var chain []*hlim.Node
	cur := start

	for {
		consumers := cur.Node.Output(cur.Port).Consumers()
		if len(consumers) != 1 {
			return nil, nil
		}
		next := consumers[0]

		switch next.Node.Kind() {
		case hlim.KindRegister:
			if !accept(next.Node) {
				return nil, nil
			}
			return next.Node, chain
		case hlim.KindSignal:
			chain = append(chain, next.Node)
			cur = hlim.NodePort{Node: next.Node, Port: 0}
		default:
			return nil, nil
		}
	}
}
