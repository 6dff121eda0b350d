package hlim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlimgo/bitvec"
	"github.com/sarchlab/hlimgo/hlim"
)

var _ = Describe("graph exploration", func() {
	// a ─┐
	//    ├─ and ── sig
	// b ─┘
	buildNet := func() (c *hlim.Circuit, a, b, and, sig *hlim.Node) {
		c = hlim.NewCircuit()
		a = c.CreatePin(1, hlim.HighZUndefined)
		b = c.CreatePin(1, hlim.HighZUndefined)
		and = c.CreateLogic(hlim.And, 1, hlim.Raw)
		Expect(c.Connect(and.Input(0), hlim.NodePort{Node: a, Port: 0})).To(Succeed())
		Expect(c.Connect(and.Input(1), hlim.NodePort{Node: b, Port: 0})).To(Succeed())
		sig = c.CreateSignal(hlim.BitType())
		Expect(c.Connect(sig.Input(0), hlim.NodePort{Node: and, Port: 0})).To(Succeed())
		return c, a, b, and, sig
	}

	It("walks forward from an output through every downstream consumer", func() {
		_, a, _, and, sig := buildNet()

		var visited []*hlim.Node
		e := hlim.NewExploration(hlim.Forward, hlim.NodePort{Node: a, Port: 0}, false)
		for e.Next() {
			visited = append(visited, e.Current().Node)
		}
		Expect(visited).To(Equal([]*hlim.Node{and, sig}))
	})

	It("walks backward from an input through every transitive driver", func() {
		_, a, b, and, sig := buildNet()

		drivers := map[*hlim.Node]bool{}
		e := hlim.NewExploration(hlim.Backward, hlim.NodePort{Node: sig, Port: 0}, false)
		for e.Next() {
			drivers[e.Current().Node] = true
		}
		Expect(drivers).To(HaveKey(and))
		Expect(drivers).To(HaveKey(a))
		Expect(drivers).To(HaveKey(b))
		Expect(drivers).To(HaveLen(3))
	})

	It("discards a subtree when the visitor backtracks", func() {
		_, a, _, and, _ := buildNet()

		var visited []*hlim.Node
		e := hlim.NewExploration(hlim.Forward, hlim.NodePort{Node: a, Port: 0}, false)
		for e.Next() {
			visited = append(visited, e.Current().Node)
			e.Backtrack()
		}
		Expect(visited).To(Equal([]*hlim.Node{and}))
	})

	It("skips DEPENDENCY-typed outputs when asked to", func() {
		c := hlim.NewCircuit()
		mem := c.CreateMemory(8, 4, bitvec.New(32))
		rp := c.CreateMemReadPort(8, 2)
		Expect(c.Connect(rp.Input(0), hlim.NodePort{Node: mem, Port: 0})).To(Succeed())

		e := hlim.NewExploration(hlim.Forward, hlim.NodePort{Node: mem, Port: 0}, true)
		Expect(e.Next()).To(BeFalse())

		e = hlim.NewExploration(hlim.Forward, hlim.NodePort{Node: mem, Port: 0}, false)
		Expect(e.Next()).To(BeTrue())
		Expect(e.Current().Node).To(Equal(rp))
	})
})
