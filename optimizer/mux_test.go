package optimizer_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlimgo/hlim"
	"github.com/sarchlab/hlimgo/optimizer"
)

var _ = Describe("mux simplification", func() {
	It("cullMuxConditionNegations swaps data inputs and drops the NOT", func() {
		c := hlim.NewCircuit()
		ct := hlim.BitVecType(1, hlim.Raw)
		cond := c.CreateSignal(hlim.BitType())
		cond.SetName("cond")
		notCond := c.CreateLogic(hlim.Not, 1, hlim.Raw)
		Expect(c.Connect(notCond.Input(0), hlim.NodePort{Node: cond, Port: 0})).To(Succeed())

		a := c.CreateSignal(ct)
		a.SetName("a")
		b := c.CreateSignal(ct)
		b.SetName("b")

		mux := c.CreateMultiplexer(1, ct, 2)
		Expect(c.Connect(mux.Input(0), hlim.NodePort{Node: notCond, Port: 0})).To(Succeed())
		Expect(c.Connect(mux.Input(1), hlim.NodePort{Node: a, Port: 0})).To(Succeed())
		Expect(c.Connect(mux.Input(2), hlim.NodePort{Node: b, Port: 0})).To(Succeed())

		sink := c.CreatePin(1, hlim.HighZUndefined)
		Expect(c.Connect(sink.Input(0), hlim.NodePort{Node: mux, Port: 0})).To(Succeed())

		optimizer.Optimize(c, 3)

		Expect(mux.Input(0).Driver().Node).To(Equal(cond))
		Expect(mux.Input(1).Driver().Node).To(Equal(b))
		Expect(mux.Input(2).Driver().Node).To(Equal(a))
	})

	It("mergeMuxes bypasses a chained mux sharing the outer condition", func() {
		c := hlim.NewCircuit()
		ct := hlim.BitVecType(1, hlim.Raw)

		cond := c.CreateSignal(hlim.BitType())
		cond.SetName("cond")
		condSrc := c.CreatePin(1, hlim.HighZUndefined)
		Expect(c.Connect(cond.Input(0), hlim.NodePort{Node: condSrc, Port: 0})).To(Succeed())
		a := c.CreateSignal(ct)
		a.SetName("a")
		b := c.CreateSignal(ct)
		b.SetName("b")
		x := c.CreateSignal(ct)
		x.SetName("x")

		inner := c.CreateMultiplexer(1, ct, 2)
		Expect(c.Connect(inner.Input(0), hlim.NodePort{Node: cond, Port: 0})).To(Succeed())
		Expect(c.Connect(inner.Input(1), hlim.NodePort{Node: a, Port: 0})).To(Succeed())
		Expect(c.Connect(inner.Input(2), hlim.NodePort{Node: b, Port: 0})).To(Succeed())

		outer := c.CreateMultiplexer(1, ct, 2)
		Expect(c.Connect(outer.Input(0), hlim.NodePort{Node: cond, Port: 0})).To(Succeed())
		Expect(c.Connect(outer.Input(1), hlim.NodePort{Node: inner, Port: 0})).To(Succeed())
		Expect(c.Connect(outer.Input(2), hlim.NodePort{Node: x, Port: 0})).To(Succeed())

		sink := c.CreatePin(1, hlim.HighZUndefined)
		Expect(c.Connect(sink.Input(0), hlim.NodePort{Node: outer, Port: 0})).To(Succeed())

		optimizer.Optimize(c, 3)

		// outer's data-1 slot shared inner's condition, so it is rewired
		// past inner straight to inner's own data-1 driver (a).
		Expect(outer.Input(1).Driver().Node).To(Equal(a))
	})
})
