package optimizer_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlimgo/bitvec"
	"github.com/sarchlab/hlimgo/hlim"
	"github.com/sarchlab/hlimgo/optimizer"
)

var _ = Describe("constant propagation", func() {
	It("folds an all-constant ADD into a new constant node", func() {
		c := hlim.NewCircuit()

		two := bitvec.New(4)
		two.Set(bitvec.Defined, 0, true)
		two.Set(bitvec.Value, 0, false)
		two.Set(bitvec.Defined, 1, true)
		two.Set(bitvec.Value, 1, true)
		two.Set(bitvec.Defined, 2, true)
		two.Set(bitvec.Defined, 3, true)

		three := bitvec.New(4)
		three.Set(bitvec.Defined, 0, true)
		three.Set(bitvec.Value, 0, true)
		three.Set(bitvec.Defined, 1, true)
		three.Set(bitvec.Value, 1, true)
		three.Set(bitvec.Defined, 2, true)
		three.Set(bitvec.Defined, 3, true)

		a := c.CreateConstant(two, hlim.TwosComplement)
		b := c.CreateConstant(three, hlim.TwosComplement)
		add := c.CreateArithmetic(hlim.Add, 4, hlim.TwosComplement)
		Expect(c.Connect(add.Input(0), hlim.NodePort{Node: a, Port: 0})).To(Succeed())
		Expect(c.Connect(add.Input(1), hlim.NodePort{Node: b, Port: 0})).To(Succeed())

		sink := c.CreatePin(4, hlim.HighZUndefined)
		Expect(c.Connect(sink.Input(0), hlim.NodePort{Node: add, Port: 0})).To(Succeed())

		optimizer.Optimize(c, 3)

		driver := sink.Input(0).Driver()
		Expect(driver.Node.Kind()).To(Equal(hlim.KindConstant))
		lit := driver.Node.Detail().(*hlim.ConstantDetail).Literal
		val, defined := lit.ExtractWord(0, 4)
		Expect(defined).To(Equal(uint64(0xF)))
		Expect(val).To(Equal(uint64(5)))

		Expect(c.Nodes()).NotTo(ContainElement(add))
		Expect(c.Nodes()).NotTo(ContainElement(a))
		Expect(c.Nodes()).NotTo(ContainElement(b))
	})

	It("leaves a LOGIC node alone when one operand stays non-constant", func() {
		c := hlim.NewCircuit()
		mask := bitvec.New(8)
		mask.SetRange(bitvec.Defined, 0, 8, true)
		mask.SetRange(bitvec.Value, 0, 8, true)

		k := c.CreateConstant(mask, hlim.Raw)
		x := c.CreateSignal(hlim.BitVecType(8, hlim.Raw))
		x.SetName("x")

		and := c.CreateLogic(hlim.And, 8, hlim.Raw)
		Expect(c.Connect(and.Input(0), hlim.NodePort{Node: k, Port: 0})).To(Succeed())
		Expect(c.Connect(and.Input(1), hlim.NodePort{Node: x, Port: 0})).To(Succeed())

		pin := c.CreatePin(8, hlim.HighZUndefined)
		Expect(c.Connect(pin.Input(0), hlim.NodePort{Node: and, Port: 0})).To(Succeed())

		optimizer.Optimize(c, 3)

		Expect(c.Nodes()).To(ContainElement(and))
	})
})
