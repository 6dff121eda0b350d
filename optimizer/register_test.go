package optimizer_test

import (
	"math/big"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlimgo/bitvec"
	"github.com/sarchlab/hlimgo/hlim"
	"github.com/sarchlab/hlimgo/optimizer"
)

var _ = Describe("register/mux enable fold", func() {
	It("folds register.data = mux(c, regOut, a) into register{enable=c, data=a}", func() {
		c := hlim.NewCircuit()
		ct := hlim.BitVecType(4, hlim.Raw)

		cond := c.CreateSignal(hlim.BitType())
		cond.SetName("c")
		a := c.CreateSignal(ct)
		a.SetName("a")

		resetLit := bitvec.New(4)
		resetLit.SetRange(bitvec.Defined, 0, 4, true)
		resetConst := c.CreateConstant(resetLit, hlim.Raw)

		reg := c.CreateRegister(4, hlim.Raw)
		clk := c.CreateRootClock("clk", big.NewRat(1, 1))
		c.AttachClock(reg, 0, clk)
		Expect(c.Connect(reg.Input(1), hlim.NodePort{Node: resetConst, Port: 0})).To(Succeed())

		mux := c.CreateMultiplexer(1, ct, 2)
		Expect(c.Connect(mux.Input(0), hlim.NodePort{Node: cond, Port: 0})).To(Succeed())
		Expect(c.Connect(mux.Input(1), hlim.NodePort{Node: reg, Port: 0})).To(Succeed())
		Expect(c.Connect(mux.Input(2), hlim.NodePort{Node: a, Port: 0})).To(Succeed())

		Expect(c.Connect(reg.Input(0), hlim.NodePort{Node: mux, Port: 0})).To(Succeed())

		optimizer.Optimize(c, 3)

		Expect(reg.Input(0).Driver().Node).To(Equal(a))
		Expect(reg.Input(2).Driver().Node).To(Equal(cond))
	})

	It("folds the symmetric mux(c, a, regOut) pattern using a negated enable", func() {
		c := hlim.NewCircuit()
		ct := hlim.BitVecType(4, hlim.Raw)

		cond := c.CreateSignal(hlim.BitType())
		cond.SetName("c")
		a := c.CreateSignal(ct)
		a.SetName("a")

		resetLit := bitvec.New(4)
		resetLit.SetRange(bitvec.Defined, 0, 4, true)
		resetConst := c.CreateConstant(resetLit, hlim.Raw)

		reg := c.CreateRegister(4, hlim.Raw)
		clk := c.CreateRootClock("clk", big.NewRat(1, 1))
		c.AttachClock(reg, 0, clk)
		Expect(c.Connect(reg.Input(1), hlim.NodePort{Node: resetConst, Port: 0})).To(Succeed())

		mux := c.CreateMultiplexer(1, ct, 2)
		Expect(c.Connect(mux.Input(0), hlim.NodePort{Node: cond, Port: 0})).To(Succeed())
		Expect(c.Connect(mux.Input(1), hlim.NodePort{Node: a, Port: 0})).To(Succeed())
		Expect(c.Connect(mux.Input(2), hlim.NodePort{Node: reg, Port: 0})).To(Succeed())

		Expect(c.Connect(reg.Input(0), hlim.NodePort{Node: mux, Port: 0})).To(Succeed())

		optimizer.Optimize(c, 3)

		Expect(reg.Input(0).Driver().Node).To(Equal(a))

		enableDriver := reg.Input(2).Driver()
		Expect(enableDriver.Node.Kind()).To(Equal(hlim.KindLogic))
		Expect(enableDriver.Node.Detail().(*hlim.LogicDetail).Op).To(Equal(hlim.Not))
		Expect(enableDriver.Node.Input(0).Driver().Node).To(Equal(cond))
	})
})
