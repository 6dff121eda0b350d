package sim_test

import (
	"math/big"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlimgo/bitvec"
	"github.com/sarchlab/hlimgo/hlim"
	"github.com/sarchlab/hlimgo/sim"
)

var _ = Describe("simulation processes", func() {
	It("drives a PIN's output immediately, reevaluating before it returns control", func() {
		c := hlim.NewCircuit()
		pin := c.CreatePin(1, hlim.HighZUndefined)

		program, err := sim.CompileProgram(c)
		Expect(err).NotTo(HaveOccurred())

		s := sim.NewSimulator(program)
		s.PowerOn()

		out := hlim.NodePort{Node: pin, Port: 0}
		Expect(s.GetValueOfOutput(out).Get(bitvec.Defined, 0)).To(BeFalse())

		s.AddSimulationProcess(func(ctx *sim.ProcessContext) {
			ctx.SetInputPin(pin, literal(1, 1, 1))
			ctx.WaitFor(1)
		})

		Expect(s.GetValueOfOutput(out).String()).To(Equal("1"))
	})

	It("resumes a process waiting on a clock after the bound register advances", func() {
		c := hlim.NewCircuit()
		clk := c.CreateRootClock("clk", big.NewRat(1, 1))

		lit := c.CreateConstant(literal(1, 1, 1), hlim.Raw)
		enable := c.CreateConstant(literal(1, 1, 1), hlim.Raw)
		resetVal := c.CreateConstant(literal(1, 0, 1), hlim.Raw)

		reg := c.CreateRegister(1, hlim.Raw)
		Expect(c.Connect(reg.Input(0), hlim.NodePort{Node: lit, Port: 0})).To(Succeed())
		Expect(c.Connect(reg.Input(1), hlim.NodePort{Node: resetVal, Port: 0})).To(Succeed())
		Expect(c.Connect(reg.Input(2), hlim.NodePort{Node: enable, Port: 0})).To(Succeed())
		c.AttachClock(reg, 0, clk)

		program, err := sim.CompileProgram(c)
		Expect(err).NotTo(HaveOccurred())

		s := sim.NewSimulator(program)
		s.PowerOn()

		seen := make(chan string, 1)
		s.AddSimulationProcess(func(ctx *sim.ProcessContext) {
			ctx.WaitClock(clk)
			v := ctx.GetValueOfOutput(hlim.NodePort{Node: reg, Port: 0})
			seen <- v.String()
		})

		Expect(s.AdvanceEvent()).To(BeTrue())

		Eventually(seen).Should(Receive(Equal("1")))
	})

	It("resumes a WaitUntil process on a rising edge of the watched port", func() {
		c := hlim.NewCircuit()
		pin := c.CreatePin(1, hlim.HighZUndefined)
		port := hlim.NodePort{Node: pin, Port: 0}

		program, err := sim.CompileProgram(c)
		Expect(err).NotTo(HaveOccurred())

		s := sim.NewSimulator(program)
		s.PowerOn()

		fired := make(chan struct{}, 1)
		s.AddSimulationProcess(func(ctx *sim.ProcessContext) {
			ctx.WaitUntil(port, sim.Rising)
			fired <- struct{}{}
		})

		s.Advance(0) // establishes the watched port's baseline sample
		Consistently(fired).ShouldNot(Receive())

		s.SetInputPin(pin, literal(1, 1, 1))
		s.Advance(0)

		Eventually(fired).Should(Receive())
	})
})
