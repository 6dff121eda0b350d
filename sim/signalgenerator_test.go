package sim_test

import (
	"math/big"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlimgo/bitvec"
	"github.com/sarchlab/hlimgo/hlim"
	"github.com/sarchlab/hlimgo/sim"
)

var _ = Describe("signal generator", func() {
	It("emits tick 0 at power-on and advances its producer on every clock edge", func() {
		c := hlim.NewCircuit()
		clk := c.CreateRootClock("clk", big.NewRat(1, 1))

		gen := c.CreateSignalGenerator(
			[]hlim.ConnectionType{hlim.BitVecType(4, hlim.Unsigned)},
			func(tick int) []*bitvec.State {
				return []*bitvec.State{literal(4, uint64(tick), 0xF)}
			},
		)
		c.AttachClock(gen, 0, clk)

		program, err := sim.CompileProgram(c)
		Expect(err).NotTo(HaveOccurred())

		s := sim.NewSimulator(program)
		s.PowerOn()

		out := hlim.NodePort{Node: gen, Port: 0}
		Expect(s.GetValueOfOutput(out).String()).To(Equal("0000"))

		Expect(s.AdvanceEvent()).To(BeTrue()) // rising edge: tick 1
		Expect(s.GetValueOfOutput(out).String()).To(Equal("0001"))

		Expect(s.AdvanceEvent()).To(BeTrue()) // falling edge: held
		Expect(s.GetValueOfOutput(out).String()).To(Equal("0001"))

		Expect(s.AdvanceEvent()).To(BeTrue()) // next rising edge: tick 2
		Expect(s.GetValueOfOutput(out).String()).To(Equal("0010"))
	})

	It("restarts its tick counter when the simulator is powered on again", func() {
		c := hlim.NewCircuit()
		clk := c.CreateRootClock("clk", big.NewRat(1, 1))

		gen := c.CreateSignalGenerator(
			[]hlim.ConnectionType{hlim.BitVecType(4, hlim.Unsigned)},
			func(tick int) []*bitvec.State {
				return []*bitvec.State{literal(4, uint64(tick), 0xF)}
			},
		)
		c.AttachClock(gen, 0, clk)

		program, err := sim.CompileProgram(c)
		Expect(err).NotTo(HaveOccurred())

		s := sim.NewSimulator(program)
		s.PowerOn()
		Expect(s.AdvanceEvent()).To(BeTrue())

		out := hlim.NodePort{Node: gen, Port: 0}
		Expect(s.GetValueOfOutput(out).String()).To(Equal("0001"))

		s.PowerOn()
		Expect(s.GetValueOfOutput(out).String()).To(Equal("0000"))
	})
})
