package waveform_test

import (
	"bytes"
	"math/big"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlimgo/bitvec"
	"github.com/sarchlab/hlimgo/hlim"
	"github.com/sarchlab/hlimgo/sim"
	"github.com/sarchlab/hlimgo/waveform"
)

func literalState(width int, value, defined uint64) *bitvec.State {
	s := bitvec.New(width)
	s.InsertWord(0, width, value, defined)
	return s
}

var _ = Describe("VCDRecorder", func() {
	It("writes a value change dump with a clocks pseudo-module and traced pin/register values", func() {
		c := hlim.NewCircuit()
		clk := c.CreateRootClock("clk", big.NewRat(4, 1))

		a := c.CreatePin(1, hlim.HighZUndefined)
		a.SetName("a")
		b := c.CreatePin(1, hlim.HighZUndefined)
		b.SetName("b")
		and := c.CreateLogic(hlim.And, 1, hlim.Raw)
		Expect(c.Connect(and.Input(0), hlim.NodePort{Node: a, Port: 0})).To(Succeed())
		Expect(c.Connect(and.Input(1), hlim.NodePort{Node: b, Port: 0})).To(Succeed())

		resetVal := c.CreateConstant(literalState(1, 0, 1), hlim.Raw)
		enable := c.CreateConstant(literalState(1, 1, 1), hlim.Raw)

		reg := c.CreateRegister(1, hlim.Raw)
		reg.SetName("reg")
		c.AttachClock(reg, 0, clk)
		Expect(c.Connect(reg.Input(0), hlim.NodePort{Node: and, Port: 0})).To(Succeed())
		Expect(c.Connect(reg.Input(1), hlim.NodePort{Node: resetVal, Port: 0})).To(Succeed())
		Expect(c.Connect(reg.Input(2), hlim.NodePort{Node: enable, Port: 0})).To(Succeed())

		program, err := sim.CompileProgram(c, hlim.NodePort{Node: reg, Port: 0})
		Expect(err).NotTo(HaveOccurred())

		s := sim.NewSimulator(program)

		var buf bytes.Buffer
		rec := waveform.NewVCDRecorder(&buf, c, s)
		rec.AddAllPins()
		rec.AddAllNamedSignals()
		s.AddCallbacks(rec)

		s.PowerOn()
		s.SetInputPin(a, literalState(1, 1, 1))
		s.SetInputPin(b, literalState(1, 1, 1))
		s.Advance(1)
		Expect(rec.Flush()).To(Succeed())

		text := buf.String()
		Expect(text).To(ContainSubstring("$timescale\n1ps\n$end"))
		Expect(text).To(ContainSubstring("$scope module clocks $end"))
		Expect(text).To(ContainSubstring("clk $end"))
		Expect(text).To(ContainSubstring("$enddefinitions $end"))
		Expect(text).To(ContainSubstring("$dumpvars"))
		Expect(text).To(ContainSubstring("#0"))
		Expect(text).To(ContainSubstring("reg $end"))
	})
})
