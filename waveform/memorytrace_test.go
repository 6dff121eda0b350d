package waveform_test

import (
	"math/big"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlimgo/hlim"
	"github.com/sarchlab/hlimgo/sim"
	"github.com/sarchlab/hlimgo/waveform"
)

var _ = Describe("MemoryTraceRecorder", func() {
	It("builds an in-memory trace with one signal record per tracked pin, clock, and a changelog", func() {
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

		rec := waveform.NewMemoryTraceRecorder(c, s)
		rec.AddAllPins()
		rec.AddAllNamedSignals()
		s.AddCallbacks(rec)

		s.PowerOn()
		s.SetInputPin(a, literalState(1, 1, 1))
		s.SetInputPin(b, literalState(1, 1, 1))
		s.Advance(1)

		trace := rec.Trace()
		Expect(trace.Data).NotTo(BeNil())
		Expect(len(trace.Signals)).To(BeNumerically(">=", 3))

		var sawClockSignal bool
		for _, sig := range trace.Signals {
			if sig.Name == "clk" {
				sawClockSignal = true
				Expect(sig.Width).To(Equal(1))
				Expect(sig.IsBool).To(BeTrue())
			}
		}
		Expect(sawClockSignal).To(BeTrue())

		Expect(len(trace.Events)).To(BeNumerically(">=", 2))
		var sawChange bool
		for _, ev := range trace.Events {
			if len(ev.Changes) > 0 {
				sawChange = true
			}
		}
		Expect(sawChange).To(BeTrue())
	})
})
