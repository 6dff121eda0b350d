package vhdl_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlimgo/hlim"
	"github.com/sarchlab/hlimgo/sim"
	"github.com/sarchlab/hlimgo/vhdl"
)

var _ = Describe("TestbenchRecorder", func() {
	It("records a stimulus drive and a read as a replayable VHDL process", func() {
		c := hlim.NewCircuit()
		a := c.CreatePin(1, hlim.HighZUndefined)
		b := c.CreatePin(1, hlim.HighZUndefined)
		and := c.CreateLogic(hlim.And, 1, hlim.Raw)
		Expect(c.Connect(and.Input(0), hlim.NodePort{Node: a, Port: 0})).To(Succeed())
		Expect(c.Connect(and.Input(1), hlim.NodePort{Node: b, Port: 0})).To(Succeed())

		ast, err := vhdl.CompileAST(c)
		Expect(err).NotTo(HaveOccurred())

		program, err := sim.CompileProgram(c, hlim.NodePort{Node: and, Port: 0})
		Expect(err).NotTo(HaveOccurred())

		s := sim.NewSimulator(program)
		tb := vhdl.RecordTestbench(s, ast, "tb_top")
		s.AddCallbacks(tb)
		s.PowerOn()

		s.SetInputPin(a, literalState(1, 1, 1))
		s.SetInputPin(b, literalState(1, 1, 1))

		done := make(chan struct{})
		s.AddSimulationProcess(func(ctx *sim.ProcessContext) {
			ctx.WaitFor(1)
			ctx.GetValueOfOutput(hlim.NodePort{Node: and, Port: 0})
			close(done)
		})
		s.Advance(1)
		Eventually(done).Should(BeClosed())

		dir, err := os.MkdirTemp("", "vhdl-testbench")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)

		Expect(tb.Close(dir)).To(Succeed())

		contents, err := os.ReadFile(filepath.Join(dir, "tb_top.vhdl"))
		Expect(err).NotTo(HaveOccurred())
		text := string(contents)

		Expect(text).To(ContainSubstring("entity tb_top is"))
		Expect(text).To(ContainSubstring("uut : entity work." + ast.Root.Name))
		Expect(text).To(ContainSubstring("<= '1';"))
		Expect(text).To(ContainSubstring("wait for"))
		Expect(text).To(ContainSubstring("assert"))
	})
})
