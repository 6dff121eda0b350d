// Command hlimdemo builds the two-bit-adder-plus-register circuit from
// spec.md §8 scenario 1, optimizes it, simulates both stimulus rounds, and
// emits a VHDL project (plus an optional self-checking testbench), in the
// same runnable-sample spirit as the teacher's samples/<name>/main.go and
// test/testbench/<name>/main.go programs.
package main

import (
	"fmt"
	"math/big"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/hlimgo/bitvec"
	"github.com/sarchlab/hlimgo/hlim"
	"github.com/sarchlab/hlimgo/optimizer"
	"github.com/sarchlab/hlimgo/report"
	"github.com/sarchlab/hlimgo/sim"
	"github.com/sarchlab/hlimgo/vhdl"
)

func main() {
	var (
		level     int
		outDir    string
		testbench bool
		ghdl      bool
	)

	root := &cobra.Command{
		Use:   "hlimdemo",
		Short: "Build, optimize, simulate, and export the two-bit adder+register demo circuit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(level, outDir, testbench, ghdl)
		},
	}
	root.Flags().IntVar(&level, "level", 3, "optimizer level (0-3)")
	root.Flags().StringVar(&outDir, "out", "hlimdemo-out", "VHDL output directory")
	root.Flags().BoolVar(&testbench, "testbench", true, "record a self-checking VHDL testbench")
	root.Flags().BoolVar(&ghdl, "ghdl", true, "write a GHDL driver script alongside the VHDL")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hlimdemo:", err)
		os.Exit(1)
	}
}

// adderRegisterCircuit builds spec.md §8 scenario 1: two 2-bit input pins
// A, B; a 2-bit register R clocked by CLK (rising, no reset); R.data =
// ADD(A, B); an output pin Y = R.
func adderRegisterCircuit() (c *hlim.Circuit, clk *hlim.Clock, a, b, y *hlim.Node) {
	c = hlim.NewCircuit()
	clk = c.CreateRootClock("CLK", big.NewRat(1, 1))

	a = c.CreatePin(2, hlim.HighZUndefined)
	b = c.CreatePin(2, hlim.HighZUndefined)

	add := c.CreateArithmetic(hlim.Add, 2, hlim.Unsigned)
	must(c.Connect(add.Input(0), hlim.NodePort{Node: a, Port: 0}))
	must(c.Connect(add.Input(1), hlim.NodePort{Node: b, Port: 0}))

	resetVal := c.CreateConstant(literal(2, 0, 0b11), hlim.Unsigned)
	enable := c.CreateConstant(literal(1, 1, 1), hlim.Raw)

	reg := c.CreateRegister(2, hlim.Unsigned)
	must(c.Connect(reg.Input(0), hlim.NodePort{Node: add, Port: 0}))
	must(c.Connect(reg.Input(1), hlim.NodePort{Node: resetVal, Port: 0}))
	must(c.Connect(reg.Input(2), hlim.NodePort{Node: enable, Port: 0}))
	c.AttachClock(reg, 0, clk)

	y = c.CreatePin(2, hlim.HighZUndefined)
	must(c.Connect(y.Input(0), hlim.NodePort{Node: reg, Port: 0}))
	oe := c.CreateConstant(literal(1, 1, 1), hlim.Raw)
	must(c.Connect(y.Input(1), hlim.NodePort{Node: oe, Port: 0}))

	return c, clk, a, b, y
}

func run(level int, outDir string, wantTestbench, wantGHDL bool) error {
	c, clk, a, b, y := adderRegisterCircuit()

	report.WriteCircuitStats(os.Stdout, "Before optimization", c.Stats())
	optimizer.NewOptions().WithLevel(level).Apply(c)
	report.WriteCircuitStats(os.Stdout, "After optimization", c.Stats())

	yPort := hlim.NodePort{Node: y, Port: 0}
	program, err := sim.CompileProgram(c)
	if err != nil {
		return fmt.Errorf("compile program: %w", err)
	}

	s := sim.NewSimulator(program)
	s.PowerOn()
	s.AddSimulationProcess(func(ctx *sim.ProcessContext) {
		ctx.SetInputPin(a, literal(2, 0b01, 0b11))
		ctx.SetInputPin(b, literal(2, 0b01, 0b11))
		ctx.WaitClock(clk)
		fmt.Printf("after A=01 B=01, first CLK edge: Y=%s\n", ctx.GetValueOfOutput(yPort).String())

		ctx.ReleaseInputPin(a)
		ctx.SetInputPin(b, literal(2, 0b01, 0b11))
		ctx.WaitClock(clk)
		fmt.Printf("after A=X B=01, next CLK edge: Y=%s\n", ctx.GetValueOfOutput(yPort).String())
	})
	s.Advance(2)

	ast, err := vhdl.NewVHDLExport(outDir).Export(c)
	if err != nil {
		return fmt.Errorf("export VHDL: %w", err)
	}
	fmt.Printf("wrote %d entit(ies) to %s\n", countEntities(ast.Root), outDir)

	if wantTestbench {
		tbProgram, err := sim.CompileProgram(c)
		if err != nil {
			return fmt.Errorf("compile testbench program: %w", err)
		}
		tbSim := sim.NewSimulator(tbProgram)
		tb := vhdl.RecordTestbench(tbSim, ast, "tb_top")
		tbSim.AddCallbacks(tb)
		tbSim.PowerOn()
		tbSim.AddSimulationProcess(func(ctx *sim.ProcessContext) {
			ctx.SetInputPin(a, literal(2, 0b01, 0b11))
			ctx.SetInputPin(b, literal(2, 0b01, 0b11))
			ctx.WaitClock(clk)
			ctx.GetValueOfOutput(yPort)
		})
		tbSim.AdvanceEvent()
		if err := tb.Close(outDir); err != nil {
			return fmt.Errorf("close testbench: %w", err)
		}
		fmt.Println("wrote tb_top.vhdl")

		if wantGHDL {
			if err := vhdl.WriteGHDLScript(ast, "tb_top", outDir, "run"); err != nil {
				return fmt.Errorf("write GHDL script: %w", err)
			}
			fmt.Println("wrote run.sh")
		}
	}

	return nil
}

func countEntities(e *vhdl.Entity) int {
	n := 1
	for _, sub := range e.SubEntities {
		n += countEntities(sub)
	}
	return n
}

func literal(width int, value, defined uint64) *bitvec.State {
	s := bitvec.New(width)
	s.InsertWord(0, width, value, defined)
	return s
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
