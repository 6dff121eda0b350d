// Command hlimcheck is the optimizer-equivalence and memory-detector
// fuzz-checker named in SPEC_FULL.md §2: for a handful of canned circuit
// families it simulates both the unoptimized and the optimized circuit
// against the same stimulus vectors and asserts the observed output
// agrees, per spec.md §8's "optimizer preserves observable behavior"
// property, plus one structural check that a MEMORY node and its ports
// are grouped the way the memory-detector pass promises.
package main

import (
	"fmt"
	"math/big"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/hlimgo/bitvec"
	"github.com/sarchlab/hlimgo/hlim"
	"github.com/sarchlab/hlimgo/optimizer"
	"github.com/sarchlab/hlimgo/report"
	"github.com/sarchlab/hlimgo/sim"
	"github.com/sarchlab/hlimgo/stim"
)

func main() {
	var level, trials int
	var seed int64

	root := &cobra.Command{
		Use:   "hlimcheck",
		Short: "Fuzz-check that optimizer passes preserve simulated behavior",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng := rand.New(rand.NewSource(seed))
			cases := []report.EquivalenceCase{
				checkConstFoldDCE(rng, level, trials),
				checkRegisterMuxFold(rng, level, trials),
				checkPriorityConditional(rng, trials),
				checkMemoryGrouping(),
			}
			report.WriteEquivalenceReport(os.Stdout, cases)
			for _, c := range cases {
				if !c.Passed {
					return fmt.Errorf("equivalence check failed: %s", c.Name)
				}
			}
			return nil
		},
	}
	root.Flags().IntVar(&level, "level", 3, "optimizer level to check against level 0")
	root.Flags().IntVar(&trials, "trials", 16, "stimulus vectors per circuit family")
	root.Flags().Int64Var(&seed, "seed", 1, "PRNG seed for stimulus generation")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hlimcheck:", err)
		os.Exit(1)
	}
}

// checkConstFoldDCE is spec.md §8 scenario 3: AND(CONST 0xFF, X) feeding a
// pin. Constant propagation does not fold an AND with a non-constant
// operand, so the AND node stays in place; the simulated output must be
// identical before and after optimization for every trial.
func checkConstFoldDCE(rng *rand.Rand, level, trials int) report.EquivalenceCase {
	build := func() (c *hlim.Circuit, x, y *hlim.Node) {
		c = hlim.NewCircuit()
		x = c.CreatePin(8, hlim.HighZUndefined)
		mask := c.CreateConstant(literal(8, 0xFF, 0xFF), hlim.Raw)
		and := c.CreateLogic(hlim.And, 8, hlim.Raw)
		must(c.Connect(and.Input(0), hlim.NodePort{Node: mask, Port: 0}))
		must(c.Connect(and.Input(1), hlim.NodePort{Node: x, Port: 0}))
		y = c.CreatePin(8, hlim.HighZUndefined)
		oe := c.CreateConstant(literal(1, 1, 1), hlim.Raw)
		must(c.Connect(y.Input(0), hlim.NodePort{Node: and, Port: 0}))
		must(c.Connect(y.Input(1), hlim.NodePort{Node: oe, Port: 0}))
		return c, x, y
	}

	drive := func(ctx *sim.ProcessContext, x *hlim.Node, val uint64) {
		ctx.SetInputPin(x, literal(8, val, 0xFF))
		ctx.WaitFor(0)
	}

	next := stim.Sequence(stim.Const(0x00), stim.Const(0xFF), func() uint64 {
		return uint64(rng.Intn(256))
	})
	return runEquivalence("const-fold+DCE AND(0xFF,X)", level, trials, next, build, drive)
}

// checkRegisterMuxFold is spec.md §8 scenario 4: R.data = MUX(c, A, R.out)
// with no explicit enable. optimize(3) folds this into enable=c, data=A;
// the pin waveform on Y must match before and after.
func checkRegisterMuxFold(rng *rand.Rand, level, trials int) report.EquivalenceCase {
	build := func() (c *hlim.Circuit, ctrlA []*hlim.Node, y *hlim.Node) {
		c = hlim.NewCircuit()
		clk := c.CreateRootClock("CLK", big.NewRat(1, 1))

		sel := c.CreatePin(1, hlim.HighZUndefined)
		a := c.CreatePin(1, hlim.HighZUndefined)

		reg := c.CreateRegister(1, hlim.Raw)
		resetVal := c.CreateConstant(literal(1, 0, 1), hlim.Raw)
		must(c.Connect(reg.Input(1), hlim.NodePort{Node: resetVal, Port: 0}))
		c.AttachClock(reg, 0, clk)

		mux := c.CreateMultiplexer(1, hlim.BitType(), 2)
		must(c.Connect(mux.Input(0), hlim.NodePort{Node: sel, Port: 0}))
		must(c.Connect(mux.Input(1), hlim.NodePort{Node: reg, Port: 0}))
		must(c.Connect(mux.Input(2), hlim.NodePort{Node: a, Port: 0}))
		must(c.Connect(reg.Input(0), hlim.NodePort{Node: mux, Port: 0}))

		y = c.CreatePin(1, hlim.HighZUndefined)
		oe := c.CreateConstant(literal(1, 1, 1), hlim.Raw)
		must(c.Connect(y.Input(0), hlim.NodePort{Node: reg, Port: 0}))
		must(c.Connect(y.Input(1), hlim.NodePort{Node: oe, Port: 0}))

		return c, []*hlim.Node{sel, a}, y
	}

	drive := func(ctx *sim.ProcessContext, clk *hlim.Clock, pins []*hlim.Node, bits uint64) {
		ctx.SetInputPin(pins[0], literal(1, bits&1, 1))
		ctx.SetInputPin(pins[1], literal(1, (bits>>1)&1, 1))
		ctx.WaitClock(clk)
	}

	next := stim.Sequence(stim.Const(0), stim.Const(3), func() uint64 {
		return uint64(rng.Intn(4))
	})
	return runClockedEquivalence("register+mux enable fold", level, trials, next, build, drive)
}

// checkPriorityConditional is spec.md §8 scenario 2: it simulates an
// unoptimized PRIORITY_CONDITIONAL circuit directly, outside the
// equivalence harness, and checks its output is 1 while every input is
// defined and turns X once the earlier condition c0 becomes undefined. No
// optimizer level is applied; rng and trials are unused.
func checkPriorityConditional(rng *rand.Rand, trials int) report.EquivalenceCase {
	_ = rng
	_ = trials

	// The five-pin fan-in doesn't fit runEquivalence's single-pin driver
	// shape; exercised directly here instead of through the shared harness.
	c := hlim.NewCircuit()
	c0 := c.CreatePin(1, hlim.HighZUndefined)
	c1 := c.CreatePin(1, hlim.HighZUndefined)
	d0 := c.CreatePin(1, hlim.HighZUndefined)
	d1 := c.CreatePin(1, hlim.HighZUndefined)
	def := c.CreatePin(1, hlim.HighZUndefined)

	pc := c.CreatePriorityConditional(hlim.BitType(), 2)
	must(c.Connect(pc.Input(0), hlim.NodePort{Node: def, Port: 0}))
	must(c.Connect(pc.Input(1), hlim.NodePort{Node: c0, Port: 0}))
	must(c.Connect(pc.Input(2), hlim.NodePort{Node: d0, Port: 0}))
	must(c.Connect(pc.Input(3), hlim.NodePort{Node: c1, Port: 0}))
	must(c.Connect(pc.Input(4), hlim.NodePort{Node: d1, Port: 0}))
	out := hlim.NodePort{Node: pc, Port: 0}

	name := "priority-conditional undefined-taints-earlier-condition"

	program, err := sim.CompileProgram(c)
	if err != nil {
		return report.EquivalenceCase{Name: name, Trials: 1, Detail: err.Error()}
	}
	s := sim.NewSimulator(program)
	s.PowerOn()

	results := make(chan [2]string, 1)
	s.AddSimulationProcess(func(ctx *sim.ProcessContext) {
		ctx.SetInputPin(c0, literal(1, 0, 1))
		ctx.SetInputPin(c1, literal(1, 1, 1))
		ctx.SetInputPin(d1, literal(1, 1, 1))
		ctx.SetInputPin(def, literal(1, 0, 1))
		ctx.SetInputPin(d0, literal(1, 0, 1))
		ctx.WaitFor(0)
		first := ctx.GetValueOfOutput(out).String()

		ctx.SetInputPin(c0, literal(1, 0, 0))
		ctx.WaitFor(0)
		second := ctx.GetValueOfOutput(out).String()

		results <- [2]string{first, second}
	})
	s.Advance(0)
	s.Advance(0)
	r := <-results

	if r[0] != "1" || r[1] != "X" {
		return report.EquivalenceCase{
			Name: name, Trials: 1,
			Detail: fmt.Sprintf("expected 1 then X, got %s then %s", r[0], r[1]),
		}
	}
	return report.EquivalenceCase{
		Name: name, Trials: 1, Passed: true,
		Detail: "c0=0,c1=1,d1=1,def=0 -> 1; c0=X,c1=1,d1=1 -> X",
	}
}

// checkMemoryGrouping is the memory-detector check named alongside the
// equivalence checks in SPEC_FULL.md §2: after optimize(3), a MEMORY node
// with a matching-enable read port and a write port must have been grouped
// into a single SFU NodeGroup with the read port folded to a synchronous
// read, mirroring optimizer/memory_test.go's fixture as a standalone
// structural assertion rather than a before/after simulation comparison.
func checkMemoryGrouping() report.EquivalenceCase {
	name := "memory-detector groups MEMORY+ports into an SFU"
	const wordWidth, numWords, addrWidth = 8, 4, 2

	c := hlim.NewCircuit()
	mem := c.CreateMemory(wordWidth, numWords, bitvec.New(wordWidth*numWords))
	enable := c.CreateCompare(hlim.Eq, 1, hlim.Raw)

	readPort := c.CreateMemReadPort(wordWidth, addrWidth)
	must(c.Connect(readPort.Input(0), hlim.NodePort{Node: mem, Port: 0}))
	must(c.Connect(readPort.Input(1), hlim.NodePort{Node: enable, Port: 0}))

	reg := c.CreateRegister(wordWidth, hlim.Raw)
	clk := c.CreateRootClock("clk", big.NewRat(1, 1))
	c.AttachClock(reg, 0, clk)
	must(c.Connect(reg.Input(0), hlim.NodePort{Node: readPort, Port: 0}))
	must(c.Connect(reg.Input(2), hlim.NodePort{Node: enable, Port: 0}))

	writePort := c.CreateMemWritePort(wordWidth, addrWidth)
	must(c.Connect(writePort.Input(0), hlim.NodePort{Node: mem, Port: 0}))

	optimizer.NewOptions().WithLevel(3).Apply(c)

	group := mem.Group()
	switch {
	case group == nil:
		return report.EquivalenceCase{Name: name, Trials: 1, Detail: "memory node was not grouped"}
	case group.Kind() != hlim.SFU:
		return report.EquivalenceCase{Name: name, Trials: 1, Detail: "memory group is not kind SFU"}
	case readPort.Group() != group || writePort.Group() != group || reg.Group() != group:
		return report.EquivalenceCase{Name: name, Trials: 1, Detail: "read/write port or sync register not in the memory group"}
	}

	info, ok := group.Metadata.(*optimizer.MemoryGroupInfo)
	if !ok || len(info.ReadPorts) != 1 || info.ReadPorts[0].SyncReadReg != reg {
		return report.EquivalenceCase{Name: name, Trials: 1, Detail: "read port was not folded to a synchronous read"}
	}
	return report.EquivalenceCase{Name: name, Trials: 1, Passed: true, Detail: "-"}
}

// runEquivalence drives a purely combinational one-input circuit family
// with the same stimulus values against an unoptimized and an optimized
// build, comparing the observed output string each trial.
func runEquivalence(
	name string,
	level, trials int,
	nextStimulus func() uint64,
	build func() (c *hlim.Circuit, x, y *hlim.Node),
	drive func(ctx *sim.ProcessContext, x *hlim.Node, val uint64),
) report.EquivalenceCase {
	before, xBefore, yBefore := build()
	after, xAfter, yAfter := build()
	optimizer.NewOptions().WithLevel(level).Apply(after)

	for i := 0; i < trials; i++ {
		val := nextStimulus()

		gotBefore, err := simulateOne(before, func(ctx *sim.ProcessContext) string {
			drive(ctx, xBefore, val)
			return ctx.GetValueOfOutput(hlim.NodePort{Node: yBefore, Port: 0}).String()
		})
		if err != nil {
			return report.EquivalenceCase{Name: name, Level: level, Trials: trials, Detail: err.Error()}
		}
		gotAfter, err := simulateOne(after, func(ctx *sim.ProcessContext) string {
			drive(ctx, xAfter, val)
			return ctx.GetValueOfOutput(hlim.NodePort{Node: yAfter, Port: 0}).String()
		})
		if err != nil {
			return report.EquivalenceCase{Name: name, Level: level, Trials: trials, Detail: err.Error()}
		}
		if gotBefore != gotAfter {
			return report.EquivalenceCase{
				Name: name, Level: level, Trials: trials,
				Detail: fmt.Sprintf("trial %d (x=%d): before=%s after=%s", i, val, gotBefore, gotAfter),
			}
		}
	}
	return report.EquivalenceCase{Name: name, Level: level, Trials: trials, Passed: true, Detail: "-"}
}

// runClockedEquivalence is runEquivalence's clocked sibling: one clock
// edge per trial instead of a zero-delay combinational settle.
func runClockedEquivalence(
	name string,
	level, trials int,
	nextStimulus func() uint64,
	build func() (c *hlim.Circuit, pins []*hlim.Node, y *hlim.Node),
	drive func(ctx *sim.ProcessContext, clk *hlim.Clock, pins []*hlim.Node, val uint64),
) report.EquivalenceCase {
	before, pinsBefore, yBefore := build()
	after, pinsAfter, yAfter := build()
	optimizer.NewOptions().WithLevel(level).Apply(after)

	clkBefore := before.Clocks()[0]
	clkAfter := after.Clocks()[0]

	for i := 0; i < trials; i++ {
		val := nextStimulus()

		gotBefore, err := simulateClocked(before, func(ctx *sim.ProcessContext) string {
			drive(ctx, clkBefore, pinsBefore, val)
			return ctx.GetValueOfOutput(hlim.NodePort{Node: yBefore, Port: 0}).String()
		})
		if err != nil {
			return report.EquivalenceCase{Name: name, Level: level, Trials: trials, Detail: err.Error()}
		}
		gotAfter, err := simulateClocked(after, func(ctx *sim.ProcessContext) string {
			drive(ctx, clkAfter, pinsAfter, val)
			return ctx.GetValueOfOutput(hlim.NodePort{Node: yAfter, Port: 0}).String()
		})
		if err != nil {
			return report.EquivalenceCase{Name: name, Level: level, Trials: trials, Detail: err.Error()}
		}
		if gotBefore != gotAfter {
			return report.EquivalenceCase{
				Name: name, Level: level, Trials: trials,
				Detail: fmt.Sprintf("trial %d (bits=%d): before=%s after=%s", i, val, gotBefore, gotAfter),
			}
		}
	}
	return report.EquivalenceCase{Name: name, Level: level, Trials: trials, Passed: true, Detail: "-"}
}

func simulateOne(c *hlim.Circuit, body func(ctx *sim.ProcessContext) string) (string, error) {
	program, err := sim.CompileProgram(c)
	if err != nil {
		return "", err
	}
	s := sim.NewSimulator(program)
	s.PowerOn()

	out := make(chan string, 1)
	s.AddSimulationProcess(func(ctx *sim.ProcessContext) { out <- body(ctx) })
	s.Advance(0)
	return <-out, nil
}

func simulateClocked(c *hlim.Circuit, body func(ctx *sim.ProcessContext) string) (string, error) {
	program, err := sim.CompileProgram(c)
	if err != nil {
		return "", err
	}
	s := sim.NewSimulator(program)
	s.PowerOn()

	out := make(chan string, 1)
	s.AddSimulationProcess(func(ctx *sim.ProcessContext) { out <- body(ctx) })
	s.AdvanceEvent()
	return <-out, nil
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
