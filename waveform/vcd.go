package waveform

import (
	"bufio"
	"fmt"
	"io"
	"math"

	akitasim "github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/hlimgo/bitvec"
	"github.com/sarchlab/hlimgo/hlim"
	hsim "github.com/sarchlab/hlimgo/sim"
)

// identGenerator hands out the short printable-ASCII identifiers VCD uses in
// place of signal names, cycling through 33..126 like an odometer so every
// signal gets a distinct, minimal code.
type identGenerator struct {
	next []byte
}

const (
	identBeg = 33
	identEnd = 127
)

func newIdentGenerator() *identGenerator {
	return &identGenerator{next: []byte{identBeg}}
}

func (g *identGenerator) get() string {
	res := string(g.next)
	for i := 0; ; i++ {
		if i >= len(g.next) {
			g.next = append(g.next, identBeg)
			break
		}
		g.next[i]++
		if g.next[i] >= identEnd {
			g.next[i] = identBeg
			continue
		}
		break
	}
	return res
}

// VCDRecorder is a simulator Callbacks implementation writing an IEEE-1364
// value change dump: a ps timescale, one identifier per tracked signal, and
// a module hierarchy mirroring the circuit's node-group tree plus a
// `clocks` pseudo-module holding one bit per clock.
type VCDRecorder struct {
	*recorder

	w       *bufio.Writer
	sigCode []string
	clkCode []string
}

// NewVCDRecorder returns a recorder ready to be attached via
// Simulator.AddCallbacks; call AddSignal/AddAllPins/AddAllNamedSignals to
// choose what gets traced before the first simulated tick, since the VCD
// header is written once, lazily, at that point.
func NewVCDRecorder(w io.Writer, circuit *hlim.Circuit, s *hsim.Simulator) *VCDRecorder {
	v := &VCDRecorder{w: bufio.NewWriter(w)}
	v.recorder = newRecorder(circuit, s)
	v.recorder.sink = v
	return v
}

// AddSignal traces port under name.
func (v *VCDRecorder) AddSignal(port hlim.NodePort, name string) {
	v.addSignal(port, name, port.Node.Output(port.Port).ConnectionType().Width == 1)
}

// AddAllPins traces every top-level PIN's stimulus or observed value.
func (v *VCDRecorder) AddAllPins() { v.addAllPins() }

// AddAllNamedSignals traces output 0 of every explicitly named node.
func (v *VCDRecorder) AddAllNamedSignals() { v.addAllNamedSignals() }

// Flush flushes any buffered VCD text to the underlying writer. Call after
// the simulation has finished advancing.
func (v *VCDRecorder) Flush() error { return v.w.Flush() }

type vcdModule struct {
	name     string
	children map[string]*vcdModule
	order    []string
	signals  []int
}

func newVCDModule(name string) *vcdModule {
	return &vcdModule{name: name, children: map[string]*vcdModule{}}
}

func (m *vcdModule) child(name string) *vcdModule {
	if c, ok := m.children[name]; ok {
		return c
	}
	c := newVCDModule(name)
	m.children[name] = c
	m.order = append(m.order, name)
	return c
}

func (v *VCDRecorder) initialize() {
	fmt.Fprint(v.w, "$date\n  (unspecified)\n$end\n")
	fmt.Fprint(v.w, "$version\n  hlimgo waveform recorder\n$end\n")
	fmt.Fprint(v.w, "$timescale\n1ps\n$end\n")

	idents := newIdentGenerator()
	v.sigCode = make([]string, len(v.signals))

	root := newVCDModule("top")
	for id, ts := range v.signals {
		v.sigCode[id] = idents.get()

		var trace []*hlim.NodeGroup
		for g := ts.port.Node.Group(); g != nil; g = g.Parent() {
			trace = append(trace, g)
		}
		m := root
		for i := len(trace) - 1; i >= 0; i-- {
			name := trace[i].Name()
			if name == "" {
				name = "top"
			}
			m = m.child(name)
		}
		m.signals = append(m.signals, id)
	}

	var writeModule func(m *vcdModule)
	writeModule = func(m *vcdModule) {
		for _, name := range m.order {
			fmt.Fprintf(v.w, "$scope module %s $end\n", name)
			writeModule(m.children[name])
			fmt.Fprint(v.w, "$upscope $end\n")
		}
		for _, id := range m.signals {
			ts := v.signals[id]
			width := ts.port.Node.Output(ts.port.Port).ConnectionType().Width
			fmt.Fprintf(v.w, "$var wire %d %s %s $end\n", width, v.sigCode[id], ts.name)
		}
	}
	writeModule(root)

	fmt.Fprint(v.w, "$scope module clocks $end\n")
	v.clkCode = make([]string, len(v.clocks))
	for i, clk := range v.clocks {
		v.clkCode[i] = idents.get()
		fmt.Fprintf(v.w, "$var wire 1 %s %s $end\n", v.clkCode[i], clk.Name())
	}
	fmt.Fprint(v.w, "$upscope $end\n")

	fmt.Fprint(v.w, "$enddefinitions $end\n")
	fmt.Fprint(v.w, "$dumpvars\n")
	for id := range v.signals {
		v.writeValue(id)
	}
	for i := range v.clocks {
		fmt.Fprintf(v.w, "x%s\n", v.clkCode[i])
	}
	fmt.Fprint(v.w, "$end\n")
	fmt.Fprint(v.w, "#0\n")
}

func (v *VCDRecorder) writeValue(id int) {
	off := v.offsets[id]
	if off.size == 1 {
		fmt.Fprintf(v.w, "%s%s\n", bitChar(v.tracked, off.offset), v.sigCode[id])
		return
	}
	fmt.Fprint(v.w, "b")
	for i := 0; i < off.size; i++ {
		fmt.Fprint(v.w, bitChar(v.tracked, off.offset+off.size-1-i))
	}
	fmt.Fprintf(v.w, " %s\n", v.sigCode[id])
}

func bitChar(s *bitvec.State, idx int) string {
	switch {
	case !s.Get(bitvec.Defined, idx):
		return "x"
	case s.Get(bitvec.Value, idx):
		return "1"
	default:
		return "0"
	}
}

func (v *VCDRecorder) signalChanged(id int) { v.writeValue(id) }

func (v *VCDRecorder) clockChanged(clk *hlim.Clock, high bool) {
	idx, ok := v.clockIdx[clk]
	if !ok {
		return
	}
	bit := "0"
	if high {
		bit = "1"
	}
	fmt.Fprintf(v.w, "%s%s\n", bit, v.clkCode[idx])
}

func (v *VCDRecorder) advanceTick(t akitasim.VTimeInSec) {
	ps := int64(math.Round(float64(t) * 1e12))
	fmt.Fprintf(v.w, "#%d\n", ps)
}
