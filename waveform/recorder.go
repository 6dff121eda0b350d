// Package waveform turns a running simulation into durable trace data: a
// VCD file for external viewers, or an in-memory event log for report
// printers. Both formats share the same signal-tracking core, which diffs
// simulator state against a shadow buffer once per tick and dispatches only
// the signals that actually changed.
package waveform

import (
	akitasim "github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/hlimgo/bitvec"
	"github.com/sarchlab/hlimgo/hlim"
	hsim "github.com/sarchlab/hlimgo/sim"
)

type trackedSignal struct {
	port   hlim.NodePort
	name   string
	isBool bool
}

type stateOffsetSize struct{ offset, size int }

// sink receives the recorder core's three dispatch events. VCDRecorder and
// MemoryTraceRecorder each implement it to render a distinct trace format
// over the same tracked-signal bookkeeping.
type sink interface {
	initialize()
	signalChanged(id int)
	clockChanged(clk *hlim.Clock, high bool)
	advanceTick(t akitasim.VTimeInSec)
}

// recorder is the shared tracking core embedded by every waveform format. It
// watches a fixed set of signals plus every clock in the circuit, and once
// per tick diffs each tracked signal's current value against a shadow
// buffer, forwarding only the ones that changed to its sink.
type recorder struct {
	hsim.BaseCallbacks

	circuit *hlim.Circuit
	sim     *hsim.Simulator
	sink    sink

	signal2id map[hlim.NodePort]int
	signals   []trackedSignal
	offsets   []stateOffsetSize
	tracked   *bitvec.State
	nextBit   int

	clockIdx map[*hlim.Clock]int
	clocks   []*hlim.Clock

	initialized bool
}

func newRecorder(circuit *hlim.Circuit, s *hsim.Simulator) *recorder {
	r := &recorder{
		circuit:   circuit,
		sim:       s,
		signal2id: map[hlim.NodePort]int{},
		clockIdx:  map[*hlim.Clock]int{},
		tracked:   bitvec.New(0),
	}
	for _, clk := range circuit.Clocks() {
		r.clockIdx[clk] = len(r.clocks)
		r.clocks = append(r.clocks, clk)
	}
	return r
}

// addSignal registers port for tracking under name, allocating it a slot in
// the shadow buffer. A port already tracked is left alone, so the various
// addAll* helpers can be combined freely.
func (r *recorder) addSignal(port hlim.NodePort, name string, isBool bool) {
	if _, ok := r.signal2id[port]; ok {
		return
	}
	width := port.Node.Output(port.Port).ConnectionType().Width
	id := len(r.signals)
	r.signal2id[port] = id
	r.signals = append(r.signals, trackedSignal{port: port, name: name, isBool: isBool})
	r.offsets = append(r.offsets, stateOffsetSize{offset: r.nextBit, size: width})
	r.nextBit += width
	r.tracked.Grow(r.nextBit)
}

// addAllPins tracks every PIN node: an externally-driven input pin is
// tracked at its own output (the stimulus value), a pin fed by the design is
// tracked at its driver (the observed value), both named after the pin.
func (r *recorder) addAllPins() {
	for _, n := range r.circuit.Nodes() {
		if n.Kind() != hlim.KindPin {
			continue
		}
		name := n.Name()
		if name == "" {
			name = "unnamed"
		}
		driver := n.Input(0).Driver()
		if driver.Connected() {
			r.addSignal(driver, name, driver.Node.Output(driver.Port).ConnectionType().Width == 1)
		} else {
			r.addSignal(hlim.NodePort{Node: n, Port: 0}, name, n.Output(0).ConnectionType().Width == 1)
		}
	}
}

// addAllNamedSignals tracks output 0 of every node carrying an explicit
// name, skipping PIN nodes already covered by addAllPins.
func (r *recorder) addAllNamedSignals() {
	for _, n := range r.circuit.Nodes() {
		if n.Kind() == hlim.KindPin || n.Name() == "" || n.NumOutputs() == 0 {
			continue
		}
		port := hlim.NodePort{Node: n, Port: 0}
		r.addSignal(port, n.Name(), n.Output(0).ConnectionType().Width == 1)
	}
}

func (r *recorder) OnNewTick(t akitasim.VTimeInSec) {
	if !r.initialized {
		r.sink.initialize()
		r.initialized = true
	}

	for id, ts := range r.signals {
		if r.sim.OutputOptimizedAway(ts.port) {
			continue
		}
		off := r.offsets[id]
		newVal := r.sim.GetValueOfOutput(ts.port)
		if !stateRangeEqual(newVal, r.tracked, off.offset, off.size) {
			r.tracked.CopyRange(off.offset, newVal, 0, off.size)
			r.sink.signalChanged(id)
		}
	}

	r.sink.advanceTick(t)
}

func (r *recorder) OnClock(clk *hlim.Clock) {
	r.sink.clockChanged(clk, r.sim.ClockState(clk))
}

func stateRangeEqual(a, b *bitvec.State, bOffset, width int) bool {
	for i := 0; i < width; i++ {
		if a.Get(bitvec.Value, i) != b.Get(bitvec.Value, bOffset+i) ||
			a.Get(bitvec.Defined, i) != b.Get(bitvec.Defined, bOffset+i) {
			return false
		}
	}
	return true
}
