package waveform

import (
	akitasim "github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/hlimgo/bitvec"
	"github.com/sarchlab/hlimgo/hlim"
	hsim "github.com/sarchlab/hlimgo/sim"
)

// SignalRecord describes one traced signal's place in a MemoryTrace's data
// buffer: its display name, bit width, and whether it should be rendered as
// a single boolean rather than a vector. MemoryTraceRecorder leaves
// StateOffset at 0; the offset of every recorded value, the first included,
// is carried per event in SignalChange.DataOffset.
type SignalRecord struct {
	Name        string
	Width       int
	IsBool      bool
	StateOffset int
}

// SignalChange names a recorded value by signal index and its bit offset
// into a MemoryTrace's Data buffer.
type SignalChange struct {
	SignalIndex int
	DataOffset  int
}

// TraceEvent is every signal that changed at one simulated instant.
type TraceEvent struct {
	Timestamp akitasim.VTimeInSec
	Changes   []SignalChange
}

// MemoryTrace is the fully in-memory record produced by a
// MemoryTraceRecorder: a flat BitVectorState buffer holding every value ever
// observed, a SignalRecord per tracked signal (including one per clock), and
// the chronological sequence of which signals changed and where their new
// value landed in the buffer.
type MemoryTrace struct {
	Data    *bitvec.State
	Signals []SignalRecord
	Events  []TraceEvent
}

// MemoryTraceRecorder is a simulator Callbacks implementation building a
// MemoryTrace: unlike VCDRecorder it writes nothing to disk, so a program
// can query the trace directly (report printers, regression diffing,
// programmatic waveform viewers).
type MemoryTraceRecorder struct {
	*recorder

	trace    MemoryTrace
	nextBit  int
	clkSig   []int
	curEvent *TraceEvent
}

// NewMemoryTraceRecorder returns a recorder ready to be attached via
// Simulator.AddCallbacks; call AddSignal/AddAllPins/AddAllNamedSignals to
// choose what gets traced before the first simulated tick.
func NewMemoryTraceRecorder(circuit *hlim.Circuit, s *hsim.Simulator) *MemoryTraceRecorder {
	m := &MemoryTraceRecorder{trace: MemoryTrace{Data: bitvec.New(0)}}
	m.recorder = newRecorder(circuit, s)
	m.recorder.sink = m
	return m
}

// AddSignal traces port under name.
func (m *MemoryTraceRecorder) AddSignal(port hlim.NodePort, name string) {
	m.addSignal(port, name, port.Node.Output(port.Port).ConnectionType().Width == 1)
}

// AddAllPins traces every top-level PIN's stimulus or observed value.
func (m *MemoryTraceRecorder) AddAllPins() { m.addAllPins() }

// AddAllNamedSignals traces output 0 of every explicitly named node.
func (m *MemoryTraceRecorder) AddAllNamedSignals() { m.addAllNamedSignals() }

// Trace returns the trace accumulated so far; safe to call at any point,
// including mid-simulation.
func (m *MemoryTraceRecorder) Trace() *MemoryTrace { return &m.trace }

func (m *MemoryTraceRecorder) allocate(width int) int {
	off := m.nextBit
	m.nextBit += width
	m.trace.Data.Grow(m.nextBit)
	return off
}

func (m *MemoryTraceRecorder) initialize() {
	m.trace.Signals = make([]SignalRecord, len(m.signals))
	for id, ts := range m.signals {
		m.trace.Signals[id] = SignalRecord{
			Name:   ts.name,
			Width:  m.offsets[id].size,
			IsBool: ts.isBool,
		}
	}

	m.clkSig = make([]int, len(m.clocks))
	for i, clk := range m.clocks {
		m.clkSig[i] = len(m.trace.Signals)
		m.trace.Signals = append(m.trace.Signals, SignalRecord{Name: clk.Name(), Width: 1, IsBool: true})
	}

	m.trace.Events = append(m.trace.Events, TraceEvent{Timestamp: 0})
	m.curEvent = &m.trace.Events[len(m.trace.Events)-1]
}

func (m *MemoryTraceRecorder) recordValue(sigIdx int, src *bitvec.State, srcOffset, width int) {
	off := m.allocate(width)
	m.trace.Data.CopyRange(off, src, srcOffset, width)
	m.curEvent.Changes = append(m.curEvent.Changes, SignalChange{SignalIndex: sigIdx, DataOffset: off})
}

func (m *MemoryTraceRecorder) signalChanged(id int) {
	off := m.offsets[id]
	m.recordValue(id, m.tracked, off.offset, off.size)
}

func (m *MemoryTraceRecorder) clockChanged(clk *hlim.Clock, high bool) {
	idx, ok := m.clockIdx[clk]
	if !ok {
		return
	}
	bit := bitvec.New(1)
	bit.Set(bitvec.Defined, 0, true)
	bit.Set(bitvec.Value, 0, high)
	m.recordValue(m.clkSig[idx], bit, 0, 1)
}

func (m *MemoryTraceRecorder) advanceTick(t akitasim.VTimeInSec) {
	m.trace.Events = append(m.trace.Events, TraceEvent{Timestamp: t})
	m.curEvent = &m.trace.Events[len(m.trace.Events)-1]
}
