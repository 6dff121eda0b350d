package sim

import (
	akitasim "github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/hlimgo/bitvec"
	"github.com/sarchlab/hlimgo/hlim"
)

// Simulator runs a compiled Program: it owns the flat state buffer, the
// clock event queue, every registered simulation process, and the
// attached Callbacks observers. A Simulator is not safe for concurrent use
// from more than one goroutine; the cooperative simulation processes it
// schedules internally are the only concurrency it needs.
type Simulator struct {
	program *Program
	buf     *bitvec.State

	compiled bool
	aborted  bool
	time     akitasim.VTimeInSec

	clocks map[*hlim.Clock]*clockSchedule

	callbacks []Callbacks

	processes []*procState
	watchPrev map[hlim.NodePort]portState
}

type portState int

const (
	stLow portState = iota
	stHigh
	stUndef
)

// NewSimulator creates a Simulator bound to a compiled program. The
// simulator is not usable until PowerOn is called.
func NewSimulator(program *Program) *Simulator {
	return &Simulator{
		program:  program,
		buf:      bitvec.New(program.Size()),
		compiled: true,
		clocks:   make(map[*hlim.Clock]*clockSchedule),
	}
}

// AddCallbacks attaches an observer. A Simulator may have any number of
// attached callbacks; every one is invoked for every event.
func (s *Simulator) AddCallbacks(cb Callbacks) {
	s.callbacks = append(s.callbacks, cb)
}

// requireCompiled panics with SimProgramNotCompiled, the one fatal kind
// raised outside compile time, if this Simulator was somehow constructed
// without a program (defensive; NewSimulator always sets one).
func (s *Simulator) requireCompiled() {
	if !s.compiled {
		panic(&hlim.Error{Kind: hlim.SimProgramNotCompiled, Message: "simulator operated before compileProgram"})
	}
}

// PowerOn clears the state buffer, runs every reset node in program order,
// runs one reevaluation pass, and arms the clock event queue. It also
// clears any prior Abort().
func (s *Simulator) PowerOn() {
	s.requireCompiled()
	s.buf.Clear()
	s.time = 0
	s.aborted = false
	s.watchPrev = make(map[hlim.NodePort]portState)

	for _, n := range s.program.resetList {
		io := s.program.io[n]
		hlim.Reset(s.program.circuit, n, s.buf, io.out, io.internal)
	}

	s.reevaluate(false)

	s.clocks = make(map[*hlim.Clock]*clockSchedule, len(s.program.clockDomains))
	for clk := range s.program.clockDomains {
		s.clocks[clk] = newClockSchedule(clk)
	}
}

// Reevaluate runs the compiled combinational execution block once, in
// topological order.
func (s *Simulator) Reevaluate() { s.reevaluate(false) }

func (s *Simulator) reevaluate(clockJustAdvanced bool) {
	for _, step := range s.program.steps {
		io := s.program.io[step.node]
		if step.isSignalTap {
			s.evaluateSignalTap(step.node, io, clockJustAdvanced)
			continue
		}
		hlim.Evaluate(step.node, s.buf, io.in, io.out, io.internal, io.memory)
	}
}

func (s *Simulator) evaluateSignalTap(n *hlim.Node, io nodeIO, clockJustAdvanced bool) {
	if hlim.SignalTapShouldFire(n, s.buf, io.in, io.internal, clockJustAdvanced) {
		s.emitTap(n, io)
	}
}

func (s *Simulator) emitTap(n *hlim.Node, io nodeIO) {
	d := n.Detail().(*hlim.SignalTapDetail)
	msg := formatTapMessage(d, s.buf, io.in)
	switch d.Level {
	case hlim.Assert:
		for _, cb := range s.callbacks {
			cb.OnAssert(n, msg, false)
		}
	case hlim.Warn:
		for _, cb := range s.callbacks {
			cb.OnWarning(n, msg)
		}
	default: // Debug, Watch
		for _, cb := range s.callbacks {
			cb.OnDebugMessage(n, msg)
		}
	}
}

func formatTapMessage(d *hlim.SignalTapDetail, buf *bitvec.State, inOff []int) string {
	msg := d.Message
	payloadStart := 0
	if d.HasTrigger {
		payloadStart = 1
	}
	for i, t := range d.PayloadTypes {
		v := buf.Extract(inOff[payloadStart+i], t.Width)
		msg += " " + v.String()
	}
	return msg
}

// advanceClock announces clk's activation edge to callbacks, advances every
// latched node bound to it, then runs one reevaluation pass. It is not
// part of the public surface: spec.md §6 exposes only advanceEvent/advance
// as simulation-stepping entry points, with per-clock firing an internal
// detail of the event queue.
func (s *Simulator) advanceClock(clk *hlim.Clock) {
	for _, cb := range s.callbacks {
		cb.OnClock(clk)
	}
	for _, ref := range s.program.clockDomains[clk] {
		io := s.program.io[ref.Node]
		hlim.Advance(ref.Node, ref.Slot, s.buf, io.in, io.out, io.internal, io.memory)
	}
	s.reevaluate(true)
}

// AdvanceEvent advances to the earliest pending clock edge across every
// clock, fires it (and any activation it carries), and resumes any
// simulation process whose wait condition that edge satisfies. It reports
// whether it made progress: false if there are no clocks to schedule, or
// if Abort() has been called.
func (s *Simulator) AdvanceEvent() bool {
	if s.aborted {
		return false
	}
	clk, when, ok := s.earliestEdge()
	if !ok {
		return false
	}
	s.time = when
	s.fireEdge(clk)
	return true
}

// Advance runs AdvanceEvent repeatedly for every clock edge that falls
// within (current time, current time+delta], then advances time the rest
// of the way to current time+delta and runs one final reevaluation pass.
func (s *Simulator) Advance(delta akitasim.VTimeInSec) {
	target := s.time + delta
	for {
		if s.aborted {
			return
		}
		clk, when, ok := s.earliestEdge()
		if !ok || when > target {
			break
		}
		s.time = when
		s.fireEdge(clk)
	}
	if s.aborted {
		return
	}
	s.time = target
	for _, cb := range s.callbacks {
		cb.OnNewTick(s.time)
	}
	s.reevaluate(false)
	s.resumeProcesses()
}

func (s *Simulator) earliestEdge() (*hlim.Clock, akitasim.VTimeInSec, bool) {
	var best *clockSchedule
	for _, cs := range s.clocks {
		if best == nil || cs.nextToggleTime() < best.nextToggleTime() {
			best = cs
		}
	}
	if best == nil {
		return nil, 0, false
	}
	return best.clk, best.nextToggleTime(), true
}

func (s *Simulator) fireEdge(clk *hlim.Clock) {
	for _, cb := range s.callbacks {
		cb.OnNewTick(s.time)
	}
	fired := s.clocks[clk].toggle()
	if !fired {
		// The clock line toggled but it wasn't this clock's configured
		// activation edge; nothing in the network changed, but simulation
		// time still advanced, so delay- and port-waiting processes still
		// need a chance to check their condition.
		s.resumeProcesses()
		return
	}
	s.advanceClock(clk)
	s.resumeProcesses(clk)
}

// Abort makes any in-flight AdvanceEvent/Advance call return at the next
// safe point. Processes in flight are not forced to completion; their
// state is left as of their last suspension.
func (s *Simulator) Abort() { s.aborted = true }

// Time returns the simulator's current absolute time.
func (s *Simulator) Time() akitasim.VTimeInSec { return s.time }

// GetValueOfOutput returns a copy of the state at a compiled port.
func (s *Simulator) GetValueOfOutput(port hlim.NodePort) *bitvec.State {
	io, ok := s.program.io[port.Node]
	if !ok || port.Port >= len(io.out) {
		panic(&hlim.Error{Kind: hlim.InternalInvariant, Message: "GetValueOfOutput on an uncompiled port", NodeID: port.Node.ID(), HasNode: true})
	}
	width := port.Node.Output(port.Port).ConnectionType().Width
	return s.buf.Extract(io.out[port.Port], width)
}

// GetValueOfInternalState returns a copy of width bits of node's internal
// state starting at offset, e.g. offset 0 of a REGISTER's internal state
// is its sampled DATA, and offset=Width is its sampled ENABLE bit.
func (s *Simulator) GetValueOfInternalState(node *hlim.Node, offset, width int) *bitvec.State {
	io, ok := s.program.io[node]
	if !ok {
		panic(&hlim.Error{Kind: hlim.InternalInvariant, Message: "GetValueOfInternalState on an uncompiled node", NodeID: node.ID(), HasNode: true})
	}
	return s.buf.Extract(io.internal+offset, width)
}

// OutputOptimizedAway reports whether port's node was culled from the
// compiled program, either by the optimizer before compilation or by a
// compileProgram(outputs...) restriction excluding it.
func (s *Simulator) OutputOptimizedAway(port hlim.NodePort) bool {
	return !s.program.kept[port.Node]
}

// ClockState reports whether clk's line is currently high, for waveform
// recorders and other callbacks drawing the clocks pseudo-module.
func (s *Simulator) ClockState(clk *hlim.Clock) bool {
	cs, ok := s.clocks[clk]
	return ok && cs.high
}

// SetInputPin drives pin's externally-observed value outside of any
// registered simulation process; equivalent to the host directly calling
// the same primitive a ProcessContext exposes.
func (s *Simulator) SetInputPin(pin *hlim.Node, value *bitvec.State) {
	io := s.program.io[pin]
	hlim.PinWriteExternal(s.buf, io.internal, pin.Detail().(*hlim.PinDetail).Width, value)
	s.notifyOverridden(pin, value)
	s.reevaluate(false)
}

// ReleaseInputPin releases a prior SetInputPin drive.
func (s *Simulator) ReleaseInputPin(pin *hlim.Node) {
	io := s.program.io[pin]
	hlim.PinReleaseExternal(s.buf, io.internal, pin.Detail().(*hlim.PinDetail).Width)
	s.reevaluate(false)
}

func (s *Simulator) notifyOverridden(pin *hlim.Node, value *bitvec.State) {
	for _, cb := range s.callbacks {
		cb.OnSimProcOutputOverridden(pin, value)
	}
}

func (s *Simulator) notifyRead(port hlim.NodePort, value *bitvec.State) {
	for _, cb := range s.callbacks {
		cb.OnSimProcOutputRead(port, value)
	}
}

// AddSimulationProcess registers a cooperative simulation process built by
// factory, running it until its first suspension before returning.
func (s *Simulator) AddSimulationProcess(factory func(ctx *ProcessContext)) {
	ps := &procState{resume: make(chan struct{}), waitReq: make(chan waitRequest)}
	ctx := &ProcessContext{sim: s, ps: ps}

	go func() {
		defer func() { ps.waitReq <- waitRequest{kind: waitDone} }()
		factory(ctx)
	}()

	req := <-ps.waitReq
	ps.current = req
	if req.kind == waitDelay {
		ps.resumeTime = s.time + req.delay
	}
	if req.kind == waitDone {
		ps.done = true
	}
	s.processes = append(s.processes, ps)

	if ps.dirty {
		ps.dirty = false
		s.reevaluate(false)
	}
}

// resumeProcesses resumes, in FIFO order of suspension, every process
// whose current wait request is satisfied by the edge just fired (or, with
// no clock argument, by time alone), running each fully to its next
// suspension before considering the next process. A round in which any
// resumed process drove a pin, or suspended on a zero delay, ends with one
// further reevaluation pass and a rescan, so WaitFor(0) returns within the
// same tick after exactly one reevaluation, per spec.md §5's ordering
// guarantee. Clock waits are only satisfied by the edge that started the
// first round, never by a rescan.
func (s *Simulator) resumeProcesses(firedClock ...*hlim.Clock) {
	var fired *hlim.Clock
	if len(firedClock) > 0 {
		fired = firedClock[0]
	}

	for {
		rerun := false
		for _, ps := range s.processes {
			if s.aborted {
				return
			}
			if ps.done || !s.satisfied(ps, fired) {
				continue
			}
			ps.dirty = false
			ps.resume <- struct{}{}
			req := <-ps.waitReq
			if req.kind == waitDone {
				ps.done = true
			} else {
				ps.current = req
				if req.kind == waitDelay {
					ps.resumeTime = s.time + req.delay
					if req.delay == 0 {
						rerun = true
					}
				}
			}
			if ps.dirty {
				rerun = true
			}
		}
		if !rerun {
			return
		}
		s.reevaluate(false)
		fired = nil
	}
}

func (s *Simulator) satisfied(ps *procState, firedClock *hlim.Clock) bool {
	switch ps.current.kind {
	case waitDelay:
		return s.time >= ps.resumeTime
	case waitClock:
		return firedClock != nil && ps.current.clock == firedClock
	case waitPort:
		return s.checkPortTrigger(ps.current.port, ps.current.trigger)
	default:
		return false
	}
}

func (s *Simulator) checkPortTrigger(port hlim.NodePort, trigger PortTrigger) bool {
	cur := s.classify(port)
	prev, known := s.watchPrev[port]
	s.watchPrev[port] = cur
	switch trigger {
	case High:
		return cur == stHigh
	case Low:
		return cur == stLow
	case Rising:
		return known && prev != stHigh && cur == stHigh
	case Falling:
		return known && prev == stHigh && cur != stHigh
	case Changing:
		return known && prev != cur
	default:
		return false
	}
}

func (s *Simulator) classify(port hlim.NodePort) portState {
	v := s.GetValueOfOutput(port)
	if !v.Get(bitvec.Defined, 0) {
		return stUndef
	}
	if v.Get(bitvec.Value, 0) {
		return stHigh
	}
	return stLow
}
