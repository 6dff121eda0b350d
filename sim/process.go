package sim

import (
	akitasim "github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/hlimgo/bitvec"
	"github.com/sarchlab/hlimgo/hlim"
)

// PortTrigger selects which transition of a one-bit port WaitUntil resumes
// on.
type PortTrigger int

const (
	High PortTrigger = iota
	Low
	Rising
	Falling
	Changing
)

type waitKind int

const (
	waitDelay waitKind = iota
	waitPort
	waitClock
	waitDone
)

type waitRequest struct {
	kind    waitKind
	delay   akitasim.VTimeInSec
	port    hlim.NodePort
	trigger PortTrigger
	clock   *hlim.Clock
}

// procState is a simulation process's scheduler-side bookkeeping: the pair
// of channels used to hand control back and forth with its goroutine, and
// the wait request it is currently suspended on.
type procState struct {
	resume  chan struct{}
	waitReq chan waitRequest

	current    waitRequest
	resumeTime akitasim.VTimeInSec
	done       bool
	dirty      bool
}

// ProcessContext is the handle a simulation process factory receives: it
// exposes the three suspension primitives from spec.md §4.4 plus
// synchronous pin I/O, wrapping the process's own goroutine so the
// simulator can schedule it cooperatively.
type ProcessContext struct {
	sim *Simulator
	ps  *procState
}

func (ctx *ProcessContext) suspend(req waitRequest) {
	ctx.ps.waitReq <- req
	<-ctx.ps.resume
}

// WaitFor suspends the process until simulation time has advanced by at
// least delta. WaitFor(0) forces exactly one reevaluation pass before
// returning.
func (ctx *ProcessContext) WaitFor(delta akitasim.VTimeInSec) {
	ctx.suspend(waitRequest{kind: waitDelay, delay: delta})
}

// WaitUntil suspends the process until the one-bit port at port satisfies
// trigger on some future reevaluation.
func (ctx *ProcessContext) WaitUntil(port hlim.NodePort, trigger PortTrigger) {
	ctx.suspend(waitRequest{kind: waitPort, port: port, trigger: trigger})
}

// WaitClock suspends the process until the next activation edge of clock,
// resuming after its bound latches have fired and the network has been
// reevaluated.
func (ctx *ProcessContext) WaitClock(clock *hlim.Clock) {
	ctx.suspend(waitRequest{kind: waitClock, clock: clock})
}

// SetInputPin drives pin's externally-observed value for the duration of
// this override, taking precedence over the node's own DATA/OE inputs.
// The simulator reevaluates once more before this tick ends if any process
// called SetInputPin.
func (ctx *ProcessContext) SetInputPin(pin *hlim.Node, value *bitvec.State) {
	io, ok := ctx.sim.program.io[pin]
	if !ok || pin.Kind() != hlim.KindPin {
		panic("sim: SetInputPin on a node that is not a compiled PIN")
	}
	hlim.PinWriteExternal(ctx.sim.buf, io.internal, pin.Detail().(*hlim.PinDetail).Width, value)
	ctx.ps.dirty = true
	ctx.sim.notifyOverridden(pin, value)
}

// ReleaseInputPin releases a prior SetInputPin override, letting the pin's
// own DATA/OE and high-impedance policy resolve its value again.
func (ctx *ProcessContext) ReleaseInputPin(pin *hlim.Node) {
	io, ok := ctx.sim.program.io[pin]
	if !ok || pin.Kind() != hlim.KindPin {
		panic("sim: ReleaseInputPin on a node that is not a compiled PIN")
	}
	hlim.PinReleaseExternal(ctx.sim.buf, io.internal, pin.Detail().(*hlim.PinDetail).Width)
	ctx.ps.dirty = true
}

// GetValueOfOutput reads any wire's current value.
func (ctx *ProcessContext) GetValueOfOutput(port hlim.NodePort) *bitvec.State {
	v := ctx.sim.GetValueOfOutput(port)
	ctx.sim.notifyRead(port, v)
	return v
}

// Time returns the simulator's current time, as observed by this process.
func (ctx *ProcessContext) Time() akitasim.VTimeInSec { return ctx.sim.Time() }
