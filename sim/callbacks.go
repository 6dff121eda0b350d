package sim

import (
	akitasim "github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/hlimgo/bitvec"
	"github.com/sarchlab/hlimgo/hlim"
)

// Callbacks is the simulator's sole observation seam: waveform recorders,
// the VHDL testbench recorder, and any host diagnostics front end all
// implement it. The core itself writes no logs; every diagnostic and
// every observed event flows through an attached Callbacks.
//
//go:generate mockgen -write_package_comment=false -package=sim_test -destination=mocks_test.go github.com/sarchlab/hlimgo/sim Callbacks
type Callbacks interface {
	// OnDebugMessage reports a SIGNAL_TAP firing at Debug or Watch level.
	OnDebugMessage(node *hlim.Node, msg string)
	// OnWarning reports a SIGNAL_TAP firing at Warn level.
	OnWarning(node *hlim.Node, msg string)
	// OnAssert reports a SIGNAL_TAP firing at Assert level; passed is
	// false, since a tap only ever fires to report a violation.
	OnAssert(node *hlim.Node, msg string, passed bool)
	// OnNewTick is called once per chosen simulation event, before any
	// latches belonging to that event have advanced.
	OnNewTick(t akitasim.VTimeInSec)
	// OnClock is called for every clock whose bound latches just advanced.
	OnClock(clk *hlim.Clock)
	// OnSimProcOutputOverridden is called when a simulation process drives
	// a PIN node's output via ProcessContext.SetInputPin.
	OnSimProcOutputOverridden(pin *hlim.Node, value *bitvec.State)
	// OnSimProcOutputRead is called when a simulation process reads a wire
	// via ProcessContext.GetValueOfOutput.
	OnSimProcOutputRead(port hlim.NodePort, value *bitvec.State)
}

// BaseCallbacks is an embeddable no-op Callbacks implementation, in the
// style of akita's HookableBase: observers that only care about one or two
// events embed BaseCallbacks and override just those methods.
type BaseCallbacks struct{}

func (BaseCallbacks) OnDebugMessage(*hlim.Node, string)                {}
func (BaseCallbacks) OnWarning(*hlim.Node, string)                     {}
func (BaseCallbacks) OnAssert(*hlim.Node, string, bool)                {}
func (BaseCallbacks) OnNewTick(akitasim.VTimeInSec)                    {}
func (BaseCallbacks) OnClock(*hlim.Clock)                              {}
func (BaseCallbacks) OnSimProcOutputOverridden(*hlim.Node, *bitvec.State) {}
func (BaseCallbacks) OnSimProcOutputRead(hlim.NodePort, *bitvec.State)    {}
