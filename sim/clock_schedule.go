package sim

import (
	"math/big"

	akitasim "github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/hlimgo/hlim"
)

// clockSchedule tracks one clock's next toggle (half-period) time and
// whether its line is currently high, so the event queue can pick the
// earliest pending edge across every clock in the circuit.
type clockSchedule struct {
	clk     *hlim.Clock
	period  akitasim.VTimeInSec
	phase   akitasim.VTimeInSec
	toggles int64
	high    bool
}

func newClockSchedule(clk *hlim.Clock) *clockSchedule {
	freqHz, _ := new(big.Float).SetRat(clk.AbsoluteFrequency()).Float64()
	phaseFrac, _ := new(big.Float).SetRat(clk.AbsolutePhase()).Float64()
	period := akitasim.VTimeInSec(1.0 / freqHz)
	return &clockSchedule{clk: clk, period: period, phase: akitasim.VTimeInSec(phaseFrac) * period}
}

// nextToggleTime returns the absolute time of this clock's next half-period
// toggle, whether or not that toggle is an activation edge.
func (cs *clockSchedule) nextToggleTime() akitasim.VTimeInSec {
	return cs.phase + akitasim.VTimeInSec(float64(cs.toggles+1))*(cs.period/2)
}

// toggle flips the clock's line and reports whether this toggle is an
// activation edge under the clock's configured trigger.
func (cs *clockSchedule) toggle() bool {
	cs.toggles++
	wasHigh := cs.high
	cs.high = !cs.high
	switch cs.clk.Trigger() {
	case hlim.Rising:
		return !wasHigh && cs.high
	case hlim.Falling:
		return wasHigh && !cs.high
	case hlim.BothEdges:
		return true
	default:
		return false
	}
}
