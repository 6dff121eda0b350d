package hlim

import (
	"math/big"

	"github.com/sarchlab/akita/v4/sim"
)

// TriggerEdge selects which signal transition a clock fires a tick on.
type TriggerEdge int

const (
	Rising TriggerEdge = iota
	Falling
	BothEdges
)

// ResetKind selects the reset discipline a clock applies to the registers
// bound to it.
type ResetKind int

const (
	NoReset ResetKind = iota
	SyncReset
	AsyncReset
)

// ClockSlotRef identifies one node's clock slot, used by Clock to keep its
// teardown back-references.
type ClockSlotRef struct {
	Node *Node
	Slot int
}

// Clock is either a Root clock with an absolute frequency, or a Derived
// clock expressed as a rational multiplier of a parent clock. Every clock
// carries a trigger edge and a reset discipline; absolute frequency and
// phase are only meaningful once resolved to the root.
type Clock struct {
	id     ID
	name   string
	parent *Clock // nil for root clocks

	// Root-only.
	absoluteFrequency *big.Rat

	// Derived-only.
	multiplier *big.Rat
	phaseShift *big.Rat

	trigger       TriggerEdge
	resetKind     ResetKind
	resetPolarity bool
	resetRelease  bool
	resetSignal   string

	slots []ClockSlotRef
}

// ID returns the clock's stable identifier within its circuit.
func (c *Clock) ID() ID { return c.id }

// Name returns the clock's declared name.
func (c *Clock) Name() string { return c.name }

// IsRoot reports whether this is a root clock (no parent).
func (c *Clock) IsRoot() bool { return c.parent == nil }

// Parent returns the parent clock for a derived clock, or nil for a root.
func (c *Clock) Parent() *Clock { return c.parent }

// SetTrigger sets the edge this clock fires on.
func (c *Clock) SetTrigger(t TriggerEdge) { c.trigger = t }

// Trigger returns the edge this clock fires on.
func (c *Clock) Trigger() TriggerEdge { return c.trigger }

// SetReset configures the reset discipline, polarity, and release value.
func (c *Clock) SetReset(kind ResetKind, polarity, releaseValue bool, signalName string) {
	c.resetKind = kind
	c.resetPolarity = polarity
	c.resetRelease = releaseValue
	c.resetSignal = signalName
}

// Reset returns the configured reset discipline.
func (c *Clock) Reset() (kind ResetKind, polarity, releaseValue bool, signalName string) {
	return c.resetKind, c.resetPolarity, c.resetRelease, c.resetSignal
}

// AbsoluteFrequency walks to the root and returns the resolved frequency of
// this clock as a rational number of Hz.
func (c *Clock) AbsoluteFrequency() *big.Rat {
	if c.IsRoot() {
		return new(big.Rat).Set(c.absoluteFrequency)
	}
	freq := c.parent.AbsoluteFrequency()
	return freq.Mul(freq, c.multiplier)
}

// AbsolutePhase walks to the root and returns the resolved phase shift of
// this clock as a rational fraction of one period.
func (c *Clock) AbsolutePhase() *big.Rat {
	if c.IsRoot() {
		return new(big.Rat)
	}
	phase := c.parent.AbsolutePhase()
	return phase.Add(phase, c.phaseShift)
}

// Freq converts the resolved absolute frequency into an akita sim.Freq for
// use by the event scheduler.
func (c *Clock) Freq() sim.Freq {
	f := c.AbsoluteFrequency()
	hz, _ := new(big.Float).SetRat(f).Float64()
	return sim.Freq(hz)
}

func (c *Clock) attachSlot(n *Node, slot int) {
	c.slots = append(c.slots, ClockSlotRef{Node: n, Slot: slot})
}

func (c *Clock) detachSlot(n *Node, slot int) {
	for i, ref := range c.slots {
		if ref.Node == n && ref.Slot == slot {
			c.slots = append(c.slots[:i], c.slots[i+1:]...)
			return
		}
	}
}

// BoundSlots returns the node clock-slots currently bound to this clock.
func (c *Clock) BoundSlots() []ClockSlotRef {
	out := make([]ClockSlotRef, len(c.slots))
	copy(out, c.slots)
	return out
}

// teardown detaches this clock from every node slot still bound to it and
// clears its own slot list.
func (c *Clock) teardown() {
	for _, ref := range c.slots {
		ref.Node.clockSlots[ref.Slot].clock = nil
	}
	c.slots = nil
}
