package hlim

import "github.com/sarchlab/hlimgo/bitvec"

// SignalTapLevel selects the diagnostic channel a fired tap reports to.
type SignalTapLevel int

const (
	Assert SignalTapLevel = iota
	Warn
	Debug
	Watch
)

// SignalTapTrigger selects when a SIGNAL_TAP fires.
type SignalTapTrigger int

const (
	Always SignalTapTrigger = iota
	FirstInputHigh
	FirstInputLow
	FirstClock
)

// SignalTapDetail configures a SIGNAL_TAP node.
type SignalTapDetail struct {
	Level        SignalTapLevel
	Trigger      SignalTapTrigger
	Message      string
	HasTrigger   bool
	PayloadTypes []ConnectionType
}

func (d *SignalTapDetail) internalStateWidth() int { return 1 }

// CreateSignalTap appends a variadic-input SIGNAL_TAP node. If hasTrigger,
// input 0 is the one-bit trigger condition; the remaining inputs are the
// formatted payload values. A tap has side effects and is never culled by
// dead-code elimination.
func (c *Circuit) CreateSignalTap(level SignalTapLevel, trigger SignalTapTrigger, hasTrigger bool, payloadTypes []ConnectionType, message string) *Node {
	d := &SignalTapDetail{Level: level, Trigger: trigger, Message: message, HasTrigger: hasTrigger, PayloadTypes: payloadTypes}
	n := c.createNode(KindSignalTap, d)
	if hasTrigger {
		n.addInput("TRIGGER")
	}
	for range payloadTypes {
		n.addInput("PAYLOAD")
	}
	return n
}

func signalTapCompatible(n *Node, idx int, pt ConnectionType) bool {
	d := n.detail.(*SignalTapDetail)
	if d.HasTrigger && idx == 0 {
		return bitCompatible(pt)
	}
	payloadIdx := idx
	if d.HasTrigger {
		payloadIdx--
	}
	return dataCompatible(d.PayloadTypes[payloadIdx], pt)
}

// SignalTapShouldFire evaluates the node's trigger against the current
// combinational state (and, for FirstClock, whether a clock bound to this
// node has just advanced), updating the "already fired" latch for the
// first-* triggers and reporting whether the sim package should emit this
// node's message on this pass.
func SignalTapShouldFire(n *Node, buf *bitvec.State, inOff []int, internalOff int, clockJustAdvanced bool) bool {
	d := n.detail.(*SignalTapDetail)

	alreadyFired := buf.Get(bitvec.Value, internalOff) && buf.Get(bitvec.Defined, internalOff)
	markFired := func() {
		buf.Set(bitvec.Defined, internalOff, true)
		buf.Set(bitvec.Value, internalOff, true)
	}

	switch d.Trigger {
	case Always:
		if !d.HasTrigger {
			return true
		}
		return buf.Get(bitvec.Defined, inOff[0]) && buf.Get(bitvec.Value, inOff[0])
	case FirstInputHigh:
		if alreadyFired {
			return false
		}
		if buf.Get(bitvec.Defined, inOff[0]) && buf.Get(bitvec.Value, inOff[0]) {
			markFired()
			return true
		}
		return false
	case FirstInputLow:
		if alreadyFired {
			return false
		}
		if buf.Get(bitvec.Defined, inOff[0]) && !buf.Get(bitvec.Value, inOff[0]) {
			markFired()
			return true
		}
		return false
	case FirstClock:
		if alreadyFired {
			return false
		}
		if clockJustAdvanced {
			markFired()
			return true
		}
		return false
	}
	return false
}
