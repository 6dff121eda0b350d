package hlim

import "github.com/sarchlab/hlimgo/bitvec"

// SignalGeneratorDetail configures a SIGNAL_GENERATOR node: its output
// shapes and the producer function computing each tick's values. Producer
// is called with the tick index (0 at power-on, incrementing on every
// clock advance) and must return one value per configured output.
type SignalGeneratorDetail struct {
	OutputTypes []ConnectionType
	Producer    func(tick int) []*bitvec.State

	tick int
}

// CreateSignalGenerator appends a zero-input node driving the given output
// shapes from producer, advanced by clk. Signal generators exist purely to
// inject simulation stimulus; they are never emitted to VHDL.
func (c *Circuit) CreateSignalGenerator(outputTypes []ConnectionType, producer func(tick int) []*bitvec.State) *Node {
	d := &SignalGeneratorDetail{OutputTypes: outputTypes, Producer: producer}
	n := c.createNode(KindSignalGenerator, d)
	for _, t := range outputTypes {
		n.addOutput("OUT", t, OutputLatched)
	}
	n.addClockSlot()
	return n
}

func signalGeneratorReset(n *Node, buf *bitvec.State, outOff []int) {
	d := n.detail.(*SignalGeneratorDetail)
	d.tick = 0
	writeTick(d, buf, outOff)
}

func signalGeneratorAdvance(n *Node, buf *bitvec.State, outOff []int) {
	d := n.detail.(*SignalGeneratorDetail)
	d.tick++
	writeTick(d, buf, outOff)
}

func writeTick(d *SignalGeneratorDetail, buf *bitvec.State, outOff []int) {
	values := d.Producer(d.tick)
	for i, v := range values {
		buf.Insert(outOff[i], v)
	}
}
