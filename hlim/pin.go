package hlim

import "github.com/sarchlab/hlimgo/bitvec"

// HighZPolicy resolves the observed value of a PIN when neither the
// internal circuit nor an external simulation process is actively driving
// it.
type HighZPolicy int

const (
	PullUp HighZPolicy = iota
	PullDown
	HighZUndefined
)

// PinDetail configures a PIN node.
type PinDetail struct {
	Width  int
	Policy HighZPolicy
}

// internalStateWidth returns the number of internal-state bits a PIN needs:
// one value/defined slot per output bit holding the externally driven
// value, plus a trailing marker bit recording whether an external
// simulation process currently drives the pin at all (so a drive can carry
// undefined bits without reading as "released").
func (d *PinDetail) internalStateWidth() int { return d.Width + 1 }

// CreatePin appends a bidirectional PIN node: input 0 is the data the
// internal circuit drives outward, input 1 is the tri-state output-enable,
// output 0 is the value observed by the internal circuit (an external
// process's drive always takes precedence over DATA/OE).
func (c *Circuit) CreatePin(width int, policy HighZPolicy) *Node {
	n := c.createNode(KindPin, &PinDetail{Width: width, Policy: policy})
	n.addInput("DATA")
	n.addInput("OE")
	n.addOutput("OUT", BitVecType(width, Raw), OutputCombinational)
	return n
}

func pinCompatible(n *Node, idx int, pt ConnectionType) bool {
	d := n.detail.(*PinDetail)
	if idx == 1 {
		return bitCompatible(pt)
	}
	return dataCompatible(BitVecType(d.Width, Raw), pt)
}

// PinWriteExternal marks an external drive of width bits starting at
// internalOff with value (both planes, so a drive may carry undefined
// bits), used by simulation processes calling setInputPin. It takes
// precedence over the node's own DATA/OE inputs on the next reevaluation.
func PinWriteExternal(buf *bitvec.State, internalOff, width int, value *bitvec.State) {
	buf.CopyRange(internalOff, value, 0, width)
	buf.Set(bitvec.Defined, internalOff+width, true)
	buf.Set(bitvec.Value, internalOff+width, true)
}

// PinReleaseExternal releases a prior external drive, letting DATA/OE and
// the high-impedance policy resolve the pin again.
func PinReleaseExternal(buf *bitvec.State, internalOff, width int) {
	buf.Set(bitvec.Value, internalOff+width, false)
	buf.Set(bitvec.Defined, internalOff+width, false)
}

func pinEvaluate(n *Node, buf *bitvec.State, inOff, outOff []int, internalOff int) {
	d := n.detail.(*PinDetail)
	width := d.Width

	driven := buf.Get(bitvec.Defined, internalOff+width) && buf.Get(bitvec.Value, internalOff+width)
	oeDef := buf.Get(bitvec.Defined, inOff[1])
	oeVal := buf.Get(bitvec.Value, inOff[1])

	for i := 0; i < width; i++ {
		if driven {
			buf.Set(bitvec.Defined, outOff[0]+i, buf.Get(bitvec.Defined, internalOff+i))
			buf.Set(bitvec.Value, outOff[0]+i, buf.Get(bitvec.Value, internalOff+i))
			continue
		}

		if oeDef && oeVal {
			buf.Set(bitvec.Defined, outOff[0]+i, buf.Get(bitvec.Defined, inOff[0]+i))
			buf.Set(bitvec.Value, outOff[0]+i, buf.Get(bitvec.Value, inOff[0]+i))
			continue
		}

		switch d.Policy {
		case PullUp:
			buf.Set(bitvec.Defined, outOff[0]+i, true)
			buf.Set(bitvec.Value, outOff[0]+i, true)
		case PullDown:
			buf.Set(bitvec.Defined, outOff[0]+i, true)
			buf.Set(bitvec.Value, outOff[0]+i, false)
		default:
			buf.Set(bitvec.Defined, outOff[0]+i, false)
		}
	}
}
