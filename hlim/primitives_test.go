package hlim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlimgo/bitvec"
	"github.com/sarchlab/hlimgo/hlim"
)

// layout is a tiny hand-rolled bit allocator for exercising node evaluators
// directly, without going through the sim package's compiler.
type layout struct {
	buf  *bitvec.State
	next int
}

func newLayout(size int) *layout {
	return &layout{buf: bitvec.New(size)}
}

func (l *layout) alloc(width int) int {
	off := l.next
	l.next += width
	return off
}

var _ = Describe("primitive node semantics", func() {
	It("ADD computes a two's-complement sum when both operands are fully defined", func() {
		c := hlim.NewCircuit()
		add := c.CreateArithmetic(hlim.Add, 2, hlim.Unsigned)

		l := newLayout(16)
		lhsOff := l.alloc(2)
		rhsOff := l.alloc(2)
		outOff := l.alloc(2)

		l.buf.InsertWord(lhsOff, 2, 0b01, 0b11)
		l.buf.InsertWord(rhsOff, 2, 0b01, 0b11)

		hlim.Evaluate(add, l.buf, []int{lhsOff, rhsOff}, []int{outOff}, 0, 0)

		v, d := l.buf.ExtractWord(outOff, 2)
		Expect(v).To(BeNumerically("==", 0b10))
		Expect(d).To(BeNumerically("==", 0b11))
	})

	It("ADD taints the whole result when any operand bit is undefined", func() {
		c := hlim.NewCircuit()
		add := c.CreateArithmetic(hlim.Add, 2, hlim.Unsigned)

		l := newLayout(16)
		lhsOff := l.alloc(2)
		rhsOff := l.alloc(2)
		outOff := l.alloc(2)

		l.buf.InsertWord(lhsOff, 2, 0b01, 0b01)
		l.buf.InsertWord(rhsOff, 2, 0b01, 0b11)
		l.buf.Set(bitvec.Defined, outOff, true)

		hlim.Evaluate(add, l.buf, []int{lhsOff, rhsOff}, []int{outOff}, 0, 0)
		Expect(l.buf.AllDefined(outOff, 2)).To(BeFalse())
	})

	It("DIV honors the two's-complement interpretation", func() {
		c := hlim.NewCircuit()
		div := c.CreateArithmetic(hlim.Div, 4, hlim.TwosComplement)

		l := newLayout(16)
		lhsOff := l.alloc(4)
		rhsOff := l.alloc(4)
		outOff := l.alloc(4)

		// -2 / 3 truncates to 0; unsigned 14 / 3 would be 4.
		l.buf.InsertWord(lhsOff, 4, 0b1110, 0b1111)
		l.buf.InsertWord(rhsOff, 4, 0b0011, 0b1111)

		hlim.Evaluate(div, l.buf, []int{lhsOff, rhsOff}, []int{outOff}, 0, 0)

		v, d := l.buf.ExtractWord(outOff, 4)
		Expect(v).To(BeNumerically("==", 0))
		Expect(d).To(BeNumerically("==", 0b1111))
	})

	It("LT honors the two's-complement interpretation", func() {
		c := hlim.NewCircuit()
		lt := c.CreateCompare(hlim.Lt, 4, hlim.TwosComplement)

		l := newLayout(16)
		lhsOff := l.alloc(4)
		rhsOff := l.alloc(4)
		outOff := l.alloc(1)

		// -1 < 1 signed; unsigned 15 < 1 would be false.
		l.buf.InsertWord(lhsOff, 4, 0b1111, 0b1111)
		l.buf.InsertWord(rhsOff, 4, 0b0001, 0b1111)

		hlim.Evaluate(lt, l.buf, []int{lhsOff, rhsOff}, []int{outOff}, 0, 0)

		Expect(l.buf.Get(bitvec.Defined, outOff)).To(BeTrue())
		Expect(l.buf.Get(bitvec.Value, outOff)).To(BeTrue())
	})

	It("REGISTER samples on evaluate and loads on a matching advance", func() {
		c := hlim.NewCircuit()
		reg := c.CreateRegister(2, hlim.Unsigned)

		l := newLayout(32)
		dataOff := l.alloc(2)
		resetOff := l.alloc(2)
		enableOff := l.alloc(1)
		outOff := l.alloc(2)
		internalOff := l.alloc(3)

		resetConst := c.CreateConstant(constLiteral(2, 0, 0b11), hlim.Unsigned)
		Expect(c.Connect(reg.Input(1), hlim.NodePort{Node: resetConst, Port: 0})).To(Succeed())

		hlim.Reset(c, reg, l.buf, []int{outOff}, internalOff)
		Expect(l.buf.Extract(outOff, 2).String()).To(Equal("00"))

		l.buf.InsertWord(dataOff, 2, 0b10, 0b11)
		l.buf.Set(bitvec.Defined, enableOff, true)
		l.buf.Set(bitvec.Value, enableOff, true)

		hlim.Evaluate(reg, l.buf, []int{dataOff, resetOff, enableOff}, []int{outOff}, internalOff, 0)
		hlim.Advance(reg, 0, l.buf, nil, []int{outOff}, internalOff, 0)

		Expect(l.buf.Extract(outOff, 2).String()).To(Equal("10"))
	})

	It("REGISTER output goes undefined when enable is undefined at advance", func() {
		c := hlim.NewCircuit()
		reg := c.CreateRegister(1, hlim.Unsigned)

		en := c.CreateSignal(hlim.BitType())
		Expect(c.Connect(reg.Input(2), hlim.NodePort{Node: en, Port: 0})).To(Succeed())

		l := newLayout(16)
		dataOff := l.alloc(1)
		enableOff := l.alloc(1)
		outOff := l.alloc(1)
		internalOff := l.alloc(2)

		l.buf.Set(bitvec.Defined, dataOff, true)
		l.buf.Set(bitvec.Value, dataOff, true)
		// enableOff left fully undefined.

		hlim.Evaluate(reg, l.buf, []int{dataOff, 0, enableOff}, []int{outOff}, internalOff, 0)
		hlim.Advance(reg, 0, l.buf, nil, []int{outOff}, internalOff, 0)

		Expect(l.buf.Get(bitvec.Defined, outOff)).To(BeFalse())
	})

	It("MULTIPLEXER is undefined when the selector is undefined", func() {
		c := hlim.NewCircuit()
		mux := c.CreateMultiplexer(1, hlim.BitType(), 2)

		l := newLayout(16)
		selOff := l.alloc(1)
		d0Off := l.alloc(1)
		d1Off := l.alloc(1)
		outOff := l.alloc(1)

		l.buf.Set(bitvec.Defined, d0Off, true)
		l.buf.Set(bitvec.Defined, d1Off, true)
		l.buf.Set(bitvec.Value, d1Off, true)

		hlim.Evaluate(mux, l.buf, []int{selOff, d0Off, d1Off}, []int{outOff}, 0, 0)
		Expect(l.buf.Get(bitvec.Defined, outOff)).To(BeFalse())
	})

	It("MULTIPLEXER selects data[selector] when defined", func() {
		c := hlim.NewCircuit()
		mux := c.CreateMultiplexer(1, hlim.BitType(), 2)

		l := newLayout(16)
		selOff := l.alloc(1)
		d0Off := l.alloc(1)
		d1Off := l.alloc(1)
		outOff := l.alloc(1)

		l.buf.Set(bitvec.Defined, selOff, true)
		l.buf.Set(bitvec.Value, selOff, true)
		l.buf.Set(bitvec.Defined, d1Off, true)
		l.buf.Set(bitvec.Value, d1Off, true)

		hlim.Evaluate(mux, l.buf, []int{selOff, d0Off, d1Off}, []int{outOff}, 0, 0)
		Expect(l.buf.Get(bitvec.Defined, outOff)).To(BeTrue())
		Expect(l.buf.Get(bitvec.Value, outOff)).To(BeTrue())
	})

	It("PRIORITY_CONDITIONAL taints on an undefined earlier condition", func() {
		c := hlim.NewCircuit()
		pc := c.CreatePriorityConditional(hlim.BitType(), 2)

		l := newLayout(16)
		defOff := l.alloc(1)
		c0Off := l.alloc(1)
		d0Off := l.alloc(1)
		c1Off := l.alloc(1)
		d1Off := l.alloc(1)
		outOff := l.alloc(1)

		l.buf.Set(bitvec.Defined, defOff, true)
		// c0Off left undefined.
		l.buf.Set(bitvec.Defined, c1Off, true)
		l.buf.Set(bitvec.Value, c1Off, true)
		l.buf.Set(bitvec.Defined, d1Off, true)
		l.buf.Set(bitvec.Value, d1Off, true)

		hlim.Evaluate(pc, l.buf, []int{defOff, c0Off, d0Off, c1Off, d1Off}, []int{outOff}, 0, 0)
		Expect(l.buf.Get(bitvec.Defined, outOff)).To(BeFalse())
	})

	It("PRIORITY_CONDITIONAL picks the first firing condition", func() {
		c := hlim.NewCircuit()
		pc := c.CreatePriorityConditional(hlim.BitType(), 2)

		l := newLayout(16)
		defOff := l.alloc(1)
		c0Off := l.alloc(1)
		d0Off := l.alloc(1)
		c1Off := l.alloc(1)
		d1Off := l.alloc(1)
		outOff := l.alloc(1)

		l.buf.Set(bitvec.Defined, defOff, true)
		l.buf.Set(bitvec.Defined, c0Off, true)
		l.buf.Set(bitvec.Value, c0Off, false)
		l.buf.Set(bitvec.Defined, c1Off, true)
		l.buf.Set(bitvec.Value, c1Off, true)
		l.buf.Set(bitvec.Defined, d1Off, true)
		l.buf.Set(bitvec.Value, d1Off, true)

		hlim.Evaluate(pc, l.buf, []int{defOff, c0Off, d0Off, c1Off, d1Off}, []int{outOff}, 0, 0)
		Expect(l.buf.Get(bitvec.Defined, outOff)).To(BeTrue())
		Expect(l.buf.Get(bitvec.Value, outOff)).To(BeTrue())
	})
})

func constLiteral(width int, value, defined uint64) *bitvec.State {
	s := bitvec.New(width)
	s.InsertWord(0, width, value, defined)
	return s
}
