package hlim

// Interpretation tags how a ConnectionType's bits should be read
// numerically.
type Interpretation int

const (
	// Bit is a single logical signal, width always 1.
	Bit Interpretation = iota
	// BitVec is a raw or numerically-interpreted bit vector.
	BitVec
	// Dependency is a zero-information ordering edge; width is always 0.
	Dependency
)

// NumericKind further refines how a BitVec's bits encode a number.
// TwosComplement is interpreted wherever it changes a result: DIV/REM and
// the relational comparisons. The fixed-point denominator and float
// sign/mantissa/bias fields are preserved verbatim and never interpreted
// by the core passes (per spec.md §9 open questions).
type NumericKind int

const (
	Raw NumericKind = iota
	Unsigned
	TwosComplement
	OneHot
	FixedPoint
	Float
)

// ConnectionType is a tagged record describing an output's signal
// interpretation, width, and numeric-interpretation hints. Two
// ConnectionTypes compare equal iff every field matches.
type ConnectionType struct {
	Interpretation Interpretation
	Width          int
	Numeric        NumericKind

	// FixedPointDenominator applies when Numeric == FixedPoint.
	FixedPointDenominator int
	// FloatSignBit, FloatMantissaBits, FloatExponentBias apply when
	// Numeric == Float.
	FloatSignBit      bool
	FloatMantissaBits int
	FloatExponentBias int
}

// Equal reports whether two ConnectionTypes have identical fields.
func (c ConnectionType) Equal(o ConnectionType) bool {
	return c == o
}

// BitType is the canonical single-bit BIT connection type.
func BitType() ConnectionType {
	return ConnectionType{Interpretation: Bit, Width: 1}
}

// BitVecType builds a BITVEC connection type of the given width with the
// given numeric interpretation.
func BitVecType(width int, numeric NumericKind) ConnectionType {
	return ConnectionType{Interpretation: BitVec, Width: width, Numeric: numeric}
}

// DependencyType is the canonical zero-width DEPENDENCY connection type
// used to serialize side-effecting nodes without carrying data.
func DependencyType() ConnectionType {
	return ConnectionType{Interpretation: Dependency, Width: 0}
}

// dataCompatible reports whether a producer of type pt can feed a
// data-carrying input expecting want. Widths must match and a DEPENDENCY
// edge can never carry data; BIT and a width-1 BITVEC are interchangeable,
// since the numeric hints only matter at VHDL emission, not on the wire.
func dataCompatible(want, pt ConnectionType) bool {
	if want.Interpretation == Dependency || pt.Interpretation == Dependency {
		return want.Interpretation == pt.Interpretation
	}
	return want.Width == pt.Width
}

// bitCompatible reports whether pt can feed a one-bit boolean input such as
// an enable, selector, or condition.
func bitCompatible(pt ConnectionType) bool {
	return pt.Interpretation != Dependency && pt.Width == 1
}
