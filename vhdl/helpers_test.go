package vhdl_test

import "github.com/sarchlab/hlimgo/bitvec"

// literalState builds a small constant BitVectorState from explicit value/
// defined masks, for test fixtures only.
func literalState(width int, value, defined uint64) *bitvec.State {
	s := bitvec.New(width)
	s.InsertWord(0, width, value, defined)
	return s
}
