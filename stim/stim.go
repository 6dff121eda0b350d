// Package stim supplies small closure-based stimulus generators for the
// equivalence checks in cmd/hlimcheck, adapted from the teacher's
// util/valgen closure-generator idiom (MakeConstGen/MakeIncreasingGen) onto
// uint64 stimulus values instead of ints.
package stim

// Const returns a generator that always yields v.
func Const(v uint64) func() uint64 {
	return func() uint64 { return v }
}

// Increasing returns a generator that yields start, start+1, start+2, ...
// on successive calls, useful for walking a stimulus space exhaustively
// before falling back to random sampling.
func Increasing(start uint64) func() uint64 {
	current := start
	return func() uint64 {
		v := current
		current++
		return v
	}
}

// Sequence chains generators together: it yields one value from each in
// turn, then repeats the final generator indefinitely. Used to front-load
// deterministic edge-case trials (0, 1, max) ahead of the random trials a
// *rand.Rand-backed generator supplies.
func Sequence(gens ...func() uint64) func() uint64 {
	i := 0
	return func() uint64 {
		if i < len(gens)-1 {
			defer func() { i++ }()
		}
		return gens[i]()
	}
}
