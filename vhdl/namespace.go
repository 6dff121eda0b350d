// Package vhdl is the VHDL AST and emitter back end: it mirrors an
// optimized hlim.Circuit into an entity/block/process tree and renders it
// as VHDL-93 text, per spec.md §4.5.
package vhdl

import (
	"fmt"
	"strings"

	"github.com/rs/xid"

	"github.com/sarchlab/hlimgo/hlim"
)

// reservedWords seeds every NamespaceScope: VHDL-93 keywords plus the
// helper package's own reserved identifiers, so allocated names never
// collide with them.
var reservedWords = []string{
	"abs", "access", "after", "alias", "all", "and", "architecture", "array",
	"assert", "attribute", "begin", "block", "body", "buffer", "bus", "case",
	"component", "configuration", "constant", "disconnect", "downto", "else",
	"elsif", "end", "entity", "exit", "file", "for", "function", "generate",
	"generic", "group", "guarded", "if", "impure", "in", "inertial", "inout",
	"is", "label", "library", "linkage", "literal", "loop", "map", "mod",
	"nand", "new", "next", "nor", "not", "null", "of", "on", "open", "or",
	"others", "out", "package", "port", "postponed", "procedure", "process",
	"pure", "range", "record", "register", "reject", "rem", "report",
	"return", "rol", "ror", "select", "severity", "signal", "shared", "sla",
	"sli", "sra", "srl", "subtype", "then", "to", "transport", "type",
	"unaffected", "units", "until", "use", "variable", "wait", "when",
	"while", "with", "xnor", "xor",
	"std_logic", "std_logic_vector", "unsigned", "signed", "integer",
	"bool2stdlogic", "stdlogic2bool", "mem_type", "word_width", "ram",
}

// SignalRole selects the name prefix allocateName applies to a handle,
// mirroring the distinct handle kinds NamespaceScope tracks per spec.md
// §4.5: a node's output port, an internal-storage signal, a clock, or an
// external IO pin.
type SignalRole int

const (
	RoleNodePort SignalRole = iota
	RoleInternalStorage
	RoleClock
	RoleIOPin
)

func (r SignalRole) prefix() string {
	switch r {
	case RoleNodePort:
		return "sig"
	case RoleInternalStorage:
		return "reg"
	case RoleClock:
		return "clk"
	case RoleIOPin:
		return "pin"
	default:
		return "x"
	}
}

// handleKey identifies one (role, IR handle) pair. Only one of the handle
// fields is meaningful per role.
type handleKey struct {
	role SignalRole
	node *hlim.Node
	port int
	clk  *hlim.Clock
}

// NamespaceScope is a lexical, linked naming scope: allocateName yields a
// unique identifier not in use in this scope or any ancestor, and every
// allocation is remembered so the same handle always maps back to the same
// name within its scope.
type NamespaceScope struct {
	parent *NamespaceScope
	used   map[string]bool
	names  map[handleKey]string
}

// NewRootNamespace creates the top-level scope, seeded with every VHDL
// reserved word.
func NewRootNamespace() *NamespaceScope {
	s := &NamespaceScope{used: make(map[string]bool), names: make(map[handleKey]string)}
	for _, w := range reservedWords {
		s.used[strings.ToLower(w)] = true
	}
	return s
}

// NewChild creates a nested scope: its own names are added fresh, but a
// name already taken by an ancestor is never reused.
func (s *NamespaceScope) NewChild() *NamespaceScope {
	return &NamespaceScope{parent: s, used: make(map[string]bool), names: make(map[handleKey]string)}
}

func (s *NamespaceScope) taken(name string) bool {
	for scope := s; scope != nil; scope = scope.parent {
		if scope.used[name] {
			return true
		}
	}
	return false
}

// allocateName deterministically yields a unique name for handle, built
// from role's prefix and desired: the first unused candidate among
// "prefix_desired", "prefix_desired_1", "prefix_desired_2", ... If the
// numeric suffixes are ever exhausted within one allocation (desired is
// empty or collides absurdly often), a short xid-derived suffix breaks the
// tie instead of looping forever.
func (s *NamespaceScope) allocateName(key handleKey, desired string, role SignalRole) string {
	if existing, ok := s.names[key]; ok {
		return existing
	}

	base := role.prefix()
	if desired != "" {
		base = base + "_" + sanitize(desired)
	}

	name := strings.ToLower(base)
	if !s.taken(name) {
		return s.commit(key, name)
	}

	const maxNumericAttempts = 1000
	for n := 1; n <= maxNumericAttempts; n++ {
		candidate := fmt.Sprintf("%s_%d", name, n)
		if !s.taken(candidate) {
			return s.commit(key, candidate)
		}
	}

	// Numeric suffixes exhausted (pathological, but allocateName must
	// still terminate): fall back to a short collision-free xid suffix.
	for {
		candidate := fmt.Sprintf("%s_%s", name, strings.ToLower(xid.New().String()[:8]))
		if !s.taken(candidate) {
			return s.commit(key, candidate)
		}
	}
}

func (s *NamespaceScope) commit(key handleKey, name string) string {
	s.used[name] = true
	s.names[key] = name
	return name
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		out = "n"
	}
	return out
}

// NameForPort allocates or returns this scope's name for a node output.
func (s *NamespaceScope) NameForPort(port hlim.NodePort) string {
	desired := port.Node.Name()
	if desired == "" {
		desired = fmt.Sprintf("n%d_%d", port.Node.ID(), port.Port)
	}
	return s.allocateName(handleKey{role: RoleNodePort, node: port.Node, port: port.Port}, desired, RoleNodePort)
}

// NameForInternalStorage allocates or returns this scope's name for a
// node's internal-state register (e.g. a REGISTER's latched storage).
func (s *NamespaceScope) NameForInternalStorage(n *hlim.Node) string {
	desired := n.Name()
	if desired == "" {
		desired = fmt.Sprintf("n%d", n.ID())
	}
	return s.allocateName(handleKey{role: RoleInternalStorage, node: n}, desired, RoleInternalStorage)
}

// NameForClock allocates or returns this scope's name for a clock signal.
func (s *NamespaceScope) NameForClock(clk *hlim.Clock) string {
	return s.allocateName(handleKey{role: RoleClock, clk: clk}, clk.Name(), RoleClock)
}

// NameForIOPin allocates or returns this scope's name for an external PIN
// node's port.
func (s *NamespaceScope) NameForIOPin(n *hlim.Node) string {
	desired := n.Name()
	if desired == "" {
		desired = fmt.Sprintf("n%d", n.ID())
	}
	return s.allocateName(handleKey{role: RoleIOPin, node: n}, desired, RoleIOPin)
}
