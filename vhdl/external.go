package vhdl

import "github.com/sarchlab/hlimgo/hlim"

// ExternalNodeHandler claims EXTERNAL nodes of a particular component kind
// and renders their VHDL instantiation. Render is called once per
// ExternalInstance with the names the namespace scope already assigned to
// each of the node's input drivers and output ports, in port order.
//
// A handler that does not recognize inst.Node's ExternalDetail.ComponentKind
// must return ok=false so the registry can try the next one, per spec.md
// §4.5's "first handler that claims the node" rule.
type ExternalNodeHandler interface {
	Render(inst *ExternalInstance, inputNames, outputNames []string) (body string, ok bool)
}

// ExternalHandlerRegistry is an ordered list of ExternalNodeHandler values
// consulted in registration order; the first to claim a node wins.
type ExternalHandlerRegistry struct {
	handlers []ExternalNodeHandler
}

// NewExternalHandlerRegistry builds a registry trying handlers in the
// given order.
func NewExternalHandlerRegistry(handlers ...ExternalNodeHandler) *ExternalHandlerRegistry {
	return &ExternalHandlerRegistry{handlers: handlers}
}

// Register appends h to the end of the trial order.
func (r *ExternalHandlerRegistry) Register(h ExternalNodeHandler) {
	r.handlers = append(r.handlers, h)
}

// Resolve renders inst using the first handler that claims it. It fails
// with hlim.VHDLUnhandledExternal if none do, per spec.md §7.
func (r *ExternalHandlerRegistry) Resolve(inst *ExternalInstance, inputNames, outputNames []string) (string, error) {
	for _, h := range r.handlers {
		if body, ok := h.Render(inst, inputNames, outputNames); ok {
			return body, nil
		}
	}
	return "", &hlim.Error{
		Kind:    hlim.VHDLUnhandledExternal,
		Message: "no ExternalNodeHandler claimed component kind " + inst.Node.Detail().(*hlim.ExternalDetail).ComponentKind,
		NodeID:  inst.Node.ID(),
		HasNode: true,
	}
}

// GenericComponentHandler is the fallback handler shipped with the
// emitter: it claims any EXTERNAL node and renders a plain direct
// instantiation of a component named after ComponentKind, positional-port
// mapped. Bespoke handlers that need a smarter port map (generics, named
// association, a vendor wrapper) should be registered ahead of it.
type GenericComponentHandler struct{}

// Render implements ExternalNodeHandler.
func (GenericComponentHandler) Render(inst *ExternalInstance, inputNames, outputNames []string) (string, bool) {
	label := inst.Name
	kind := inst.Node.Detail().(*hlim.ExternalDetail).ComponentKind

	body := "  " + label + " : entity work." + kind + "\n    port map (\n"
	ports := make([]string, 0, len(inputNames)+len(outputNames))
	ports = append(ports, inputNames...)
	ports = append(ports, outputNames...)
	for i, p := range ports {
		sep := ","
		if i == len(ports)-1 {
			sep = ""
		}
		body += "      " + p + sep + "\n"
	}
	body += "    );\n"
	return body, true
}
