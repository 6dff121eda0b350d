package vhdl_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlimgo/hlim"
	"github.com/sarchlab/hlimgo/vhdl"
)

type fifoOnlyHandler struct{}

func (fifoOnlyHandler) Render(inst *vhdl.ExternalInstance, inputNames, outputNames []string) (string, bool) {
	d := inst.Node.Detail().(*hlim.ExternalDetail)
	if d.ComponentKind != "vendor_fifo" {
		return "", false
	}
	return "  " + inst.Name + " : entity vendor.vendor_fifo port map (" +
		strings.Join(append(inputNames, outputNames...), ", ") + ");\n", true
}

var _ = Describe("external node emission", func() {
	buildWithExternal := func(kind string) *hlim.Circuit {
		c := hlim.NewCircuit()
		src := c.CreatePin(8, hlim.HighZUndefined)
		ext := c.CreateExternalComponent(kind,
			[]hlim.ConnectionType{hlim.BitVecType(8, hlim.Raw)},
			[]hlim.ConnectionType{hlim.BitVecType(8, hlim.Raw)},
			[]string{"din"}, []string{"dout"})
		Expect(c.Connect(ext.Input(0), hlim.NodePort{Node: src, Port: 0})).To(Succeed())
		return c
	}

	It("lets the first claiming handler render the instantiation", func() {
		c := buildWithExternal("vendor_fifo")

		ast, err := vhdl.CompileAST(c)
		Expect(err).NotTo(HaveOccurred())

		registry := vhdl.NewExternalHandlerRegistry(fifoOnlyHandler{}, vhdl.GenericComponentHandler{})
		text, err := vhdl.RenderEntity(ast.Root, registry, ast.Helper.Name)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(ContainSubstring("entity vendor.vendor_fifo"))
	})

	It("falls back to the generic handler for an unclaimed kind", func() {
		c := buildWithExternal("mystery_block")

		ast, err := vhdl.CompileAST(c)
		Expect(err).NotTo(HaveOccurred())

		registry := vhdl.NewExternalHandlerRegistry(fifoOnlyHandler{}, vhdl.GenericComponentHandler{})
		text, err := vhdl.RenderEntity(ast.Root, registry, ast.Helper.Name)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(ContainSubstring("entity work.mystery_block"))
	})

	It("fails with VHDL_UNHANDLED_EXTERNAL when no handler claims the node", func() {
		c := buildWithExternal("mystery_block")

		ast, err := vhdl.CompileAST(c)
		Expect(err).NotTo(HaveOccurred())

		registry := vhdl.NewExternalHandlerRegistry(fifoOnlyHandler{})
		_, err = vhdl.RenderEntity(ast.Root, registry, ast.Helper.Name)
		Expect(err).To(HaveOccurred())

		var irErr *hlim.Error
		Expect(err).To(BeAssignableToTypeOf(irErr))
		Expect(err.(*hlim.Error).Kind).To(Equal(hlim.VHDLUnhandledExternal))
	})
})
