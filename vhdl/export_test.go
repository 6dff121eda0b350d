package vhdl_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlimgo/hlim"
	"github.com/sarchlab/hlimgo/vhdl"
)

var _ = Describe("VHDLExport", func() {
	It("writes the helper package and one file per entity to the destination directory", func() {
		c := hlim.NewCircuit()
		a := c.CreatePin(1, hlim.HighZUndefined)
		b := c.CreatePin(1, hlim.HighZUndefined)
		and := c.CreateLogic(hlim.And, 1, hlim.Raw)
		Expect(c.Connect(and.Input(0), hlim.NodePort{Node: a, Port: 0})).To(Succeed())
		Expect(c.Connect(and.Input(1), hlim.NodePort{Node: b, Port: 0})).To(Succeed())

		dir, err := os.MkdirTemp("", "vhdl-export")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)

		ast, err := vhdl.NewVHDLExport(dir).Export(c)
		Expect(err).NotTo(HaveOccurred())
		Expect(ast.Root).NotTo(BeNil())

		helperPath := filepath.Join(dir, ast.Helper.Name+".vhdl")
		Expect(helperPath).To(BeAnExistingFile())

		entityPath := filepath.Join(dir, ast.Root.Name+".vhdl")
		Expect(entityPath).To(BeAnExistingFile())

		contents, err := os.ReadFile(entityPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(contents)).To(ContainSubstring("entity " + ast.Root.Name + " is"))
	})

	It("defaults to the .vhdl extension and honors an overridden one", func() {
		c := hlim.NewCircuit()
		c.CreatePin(1, hlim.HighZUndefined)

		dir, err := os.MkdirTemp("", "vhdl-export-ext")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)

		ast, err := vhdl.NewVHDLExport(dir).
			SetFormatting(vhdl.FormattingPolicy{Extension: ".vhd"}).
			Export(c)
		Expect(err).NotTo(HaveOccurred())

		Expect(filepath.Join(dir, ast.Root.Name+".vhd")).To(BeAnExistingFile())
	})
})
