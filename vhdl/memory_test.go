package vhdl_test

import (
	"math/big"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlimgo/bitvec"
	"github.com/sarchlab/hlimgo/hlim"
	"github.com/sarchlab/hlimgo/optimizer"
	"github.com/sarchlab/hlimgo/vhdl"
)

var _ = Describe("memory entity rendering", func() {
	It("renders a standalone entity for a detected memory group with a fused sync read", func() {
		c := hlim.NewCircuit()
		const wordWidth = 8
		const numWords = 4
		const addrWidth = 2

		clk := c.CreateRootClock("clk", big.NewRat(1, 1))

		powerOn := bitvec.New(wordWidth * numWords)
		mem := c.CreateMemory(wordWidth, numWords, powerOn)

		readEnable := c.CreatePin(1, hlim.HighZUndefined)
		readAddr := c.CreatePin(addrWidth, hlim.HighZUndefined)

		readPort := c.CreateMemReadPort(wordWidth, addrWidth)
		Expect(c.Connect(readPort.Input(0), hlim.NodePort{Node: mem, Port: 0})).To(Succeed())
		Expect(c.Connect(readPort.Input(1), hlim.NodePort{Node: readEnable, Port: 0})).To(Succeed())
		Expect(c.Connect(readPort.Input(2), hlim.NodePort{Node: readAddr, Port: 0})).To(Succeed())

		reg := c.CreateRegister(wordWidth, hlim.Raw)
		c.AttachClock(reg, 0, clk)
		Expect(c.Connect(reg.Input(0), hlim.NodePort{Node: readPort, Port: 0})).To(Succeed())
		Expect(c.Connect(reg.Input(2), hlim.NodePort{Node: readEnable, Port: 0})).To(Succeed())

		writeEnable := c.CreatePin(1, hlim.HighZUndefined)
		writeSelect := c.CreatePin(1, hlim.HighZUndefined)
		writeAddr := c.CreatePin(addrWidth, hlim.HighZUndefined)
		writeData := c.CreatePin(wordWidth, hlim.HighZUndefined)

		writePort := c.CreateMemWritePort(wordWidth, addrWidth)
		Expect(c.Connect(writePort.Input(0), hlim.NodePort{Node: mem, Port: 0})).To(Succeed())
		Expect(c.Connect(writePort.Input(1), hlim.NodePort{Node: writeEnable, Port: 0})).To(Succeed())
		Expect(c.Connect(writePort.Input(2), hlim.NodePort{Node: writeSelect, Port: 0})).To(Succeed())
		Expect(c.Connect(writePort.Input(3), hlim.NodePort{Node: writeAddr, Port: 0})).To(Succeed())
		Expect(c.Connect(writePort.Input(4), hlim.NodePort{Node: writeData, Port: 0})).To(Succeed())
		c.AttachClock(writePort, 0, clk)

		optimizer.Optimize(c, 3)

		group := mem.Group()
		Expect(group.Kind()).To(Equal(hlim.SFU))
		_, ok := group.Metadata.(*optimizer.MemoryGroupInfo)
		Expect(ok).To(BeTrue())

		dir, err := os.MkdirTemp("", "vhdl-memory")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)

		ast, err := vhdl.NewVHDLExport(dir).Export(c)
		Expect(err).NotTo(HaveOccurred())

		var memEntity *vhdl.Entity
		for _, sub := range ast.Root.SubEntities {
			if sub.Memory != nil {
				memEntity = sub
			}
		}
		Expect(memEntity).NotTo(BeNil())

		contents, err := os.ReadFile(filepath.Join(dir, memEntity.Name+".vhdl"))
		Expect(err).NotTo(HaveOccurred())
		text := string(contents)

		Expect(text).To(ContainSubstring("type mem_type is array (0 to 3) of unsigned(7 downto 0)"))
		Expect(text).To(ContainSubstring("signal ram : mem_type :="))
		Expect(text).To(ContainSubstring("rising_edge"))
		Expect(text).To(ContainSubstring("to_integer(unsigned("))
	})
})
