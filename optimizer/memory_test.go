package optimizer_test

import (
	"math/big"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlimgo/bitvec"
	"github.com/sarchlab/hlimgo/hlim"
	"github.com/sarchlab/hlimgo/optimizer"
)

var _ = Describe("memory group detection", func() {
	It("groups a memory with its ports and fuses a matching-enable register as a sync read", func() {
		c := hlim.NewCircuit()
		const wordWidth = 8
		const numWords = 4
		const addrWidth = 2

		powerOn := bitvec.New(wordWidth * numWords)
		mem := c.CreateMemory(wordWidth, numWords, powerOn)

		enable := c.CreateCompare(hlim.Eq, 1, hlim.Raw)

		readPort := c.CreateMemReadPort(wordWidth, addrWidth)
		Expect(c.Connect(readPort.Input(0), hlim.NodePort{Node: mem, Port: 0})).To(Succeed())
		Expect(c.Connect(readPort.Input(1), hlim.NodePort{Node: enable, Port: 0})).To(Succeed())

		reg := c.CreateRegister(wordWidth, hlim.Raw)
		clk := c.CreateRootClock("clk", big.NewRat(1, 1))
		c.AttachClock(reg, 0, clk)
		Expect(c.Connect(reg.Input(0), hlim.NodePort{Node: readPort, Port: 0})).To(Succeed())
		Expect(c.Connect(reg.Input(2), hlim.NodePort{Node: enable, Port: 0})).To(Succeed())

		writePort := c.CreateMemWritePort(wordWidth, addrWidth)
		Expect(c.Connect(writePort.Input(0), hlim.NodePort{Node: mem, Port: 0})).To(Succeed())

		optimizer.Optimize(c, 3)

		group := mem.Group()
		Expect(group.Kind()).To(Equal(hlim.SFU))
		Expect(reg.Group()).To(Equal(group))
		Expect(readPort.Group()).To(Equal(group))
		Expect(writePort.Group()).To(Equal(group))

		info, ok := group.Metadata.(*optimizer.MemoryGroupInfo)
		Expect(ok).To(BeTrue())
		Expect(info.Memory).To(Equal(mem))
		Expect(info.WritePorts).To(ConsistOf(writePort))
		Expect(info.ReadPorts).To(HaveLen(1))

		rp := info.ReadPorts[0]
		Expect(rp.Port).To(Equal(readPort))
		Expect(rp.SyncReadReg).To(Equal(reg))
		Expect(rp.DataOutput).To(Equal(hlim.NodePort{Node: reg, Port: 0}))
	})

	It("leaves a read port asynchronous when the following register's enable does not match", func() {
		c := hlim.NewCircuit()
		const wordWidth = 8
		const addrWidth = 2

		powerOn := bitvec.New(wordWidth * 4)
		mem := c.CreateMemory(wordWidth, 4, powerOn)

		readEnable := c.CreateCompare(hlim.Eq, 1, hlim.Raw)
		otherEnable := c.CreateCompare(hlim.Neq, 1, hlim.Raw)

		readPort := c.CreateMemReadPort(wordWidth, addrWidth)
		Expect(c.Connect(readPort.Input(0), hlim.NodePort{Node: mem, Port: 0})).To(Succeed())
		Expect(c.Connect(readPort.Input(1), hlim.NodePort{Node: readEnable, Port: 0})).To(Succeed())

		reg := c.CreateRegister(wordWidth, hlim.Raw)
		clk := c.CreateRootClock("clk", big.NewRat(1, 1))
		c.AttachClock(reg, 0, clk)
		Expect(c.Connect(reg.Input(0), hlim.NodePort{Node: readPort, Port: 0})).To(Succeed())
		Expect(c.Connect(reg.Input(2), hlim.NodePort{Node: otherEnable, Port: 0})).To(Succeed())

		optimizer.Optimize(c, 3)

		group := mem.Group()
		info := group.Metadata.(*optimizer.MemoryGroupInfo)
		Expect(info.ReadPorts).To(HaveLen(1))

		rp := info.ReadPorts[0]
		Expect(rp.SyncReadReg).To(BeNil())
		Expect(rp.DataOutput).To(Equal(hlim.NodePort{Node: readPort, Port: 0}))
		Expect(reg.Group()).NotTo(Equal(group))
	})
})
