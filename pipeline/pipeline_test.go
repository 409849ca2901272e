package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archsim/rv32isim/internal/rvasm"
	"github.com/archsim/rv32isim/memimage"
	"github.com/archsim/rv32isim/pipeline"
	"github.com/archsim/rv32isim/regfile"
)

// program loads words into a fresh instruction memory, one per 4-byte slot
// starting at address 0, mirroring how imem.txt lays out a big-endian
// instruction stream.
func program(words ...uint32) *memimage.Memory {
	m := memimage.New("imem", 4*(len(words)+1))
	for i, w := range words {
		m.Write32(uint32(i*4), w)
	}
	return m
}

func runToHalt(imem, dmem *memimage.Memory) (*pipeline.Pipeline, *regfile.File) {
	rf := &regfile.File{}
	p := pipeline.New(rf, imem, dmem)
	p.RunCycles(10000)
	return p, rf
}

var _ = Describe("Pipeline", func() {
	Describe("scenario 1: ADDI + ADD chain, no hazard", func() {
		It("produces RF[1]=5, RF[2]=7, RF[3]=12 in 8 cycles", func() {
			imem := program(
				rvasm.ADDI(1, 0, 5),
				rvasm.ADDI(2, 0, 7),
				rvasm.ADD(3, 1, 2),
				rvasm.HALT,
			)
			p, rf := runToHalt(imem, memimage.New("dmem", 16))

			Expect(p.Halted()).To(BeTrue())
			Expect(rf.Read(1)).To(Equal(uint32(5)))
			Expect(rf.Read(2)).To(Equal(uint32(7)))
			Expect(rf.Read(3)).To(Equal(uint32(12)))
			Expect(p.Stats().Cycles).To(Equal(uint64(8)))
		})
	})

	Describe("scenario 2: load-use hazard stall", func() {
		It("stalls exactly one cycle and produces the correct values", func() {
			dmem := memimage.New("dmem", 16)
			dmem.Write32(0, 0x00000042)

			imem := program(
				rvasm.LW(1, 0, 0),
				rvasm.ADD(2, 1, 1),
				rvasm.HALT,
			)
			p, rf := runToHalt(imem, dmem)

			Expect(rf.Read(1)).To(Equal(uint32(0x42)))
			Expect(rf.Read(2)).To(Equal(uint32(0x84)))
			Expect(p.Stats().Stalls).To(Equal(uint64(1)))
			Expect(p.Stats().Cycles).To(Equal(uint64(8)))
		})
	})

	Describe("scenario 3: EX/MEM forwarding, no stall", func() {
		It("satisfies both dependencies via forwarding", func() {
			imem := program(
				rvasm.ADDI(1, 0, 10),
				rvasm.ADDI(2, 1, 5),
				rvasm.ADDI(3, 2, 1),
				rvasm.HALT,
			)
			p, rf := runToHalt(imem, memimage.New("dmem", 16))

			Expect(rf.Read(1)).To(Equal(uint32(10)))
			Expect(rf.Read(2)).To(Equal(uint32(15)))
			Expect(rf.Read(3)).To(Equal(uint32(16)))
			Expect(p.Stats().Stalls).To(Equal(uint64(0)))
		})
	})

	Describe("scenario 4: taken BEQ flushes the fetched instruction", func() {
		It("squashes the addi immediately after the branch", func() {
			imem := program(
				rvasm.ADDI(1, 0, 1),
				rvasm.ADDI(2, 0, 1),
				rvasm.BEQ(1, 2, 8),
				rvasm.ADDI(3, 0, 99),
				rvasm.ADDI(4, 0, 7),
				rvasm.HALT,
			)
			p, rf := runToHalt(imem, memimage.New("dmem", 16))

			Expect(rf.Read(3)).To(Equal(uint32(0)))
			Expect(rf.Read(4)).To(Equal(uint32(7)))
			Expect(p.Stats().Flushes).To(Equal(uint64(1)))
		})
	})

	Describe("scenario 5: BNE not taken", func() {
		It("falls through normally", func() {
			imem := program(
				rvasm.ADDI(1, 0, 1),
				rvasm.ADDI(2, 0, 1),
				rvasm.BNE(1, 2, 8),
				rvasm.ADDI(3, 0, 7),
				rvasm.HALT,
			)
			p, rf := runToHalt(imem, memimage.New("dmem", 16))

			Expect(rf.Read(3)).To(Equal(uint32(7)))
			Expect(p.Stats().Flushes).To(Equal(uint64(0)))
		})
	})

	Describe("scenario 6: SW then LW round-trip", func() {
		It("stores and loads back the same value, big-endian", func() {
			imem := program(
				rvasm.ADDI(1, 0, 0x55),
				rvasm.SW(1, 0, 0),
				rvasm.LW(2, 0, 0),
				rvasm.HALT,
			)
			dmem := memimage.New("dmem", 16)
			_, rf := runToHalt(imem, dmem)

			Expect(rf.Read(2)).To(Equal(uint32(0x55)))
			Expect(dmem.Read8(0)).To(Equal(byte(0x00)))
			Expect(dmem.Read8(3)).To(Equal(byte(0x55)))
		})
	})

	Describe("a branch immediately depending on a preceding load", func() {
		It("stalls instead of resolving against the load's in-flight address", func() {
			dmem := memimage.New("dmem", 16)
			dmem.Write32(0, 7)

			imem := program(
				rvasm.LW(1, 0, 0),     // x1 = 7
				rvasm.BEQ(1, 0, 8),    // must stall one cycle, then compare 7 vs 0: not taken
				rvasm.ADDI(3, 0, 99),
				rvasm.HALT,
			)
			p, rf := runToHalt(imem, dmem)

			Expect(p.Stats().Stalls).To(Equal(uint64(1)))
			Expect(p.Stats().Flushes).To(Equal(uint64(0)))
			Expect(rf.Read(3)).To(Equal(uint32(99)))
		})
	})

	Describe("JAL", func() {
		It("retires its link-address writeback and redirects control flow", func() {
			imem := program(
				rvasm.JAL(1, 8), // jal x1, +8 -> skip the next instruction
				rvasm.ADDI(2, 0, 99),
				rvasm.ADDI(3, 0, 7),
				rvasm.HALT,
			)
			p, rf := runToHalt(imem, memimage.New("dmem", 16))

			Expect(rf.Read(1)).To(Equal(uint32(4))) // link = PC(0) + 4
			Expect(rf.Read(2)).To(Equal(uint32(0))) // squashed by the jump
			Expect(rf.Read(3)).To(Equal(uint32(7)))
			Expect(p.Stats().Flushes).To(Equal(uint64(1)))
		})
	})

	Describe("x0 writes", func() {
		It("never changes the value read back from x0", func() {
			imem := program(
				rvasm.ADDI(0, 0, 123),
				rvasm.HALT,
			)
			_, rf := runToHalt(imem, memimage.New("dmem", 16))

			Expect(rf.Read(0)).To(Equal(uint32(0)))
		})
	})

	Describe("halt draining", func() {
		It("leaves the pipeline fully nop'd once halted", func() {
			imem := program(
				rvasm.ADDI(1, 0, 1),
				rvasm.HALT,
			)
			p, _ := runToHalt(imem, memimage.New("dmem", 16))

			regs := p.Registers()
			Expect(regs.ID.Nop).To(BeTrue())
			Expect(regs.EX.Nop).To(BeTrue())
			Expect(regs.MEM.Nop).To(BeTrue())
			Expect(regs.WB.Nop).To(BeTrue())
		})
	})
})
