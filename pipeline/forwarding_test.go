package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archsim/rv32isim/pipeline"
)

var _ = Describe("ForwardEX", func() {
	It("forwards nothing when there's no producer in flight", func() {
		idex := pipeline.EXState{Rs: 1, Rt: 2}
		fa, fb := pipeline.ForwardEX(idex, pipeline.MEMState{}, pipeline.WBState{})

		Expect(fa).To(Equal(pipeline.ForwardNone))
		Expect(fb).To(Equal(pipeline.ForwardNone))
	})

	It("prefers EX/MEM over MEM/WB for the same destination", func() {
		idex := pipeline.EXState{Rs: 1}
		exmem := pipeline.MEMState{WrtEnable: true, WrtRegAddr: 1}
		memwb := pipeline.WBState{WrtEnable: true, WrtRegAddr: 1}

		fa, _ := pipeline.ForwardEX(idex, exmem, memwb)
		Expect(fa).To(Equal(pipeline.ForwardEXMEM))
	})

	It("falls back to MEM/WB when EX/MEM doesn't match", func() {
		idex := pipeline.EXState{Rt: 2}
		exmem := pipeline.MEMState{WrtEnable: true, WrtRegAddr: 9}
		memwb := pipeline.WBState{WrtEnable: true, WrtRegAddr: 2}

		_, fb := pipeline.ForwardEX(idex, exmem, memwb)
		Expect(fb).To(Equal(pipeline.ForwardMEMWB))
	})

	It("never forwards a write to x0", func() {
		idex := pipeline.EXState{Rs: 0}
		exmem := pipeline.MEMState{WrtEnable: true, WrtRegAddr: 0}

		fa, _ := pipeline.ForwardEX(idex, exmem, pipeline.WBState{})
		Expect(fa).To(Equal(pipeline.ForwardNone))
	})

	It("does not forward from a producer that doesn't write the register file", func() {
		idex := pipeline.EXState{Rs: 1}
		exmem := pipeline.MEMState{WrtEnable: false, WrtRegAddr: 1}

		fa, _ := pipeline.ForwardEX(idex, exmem, pipeline.WBState{})
		Expect(fa).To(Equal(pipeline.ForwardNone))
	})
})

var _ = Describe("ForwardBranch", func() {
	It("uses the same priority rules as ForwardEX against rs1/rs2 directly", func() {
		exmem := pipeline.MEMState{WrtEnable: true, WrtRegAddr: 3}
		memwb := pipeline.WBState{WrtEnable: true, WrtRegAddr: 4}

		fa, fb := pipeline.ForwardBranch(3, 4, exmem, memwb)
		Expect(fa).To(Equal(pipeline.ForwardEXMEM))
		Expect(fb).To(Equal(pipeline.ForwardMEMWB))
	})
})

var _ = Describe("Select", func() {
	It("returns the EX/MEM ALU result when forwarded from EX/MEM", func() {
		exmem := pipeline.MEMState{ALUResult: 42}
		got := pipeline.Select(pipeline.ForwardEXMEM, 0, exmem, pipeline.WBState{})
		Expect(got).To(Equal(uint32(42)))
	})

	It("returns the MEM/WB writeback value when forwarded from MEM/WB", func() {
		memwb := pipeline.WBState{WrtData: 7}
		got := pipeline.Select(pipeline.ForwardMEMWB, 0, pipeline.MEMState{}, memwb)
		Expect(got).To(Equal(uint32(7)))
	})

	It("returns the original value when nothing is forwarded", func() {
		got := pipeline.Select(pipeline.ForwardNone, 99, pipeline.MEMState{}, pipeline.WBState{})
		Expect(got).To(Equal(uint32(99)))
	})
})
