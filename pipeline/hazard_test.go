package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archsim/rv32isim/pipeline"
)

var _ = Describe("HazardUnit", func() {
	var hazard *pipeline.HazardUnit

	BeforeEach(func() {
		hazard = pipeline.NewHazardUnit()
	})

	Context("when the in-flight ID/EX instruction is not a load", func() {
		It("never stalls, regardless of register overlap", func() {
			idex := pipeline.EXState{RdMem: false, WrtRegAddr: 1}
			decision := hazard.Detect(idex, 1, 2)

			Expect(decision.Stall).To(BeFalse())
			Expect(decision.PCWrite).To(BeTrue())
			Expect(decision.IFIDWrite).To(BeTrue())
		})
	})

	Context("when a load's destination matches rs1", func() {
		It("stalls and deasserts PCWrite/IFIDWrite", func() {
			idex := pipeline.EXState{RdMem: true, WrtRegAddr: 1}
			decision := hazard.Detect(idex, 1, 5)

			Expect(decision.Stall).To(BeTrue())
			Expect(decision.PCWrite).To(BeFalse())
			Expect(decision.IFIDWrite).To(BeFalse())
		})
	})

	Context("when a load's destination matches rs2", func() {
		It("stalls", func() {
			idex := pipeline.EXState{RdMem: true, WrtRegAddr: 2}
			decision := hazard.Detect(idex, 5, 2)

			Expect(decision.Stall).To(BeTrue())
		})
	})

	Context("when the load's destination is x0", func() {
		It("does not stall, since x0 can never be a real dependency", func() {
			idex := pipeline.EXState{RdMem: true, WrtRegAddr: 0}
			decision := hazard.Detect(idex, 0, 0)

			Expect(decision.Stall).To(BeFalse())
		})
	})

	Context("when the load's destination matches neither source register", func() {
		It("does not stall", func() {
			idex := pipeline.EXState{RdMem: true, WrtRegAddr: 3}
			decision := hazard.Detect(idex, 1, 2)

			Expect(decision.Stall).To(BeFalse())
		})
	})
})
