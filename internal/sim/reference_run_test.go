package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/crystalsim/internal/crystal"
	"github.com/san-kum/crystalsim/internal/sim"
)

var _ = Describe("Reference run", func() {
	var (
		cfg sim.Config
		x0  crystal.State
	)

	BeforeEach(func() {
		cfg = sim.Loading(1e-3, 0.001, 0.5)
		x0 = crystal.NewState(2.2e6, 2.2e6)
	})

	run := func(o crystal.Orientation) *sim.Result {
		p, err := crystal.NewParameters(crystal.DefaultMaterial(), o)
		Expect(err).NotTo(HaveOccurred())

		result, err := sim.New(p).Run(context.Background(), x0, cfg)
		Expect(err).NotTo(HaveOccurred())
		return result
	}

	It("produces floor(0.5/Δε)+2 points starting at the origin", func() {
		result := run(crystal.Orient100)

		Expect(result.Trajectory).To(HaveLen(500002))
		Expect(result.Trajectory[0]).To(Equal(sim.Point{Strain: 0, Stress: 0}))
		Expect(result.Trajectory[len(result.Trajectory)-1].Strain).To(BeNumerically(">", 0.5))
	})

	It("advances strain by exactly one increment per step", func() {
		result := run(crystal.Orient100)

		for i := 1; i < len(result.Trajectory); i++ {
			prev, cur := result.Trajectory[i-1].Strain, result.Trajectory[i].Strain
			Expect(cur).To(BeNumerically(">", prev))
			Expect(cur - prev).To(BeNumerically("~", cfg.StrainIncrement, 1e-12))
		}
	})

	It("hardens: stress and densities stay finite and positive", func() {
		result := run(crystal.Orient100)

		Expect(result.Final.IsFinite()).To(BeTrue())
		Expect(result.Final.Stress).To(BeNumerically(">", 0))
		Expect(result.Final.Shear).To(BeNumerically(">", 0))
		Expect(result.Final.TotalDensity()).To(BeNumerically(">", x0.TotalDensity()))
		Expect(result.Final.RhoE0).To(Equal(x0.RhoE0))
		Expect(result.Final.RhoS0).To(Equal(x0.RhoS0))
		Expect(result.Final.Branch).To(Equal(crystal.BranchAboveThreshold))
	})

	DescribeTable("completes for every supported orientation",
		func(o crystal.Orientation) {
			result := run(o)
			Expect(result.Trajectory).To(HaveLen(500002))
			Expect(math.IsNaN(result.Final.Stress)).To(BeFalse())
		},
		Entry("[100]", crystal.Orient100),
		Entry("[110]", crystal.Orient110),
		Entry("[111]", crystal.Orient111),
	)

	It("rejects an unsupported orientation before running", func() {
		_, err := crystal.NewParameters(crystal.DefaultMaterial(), crystal.Orientation("001"))
		Expect(err).To(MatchError(crystal.ErrConfiguration))
	})

	It("keeps the state unchanged under repeated zero increments", func() {
		p, err := crystal.NewParameters(crystal.DefaultMaterial(), crystal.Orient100)
		Expect(err).NotTo(HaveOccurred())

		x := x0
		for i := 0; i < 1000; i++ {
			x, err = crystal.Step(p, x, 0, cfg.Timestep)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(x.Stress).To(BeZero())
		Expect(x.Strain).To(BeZero())
		Expect(x.TotalDensity()).To(Equal(x0.TotalDensity()))
	})
})
