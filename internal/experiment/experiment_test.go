package experiment

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/lagsim/internal/config"
	"github.com/san-kum/lagsim/internal/dynamo"
)

type countingObserver struct {
	mu    sync.Mutex
	count int
}

func (c *countingObserver) OnRecord(x dynamo.State, t float64) {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
}

var _ = Describe("Experiment", func() {
	It("runs a preset end to end", func() {
		cfg := config.GetPreset("pendulum", "small")
		cfg.Grid.Points = 101
		cfg.Grid.Horizon = 2

		obs := &countingObserver{}
		e := NewExperiment(cfg, nil)
		e.AddObserver(obs)

		tr, err := e.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.Len()).To(Equal(101))
		Expect(obs.count).To(Equal(101))
		Expect(e.Pipeline().Stage()).To(Equal(TrajectoryReady))
	})

	It("rejects an invalid configuration before deriving", func() {
		cfg := config.DefaultConfig()
		cfg.Grid.Points = 0

		e := NewExperiment(cfg, nil)
		_, err := e.Run(context.Background())
		Expect(err).To(MatchError(dynamo.ErrInvalidConfiguration))
		Expect(e.Pipeline()).To(BeNil())
	})

	It("rejects initial values that do not match the geometry", func() {
		cfg := config.DefaultConfig()
		cfg.Initial = map[string]float64{"theta": 1, "theta_dot": 0}

		_, err := NewExperiment(cfg, nil).Run(context.Background())
		Expect(err).To(MatchError(dynamo.ErrInvalidConfiguration))
	})
})

var _ = Describe("Registry", func() {
	It("compiles each geometry once", func() {
		r := NewRegistry(nil)

		var wg sync.WaitGroup
		results := make([]*Compiled, 8)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer GinkgoRecover()
				defer wg.Done()
				c, err := r.Compiled("pendulum")
				Expect(err).NotTo(HaveOccurred())
				results[i] = c
			}(i)
		}
		wg.Wait()

		for _, c := range results[1:] {
			Expect(c).To(BeIdenticalTo(results[0]))
		}
	})

	It("fails for unknown names", func() {
		r := NewRegistry(nil)
		_, err := r.Compiled("nonexistent")
		Expect(err).To(HaveOccurred())

		_, err = r.SolverFactory("nonexistent", dynamo.DefaultConfig())
		Expect(err).To(HaveOccurred())
	})

	It("lists geometries and integrators", func() {
		r := NewRegistry(nil)
		Expect(r.ListGeometries()).To(ContainElement("elastic"))
		Expect(r.ListIntegrators()).To(ContainElements("rk4", "dopri"))
	})
})
