package sim

import (
	"github.com/sourcegraph/conc/pool"

	"flappyevo/internal/ga"
)

// forEachAlive applies fn to every living agent. Large populations are split
// into contiguous batches on a bounded pool; the call returns only after every
// batch is done, so callers observe a fully updated population.
func (s *Simulation) forEachAlive(fn func(a *ga.Agent)) {
	agents := s.pop.Agents
	if s.workers <= 1 || len(agents) < s.settings.ParallelMin {
		for _, a := range agents {
			if a.Alive {
				fn(a)
			}
		}
		return
	}

	batch := (len(agents) + s.workers - 1) / s.workers
	p := pool.New().WithMaxGoroutines(s.workers)
	for start := 0; start < len(agents); start += batch {
		chunk := agents[start:min(start+batch, len(agents))]
		p.Go(func() {
			for _, a := range chunk {
				if a.Alive {
					fn(a)
				}
			}
		})
	}
	p.Wait()
}
