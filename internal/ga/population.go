package ga

import (
	"math/rand"
	"sort"

	"flappyevo/internal/env"
	"flappyevo/internal/nn"
)

// Origin records how an agent's brain entered the current generation
type Origin int

const (
	OriginSeed      Origin = iota // literal seed brain
	OriginFresh                   // uniform random brain
	OriginOffspring               // mutated child of an elite
	OriginElite                   // unmutated copy of a ranked brain
)

func (o Origin) String() string {
	switch o {
	case OriginSeed:
		return "seed"
	case OriginFresh:
		return "fresh"
	case OriginOffspring:
		return "offspring"
	case OriginElite:
		return "elite"
	default:
		return "unknown"
	}
}

// Agent represents an individual in the population
type Agent struct {
	ID       int
	Brain    nn.Brain
	Position float32
	Velocity float32
	Alive    bool
	Fitness  float32 // alive time in seconds, frozen at death
	Death    env.DeathReason

	Origin     Origin
	ParentRank int // rank of the brain this one came from in the previous generation, -1 if none
}

// newAgent returns an agent in the neutral starting state
func newAgent(id int, brain nn.Brain, origin Origin, parentRank int) *Agent {
	return &Agent{
		ID:         id,
		Brain:      brain,
		Alive:      true,
		Origin:     origin,
		ParentRank: parentRank,
	}
}

// Reset returns the agent to the neutral starting state, keeping its brain
func (a *Agent) Reset() {
	a.Position = 0
	a.Velocity = 0
	a.Fitness = 0
	a.Alive = true
	a.Death = env.DeathNone
}

// Kill marks the agent dead. Death is irreversible within a generation.
func (a *Agent) Kill(reason env.DeathReason) {
	if !a.Alive {
		return
	}
	a.Alive = false
	a.Death = reason
}

// Population is one generation of agents
type Population struct {
	Generation int
	Agents     []*Agent
}

// NewPopulation creates a cold-start population of uniform random brains
func NewPopulation(size int, rng *rand.Rand, opts nn.Options) *Population {
	p := &Population{
		Agents: make([]*Agent, size),
	}
	for i := 0; i < size; i++ {
		p.Agents[i] = newAgent(i, nn.Random(rng, opts), OriginFresh, -1)
	}
	return p
}

// NewSeededPopulation is NewPopulation with the literal seed brain in slot 0
func NewSeededPopulation(size int, rng *rand.Rand, opts nn.Options) *Population {
	p := NewPopulation(size, rng, opts)
	if size > 0 {
		p.Agents[0] = newAgent(0, nn.New(opts), OriginSeed, -1)
	}
	return p
}

// Size returns the population size
func (p *Population) Size() int {
	return len(p.Agents)
}

// Alive returns the number of living agents
func (p *Population) Alive() int {
	n := 0
	for _, a := range p.Agents {
		if a.Alive {
			n++
		}
	}
	return n
}

// IsGenerationOver reports whether every agent is dead. True for an empty population.
func (p *Population) IsGenerationOver() bool {
	for _, a := range p.Agents {
		if a.Alive {
			return false
		}
	}
	return true
}

// Ranked returns the agents sorted by fitness descending. Equal fitness keeps
// insertion order. p.Agents is not reordered.
func (p *Population) Ranked() []*Agent {
	ranked := make([]*Agent, len(p.Agents))
	copy(ranked, p.Agents)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Fitness > ranked[j].Fitness
	})
	return ranked
}

// Best returns the agent with highest fitness, first in insertion order on ties
func (p *Population) Best() *Agent {
	if len(p.Agents) == 0 {
		return nil
	}
	best := p.Agents[0]
	for _, a := range p.Agents[1:] {
		if a.Fitness > best.Fitness {
			best = a
		}
	}
	return best
}
