package ga

import (
	"math/rand"

	"flappyevo/internal/nn"
)

// Reproduction holds the constants that shape the next generation
type Reproduction struct {
	Elites         int // K: top-ranked agents that reproduce
	Offspring      int // M: mutated children per elite
	OffspringDecay int // children fewer per rank step; 0 keeps M for every elite
	Fresh          int // F: uniform random brains added each generation
	CarryForward   int // C: ranks 1..C copied verbatim after the best brain
}

// offspringFor returns the number of children of the elite at rank r
func (r Reproduction) offspringFor(rank int) int {
	if r.Offspring <= 0 {
		return 0
	}
	n := r.Offspring - rank*r.OffspringDecay
	if n < 1 {
		n = 1
	}
	return n
}

// Size returns the size of the generation that follows one of prevSize agents
func (r Reproduction) Size(prevSize int) int {
	if prevSize <= 0 {
		return 0
	}
	size := 0
	elites := r.Elites
	if elites > prevSize {
		elites = prevSize
	}
	for rank := 0; rank < elites; rank++ {
		size += r.offspringFor(rank)
	}
	carry := r.CarryForward + 1
	if carry > prevSize {
		carry = prevSize
	}
	return size + carry + r.Fresh
}

// Next builds the generation that follows pop. The result is, in order:
// the mutated children of each elite by rank, the best brain unmutated, ranks
// 1..C unmutated, then F fresh random brains. Every agent starts alive at rest
// with zero fitness. An empty population returns (pop, false) unchanged.
func (r Reproduction) Next(pop *Population, rng *rand.Rand, opts nn.Options) (*Population, bool) {
	if pop == nil || len(pop.Agents) == 0 {
		return pop, false
	}

	ranked := pop.Ranked()
	next := &Population{
		Generation: pop.Generation + 1,
		Agents:     make([]*Agent, 0, r.Size(len(ranked))),
	}
	add := func(b nn.Brain, origin Origin, parentRank int) {
		next.Agents = append(next.Agents, newAgent(len(next.Agents), b, origin, parentRank))
	}

	for rank, elite := range SelectElites(ranked, r.Elites) {
		for _, child := range elite.Brain.GenerateNChild(r.offspringFor(rank), rng) {
			add(child, OriginOffspring, rank)
		}
	}

	for rank, a := range CarryBand(ranked, r.CarryForward) {
		add(a.Brain, OriginElite, rank)
	}

	for i := 0; i < r.Fresh; i++ {
		add(nn.Random(rng, opts), OriginFresh, -1)
	}

	return next, true
}
