package crashpoint

import (
	"crash_backend/internal/config"
	"math"
	"math/rand/v2"
	"sync"
)

// DefaultTiers - house distribution: 87% [0.1, 3), 10% [3, 10), 3% [10, 1000).
// This is a plain weighted draw, not a verifiable commit-reveal scheme.
var DefaultTiers = []config.CrashTier{
	{Weight: 0.87, Min: 0.1, Max: 3.0},
	{Weight: 0.10, Min: 3.0, Max: 10.0},
	{Weight: 0.03, Min: 10.0, Max: 1000.0},
}

// Generator - draws crash points from weighted uniform tiers
type Generator struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	tiers []config.CrashTier
	total float64
}

// NewGenerator - src nil means a randomly seeded PCG source
func NewGenerator(src rand.Source, tiers []config.CrashTier) *Generator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	if len(tiers) == 0 {
		tiers = DefaultTiers
	}

	var total float64
	for _, t := range tiers {
		total += t.Weight
	}

	return &Generator{
		rnd:   rand.New(src),
		tiers: append([]config.CrashTier(nil), tiers...),
		total: total,
	}
}

// Draw - next crash point, rounded to 2 decimals
func (g *Generator) Draw() float64 {
	g.mu.Lock()
	u1, u2 := g.rnd.Float64(), g.rnd.Float64()
	g.mu.Unlock()

	return g.Pick(u1, u2)
}

// Pick maps two uniform [0,1) numbers to a crash point: u1 selects the tier,
// u2 the position inside it.
func (g *Generator) Pick(u1, u2 float64) float64 {
	tier := g.tiers[len(g.tiers)-1]
	target := u1 * g.total
	cumulative := 0.0
	for _, t := range g.tiers {
		cumulative += t.Weight
		if target < cumulative {
			tier = t
			break
		}
	}

	value := tier.Min + u2*(tier.Max-tier.Min)
	return math.Round(value*100) / 100
}

// TierOf reports which tier index a value belongs to, or -1.
func (g *Generator) TierOf(value float64) int {
	for i, t := range g.tiers {
		if value >= t.Min && value < t.Max {
			return i
		}
	}
	if last := g.tiers[len(g.tiers)-1]; value == last.Max {
		return len(g.tiers) - 1
	}
	return -1
}
