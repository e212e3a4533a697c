// Package fortune draws fortunes locally for users who are not signed in.
// Signed-in draws always go through the server.
package fortune

import (
	"math/rand/v2"

	"github.com/oftx/dailyfortune/pkg/domain"
)

// FavorableChance is the probability that a draw lands in the favorable pool.
const FavorableChance = 0.8

// Drawer picks fortunes from a random source.
type Drawer struct {
	rng *rand.Rand
}

// NewDrawer returns a Drawer backed by src.
func NewDrawer(src rand.Source) *Drawer {
	return &Drawer{rng: rand.New(src)}
}

// Draw picks the pool first, then a label uniformly within it.
func (d *Drawer) Draw() domain.Fortune {
	return draw(d.rng.Float64, d.rng.IntN)
}

// DrawLocal draws using the process-wide generator.
func DrawLocal() domain.Fortune {
	return draw(rand.Float64, rand.IntN)
}

func draw(float func() float64, intn func(int) int) domain.Fortune {
	pool := domain.Unfavorable
	if float() <= FavorableChance {
		pool = domain.Favorable
	}
	return pool[intn(len(pool))]
}
