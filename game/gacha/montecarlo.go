package gacha

import (
	"github.com/kasuganosora/learnquest/game/rule"
	"github.com/kasuganosora/learnquest/resource"
)

// Frequencies draws n times from a seeded stream with unlimited balance and
// no pity, returning the observed count per rarity.
func Frequencies(rates []resource.RateEntry, seed uint64, n int) map[resource.Rarity]int {
	rng := rule.NewStream(rule.RNGState{Seed: seed})
	out := make(map[resource.Rarity]int, len(rates))
	for i := 0; i < n; i++ {
		out[RollRarity(rates, rng.Float64()*100)]++
	}
	return out
}

// ChiSquare is the goodness-of-fit statistic of observed counts against the
// configured percentages.
func ChiSquare(rates []resource.RateEntry, observed map[resource.Rarity]int, n int) float64 {
	chi := 0.0
	for _, r := range rates {
		if r.Percent <= 0 {
			continue
		}
		exp := float64(n) * r.Percent / 100
		d := float64(observed[r.Rarity]) - exp
		chi += d * d / exp
	}
	return chi
}
