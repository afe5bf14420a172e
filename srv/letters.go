package srv

import (
	"math/rand/v2"
)

// Letter is a single uppercase A-Z tile.
type Letter byte

// tier10/20/30 list the point tiers.
var (
	tier10 = "ADEGILNORSTU"
	tier20 = "BCFHKMPVWY"
	tier30 = "JQXZ"
)

// letterPointsTable maps each letter to its point value.
var letterPointsTable = buildPointsTable()

func buildPointsTable() map[Letter]int {
	m := make(map[Letter]int, 26)
	for _, c := range tier10 {
		m[Letter(c)] = 10
	}
	for _, c := range tier20 {
		m[Letter(c)] = 20
	}
	for _, c := range tier30 {
		m[Letter(c)] = 30
	}
	return m
}

// letterWeights are the spawn weights.
var letterWeights = map[Letter]int{
	'A': 9, 'B': 2, 'C': 2, 'D': 4, 'E': 12, 'F': 2, 'G': 3, 'H': 2,
	'I': 9, 'J': 1, 'K': 1, 'L': 4, 'M': 2, 'N': 6, 'O': 8, 'P': 2,
	'Q': 1, 'R': 6, 'S': 4, 'T': 6, 'U': 4, 'V': 2, 'W': 2, 'X': 1,
	'Y': 2, 'Z': 1,
}

// letterPoints returns the point tier for a letter; 0 for anything
// outside A-Z.
func letterPoints(l Letter) int {
	return letterPointsTable[l]
}

// Source is the PRNG surface the engine depends on, abstracted so tests
// can inject a deterministic sequence.
type Source interface {
	// Float64 returns a pseudo-random number in [0.0, 1.0).
	Float64() float64
	// IntN returns a pseudo-random number in [0, n).
	IntN(n int) int
}

// randSource adapts math/rand/v2 to Source.
type randSource struct {
	r *rand.Rand
}

// NewRandSource returns a seeded, reproducible Source.
func NewRandSource(seed1, seed2 uint64) Source {
	return &randSource{r: rand.New(rand.NewPCG(seed1, seed2))}
}

// NewSystemSource returns a Source seeded from the runtime's default
// generator, suitable for production use where reproducibility across
// runs is not required.
func NewSystemSource() Source {
	return &randSource{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

func (s *randSource) Float64() float64 { return s.r.Float64() }
func (s *randSource) IntN(n int) int   { return s.r.IntN(n) }

// LetterBag provides weighted-random letter generation. Sampling is
// independent draws against a fixed weight table; there is no finite
// bag and nothing is ever exhausted.
type LetterBag struct {
	rng       Source
	order     []Letter
	cumWeight []int
	total     int
}

// NewLetterBag builds a bag backed by rng.
func NewLetterBag(rng Source) *LetterBag {
	b := &LetterBag{rng: rng}
	for l := Letter('A'); l <= 'Z'; l++ {
		w := letterWeights[l]
		if w <= 0 {
			continue
		}
		b.order = append(b.order, l)
		b.total += w
		b.cumWeight = append(b.cumWeight, b.total)
	}
	return b
}

// PickIndex draws a uniform index in [0, n) from the bag's own Source,
// so callers that need an unweighted pick (choosing which empty grid
// slot to fill) don't need their own PRNG handle.
func (b *LetterBag) PickIndex(n int) int { return b.rng.IntN(n) }

// Sample draws one letter according to the spawn weight table.
func (b *LetterBag) Sample() Letter {
	target := int(b.rng.Float64()*float64(b.total)) + 1
	if target > b.total {
		target = b.total
	}
	// Linear scan: 26 entries, not worth a binary search.
	for i, cum := range b.cumWeight {
		if target <= cum {
			return b.order[i]
		}
	}
	return b.order[len(b.order)-1]
}
