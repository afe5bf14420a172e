package srv

import "time"

// gridSize is the fixed slot count; the grid is always exactly this
// size.
const gridSize = 16

const (
	minSpawnInterval = 500 * time.Millisecond
	maxSpawnInterval = 10000 * time.Millisecond
)

// slot holds one position of the shared grid. Slot identity is its
// index; a yoinked slot becomes empty and may be refilled with a
// different letter later.
type slot struct {
	occupied bool
	letter   Letter
}

// Grid is the 16-slot shared pool belonging to a room. It is not
// internally synchronized: callers must only mutate it from the room's
// single-goroutine actor loop.
type Grid struct {
	slots [gridSize]slot
}

// NewGrid returns a grid with all slots empty.
func NewGrid() *Grid {
	return &Grid{}
}

// Snapshot returns a 16-element view with nil for empty slots and a
// pointer to the letter otherwise, matching the `pool` field of
// lobby:state.
func (g *Grid) Snapshot() [gridSize]*Letter {
	var out [gridSize]*Letter
	for i := range g.slots {
		if g.slots[i].occupied {
			l := g.slots[i].letter
			out[i] = &l
		}
	}
	return out
}

// Count returns the number of occupied slots.
func (g *Grid) Count() int {
	n := 0
	for i := range g.slots {
		if g.slots[i].occupied {
			n++
		}
	}
	return n
}

// EmptyIndices returns the indices of all empty slots.
func (g *Grid) EmptyIndices() []int {
	var out []int
	for i := range g.slots {
		if !g.slots[i].occupied {
			out = append(out, i)
		}
	}
	return out
}

// TakeAt empties the slot at index and returns its letter. ok is false
// if the slot was already empty.
func (g *Grid) TakeAt(index int) (Letter, bool) {
	if index < 0 || index >= gridSize {
		return 0, false
	}
	if !g.slots[index].occupied {
		return 0, false
	}
	l := g.slots[index].letter
	g.slots[index] = slot{}
	return l, true
}

// FillAt places l into an empty slot at index. It is a no-op safety net
// if the slot is already occupied — callers are expected to only target
// empty slots.
func (g *Grid) FillAt(index int, l Letter) {
	if index < 0 || index >= gridSize {
		return
	}
	if g.slots[index].occupied {
		return
	}
	g.slots[index] = slot{occupied: true, letter: l}
}

// ResetEmpty clears every slot, used at round start before the grid is
// refilled.
func (g *Grid) ResetEmpty() {
	g.slots = [gridSize]slot{}
}

// FillAll fills every empty slot with a freshly sampled letter, used at
// round start so the round begins full.
func (g *Grid) FillAll(bag *LetterBag) {
	for i := range g.slots {
		if !g.slots[i].occupied {
			g.slots[i] = slot{occupied: true, letter: bag.Sample()}
		}
	}
}

// spawnInterval implements the replenishment schedule:
//
//	intervalMs(n) = 500 + (10000-500) * (n/15)
//
// where n is the current non-empty count, valid for n in [0,15]. Callers
// must not call this when n == 16 — no spawn is ever scheduled in that
// state.
func spawnInterval(occupied int) time.Duration {
	if occupied < 0 {
		occupied = 0
	}
	if occupied > 15 {
		occupied = 15
	}
	span := maxSpawnInterval - minSpawnInterval
	delta := time.Duration(float64(span) * float64(occupied) / 15.0)
	return minSpawnInterval + delta
}
