package srv

import "testing"

func TestGridTakeAtEmptiesSlot(t *testing.T) {
	g := NewGrid()
	g.FillAt(0, 'A')
	l, ok := g.TakeAt(0)
	if !ok || l != 'A' {
		t.Fatalf("TakeAt(0) = (%c, %v), want ('A', true)", l, ok)
	}
	if _, ok := g.TakeAt(0); ok {
		t.Error("TakeAt on an already-empty slot should report false")
	}
}

func TestGridFillAllFillsOnlyEmpty(t *testing.T) {
	g := NewGrid()
	g.FillAt(3, 'Z')
	g.FillAll(NewLetterBag(fixedSource{f: 0}))
	if g.Count() != gridSize {
		t.Fatalf("FillAll should leave the grid full, got %d/%d", g.Count(), gridSize)
	}
	if snap := g.Snapshot(); *snap[3] != 'Z' {
		t.Errorf("FillAll should not overwrite an already-occupied slot, got %c", *snap[3])
	}
}

func TestSpawnIntervalFormula(t *testing.T) {
	cases := []struct {
		occupied int
		want     int64 // milliseconds
	}{
		{0, 500},
		{15, 10000},
		{16, 10000}, // clamped
	}
	for _, c := range cases {
		if got := spawnInterval(c.occupied).Milliseconds(); got != c.want {
			t.Errorf("spawnInterval(%d) = %dms, want %dms", c.occupied, got, c.want)
		}
	}
}

func TestGridResetEmptyClearsAll(t *testing.T) {
	g := NewGrid()
	g.FillAll(NewLetterBag(fixedSource{f: 0}))
	g.ResetEmpty()
	if g.Count() != 0 {
		t.Errorf("ResetEmpty should leave 0 occupied, got %d", g.Count())
	}
	if len(g.EmptyIndices()) != gridSize {
		t.Errorf("ResetEmpty should leave all %d slots empty", gridSize)
	}
}
