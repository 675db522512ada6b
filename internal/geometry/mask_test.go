package geometry

import "testing"

func coveredByBands(bands []Rect, x, y int) bool {
	for _, b := range bands {
		if b.Contains(x, y) {
			return true
		}
	}
	return false
}

func TestCutoutBands_NoHole(t *testing.T) {
	bounds := Rect{X: 0, Y: 0, Width: 100, Height: 80}

	bands := CutoutBands(bounds, nil)
	if len(bands) != 1 || bands[0] != bounds {
		t.Fatalf("expected single full-bounds band, got %+v", bands)
	}
}

func TestCutoutBands_HoleOutsideBounds(t *testing.T) {
	bounds := Rect{X: 0, Y: 0, Width: 100, Height: 80}
	hole := Rect{X: 500, Y: 500, Width: 20, Height: 20}

	bands := CutoutBands(bounds, &hole)
	if len(bands) != 1 || bands[0] != bounds {
		t.Fatalf("non-intersecting hole should yield full coverage, got %+v", bands)
	}
}

func TestCutoutBands_InteriorHole(t *testing.T) {
	bounds := Rect{X: 0, Y: 0, Width: 100, Height: 80}
	hole := Rect{X: 20, Y: 10, Width: 30, Height: 40}

	bands := CutoutBands(bounds, &hole)
	if len(bands) != 4 {
		t.Fatalf("interior hole should yield 4 bands, got %d: %+v", len(bands), bands)
	}

	// Bands are disjoint and total area equals bounds minus hole.
	area := 0
	for _, b := range bands {
		area += b.Width * b.Height
	}
	want := bounds.Width*bounds.Height - hole.Width*hole.Height
	if area != want {
		t.Fatalf("band area = %d, want %d", area, want)
	}
	for i := range bands {
		for j := i + 1; j < len(bands); j++ {
			if bands[i].Intersects(bands[j]) {
				t.Fatalf("bands %d and %d overlap: %+v %+v", i, j, bands[i], bands[j])
			}
		}
	}
}

func TestCutoutBands_HoleClippedAtEdge(t *testing.T) {
	bounds := Rect{X: 0, Y: 0, Width: 100, Height: 80}
	// Hole hangs off the top-left corner; only the visible part is cut.
	hole := Rect{X: -10, Y: -10, Width: 30, Height: 30}

	bands := CutoutBands(bounds, &hole)
	if coveredByBands(bands, 5, 5) {
		t.Error("point inside clipped hole should not be covered")
	}
	if !coveredByBands(bands, 50, 5) {
		t.Error("point right of hole should be covered")
	}
	if !coveredByBands(bands, 5, 50) {
		t.Error("point below hole should be covered")
	}
}

// Band decomposition and bitmap rasterization are two implementations of
// the same cutout; they must select a bit-identical effective region.
func TestBandsAndBitmapSelectIdenticalRegion(t *testing.T) {
	bounds := Rect{X: 0, Y: 0, Width: 64, Height: 48}

	holes := []*Rect{
		nil,
		{X: 10, Y: 10, Width: 20, Height: 15},           // interior
		{X: -5, Y: -5, Width: 20, Height: 20},           // clipped corner
		{X: 0, Y: 0, Width: 64, Height: 48},             // full cover
		{X: 60, Y: 40, Width: 100, Height: 100},         // clipped bottom-right
		{X: 200, Y: 200, Width: 10, Height: 10},         // disjoint
		{X: 0, Y: 20, Width: 64, Height: 5},             // full-width stripe
		{X: 30, Y: 0, Width: 4, Height: 48},             // full-height stripe
	}

	for _, hole := range holes {
		bands := CutoutBands(bounds, hole)
		bm := RenderMask(bounds, hole)

		for y := 0; y < bounds.Height; y++ {
			for x := 0; x < bounds.Width; x++ {
				band := coveredByBands(bands, bounds.X+x, bounds.Y+y)
				bit := bm.Set(x, y)
				if band != bit {
					t.Fatalf("hole %+v: mismatch at (%d,%d): bands=%v bitmap=%v",
						hole, x, y, band, bit)
				}
			}
		}
	}
}

func TestBitmapSpans(t *testing.T) {
	bounds := Rect{X: 0, Y: 0, Width: 16, Height: 8}
	hole := Rect{X: 4, Y: 2, Width: 6, Height: 3}

	bm := RenderMask(bounds, &hole)
	spans := bm.Spans()

	// Spans cover exactly the set pixels.
	covered := make(map[[2]int]bool)
	for _, s := range spans {
		if s.Height != 1 {
			t.Fatalf("span height must be 1, got %+v", s)
		}
		for x := s.X; x < s.X+s.Width; x++ {
			covered[[2]int{x, s.Y}] = true
		}
	}
	for y := 0; y < bm.Height; y++ {
		for x := 0; x < bm.Width; x++ {
			if bm.Set(x, y) != covered[[2]int{x, y}] {
				t.Fatalf("span coverage mismatch at (%d,%d)", x, y)
			}
		}
	}
}
