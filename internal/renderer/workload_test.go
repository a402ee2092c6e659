package renderer

import (
	"errors"
	"math"
	"testing"

	"glbench/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

func TestGridSize(t *testing.T) {
	for w, want := range map[int]int{0: 0, 1: 1, 2: 2, 3: 4, 5: 16} {
		if got := GridSize(w); got != want {
			t.Errorf("GridSize(%d) = %d, want %d", w, got, want)
		}
	}
}

func TestBuildSceneWorkloadTwo(t *testing.T) {
	root, err := BuildScene(2, 0)
	if err != nil {
		t.Fatal(err)
	}
	cells := root.Children()
	if len(cells) != 4 || root.Leaves() != 4 {
		t.Fatalf("cells=%d leaves=%d", len(cells), root.Leaves())
	}

	offsets := [][2]float32{{-1, -1}, {-1, 0}, {0, -1}, {0, 0}}
	for k, cell := range cells {
		want := mgl32.Scale3D(0.5, 0.5, 0.5).Mul4(mgl32.Translate3D(offsets[k][0], offsets[k][1], 0))
		if !cell.Local().Mat4().ApproxEqual(want) {
			t.Errorf("cell %d: %v, want %v", k, cell.Local().Mat4(), want)
		}
		kids := cell.Children()
		if len(kids) != 1 || kids[0].Kind() != scene.KindDrawable || kids[0].Mesh() != 0 {
			t.Errorf("cell %d: bad children", k)
		}
	}
}

func TestBuildSceneRejectsWorkload(t *testing.T) {
	if _, err := BuildScene(0, 0); !errors.Is(err, ErrInvalidWorkload) {
		t.Fatalf("BuildScene(0) = %v", err)
	}
}

// The unit quads of all cells must tile one square with no gaps and no
// overlaps: equal-sized cells, union area equal to the bounding square, and
// no two cells sharing a lower-left corner.
func TestGridTiles(t *testing.T) {
	for w := 1; w <= 5; w++ {
		count := GridSize(w)
		corners := make(map[[2]int]bool)
		minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
		maxX, maxY := -minX, -minY
		var area float32

		for i := 0; i < count; i++ {
			for j := 0; j < count; j++ {
				m := CellTransform(count, i, j)
				lo := m.Transform(mgl32.Vec3{0, 0, 0})
				hi := m.Transform(mgl32.Vec3{1, 1, 0})
				dx, dy := hi.X()-lo.X(), hi.Y()-lo.Y()
				if math.Abs(float64(dx-1/float32(count))) > 1e-6 || math.Abs(float64(dy-dx)) > 1e-6 {
					t.Fatalf("w=%d cell (%d,%d) is %vx%v", w, i, j, dx, dy)
				}
				area += dx * dy
				key := [2]int{int(math.Round(float64(lo.X() * float32(count)))), int(math.Round(float64(lo.Y() * float32(count))))}
				if corners[key] {
					t.Fatalf("w=%d: overlapping cell at %v", w, key)
				}
				corners[key] = true
				minX, minY = min(minX, lo.X()), min(minY, lo.Y())
				maxX, maxY = max(maxX, hi.X()), max(maxY, hi.Y())
			}
		}
		for _, v := range []float32{minX + 0.5, minY + 0.5, maxX - 0.5, maxY - 0.5} {
			if math.Abs(float64(v)) > 1e-6 {
				t.Fatalf("w=%d: bounds [%v,%v]x[%v,%v], want [-0.5,0.5]^2", w, minX, maxX, minY, maxY)
			}
		}
		if math.Abs(float64(area-1)) > 1e-4 {
			t.Fatalf("w=%d: covered area %v, want 1", w, area)
		}
	}
}

func TestRandomTextureDeterministic(t *testing.T) {
	a := RandomTexture(8, 4, 3)
	b := RandomTexture(8, 4, 3)
	c := RandomTexture(8, 4, 4)
	if len(a) != 8*4*4 {
		t.Fatalf("len = %d", len(a))
	}
	if string(a) != string(b) {
		t.Fatal("same seed gave different textures")
	}
	if string(a) == string(c) {
		t.Fatal("different seeds gave identical textures")
	}
	for i := 3; i < len(a); i += 4 {
		if a[i] != 0xff {
			t.Fatalf("pixel %d not opaque", i/4)
		}
	}
}

func BenchmarkBuildScene(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := BuildScene(6, 0); err != nil {
			b.Fatal(err)
		}
	}
}
