package renderer

import (
	"fmt"
	"math"
	"math/rand/v2"

	"glbench/internal/matrix"
	"glbench/internal/scene"
)

// MaxWorkload bounds the grid at 512x512 cells.
const MaxWorkload = 10

// GridSize returns the number of cells per side for a workload: 2^(w-1).
func GridSize(workload int) int {
	if workload < 1 {
		return 0
	}
	return 1 << (workload - 1)
}

// DrawCalls returns the number of draw calls one frame issues.
func DrawCalls(workload int) int {
	n := GridSize(workload)
	return n * n
}

// CellTransform returns the local transform of grid cell (i, j): a uniform
// scale of 1/count applied after a translation by (i-middle, j-middle, 0).
// The unit quad of every cell then tiles [-0.5, 0.5]^2 without gaps.
func CellTransform(count, i, j int) *matrix.Matrix {
	middle := float32(count) / 2
	scale := 1 / float32(count)
	m := matrix.NewScale(scale, scale, scale)
	m.Translate(float32(i)-middle, float32(j)-middle, 0)
	return m
}

// BuildScene builds the benchmark grid: one transform per cell under the
// root, each with a single drawable child referencing mesh.
func BuildScene(workload int, mesh scene.MeshID) (*scene.Node, error) {
	if workload < 1 || workload > MaxWorkload {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidWorkload, workload, MaxWorkload)
	}
	count := GridSize(workload)
	root := scene.NewTransform(nil)
	for i := 0; i < count; i++ {
		for j := 0; j < count; j++ {
			cell := scene.NewTransform(CellTransform(count, i, j))
			cell.AddChild(scene.NewDrawable(mesh))
			root.AddChild(cell)
		}
	}
	return root, nil
}

// RandomTexture returns width*height opaque RGBA pixels of noise. The same
// seed always yields the same texture.
func RandomTexture(width, height int, seed uint64) []byte {
	rng := rand.New(rand.NewPCG(seed, seed^math.MaxUint32))
	pix := make([]byte, width*height*4)
	for i := 0; i < len(pix); i += 4 {
		v := rng.Uint32()
		pix[i] = byte(v)
		pix[i+1] = byte(v >> 8)
		pix[i+2] = byte(v >> 16)
		pix[i+3] = 0xff
	}
	return pix
}
