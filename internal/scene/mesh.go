package scene

import (
	"fmt"

	"glbench/internal/gpu"
)

// Mesh is immutable vertex data resident on the GPU plus the texture it is
// drawn with. The texture is borrowed; Release does not delete it.
type Mesh struct {
	positions   uint32
	normals     uint32
	texCoords   uint32
	vertexCount int32
	texture     uint32
}

// NewMesh uploads positions (xyz), normals (xyz) and texture coordinates
// (uv). The three slices must describe the same number of vertices.
func NewMesh(dev gpu.Device, positions, normals, texCoords []float32, texture uint32) (*Mesh, error) {
	n := len(positions) / 3
	if n == 0 || len(positions) != n*3 || len(normals) != n*3 || len(texCoords) != n*2 {
		return nil, fmt.Errorf("mesh: mismatched attribute lengths %d/%d/%d",
			len(positions), len(normals), len(texCoords))
	}

	m := &Mesh{vertexCount: int32(n), texture: texture}
	var err error
	if m.positions, err = dev.CreateBuffer(positions); err != nil {
		return nil, fmt.Errorf("mesh positions: %w", err)
	}
	if m.normals, err = dev.CreateBuffer(normals); err != nil {
		m.Release(dev)
		return nil, fmt.Errorf("mesh normals: %w", err)
	}
	if m.texCoords, err = dev.CreateBuffer(texCoords); err != nil {
		m.Release(dev)
		return nil, fmt.Errorf("mesh texcoords: %w", err)
	}
	return m, nil
}

// VertexCount returns the number of vertices drawn per instance.
func (m *Mesh) VertexCount() int32 {
	return m.vertexCount
}

// Texture returns the borrowed texture handle.
func (m *Mesh) Texture() uint32 {
	return m.texture
}

// Release deletes the vertex buffers. Safe to call more than once.
func (m *Mesh) Release(dev gpu.Device) {
	for _, b := range []*uint32{&m.positions, &m.normals, &m.texCoords} {
		if *b != 0 {
			dev.DeleteBuffer(*b)
			*b = 0
		}
	}
}

func (m *Mesh) bind(dev gpu.Device, p *Program) {
	dev.VertexAttrib(p.Position, m.positions, 3)
	dev.VertexAttrib(p.Normal, m.normals, 3)
	dev.VertexAttrib(p.TexCoord, m.texCoords, 2)
	dev.BindTexture(0, m.texture, p.Texture)
}

// MeshID addresses a mesh in an Arena.
type MeshID int

// Arena owns meshes shared by drawable nodes. Nodes hold indices, so
// releasing the arena is the single point where mesh memory goes away.
type Arena struct {
	meshes []*Mesh
}

// Add takes ownership of m.
func (a *Arena) Add(m *Mesh) MeshID {
	a.meshes = append(a.meshes, m)
	return MeshID(len(a.meshes) - 1)
}

// Mesh returns the mesh for id, or nil after Release or for an unknown id.
func (a *Arena) Mesh(id MeshID) *Mesh {
	if id < 0 || int(id) >= len(a.meshes) {
		return nil
	}
	return a.meshes[id]
}

// Len returns the number of meshes held.
func (a *Arena) Len() int {
	return len(a.meshes)
}

// Release frees every mesh in reverse insertion order and empties the arena.
func (a *Arena) Release(dev gpu.Device) {
	for i := len(a.meshes) - 1; i >= 0; i-- {
		a.meshes[i].Release(dev)
	}
	a.meshes = nil
}
