// Package gpu is the boundary between the benchmark and the graphics API.
//
// Device exposes the small set of GL operations the full pipeline needs.
// GL is the go-gl implementation; gputest.Device records calls for tests.
// All methods must be called from the thread that owns the context.
package gpu

import "fmt"

// Attrib is a vertex attribute location.
type Attrib int32

// Uniform is a uniform location.
type Uniform int32

// Device is a current GL context.
type Device interface {
	// CreateProgram compiles and links a vertex/fragment pair.
	CreateProgram(vertexSrc, fragmentSrc string) (uint32, error)
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	AttribLocation(program uint32, name string) Attrib
	UniformLocation(program uint32, name string) Uniform

	// CreateBuffer uploads static float vertex data.
	CreateBuffer(data []float32) (uint32, error)
	DeleteBuffer(buffer uint32)

	// CreateTexture uploads an RGBA8 texture of width*height*4 bytes.
	CreateTexture(width, height int, rgba []byte) (uint32, error)
	DeleteTexture(texture uint32)

	BindFramebuffer(fbo uint32)
	Clear(r, g, b, a float32)
	EnableCullFace()
	EnableDepthTest()

	// VertexAttrib binds buffer as the float source of loc with size
	// components per vertex.
	VertexAttrib(loc Attrib, buffer uint32, size int32)
	BindTexture(unit uint32, texture uint32, sampler Uniform)
	UniformMatrix4(loc Uniform, m *float32)
	Uniform3f(loc Uniform, x, y, z float32)
	DrawTriangles(first, count int32)

	// Error returns and clears the pending error code, 0 if none.
	Error() uint32
	// Finish blocks until all submitted work has completed.
	Finish()
	// ReadPixels reads an RGBA8 block from the bound framebuffer.
	ReadPixels(x, y, width, height int) []byte
}

// Error is a GL error code reported after a frame.
type Error struct {
	Code uint32
}

func (e *Error) Error() string {
	return fmt.Sprintf("gl error 0x%x", e.Code)
}
