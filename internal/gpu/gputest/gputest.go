// Package gputest provides recording implementations of the GPU boundary
// for tests that must run without a display or driver.
package gputest

import (
	"fmt"
	"unsafe"

	"glbench/internal/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// Draw is one recorded triangle draw with the uniform state at the time
// it was issued.
type Draw struct {
	Program  uint32
	Texture  uint32
	First    int32
	Count    int32
	Matrices map[string]mgl32.Mat4
	Vectors  map[string]mgl32.Vec3
	Attribs  map[string]uint32
}

// Device records every call made against it.
type Device struct {
	// Failure injection.
	CompileErr   error
	BufferErr    error
	TextureErr   error
	PendingError uint32

	Ops         []string
	Draws       []Draw
	Finishes    int
	Framebuffer uint32

	Programs      map[uint32]bool
	Buffers       map[uint32]bool
	Textures      map[uint32]bool
	DoubleDeletes int

	nextID   uint32
	program  uint32
	texture  uint32
	names    map[int32]string
	locs     map[string]int32
	matrices map[string]mgl32.Mat4
	vectors  map[string]mgl32.Vec3
	attribs  map[string]uint32
	pixels   []byte
}

var _ gpu.Device = (*Device)(nil)

// NewDevice returns an empty recording device.
func NewDevice() *Device {
	return &Device{
		Programs: make(map[uint32]bool),
		Buffers:  make(map[uint32]bool),
		Textures: make(map[uint32]bool),
		names:    make(map[int32]string),
		locs:     make(map[string]int32),
		matrices: make(map[string]mgl32.Mat4),
		vectors:  make(map[string]mgl32.Vec3),
		attribs:  make(map[string]uint32),
	}
}

// Live returns the number of objects created and not yet deleted.
func (d *Device) Live() int {
	return len(d.Programs) + len(d.Buffers) + len(d.Textures)
}

// SetPixels sets what ReadPixels returns. Missing bytes read as zero.
func (d *Device) SetPixels(p []byte) {
	d.pixels = p
}

func (d *Device) id() uint32 {
	d.nextID++
	return d.nextID
}

func (d *Device) loc(name string) int32 {
	if l, ok := d.locs[name]; ok {
		return l
	}
	l := int32(len(d.locs))
	d.locs[name] = l
	d.names[l] = name
	return l
}

func (d *Device) op(format string, args ...any) {
	d.Ops = append(d.Ops, fmt.Sprintf(format, args...))
}

func (d *Device) del(set map[uint32]bool, id uint32) {
	if !set[id] {
		d.DoubleDeletes++
		return
	}
	delete(set, id)
}

func (d *Device) CreateProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	if d.CompileErr != nil {
		return 0, d.CompileErr
	}
	id := d.id()
	d.Programs[id] = true
	d.op("CreateProgram %d", id)
	return id, nil
}

func (d *Device) DeleteProgram(program uint32) {
	d.op("DeleteProgram %d", program)
	d.del(d.Programs, program)
}

func (d *Device) UseProgram(program uint32) {
	d.program = program
	d.op("UseProgram %d", program)
}

func (d *Device) AttribLocation(program uint32, name string) gpu.Attrib {
	return gpu.Attrib(d.loc(name))
}

func (d *Device) UniformLocation(program uint32, name string) gpu.Uniform {
	return gpu.Uniform(d.loc(name))
}

func (d *Device) CreateBuffer(data []float32) (uint32, error) {
	if d.BufferErr != nil {
		return 0, d.BufferErr
	}
	id := d.id()
	d.Buffers[id] = true
	d.op("CreateBuffer %d len=%d", id, len(data))
	return id, nil
}

func (d *Device) DeleteBuffer(buffer uint32) {
	d.op("DeleteBuffer %d", buffer)
	d.del(d.Buffers, buffer)
}

func (d *Device) CreateTexture(width, height int, rgba []byte) (uint32, error) {
	if d.TextureErr != nil {
		return 0, d.TextureErr
	}
	if len(rgba) != width*height*4 {
		return 0, fmt.Errorf("texture data is %d bytes, want %d", len(rgba), width*height*4)
	}
	id := d.id()
	d.Textures[id] = true
	d.op("CreateTexture %d %dx%d", id, width, height)
	return id, nil
}

func (d *Device) DeleteTexture(texture uint32) {
	d.op("DeleteTexture %d", texture)
	d.del(d.Textures, texture)
}

func (d *Device) BindFramebuffer(fbo uint32) {
	d.Framebuffer = fbo
	d.op("BindFramebuffer %d", fbo)
}

func (d *Device) Clear(r, g, b, a float32) {
	d.op("Clear")
}

func (d *Device) EnableCullFace() {
	d.op("EnableCullFace")
}

func (d *Device) EnableDepthTest() {
	d.op("EnableDepthTest")
}

func (d *Device) VertexAttrib(loc gpu.Attrib, buffer uint32, size int32) {
	d.attribs[d.names[int32(loc)]] = buffer
}

func (d *Device) BindTexture(unit uint32, texture uint32, sampler gpu.Uniform) {
	d.texture = texture
}

func (d *Device) UniformMatrix4(loc gpu.Uniform, m *float32) {
	var v mgl32.Mat4
	copy(v[:], unsafe.Slice(m, 16))
	d.matrices[d.names[int32(loc)]] = v
}

func (d *Device) Uniform3f(loc gpu.Uniform, x, y, z float32) {
	d.vectors[d.names[int32(loc)]] = mgl32.Vec3{x, y, z}
}

func (d *Device) DrawTriangles(first, count int32) {
	dr := Draw{
		Program:  d.program,
		Texture:  d.texture,
		First:    first,
		Count:    count,
		Matrices: make(map[string]mgl32.Mat4, len(d.matrices)),
		Vectors:  make(map[string]mgl32.Vec3, len(d.vectors)),
		Attribs:  make(map[string]uint32, len(d.attribs)),
	}
	for k, v := range d.matrices {
		dr.Matrices[k] = v
	}
	for k, v := range d.vectors {
		dr.Vectors[k] = v
	}
	for k, v := range d.attribs {
		dr.Attribs[k] = v
	}
	d.Draws = append(d.Draws, dr)
}

// Error returns the injected error code once, then 0.
func (d *Device) Error() uint32 {
	code := d.PendingError
	d.PendingError = 0
	return code
}

func (d *Device) Finish() {
	d.Finishes++
	d.op("Finish")
}

func (d *Device) ReadPixels(x, y, width, height int) []byte {
	buf := make([]byte, width*height*4)
	copy(buf, d.pixels)
	d.op("ReadPixels %dx%d", width, height)
	return buf
}

// ResetFrame drops recorded draws and ops, keeping resource bookkeeping.
func (d *Device) ResetFrame() {
	d.Ops = nil
	d.Draws = nil
}
