package gpu

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// GL implements Device on top of an OpenGL 4.1 core context. The core
// profile requires a bound vertex array object for attribute state, so GL
// owns one for its lifetime.
type GL struct {
	vao uint32
}

var _ Device = (*GL)(nil)

// NewGL wraps the current context. gl.Init must already have run.
func NewGL() *GL {
	d := &GL{}
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	return d
}

// Close releases the vertex array object.
func (d *GL) Close() {
	if d.vao != 0 {
		gl.BindVertexArray(0)
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}

// CreateProgram compiles both shader stages and links them. The shader
// objects are deleted once linked; compile and link logs are returned in
// the error.
func (d *GL) CreateProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	// shaders can be deleted after linking
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		return 0, fmt.Errorf("failed to link program: %v", strings.TrimRight(log, "\x00"))
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		return 0, fmt.Errorf("failed to compile shader: %v", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

// DeleteProgram deletes a linked program.
func (d *GL) DeleteProgram(program uint32) {
	gl.DeleteProgram(program)
}

// UseProgram makes program current for subsequent draws.
func (d *GL) UseProgram(program uint32) {
	gl.UseProgram(program)
}

// AttribLocation returns -1 when name is not an active attribute.
func (d *GL) AttribLocation(program uint32, name string) Attrib {
	return Attrib(gl.GetAttribLocation(program, gl.Str(name+"\x00")))
}

// UniformLocation returns -1 when name is not an active uniform.
func (d *GL) UniformLocation(program uint32, name string) Uniform {
	return Uniform(gl.GetUniformLocation(program, gl.Str(name+"\x00")))
}

// CreateBuffer uploads data into a new static array buffer.
func (d *GL) CreateBuffer(data []float32) (uint32, error) {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	if vbo == 0 {
		return 0, fmt.Errorf("glGenBuffers returned 0")
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteBuffers(1, &vbo)
		return 0, &Error{Code: code}
	}
	return vbo, nil
}

// DeleteBuffer deletes an array buffer.
func (d *GL) DeleteBuffer(buffer uint32) {
	gl.DeleteBuffers(1, &buffer)
}

// CreateTexture uploads width*height RGBA8 texels with nearest filtering
// and clamped edges. rgba must hold exactly width*height*4 bytes.
func (d *GL) CreateTexture(width, height int, rgba []byte) (uint32, error) {
	if len(rgba) != width*height*4 {
		return 0, fmt.Errorf("texture data is %d bytes, want %d", len(rgba), width*height*4)
	}
	var texture uint32
	gl.GenTextures(1, &texture)
	if texture == 0 {
		return 0, fmt.Errorf("glGenTextures returned 0")
	}
	gl.BindTexture(gl.TEXTURE_2D, texture)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(width),
		int32(height),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(rgba),
	)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteTextures(1, &texture)
		return 0, &Error{Code: code}
	}
	return texture, nil
}

// DeleteTexture deletes a texture.
func (d *GL) DeleteTexture(texture uint32) {
	gl.DeleteTextures(1, &texture)
}

// BindFramebuffer targets fbo; 0 is the window.
func (d *GL) BindFramebuffer(fbo uint32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
}

// Clear clears colour and depth.
func (d *GL) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// EnableCullFace culls back faces of counter-clockwise triangles.
func (d *GL) EnableCullFace() {
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
}

func (d *GL) EnableDepthTest() {
	gl.Enable(gl.DEPTH_TEST)
}

// VertexAttrib feeds a tightly packed float buffer to loc. Inactive
// locations are skipped.
func (d *GL) VertexAttrib(loc Attrib, buffer uint32, size int32) {
	if loc < 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, buffer)
	gl.EnableVertexAttribArray(uint32(loc))
	gl.VertexAttribPointerWithOffset(uint32(loc), size, gl.FLOAT, false, size*4, 0)
}

// BindTexture binds texture to unit and points sampler at it.
func (d *GL) BindTexture(unit uint32, texture uint32, sampler Uniform) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.Uniform1i(int32(sampler), int32(unit))
}

// UniformMatrix4 uploads 16 column-major floats.
func (d *GL) UniformMatrix4(loc Uniform, m *float32) {
	gl.UniformMatrix4fv(int32(loc), 1, false, m)
}

func (d *GL) Uniform3f(loc Uniform, x, y, z float32) {
	gl.Uniform3f(int32(loc), x, y, z)
}

// DrawTriangles draws count vertices starting at first.
func (d *GL) DrawTriangles(first, count int32) {
	gl.DrawArrays(gl.TRIANGLES, first, count)
}

// Error pops the oldest pending GL error; gl.NO_ERROR when none.
func (d *GL) Error() uint32 {
	return gl.GetError()
}

// Finish blocks until every issued command has completed.
func (d *GL) Finish() {
	gl.Finish()
}

// ReadPixels reads RGBA8 pixels from the bound read framebuffer, bottom
// row first.
func (d *GL) ReadPixels(x, y, width, height int) []byte {
	buf := make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(int32(x), int32(y), int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(buf))
	return buf
}
