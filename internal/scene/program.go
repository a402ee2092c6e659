package scene

import "glbench/internal/gpu"

// Attribute and uniform names the full-pipeline shaders declare.
const (
	AttribPosition = "a_Position"
	AttribNormal   = "a_Normal"
	AttribTexCoord = "a_TexCoordinate"
	UniformMVP     = "u_MVPMatrix"
	UniformMV      = "u_MVMatrix"
	UniformLight   = "u_LightPos"
	UniformTexture = "u_Texture"
)

// Program is a linked shader program with its locations resolved once.
type Program struct {
	ID uint32

	Position gpu.Attrib
	Normal   gpu.Attrib
	TexCoord gpu.Attrib

	MVP      gpu.Uniform
	MV       gpu.Uniform
	LightPos gpu.Uniform
	Texture  gpu.Uniform
}

// NewProgram resolves the locations of an already linked program.
func NewProgram(dev gpu.Device, id uint32) *Program {
	return &Program{
		ID:       id,
		Position: dev.AttribLocation(id, AttribPosition),
		Normal:   dev.AttribLocation(id, AttribNormal),
		TexCoord: dev.AttribLocation(id, AttribTexCoord),
		MVP:      dev.UniformLocation(id, UniformMVP),
		MV:       dev.UniformLocation(id, UniformMV),
		LightPos: dev.UniformLocation(id, UniformLight),
		Texture:  dev.UniformLocation(id, UniformTexture),
	}
}
