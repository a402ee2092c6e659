package renderer

// Quad geometry: two counter-clockwise triangles covering [0,1]x[0,1] at
// z=0, facing +Z.
const quadVertices = 6

var quadPositions = []float32{
	1.0, 1.0, 0.0,
	0.0, 1.0, 0.0,
	0.0, 0.0, 0.0,
	0.0, 0.0, 0.0,
	1.0, 0.0, 0.0,
	1.0, 1.0, 0.0,
}

var quadNormals = []float32{
	0.0, 0.0, 1.0,
	0.0, 0.0, 1.0,
	0.0, 0.0, 1.0,
	0.0, 0.0, 1.0,
	0.0, 0.0, 1.0,
	0.0, 0.0, 1.0,
}

var quadTexCoords = []float32{
	1.0, 1.0,
	0.0, 1.0,
	0.0, 0.0,
	0.0, 0.0,
	1.0, 0.0,
	1.0, 1.0,
}

var vertexShader = `#version 410 core
uniform mat4 u_MVPMatrix;
uniform mat4 u_MVMatrix;
in vec4 a_Position;
in vec3 a_Normal;
in vec2 a_TexCoordinate;
out vec3 v_Position;
out vec3 v_Normal;
out vec2 v_TexCoordinate;
void main() {
	// eye space position for lighting
	v_Position = vec3(u_MVMatrix * a_Position);
	v_TexCoordinate = a_TexCoordinate;
	v_Normal = vec3(u_MVMatrix * vec4(a_Normal, 0.0));
	gl_Position = u_MVPMatrix * a_Position;
}
`

var fragmentShader = `#version 410 core
uniform vec3 u_LightPos;
uniform sampler2D u_Texture;
in vec3 v_Position;
in vec3 v_Normal;
in vec2 v_TexCoordinate;
out vec4 fragColor;
void main() {
	float distance = length(u_LightPos - v_Position);
	vec3 lightVector = normalize(u_LightPos - v_Position);
	float diffuse = max(dot(v_Normal, lightVector), 0.0);
	// attenuation
	diffuse = diffuse * (1.0 / (1.0 + (0.01 * distance)));
	// ambient
	diffuse = diffuse + 0.25;
	fragColor = diffuse * texture(u_Texture, v_TexCoordinate);
}
`
