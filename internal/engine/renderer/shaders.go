package renderer

// Lighting is per vertex and matches the software rasterizer: linear
// texels scaled by (ambient + directional*max(0, n.l)) / (ambient +
// directional), so a face turned to the light keeps its texel color.

const vertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aUV;

uniform mat4 uMVP;
uniform mat4 uNormal;
uniform float uAmbient;
uniform float uDirectional;
uniform vec3 uLightDir;

out vec2 vUV;
out float vLight;

void main() {
	gl_Position = uMVP * vec4(aPos, 1.0);
	vec3 n = normalize(mat3(uNormal) * aNormal);
	float total = uAmbient + uDirectional;
	vLight = total > 0.0 ? (uAmbient + uDirectional * max(0.0, dot(n, uLightDir))) / total : 0.0;
	vUV = aUV;
}
`

const fragmentShader = `
#version 410 core

in vec2 vUV;
in float vLight;

uniform sampler2D uTex;
uniform vec4 uBaseColor;

out vec4 FragColor;

void main() {
	// Canvas rows run top-down while V runs bottom-up.
	vec4 texel = texture(uTex, vec2(vUV.x, 1.0 - vUV.y));
	vec3 lin = pow(texel.rgb, vec3(2.2)) * uBaseColor.rgb;
	FragColor = vec4(pow(lin * vLight, vec3(1.0 / 2.2)), texel.a * uBaseColor.a);
}
`
