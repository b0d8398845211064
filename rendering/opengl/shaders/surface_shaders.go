package shaders

// Mesh shading: per-vertex height color with a key light and a soft ambient
// term so the dark side still reads.
const MeshVertex = `
#version 410 core

layout(location = 0) in vec3 position;
layout(location = 1) in vec3 normal;
layout(location = 2) in vec3 color;

uniform mat4 model;
uniform mat4 view;
uniform mat4 projection;

out vec3 vColor;
out vec3 vNormal;

void main() {
    vColor = color;
    vNormal = mat3(model) * normal;
    gl_Position = projection * view * model * vec4(position, 1.0);
}
`

const MeshFragment = `
#version 410 core

in vec3 vColor;
in vec3 vNormal;

uniform int wireframe;

out vec4 outColor;

void main() {
    if (wireframe == 1) {
        outColor = vec4(vColor, 1.0);
        return;
    }
    vec3 lightDir = normalize(vec3(0.5, 1.0, 0.8));
    float NdotL = max(dot(normalize(vNormal), lightDir), 0.0);
    outColor = vec4(vColor * (0.35 + 0.65 * NdotL), 1.0);
}
`

// Points: size is in world units and scaled by distance to the camera.
const PointVertex = `
#version 410 core

layout(location = 0) in vec3 position;
layout(location = 1) in vec3 color;
layout(location = 2) in float size;

uniform mat4 model;
uniform mat4 view;
uniform mat4 projection;
uniform float viewportHeight;

out vec3 vColor;

void main() {
    vColor = color;
    vec4 clip = projection * view * model * vec4(position, 1.0);
    gl_Position = clip;
    gl_PointSize = max(2.0, size * viewportHeight * projection[1][1] / clip.w);
}
`

const PointFragment = `
#version 410 core

in vec3 vColor;
out vec4 outColor;

void main() {
    vec2 c = gl_PointCoord * 2.0 - 1.0;
    if (dot(c, c) > 1.0) {
        discard;
    }
    outColor = vec4(vColor, 0.9);
}
`
