package core

import (
	"math"
)

// GridIndices returns the triangle list for a (resolution+1) x (resolution+1)
// theta/phi grid whose vertex (ring, seg) is stored at ring*(resolution+1)+seg.
// Each cell yields two triangles wound so that normals point away from the center.
func GridIndices(resolution int) []uint32 {
	indices := make([]uint32, 0, resolution*resolution*6)

	for ring := 0; ring < resolution; ring++ {
		for seg := 0; seg < resolution; seg++ {
			current := uint32(ring*(resolution+1) + seg)
			next := current + uint32(resolution) + 1

			// First triangle
			indices = append(indices, current, next, current+1)

			// Second triangle
			indices = append(indices, current+1, next, next+1)
		}
	}

	return indices
}

// VertexNormals averages face normals onto vertices, weighted by triangle area.
// Vertices that only touch degenerate triangles fall back to the radial direction.
func VertexNormals(positions []Vector3, indices []uint32) []Vector3 {
	normals := make([]Vector3, len(positions))

	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		// Unnormalized cross product, so larger faces weigh more
		face := positions[b].Sub(positions[a]).Cross(positions[c].Sub(positions[a]))
		normals[a] = normals[a].Add(face)
		normals[b] = normals[b].Add(face)
		normals[c] = normals[c].Add(face)
	}

	for i, n := range normals {
		if n.Length() < 1e-12 {
			normals[i] = positions[i].Normalize()
			continue
		}
		normals[i] = n.Normalize()
	}

	return normals
}

// Icosahedron returns the 12 vertices and 20 faces of a regular icosahedron
// inscribed in a sphere of the given radius.
func Icosahedron(radius float64) ([]Vector3, []uint32) {
	// Golden ratio
	t := (1.0 + math.Sqrt(5.0)) / 2.0

	vertices := []Vector3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}

	indices := []uint32{
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}

	for i := range vertices {
		vertices[i] = vertices[i].Normalize().Scale(radius)
	}

	return vertices, indices
}
