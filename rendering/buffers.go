package rendering

import (
	"hypersurface/core"
)

const (
	// MeshStride is position(3) + normal(3) + color(3).
	MeshStride = 9
	// PointStride is position(3) + color(3) + size(1).
	PointStride = 7
)

// PackMesh interleaves grid nodes for upload as an indexed triangle list.
func PackMesh(grid *core.SurfaceGrid) ([]float32, []uint32) {
	vertices := make([]float32, 0, len(grid.Nodes)*MeshStride)
	for _, n := range grid.Nodes {
		rgb := n.Color.Floats()
		vertices = append(vertices,
			float32(n.Position.X), float32(n.Position.Y), float32(n.Position.Z),
			float32(n.Normal.X), float32(n.Normal.Y), float32(n.Normal.Z),
			rgb[0], rgb[1], rgb[2],
		)
	}
	indices := make([]uint32, len(grid.Indices))
	copy(indices, grid.Indices)
	return vertices, indices
}

// PackPoints interleaves the point cloud. Size is in world units.
func PackPoints(cloud core.PointCloud) []float32 {
	vertices := make([]float32, 0, len(cloud.Points)*PointStride)
	for _, p := range cloud.Points {
		rgb := p.Color.Floats()
		vertices = append(vertices,
			float32(p.Position.X), float32(p.Position.Y), float32(p.Position.Z),
			rgb[0], rgb[1], rgb[2],
			float32(p.Size),
		)
	}
	return vertices
}

// placeholderColor is the neutral plateau color.
var placeholderColor = core.ColorOf(0)

// PackPlaceholder builds a flat-shaded icosahedron: each face gets its own
// three vertices carrying the face normal, so facets read clearly.
func PackPlaceholder(radius float64) ([]float32, []uint32) {
	corners, faces := core.Icosahedron(radius)
	rgb := placeholderColor.Floats()

	vertices := make([]float32, 0, len(faces)*MeshStride)
	indices := make([]uint32, 0, len(faces))
	for i := 0; i+2 < len(faces); i += 3 {
		a, b, c := corners[faces[i]], corners[faces[i+1]], corners[faces[i+2]]
		normal := b.Sub(a).Cross(c.Sub(a)).Normalize()
		for _, v := range []core.Vector3{a, b, c} {
			vertices = append(vertices,
				float32(v.X), float32(v.Y), float32(v.Z),
				float32(normal.X), float32(normal.Y), float32(normal.Z),
				rgb[0], rgb[1], rgb[2],
			)
			indices = append(indices, uint32(len(indices)))
		}
	}
	return vertices, indices
}
