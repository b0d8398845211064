package core

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const (
	// SnapTolerance is the angular distance (radians) under which a grid node
	// takes a sample's height verbatim.
	SnapTolerance = 0.01
	// SupportRadius is the angular distance beyond which a sample has no
	// influence on a grid node.
	SupportRadius = math.Pi * 0.6
	// weightFloor bounds the inverse-square weight near a sample.
	weightFloor = 0.05

	DefaultResolution = 48
	DefaultBaseRadius = 1.0
)

// Metric measures the angular separation between two points on the sphere.
type Metric int

const (
	// FlatAngular treats (theta, phi) as a flat plane with phi wrapping at 2π.
	FlatAngular Metric = iota
	// GreatCircle uses the true central angle.
	GreatCircle
)

func (m Metric) String() string {
	switch m {
	case GreatCircle:
		return "great-circle"
	default:
		return "flat"
	}
}

// ParseMetric accepts "flat" or "great-circle"; anything else is FlatAngular.
func ParseMetric(name string) Metric {
	if name == "great-circle" || name == "greatcircle" {
		return GreatCircle
	}
	return FlatAngular
}

// Distance returns the angular distance between a and b under m.
func (m Metric) Distance(a, b Spherical) float64 {
	if m == GreatCircle {
		return a.LatLng().Distance(b.LatLng()).Radians()
	}
	dTheta := math.Abs(a.Theta - b.Theta)
	dPhi := AzimuthDistance(a.Phi, b.Phi)
	return math.Sqrt(dTheta*dTheta + dPhi*dPhi)
}

// LatLng maps theta (from the +Z pole) to latitude.
func (s Spherical) LatLng() s2.LatLng {
	return s2.LatLng{Lat: s1.Angle(math.Pi/2 - s.Theta), Lng: s1.Angle(s.Phi)}
}

// Node is one vertex of the reconstructed grid.
type Node struct {
	Spherical Spherical
	Height    float64
	Radius    float64
	Position  Vector3
	Normal    Vector3
	Color     HSL
}

// SurfaceGrid is the dense mesh produced by a Reconstructor.
type SurfaceGrid struct {
	Resolution int
	Nodes      []Node
	Indices    []uint32
	// Version of the SampleSet this grid was built from.
	SourceVersion uint64
}

// Columns is the number of nodes per theta row.
func (g *SurfaceGrid) Columns() int {
	return g.Resolution + 1
}

// Node returns the node at theta row i, phi column j.
func (g *SurfaceGrid) Node(i, j int) Node {
	return g.Nodes[i*g.Columns()+j]
}

// TriangleCount is the number of triangles in the mesh.
func (g *SurfaceGrid) TriangleCount() int {
	return len(g.Indices) / 3
}

// HeightRange returns the smallest and largest node height.
func (g *SurfaceGrid) HeightRange() (lo, hi float64) {
	if len(g.Nodes) == 0 {
		return 0, 0
	}
	lo, hi = g.Nodes[0].Height, g.Nodes[0].Height
	for _, n := range g.Nodes[1:] {
		lo = math.Min(lo, n.Height)
		hi = math.Max(hi, n.Height)
	}
	return lo, hi
}

// Reconstructor interpolates a SampleSet onto an evenly spaced theta/phi grid.
type Reconstructor struct {
	Resolution        int
	BaseRadius        float64
	DisplacementScale float64
	Metric            Metric
}

// NewReconstructor returns a Reconstructor with the default parameters.
func NewReconstructor() Reconstructor {
	return Reconstructor{
		Resolution:        DefaultResolution,
		BaseRadius:        DefaultBaseRadius,
		DisplacementScale: DefaultDisplacementScale,
		Metric:            FlatAngular,
	}
}

// Build reconstructs the surface. The cost is O(resolution² · len(samples)).
func (r Reconstructor) Build(set *SampleSet) *SurfaceGrid {
	res := r.Resolution
	if res < 1 {
		res = 1
	}
	cols := res + 1
	samples := set.Samples()

	grid := &SurfaceGrid{
		Resolution:    res,
		Nodes:         make([]Node, cols*cols),
		Indices:       GridIndices(res),
		SourceVersion: set.Version(),
	}

	positions := make([]Vector3, len(grid.Nodes))
	for ring := 0; ring <= res; ring++ {
		theta := float64(ring) * math.Pi / float64(res)
		for seg := 0; seg <= res; seg++ {
			phi := float64(seg) * 2.0 * math.Pi / float64(res)
			at := Spherical{Theta: theta, Phi: phi}

			height := r.HeightAt(at, samples)
			radius := r.BaseRadius + height*r.DisplacementScale
			idx := ring*cols + seg

			grid.Nodes[idx] = Node{
				Spherical: at,
				Height:    height,
				Radius:    radius,
				Position:  SphericalToCartesian(at, radius),
				Color:     ColorOf(height),
			}
			positions[idx] = grid.Nodes[idx].Position
		}
	}

	for i, n := range VertexNormals(positions, grid.Indices) {
		grid.Nodes[i].Normal = n
	}

	return grid
}

// HeightAt interpolates the height at a single point. A sample closer than
// SnapTolerance wins outright; otherwise samples inside SupportRadius are
// blended with weight 1/(d²+0.05). With no sample in range the height is 0.
func (r Reconstructor) HeightAt(at Spherical, samples []Sample) float64 {
	var weightSum, heightSum float64

	for _, s := range samples {
		dist := r.Metric.Distance(s.Spherical, at)
		if dist < SnapTolerance {
			return s.Height
		}
		if dist >= SupportRadius {
			continue
		}
		w := 1 / (dist*dist + weightFloor)
		weightSum += w
		heightSum += s.Height * w
	}

	if weightSum == 0 {
		return 0
	}
	return heightSum / weightSum
}
