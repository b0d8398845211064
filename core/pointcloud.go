package core

import "math"

const (
	DefaultPointLift     = 1.02
	DefaultPointBaseSize = 0.03
	DefaultPointSizeGain = 0.04
)

// Point is a renderable marker for one raw sample.
type Point struct {
	Position Vector3
	Color    HSL
	Size     float64
	Height   float64
	Error    float64
	Beat     int
}

// PointCloud holds one Point per sample, in sample order.
type PointCloud struct {
	Points        []Point
	SourceVersion uint64
}

// PointCloudBuilder projects samples to markers without interpolation.
// Lift pushes markers slightly outward so the mesh does not swallow them.
type PointCloudBuilder struct {
	Lift     float64
	BaseSize float64
	SizeGain float64
}

func NewPointCloudBuilder() PointCloudBuilder {
	return PointCloudBuilder{
		Lift:     DefaultPointLift,
		BaseSize: DefaultPointBaseSize,
		SizeGain: DefaultPointSizeGain,
	}
}

func (b PointCloudBuilder) Build(set *SampleSet) PointCloud {
	cloud := PointCloud{
		Points:        make([]Point, set.Len()),
		SourceVersion: set.Version(),
	}
	for i := range cloud.Points {
		s := set.At(i)
		cloud.Points[i] = Point{
			Position: s.Cartesian.Scale(b.Lift),
			Color:    ColorOf(s.Height),
			Size:     b.BaseSize + b.SizeGain*math.Abs(s.Height),
			Height:   s.Height,
			Error:    s.Quantum.Error,
			Beat:     s.Quantum.Beat,
		}
	}
	return cloud
}
