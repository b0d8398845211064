package provider

import (
	"math"

	"hypersurface/core"
)

// Document is the JSON body served by the acquisition provider.
type Document struct {
	Type        string         `json:"type"`
	VertexCount int            `json:"vertex_count"`
	TotalBeats  int            `json:"total_beats"`
	Heights     []float64      `json:"heights"`
	Vertices    []VertexData   `json:"vertices"`
	Statistics  StatisticsData `json:"statistics"`
	Bounds      *BoundsData    `json:"bounds,omitempty"`
	SourceData  []SourceData   `json:"source_data,omitempty"`
}

// VertexData is one sample on the wire. Angles and height are pointers so a
// missing field can be told apart from zero.
type VertexData struct {
	Spherical struct {
		Theta *float64 `json:"theta"`
		Phi   *float64 `json:"phi"`
	} `json:"spherical"`
	Cartesian *CartesianData `json:"cartesian,omitempty"`
	Height    *float64       `json:"height"`
	UV        *UVData        `json:"uv,omitempty"`
	Quantum   QuantumData    `json:"quantum"`
}

type CartesianData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type UVData struct {
	U float64 `json:"u"`
	V float64 `json:"v"`
}

type QuantumData struct {
	Beat  int     `json:"beat"`
	Error float64 `json:"error"`
}

type StatisticsData struct {
	MeanHeight     float64 `json:"mean_height"`
	HeightVariance float64 `json:"height_variance"`
	MeanError      float64 `json:"mean_error"`
	MaxError       float64 `json:"max_error"`
	MinError       float64 `json:"min_error"`
}

type BoundsData struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
	ZMin float64 `json:"z_min"`
	ZMax float64 `json:"z_max"`
}

type SourceData struct {
	Beat      int    `json:"beat"`
	Backend   string `json:"backend"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// SampleSet converts the document into a SampleSet. Vertices with a missing
// angle or height, an out-of-range theta, or a non-finite angle, height or error are
// skipped; skipped reports how many.
func (d Document) SampleSet() (set *core.SampleSet, skipped int) {
	samples := make([]core.Sample, 0, len(d.Vertices))

	for _, v := range d.Vertices {
		s, ok := v.sample()
		if !ok {
			skipped++
			continue
		}
		samples = append(samples, s)
	}

	sources := make([]core.SourceRecord, len(d.SourceData))
	for i, src := range d.SourceData {
		sources[i] = core.SourceRecord{
			Beat:      src.Beat,
			Backend:   src.Backend,
			Type:      src.Type,
			Timestamp: src.Timestamp,
		}
	}

	return core.NewSampleSet(samples, sources), skipped
}

func (v VertexData) sample() (core.Sample, bool) {
	if v.Spherical.Theta == nil || v.Spherical.Phi == nil || v.Height == nil {
		return core.Sample{}, false
	}
	at := core.Spherical{Theta: *v.Spherical.Theta, Phi: *v.Spherical.Phi}
	height := *v.Height
	if !core.ValidSpherical(at) || !finite(height) || !finite(v.Quantum.Error) {
		return core.Sample{}, false
	}
	at.Phi = core.WrapPhi(at.Phi)

	s := core.Sample{
		Spherical: at,
		Height:    height,
		Quantum:   core.Quantum{Beat: v.Quantum.Beat, Error: v.Quantum.Error},
	}

	if c := v.Cartesian; c != nil && finite(c.X) && finite(c.Y) && finite(c.Z) {
		s.Cartesian = core.Vector3{X: c.X, Y: c.Y, Z: c.Z}
	} else {
		s.Cartesian = core.DisplacedPosition(at, height)
	}

	if v.UV != nil {
		s.UV = core.UV{U: v.UV.U, V: v.UV.V}
	} else {
		s.UV = core.UV{U: at.Phi / (2 * math.Pi), V: at.Theta / math.Pi}
	}

	return s, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Encode produces the provider document for a SampleSet.
func Encode(set *core.SampleSet) Document {
	stats := core.ComputeStatistics(set)
	bounds := core.ComputeBounds(set)

	doc := Document{
		Type:        "hypersphere_surface",
		VertexCount: set.Len(),
		TotalBeats:  set.Beats(),
		Heights:     set.Heights(),
		Vertices:    make([]VertexData, set.Len()),
		Statistics: StatisticsData{
			MeanHeight:     stats.MeanHeight,
			HeightVariance: stats.HeightVariance,
			MeanError:      stats.MeanError,
			MaxError:       stats.MaxError,
			MinError:       stats.MinError,
		},
		Bounds: &BoundsData{
			XMin: bounds.Min.X, XMax: bounds.Max.X,
			YMin: bounds.Min.Y, YMax: bounds.Max.Y,
			ZMin: bounds.Min.Z, ZMax: bounds.Max.Z,
		},
	}

	for i, s := range set.Samples() {
		theta, phi, height := s.Spherical.Theta, s.Spherical.Phi, s.Height
		v := VertexData{
			Cartesian: &CartesianData{X: s.Cartesian.X, Y: s.Cartesian.Y, Z: s.Cartesian.Z},
			Height:    &height,
			UV:        &UVData{U: s.UV.U, V: s.UV.V},
			Quantum:   QuantumData{Beat: s.Quantum.Beat, Error: s.Quantum.Error},
		}
		v.Spherical.Theta = &theta
		v.Spherical.Phi = &phi
		doc.Vertices[i] = v
	}

	for _, src := range set.Sources() {
		doc.SourceData = append(doc.SourceData, SourceData{
			Beat:      src.Beat,
			Backend:   src.Backend,
			Type:      src.Type,
			Timestamp: src.Timestamp,
		})
	}

	return doc
}
