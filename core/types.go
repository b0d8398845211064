package core

import (
	"math"
	"sync/atomic"
)

// Vector3 represents a 3D vector
type Vector3 struct {
	X, Y, Z float64
}

func (v Vector3) Add(other Vector3) Vector3 {
	return Vector3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

func (v Vector3) Sub(other Vector3) Vector3 {
	return Vector3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vector3) Cross(other Vector3) Vector3 {
	return Vector3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

func (v Vector3) Dot(other Vector3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

func (v Vector3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vector3) Normalize() Vector3 {
	length := v.Length()
	if length == 0 {
		return Vector3{0, 0, 0}
	}
	return Vector3{v.X / length, v.Y / length, v.Z / length}
}

// Spherical is a position on the unit sphere.
// Theta is the polar angle in [0, π] (0 = north pole), Phi the azimuth in [0, 2π).
type Spherical struct {
	Theta float64
	Phi   float64
}

// UV holds texture coordinates carried through from the acquisition side.
type UV struct {
	U, V float64
}

// Quantum is the measurement provenance attached to a sample.
type Quantum struct {
	Beat  int
	Error float64
}

// Sample is one measured point.
type Sample struct {
	Spherical Spherical
	Cartesian Vector3
	Height    float64
	UV        UV
	Quantum   Quantum
}

// SourceRecord describes the measurement event a beat came from.
type SourceRecord struct {
	Beat      int
	Backend   string
	Type      string
	Timestamp string
}

var sampleSetVersion atomic.Uint64

// SampleSet is an immutable collection of samples. Every constructed set
// gets a fresh Version, which consumers use as a memoization key.
type SampleSet struct {
	version uint64
	samples []Sample
	sources []SourceRecord
}

// NewSampleSet copies samples and sources into a new set.
func NewSampleSet(samples []Sample, sources []SourceRecord) *SampleSet {
	s := &SampleSet{
		version: sampleSetVersion.Add(1),
		samples: make([]Sample, len(samples)),
		sources: make([]SourceRecord, len(sources)),
	}
	copy(s.samples, samples)
	copy(s.sources, sources)
	return s
}

// Version identifies this set. A nil set has version 0.
func (s *SampleSet) Version() uint64 {
	if s == nil {
		return 0
	}
	return s.version
}

func (s *SampleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.samples)
}

func (s *SampleSet) At(i int) Sample {
	return s.samples[i]
}

// Samples returns a copy of the samples.
func (s *SampleSet) Samples() []Sample {
	if s == nil {
		return nil
	}
	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Sources returns a copy of the source records.
func (s *SampleSet) Sources() []SourceRecord {
	if s == nil {
		return nil
	}
	out := make([]SourceRecord, len(s.sources))
	copy(out, s.sources)
	return out
}

// Heights returns the sample heights in set order.
func (s *SampleSet) Heights() []float64 {
	heights := make([]float64, s.Len())
	for i := range heights {
		heights[i] = s.samples[i].Height
	}
	return heights
}

// Errors returns the sample error magnitudes in set order.
func (s *SampleSet) Errors() []float64 {
	errs := make([]float64, s.Len())
	for i := range errs {
		errs[i] = s.samples[i].Quantum.Error
	}
	return errs
}

// Beats returns the number of distinct beat indices in the set.
func (s *SampleSet) Beats() int {
	seen := make(map[int]struct{})
	for i := 0; i < s.Len(); i++ {
		seen[s.samples[i].Quantum.Beat] = struct{}{}
	}
	return len(seen)
}
