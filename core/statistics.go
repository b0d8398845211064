package core

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Statistics summarizes the heights and errors of a SampleSet.
type Statistics struct {
	MeanHeight     float64
	HeightVariance float64
	MeanError      float64
	MaxError       float64
	MinError       float64
}

// ComputeStatistics uses population variance. An empty set gives the zero value.
func ComputeStatistics(set *SampleSet) Statistics {
	if set.Len() == 0 {
		return Statistics{}
	}
	heights := set.Heights()
	errs := set.Errors()

	mean, variance := stat.PopMeanVariance(heights, nil)
	return Statistics{
		MeanHeight:     mean,
		HeightVariance: variance,
		MeanError:      stat.Mean(errs, nil),
		MaxError:       floats.Max(errs),
		MinError:       floats.Min(errs),
	}
}

// Bounds is the axis-aligned box around a set of positions.
type Bounds struct {
	Min, Max Vector3
}

// ComputeBounds boxes the sample cartesians. An empty set gives the unit cube.
func ComputeBounds(set *SampleSet) Bounds {
	if set.Len() == 0 {
		return Bounds{Min: Vector3{-1, -1, -1}, Max: Vector3{1, 1, 1}}
	}
	first := set.At(0).Cartesian
	b := Bounds{Min: first, Max: first}
	for i := 1; i < set.Len(); i++ {
		c := set.At(i).Cartesian
		b.Min = Vector3{min(b.Min.X, c.X), min(b.Min.Y, c.Y), min(b.Min.Z, c.Z)}
		b.Max = Vector3{max(b.Max.X, c.X), max(b.Max.Y, c.Y), max(b.Max.Z, c.Z)}
	}
	return b
}
