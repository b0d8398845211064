package core

import "math"

// Beat is one measurement event: an error rate per qubit.
type Beat struct {
	Source      SourceRecord
	QubitErrors []float64
}

// HeightFromError maps an error rate onto [-1, 1]: 0% is the deepest valley,
// 10% and above the highest peak.
func HeightFromError(errorRate float64) float64 {
	return clamp(errorRate*20-1, -1, 1)
}

// BuildRings lays beats out as meridian slices. Beat i sits at
// phi = 2π·i/len(beats); qubit q of n sits at theta = π(q+1)/(n+1), so the
// poles are never sampled.
func BuildRings(beats []Beat) *SampleSet {
	var samples []Sample
	sources := make([]SourceRecord, 0, len(beats))

	for i, beat := range beats {
		timePosition := float64(i) / float64(max(len(beats), 1))
		phi := timePosition * 2 * math.Pi
		n := len(beat.QubitErrors)

		for q, errorRate := range beat.QubitErrors {
			at := Spherical{
				Theta: math.Pi * float64(q+1) / float64(n+1),
				Phi:   phi,
			}
			height := HeightFromError(errorRate)
			samples = append(samples, Sample{
				Spherical: at,
				Cartesian: DisplacedPosition(at, height),
				Height:    height,
				UV:        UV{U: timePosition, V: at.Theta / math.Pi},
				Quantum:   Quantum{Beat: beat.Source.Beat, Error: errorRate},
			})
		}

		sources = append(sources, beat.Source)
	}

	return NewSampleSet(samples, sources)
}
