package core

import (
	"math"
)

// Sample heights displace the unit sphere by this fraction of the radius.
const DefaultDisplacementScale = 0.1

// SphericalToCartesian converts a polar/azimuth pair at radius r to Cartesian
// coordinates. Z points to the theta=0 pole.
func SphericalToCartesian(s Spherical, r float64) Vector3 {
	sinTheta := math.Sin(s.Theta)
	return Vector3{
		X: r * sinTheta * math.Cos(s.Phi),
		Y: r * sinTheta * math.Sin(s.Phi),
		Z: r * math.Cos(s.Theta),
	}
}

// CartesianToSpherical converts a Cartesian position back to its polar/azimuth
// pair and radius. Phi is returned in [0, 2π).
func CartesianToSpherical(c Vector3) (Spherical, float64) {
	r := c.Length()

	// Handle special case of origin
	if r < 1e-10 {
		return Spherical{}, 0
	}

	return Spherical{
		Theta: math.Acos(clamp(c.Z/r, -1, 1)),
		Phi:   WrapPhi(math.Atan2(c.Y, c.X)),
	}, r
}

// DisplacedPosition is where a sample with the given height sits on the
// displaced unit sphere.
func DisplacedPosition(s Spherical, height float64) Vector3 {
	return SphericalToCartesian(s, 1+height*DefaultDisplacementScale)
}

// WrapPhi brings an azimuth into [0, 2π).
func WrapPhi(phi float64) float64 {
	phi = math.Mod(phi, 2*math.Pi)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	// tiny negative inputs round up to exactly 2π
	if phi >= 2*math.Pi {
		return 0
	}
	return phi
}

// AzimuthDistance is the shortest distance between two azimuths around the circle.
func AzimuthDistance(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 2*math.Pi {
		d = math.Mod(d, 2*math.Pi)
	}
	return math.Min(d, 2*math.Pi-d)
}

// ValidSpherical reports whether theta lies in [0, π] and both angles are finite.
func ValidSpherical(s Spherical) bool {
	return isFinite(s.Theta) && isFinite(s.Phi) && s.Theta >= 0 && s.Theta <= math.Pi
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
