package rendering

import (
	"math"
	"testing"
)

func TestCameraOrbitClampsPitch(t *testing.T) {
	c := NewCamera()
	c.Orbit(0, 10000)
	if c.Pitch != maxPitch {
		t.Errorf("pitch %f, want %f", c.Pitch, maxPitch)
	}
	c.Orbit(0, -100000)
	if c.Pitch != -maxPitch {
		t.Errorf("pitch %f, want %f", c.Pitch, -maxPitch)
	}
}

func TestCameraZoomBounds(t *testing.T) {
	c := NewCamera()
	for i := 0; i < 100; i++ {
		c.Zoom(1)
	}
	if c.Distance != minDistance {
		t.Errorf("zoomed in to %f, want %f", c.Distance, minDistance)
	}
	for i := 0; i < 100; i++ {
		c.Zoom(-1)
	}
	if c.Distance != maxDistance {
		t.Errorf("zoomed out to %f, want %f", c.Distance, maxDistance)
	}
}

func TestCameraEyeKeepsDistance(t *testing.T) {
	c := NewCamera()
	c.Orbit(120, -45)
	if d := c.Eye().Len(); math.Abs(float64(d-c.Distance)) > 1e-4 {
		t.Errorf("eye at distance %f, want %f", d, c.Distance)
	}
}
