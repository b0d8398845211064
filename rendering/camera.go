package rendering

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	orbitSensitivity = 0.008
	maxPitch         = 1.5
	minDistance      = 1.5
	maxDistance      = 20.0
)

// Camera orbits the origin at Distance, looking at the centre of the sphere.
type Camera struct {
	Yaw      float32
	Pitch    float32
	Distance float32
}

func NewCamera() Camera {
	return Camera{Distance: 3.2}
}

// Orbit applies a mouse drag of (dx, dy) pixels.
func (c *Camera) Orbit(dx, dy float64) {
	c.Yaw += float32(dx) * orbitSensitivity
	c.Pitch += float32(dy) * orbitSensitivity
	c.Pitch = mgl32.Clamp(c.Pitch, -maxPitch, maxPitch)
}

// Zoom applies a scroll offset. Positive offsets move closer.
func (c *Camera) Zoom(yoff float64) {
	c.Distance *= float32(1.0 - yoff*0.1)
	c.Distance = mgl32.Clamp(c.Distance, minDistance, maxDistance)
}

func (c Camera) Eye() mgl32.Vec3 {
	cp := float32(math.Cos(float64(c.Pitch)))
	return mgl32.Vec3{
		c.Distance * cp * float32(math.Sin(float64(c.Yaw))),
		c.Distance * float32(math.Sin(float64(c.Pitch))),
		c.Distance * cp * float32(math.Cos(float64(c.Yaw))),
	}
}

func (c Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
}

func (c Camera) Projection(width, height int) mgl32.Mat4 {
	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	return mgl32.Perspective(mgl32.DegToRad(45.0), aspect, 0.1, 100.0)
}
