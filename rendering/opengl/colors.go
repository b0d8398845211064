package opengl

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// background is the clear color behind the surface.
var background = rl.NewColor(5, 5, 15, 255)

// glColor normalizes an 8-bit color for gl calls.
func glColor(c rl.Color) [4]float32 {
	n := rl.ColorNormalize(c)
	return [4]float32{n.X, n.Y, n.Z, n.W}
}
