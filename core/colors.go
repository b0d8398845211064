package core

import (
	"image/color"
	"math"
)

// HSL is a color with hue, saturation and lightness, each nominally in [0, 1].
type HSL struct {
	H, S, L float64
}

// Band boundaries on the normalized height t = (height+1)/2.
const (
	valleyTop = 0.4
	peakBase  = 0.6
)

// ColorOf maps a height to the valley/plateau/peak palette. Heights outside
// [-1, 1] are not clamped; they extrapolate along the outer bands.
func ColorOf(height float64) HSL {
	t := (height + 1) / 2

	switch {
	case t < valleyTop:
		s := t / valleyTop
		return HSL{H: 0.55 + 0.1*s, S: 0.9, L: 0.3 + 0.3*s}
	case t < peakBase:
		return HSL{H: 0.55, S: 0.3, L: 0.7}
	default:
		s := (t - peakBase) / (1 - peakBase)
		return HSL{H: 0.08 - 0.08*s, S: 0.9, L: 0.5 + 0.15*s}
	}
}

// RGB returns the color as normalized red, green and blue. Hue wraps around
// the color wheel; saturation and lightness are clamped to [0, 1].
func (c HSL) RGB() (r, g, b float64) {
	h := math.Mod(c.H, 1)
	if h < 0 {
		h++
	}
	s := clamp(c.S, 0, 1)
	l := clamp(c.L, 0, 1)

	if s == 0 {
		return l, l, l
	}

	var q float64
	if l <= 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	return hueToRGB(p, q, h+1.0/3), hueToRGB(p, q, h), hueToRGB(p, q, h-1.0/3)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*6*(2.0/3-t)
	}
	return p
}

// NRGBA converts to an opaque 8-bit color.
func (c HSL) NRGBA() color.NRGBA {
	r, g, b := c.RGB()
	return color.NRGBA{R: to8(r), G: to8(g), B: to8(b), A: 255}
}

// Floats returns the 8-bit color normalized for vertex buffers.
func (c HSL) Floats() [3]float32 {
	n := c.NRGBA()
	return [3]float32{float32(n.R) / 255, float32(n.G) / 255, float32(n.B) / 255}
}

// Hex formats the color as #rrggbb.
func (c HSL) Hex() string {
	const digits = "0123456789abcdef"
	rgba := c.NRGBA()
	out := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{rgba.R, rgba.G, rgba.B} {
		out[1+2*i] = digits[v>>4]
		out[2+2*i] = digits[v&0x0f]
	}
	return string(out)
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp(v, 0, 1) * 255))
}
