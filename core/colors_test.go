package core

import (
	"math"
	"testing"
)

func TestColorOfBands(t *testing.T) {
	tests := []struct {
		name   string
		height float64
		want   HSL
	}{
		{"deepest valley", -1, HSL{0.55, 0.9, 0.3}},
		{"mid valley", -0.6, HSL{0.6, 0.9, 0.45}},
		{"plateau low edge", -0.2, HSL{0.55, 0.3, 0.7}},
		{"zero", 0, HSL{0.55, 0.3, 0.7}},
		{"peak base", 0.2, HSL{0.08, 0.9, 0.5}},
		{"highest peak", 1, HSL{0, 0.9, 0.65}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ColorOf(tc.height)
			if !hslNear(got, tc.want, 1e-9) {
				t.Errorf("ColorOf(%v): got %+v, want %+v", tc.height, got, tc.want)
			}
		})
	}
}

func TestColorOfValleyAndPeakHuesDisjoint(t *testing.T) {
	valleyLo, valleyHi := math.Inf(1), math.Inf(-1)
	peakLo, peakHi := math.Inf(1), math.Inf(-1)

	for h := -1.0; h < -0.2; h += 0.01 {
		c := ColorOf(h)
		valleyLo, valleyHi = math.Min(valleyLo, c.H), math.Max(valleyHi, c.H)
	}
	for h := 0.2; h <= 1.0; h += 0.01 {
		c := ColorOf(h)
		peakLo, peakHi = math.Min(peakLo, c.H), math.Max(peakHi, c.H)
	}

	if peakHi >= valleyLo {
		t.Errorf("peak hues [%f,%f] overlap valley hues [%f,%f]", peakLo, peakHi, valleyLo, valleyHi)
	}
	if ColorOf(-1).H == ColorOf(1).H {
		t.Errorf("ColorOf(-1) and ColorOf(1) share hue %f", ColorOf(1).H)
	}
}

func TestColorOfContinuousWithinBands(t *testing.T) {
	// Approaching each boundary from inside its band must land on the band's
	// own closing value without a jump.
	const step = 1e-7
	tests := []struct {
		name string
		from float64
		want HSL
	}{
		{"valley closing at t=0.4", -0.2 - step, HSL{0.65, 0.9, 0.6}},
		{"peak opening at t=0.6", 0.2 + step, HSL{0.08, 0.9, 0.5}},
		{"peak closing at t=1", 1 - step, HSL{0, 0.9, 0.65}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ColorOf(tc.from)
			if !hslNear(got, tc.want, 1e-5) {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}

	// Small height steps never move hue or lightness by more than a proportional amount
	// away from the two intentional plateau edges.
	prev := ColorOf(-1)
	for h := -1.0 + 0.001; h <= 1.0; h += 0.001 {
		cur := ColorOf(h)
		nearEdge := math.Abs(h+0.2) < 0.002 || math.Abs(h-0.2) < 0.002
		if !nearEdge && (math.Abs(cur.H-prev.H) > 0.001 || math.Abs(cur.L-prev.L) > 0.001) {
			t.Fatalf("jump at height %f: %+v -> %+v", h, prev, cur)
		}
		prev = cur
	}
}

func TestColorOfBoundaryMembership(t *testing.T) {
	if got := ColorOf(-0.2); got.S != 0.3 {
		t.Errorf("t=0.4 should belong to the plateau, got %+v", got)
	}
	if got := ColorOf(0.2); got.S != 0.9 || math.Abs(got.H-0.08) > 1e-9 {
		t.Errorf("t=0.6 should open the peak band, got %+v", got)
	}
}

func TestColorOfExtrapolates(t *testing.T) {
	for _, h := range []float64{-3, -1.5, 1.5, 4} {
		c := ColorOf(h)
		if math.IsNaN(c.H) || math.IsNaN(c.S) || math.IsNaN(c.L) {
			t.Fatalf("ColorOf(%v) produced NaN: %+v", h, c)
		}
		// Conversion still yields a defined opaque color
		if rgba := c.NRGBA(); rgba.A != 255 {
			t.Errorf("ColorOf(%v).NRGBA alpha: got %d, want 255", h, rgba.A)
		}
	}
}

func TestColorOfDeterministic(t *testing.T) {
	for h := -1.0; h <= 1.0; h += 0.05 {
		if ColorOf(h) != ColorOf(h) {
			t.Fatalf("ColorOf(%v) not deterministic", h)
		}
	}
}

func TestHSLConversion(t *testing.T) {
	tests := []struct {
		name    string
		c       HSL
		r, g, b uint8
		hex     string
	}{
		{"red", HSL{0, 1, 0.5}, 255, 0, 0, "#ff0000"},
		{"green", HSL{1.0 / 3, 1, 0.5}, 0, 255, 0, "#00ff00"},
		{"blue", HSL{2.0 / 3, 1, 0.5}, 0, 0, 255, "#0000ff"},
		{"gray", HSL{0.55, 0, 0.5}, 128, 128, 128, "#808080"},
		{"wrapped hue", HSL{-1, 1, 0.5}, 255, 0, 0, "#ff0000"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.c.NRGBA()
			if got.R != tc.r || got.G != tc.g || got.B != tc.b {
				t.Errorf("NRGBA: got (%d,%d,%d), want (%d,%d,%d)", got.R, got.G, got.B, tc.r, tc.g, tc.b)
			}
			if hex := tc.c.Hex(); hex != tc.hex {
				t.Errorf("Hex: got %s, want %s", hex, tc.hex)
			}
		})
	}
}

func hslNear(a, b HSL, epsilon float64) bool {
	return math.Abs(a.H-b.H) <= epsilon && math.Abs(a.S-b.S) <= epsilon && math.Abs(a.L-b.L) <= epsilon
}
