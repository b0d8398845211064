package report

import (
	"bytes"
	"encoding/xml"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"hypersurface/core"
	"hypersurface/provider"
)

func fixture(t *testing.T) *core.SampleSet {
	t.Helper()
	set, _, err := provider.Fallback()
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func TestTrend(t *testing.T) {
	tests := []struct {
		height float64
		want   string
	}{
		{-0.9, "▼"},
		{-0.5, "─"},
		{0, "─"},
		{0.5, "─"},
		{0.51, "▲"},
	}
	for _, tc := range tests {
		if got := Trend(tc.height); got != tc.want {
			t.Errorf("Trend(%v): got %s, want %s", tc.height, got, tc.want)
		}
	}
}

func TestBarWidthIsConstant(t *testing.T) {
	for _, h := range []float64{-3, -1, -0.3, 0, 0.7, 1, 5} {
		bar := Bar(h)
		if w := runewidth.StringWidth(bar); w != barWidth+1 {
			t.Errorf("Bar(%v) is %d wide, want %d", h, w, barWidth+1)
		}
	}
	if !strings.HasPrefix(Bar(-1), "█") || !strings.HasSuffix(Bar(1), "█") {
		t.Error("extremes not at the track ends")
	}
}

func TestWriteASCII(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteASCII(&buf, fixture(t)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{"Beat 0", "Beat 3", "ibm_torino", "ibm_marrakesh", "-0.6960", "0.083826"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if n := strings.Count(out, "█"); n != 20 {
		t.Errorf("got %d bars, want 20", n)
	}

	// Every bar line has the same display width
	width := -1
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "█") {
			continue
		}
		bar := line[:strings.Index(line, "]")]
		w := runewidth.StringWidth(bar)
		if width >= 0 && w != width {
			t.Errorf("misaligned bar line %q", line)
		}
		width = w
	}
}

func TestWriteASCIIEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteASCII(&buf, core.NewSampleSet(nil, nil)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "no samples") {
		t.Errorf("got %q", buf.String())
	}
}

func TestWriteCoordinates(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCoordinates(&buf, fixture(t)); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "\n  V"); n != 20 {
		t.Errorf("got %d vertex lines, want 20", n)
	}
}

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, fixture(t), 800); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "<circle"); n != 20 {
		t.Errorf("got %d circles, want 20", n)
	}

	// Output must be well-formed XML
	dec := xml.NewDecoder(bytes.NewReader(buf.Bytes()))
	for {
		if _, err := dec.Token(); err != nil {
			if err != io.EOF {
				t.Fatalf("invalid svg: %v", err)
			}
			break
		}
	}

	if err := WriteSVG(&buf, fixture(t), 1); err == nil {
		t.Error("expected error for width 1")
	}
}

func TestMapperCorners(t *testing.T) {
	m := newMapper(400)
	tests := []struct {
		theta, phi float64
		x, y       int
	}{
		{0, 0, 200, 0},
		{3.141592653589793, 0, 200, 200},
		{1.5707963267948966, 0, 200, 100},
		{1.5707963267948966, 1.5707963267948966, 300, 100},
	}
	for _, tc := range tests {
		x, y := m.screen(core.Spherical{Theta: tc.theta, Phi: tc.phi}.LatLng())
		if abs(x-tc.x) > 1 || abs(y-tc.y) > 1 {
			t.Errorf("(%v,%v): got (%d,%d), want (%d,%d)", tc.theta, tc.phi, x, y, tc.x, tc.y)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestHeightMap(t *testing.T) {
	r := core.NewReconstructor()
	r.Resolution = 16
	grid := r.Build(fixture(t))

	img := HeightMap(grid)
	if b := img.Bounds(); b.Dx() != 17 || b.Dy() != 17 {
		t.Fatalf("got %v, want 17x17", b)
	}
	want := grid.Node(5, 9).Color.NRGBA()
	got := img.NRGBAAt(9, 5)
	if got.R != want.R || got.G != want.G || got.B != want.B {
		t.Errorf("pixel (9,5): got %v, want %v", got, want)
	}

	var buf bytes.Buffer
	if err := WritePNG(&buf, grid, 128, 64); err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := decoded.Bounds(); b.Dx() != 128 || b.Dy() != 64 {
		t.Errorf("scaled to %v, want 128x64", b)
	}

	if err := WritePNG(&buf, grid, 0, 10); err == nil {
		t.Error("expected error for zero width")
	}
}
