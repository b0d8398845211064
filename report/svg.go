package report

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/golang/geo/s2"

	"hypersurface/core"
)

const (
	backgroundStyle = "fill:rgb(10,10,24)"
	graticuleStyle  = "stroke:rgb(60,60,90);stroke-width:1"
	labelStyle      = "fill:rgb(200,200,220);font-family:monospace;font-size:12px"
)

// errWriter keeps the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// mapper projects sphere points onto a plate carrée canvas.
type mapper struct {
	width, height int
	proj          s2.Projection
	scale         float64
}

func newMapper(width int) mapper {
	scale := float64(width)
	return mapper{width: width, height: width / 2, proj: s2.NewPlateCarreeProjection(scale), scale: scale}
}

func (m mapper) screen(ll s2.LatLng) (int, int) {
	p := m.proj.Project(s2.PointFromLatLng(ll))
	x := (p.X + m.scale) / (2 * m.scale)
	y := (-p.Y + m.scale/2) / m.scale
	return int(x * float64(m.width)), int(y * float64(m.height))
}

// WriteSVG draws the samples on a world map: longitude is phi, latitude runs
// from the theta=0 pole at the top.
func WriteSVG(w io.Writer, set *core.SampleSet, width int) error {
	if width < 2 {
		return fmt.Errorf("svg width must be at least 2, got %d", width)
	}
	ew := &errWriter{w: w}
	m := newMapper(width)

	canvas := svg.New(ew)
	canvas.Start(m.width, m.height)
	canvas.Title("Hypersphere surface samples")
	canvas.Rect(0, 0, m.width, m.height, backgroundStyle)

	for deg := -60; deg <= 60; deg += 30 {
		_, y := m.screen(s2.LatLngFromDegrees(float64(deg), 0))
		canvas.Line(0, y, m.width, y, graticuleStyle)
	}
	for deg := -150; deg <= 150; deg += 30 {
		x, _ := m.screen(s2.LatLngFromDegrees(0, float64(deg)))
		canvas.Line(x, 0, x, m.height, graticuleStyle)
	}

	for _, s := range set.Samples() {
		x, y := m.screen(s.Spherical.LatLng())
		r := 3 + int(math.Round(4*math.Abs(s.Height)))
		style := fmt.Sprintf("fill:%s;stroke:rgb(0,0,0);stroke-width:1", core.ColorOf(s.Height).Hex())
		canvas.Circle(x, y, r, style)
	}

	stats := core.ComputeStatistics(set)
	canvas.Text(8, m.height-8, fmt.Sprintf("%d samples, %d beats, mean height %+.3f",
		set.Len(), set.Beats(), stats.MeanHeight), labelStyle)
	canvas.End()

	return ew.err
}
