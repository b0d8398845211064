package rendering

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"hypersurface/core"
)

// Phase is the loading state of the scene.
type Phase int

const (
	Loading Phase = iota
	Ready
)

func (p Phase) String() string {
	if p == Ready {
		return "ready"
	}
	return "loading"
}

// Mode selects how the mesh is drawn. It never affects geometry.
type Mode int

const (
	Solid Mode = iota
	Wireframe
)

func (m Mode) String() string {
	if m == Wireframe {
		return "wireframe"
	}
	return "solid"
}

// ParseMode accepts "solid" or "wireframe".
func ParseMode(name string) (Mode, bool) {
	switch name {
	case "solid":
		return Solid, true
	case "wireframe":
		return Wireframe, true
	}
	return Solid, false
}

// ViewState is an immutable snapshot of the UI state. Transitions return a
// new value.
type ViewState struct {
	Phase Phase
	Mode  Mode
}

func (v ViewState) Loaded() ViewState {
	v.Phase = Ready
	return v
}

func (v ViewState) Reset() ViewState {
	v.Phase = Loading
	return v
}

func (v ViewState) ToggleMode() ViewState {
	if v.Mode == Solid {
		v.Mode = Wireframe
	} else {
		v.Mode = Solid
	}
	return v
}

func (v ViewState) WithMode(m Mode) ViewState {
	v.Mode = m
	return v
}

const (
	DefaultRotationRate    = 0.08 // rad/s
	DefaultPlaceholderRate = 0.5  // rad/s
)

// RotationAt is the rotation angle after elapsed time at rate rad/s, wrapped
// to [0, 2π). It depends only on its arguments, so frames never accumulate drift.
func RotationAt(elapsed time.Duration, rate float64) float64 {
	return core.WrapPhi(elapsed.Seconds() * rate)
}

// upright turns the sample convention (Z towards theta=0) into the display
// convention (Y up).
var upright = mgl32.HomogRotate3DX(-math.Pi / 2)

// ModelAt spins an upright object about the display's vertical axis.
func ModelAt(elapsed time.Duration, rate float64) mgl32.Mat4 {
	return mgl32.HomogRotate3DY(float32(RotationAt(elapsed, rate))).Mul4(upright)
}

// Options configure a Surface.
type Options struct {
	Reconstructor   core.Reconstructor
	Points          core.PointCloudBuilder
	RotationRate    float64
	PlaceholderRate float64
	Mode            Mode
}

// DefaultOptions matches the reference look: 48x48 grid, slow spin.
func DefaultOptions() Options {
	return Options{
		Reconstructor:   core.NewReconstructor(),
		Points:          core.NewPointCloudBuilder(),
		RotationRate:    DefaultRotationRate,
		PlaceholderRate: DefaultPlaceholderRate,
	}
}

type geometryKey struct {
	version       uint64
	reconstructor core.Reconstructor
	points        core.PointCloudBuilder
}

// Surface owns the reconstructed mesh and point cloud for the current
// SampleSet and rebuilds them only when the set (or build parameters) change.
type Surface struct {
	opts  Options
	view  ViewState
	key   geometryKey
	grid  *core.SurfaceGrid
	cloud core.PointCloud
	// Builds counts geometry reconstructions.
	builds int
}

func NewSurface(opts Options) *Surface {
	return &Surface{
		opts: opts,
		view: ViewState{Phase: Loading, Mode: opts.Mode},
	}
}

// Update hands the surface the current upstream set. A nil or empty set puts
// the surface back into Loading. It reports whether geometry was rebuilt.
func (s *Surface) Update(set *core.SampleSet) bool {
	if set.Len() == 0 {
		s.view = s.view.Reset()
		s.grid = nil
		s.cloud = core.PointCloud{}
		s.key = geometryKey{}
		return false
	}

	key := geometryKey{
		version:       set.Version(),
		reconstructor: s.opts.Reconstructor,
		points:        s.opts.Points,
	}
	if s.grid != nil && key == s.key {
		return false
	}

	s.grid = s.opts.Reconstructor.Build(set)
	s.cloud = s.opts.Points.Build(set)
	s.key = key
	s.builds++
	s.view = s.view.Loaded()
	return true
}

// SetResolution changes the grid resolution; the next Update rebuilds.
func (s *Surface) SetResolution(resolution int) {
	s.opts.Reconstructor.Resolution = resolution
}

func (s *Surface) View() ViewState {
	return s.view
}

func (s *Surface) ToggleMode() ViewState {
	s.view = s.view.ToggleMode()
	return s.view
}

func (s *Surface) SetMode(m Mode) ViewState {
	s.view = s.view.WithMode(m)
	return s.view
}

// Grid returns the current mesh, or nil while loading.
func (s *Surface) Grid() *core.SurfaceGrid {
	return s.grid
}

func (s *Surface) Cloud() core.PointCloud {
	return s.cloud
}

// Version of the SampleSet the current geometry came from; 0 while loading.
func (s *Surface) Version() uint64 {
	return s.key.version
}

func (s *Surface) Builds() int {
	return s.builds
}

// Frame describes what to draw at a given elapsed time.
type Frame struct {
	Placeholder bool
	Mode        Mode
	Model       mgl32.Mat4
	Grid        *core.SurfaceGrid
	Cloud       core.PointCloud
}

// Frame assembles the draw list. Only the model matrix depends on elapsed.
func (s *Surface) Frame(elapsed time.Duration) Frame {
	if s.view.Phase == Loading || s.grid == nil {
		return Frame{
			Placeholder: true,
			Mode:        s.view.Mode,
			Model:       ModelAt(elapsed, s.opts.PlaceholderRate),
		}
	}
	return Frame{
		Mode:  s.view.Mode,
		Model: ModelAt(elapsed, s.opts.RotationRate),
		Grid:  s.grid,
		Cloud: s.cloud,
	}
}
