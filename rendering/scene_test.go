package rendering

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"hypersurface/core"
)

func testSet() *core.SampleSet {
	return core.BuildRings([]core.Beat{
		{Source: core.SourceRecord{Beat: 0}, QubitErrors: []float64{0.01, 0.07, 0.02}},
		{Source: core.SourceRecord{Beat: 1}, QubitErrors: []float64{0.03, 0.005, 0.09}},
	})
}

func smallOptions() Options {
	opts := DefaultOptions()
	opts.Reconstructor.Resolution = 12
	return opts
}

func TestViewStateTransitions(t *testing.T) {
	v := ViewState{}
	if v.Phase != Loading || v.Mode != Solid {
		t.Fatalf("zero state: %+v", v)
	}

	loaded := v.Loaded()
	if loaded.Phase != Ready || v.Phase != Loading {
		t.Errorf("Loaded must return a new value: %+v / %+v", loaded, v)
	}
	if got := loaded.ToggleMode(); got.Mode != Wireframe || got.Phase != Ready {
		t.Errorf("ToggleMode: %+v", got)
	}
	if got := loaded.ToggleMode().ToggleMode(); got != loaded {
		t.Errorf("double toggle: %+v, want %+v", got, loaded)
	}
	if got := loaded.WithMode(Wireframe).Reset(); got.Phase != Loading || got.Mode != Wireframe {
		t.Errorf("Reset keeps mode: %+v", got)
	}

	if m, ok := ParseMode("wireframe"); !ok || m != Wireframe {
		t.Error("ParseMode wireframe")
	}
	if _, ok := ParseMode("points"); ok {
		t.Error("ParseMode accepted an unknown mode")
	}
}

func TestSurfaceStartsLoading(t *testing.T) {
	s := NewSurface(smallOptions())
	if s.View().Phase != Loading {
		t.Fatalf("new surface phase %v", s.View().Phase)
	}
	f := s.Frame(time.Second)
	if !f.Placeholder || f.Grid != nil {
		t.Errorf("loading frame should show the placeholder: %+v", f)
	}

	// Absent and empty sets keep it loading
	if s.Update(nil) || s.Update(core.NewSampleSet(nil, nil)) {
		t.Error("nil/empty set triggered a build")
	}
	if s.View().Phase != Loading {
		t.Errorf("phase %v after empty set", s.View().Phase)
	}
}

func TestSurfaceMemoizesOnVersion(t *testing.T) {
	s := NewSurface(smallOptions())
	set := testSet()

	if !s.Update(set) {
		t.Fatal("first update should build")
	}
	if s.View().Phase != Ready {
		t.Errorf("phase %v, want ready", s.View().Phase)
	}
	grid := s.Grid()

	for i := 0; i < 5; i++ {
		if s.Update(set) {
			t.Fatal("same set rebuilt geometry")
		}
		s.Frame(time.Duration(i) * time.Second)
	}
	if s.Builds() != 1 || s.Grid() != grid {
		t.Errorf("builds %d; grid replaced %v", s.Builds(), s.Grid() != grid)
	}

	// Same content, new identity: rebuild
	next := core.NewSampleSet(set.Samples(), set.Sources())
	if !s.Update(next) {
		t.Error("new set version did not rebuild")
	}
	if s.Version() != next.Version() {
		t.Errorf("version %d, want %d", s.Version(), next.Version())
	}

	// Changing resolution rebuilds on the next update
	s.SetResolution(6)
	if !s.Update(next) || len(s.Grid().Nodes) != 49 {
		t.Errorf("resolution change did not rebuild at 6: %d nodes", len(s.Grid().Nodes))
	}

	// Upstream reset returns to loading
	s.Update(nil)
	if s.View().Phase != Loading || s.Grid() != nil || s.Version() != 0 {
		t.Errorf("reset left state %+v", s.View())
	}
}

func TestModeToggleKeepsGeometry(t *testing.T) {
	s := NewSurface(smallOptions())
	s.Update(testSet())

	before := append([]core.Node(nil), s.Grid().Nodes...)
	cloudBefore := append([]core.Point(nil), s.Cloud().Points...)

	if v := s.ToggleMode(); v.Mode != Wireframe {
		t.Fatalf("mode %v", v.Mode)
	}
	if f := s.Frame(0); f.Mode != Wireframe || f.Placeholder {
		t.Errorf("frame %+v", f)
	}
	s.ToggleMode()
	s.SetMode(Wireframe)

	if s.Builds() != 1 {
		t.Errorf("toggling rebuilt geometry: %d builds", s.Builds())
	}
	for i, n := range s.Grid().Nodes {
		if n.Position != before[i].Position || n.Color != before[i].Color {
			t.Fatalf("node %d changed after toggling", i)
		}
	}
	for i, p := range s.Cloud().Points {
		if p != cloudBefore[i] {
			t.Fatalf("point %d changed after toggling", i)
		}
	}
}

func TestRotationIsPureFunctionOfTime(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		rate    float64
		want    float64
	}{
		{0, 0.08, 0},
		{10 * time.Second, 0.08, 0.8},
		{2 * time.Second, 0.5, 1.0},
		{100 * time.Second, 0.08, 8 - 2*math.Pi},
	}
	for _, tc := range tests {
		if got := RotationAt(tc.elapsed, tc.rate); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("RotationAt(%v, %v): got %f, want %f", tc.elapsed, tc.rate, got, tc.want)
		}
	}

	// Same timestamp, same matrix, however many frames came before
	a := ModelAt(37*time.Second, DefaultRotationRate)
	for i := 0; i < 100; i++ {
		ModelAt(time.Duration(i)*time.Millisecond, DefaultRotationRate)
	}
	if b := ModelAt(37*time.Second, DefaultRotationRate); !a.ApproxEqual(b) {
		t.Error("model matrix depends on call history")
	}
}

// vecNear compares componentwise with an absolute tolerance; mgl32's
// ApproxEqualThreshold is relative and rejects float32 residue around zero.
func vecNear(a, b mgl32.Vec3, eps float64) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > eps {
			return false
		}
	}
	return true
}

func TestModelUprightsPoles(t *testing.T) {
	// At t=0 the theta=0 pole (+Z in sample space) must point up (+Y)
	m := ModelAt(0, DefaultRotationRate)
	up := m.Mul4x1(mgl32.Vec4{0, 0, 1, 1}).Vec3()
	if !vecNear(up, mgl32.Vec3{0, 1, 0}, 1e-5) {
		t.Errorf("pole maps to %v", up)
	}

	// Rotation about the vertical keeps the pole fixed
	later := ModelAt(5*time.Second, DefaultPlaceholderRate).Mul4x1(mgl32.Vec4{0, 0, 1, 1}).Vec3()
	if !vecNear(later, mgl32.Vec3{0, 1, 0}, 1e-5) {
		t.Errorf("pole drifted to %v", later)
	}
}

func TestPlaceholderSpinsFaster(t *testing.T) {
	s := NewSurface(smallOptions())
	elapsed := 3 * time.Second
	placeholder := s.Frame(elapsed).Model

	s.Update(testSet())
	mesh := s.Frame(elapsed).Model

	if placeholder.ApproxEqual(mesh) {
		t.Error("placeholder and mesh rotate at the same rate")
	}
	if !placeholder.ApproxEqual(ModelAt(elapsed, DefaultPlaceholderRate)) {
		t.Error("placeholder not at the placeholder rate")
	}
}
