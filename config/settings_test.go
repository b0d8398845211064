package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"hypersurface/core"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "absent.hjson"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if settings != Defaults() {
		t.Errorf("got %+v, want defaults", settings)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.hjson")
	data := `{
  # comments and unquoted strings are fine in hjson
  surface: {
    resolution: 32
    metric: great-circle
  }
  provider: {
    url: http://example.test/surface
  }
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	settings, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if settings.Surface.Resolution != 32 {
		t.Errorf("resolution: got %d, want 32", settings.Surface.Resolution)
	}
	if settings.Surface.Metric != "great-circle" {
		t.Errorf("metric: got %q", settings.Surface.Metric)
	}
	if settings.Provider.URL != "http://example.test/surface" {
		t.Errorf("provider url: got %q", settings.Provider.URL)
	}
	// Untouched fields keep their defaults
	if settings.Surface.BaseRadius != 1.0 || settings.Render.RotationRate != 0.08 {
		t.Errorf("defaults lost: %+v", settings)
	}
	if settings.Surface.GridNodeCount() != 33*33 {
		t.Errorf("grid node count: got %d", settings.Surface.GridNodeCount())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"zero resolution", "{surface: {resolution: 0}}"},
		{"unknown metric", "{surface: {metric: manhattan}}"},
		{"negative radius", "{surface: {baseRadius: -1}}"},
		{"not hjson", "{surface: "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.hjson")
			if err := os.WriteFile(path, []byte(tc.data), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestDefaultsMatchCoreBuilders(t *testing.T) {
	s := Defaults()
	if got := s.Surface.Reconstructor(); got != core.NewReconstructor() {
		t.Errorf("reconstructor %+v, want %+v", got, core.NewReconstructor())
	}
	if got := s.Surface.PointCloud(); got != core.NewPointCloudBuilder() {
		t.Errorf("point builder %+v, want %+v", got, core.NewPointCloudBuilder())
	}
	if s.Provider.Timeout() != 5*time.Second || s.Server.RefreshInterval() != 30*time.Second {
		t.Errorf("durations %v / %v", s.Provider.Timeout(), s.Server.RefreshInterval())
	}

	s.Surface.Metric = "great-circle"
	if s.Surface.Reconstructor().Metric != core.GreatCircle {
		t.Error("metric not carried over")
	}
}
