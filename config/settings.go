package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hjson/hjson-go"

	"hypersurface/core"
)

type Settings struct {
	Provider ProviderSettings `json:"provider"`
	Surface  SurfaceSettings  `json:"surface"`
	Render   RenderSettings   `json:"render"`
	Server   ServerSettings   `json:"server"`
}

type ProviderSettings struct {
	URL       string `json:"url"`
	TimeoutMs int    `json:"timeoutMs"`
	// CachePath is a LevelDB directory for received documents; empty disables it.
	CachePath string `json:"cachePath"`
	CacheKeep int    `json:"cacheKeep"`
}

type SurfaceSettings struct {
	Resolution        int     `json:"resolution"`
	BaseRadius        float64 `json:"baseRadius"`
	DisplacementScale float64 `json:"displacementScale"`
	Metric            string  `json:"metric"` // "flat" or "great-circle"
	PointLift         float64 `json:"pointLift"`
	PointBaseSize     float64 `json:"pointBaseSize"`
	PointSizeGain     float64 `json:"pointSizeGain"`
}

type RenderSettings struct {
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	RotationRate    float64 `json:"rotationRate"`    // rad/s
	PlaceholderRate float64 `json:"placeholderRate"` // rad/s
	Wireframe       bool    `json:"wireframe"`
}

type ServerSettings struct {
	Port              int `json:"port"`
	RefreshIntervalMs int `json:"refreshIntervalMs"`
}

// Defaults returns the settings used when no file is present.
func Defaults() Settings {
	return Settings{
		Provider: ProviderSettings{
			URL:       "http://localhost:8000/api/hypersphere/surface",
			TimeoutMs: 5000,
			CacheKeep: 50,
		},
		Surface: SurfaceSettings{
			Resolution:        48,
			BaseRadius:        1.0,
			DisplacementScale: 0.1,
			Metric:            "flat",
			PointLift:         1.02,
			PointBaseSize:     0.03,
			PointSizeGain:     0.04,
		},
		Render: RenderSettings{
			Width:           1280,
			Height:          720,
			RotationRate:    0.08,
			PlaceholderRate: 0.5,
		},
		Server: ServerSettings{
			Port:              8080,
			RefreshIntervalMs: 30000,
		},
	}
}

// Load reads an HJSON settings file over the defaults. A missing file is not
// an error; the defaults are returned as-is.
func Load(path string) (Settings, error) {
	settings := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, err
	}

	if err := Parse(data, &settings); err != nil {
		return settings, fmt.Errorf("error parsing %s: %w", path, err)
	}
	if err := settings.Validate(); err != nil {
		return settings, fmt.Errorf("invalid settings in %s: %w", path, err)
	}

	return settings, nil
}

// Parse decodes HJSON into settings, leaving fields absent from data untouched.
func Parse(data []byte, settings *Settings) error {
	// HJSON only decodes into generic values, so round-trip through JSON to
	// reach the tagged struct.
	var raw map[string]interface{}
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return err
	}
	bytes, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, settings)
}

// Validate rejects settings that cannot produce a renderable surface.
func (s Settings) Validate() error {
	switch {
	case s.Surface.Resolution < 1:
		return fmt.Errorf("surface.resolution must be at least 1, got %d", s.Surface.Resolution)
	case s.Surface.BaseRadius <= 0:
		return fmt.Errorf("surface.baseRadius must be positive, got %g", s.Surface.BaseRadius)
	case s.Surface.Metric != "flat" && s.Surface.Metric != "great-circle":
		return fmt.Errorf("surface.metric must be \"flat\" or \"great-circle\", got %q", s.Surface.Metric)
	case s.Render.Width <= 0 || s.Render.Height <= 0:
		return fmt.Errorf("render size must be positive, got %dx%d", s.Render.Width, s.Render.Height)
	}
	return nil
}

// GridNodeCount is the number of nodes a surface at this resolution carries.
func (s SurfaceSettings) GridNodeCount() int {
	return (s.Resolution + 1) * (s.Resolution + 1)
}

func (p ProviderSettings) Timeout() time.Duration {
	return time.Duration(p.TimeoutMs) * time.Millisecond
}

func (s ServerSettings) RefreshInterval() time.Duration {
	return time.Duration(s.RefreshIntervalMs) * time.Millisecond
}

// Reconstructor builds the grid reconstructor these settings describe.
func (s SurfaceSettings) Reconstructor() core.Reconstructor {
	return core.Reconstructor{
		Resolution:        s.Resolution,
		BaseRadius:        s.BaseRadius,
		DisplacementScale: s.DisplacementScale,
		Metric:            core.ParseMetric(s.Metric),
	}
}

func (s SurfaceSettings) PointCloud() core.PointCloudBuilder {
	return core.PointCloudBuilder{
		Lift:     s.PointLift,
		BaseSize: s.PointBaseSize,
		SizeGain: s.PointSizeGain,
	}
}
