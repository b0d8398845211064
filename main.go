package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/profile"

	"hypersurface/config"
	"hypersurface/core"
	"hypersurface/provider"
	"hypersurface/rendering"
	"hypersurface/rendering/opengl"
)

// glfw must run on the main thread
func init() {
	runtime.LockOSThread()
}

func main() {
	var (
		settingsPath = flag.String("config", "settings.hjson", "Settings file (HJSON)")
		providerURL  = flag.String("provider", "", "Provider URL (overrides settings and HYPERSURFACE_PROVIDER_URL)")
		resolution   = flag.Int("resolution", 0, "Grid resolution (0 = from settings)")
		wireframe    = flag.Bool("wireframe", false, "Start in wireframe mode")
		offline      = flag.Bool("offline", false, "Skip the provider and show the embedded fallback")
		cpuProfile   = flag.Bool("cpuprofile", false, "Write a CPU profile to the working directory")
	)
	flag.Parse()

	_ = godotenv.Load(".env")

	settings, err := config.Load(*settingsPath)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	if url := os.Getenv("HYPERSURFACE_PROVIDER_URL"); url != "" {
		settings.Provider.URL = url
	}
	if *providerURL != "" {
		settings.Provider.URL = *providerURL
	}
	if *resolution > 0 {
		settings.Surface.Resolution = *resolution
	}
	if *wireframe {
		settings.Render.Wireframe = true
	}

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	fmt.Println("=== Hypersphere Surface Viewer ===")
	fmt.Printf("Provider: %s\n", settings.Provider.URL)
	fmt.Printf("Grid: %dx%d (%d nodes), metric %s\n",
		settings.Surface.Resolution, settings.Surface.Resolution,
		settings.Surface.GridNodeCount(), settings.Surface.Metric)
	fmt.Println("Controls: W wireframe, drag to orbit, scroll to zoom, Esc to quit")

	opts := rendering.Options{
		Reconstructor:   settings.Surface.Reconstructor(),
		Points:          settings.Surface.PointCloud(),
		RotationRate:    settings.Render.RotationRate,
		PlaceholderRate: settings.Render.PlaceholderRate,
	}
	if settings.Render.Wireframe {
		opts.Mode = rendering.Wireframe
	}
	surface := rendering.NewSurface(opts)

	renderer, err := opengl.NewSurfaceRenderer(settings.Render.Width, settings.Render.Height, surface)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer renderer.Terminate()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := provider.New(settings.Provider.URL, settings.Provider.Timeout())
	defer provider.OpenCache(client, settings.Provider.CachePath, settings.Provider.CacheKeep)()
	loader := rendering.StartLoader(ctx, func(ctx context.Context) (*core.SampleSet, error) {
		if *offline {
			set, _, err := provider.Fallback()
			return set, err
		}
		set, _, err := client.Load(ctx)
		return set, err
	})
	defer loader.Close()

	start := time.Now()
	frames := 0
	lastReport := start

	for !renderer.ShouldClose() && ctx.Err() == nil {
		if set, ok := loader.Poll(); ok {
			surface.Update(set)
			stats := core.ComputeStatistics(set)
			fmt.Printf("Loaded %d samples from %d beats: mean height %+.3f, error %.2f%%..%.2f%%\n",
				set.Len(), set.Beats(), stats.MeanHeight, stats.MinError*100, stats.MaxError*100)
		}

		renderer.Render(time.Since(start))
		renderer.PollEvents()

		frames++
		if time.Since(lastReport) > 10*time.Second {
			fps := float64(frames) / time.Since(lastReport).Seconds()
			fmt.Printf("%.1f fps, %s, %s\n", fps, surface.View().Phase, surface.View().Mode)
			frames = 0
			lastReport = time.Now()
		}
	}
}
