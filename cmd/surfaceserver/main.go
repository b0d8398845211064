package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/profile"

	"hypersurface/config"
	"hypersurface/core"
	"hypersurface/provider"
	"hypersurface/rendering"
	"hypersurface/server"
)

func main() {
	var (
		settingsPath = flag.String("config", "settings.hjson", "Settings file (HJSON)")
		providerURL  = flag.String("provider", "", "Provider URL (overrides settings and HYPERSURFACE_PROVIDER_URL)")
		port         = flag.Int("port", 0, "Listen port (0 = from settings)")
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
	if *port > 0 {
		settings.Server.Port = *port
	}

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	client := provider.New(settings.Provider.URL, settings.Provider.Timeout())
	defer provider.OpenCache(client, settings.Provider.CachePath, settings.Provider.CacheKeep)()
	opts := rendering.DefaultOptions()
	opts.Reconstructor = settings.Surface.Reconstructor()
	opts.Points = settings.Surface.PointCloud()

	srv := server.New(opts, func(ctx context.Context) (*core.SampleSet, error) {
		set, _, err := client.Load(ctx)
		return set, err
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go srv.Run(ctx, settings.Server.RefreshInterval())

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", settings.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Hub().Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[SERVER] shutdown: %v", err)
		}
	}()

	fmt.Printf("Provider: %s (refresh every %v)\n", settings.Provider.URL, settings.Server.RefreshInterval())
	fmt.Printf("Server starting on http://localhost:%d (ws: /ws, api: /api/surface, /api/mesh, metrics: /metrics)\n", settings.Server.Port)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}
