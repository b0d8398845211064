package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"hypersurface/config"
	"hypersurface/core"
	"hypersurface/provider"
	"hypersurface/report"
)

func main() {
	var (
		settingsPath = flag.String("config", "settings.hjson", "Settings file (HJSON)")
		input        = flag.String("input", "", "Read a provider document from this file instead of fetching")
		offline      = flag.Bool("offline", false, "Use the embedded fallback")
		coords       = flag.Bool("coords", false, "Also list vertex coordinates")
		svgPath      = flag.String("svg", "", "Write a sample map SVG to this path")
		svgWidth     = flag.Int("svg-width", 1200, "SVG width in pixels")
		pngPath      = flag.String("png", "", "Write a reconstructed height map PNG to this path")
		pngWidth     = flag.Int("png-width", 1024, "PNG width in pixels")
		pngHeight    = flag.Int("png-height", 512, "PNG height in pixels")
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

	set, err := loadSet(settings, *input, *offline)
	if err != nil {
		log.Fatalf("Failed to load samples: %v", err)
	}

	if err := report.WriteASCII(os.Stdout, set); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
	if *coords {
		fmt.Println()
		if err := report.WriteCoordinates(os.Stdout, set); err != nil {
			log.Fatalf("Failed to write coordinates: %v", err)
		}
	}

	if *svgPath != "" {
		if err := writeFile(*svgPath, func(f *os.File) error {
			return report.WriteSVG(f, set, *svgWidth)
		}); err != nil {
			log.Fatalf("Failed to write SVG: %v", err)
		}
		fmt.Printf("Wrote %s\n", *svgPath)
	}

	if *pngPath != "" {
		grid := settings.Surface.Reconstructor().Build(set)
		if err := writeFile(*pngPath, func(f *os.File) error {
			return report.WritePNG(f, grid, *pngWidth, *pngHeight)
		}); err != nil {
			log.Fatalf("Failed to write PNG: %v", err)
		}
		fmt.Printf("Wrote %s\n", *pngPath)
	}
}

func loadSet(settings config.Settings, input string, offline bool) (*core.SampleSet, error) {
	switch {
	case input != "":
		f, err := os.Open(input)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		set, _, err := provider.Decode(f)
		return set, err
	case offline:
		set, _, err := provider.Fallback()
		return set, err
	}
	set, _, err := provider.New(settings.Provider.URL, settings.Provider.Timeout()).Load(context.Background())
	return set, err
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
