package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"mask-hysteresis/internal/batch"
	"mask-hysteresis/internal/config"
	"mask-hysteresis/internal/hysteresis"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	seed := flag.String("seed", "", "Seed mask: image file or directory of frames")
	candidate := flag.String("candidate", "", "Candidate mask: image file or directory of frames")
	outputDir := flag.String("output", "", "Output directory (default: <seed>-hysteresis)")
	planes := flag.String("planes", "", "Comma separated planes to process (default: all)")
	depth := flag.String("depth", "", "Convert inputs to this depth: 8-16 or 32f (default: keep)")
	outFormat := flag.String("format", "", "Output format: png, webp, tga, bmp, tiff (default: png)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	logLevel := flag.String("log", "", "Log level: debug, info, warn, error (default: info)")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	err := cfg.Resolve(config.Flags{
		Seed:         *seed,
		Candidate:    *candidate,
		OutputDir:    *outputDir,
		Planes:       *planes,
		Depth:        *depth,
		OutputFormat: *outFormat,
		Workers:      *workers,
		LogLevel:     *logLevel,
	})
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	hysteresis.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Open clips
	seedClip, err := batch.OpenClip(cfg.Seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	candClip, err := batch.OpenClip(cfg.Candidate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	conv, err := batch.ParseDepth(cfg.Depth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Build the filter: every format and plane check happens here,
	// before any frame is processed.
	seedInfo, err := seedClip.Inspect(conv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	candInfo, err := candClip.Inspect(conv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	filter, err := hysteresis.New(seedInfo, candInfo, cfg.Planes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Hysteresis: %s %dx%d, %d frames (candidate: %d)\n",
		seedInfo.Format.Name(), seedInfo.Width, seedInfo.Height, seedInfo.NumFrames, candInfo.NumFrames)
	fmt.Printf("Planes: %v, Workers: %d\n", filter.Planes(), cfg.Workers)
	fmt.Printf("Output: %s (%s)\n", cfg.OutputDir, cfg.OutputFormat)
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()

	results := batch.Run(ctx, batch.Config{
		Filter:       filter,
		Depth:        conv,
		OutputDir:    cfg.OutputDir,
		OutputFormat: cfg.OutputFormat,
		Workers:      cfg.Workers,
	}, seedClip, candClip)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, skipped := 0, 0
	var failed []batch.Result
	for _, r := range results {
		switch {
		case r.Success:
			success++
		case r.Skipped:
			skipped++
		default:
			failed = append(failed, r)
		}
	}

	fmt.Printf("Processed: %d/%d\n", success, len(results))
	if skipped > 0 {
		fmt.Printf("Skipped: %d (interrupted)\n", skipped)
	}

	if len(failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failed))
		limit := min(len(failed), 20)
		for _, r := range failed[:limit] {
			fmt.Printf("  %s: %s\n", filepath.Base(r.Seed), r.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if len(failed) > 0 || skipped > 0 {
		os.Exit(1)
	}
}
