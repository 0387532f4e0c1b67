package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"

	"github.com/ironsheep/marker-ar/internal/config"
	"github.com/ironsheep/marker-ar/internal/geometry"
	"github.com/ironsheep/marker-ar/internal/imaging"
	"github.com/ironsheep/marker-ar/internal/marker"
	"github.com/ironsheep/marker-ar/internal/monitoring"
	"github.com/ironsheep/marker-ar/internal/overlay"
	"github.com/ironsheep/marker-ar/internal/pipeline"
	"github.com/ironsheep/marker-ar/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("marker-ar - fiducial marker detection and AR overlay")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  marker-ar                              Serve MCP tools over stdin/stdout")
	fmt.Println("  marker-ar run <frames-dir> [out-dir]   Run the frame loop over image files")
	fmt.Println("  marker-ar generate <id> <out.png> [cell-size]")
	fmt.Println("                                         Write a printable catalog marker")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  MARKER_AR_LOG_LEVEL=debug    Enable debug logging")
	fmt.Println("  MARKER_AR_CONFIG=<file.json> Detector tunables and camera_path")
}

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("marker-ar %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol and results)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if os.Getenv("MARKER_AR_LOG_LEVEL") == "debug" {
		monitoring.SetDebug(true)
		log.Printf("marker-ar v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		det := mustDetector(cfg)
		if err := server.New(det).Run(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case "run":
		if len(os.Args) < 3 {
			usage()
			os.Exit(2)
		}
		outDir := ""
		if len(os.Args) > 3 {
			outDir = os.Args[3]
		}
		if err := runFrames(cfg, os.Args[2], outDir); err != nil {
			log.Fatalf("Frame loop error: %v", err)
		}
	case "generate":
		if len(os.Args) < 4 {
			usage()
			os.Exit(2)
		}
		cellSize := 50
		if len(os.Args) > 4 {
			n, err := strconv.Atoi(os.Args[4])
			if err != nil {
				log.Fatalf("Invalid cell size %q: %v", os.Args[4], err)
			}
			cellSize = n
		}
		if err := generate(os.Args[2], os.Args[3], cellSize); err != nil {
			log.Fatalf("Generate error: %v", err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func loadConfig() (*config.Config, error) {
	path := os.Getenv("MARKER_AR_CONFIG")
	if path == "" {
		return config.Defaults(), nil
	}
	return config.Load(path)
}

func loadCamera(cfg *config.Config) (*geometry.CameraModel, error) {
	path := cfg.GetCameraPath()
	if path == "" {
		log.Printf("No camera_path configured; using a nominal 640x480 camera")
		return config.NominalCamera(), nil
	}
	return config.LoadCamera(path)
}

func mustDetector(cfg *config.Config) *pipeline.Detector {
	cam, err := loadCamera(cfg)
	if err != nil {
		log.Fatalf("Camera error: %v", err)
	}
	cat, err := marker.DefaultCatalog()
	if err != nil {
		log.Fatalf("Catalog error: %v", err)
	}
	det, err := pipeline.NewDetector(cat, cam, cfg.DetectorOptions())
	if err != nil {
		log.Fatalf("Detector error: %v", err)
	}
	return det
}

func runFrames(cfg *config.Config, framesDir, outDir string) error {
	det := mustDetector(cfg)

	src, err := imaging.NewDirectorySource(framesDir)
	if err != nil {
		return err
	}
	sink, err := overlay.NewRenderer(outDir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loop := &pipeline.Loop{
		Source:                 src,
		Detector:               det,
		Sink:                   sink,
		MaxConsecutiveFailures: cfg.GetMaxConsecutiveFailures(),
		OnFrame: func(index int, res *pipeline.FrameResult) {
			monitoring.Debugf("frame %d: %d candidates, present %v", index, res.Candidates, res.State.IDs())
		},
	}

	stats, err := loop.Run(ctx)
	log.Printf("Processed %d frames (%d skipped, %d render errors), %d markers", stats.Frames, stats.Skipped, stats.RenderErrors, stats.Markers)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(stats); encErr != nil {
		log.Printf("Failed to encode stats: %v", encErr)
	}
	return err
}

func generate(id, outPath string, cellSize int) error {
	cat, err := marker.DefaultCatalog()
	if err != nil {
		return err
	}
	img, err := cat.RenderEntry(id, cellSize, marker.DefaultQuietZone)
	if err != nil {
		return err
	}
	if err := imaging.Save(img, outPath); err != nil {
		return err
	}
	log.Printf("Wrote marker %s to %s (%dx%d)", id, outPath, img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}
