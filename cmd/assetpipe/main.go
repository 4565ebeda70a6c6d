// Package main is the entry point for the assetpipe exporter.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/muldin/assetpipe/internal/config"
	"github.com/muldin/assetpipe/internal/export"
	"github.com/muldin/assetpipe/internal/logger"
	"github.com/muldin/assetpipe/internal/scene/gltfscene"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := flag.Arg(0)
	if command == "" {
		command = "all"
	}
	switch command {
	case "mesh", "skeleton", "all":
	case "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if cfg.Input.Scene == "" {
		fmt.Fprintln(os.Stderr, "No input scene; use -scene or the config file")
		os.Exit(1)
	}

	opts, err := exportOptions(cfg)
	if err != nil {
		logger.Log.Error("invalid configuration", zap.Error(err))
		os.Exit(1)
	}

	sc, err := gltfscene.Open(cfg.Input.Scene, cfg.Input.FPS)
	if err != nil {
		logger.Log.Error("failed to load scene", zap.Error(err))
		os.Exit(1)
	}
	logger.Log.Info("scene loaded",
		zap.String("path", cfg.Input.Scene),
		zap.Int("meshes", len(sc.SelectedMeshObjects())),
		zap.Int("actions", len(sc.Actions())))

	if command == "mesh" || command == "all" {
		if err := export.ExportMesh(sc, cfg.Output.Mesh, opts); err != nil {
			logger.Log.Error("mesh export failed", zap.Error(err))
			os.Exit(1)
		}
	}
	if command == "skeleton" || command == "all" {
		if err := export.ExportSkeleton(sc, cfg.Output.Skeleton, opts); err != nil {
			logger.Log.Error("skeleton export failed", zap.Error(err))
			os.Exit(1)
		}
	}
}

func exportOptions(cfg *config.Config) (export.Options, error) {
	fwd, err := export.ParseAxis(cfg.Axes.Forward)
	if err != nil {
		return export.Options{}, err
	}
	up, err := export.ParseAxis(cfg.Axes.Up)
	if err != nil {
		return export.Options{}, err
	}
	return export.Options{
		Forward:     fwd,
		Up:          up,
		SortWeights: cfg.Bake.SortWeights,
		TextDump:    cfg.Bake.TextDump,
		Logger:      logger.Log,
	}, nil
}

func printUsage() {
	fmt.Println(`assetpipe - bake authored 3D scenes into runtime assets

Usage:
  assetpipe [flags] <command>

Commands:
  mesh       Export the mesh asset only
  skeleton   Export the skeleton+animation asset only
  all        Export both assets (default)

Examples:
  assetpipe -scene hero.glb all
  assetpipe -scene hero.glb -mesh-out hero.mesh mesh
  assetpipe -scene hero.glb -forward Z -up Y skeleton`)
}
