package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagScene    = flag.String("scene", "", "Path to the input scene document")
	flagMesh     = flag.String("mesh-out", "", "Mesh asset output path")
	flagSkeleton = flag.String("skel-out", "", "Skeleton asset output path")
	flagForward  = flag.String("forward", "", "Target forward axis (X, -X, Y, -Y, Z, -Z)")
	flagUp       = flag.String("up", "", "Target up axis (X, -X, Y, -Y, Z, -Z)")
	flagFPS      = flag.Float64("fps", 0, "Animation sampling frame rate")
	flagSortW    = flag.Bool("sort-weights", false, "Keep the four strongest skin weights instead of the first four")
	flagText     = flag.Bool("text", false, "Write the human-readable debug encoding")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagScene != "" {
		cfg.Input.Scene = *flagScene
	}
	if *flagMesh != "" {
		cfg.Output.Mesh = *flagMesh
	}
	if *flagSkeleton != "" {
		cfg.Output.Skeleton = *flagSkeleton
	}
	if *flagForward != "" {
		cfg.Axes.Forward = *flagForward
	}
	if *flagUp != "" {
		cfg.Axes.Up = *flagUp
	}
	if *flagFPS > 0 {
		cfg.Input.FPS = *flagFPS
	}
	if *flagSortW {
		cfg.Bake.SortWeights = true
	}
	if *flagText {
		cfg.Bake.TextDump = true
	}
}
