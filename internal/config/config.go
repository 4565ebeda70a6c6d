// Package config handles exporter configuration loading and management.
package config

// Config holds all exporter settings.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Axes    AxesConfig    `yaml:"axes"`
	Bake    BakeConfig    `yaml:"bake"`
	Logging LoggingConfig `yaml:"logging"`
}

// InputConfig holds the authoring scene source.
type InputConfig struct {
	Scene string  `yaml:"scene"` // Path to the .gltf/.glb document
	FPS   float64 `yaml:"fps"`   // Frame rate used to sample animation time
}

// OutputConfig holds the asset destinations.
type OutputConfig struct {
	Mesh     string `yaml:"mesh"`
	Skeleton string `yaml:"skeleton"`
}

// AxesConfig selects the target coordinate convention.
type AxesConfig struct {
	Forward string `yaml:"forward"`
	Up      string `yaml:"up"`
}

// BakeConfig holds baking behavior switches.
type BakeConfig struct {
	// SortWeights picks the four strongest skin influences instead of
	// the first four in group enumeration order.
	SortWeights bool `yaml:"sort_weights"`

	// TextDump writes the human-readable debug encoding instead of the
	// binary containers.
	TextDump bool `yaml:"text_dump"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			FPS: 24,
		},
		Output: OutputConfig{
			Mesh:     "out.mesh",
			Skeleton: "out.skel",
		},
		Axes: AxesConfig{
			Forward: "-Y",
			Up:      "Z",
		},
		Bake: BakeConfig{
			SortWeights: false,
			TextDump:    false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
