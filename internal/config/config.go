// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Archive  ArchiveConfig  `yaml:"archive"`
	Playback PlaybackConfig `yaml:"playback"`
	Objects  []ObjectConfig `yaml:"objects"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ArchiveConfig holds the geometry cache source.
type ArchiveConfig struct {
	Path string `yaml:"path"`
}

// PlaybackConfig holds frame playback settings.
type PlaybackConfig struct {
	Frame     float64 `yaml:"frame"`
	FrameRate float64 `yaml:"frame_rate"`
	Loop      bool    `yaml:"loop"`
}

// ObjectConfig names one archive path to import, with optional shader
// attribute requests.
type ObjectConfig struct {
	Path       string   `yaml:"path"`
	Attributes []string `yaml:"attributes"`
}

// ViewerConfig holds display settings.
type ViewerConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Playback: PlaybackConfig{
			Frame:     0,
			FrameRate: 24,
			Loop:      true,
		},
		Viewer: ViewerConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
