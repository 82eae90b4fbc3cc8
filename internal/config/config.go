// Package config handles trtool configuration loading and management.
package config

import "time"

// Config holds all tool settings.
type Config struct {
	Load    LoadConfig    `yaml:"load"`
	Sound   SoundConfig   `yaml:"sound"`
	Crypt   CryptConfig   `yaml:"crypt"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoadConfig holds level loading settings.
type LoadConfig struct {
	Workers   int           `yaml:"workers"`    // Levels decoded at once
	AllowPack bool          `yaml:"allow_pack"` // Accept multi-level packs
	Timeout   time.Duration `yaml:"timeout"`    // Per-level limit, 0 for none
}

// SoundConfig holds sample extraction settings.
type SoundConfig struct {
	Extract bool `yaml:"extract"`
}

// CryptConfig holds the key for encrypted levels.
type CryptConfig struct {
	Key string `yaml:"key"` // Hex encoded
}

// ExportConfig holds output settings.
type ExportConfig struct {
	Dir      string `yaml:"dir"`
	Textiles bool   `yaml:"textiles"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Load: LoadConfig{
			Workers:   4,
			AllowPack: true,
		},
		Sound: SoundConfig{
			Extract: false,
		},
		Export: ExportConfig{
			Dir:      "out",
			Textiles: false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
