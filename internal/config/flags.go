package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagWorkers  = flag.Int("workers", 0, "Number of levels to decode at once")
	flagKey      = flag.String("key", "", "Hex key for encrypted levels")
	flagOut      = flag.String("out", "", "Output directory for exported files")
	flagTextiles = flag.Bool("textiles", false, "Export textiles as BMP files")
	flagSounds   = flag.Bool("sounds", false, "Export reachable sound samples")
	flagTimeout  = flag.Duration("timeout", 0, "Per-level decode time limit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after flag parsing.
func Args() []string {
	return flag.Args()
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
	if *flagWorkers > 0 {
		cfg.Load.Workers = *flagWorkers
	}
	if *flagKey != "" {
		cfg.Crypt.Key = *flagKey
	}
	if *flagOut != "" {
		cfg.Export.Dir = *flagOut
	}
	if *flagTextiles {
		cfg.Export.Textiles = true
	}
	if *flagSounds {
		cfg.Sound.Extract = true
	}
	if *flagTimeout > 0 {
		cfg.Load.Timeout = *flagTimeout
	}
}
