package app

import "fmt"

// Transducer modes selectable from the command line.
const (
	ModeAnalyze    = "analyze"
	ModeSynthesize = "synthesize"
	ModeVerify     = "verify"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Mode      string
	InputPath string // source module or payload JSON; "-" reads stdin

	OutputPath   string // empty writes to stdout
	ModuleName   string // overrides the name derived from InputPath
	ManifestDirs []string

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Mode {
	case ModeAnalyze, ModeSynthesize, ModeVerify:
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}

	return &cfg, nil
}
