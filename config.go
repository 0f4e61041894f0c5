package induction

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of a run.
type Config struct {
	// Gringo is the path of the grounder binary.
	Gringo string `yaml:"gringo"`
	// Clasp is the path of the solver binary.
	Clasp string `yaml:"clasp"`
	// Debug logs the generated programs and keeps temporary files.
	Debug bool `yaml:"debug"`
	// Mute silences grounder warnings.
	Mute bool `yaml:"mute"`
	// Full records the displayed facts of each answer.
	Full bool `yaml:"full"`
	// Output prints run statistics.
	Output bool `yaml:"output"`
	// Terminate stops at the first answer.
	Terminate bool `yaml:"terminate"`
	// Strict turns process launch failures into configuration errors.
	Strict bool `yaml:"strict"`
	// Iterations is the number of abduction rounds.
	Iterations int `yaml:"iterations"`
	// Kill bounds the whole run, 0 means no bound.
	Kill time.Duration `yaml:"kill"`
	// Budget bounds each solver call, 0 means no bound.
	Budget time.Duration `yaml:"budget"`
	// Grace is how long a killed solver gets to flush its output.
	Grace time.Duration `yaml:"grace"`
	// Prune is the support threshold below which generalised clauses may be dropped.
	Prune int `yaml:"prune"`
	// Depth bounds the number of saturation levels of kernel clauses, 0 means no bound.
	Depth int `yaml:"depth"`
	// TempDir is where the programs exchanged with the solver are written.
	TempDir string `yaml:"temp_dir"`
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		Gringo:     "gringo",
		Clasp:      "clasp",
		Iterations: 1,
		Grace:      500 * time.Millisecond,
	}
}

// LoadConfig reads settings from a YAML file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	defer f.Close()
	return DecodeConfig(f)
}

// DecodeConfig reads settings from YAML on top of the defaults.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	switch {
	case c.Gringo == "":
		return fmt.Errorf("%w: no grounder binary", ErrConfiguration)
	case c.Clasp == "":
		return fmt.Errorf("%w: no solver binary", ErrConfiguration)
	case c.Iterations < 0:
		return fmt.Errorf("%w: negative number of iterations %d", ErrConfiguration, c.Iterations)
	case c.Kill < 0 || c.Budget < 0 || c.Grace < 0:
		return fmt.Errorf("%w: negative timeout", ErrConfiguration)
	case c.Prune < 0:
		return fmt.Errorf("%w: negative pruning threshold %d", ErrConfiguration, c.Prune)
	case c.Depth < 0:
		return fmt.Errorf("%w: negative depth %d", ErrConfiguration, c.Depth)
	}
	return nil
}
