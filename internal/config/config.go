package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/lvfit/internal/dataset"
	"github.com/san-kum/lvfit/internal/fit"
	"github.com/san-kum/lvfit/internal/integrators"
	"github.com/san-kum/lvfit/internal/roots"
)

const (
	DefaultDataDir   = ".lvfit"
	DefaultLogLevel  = "info"
	DefaultPlotStart = 0.1
	DefaultPlotEnd   = 10.0
	DefaultPlotStep  = 0.01
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Data     DataConfig  `yaml:"data"`
	Model    ModelConfig `yaml:"model"`
	Grid     fit.Grid    `yaml:"grid"`
	Workers  int         `yaml:"workers"`
	LogLevel string      `yaml:"log_level"`
	Roots    RootsConfig `yaml:"roots"`
}

type DataConfig struct {
	Path           string `yaml:"path"`
	PreyColumn     string `yaml:"prey_column"`
	PredatorColumn string `yaml:"predator_column"`
}

type ModelConfig struct {
	Step            float64 `yaml:"step"`
	Iterations      int     `yaml:"iterations"`
	Integrator      string  `yaml:"integrator"`
	InitialPrey     float64 `yaml:"initial_prey"`
	InitialPredator float64 `yaml:"initial_predator"`
	// ValidateState aborts simulate/compare runs at the first non-finite
	// state. Fits ignore it.
	ValidateState bool `yaml:"validate_state"`
}

type RootsConfig struct {
	Function  string  `yaml:"function"`
	Left      float64 `yaml:"left"`
	Right     float64 `yaml:"right"`
	Precision float64 `yaml:"precision"`
	PlotStart float64 `yaml:"plot_start"`
	PlotEnd   float64 `yaml:"plot_end"`
	PlotStep  float64 `yaml:"plot_step"`
}

func DefaultConfig() *Config {
	opts := fit.DefaultOptions()
	return &Config{
		Data: DataConfig{
			Path:           "populations_lapins_renards.csv",
			PreyColumn:     dataset.DefaultPreyColumn,
			PredatorColumn: dataset.DefaultPredatorColumn,
		},
		Model: ModelConfig{
			Step:            opts.Step,
			Iterations:      opts.Iterations,
			Integrator:      opts.Integrator,
			InitialPrey:     opts.Initial[0],
			InitialPredator: opts.Initial[1],
		},
		Grid:     fit.DefaultGrid(),
		Workers:  1,
		LogLevel: DefaultLogLevel,
		Roots: RootsConfig{
			Function:  "f",
			Left:      1,
			Right:     2,
			Precision: roots.DefaultPrecision,
			PlotStart: DefaultPlotStart,
			PlotEnd:   DefaultPlotEnd,
			PlotStep:  DefaultPlotStep,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Model.Step <= 0 {
		return fmt.Errorf("%w: model.step must be positive, got %g", ErrInvalid, c.Model.Step)
	}
	if c.Model.Iterations < 0 {
		return fmt.Errorf("%w: model.iterations must be non-negative, got %d", ErrInvalid, c.Model.Iterations)
	}
	if _, err := integrators.Get(c.Model.Integrator); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := c.Grid.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Roots.Precision <= 0 {
		return fmt.Errorf("%w: roots.precision must be positive, got %g", ErrInvalid, c.Roots.Precision)
	}
	return nil
}

// FitOptions converts the model section into fit options.
func (c *Config) FitOptions() fit.Options {
	opts := fit.DefaultOptions()
	opts.Step = c.Model.Step
	opts.Iterations = c.Model.Iterations
	opts.Integrator = c.Model.Integrator
	opts.Initial = [2]float64{c.Model.InitialPrey, c.Model.InitialPredator}
	opts.Workers = c.Workers
	opts.ValidateState = c.Model.ValidateState
	return opts
}

func (c *Config) Columns() dataset.Columns {
	return dataset.Columns{Prey: c.Data.PreyColumn, Predator: c.Data.PredatorColumn}
}
