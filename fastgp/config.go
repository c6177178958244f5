package fastgp

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/lucasmaystre/gofastgp/fitters"
	"github.com/lucasmaystre/gofastgp/param"
)

// Config describes a model and its fitting schedule.
type Config struct {
	Family         string          `yaml:"family"`
	Dim            int             `yaml:"dim"`
	NumTasks       int             `yaml:"num_tasks"`
	Seed           uint64          `yaml:"seed"`
	Alpha          int             `yaml:"alpha"`
	Scale          float64         `yaml:"scale"`
	Lengthscales   []float64       `yaml:"lengthscales"`
	Noise          *float64        `yaml:"noise"`
	Rank           *int            `yaml:"rank"`
	FactorTask     [][]float64     `yaml:"factor_task_kernel"`
	NoiseTask      []float64       `yaml:"noise_task_kernel"`
	Optimize       map[string]bool `yaml:"optimize"`
	Debug          bool            `yaml:"debug"`
	ForceRecompile bool            `yaml:"force_recompile"`
	MaxHorizons    int             `yaml:"max_horizons"`
	Fit            FitConfig       `yaml:"fit"`
}

type FitConfig struct {
	Iterations        int     `yaml:"iterations"`
	LR                float64 `yaml:"lr"`
	Optimizer         string  `yaml:"optimizer"`
	Verbose           int     `yaml:"verbose"`
	ImprovementThresh float64 `yaml:"stop_crit_improvement_threshold"`
	WaitIterations    int     `yaml:"stop_crit_wait_iterations"`
	StoreMLL          bool    `yaml:"store_mll"`
	StoreScale        bool    `yaml:"store_scale"`
	StoreLengthscales bool    `yaml:"store_lengthscales"`
	StoreNoise        bool    `yaml:"store_noise"`
}

func DefaultConfig() *Config {
	fo := DefaultFitOptions()
	return &Config{
		Family:       Lattice.String(),
		Dim:          1,
		NumTasks:     1,
		Alpha:        2,
		Scale:        1,
		Lengthscales: []float64{1},
		NoiseTask:    []float64{1},
		MaxHorizons:  16,
		Fit: FitConfig{
			Iterations:        fo.Iterations,
			LR:                fo.LR,
			Optimizer:         "rprop",
			Verbose:           fo.Verbose,
			ImprovementThresh: fo.StopCritImprovementThreshold,
			WaitIterations:    fo.StopCritWaitIterations,
		},
	}
}

// ParseConfig reads a YAML document on top of the defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

func parseName(s string) (param.Name, error) {
	for _, n := range param.Names {
		if n.String() == s {
			return n, nil
		}
	}
	return 0, fmt.Errorf("unknown hyperparameter %q: %w", s, ErrInvalidShape)
}

// Options translates the configuration into model options.
func (c *Config) Options() ([]Option, error) {
	opts := []Option{
		WithNumTasks(c.NumTasks),
		WithSeed(c.Seed),
		WithAlpha(c.Alpha),
		WithScale(c.Scale),
		WithLengthscales(c.Lengthscales...),
		WithNoiseTaskKernel(c.NoiseTask...),
		WithDebug(c.Debug),
		WithForceRecompile(c.ForceRecompile),
		WithMaxHorizons(c.MaxHorizons),
	}
	if c.Noise != nil {
		opts = append(opts, WithNoise(*c.Noise))
	}
	if c.Rank != nil {
		opts = append(opts, WithRank(*c.Rank))
	}
	if len(c.FactorTask) > 0 {
		cols := len(c.FactorTask[0])
		f := mat.NewDense(len(c.FactorTask), cols, nil)
		for i, row := range c.FactorTask {
			if len(row) != cols {
				return nil, fmt.Errorf("factor task kernel row %d: %w", i, ErrInvalidShape)
			}
			f.SetRow(i, row)
		}
		opts = append(opts, WithFactorTaskKernel(f))
	}
	for k, on := range c.Optimize {
		name, err := parseName(k)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithOptimize(name, on))
	}
	return opts, nil
}

// FitOptions translates the fit block.
func (c *Config) FitOptions() (FitOptions, error) {
	f := c.Fit
	fo := FitOptions{
		Iterations:                   f.Iterations,
		LR:                           f.LR,
		Verbose:                      f.Verbose,
		StopCritImprovementThreshold: f.ImprovementThresh,
		StopCritWaitIterations:       f.WaitIterations,
		StoreMLL:                     f.StoreMLL,
		StoreScale:                   f.StoreScale,
		StoreLengthscales:            f.StoreLengthscales,
		StoreNoise:                   f.StoreNoise,
	}
	switch f.Optimizer {
	case "", "rprop":
		fo.Optimizer = fitters.NewRprop(f.LR)
	case "adam":
		fo.Optimizer = fitters.NewAdam(f.LR)
	default:
		return fo, fmt.Errorf("unknown optimizer %q", f.Optimizer)
	}
	return fo, nil
}

// NewFromConfig builds a model from a configuration. Extra options apply
// after the configured ones.
func NewFromConfig(cfg *Config, extra ...Option) (*FastGP, error) {
	family, err := ParseFamily(cfg.Family)
	if err != nil {
		return nil, fmt.Errorf("family %q: %w", cfg.Family, err)
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New(family, cfg.Dim, append(opts, extra...)...)
}
