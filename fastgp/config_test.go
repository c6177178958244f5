package fastgp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasmaystre/gofastgp/fitters"
	"github.com/lucasmaystre/gofastgp/param"
)

const exampleConfig = `
family: digital_net
dim: 2
num_tasks: 2
seed: 42
alpha: 3
lengthscales: [0.5, 2]
noise: 0.000001
rank: 1
noise_task_kernel: [0.5, 1.5]
optimize:
  noise: true
  scale: false
fit:
  iterations: 20
  lr: 0.01
  optimizer: adam
  stop_crit_wait_iterations: 4
  store_mll: true
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(exampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "digital_net", cfg.Family)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 1.0, cfg.Scale)
	require.NotNil(t, cfg.Rank)
	assert.Equal(t, 1, *cfg.Rank)
	assert.Equal(t, 16, cfg.MaxHorizons)
	assert.Equal(t, 1.0, cfg.Fit.ImprovementThresh)

	gp, err := NewFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, DigitalNet, gp.Family())
	assert.Equal(t, 2, gp.Dim())
	assert.Equal(t, 2, gp.NumTasks())
	assert.InDelta(t, 1e-6, gp.Noise(), 1e-18)
	assert.InDeltaSlice(t, []float64{0.5, 2}, gp.Lengthscales(), 1e-12)
	assert.InDeltaSlice(t, []float64{0.5, 1.5}, gp.NoiseTaskKernel(), 1e-12)
	assert.True(t, gp.hp.Get(param.Noise).Optimize)
	assert.False(t, gp.hp.Get(param.Scale).Optimize)

	fo, err := cfg.FitOptions()
	require.NoError(t, err)
	assert.Equal(t, 20, fo.Iterations)
	assert.Equal(t, 4, fo.StopCritWaitIterations)
	assert.True(t, fo.StoreMLL)
	assert.IsType(t, &fitters.Adam{}, fo.Optimizer)
}

func TestDefaultConfigBuildsModel(t *testing.T) {
	cfg := DefaultConfig()
	gp, err := NewFromConfig(cfg, WithSeed(3))
	require.NoError(t, err)
	assert.Equal(t, Lattice, gp.Family())
	assert.InDelta(t, 1e-8, gp.Noise(), 1e-20)
	fo, err := cfg.FitOptions()
	require.NoError(t, err)
	assert.IsType(t, &fitters.Rprop{}, fo.Optimizer)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(exampleConfig), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Alpha)
	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Family = "grid"
	_, err := NewFromConfig(cfg)
	assert.ErrorIs(t, err, ErrFamily)

	cfg = DefaultConfig()
	cfg.Optimize = map[string]bool{"bandwidth": true}
	_, err = NewFromConfig(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Fit.Optimizer = "sgd"
	_, err = cfg.FitOptions()
	assert.Error(t, err)

	_, err = ParseConfig([]byte("dim: [1, 2]"))
	assert.Error(t, err)
}
