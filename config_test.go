package induction

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeConfig(t *testing.T) {
	req := require.New(t)

	cfg, err := DecodeConfig(strings.NewReader(`
clasp: /opt/clingo/clasp
terminate: true
iterations: 3
budget: 2s
prune: 2
temp_dir: /tmp/xhail
`))
	req.NoError(err)
	req.Equal("gringo", cfg.Gringo)
	req.Equal("/opt/clingo/clasp", cfg.Clasp)
	req.True(cfg.Terminate)
	req.Equal(3, cfg.Iterations)
	req.Equal(2*time.Second, cfg.Budget)
	req.Equal(500*time.Millisecond, cfg.Grace)
	req.Equal(2, cfg.Prune)
	req.Equal("/tmp/xhail", cfg.TempDir)

	cfg, err = DecodeConfig(strings.NewReader(""))
	req.NoError(err)
	req.Equal(DefaultConfig(), cfg)
}

func TestConfigValidation(t *testing.T) {
	req := require.New(t)

	for _, code := range []string{
		`gringo: ""`,
		`iterations: -1`,
		`budget: -1s`,
		`prune: -2`,
		`depth: -1`,
	} {
		_, err := DecodeConfig(strings.NewReader(code))
		req.True(errors.Is(err, ErrConfiguration), code)
	}

	_, err := DecodeConfig(strings.NewReader("iterations: [1"))
	req.Error(err)
}

func TestLoadConfig(t *testing.T) {
	req := require.New(t)

	path := filepath.Join(t.TempDir(), "xhail.yaml")
	req.NoError(os.WriteFile(path, []byte("debug: true\nkill: 1m\n"), 0o644))
	cfg, err := LoadConfig(path)
	req.NoError(err)
	req.True(cfg.Debug)
	req.Equal(time.Minute, cfg.Kill)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	req.Error(err)
}
