package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flatepack/pack/flate"
	"github.com/flatepack/pack/gzip"
)

func writeTOML(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "gzpack.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := New([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")})
	require.NoError(t, err)

	assert.Equal(t, "-", cfg.CLI.File)
	assert.Equal(t, flate.Auto, cfg.Method)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.True(t, cfg.StoreName())
	assert.Equal(t, byte(gzip.OSUnix), cfg.OS())
	assert.Empty(t, cfg.TOML.Gzip.Comment)
}

func TestTOMLSettings(t *testing.T) {
	path := writeTOML(t, `
log_level = "warn"

[deflate]
method = "fixed"

[gzip]
store_name = false
os = 0
comment = "packed"
`)
	cfg, err := New([]string{"--config", path, "input.txt"})
	require.NoError(t, err)

	assert.Equal(t, "input.txt", cfg.CLI.File)
	assert.Equal(t, flate.Fixed, cfg.Method)
	assert.Equal(t, logrus.WarnLevel, cfg.LogLevel)
	assert.False(t, cfg.StoreName())
	assert.Equal(t, byte(gzip.OSFAT), cfg.OS())
	assert.Equal(t, "packed", cfg.TOML.Gzip.Comment)
}

func TestCLIOverridesTOML(t *testing.T) {
	path := writeTOML(t, "[deflate]\nmethod = \"fixed\"\n")
	cfg, err := New([]string{"--config", path, "-m", "dynamic", "-D", "-d", "-k", "-c", "a.gz"})
	require.NoError(t, err)

	assert.Equal(t, flate.Dynamic, cfg.Method)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.True(t, cfg.CLI.Decompress)
	assert.True(t, cfg.CLI.Keep)
	assert.True(t, cfg.CLI.Stdout)
}

func TestEnvironment(t *testing.T) {
	t.Setenv("GZPACK_METHOD", "stored")
	cfg, err := New([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")})
	require.NoError(t, err)
	assert.Equal(t, flate.Stored, cfg.Method)
}

func TestInvalidSettings(t *testing.T) {
	for name, tc := range map[string]struct {
		toml string
		args []string
	}{
		"toml method":   {toml: "[deflate]\nmethod = \"lzma\"\n"},
		"cli method":    {args: []string{"-m", "bzip2"}},
		"os":            {toml: "[gzip]\nos = 300\n"},
		"log level":     {toml: "log_level = \"loud\"\n"},
		"bad toml":      {toml: "[deflate\n"},
		"trace with -d": {args: []string{"-t", "-d"}},
	} {
		t.Run(name, func(t *testing.T) {
			args := append([]string{"--config", writeTOML(t, tc.toml)}, tc.args...)
			_, err := New(args)
			assert.Error(t, err)
		})
	}
}

func TestInvalidMethodIsUnsupported(t *testing.T) {
	_, err := New([]string{"--config", writeTOML(t, ""), "-m", "bzip2"})
	assert.True(t, errors.Is(err, flate.ErrUnsupportedMethod), "got %v", err)
}
