package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/rewriterc/pkg/config"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfigFile(t, "conf.yaml", `
instruction: rename old_ variables
pattern: "src/**/*.go"
model: gpt-4o
validate_with: go build ./...
n_retries: 3
jobs: 2
timeout: 2m
`)

	cfg, err := config.Load(testContext(t), path)
	require.NoError(t, err)

	assert.Equal(t, "rename old_ variables", cfg.Instruction)
	assert.Equal(t, "src/**/*.go", cfg.Pattern)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, "go build ./...", cfg.ValidateWith)
	assert.Equal(t, 3, cfg.Retries)
	assert.Equal(t, 2, cfg.Jobs)
	assert.Equal(t, "2m", cfg.Timeout)
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfigFile(t, "conf.json", `{
  "instruction": "rename old_ variables",
  "pattern": "*.txt",
  "n_retries": 2
}`)

	cfg, err := config.Load(testContext(t), path)
	require.NoError(t, err)

	assert.Equal(t, "rename old_ variables", cfg.Instruction)
	assert.Equal(t, "*.txt", cfg.Pattern)
	assert.Equal(t, 2, cfg.Retries)
}

func TestLoad_JSON_UnknownField(t *testing.T) {
	path := writeConfigFile(t, "conf.json", `{"instruction": "x", "patern": "typo"}`)

	_, err := config.Load(testContext(t), path)
	require.Error(t, err)
}

func TestLoad_HCL(t *testing.T) {
	path := writeConfigFile(t, "conf.hcl", `
instruction   = "rename old_ variables"
pattern       = "*.go"
validate_with = "go vet ./..."
n_retries     = 4
`)

	cfg, err := config.Load(testContext(t), path)
	require.NoError(t, err)

	assert.Equal(t, "rename old_ variables", cfg.Instruction)
	assert.Equal(t, "*.go", cfg.Pattern)
	assert.Equal(t, "go vet ./...", cfg.ValidateWith)
	assert.Equal(t, 4, cfg.Retries)
}

func TestLoad_DotRewriterc_YAMLFallback(t *testing.T) {
	path := writeConfigFile(t, ".rewriterc", `
instruction: from dotfile
pattern: "*.md"
`)

	cfg, err := config.Load(testContext(t), path)
	require.NoError(t, err)

	assert.Equal(t, "from dotfile", cfg.Instruction)
	assert.Equal(t, "*.md", cfg.Pattern)
}

func TestLoad_DotRewriterc_HCLFallback(t *testing.T) {
	path := writeConfigFile(t, ".rewriterc", `
instruction = "from hcl dotfile"
pattern     = "*.md"
`)

	cfg, err := config.Load(testContext(t), path)
	require.NoError(t, err)

	assert.Equal(t, "from hcl dotfile", cfg.Instruction)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := writeConfigFile(t, "conf.toml", `instruction = "x"`)

	_, err := config.Load(testContext(t), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file extension")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(testContext(t), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
