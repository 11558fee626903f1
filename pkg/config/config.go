// Package config holds the run configuration: what to rewrite, which
// model to use, and how hard to retry.
package config

import (
	"context"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Defaults applied when neither flag nor config file supplies a value.
const (
	DefaultModel   = "gpt-4"
	DefaultRetries = 5
	DefaultJobs    = 1
	DefaultTimeout = 5 * time.Minute
)

// EnvAPIKey is the environment variable holding the API credential.
const EnvAPIKey = "OPENAI_API_KEY"

// EnvBaseURL optionally overrides the completion endpoint.
const EnvBaseURL = "OPENAI_BASE_URL"

// Config is the complete run configuration. Values come from an optional
// config file with CLI flags layered on top.
type Config struct {
	// Instruction is a literal directive or a path to a file holding one.
	Instruction string `json:"instruction" yaml:"instruction" hcl:"instruction,optional"`
	// Pattern is the doublestar glob selecting target files.
	Pattern string `json:"pattern" yaml:"pattern" hcl:"pattern,optional"`
	// Model is the completion model identifier.
	Model string `json:"model,omitempty" yaml:"model,omitempty" hcl:"model,optional"`
	// ValidateWith is the shell command run after each write. Empty
	// disables validation and retries.
	ValidateWith string `json:"validate_with,omitempty" yaml:"validate_with,omitempty" hcl:"validate_with,optional"`
	// Retries is the per-file attempt budget.
	Retries int `json:"n_retries,omitempty" yaml:"n_retries,omitempty" hcl:"n_retries,optional"`
	// Jobs is the number of files processed concurrently.
	Jobs int `json:"jobs,omitempty" yaml:"jobs,omitempty" hcl:"jobs,optional"`
	// BaseURL overrides the completion endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" hcl:"base_url,optional"`
	// Timeout bounds one completion round-trip, e.g. "2m".
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty" hcl:"timeout,optional"`

	timeout time.Duration
}

// ApplyDefaults fills unset optional fields.
func (c *Config) ApplyDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Retries == 0 {
		c.Retries = DefaultRetries
	}
	if c.Jobs == 0 {
		c.Jobs = DefaultJobs
	}
	if c.BaseURL == "" {
		c.BaseURL = os.Getenv(EnvBaseURL)
	}
}

// Validate checks the configuration before any file is touched. Every
// failure here is fatal for the whole run.
func (c *Config) Validate(ctx context.Context) error {
	if c.Instruction == "" {
		return errors.Errorf("instruction is required")
	}
	if c.Pattern == "" {
		return errors.Errorf("pattern is required")
	}
	if !doublestar.ValidatePattern(c.Pattern) {
		return errors.Errorf("invalid glob pattern %q", c.Pattern)
	}
	if c.Model == "" {
		return errors.Errorf("model must not be empty")
	}
	if c.Retries < 1 {
		return errors.Errorf("n-retries must be a positive integer, got %d", c.Retries)
	}
	if c.Jobs < 1 {
		return errors.Errorf("jobs must be a positive integer, got %d", c.Jobs)
	}

	c.timeout = DefaultTimeout
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return errors.Errorf("parsing timeout: %w", err)
		}
		if d <= 0 {
			return errors.Errorf("timeout must be positive, got %s", d)
		}
		c.timeout = d
	}

	return nil
}

// CompletionTimeout returns the parsed timeout. Valid after Validate.
func (c *Config) CompletionTimeout() time.Duration {
	if c.timeout == 0 {
		return DefaultTimeout
	}
	return c.timeout
}

// APIKey reads the credential from the environment. Its absence is a
// fatal startup error, checked before any file is matched.
func APIKey() (string, error) {
	key := os.Getenv(EnvAPIKey)
	if key == "" {
		return "", errors.Errorf("%s must be set in the environment", EnvAPIKey)
	}
	return key, nil
}

// ResolveInstruction turns the instruction value into directive text: if
// it names an existing file the file's contents are used, otherwise the
// value itself is the directive. Read once at startup and shared
// read-only across the batch.
func ResolveInstruction(ctx context.Context, value string) (string, error) {
	info, err := os.Stat(value)
	if err != nil || info.IsDir() {
		return value, nil
	}

	data, err := os.ReadFile(value)
	if err != nil {
		return "", errors.Errorf("reading instruction file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", value).Msg("loaded instruction from file")
	return string(data), nil
}

// MatchFiles expands the glob pattern into the ordered list of target
// paths. Directories are filtered out; matching nothing is not an error,
// just an empty batch.
func (c *Config) MatchFiles(ctx context.Context) ([]string, error) {
	matches, err := doublestar.FilepathGlob(c.Pattern)
	if err != nil {
		return nil, errors.Errorf("expanding pattern %q: %w", c.Pattern, err)
	}

	files := make([]string, 0, len(matches))
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			return nil, errors.Errorf("stating match %s: %w", match, err)
		}
		if info.IsDir() {
			continue
		}
		files = append(files, match)
	}

	zerolog.Ctx(ctx).Debug().Str("pattern", c.Pattern).Int("files", len(files)).Msg("expanded glob pattern")
	return files, nil
}
