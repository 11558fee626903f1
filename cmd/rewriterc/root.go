// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/pkg/config"
	"github.com/walteh/rewriterc/pkg/llm"
	"github.com/walteh/rewriterc/pkg/rewrite"
	"github.com/walteh/rewriterc/pkg/status"
	"github.com/walteh/rewriterc/pkg/validate"
	"gitlab.com/tozd/go/errors"
)

// rootFlags holds every CLI flag. Flags override config file values only
// when explicitly set.
type rootFlags struct {
	configFile   string
	instruction  string
	pattern      string
	model        string
	validateWith string
	retries      int
	jobs         int
	baseURL      string
	timeout      string
	debug        bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "rewriterc",
		Short: "Apply a natural-language instruction to files matched by a glob pattern",
		Long: `rewriterc rewrites files with a chat-completion model.
For every matched file it sends the instruction and the file's content to
the model, extracts the rewritten content from the reply, and overwrites
the file. With --validate-with the change is checked by a shell command
and retried up to --n-retries times; if every attempt is rejected the
original content is restored.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configFile, "config", "c", "", "path to a .rewriterc/.yaml/.hcl/.json config file")
	cmd.Flags().StringVarP(&flags.instruction, "instruction", "i", "", "instruction to follow, or a path to a file containing it")
	cmd.Flags().StringVarP(&flags.pattern, "pattern", "p", "", "glob pattern selecting target files (e.g. 'src/**/*.go')")
	cmd.Flags().StringVarP(&flags.model, "model", "m", config.DefaultModel, "model to use for the change")
	cmd.Flags().StringVarP(&flags.validateWith, "validate-with", "v", "", "command to validate the change (e.g. 'go build ./...')")
	cmd.Flags().IntVarP(&flags.retries, "n-retries", "r", config.DefaultRetries, "number of attempts per file when validation fails")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", config.DefaultJobs, "number of files processed concurrently")
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "completion endpoint override (also "+config.EnvBaseURL+")")
	cmd.Flags().StringVar(&flags.timeout, "timeout", "", "per-completion timeout (e.g. '2m')")
	cmd.Flags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")

	return cmd
}

// buildConfig merges the optional config file with explicitly set flags.
func buildConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	cfg := &config.Config{}

	if flags.configFile != "" {
		loaded, err := config.Load(cmd.Context(), flags.configFile)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("instruction") || cfg.Instruction == "" {
		cfg.Instruction = flags.instruction
	}
	if cmd.Flags().Changed("pattern") || cfg.Pattern == "" {
		cfg.Pattern = flags.pattern
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = flags.model
	}
	if cmd.Flags().Changed("validate-with") {
		cfg.ValidateWith = flags.validateWith
	}
	if cmd.Flags().Changed("n-retries") {
		cfg.Retries = flags.retries
	}
	if cmd.Flags().Changed("jobs") {
		cfg.Jobs = flags.jobs
	}
	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL = flags.baseURL
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = flags.timeout
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

func run(cmd *cobra.Command, flags *rootFlags) error {
	level := zerolog.InfoLevel
	if flags.debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.Ctx(cmd.Context()).Level(level)
	ctx := logger.WithContext(cmd.Context())

	cfg, err := buildConfig(cmd, flags)
	if err != nil {
		return err
	}
	if err := cfg.Validate(ctx); err != nil {
		return errors.Errorf("validating configuration: %w", err)
	}

	// Credential check happens before any file is touched.
	apiKey, err := config.APIKey()
	if err != nil {
		return err
	}

	instruction, err := config.ResolveInstruction(ctx, cfg.Instruction)
	if err != nil {
		return err
	}

	files, err := cfg.MatchFiles(ctx)
	if err != nil {
		return err
	}

	reporter := status.NewConsoleReporter(logger)
	reporter.RunStarted(cfg.Pattern, len(files))
	if len(files) == 0 {
		logger.Warn().Str("pattern", cfg.Pattern).Msg("no files matched")
		return nil
	}

	client, err := llm.New(llm.Options{
		APIKey:  apiKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.CompletionTimeout(),
	})
	if err != nil {
		return errors.Errorf("creating completion client: %w", err)
	}

	var validator validate.Validator
	if cfg.ValidateWith != "" {
		validator, err = validate.NewShellValidator(cfg.ValidateWith)
		if err != nil {
			return errors.Errorf("creating validator: %w", err)
		}
	}

	rewriter, err := rewrite.New(rewrite.Options{
		Instruction: instruction,
		Client:      client,
		Validator:   validator,
		MaxAttempts: cfg.Retries,
		Reporter:    reporter,
	})
	if err != nil {
		return errors.Errorf("creating rewriter: %w", err)
	}

	results := rewrite.NewRunner(rewriter, cfg.Jobs).Process(ctx, files)

	rows := make([]status.Row, 0, len(results))
	failed := 0
	for _, res := range results {
		if res.State != rewrite.StateSucceeded {
			failed++
		}
		rows = append(rows, status.Row{
			Path:     res.Path,
			Outcome:  res.State.String(),
			Attempts: res.Attempts,
			Duration: res.Duration,
			Err:      res.Err,
		})
	}
	reporter.Summary(rows)

	if failed > 0 {
		return errors.Errorf("%d of %d file(s) were not rewritten", failed, len(results))
	}
	return nil
}
