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

// Package rewrite orchestrates the per-file transformation loop: prompt,
// completion, extraction, write, validation, and the retry/rollback state
// machine around them.
package rewrite

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/llm"
	"github.com/walteh/rewriterc/pkg/prompt"
	"github.com/walteh/rewriterc/pkg/status"
	"github.com/walteh/rewriterc/pkg/target"
	"github.com/walteh/rewriterc/pkg/validate"
	"gitlab.com/tozd/go/errors"
)

// ErrExhausted reports that every attempt for a file was rejected.
var ErrExhausted = errors.New("retry budget exhausted")

// 🔧 Options configures a Rewriter.
type Options struct {
	// Instruction is the natural-language directive applied to every file.
	Instruction string
	// Client produces completions.
	Client llm.Client
	// Validator checks the working tree after each write. Nil disables
	// validation: the first successful extraction is final.
	Validator validate.Validator
	// MaxAttempts is the per-file retry budget. Must be at least 1.
	MaxAttempts int
	// Reporter receives user-facing progress. Nil means silent.
	Reporter status.Reporter
}

// 🏭 New creates a Rewriter with the given options.
func New(opts Options) (*Rewriter, error) {
	if opts.Instruction == "" {
		return nil, errors.Errorf("instruction is required")
	}
	if opts.Client == nil {
		return nil, errors.Errorf("completion client is required")
	}
	if opts.MaxAttempts < 1 {
		return nil, errors.Errorf("max attempts must be at least 1, got %d", opts.MaxAttempts)
	}
	if opts.Reporter == nil {
		opts.Reporter = status.Nop()
	}
	return &Rewriter{
		instruction: opts.Instruction,
		client:      opts.Client,
		validator:   opts.Validator,
		maxAttempts: opts.MaxAttempts,
		reporter:    opts.Reporter,
	}, nil
}

// 🎮 Rewriter runs the attempt state machine for one file at a time.
type Rewriter struct {
	instruction string
	client      llm.Client
	validator   validate.Validator
	maxAttempts int
	reporter    status.Reporter
}

// ProcessFile drives one file from Attempting(1) to a terminal state.
// Attempts are strictly sequential: each prompt embeds the on-disk result
// of the previous attempt, so there is nothing to parallelize here.
func (r *Rewriter) ProcessFile(ctx context.Context, path string) Result {
	logger := zerolog.Ctx(ctx).With().Str("path", path).Logger()
	ctx = logger.WithContext(ctx)

	start := time.Now()
	res := Result{Path: path, State: StateAttempting}

	tgt, err := target.Open(ctx, path)
	if err != nil {
		res.State = StateFailed
		res.Err = errors.Errorf("opening target: %w", err)
		res.Duration = time.Since(start)
		return res
	}

	// The first prompt embeds the snapshot; later prompts embed whatever
	// the previous attempt left on disk.
	current := tgt.Original()
	dirty := false

	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		res.Attempts = attempt
		r.reporter.AttemptStarted(path, attempt, r.maxAttempts)
		logger.Info().Int("attempt", attempt).Int("max", r.maxAttempts).Msg("processing attempt")

		outcome, written, err := r.attempt(ctx, tgt, current)
		switch outcome {
		case OutcomeValidated:
			res.State = StateSucceeded
			res.Duration = time.Since(start)
			return res

		case OutcomeTransportFailed, OutcomeExtractionFailed:
			// Nothing was written: the next attempt reuses the same
			// current content.
			lastErr = err
			r.reporter.AttemptFailed(path, attempt, r.maxAttempts, outcome.String())
			logger.Warn().Err(err).Str("outcome", outcome.String()).Msg("attempt failed")

		case OutcomeValidationFailed:
			dirty = dirty || written
			lastErr = err
			r.reporter.AttemptFailed(path, attempt, r.maxAttempts, outcome.String())
			logger.Warn().Int("attempt", attempt).Msg("validation rejected attempt")

			if attempt < r.maxAttempts {
				// Deliberate feedback loop: the rejected candidate stays
				// on disk and seeds the next prompt, so the model sees
				// its own previous attempt.
				current, err = tgt.ReadBack(ctx)
				if err != nil {
					res.State = StateFailed
					res.Err = errors.Errorf("re-reading target after failed validation: %w", err)
					res.Duration = time.Since(start)
					return res
				}
			}

		default:
			// Fatal file-level error (unwritable target, broken validator).
			res.State = StateFailed
			res.Err = err
			res.Duration = time.Since(start)
			return res
		}
	}

	// Budget exhausted. With a validator configured the file may hold a
	// rejected candidate, so the snapshot goes back.
	if r.validator != nil && dirty {
		if err := tgt.Restore(ctx); err != nil {
			res.State = StateFailed
			res.Err = errors.Errorf("restoring original content: %w", err)
			res.Duration = time.Since(start)
			return res
		}
		res.State = StateExhaustedRestored
	} else {
		res.State = StateFailed
	}
	res.Err = errors.Errorf("%w after %d attempts: %w", ErrExhausted, r.maxAttempts, lastErr)
	res.Duration = time.Since(start)
	return res
}

// outcomeFatal is a sentinel AttemptOutcome for fatal file-level errors.
// It is internal to the attempt loop and never appears in a Result.
const outcomeFatal AttemptOutcome = -1

// attempt runs one pass of build → complete → extract → write → validate.
// The written flag reports whether the file was overwritten this attempt.
func (r *Rewriter) attempt(ctx context.Context, tgt *target.File, current string) (outcome AttemptOutcome, written bool, err error) {
	conv := prompt.Build(r.instruction, current)

	completion, err := r.client.Complete(ctx, conv)
	if err != nil {
		return OutcomeTransportFailed, false, errors.Errorf("requesting completion: %w", err)
	}

	content, err := prompt.Extract(completion)
	if err != nil {
		return OutcomeExtractionFailed, false, errors.Errorf("extracting content: %w", err)
	}

	if err := tgt.Write(ctx, content); err != nil {
		return outcomeFatal, false, errors.Errorf("writing transformed content: %w", err)
	}

	if r.validator == nil {
		return OutcomeValidated, true, nil
	}

	ok, err := r.validator.Validate(ctx)
	if err != nil {
		return outcomeFatal, true, errors.Errorf("running validator: %w", err)
	}
	if !ok {
		return OutcomeValidationFailed, true, errors.Errorf("validation command rejected the change")
	}

	return OutcomeValidated, true, nil
}
