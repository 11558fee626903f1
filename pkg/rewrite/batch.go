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

package rewrite

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// 🏃 Runner drives the batch: one Rewriter invocation per matched file,
// sequentially or through a bounded worker pool. Files are independent,
// so a failing file never stops the rest of the batch.
type Runner struct {
	rewriter *Rewriter
	jobs     int
}

// NewRunner creates a batch runner. jobs values below 1 are treated as 1.
func NewRunner(rewriter *Rewriter, jobs int) *Runner {
	if jobs < 1 {
		jobs = 1
	}
	return &Runner{rewriter: rewriter, jobs: jobs}
}

// Process runs the rewrite state machine for every path and collects the
// terminal results in path order. Errors are recorded per file, never
// propagated early: batch isolation is the point.
func (r *Runner) Process(ctx context.Context, paths []string) []Result {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Int("files", len(paths)).Int("jobs", r.jobs).Msg("starting batch")

	results := make([]Result, len(paths))

	if r.jobs == 1 {
		for i, path := range paths {
			results[i] = r.processOne(ctx, path)
		}
		return results
	}

	// Attempts within a file stay ordered; only whole files run in
	// parallel. The group collects no errors because per-file failures
	// live in their Result.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = r.processOne(gctx, path)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// processOne runs one file and reports its terminal state.
func (r *Runner) processOne(ctx context.Context, path string) Result {
	r.rewriter.reporter.FileStarted(path)
	res := r.rewriter.ProcessFile(ctx, path)

	logger := zerolog.Ctx(ctx)
	switch res.State {
	case StateSucceeded:
		r.rewriter.reporter.FileSucceeded(path, res.Attempts)
		logger.Info().Str("path", path).Int("attempts", res.Attempts).Msg("file rewritten")
	case StateExhaustedRestored:
		r.rewriter.reporter.FileRestored(path, res.Attempts)
		logger.Warn().Str("path", path).Err(res.Err).Msg("retries exhausted, original content restored")
	default:
		r.rewriter.reporter.FileFailed(path, res.Err)
		logger.Error().Str("path", path).Err(res.Err).Msg("file processing failed")
	}

	return res
}
