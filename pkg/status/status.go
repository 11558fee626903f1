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

// Package status reports per-attempt and per-file progress to the user.
package status

import "time"

// 📣 Reporter receives progress events from the rewrite loop. The console
// implementation prints them; tests use Nop or a recording fake.
type Reporter interface {
	// RunStarted announces the batch: the pattern and how many files matched.
	RunStarted(pattern string, files int)
	// FileStarted announces that a file entered its attempt loop.
	FileStarted(path string)
	// AttemptStarted announces attempt k of max for a file.
	AttemptStarted(path string, attempt, max int)
	// AttemptFailed announces a rejected attempt and why.
	AttemptFailed(path string, attempt, max int, reason string)
	// FileSucceeded announces an accepted rewrite.
	FileSucceeded(path string, attempts int)
	// FileRestored announces an exhausted budget and rollback.
	FileRestored(path string, attempts int)
	// FileFailed announces a fatal per-file error.
	FileFailed(path string, err error)
	// Summary prints the end-of-run table.
	Summary(rows []Row)
}

// 📋 Row is one line of the end-of-run summary.
type Row struct {
	Path     string
	Outcome  string
	Attempts int
	Duration time.Duration
	Err      error
}

// nopReporter discards every event.
type nopReporter struct{}

// Nop returns a Reporter that discards everything.
func Nop() Reporter {
	return nopReporter{}
}

func (nopReporter) RunStarted(string, int)                 {}
func (nopReporter) FileStarted(string)                     {}
func (nopReporter) AttemptStarted(string, int, int)        {}
func (nopReporter) AttemptFailed(string, int, int, string) {}
func (nopReporter) FileSucceeded(string, int)              {}
func (nopReporter) FileRestored(string, int)               {}
func (nopReporter) FileFailed(string, error)               {}
func (nopReporter) Summary([]Row)                          {}
