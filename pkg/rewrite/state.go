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

import "time"

// 🎯 State is the per-file position in the rewrite state machine.
type State int

const (
	// StateAttempting means the file is still inside its attempt loop.
	StateAttempting State = iota
	// StateSucceeded means an attempt's content is on disk and accepted.
	StateSucceeded
	// StateExhaustedRestored means every attempt was rejected and the
	// original content was written back.
	StateExhaustedRestored
	// StateFailed means a fatal file-level error stopped processing.
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateAttempting:
		return "attempting"
	case StateSucceeded:
		return "succeeded"
	case StateExhaustedRestored:
		return "exhausted (restored)"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state machine has finished.
func (s State) Terminal() bool {
	return s != StateAttempting
}

// 🎲 AttemptOutcome classifies how a single attempt ended.
type AttemptOutcome int

const (
	// OutcomeValidated means the attempt's content is on disk and passed
	// validation (or no validator is configured).
	OutcomeValidated AttemptOutcome = iota
	// OutcomeValidationFailed means the content was written but the
	// validation command exited non-zero.
	OutcomeValidationFailed
	// OutcomeExtractionFailed means the reply had no well-formed
	// delimited content block; nothing was written.
	OutcomeExtractionFailed
	// OutcomeTransportFailed means the completion call itself failed;
	// nothing was written.
	OutcomeTransportFailed
)

// String returns a human-readable outcome name.
func (o AttemptOutcome) String() string {
	switch o {
	case OutcomeValidated:
		return "validated"
	case OutcomeValidationFailed:
		return "validation failed"
	case OutcomeExtractionFailed:
		return "extraction failed"
	case OutcomeTransportFailed:
		return "transport failed"
	default:
		return "unknown"
	}
}

// 📋 Result is the terminal record for one file.
type Result struct {
	// Path is the target file path.
	Path string
	// State is the terminal state reached.
	State State
	// Attempts is how many attempts were consumed.
	Attempts int
	// Duration covers the whole per-file state machine.
	Duration time.Duration
	// Err carries the failure for StateFailed and StateExhaustedRestored.
	Err error
}
