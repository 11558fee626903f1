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

package status

import (
	"fmt"
	"sync"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 📢 ConsoleReporter prints user-friendly progress with pterm and mirrors
// every event into zerolog for debugging. Safe for concurrent use: with a
// worker pool several files report at once.
type ConsoleReporter struct {
	mu  sync.Mutex
	log zerolog.Logger
}

// NewConsoleReporter creates a console reporter mirroring into the given
// logger.
func NewConsoleReporter(log zerolog.Logger) *ConsoleReporter {
	return &ConsoleReporter{log: log}
}

// RunStarted implements Reporter.
func (c *ConsoleReporter) RunStarted(pattern string, files int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := fmt.Sprintf("Matched %d file(s) for pattern %q", files, pattern)
	pterm.Info.WithPrefix(pterm.Prefix{Text: "🔍"}).Println(msg)
	c.log.Info().Str("pattern", pattern).Int("files", files).Msg("run started")
}

// FileStarted implements Reporter.
func (c *ConsoleReporter) FileStarted(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pterm.Info.WithPrefix(pterm.Prefix{Text: "📄"}).Println("Processing " + path)
	c.log.Info().Str("path", path).Msg("file started")
}

// AttemptStarted implements Reporter.
func (c *ConsoleReporter) AttemptStarted(path string, attempt, max int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := fmt.Sprintf("%s (attempt %d/%d)", path, attempt, max)
	pterm.Info.WithPrefix(pterm.Prefix{Text: "🔁"}).Println(msg)
	c.log.Debug().Str("path", path).Int("attempt", attempt).Int("max", max).Msg("attempt started")
}

// AttemptFailed implements Reporter.
func (c *ConsoleReporter) AttemptFailed(path string, attempt, max int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := fmt.Sprintf("%s (attempt %d/%d): %s", path, attempt, max, reason)
	pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(msg)
	c.log.Warn().Str("path", path).Int("attempt", attempt).Str("reason", reason).Msg("attempt failed")
}

// FileSucceeded implements Reporter.
func (c *ConsoleReporter) FileSucceeded(path string, attempts int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := fmt.Sprintf("Rewrote %s (%d attempt(s))", path, attempts)
	pterm.Success.WithPrefix(pterm.Prefix{Text: "✨"}).Println(msg)
	c.log.Info().Str("path", path).Int("attempts", attempts).Msg("file succeeded")
}

// FileRestored implements Reporter.
func (c *ConsoleReporter) FileRestored(path string, attempts int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := fmt.Sprintf("Restored %s after %d rejected attempt(s)", path, attempts)
	pterm.Warning.WithPrefix(pterm.Prefix{Text: "↩️"}).Println(msg)
	c.log.Warn().Str("path", path).Int("attempts", attempts).Msg("file restored")
}

// FileFailed implements Reporter.
func (c *ConsoleReporter) FileFailed(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println("Failed " + path)
	if err != nil {
		pterm.Error.Println(err)
	}
	c.log.Error().Str("path", path).Err(err).Msg("file failed")
}

// Summary implements Reporter.
func (c *ConsoleReporter) Summary(rows []Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Println()
	for _, row := range rows {
		fmt.Println(FormatRow(row))
	}
	c.log.Info().Int("files", len(rows)).Msg("run finished")
}
