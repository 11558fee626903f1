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
	"strings"
	"time"

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	rowIndent    = 4  // spaces to indent summary rows
	nameWidth    = 35 // base width for the file path
	outcomeWidth = 22 // width for the outcome text
)

// FormatRow formats one summary row for display.
func FormatRow(row Row) string {
	var prefix string
	switch {
	case strings.HasPrefix(row.Outcome, "succeeded"):
		prefix = color.GreenString("✓")
	case strings.HasPrefix(row.Outcome, "exhausted"):
		prefix = color.YellowString("⟳")
	default:
		prefix = color.RedString("✗")
	}

	namePart := fmt.Sprintf("%-*s", nameWidth, row.Path)
	outcomePart := fmt.Sprintf("%-*s", outcomeWidth, row.Outcome)
	attemptPart := fmt.Sprintf("%d attempt(s)", row.Attempts)

	return fmt.Sprintf("%s%s %s %s %s in %s",
		strings.Repeat(" ", rowIndent),
		prefix,
		namePart,
		outcomePart,
		attemptPart,
		row.Duration.Round(time.Millisecond),
	)
}
