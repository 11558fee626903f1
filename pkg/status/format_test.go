package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatRow(t *testing.T) {
	tests := []struct {
		name         string
		row          Row
		wantContains []string
	}{
		{
			name: "succeeded",
			row: Row{
				Path:     "pkg/foo/bar.go",
				Outcome:  "succeeded",
				Attempts: 1,
				Duration: 1500 * time.Millisecond,
			},
			wantContains: []string{"pkg/foo/bar.go", "succeeded", "1 attempt(s)", "1.5s"},
		},
		{
			name: "exhausted",
			row: Row{
				Path:     "main.go",
				Outcome:  "exhausted (restored)",
				Attempts: 5,
				Duration: 2 * time.Second,
			},
			wantContains: []string{"main.go", "exhausted (restored)", "5 attempt(s)"},
		},
		{
			name: "failed",
			row: Row{
				Path:     "broken.txt",
				Outcome:  "failed",
				Attempts: 0,
				Duration: time.Millisecond,
			},
			wantContains: []string{"broken.txt", "failed", "0 attempt(s)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatRow(tt.row)
			for _, want := range tt.wantContains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestNop_ImplementsReporter(t *testing.T) {
	var r Reporter = Nop()

	// Every method is a no-op; just exercise them.
	r.RunStarted("*.go", 3)
	r.FileStarted("a.go")
	r.AttemptStarted("a.go", 1, 5)
	r.AttemptFailed("a.go", 1, 5, "validation failed")
	r.FileSucceeded("a.go", 2)
	r.FileRestored("a.go", 5)
	r.FileFailed("a.go", nil)
	r.Summary([]Row{{Path: "a.go", Outcome: "succeeded", Attempts: 1}})
}
