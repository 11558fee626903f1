// Package validate runs the user-supplied validation command and reports
// whether the working tree passes.
package validate

import (
	"context"
	"os"
	"os/exec"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Validator reports whether the current working tree is acceptable.
// A nil Validator in callers means validation is disabled.
type Validator interface {
	// Validate runs the check. The boolean is the verdict; the error is
	// reserved for failures to run the check at all.
	Validate(ctx context.Context) (bool, error)
}

// ShellValidator runs a shell command and maps its exit status to a
// verdict. Only the exit status matters; output passes through to the
// user untouched.
type ShellValidator struct {
	command string
}

// NewShellValidator creates a validator for the given command string.
func NewShellValidator(command string) (*ShellValidator, error) {
	if command == "" {
		return nil, errors.Errorf("validation command is required")
	}
	return &ShellValidator{command: command}, nil
}

// Validate implements Validator by running `sh -c <command>`. Exit zero is
// a pass, any non-zero exit is a clean fail. Errors are returned only when
// the command could not be started.
func (v *ShellValidator) Validate(ctx context.Context) (bool, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("command", v.command).Msg("running validation command")

	cmd := exec.CommandContext(ctx, "sh", "-c", v.command)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Debug().Int("exit_code", exitErr.ExitCode()).Msg("validation command failed")
			return false, nil
		}
		return false, errors.Errorf("running validation command: %w", err)
	}

	return true, nil
}
