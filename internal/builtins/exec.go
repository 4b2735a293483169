package builtins

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultCommandTimeout bounds a single cmd call when no timeout is set.
const DefaultCommandTimeout = 30 * time.Second

// Executor runs shell commands on behalf of templates.
type Executor struct {
	// Shell is the interpreter invoked with "-c". Defaults to "sh".
	Shell string
	// Timeout bounds each command. Zero means DefaultCommandTimeout and a
	// negative value disables the limit.
	Timeout time.Duration
	// Env is appended to the process environment.
	Env []string
}

// NewExecutor creates an Executor with default settings.
func NewExecutor() *Executor {
	return &Executor{Shell: "sh", Timeout: DefaultCommandTimeout}
}

// CommandError reports a command that exited unsuccessfully.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q failed with exit code %d", e.Command, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Run executes command through the shell in dir and returns its standard
// output with surrounding whitespace trimmed.
func (e *Executor) Run(ctx context.Context, dir, command string) (string, error) {
	shell := e.Shell
	if shell == "" {
		shell = "sh"
	}

	timeout := e.Timeout
	if timeout == 0 {
		timeout = DefaultCommandTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), e.Env...)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("command %q: %w", command, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &CommandError{
				Command:  command,
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(stderr.String()),
			}
		}
		return "", fmt.Errorf("command %q: %w", command, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}
