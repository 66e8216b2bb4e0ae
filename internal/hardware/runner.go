package hardware

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"settings-service/internal/logger"

	"github.com/google/shlex"
)

// Result is the observed outcome of an external command.
type Result struct {
	ExitCode int
	Output   string
	Err      error
}

func (r Result) Success() bool {
	return r.Err == nil && r.ExitCode == 0
}

// ExecRunner runs configured shell-style command lines.
type ExecRunner struct {
	logger  *logger.Logger
	timeout time.Duration
}

func NewExecRunner(l *logger.Logger, timeout time.Duration) *ExecRunner {
	return &ExecRunner{logger: l, timeout: timeout}
}

// Expand substitutes {dir} in a command template.
func Expand(template, dir string) string {
	return strings.ReplaceAll(template, "{dir}", dir)
}

func (r *ExecRunner) Run(ctx context.Context, command string) Result {
	args, err := shlex.Split(command)
	if err != nil {
		return Result{ExitCode: -1, Err: fmt.Errorf("invalid command %q: %w", command, err)}
	}
	if len(args) == 0 {
		return Result{ExitCode: -1, Err: fmt.Errorf("empty command")}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	r.logger.Infof("Running %q", command)
	out, err := exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput()
	res := Result{Output: strings.TrimSpace(string(out))}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		res.ExitCode = -1
		res.Err = err
	}

	if res.Success() {
		r.logger.Debugf("%s finished", args[0])
	} else {
		r.logger.Warnf("%s exited with %d: %v %s", args[0], res.ExitCode, res.Err, res.Output)
	}
	return res
}
