package probe

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/vcnkl/browserprobe/exec"
	"github.com/vcnkl/browserprobe/logger"
)

type Availability struct {
	Label     string
	Command   string
	Available bool
	Version   string
	Err       error
}

// Checker answers whether a driver or browser command can be invoked, by
// running it with --version under a timeout.
type Checker struct {
	runner  exec.Runner
	timeout time.Duration
}

func NewChecker(runner exec.Runner, timeout time.Duration) *Checker {
	return &Checker{runner: runner, timeout: timeout}
}

func (c *Checker) Check(ctx context.Context, log logger.Logger, label, command string, env []string) Availability {
	result := Availability{Label: label, Command: command}

	out, err := c.runner.Run(ctx, command, []string{"--version"}, &exec.Options{
		Env:     env,
		Timeout: c.timeout,
	})
	if err != nil {
		var statusErr *exec.ExitStatusError
		switch {
		case exec.IsNotFound(err):
			log.Warn(label+" not found in PATH", logger.String("command", command))
		case errors.As(err, &statusErr):
			log.Warn(label+" command failed", logger.String("command", command), logger.Int("exit_code", statusErr.Status))
		case errors.Is(err, exec.ErrTimeout):
			log.Warn(label+" version check timed out", logger.String("command", command), logger.Duration("timeout", c.timeout))
		default:
			log.Error("error checking "+label, logger.String("command", command), logger.Err(err))
		}
		result.Err = err
		return result
	}

	result.Available = true
	result.Version = out.FirstLine()
	log.Info(label+" found", logger.String("version", result.Version))
	return result
}
