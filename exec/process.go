package exec

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	osexec "os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bitfield/script"
	"github.com/pkg/errors"
)

// ErrTimeout is returned when a command does not finish within its
// Options.Timeout.
var ErrTimeout = errors.New("command timed out")

var emptyLine = regexp.MustCompile(`^\s*$`)

type Options struct {
	Env     []string
	Timeout time.Duration
	Stdout  io.Writer
	Stderr  io.Writer
}

type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// FirstLine returns the first non-empty line of stdout.
func (o *Output) FirstLine() string {
	if o == nil {
		return ""
	}
	line, err := script.Echo(o.Stdout).RejectRegexp(emptyLine).First(1).String()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

type ExitStatusError struct {
	Command string
	Status  int
}

func (e *ExitStatusError) Error() string {
	return e.Command + " exited with status " + strconv.Itoa(e.Status)
}

type Runner interface {
	Run(ctx context.Context, name string, args []string, opts *Options) (*Output, error)
}

type CommandRunner struct {
	// WaitDelay bounds how long Run waits for output pipes after the
	// process is killed on timeout.
	WaitDelay time.Duration
}

func NewCommandRunner() *CommandRunner {
	return &CommandRunner{WaitDelay: 2 * time.Second}
}

func (r *CommandRunner) Run(ctx context.Context, name string, args []string, opts *Options) (*Output, error) {
	if opts == nil {
		opts = &Options{}
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := osexec.CommandContext(ctx, name, args...)
	cmd.Env = opts.Env
	cmd.Stdout = teeTo(&stdout, opts.Stdout)
	cmd.Stderr = teeTo(&stderr, opts.Stderr)
	cmd.WaitDelay = r.WaitDelay

	err := cmd.Run()
	out := &Output{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}

	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return out, errors.Wrapf(ErrTimeout, "%s did not finish within %s", name, opts.Timeout)
	}
	if err != nil {
		var exitErr *osexec.ExitError
		if errors.As(err, &exitErr) {
			return out, &ExitStatusError{Command: name, Status: exitErr.ExitCode()}
		}
		return out, errors.Wrapf(err, "failed to run %s", name)
	}

	return out, nil
}

// IsNotFound reports whether err means the executable does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, osexec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

func FileExists(path string) bool {
	if path == "" {
		return false
	}
	return script.IfExists(path).Error() == nil
}

func teeTo(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}
