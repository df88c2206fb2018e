package probe

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/vcnkl/browserprobe/exec"
	"github.com/vcnkl/browserprobe/models"
)

// ErrPrerequisiteMissing marks a target whose driver, browser or runtime is
// absent. Such targets are skipped, never failed.
var ErrPrerequisiteMissing = errors.New("prerequisite missing")

type Kind string

const (
	KindPrerequisiteMissing  Kind = "prerequisite_missing"
	KindLaunchFailure        Kind = "launch_failure"
	KindVerificationMismatch Kind = "verification_mismatch"
	KindTimeoutExceeded      Kind = "timeout_exceeded"
	KindUnknown              Kind = "unknown"
)

type LaunchError struct {
	Backend models.Backend
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("%s session could not start: %v", e.Backend, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

type MismatchError struct {
	Expected string
	Actual   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("unexpected page title %q, want it to contain %q", e.Actual, e.Expected)
}

func missing(format string, args ...any) error {
	return errors.Wrapf(ErrPrerequisiteMissing, format, args...)
}

// Classify maps an error onto the failure taxonomy. Timeouts win over the
// stage they happened in.
func Classify(err error) Kind {
	var launchErr *LaunchError
	var mismatchErr *MismatchError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, exec.ErrTimeout):
		return KindTimeoutExceeded
	case errors.Is(err, ErrPrerequisiteMissing):
		return KindPrerequisiteMissing
	case errors.As(err, &mismatchErr):
		return KindVerificationMismatch
	case errors.As(err, &launchErr):
		return KindLaunchFailure
	default:
		return KindUnknown
	}
}
