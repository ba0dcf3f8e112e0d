// SPDX-License-Identifier: MPL-2.0

package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

var (
	// ErrStart is returned when a command could not be started at all.
	ErrStart = errors.New("failed to start command")
	// ErrCommandFailed is the sentinel wrapped by StatusError.
	ErrCommandFailed = errors.New("command failed")
)

type (
	// Status is the terminal state of a child process.
	Status struct {
		// Exited is true when the child called exit, false when it was
		// terminated abnormally (signal, core dump).
		Exited bool
		// Code is the exit code; -1 when the child did not exit normally.
		Code int
		// Signal is the terminating signal, if any.
		Signal os.Signal
	}

	// StatusError reports a child that did not succeed.
	StatusError struct {
		Command string
		Status  Status
	}
)

// Success reports whether the child exited normally with code 0.
func (s Status) Success() bool {
	return s.Exited && s.Code == 0
}

// String describes the status the way a shell would.
func (s Status) String() string {
	switch {
	case s.Exited:
		return fmt.Sprintf("exit status %d", s.Code)
	case s.Signal != nil:
		return "terminated by signal " + s.Signal.String()
	default:
		return "exited abnormally"
	}
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, e.Status)
}

// Unwrap returns ErrCommandFailed so callers can use errors.Is.
func (e *StatusError) Unwrap() error { return ErrCommandFailed }

func statusOf(ps *os.ProcessState) Status {
	return Status{
		Exited: ps.Exited(),
		Code:   ps.ExitCode(),
		Signal: signalOf(ps),
	}
}

// finish converts the result of Run or Wait into a Status. A missing process
// state means the child never ran.
func finish(cmd *exec.Cmd, err error) (Status, error) {
	if cmd.ProcessState == nil {
		if err == nil {
			err = errors.New("process state unavailable")
		}
		return Status{}, fmt.Errorf("%w %s: %w", ErrStart, cmd.Path, err)
	}
	return statusOf(cmd.ProcessState), nil
}
