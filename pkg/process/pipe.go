// SPDX-License-Identifier: MPL-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ErrEmptyPipeline is returned by Pipe when no stages are given.
var ErrEmptyPipeline = errors.New("pipe requires at least one command")

const pipeFailedMessage = "Piped command failed"

// Pipe runs cmds as a pipeline, each stage's standard output feeding the next
// stage's standard input. All stages run concurrently and Pipe returns once
// every stage has terminated. If any stage failed the host exits 1; the
// failing stage's own code is not propagated.
func (r *Runner) Pipe(cmds ...Command) {
	parts := make([]string, len(cmds))
	for i, cmd := range cmds {
		parts[i] = cmd.String()
	}
	r.console.Println("+ " + strings.Join(parts, " | "))

	statuses, err := r.Pipeline(cmds...)
	if err != nil {
		r.console.Fatal(err)
		return
	}
	for _, status := range statuses {
		if !status.Success() {
			r.console.Error(pipeFailedMessage)
			r.console.Exit(1)
			return
		}
	}
}

// Pipeline runs cmds connected by pipes without echoing and returns every
// stage's status in order. The error is non-nil only when a stage could not
// be built or started.
func (r *Runner) Pipeline(cmds ...Command) ([]Status, error) {
	if len(cmds) == 0 {
		return nil, ErrEmptyPipeline
	}

	stages := make([]*exec.Cmd, len(cmds))
	for i, cmd := range cmds {
		c, err := cmd.build(r.shell)
		if err != nil {
			return nil, fmt.Errorf("pipeline stage %d: %w", i+1, err)
		}
		stages[i] = c
	}
	stages[0].Stdin = r.stdin
	stages[len(stages)-1].Stdout = r.console.Out()

	var pipeEnds []*os.File
	closeEnds := func() {
		for _, f := range pipeEnds {
			_ = f.Close()
		}
		pipeEnds = nil
	}

	for i := range stages {
		r.trace("pipe", cmds[i])
	}
	stderr, drainEnd, drained, err := r.pipelineStderr()
	if err != nil {
		return nil, err
	}
	for _, c := range stages {
		c.Stderr = stderr
	}
	if drainEnd != nil {
		pipeEnds = append(pipeEnds, drainEnd)
	}
	for i := 0; i < len(stages)-1; i++ {
		pr, pw, err := os.Pipe()
		if err != nil {
			closeEnds()
			<-drained
			return nil, fmt.Errorf("create pipe: %w", err)
		}
		stages[i].Stdout = pw
		stages[i+1].Stdin = pr
		pipeEnds = append(pipeEnds, pr, pw)
	}

	started := 0
	var startErr error
	for _, c := range stages {
		if err := c.Start(); err != nil {
			_, startErr = finish(c, err)
			break
		}
		started++
	}
	// The children hold their own copies; the parent's must go so that EOF
	// propagates down the pipeline.
	closeEnds()
	if startErr != nil {
		for _, c := range stages[:started] {
			_ = c.Process.Kill()
		}
	}

	statuses := make([]Status, len(stages))
	for i := 0; i < started; i++ {
		status, err := finish(stages[i], stages[i].Wait())
		if err != nil && startErr == nil {
			startErr = err
		}
		statuses[i] = status
	}
	<-drained
	for i := 0; i < started; i++ {
		r.console.Logger().Debug("pipeline stage reaped", "stage", i+1, "status", statuses[i])
	}
	if startErr != nil {
		return nil, startErr
	}
	return statuses, nil
}

// pipelineStderr returns the writer every stage's standard error goes to.
// A file is shared directly. Any other writer is fed from the returned pipe
// end by a single goroutine, so stages never write to it concurrently. The
// channel closes once everything written to the pipe has been copied.
func (r *Runner) pipelineStderr() (io.Writer, *os.File, <-chan struct{}, error) {
	drained := make(chan struct{})
	if f, ok := r.console.Err().(*os.File); ok {
		close(drained)
		return f, nil, drained, nil
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create stderr pipe: %w", err)
	}
	go func() {
		defer close(drained)
		defer pr.Close()
		_, _ = io.Copy(r.console.Err(), pr)
	}()
	return pw, pw, drained, nil
}
