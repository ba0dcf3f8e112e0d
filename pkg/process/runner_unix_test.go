// SPDX-License-Identifier: MPL-2.0

//go:build unix

package process

import (
	"context"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/creack/pty"

	"github.com/pmgmt/pmgmt/internal/testutil"
	"github.com/pmgmt/pmgmt/pkg/console"
)

func TestRunInline_SignalledChildExitsOne(t *testing.T) {
	t.Parallel()

	r, _, errOut := newTestRunner()
	code, exited := testutil.CatchExit(t, func() {
		r.RunInline(Shell("kill -TERM $$"), "")
	})
	if !exited || code != 1 {
		t.Fatalf("got (%d, %v), want (1, true)", code, exited)
	}
	if !strings.Contains(errOut.String(), "Command exited abnormally.") {
		t.Errorf("missing abnormal termination message: %q", errOut.String())
	}
}

func TestRunOrFail_SignalledChildExitsOne(t *testing.T) {
	t.Parallel()

	r, _, errOut := newTestRunner()
	code, exited := testutil.CatchExit(t, func() {
		r.RunOrFail(Shell("kill -KILL $$"), "")
	})
	if !exited || code != 1 {
		t.Fatalf("got (%d, %v), want (1, true)", code, exited)
	}
	if !strings.Contains(errOut.String(), "Command exited abnormally.") {
		t.Errorf("missing abnormal termination message: %q", errOut.String())
	}
}

func TestRun_ReportsSignal(t *testing.T) {
	t.Parallel()

	r, _, _ := newTestRunner()
	status, err := r.Run(context.Background(), Shell("kill -TERM $$"))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if status.Exited || status.Signal != syscall.SIGTERM {
		t.Errorf("Run() status = %+v, want SIGTERM", status)
	}
}

func TestRun_ContextCancelKillsChild(t *testing.T) {
	t.Parallel()

	r, _, _ := newTestRunner()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	status, err := r.Run(ctx, Args("sleep", "5"))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if status.Success() {
		t.Error("killed child should not report success")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Run() took %v after cancellation", elapsed)
	}
}

// Not parallel: the interrupt is delivered to the whole test process.
func TestRunInlineSwallowingInterrupt_HostInterrupt(t *testing.T) {
	r, _, _ := newTestRunner()

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = syscall.Kill(os.Getpid(), syscall.SIGINT)
	}()
	code, exited := testutil.CatchExit(t, func() {
		r.RunInlineSwallowingInterrupt(Shell("sleep 0.5; exit 3"))
	})
	if exited {
		t.Errorf("interrupted run should not propagate, exited with %d", code)
	}
}

func TestRunInlineSwallowingInterrupt_ChildInterrupted(t *testing.T) {
	r, _, errOut := newTestRunner()

	code, exited := testutil.CatchExit(t, func() {
		r.RunInlineSwallowingInterrupt(Shell("kill -INT $$"))
	})
	if exited {
		t.Errorf("interrupted child should not propagate, exited with %d", code)
	}
	if strings.Contains(errOut.String(), "abnormally") {
		t.Errorf("unexpected abnormal termination message: %q", errOut.String())
	}
}

func TestRunInlineSwallowingInterrupt_PropagatesWithoutInterrupt(t *testing.T) {
	r, _, _ := newTestRunner()

	code, exited := testutil.CatchExit(t, func() {
		r.RunInlineSwallowingInterrupt(Shell("exit 5"))
	})
	if !exited || code != 5 {
		t.Errorf("got (%d, %v), want (5, true)", code, exited)
	}
}

func TestRunInline_AttachesTerminal(t *testing.T) {
	t.Parallel()

	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("no pseudo-terminal available: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	var errOut strings.Builder
	c := console.New(console.WithStreams(tty, &errOut), console.WithExit(testutil.Exit))
	r := New(c, WithStdin(tty))

	code, exited := testutil.CatchExit(t, func() {
		r.RunInlineSwallowingInterrupt(Shell("test -t 0 && test -t 1"))
	})
	if exited {
		t.Fatalf("child did not see a terminal, exit %d", code)
	}
	if errOut.String() != "+ test -t 0 && test -t 1\n" {
		t.Errorf("echo = %q", errOut.String())
	}
}
