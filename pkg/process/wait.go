// SPDX-License-Identifier: MPL-2.0

package process

import (
	"context"
	"os/exec"
)

// wait starts c and blocks until it terminates. Cancelling ctx kills the child.
func (r *Runner) wait(ctx context.Context, c *exec.Cmd) (Status, error) {
	if err := c.Start(); err != nil {
		return finish(c, err)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = c.Process.Kill()
	})
	defer stop()

	status, err := finish(c, c.Wait())
	if err == nil {
		r.console.Logger().Debug("reaped", "pid", c.Process.Pid, "status", status)
	}
	return status, err
}
