// SPDX-License-Identifier: MPL-2.0

// Package process runs external commands for project-automation handlers.
//
// A Command is either an argv token list (Args, never interpreted by a shell)
// or a single shell string (Shell). Shell strings that parse as one plain
// command of literal words naming an executable are run directly; builtins and
// anything using shell syntax (pipes, quoting, expansions, redirections) run
// through the shell.
//
// Runner offers several execution modes:
//   - Run: no echo, returns the terminal Status; never exits the host.
//   - CaptureStdout: returns the child's standard output.
//   - RunInline: echoes, attaches the child to the terminal and mirrors a
//     non-zero exit code as the host's own exit code.
//   - RunInlineSwallowingInterrupt: RunInline for interactive children the
//     user is expected to interrupt.
//   - RunOrFail: echoes, hides output, and on failure prints the captured
//     stderr and mirrors the exit code.
//   - Pipe: connects stages stdout-to-stdin and exits 1 if any stage failed.
//
// Children killed by a signal have no exit code to mirror; the inline and
// fail-fast modes report "Command exited abnormally." and exit 1 instead.
package process
