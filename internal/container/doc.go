// SPDX-License-Identifier: MPL-2.0

// Package container drives the docker or podman CLI through the process
// runner, so container commands are echoed and fail the host like any other
// command.
package container
