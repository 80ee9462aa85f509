//go:build !unix

package example

import "os/exec"

// isolateProcessGroup is a no-op, cancellation kills the command process only.
func isolateProcessGroup(*exec.Cmd) {}
