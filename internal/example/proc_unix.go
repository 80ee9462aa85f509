//go:build unix

package example

import (
	"os/exec"
	"syscall"
)

// isolateProcessGroup starts the command in its own process group and makes
// cancellation kill the whole group, including the binary started by "go run".
func isolateProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
