//go:build windows

package claude

import (
	"os/exec"
	"syscall"
)

func newSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{}
}

// setupProcessCleanup keeps the default cmd.Cancel (os.Process.Kill);
// there are no POSIX process groups to signal on Windows.
func setupProcessCleanup(cmd *exec.Cmd) {}
