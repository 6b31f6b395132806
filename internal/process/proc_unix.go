//go:build !windows

package process

import (
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
)

// DefaultShell is the host interpreter.
func DefaultShell() []string {
	return []string{"sh", "-c"}
}

func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// terminate signals the whole process group so children of the shell
// are reached too.
func terminate(p *os.Process) error {
	if p == nil {
		return os.ErrProcessDone
	}
	err := syscall.Kill(-p.Pid, syscall.SIGTERM)
	if err == syscall.ESRCH {
		return os.ErrProcessDone
	}
	return err
}

// startPTY starts cmd as a session leader on a new pseudo-terminal.
func startPTY(cmd *exec.Cmd) (io.ReadCloser, error) {
	cmd.Cancel = func() error { return terminate(cmd.Process) }
	return pty.StartWithSize(cmd, &pty.Winsize{Rows: 24, Cols: 120})
}
