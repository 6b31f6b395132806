//go:build windows

package process

import (
	"errors"
	"io"
	"os"
	"os/exec"
)

var errPTYUnsupported = errors.New("pty mode is not supported on windows")

// DefaultShell is the host interpreter.
func DefaultShell() []string {
	return []string{"cmd", "/C"}
}

func setProcessGroup(*exec.Cmd) {}

func terminate(p *os.Process) error {
	if p == nil {
		return os.ErrProcessDone
	}
	return p.Kill()
}

func startPTY(*exec.Cmd) (io.ReadCloser, error) {
	return nil, errPTYUnsupported
}
