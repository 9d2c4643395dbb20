//go:build windows

package core

import "os/exec"

// configureProcess kills the child on cancellation. cmd.exe children share
// the console, so Ctrl-C already reaches them.
func configureProcess(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return cmd.Process.Kill()
	}
}

func forwardInterrupts(cmd *exec.Cmd) func() {
	return func() {}
}
