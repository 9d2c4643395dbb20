//go:build !windows

package core

import (
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"
)

// configureProcess starts the child in its own process group, so that
// cancellation also reaches grandchildren holding the output pipes.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		killProcessGroup(cmd)
		return nil
	}
}

func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil || cmd.Process.Pid <= 0 {
		return
	}
	// With Setpgid the group id is the child's pid. A negative pid targets
	// the whole group, even after the leader itself has exited.
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		_ = cmd.Process.Kill()
	}
}

// forwardInterrupts relays Ctrl-C to the child's group, which is no longer
// in the terminal's foreground group. The returned func stops the relay.
func forwardInterrupts(cmd *exec.Cmd) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-sigs:
				_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGINT)
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
		wg.Wait()
	}
}
