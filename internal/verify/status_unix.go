//go:build unix

package verify

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// killedBy reports the name of the signal that terminated the process.
func killedBy(exitErr *exec.ExitError) (string, bool) {
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return "", false
	}
	if name := unix.SignalName(ws.Signal()); name != "" {
		return name, true
	}
	return ws.Signal().String(), true
}
