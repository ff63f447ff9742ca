//go:build !unix

package verify

import "os/exec"

func killedBy(*exec.ExitError) (string, bool) {
	return "", false
}
