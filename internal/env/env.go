package env

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultBuildCommand is run when neither --make nor $MAKE names one.
const DefaultBuildCommand = "make"

// BuildCommand returns the build command to run inside an extracted tarball.
// It honors $MAKE the way make(1) does for recursive invocations.
func BuildCommand() string {
	if m := strings.TrimSpace(os.Getenv("MAKE")); m != "" {
		return m
	}
	return DefaultBuildCommand
}

// WorkRoot returns the current directory with symlinks resolved, so that
// paths below it can be compared lexically.
func WorkRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(cwd)
}
