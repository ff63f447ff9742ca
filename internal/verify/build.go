package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/qiniu/x/log"
)

// Build output is streamed to the operator and also kept in the work
// directory, where it survives a failed build.
const (
	stdoutFile = "make.stdout"
	stderrFile = "make.stderr"
)

// runBuild runs the build command with no arguments in projectDir.
func (v *Verifier) runBuild(ctx context.Context, workDir, projectDir string) error {
	outLog, err := os.Create(filepath.Join(workDir, stdoutFile))
	if err != nil {
		return err
	}
	defer outLog.Close()
	errLog, err := os.Create(filepath.Join(workDir, stderrFile))
	if err != nil {
		return err
	}
	defer errLog.Close()

	log.Infof("running %s in %s", v.buildCommand, projectDir)

	cmd := exec.CommandContext(ctx, v.buildCommand)
	cmd.Dir = projectDir
	cmd.Stdout = io.MultiWriter(v.stdout, outLog)
	cmd.Stderr = io.MultiWriter(v.stderr, errLog)
	cmd.Env = setEnv(os.Environ(), "PWD", projectDir)
	if err := cmd.Run(); err != nil {
		return describeExit(v.buildCommand, err)
	}
	return nil
}

// describeExit turns a failed cmd.Run into an operator-facing error.
func describeExit(name string, err error) error {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("cannot run %s: %w", name, err)
	}
	if sig, ok := killedBy(exitErr); ok {
		return fmt.Errorf("%s killed by signal %s", name, sig)
	}
	return fmt.Errorf("%s exited with status %d", name, exitErr.ExitCode())
}

// setEnv returns env with key set to val. An existing entry is replaced
// in place; otherwise the entry is appended.
func setEnv(env []string, key, val string) []string {
	out := make([]string, 0, len(env)+1)
	found := false
	for _, kv := range env {
		if k, _, ok := strings.Cut(kv, "="); ok && k == key {
			if !found {
				out = append(out, key+"="+val)
				found = true
			}
			continue
		}
		out = append(out, kv)
	}
	if !found {
		out = append(out, key+"="+val)
	}
	return out
}
