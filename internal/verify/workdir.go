package verify

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goplus/tarcheck/internal/env"
	"github.com/qiniu/x/log"
)

// DefaultPrefix is the name prefix of work directories.
const DefaultPrefix = "tmp"

var errOutsideCwd = errors.New("directory is outside the current directory")

// workDirName returns <prefix>_<unixSeconds>_<pid>. The pid keeps two
// invocations started within the same second apart.
func (v *Verifier) workDirName() string {
	return fmt.Sprintf("%s_%d_%d", v.prefix, v.now().Unix(), v.pid)
}

// createWorkDir creates a fresh work directory under the root. It never
// reuses an existing path. The returned path is set even on error so the
// caller can report it.
func (v *Verifier) createWorkDir() (string, error) {
	root, err := filepath.Abs(v.root)
	if err != nil {
		return v.root, err
	}
	dir := filepath.Join(root, v.workDirName())
	if !v.allowOutside {
		if err := insideCwd(root); err != nil {
			return dir, err
		}
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		return dir, err
	}
	log.Debugf("created work directory %s", dir)
	return dir, nil
}

// insideCwd reports an error unless dir is the current directory or lies
// below it. Work directories are removed recursively, so they are kept
// away from anything the operator did not point at.
func insideCwd(dir string) error {
	cwd, err := env.WorkRoot()
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(cwd, evalSymlinks(dir))
	if err != nil || !filepath.IsLocal(rel) {
		return errOutsideCwd
	}
	return nil
}

func evalSymlinks(path string) string {
	if p, err := filepath.EvalSymlinks(path); err == nil {
		return p
	}
	return path
}

// projectDir returns the directory the build runs in. Tarballs made by
// `make dist` hold a single name-version/ directory; the build runs there.
// Anything else builds in the work directory itself.
func projectDir(workDir string) (string, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(workDir, entries[0].Name()), nil
	}
	return workDir, nil
}

func removeWorkDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.Warnf("failed to remove %s: %v", dir, err)
	}
}
