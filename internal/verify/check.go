package verify

import (
	"fmt"
	"os"
	"path/filepath"
)

const readmeFile = "README.txt"

// check runs the optional post-build checks against projectDir.
func (v *Verifier) check(projectDir string) error {
	if v.requireReadme {
		info, err := os.Stat(filepath.Join(projectDir, readmeFile))
		if err != nil {
			return fmt.Errorf("%s is missing", readmeFile)
		}
		if info.Size() == 0 {
			return fmt.Errorf("%s is empty", readmeFile)
		}
	}
	if v.target != "" {
		if _, err := os.Stat(filepath.Join(projectDir, v.target)); err != nil {
			return fmt.Errorf("target %s is missing", v.target)
		}
	}
	return nil
}
