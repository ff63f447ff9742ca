package verify

import (
	"errors"
	"os/exec"
	"strings"
	"testing"
)

func TestSetEnv(t *testing.T) {
	tests := []struct {
		name string
		env  []string
		want []string
	}{
		{"replace", []string{"PATH=/bin", "PWD=/old", "HOME=/root"}, []string{"PATH=/bin", "PWD=/new", "HOME=/root"}},
		{"append", []string{"PATH=/bin"}, []string{"PATH=/bin", "PWD=/new"}},
		{"duplicates collapse", []string{"PWD=/a", "X=1", "PWD=/b"}, []string{"PWD=/new", "X=1"}},
		{"prefix is not a match", []string{"PWDX=1", "BROKEN"}, []string{"PWDX=1", "BROKEN", "PWD=/new"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := setEnv(tt.env, "PWD", "/new")
			if strings.Join(got, " ") != strings.Join(tt.want, " ") {
				t.Errorf("setEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDescribeExit(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found in PATH")
	}

	err := exec.Command("sh", "-c", "exit 7").Run()
	if got := describeExit("make", err).Error(); got != "make exited with status 7" {
		t.Errorf("describeExit() = %q", got)
	}

	startErr := errors.New("executable file not found")
	if got := describeExit("gmake", startErr); !errors.Is(got, startErr) || !strings.HasPrefix(got.Error(), "cannot run gmake") {
		t.Errorf("describeExit() = %v", got)
	}
}
