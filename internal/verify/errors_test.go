package verify

import (
	"errors"
	"fmt"
	"testing"
)

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		err  error
		want Outcome
	}{
		{nil, Success},
		{ErrUsage, UsageError},
		{fmt.Errorf("%w /tmp/x: exists", ErrDirCreate), DirCreateFailure},
		{fmt.Errorf("%w a.tgz: %w", ErrExtract, errEmptyArchive), ExtractFailure},
		{fmt.Errorf("%w: make exited with status 2", ErrBuild), BuildFailure},
		{fmt.Errorf("%w: README.txt is empty", ErrCheck), CheckFailure},
		{errors.New("other"), BuildFailure},
	}
	for _, tt := range tests {
		if got := OutcomeOf(tt.err); got != tt.want {
			t.Errorf("OutcomeOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestOutcomeString(t *testing.T) {
	if got := ExtractFailure.String(); got != "extraction failure" {
		t.Errorf("ExtractFailure.String() = %q", got)
	}
	if got := Outcome(99).String(); got != "unknown" {
		t.Errorf("Outcome(99).String() = %q", got)
	}
}
