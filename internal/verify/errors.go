package verify

import "errors"

// Outcome is the terminal state of one verification run.
type Outcome int

const (
	Success Outcome = iota
	UsageError
	DirCreateFailure
	ExtractFailure
	BuildFailure
	CheckFailure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case UsageError:
		return "usage error"
	case DirCreateFailure:
		return "directory creation failure"
	case ExtractFailure:
		return "extraction failure"
	case BuildFailure:
		return "build failure"
	case CheckFailure:
		return "check failure"
	}
	return "unknown"
}

var (
	ErrUsage     = errors.New("no tarball given")
	ErrDirCreate = errors.New("cannot create work directory")
	ErrExtract   = errors.New("cannot expand tarball")
	ErrBuild     = errors.New("build failed")
	ErrCheck     = errors.New("post-build check failed")
)

// OutcomeOf maps an error returned by Run back to its Outcome.
// A nil error is Success; an error wrapping no stage sentinel counts as a
// BuildFailure.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, ErrUsage):
		return UsageError
	case errors.Is(err, ErrDirCreate):
		return DirCreateFailure
	case errors.Is(err, ErrExtract):
		return ExtractFailure
	case errors.Is(err, ErrBuild):
		return BuildFailure
	case errors.Is(err, ErrCheck):
		return CheckFailure
	}
	return BuildFailure
}
