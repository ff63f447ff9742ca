// Package verify checks that a source tarball expands cleanly and that the
// project inside it builds.
//
// A run extracts the tarball into a fresh work directory, runs the build
// command there and reports the result. The work directory is removed when
// the build succeeds and preserved when it fails, so the operator can look
// at what went wrong.
package verify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goplus/tarcheck/internal/env"
	"github.com/opencontainers/go-digest"
	"github.com/qiniu/x/log"
)

// DefaultUsage is printed when Run is given no tarball and Options.Usage is
// empty.
const DefaultUsage = "usage: tarcheck <tarball>"

// Options configures a Verifier. Zero values select the defaults.
type Options struct {
	// Root is the directory in which the work directory is created.
	// Defaults to the current directory.
	Root string
	// Prefix is the work directory name prefix. Defaults to DefaultPrefix.
	Prefix string
	// BuildCommand is run with no arguments. Defaults to env.BuildCommand().
	BuildCommand string

	// Keep preserves the work directory after a successful run.
	Keep bool
	// AllowOutside permits a Root outside the current directory.
	AllowOutside bool

	// RequireReadme fails the run unless the project has a non-empty README.txt.
	RequireReadme bool
	// Target names a file, relative to the project directory, that must
	// exist after the build.
	Target string

	Stdout io.Writer
	Stderr io.Writer
	Usage  string
}

// Verifier runs the extract-and-build pipeline for one tarball.
type Verifier struct {
	root          string
	prefix        string
	buildCommand  string
	keep          bool
	allowOutside  bool
	requireReadme bool
	target        string
	stdout        io.Writer
	stderr        io.Writer
	usage         string

	now func() time.Time
	pid int
}

// Result describes a finished run.
type Result struct {
	Outcome    Outcome
	WorkDir    string
	ProjectDir string
	Members    int
	Digest     digest.Digest
	TreeHash   string
	Err        error
}

// New creates a Verifier from opts.
func New(opts Options) *Verifier {
	v := &Verifier{
		root:          opts.Root,
		prefix:        opts.Prefix,
		buildCommand:  opts.BuildCommand,
		keep:          opts.Keep,
		allowOutside:  opts.AllowOutside,
		requireReadme: opts.RequireReadme,
		target:        opts.Target,
		stdout:        opts.Stdout,
		stderr:        opts.Stderr,
		usage:         opts.Usage,
		now:           time.Now,
		pid:           os.Getpid(),
	}
	if v.root == "" {
		v.root = "."
	}
	if v.prefix == "" {
		v.prefix = DefaultPrefix
	}
	if v.buildCommand == "" {
		v.buildCommand = env.BuildCommand()
	}
	if v.stdout == nil {
		v.stdout = os.Stdout
	}
	if v.stderr == nil {
		v.stderr = os.Stderr
	}
	if v.usage == "" {
		v.usage = DefaultUsage
	}
	return v
}

// Run verifies tarball. Each stage gates the next; the first failure ends
// the run. The returned error wraps the sentinel for the failing stage and
// is nil only when Result.Outcome is Success.
func (v *Verifier) Run(ctx context.Context, tarball string) (res Result, err error) {
	defer func() {
		res.Outcome = OutcomeOf(err)
		res.Err = err
	}()

	if tarball == "" {
		fmt.Fprintln(v.stdout, v.usage)
		return res, ErrUsage
	}

	workDir, err := v.createWorkDir()
	if err != nil {
		fmt.Fprintf(v.stdout, "Error: cannot create directory %s\n", workDir)
		return res, fmt.Errorf("%w %s: %w", ErrDirCreate, workDir, err)
	}
	res.WorkDir = workDir

	log.Infof("expanding %s into %s", tarball, workDir)
	a, err := extract(tarball, workDir, v.stdout)
	if err != nil {
		fmt.Fprintf(v.stdout, "Error: failed to expand %s: %v\n", tarball, err)
		removeWorkDir(workDir)
		return res, fmt.Errorf("%w %s: %w", ErrExtract, tarball, err)
	}
	res.Members, res.Digest = a.Members, a.Digest
	log.Infof("expanded %d members, tarball digest %s", a.Members, a.Digest)

	project, err := projectDir(workDir)
	if err != nil {
		fmt.Fprintf(v.stdout, "Error: cannot read %s: %v\n", workDir, err)
		removeWorkDir(workDir)
		return res, fmt.Errorf("%w %s: %w", ErrExtract, tarball, err)
	}
	res.ProjectDir = project
	if h, err := treeHash(project); err == nil {
		res.TreeHash = h
		log.Debugf("source tree hash %s", h)
	} else {
		log.Warnf("cannot hash %s: %v", project, err)
	}

	if err := v.runBuild(ctx, workDir, project); err != nil {
		fmt.Fprintln(v.stdout)
		fmt.Fprintln(v.stdout, "The build failed. Resolve the build errors before distributing the tarball.")
		v.reportPreserved(workDir)
		return res, fmt.Errorf("%w: %w", ErrBuild, err)
	}

	if err := v.check(project); err != nil {
		fmt.Fprintln(v.stdout)
		fmt.Fprintf(v.stdout, "The build succeeded but %v.\n", err)
		v.reportPreserved(workDir)
		return res, fmt.Errorf("%w: %w", ErrCheck, err)
	}

	fmt.Fprintln(v.stdout)
	fmt.Fprintln(v.stdout, "Success: the tarball expands and the build succeeds.")
	if v.keep {
		fmt.Fprintf(v.stdout, "Keeping temporary directory %s.\n", workDir)
		return res, nil
	}
	fmt.Fprintf(v.stdout, "Removing temporary directory %s.\n", workDir)
	removeWorkDir(workDir)
	return res, nil
}

func (v *Verifier) reportPreserved(workDir string) {
	fmt.Fprintf(v.stdout, "The temporary directory %s has been preserved for debugging.\n", workDir)
}
