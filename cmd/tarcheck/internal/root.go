package internal

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goplus/tarcheck/internal/env"
	"github.com/goplus/tarcheck/internal/verify"
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

var (
	workRoot      string
	workPrefix    string
	buildCommand  string
	keepWorkDir   bool
	allowOutside  bool
	requireReadme bool
	buildTarget   string
)

var rootCmd = &cobra.Command{
	Use:   "tarcheck [flags] <tarball>",
	Short: "tarcheck verifies that a source tarball expands and builds",
	Long: `tarcheck expands a source tarball into a fresh temporary directory and runs
the build command there. On success the directory is removed; on failure it
is kept so the broken build can be inspected.`,
	Args:          usageArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runCheck,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&workRoot, "dir", "d", ".", "Directory in which the temporary directory is created")
	flags.StringVarP(&workPrefix, "prefix", "p", verify.DefaultPrefix, "Name prefix of the temporary directory")
	flags.StringVarP(&buildCommand, "make", "m", env.BuildCommand(), "Build command run with no arguments")
	flags.BoolVarP(&keepWorkDir, "keep", "k", false, "Keep the temporary directory after a successful build")
	flags.BoolVar(&allowOutside, "allow-outside", false, "Allow --dir outside the current directory")
	flags.BoolVar(&requireReadme, "readme", false, "Require a non-empty README.txt in the project")
	flags.StringVarP(&buildTarget, "target", "t", "", "File that must exist after the build")
	addLogFlags(flags)
}

// Execute runs the root command and exits non-zero on any failure.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		log.Fatal(err)
	}
}

// usageArgs accepts at most one tarball. A missing tarball is reported by
// the verifier itself so it can print usage.
func usageArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), cmd.UsageString())
		return fmt.Errorf("%w: %w", verify.ErrUsage, err)
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	closeLog, err := setupLog()
	if err != nil {
		return err
	}
	defer closeLog()

	var tarball string
	if len(args) > 0 {
		tarball = args[0]
	}

	v := verify.New(verify.Options{
		Root:          workRoot,
		Prefix:        workPrefix,
		BuildCommand:  buildCommand,
		Keep:          keepWorkDir,
		AllowOutside:  allowOutside,
		RequireReadme: requireReadme,
		Target:        buildTarget,
		Stdout:        cmd.OutOrStdout(),
		Stderr:        cmd.ErrOrStderr(),
		Usage:         cmd.UsageString(),
	})
	res, err := v.Run(cmd.Context(), tarball)
	if err != nil {
		return err
	}
	log.Debugf("%s: %s, %d members, tree %s", tarball, res.Outcome, res.Members, res.TreeHash)
	return nil
}
