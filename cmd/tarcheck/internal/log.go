package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/qiniu/x/log"
	"github.com/spf13/pflag"
)

var (
	logFile  string
	logLevel string
	verbose  bool
)

var logLevels = map[string]int{
	"debug": log.Ldebug,
	"info":  log.Linfo,
	"warn":  log.Lwarn,
	"error": log.Lerror,
}

func addLogFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&logFile, "log", "l", "", "Also append log output to this file")
	flags.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func parseLevel(name string) (int, error) {
	lvl, ok := logLevels[name]
	if !ok {
		return 0, fmt.Errorf("invalid log level %q", name)
	}
	return lvl, nil
}

// setupLog applies the log flags. The returned func restores stderr-only
// logging and closes the log file.
func setupLog() (func(), error) {
	lvl, err := parseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = log.Ldebug
	}
	log.SetOutputLevel(lvl)

	if logFile == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return func() {
		log.SetOutput(os.Stderr)
		f.Close()
	}, nil
}
