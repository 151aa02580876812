package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
)

const logFileName = "depot-sync.log"

type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Dir, when set, receives a log file next to the terminal output.
	Dir    string
	Output io.Writer
}

// New builds the run logger. The returned closer releases the log file and
// is never nil.
func New(opts Options) (*log.Logger, io.Closer, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	var out io.Writer = os.Stderr
	if opts.Output != nil {
		out = opts.Output
	}

	var closer io.Closer = nopCloser{}
	if opts.Dir != "" {
		dir, err := homedir.Expand(opts.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to expand log directory: %w", err)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		logFile, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(out, logFile)
		closer = logFile
	}

	return log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Level:           level,
	}), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
