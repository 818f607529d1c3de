package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hiveworks/hive/internal/errors"
)

// Levels accepted by New. Anything else falls back to info.
var logLevels = map[string]zerolog.Level{
	"trace": zerolog.TraceLevel,
	"debug": zerolog.DebugLevel,
	"info":  zerolog.InfoLevel,
	"warn":  zerolog.WarnLevel,
	"error": zerolog.ErrorLevel,
}

// Options configures the logger built by New.
type Options struct {
	// Level is the minimum level written. Unknown values fall back to
	// info.
	Level string

	// File is the rotating log file path. Empty disables file output.
	File string

	// Console enables human-readable output on stderr.
	Console bool

	// MaxSizeMB is the file size that triggers rotation.
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept.
	MaxBackups int
}

// New builds the hive logger from the options. File output is wrapped
// in a FilteringWriter so credentials never land on disk; closing the
// returned closer flushes the file writer. The closer is nil when no
// file output is configured.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, ok := logLevels[opts.Level]
	if !ok {
		level = zerolog.InfoLevel
	}

	var writers []io.Writer
	if opts.Console {
		writers = append(writers, consoleWriter())
	}

	var closer io.Closer
	if opts.File != "" {
		fw, err := newFileWriter(opts)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		writers = append(writers, fw)
		closer = fw
	}

	if len(writers) == 0 {
		return zerolog.Nop(), nil, nil
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		Hook(NewSensitiveDataHook()).
		With().Timestamp().Logger()
	return logger, closer, nil
}

// consoleWriter returns a color console writer for a TTY and plain
// JSON on stderr otherwise, honoring NO_COLOR.
func consoleWriter() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	}
	return os.Stderr
}

// filteringFileWriter pairs a FilteringWriter with the underlying
// rotating file so both Write and Close reach the right layer.
type filteringFileWriter struct {
	filter *FilteringWriter
	file   *lumberjack.Logger
}

func (w *filteringFileWriter) Write(p []byte) (int, error) { return w.filter.Write(p) }

func (w *filteringFileWriter) Close() error { return w.file.Close() }

func newFileWriter(opts Options) (*filteringFileWriter, error) {
	if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
		return nil, errors.Wrapf(err, "create log directory for %s", opts.File)
	}

	lj := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}
	return &filteringFileWriter{
		filter: NewFilteringWriter(lj),
		file:   lj,
	}, nil
}
