package log

import (
	"fmt"
	stdlog "log"
)

// Config declares a logger in data form, suitable for loading from
// configuration files or environment variables.
type Config struct {
	// Level is one of debug|info|warn|error|fatal (default info).
	Level string `json:"level" yaml:"level"`
	// Format is text or json (default text).
	Format string `json:"format" yaml:"format"`
	// FilePath, when set, adds a file output alongside the console.
	FilePath string `json:"filePath" yaml:"filePath"`
}

// ApplyConfig builds a Logger from a declarative Config.
func ApplyConfig(cfg *Config) (Logger, error) {
	level := InfoLevel
	if cfg.Level != "" {
		parsed, err := ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	var formatter Formatter
	switch cfg.Format {
	case "", "text":
		formatter = &TextFormatter{}
	case "json":
		formatter = &JSONFormatter{}
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	opts := []LoggerOption{
		WithLevel(level),
		WithFormatter(formatter),
		WithOutput(NewConsoleOutput()),
	}
	if cfg.FilePath != "" {
		fo, err := NewFileOutput(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithOutput(fo))
	}
	return NewLogger(opts...), nil
}

// ToStdLogger returns a *log.Logger that forwards through the facade at
// info level.
func ToStdLogger(l Logger) *stdlog.Logger {
	return stdlog.New(stdWriter{l}, "", 0)
}

// RedirectStdLog routes the standard library's default logger through l.
func RedirectStdLog(l Logger) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(stdWriter{l})
}

type stdWriter struct{ l Logger }

func (w stdWriter) Write(p []byte) (int, error) {
	msg := string(p)
	if n := len(msg); n > 0 && msg[n-1] == '\n' {
		msg = msg[:n-1]
	}
	w.l.Info(msg)
	return len(p), nil
}
