package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// Logger provides console logging for CLI applications
type Logger struct {
	Level      LogLevel
	ShowEmojis bool
	SilentMode bool

	out io.Writer
	err io.Writer
}

// NewLogger creates a new logger writing to stdout and stderr
func NewLogger() *Logger {
	return NewLoggerWithWriters(os.Stdout, os.Stderr)
}

// NewLoggerWithWriters creates a logger with custom output streams
func NewLoggerWithWriters(out, errOut io.Writer) *Logger {
	return &Logger{
		Level:      LogLevelInfo,
		ShowEmojis: true,
		out:        out,
		err:        errOut,
	}
}

// SetSilentMode enables or disables silent mode
func (l *Logger) SetSilentMode(silent bool) {
	l.SilentMode = silent
}

func (l *Logger) prefix(emoji, plain string) string {
	if l.ShowEmojis {
		return emoji
	}
	return plain
}

// Header prints a formatted header
func (l *Logger) Header(title string) {
	if l.SilentMode {
		return
	}
	fmt.Fprintf(l.out, "\n%s %s\n", l.prefix("🎯", "***"), strings.ToUpper(title))
	fmt.Fprintf(l.out, "%s\n", strings.Repeat("=", len(title)+5))
}

// Section prints a formatted section header
func (l *Logger) Section(title string) {
	if l.SilentMode {
		return
	}
	fmt.Fprintf(l.out, "\n%s %s\n", l.prefix("📋", "---"), title)
	fmt.Fprintf(l.out, "%s\n", strings.Repeat("-", len(title)+5))
}

// Info prints an info message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.SilentMode || l.Level < LogLevelInfo {
		return
	}
	fmt.Fprintf(l.out, "%s  %s\n", l.prefix("ℹ️", "[INFO]"), fmt.Sprintf(format, args...))
}

// Error prints an error message; errors are printed even in silent mode
func (l *Logger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.err, "%s %s\n", l.prefix("❌", "[ERROR]"), fmt.Sprintf(format, args...))
}

// Success prints a success message
func (l *Logger) Success(format string, args ...interface{}) {
	if l.SilentMode {
		return
	}
	fmt.Fprintf(l.out, "%s %s\n", l.prefix("✅", "[SUCCESS]"), fmt.Sprintf(format, args...))
}

// Warn prints a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.Level < LogLevelWarn {
		return
	}
	fmt.Fprintf(l.err, "%s  %s\n", l.prefix("⚠️", "[WARN]"), fmt.Sprintf(format, args...))
}

// Debug prints a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.SilentMode || l.Level < LogLevelDebug {
		return
	}
	fmt.Fprintf(l.out, "%s %s\n", l.prefix("🔍", "[DEBUG]"), fmt.Sprintf(format, args...))
}

// Progress prints a progress message
func (l *Logger) Progress(format string, args ...interface{}) {
	if l.SilentMode {
		return
	}
	fmt.Fprintf(l.out, "%s %s\n", l.prefix("🔄", "[PROGRESS]"), fmt.Sprintf(format, args...))
}

// Quiet prints an indented detail line (only when not in silent mode)
func (l *Logger) Quiet(format string, args ...interface{}) {
	if !l.SilentMode {
		fmt.Fprintf(l.out, "   %s\n", fmt.Sprintf(format, args...))
	}
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ResolvePath resolves a path with smart defaults
func ResolvePath(path, defaultDir, defaultExt string) string {
	if path == "" {
		return ""
	}

	// Add default extension if missing
	if defaultExt != "" && filepath.Ext(path) == "" {
		path += defaultExt
	}

	// Add default directory if no path separators
	if defaultDir != "" && !strings.ContainsAny(path, "/\\") {
		return filepath.Join(defaultDir, path)
	}

	return path
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}

// FormatPercent formats a decimal as a percentage
func FormatPercent(value float64, precision int) string {
	return fmt.Sprintf("%.*f%%", precision, value*100)
}

// EnvLoader provides environment loading utilities
type EnvLoader struct {
	logger *Logger
}

// NewEnvLoader creates a new environment loader
func NewEnvLoader(logger *Logger) *EnvLoader {
	return &EnvLoader{logger: logger}
}

// LoadEnvFile loads environment variables from a file. A missing file is not
// an error, a malformed one is; existing process variables are never overwritten.
func (e *EnvLoader) LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}

	if !FileExists(path) {
		e.logger.Debug("Environment file %s not found, using system environment", path)
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("could not load environment file %s: %w", path, err)
	}

	e.logger.Debug("Environment loaded from %s", path)
	return nil
}

// Global instances for convenience
var (
	DefaultLogger    = NewLogger()
	DefaultEnvLoader = NewEnvLoader(DefaultLogger)
)

// Convenience functions using global instances
func Header(title string)                         { DefaultLogger.Header(title) }
func Section(title string)                        { DefaultLogger.Section(title) }
func Info(format string, args ...interface{})     { DefaultLogger.Info(format, args...) }
func Error(format string, args ...interface{})    { DefaultLogger.Error(format, args...) }
func Success(format string, args ...interface{})  { DefaultLogger.Success(format, args...) }
func Warn(format string, args ...interface{})     { DefaultLogger.Warn(format, args...) }
func Debug(format string, args ...interface{})    { DefaultLogger.Debug(format, args...) }
func Progress(format string, args ...interface{}) { DefaultLogger.Progress(format, args...) }
func Quiet(format string, args ...interface{})    { DefaultLogger.Quiet(format, args...) }

func LoadEnvFile(path string) error { return DefaultEnvLoader.LoadEnvFile(path) }
