package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/calltrace/callpath/callgraph/core"
)

// Logger provides verbosity-gated logging for the CLI. Output goes to
// stderr so stdout stays clean for rendered results.
type Logger struct {
	verbosity VerbosityLevel
	writer    io.Writer
	startTime time.Time
	timings   map[string]time.Duration
}

// NewLogger creates a logger with the specified verbosity.
func NewLogger(verbosity VerbosityLevel) *Logger {
	return NewLoggerWithWriter(verbosity, os.Stderr)
}

// NewLoggerWithWriter creates a logger with a custom writer. Primarily
// used for testing.
func NewLoggerWithWriter(verbosity VerbosityLevel, w io.Writer) *Logger {
	return &Logger{
		verbosity: verbosity,
		writer:    w,
		startTime: time.Now(),
		timings:   make(map[string]time.Duration),
	}
}

// Progress logs high-level progress like "parsing 42 files" (verbose and
// debug modes).
func (l *Logger) Progress(format string, args ...interface{}) {
	if l.verbosity >= VerbosityVerbose {
		fmt.Fprintf(l.writer, format+"\n", args...)
	}
}

// Statistic logs counts and metrics (verbose and debug modes).
func (l *Logger) Statistic(format string, args ...interface{}) {
	if l.verbosity >= VerbosityVerbose {
		fmt.Fprintf(l.writer, format+"\n", args...)
	}
}

// Debug logs diagnostics with an elapsed-time prefix (debug mode only).
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.verbosity >= VerbosityDebug {
		elapsed := time.Since(l.startTime)
		fmt.Fprintf(l.writer, "[%s] %s\n", formatDuration(elapsed), fmt.Sprintf(format, args...))
	}
}

// Warning logs warnings (always shown).
func (l *Logger) Warning(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "%s %s\n", color.YellowString("Warning:"), fmt.Sprintf(format, args...))
}

// Error logs errors (always shown).
func (l *Logger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "%s %s\n", color.RedString("Error:"), fmt.Sprintf(format, args...))
}

// StartTiming begins timing a named stage; the returned func stops it.
func (l *Logger) StartTiming(name string) func() {
	start := time.Now()
	return func() {
		l.timings[name] = time.Since(start)
	}
}

// PrintTimingSummary prints all stage timings (verbose mode only).
func (l *Logger) PrintTimingSummary() {
	if l.verbosity < VerbosityVerbose {
		return
	}
	fmt.Fprintln(l.writer, "\nTiming Summary:")
	for name, duration := range l.timings {
		fmt.Fprintf(l.writer, "  %s: %s\n", name, duration.Round(time.Millisecond))
	}
}

// IsVerbose returns true in verbose or debug mode.
func (l *Logger) IsVerbose() bool {
	return l.verbosity >= VerbosityVerbose
}

// formatDuration formats a duration as MM:SS.mmm.
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
}

// DiagnosticSink adapts the logger to the build's diagnostic stream: in
// verbose mode each recoverable fault prints one line; otherwise faults
// are dropped.
type DiagnosticSink struct {
	logger *Logger
}

// NewDiagnosticSink wraps a logger.
func NewDiagnosticSink(logger *Logger) *DiagnosticSink {
	return &DiagnosticSink{logger: logger}
}

// Emit implements core.DiagnosticSink.
func (s *DiagnosticSink) Emit(d core.Diagnostic) {
	if !s.logger.IsVerbose() {
		return
	}
	switch d.Category {
	case core.FaultResolution:
		s.logger.Progress("unresolved: %s at %s:%d (%s)", d.Callee, d.FilePath, d.Line, d.Message)
	default:
		s.logger.Progress("skipped file: %s (%s)", d.FilePath, d.Message)
	}
}
