// Package logger provides the agnostic logging seam used throughout the
// actix runtime. It deliberately does not depend on any concrete logging
// library: callers wire in whatever they already use (the standard
// library's log.Logger, zap's SugaredLogger, logrus, ...) by satisfying
// the narrow Logger interface below.
package logger

import (
	"fmt"
	"os"
)

// Logger is a simple interface for logging output during the execution
// of the runtime. The function signatures are amongst the most common
// in the main logging packages, so most loggers satisfy this with no
// adapter at all.
type Logger interface {
	// Println is the standard level.
	Println(...interface{})
	// Printf allows formatted, leveled-style messages.
	Printf(string, ...interface{})
}

var logger Logger

// WithLogger sets the Logger used by the runtime; by default log lines
// are written to stderr.
func WithLogger(l Logger) {
	logger = l
}

// stderrLogger is the zero-value default: plain, unbuffered stderr output.
type stderrLogger struct{}

func (stderrLogger) Println(v ...interface{})               { fmt.Fprintln(os.Stderr, v...) }
func (stderrLogger) Printf(format string, v ...interface{}) { fmt.Fprintf(os.Stderr, format+"\n", v...) }

func active() Logger {
	if logger != nil {
		return logger
	}
	return stderrLogger{}
}

// Log writes msg at the default level.
func Log(msg string) {
	active().Println(msg)
}

// Debugf logs a formatted low-priority message. The runtime itself does
// not call it.
func Debugf(format string, args ...interface{}) {
	active().Printf("[debug] "+format, args...)
}

// Infof logs a formatted informational message; the runtime uses this
// when System.SystemExit is called.
func Infof(format string, args ...interface{}) {
	active().Printf("[info] "+format, args...)
}

// Warnf logs a formatted warning; the runtime uses this for an actor
// Context that exits with an error, an envelope with an unknown response
// kind, and an Arbiter that stops with an error.
func Warnf(format string, args ...interface{}) {
	active().Printf("[warn] "+format, args...)
}

// Errorf logs a formatted error; the runtime uses this for handler panics
// recovered by Context.Run.
func Errorf(format string, args ...interface{}) {
	active().Printf("[error] "+format, args...)
}
