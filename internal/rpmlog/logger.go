// Package rpmlog provides the category-based leveled logger used throughout
// the transaction set core. Output goes to a log file when one is
// configured, otherwise to stderr, matching the severities the spec assigns
// to lock, database, keyring and label-parse failures.
package rpmlog

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Category is the severity of a log line.
type Category int

const (
	Error Category = iota
	Warning
	Info
	Debug
)

func (c Category) String() string {
	switch c {
	case Error:
		return "ERROR"
	case Warning:
		return "WARNING"
	case Info:
		return "INFO"
	case Debug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// Logger writes categorized messages to an underlying *log.Logger. The zero
// value writes to stderr with debug output suppressed.
type Logger struct {
	out   *log.Logger
	debug bool
}

// New returns a Logger that writes to w.
func New(w io.Writer) *Logger {
	return &Logger{out: log.New(w, "", log.LstdFlags)}
}

// SetDebug enables or disables Debugf output.
func (l *Logger) SetDebug(enabled bool) {
	l.debug = enabled
}

func (l *Logger) logger() *log.Logger {
	if l == nil || l.out == nil {
		return log.New(os.Stderr, "", log.LstdFlags)
	}
	return l.out
}

func (l *Logger) logf(cat Category, format string, a ...interface{}) {
	l.logger().Printf("%s %s", cat, fmt.Sprintf(format, a...))
}

// Infof logs an informational message.
func (l *Logger) Infof(format string, a ...interface{}) {
	l.logf(Info, format, a...)
}

// Warningf logs a warning, used for non-fatal key lint messages and unknown
// configuration values.
func (l *Logger) Warningf(format string, a ...interface{}) {
	l.logf(Warning, format, a...)
}

// Errorf logs an error, optionally wrapping an underlying error. Database
// open/init/rebuild/verify failures and fatal key lint failures are logged
// here with the resolved path or message already formatted into format/a.
func (l *Logger) Errorf(err error, format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	if err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err)
	}
	l.logf(Error, "%s", msg)
}

// Debugf logs a debug message only when debug output is enabled.
func (l *Logger) Debugf(format string, a ...interface{}) {
	if l != nil && l.debug {
		l.logf(Debug, format, a...)
	}
}

// Default is the package-level logger used by call sites that don't carry
// one of their own. It writes to stderr until redirected with SetOutput.
var Default = New(os.Stderr)

// SetOutput redirects the default logger's output, e.g. to an opened log
// file. It mirrors the teacher's InitLogFile, minus the package-global
// flags that drove it.
func SetOutput(w io.Writer) {
	Default = New(w)
}
