package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
)

// Logger type is interface for available logging methods.
type Logger interface {
	Trace(...interface{})
	Debug(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Error(...interface{})
	Panic(...interface{})
	Fatal(...interface{})
}

// LoggerImpl is a struct that extends sirupsen/logrus.
type LoggerImpl struct {
	Logger         *log.Entry
	Service        string
	LogLevelStr    string
	PrintStackDump bool
}

// NewLogger creates a logger for serviceName at the given level.
// Output is plain text when stderr is a terminal and JSON otherwise, so that runs
// under cron, Lambda or a container produce machine readable lines.
func NewLogger(serviceName string, level string, stackDumpOnPanic bool) (*LoggerImpl, error) {
	logLevel, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("error setting up logging: %w", err)
	}
	l := log.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logLevel)
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&log.JSONFormatter{})
	}
	entry := l.WithFields(log.Fields{
		"service": serviceName,
	})
	return &LoggerImpl{Logger: entry, Service: serviceName, LogLevelStr: level, PrintStackDump: stackDumpOnPanic}, nil
}

// MustNewLogger is NewLogger for the CLI entry points, where a bad level is fatal.
func MustNewLogger(serviceName string, level string, stackDumpOnPanic bool) *LoggerImpl {
	l, err := NewLogger(serviceName, level, stackDumpOnPanic)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return l
}

// WithField returns a copy of the logger that adds key=value to every line.
func (l *LoggerImpl) WithField(key string, value interface{}) *LoggerImpl {
	c := *l
	c.Logger = l.Logger.WithField(key, value)
	return &c
}

func (l *LoggerImpl) Trace(message ...interface{}) {
	l.Logger.Trace(message...)
}

func (l *LoggerImpl) Debug(message ...interface{}) {
	l.Logger.Debug(message...)
}

func (l *LoggerImpl) Info(message ...interface{}) {
	l.Logger.Info(message...)
}

func (l *LoggerImpl) Warn(message ...interface{}) {
	l.Logger.Warn(message...)
}

// Error (with stack trace if the user asked for one).
func (l *LoggerImpl) Error(message ...interface{}) {
	if l.PrintStackDump {
		l.Logger.WithField("stackTrace", string(debug.Stack())).Error(message...)
		return
	}
	l.Logger.Error(message...)
}

// Panic logs and panics when a stack dump is wanted, else it logs and exits.
func (l *LoggerImpl) Panic(message ...interface{}) {
	if l.PrintStackDump || l.LogLevelStr == "trace" {
		l.Logger.WithField("stackTrace", string(debug.Stack())).Panic(message...)
		return
	}
	l.Logger.Fatal(message...)
}

// Fatal causes exit(1) without a stack dump unless running at debug or trace level.
func (l *LoggerImpl) Fatal(message ...interface{}) {
	if l.LogLevelStr == "debug" || l.LogLevelStr == "trace" {
		l.Logger.WithField("stackTrace", string(debug.Stack())).Fatal(message...)
		return
	}
	l.Logger.Fatal(message...)
}

// SetOutput will set the log output to the Writer supplied.
func (l *LoggerImpl) SetOutput(writer io.Writer) {
	l.Logger.Logger.SetOutput(writer)
}

// SetJSON forces the JSON formatter regardless of the terminal check.
func (l *LoggerImpl) SetJSON() {
	l.Logger.Logger.SetFormatter(&log.JSONFormatter{})
}

// NullLogger discards everything. Tests and library callers without a logger use it.
type NullLogger struct{}

func (NullLogger) Trace(...interface{}) {}
func (NullLogger) Debug(...interface{}) {}
func (NullLogger) Info(...interface{})  {}
func (NullLogger) Warn(...interface{})  {}
func (NullLogger) Error(...interface{}) {}
func (NullLogger) Panic(m ...interface{}) {
	panic(fmt.Sprint(m...))
}
func (NullLogger) Fatal(m ...interface{}) {
	panic(fmt.Sprint(m...))
}
