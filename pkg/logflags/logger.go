package logflags

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger is what the decoder layers log through. Every layer gets its own
// Logger carrying a "layer" field.
type Logger interface {
	WithField(key string, value interface{}) Logger
	WithError(err error) Logger

	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Fields are the structured fields attached to a Logger.
type Fields map[string]interface{}

// LoggerFactory creates the Logger of a layer. out is the destination
// selected with --log-dest, nil for stderr.
type LoggerFactory func(level logrus.Level, fields Fields, out io.Writer) Logger

var loggerFactory LoggerFactory

// SetLoggerFactory replaces the logrus loggers created by this package
// with the ones returned by lf. A nil lf restores the default.
func SetLoggerFactory(lf LoggerFactory) {
	loggerFactory = lf
}

// logrusLogger adapts a logrus entry, whose With methods return entries,
// to Logger.
type logrusLogger struct {
	*logrus.Entry
}

func (l *logrusLogger) WithField(key string, value interface{}) Logger {
	return &logrusLogger{l.Entry.WithField(key, value)}
}

func (l *logrusLogger) WithError(err error) Logger {
	return &logrusLogger{l.Entry.WithError(err)}
}
