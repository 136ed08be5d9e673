// Package logging provides the logger used across the service. It uses logrus
// under the hood.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

type Logger interface {
	Debugf(format string, args ...any)
	Debug(args ...any)
	Infof(format string, args ...any)
	Info(args ...any)
	Warningf(format string, args ...any)
	Errorf(format string, args ...any)
	Error(args ...any)
	Println(args ...any)
	WithField(key string, value any) *logrus.Entry
	WithFields(fields logrus.Fields) *logrus.Entry
	Writer() *io.PipeWriter
}

func New(w io.Writer, level logrus.Level) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.Formatter = &logrus.TextFormatter{
		FullTimestamp: true,
	}
	return l
}

// ParseLevel maps a verbosity name or number (0 silent .. 5 trace) to a logrus level.
func ParseLevel(v string) (logrus.Level, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0", "silent":
		return logrus.PanicLevel, nil
	case "1", "error":
		return logrus.ErrorLevel, nil
	case "2", "warn", "warning":
		return logrus.WarnLevel, nil
	case "3", "", "info":
		return logrus.InfoLevel, nil
	case "4", "debug":
		return logrus.DebugLevel, nil
	case "5", "trace":
		return logrus.TraceLevel, nil
	}
	return 0, fmt.Errorf("unknown verbosity level %q", v)
}

// Discard returns a logger that drops everything, for tests.
func Discard() Logger {
	return New(io.Discard, logrus.PanicLevel)
}
