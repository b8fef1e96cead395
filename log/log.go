// Package log provides loggers for engine components.
package log

import (
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// DebugEnv is the environment variable that turns on debug logging.
const DebugEnv = "ENGINE_DEBUG"

var debug bool

// Logger is the interface engine components log through. It is satisfied
// by *logrus.Logger and *logrus.Entry.
type Logger interface {
	Debug(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Error(...interface{})
}

func init() {
	var err error
	debug, err = strconv.ParseBool(os.Getenv(DebugEnv))
	if err != nil {
		debug = false
	}
}

// GetLogger returns a new logger instance.
func GetLogger() *logrus.Logger {
	l := logrus.New()
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Silent returns a logger that discards everything. It's used as default
// when component is created without logger.
func Silent() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// With returns an entry of l annotated with a component field. If l is
// not a logrus logger it is returned unchanged.
func With(l Logger, component string) Logger {
	if ll, ok := l.(*logrus.Logger); ok {
		return ll.WithField("component", component)
	}
	return l
}
