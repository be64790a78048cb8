// Package logging configures the shared logrus logger used by every package.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// L is the process-wide logger. Components should derive entries with For.
var L = newLogger(os.Stderr)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// Configure sets the level ("debug", "info", ...) and output format ("text"
// or "json") of L.
func Configure(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	L.SetLevel(lvl)
	switch strings.ToLower(format) {
	case "json":
		L.SetFormatter(&logrus.JSONFormatter{})
	default:
		L.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// For returns an entry tagged with the component name.
func For(component string) *logrus.Entry {
	return L.WithField("component", component)
}

// Discard mutes L. Tests call it to keep output readable.
func Discard() {
	L.SetOutput(io.Discard)
}
