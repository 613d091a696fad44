package store

import (
	"fmt"
	"log/slog"
	"strings"
)

// badgerLogger routes badger's printf-style logging into slog.
type badgerLogger struct {
	log *slog.Logger
}

func newBadgerLogger(log *slog.Logger) *badgerLogger {
	return &badgerLogger{log: log}
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.log.Error(msg(format, args))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn(msg(format, args))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.log.Info(msg(format, args))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.log.Debug(msg(format, args))
}

// Badger terminates most messages with a newline.
func msg(format string, args []any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
