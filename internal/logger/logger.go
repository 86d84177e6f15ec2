package logger

import (
	"context"
	"log"
	"os"
	"strings"
)

// Logger is the leveled logger passed into every component. Context is
// accepted on every call so call sites stay uniform with the rest of
// the codebase even where no context values are consumed yet.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})
}

type implLogger struct {
	logger *log.Logger
	level  int
}

var levels = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
}

// New creates a Logger filtering below the given level. Unknown levels
// fall back to info.
func New(level string) Logger {
	lv, ok := levels[strings.ToLower(level)]
	if !ok {
		lv = levels["info"]
	}
	return &implLogger{
		logger: log.New(os.Stdout, "", log.LstdFlags),
		level:  lv,
	}
}

func (l *implLogger) logf(level int, tag, msg string, args ...interface{}) {
	if level < l.level {
		return
	}
	l.logger.Printf(tag+" "+msg, args...)
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.logf(0, "[DEBUG]", msg, args...)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.logf(1, "[INFO]", msg, args...)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.logf(2, "[WARN]", msg, args...)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.logf(3, "[ERROR]", msg, args...)
}
