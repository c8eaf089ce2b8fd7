// Package logging is a small structured-field wrapper over the standard
// library logger, the same level of ceremony the teacher codebase uses
// (internal/cli reaches for "log" directly rather than a third-party
// logging framework).
package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Logger writes leveled lines prefixed with key=value fields.
type Logger struct {
	out    *log.Logger
	fields []string
}

// New returns a Logger writing to stderr.
func New(component string) *Logger {
	return &Logger{
		out:    log.New(os.Stderr, "", log.LstdFlags),
		fields: []string{"component=" + component},
	}
}

// With returns a derived Logger carrying an extra field.
func (l *Logger) With(key string, value any) *Logger {
	n := &Logger{out: l.out, fields: make([]string, len(l.fields), len(l.fields)+1)}
	copy(n.fields, l.fields)
	n.fields = append(n.fields, fmt.Sprintf("%s=%v", key, value))
	return n
}

func (l *Logger) line(level, msg string) string {
	var b strings.Builder
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(msg)
	for _, f := range l.fields {
		b.WriteByte(' ')
		b.WriteString(f)
	}
	return b.String()
}

// Info logs a successful, expected event.
func (l *Logger) Info(msg string) { l.out.Println(l.line("INFO", msg)) }

// Warn logs a rejected command or a retried operation.
func (l *Logger) Warn(msg string) { l.out.Println(l.line("WARN", msg)) }

// Error logs an unexpected, internal failure.
func (l *Logger) Error(msg string) { l.out.Println(l.line("ERROR", msg)) }
