// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/H0llyW00dzZ/tls-trust-manager/src/internal/helper/gc"
)

// Logger defines the interface for logging operations.
//
// The trust manager, the revocation checker and the CLI all log through this
// interface, so embedding applications can plug in their own sink.
type Logger interface {
	// Printf formats and prints a log message.
	Printf(format string, v ...any)
	// Println prints a log message with a newline.
	Println(v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
}

// CLILogger implements Logger using the standard log package.
// It's designed for command-line interface output with human-readable formatting.
type CLILogger struct{ logger *log.Logger }

// NewCLILogger creates a new CLI logger writing to stderr with timestamps
// disabled, leaving stdout to command results.
func NewCLILogger() *CLILogger {
	return &CLILogger{logger: log.New(os.Stderr, "", 0)}
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) { c.logger.Printf(format, v...) }

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) { c.logger.Println(v...) }

// SetOutput sets the output destination for the CLI logger.
func (c *CLILogger) SetOutput(w io.Writer) { c.logger.SetOutput(w) }

// JSONLogger implements Logger by writing one JSON object per line:
//
//	{"level":"info","logger":"trustmanager","message":"..."}
//
// JSONLogger is safe for concurrent use by multiple goroutines.
type JSONLogger struct {
	mu     sync.Mutex
	writer io.Writer
	silent bool
	name   string
}

// NewJSONLogger creates a new JSON logger.
// A silent logger drops every message; a nil writer discards output.
func NewJSONLogger(writer io.Writer, silent bool) *JSONLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &JSONLogger{writer: writer, silent: silent}
}

// Nop returns a logger that discards everything. It is the default for library use.
func Nop() Logger { return NewJSONLogger(nil, true) }

// Named returns a logger sharing l's writer that tags every line with name.
func (l *JSONLogger) Named(name string) *JSONLogger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &JSONLogger{writer: l.writer, silent: l.silent, name: name}
}

type entry struct {
	Level   string `json:"level"`
	Logger  string `json:"logger,omitempty"`
	Message string `json:"message"`
}

// Printf formats and logs a structured message.
// Output is suppressed if silent mode is enabled.
func (l *JSONLogger) Printf(format string, v ...any) {
	if l.silent {
		return
	}
	l.write(fmt.Sprintf(format, v...))
}

// Println logs a structured message.
// Output is suppressed if silent mode is enabled.
func (l *JSONLogger) Println(v ...any) {
	if l.silent {
		return
	}
	l.write(fmt.Sprint(v...))
}

func (l *JSONLogger) write(msg string) {
	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	// Encoder appends the trailing newline.
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entry{Level: "info", Logger: l.name, Message: msg}); err != nil {
		return
	}

	l.mu.Lock()
	_, _ = l.writer.Write(buf.Bytes())
	l.mu.Unlock()
}

// SetOutput sets the output destination for the JSON logger.
//
// SetOutput is safe for concurrent use by multiple goroutines.
func (l *JSONLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		l.writer = io.Discard
	} else {
		l.writer = w
	}
}

// New returns the logger for format writing to w, or stderr when w is nil.
// "json" selects a [JSONLogger] tagged with name, anything else a
// [CLILogger].
func New(format, name string, w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}
	if format == "json" {
		return NewJSONLogger(w, false).Named(name)
	}
	l := NewCLILogger()
	l.SetOutput(w)
	return l
}
