// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	recordIndent = 4  // spaces to indent record entries
	keyWidth     = 24 // width for the record key column
	statusWidth  = 12 // width for status text
)

// 🎯 RecordOperation represents the outcome of one record for logging
type RecordOperation struct {
	Index        int    // Position of the record in its source
	Key          []byte // Record key, nil when absent
	Status       string // Short status text
	Replacements int    // Number of rewrites applied
	IsMapped     bool   // Whether an output record was produced
	IsSkipped    bool   // Whether the record was dropped by policy
	Err          error  // Failure cause, if any
}

// 📦 SourceOperation represents one record source being processed
type SourceOperation struct {
	Name   string // Source name (file path or "stdin")
	Format string // Envelope format
}

// 📊 Summary is the final tally of a run
type Summary struct {
	Read         int
	Mapped       int
	Skipped      int
	Replacements int
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	mu        sync.Mutex
	currentOp *SourceOperation
	records   int
}

// 🏭 New creates a new logger writing human output to console and
// structured events to zlog
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatRecordOperation formats a record outcome for display
func (l *Logger) formatRecordOperation(op RecordOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.IsMapped && op.Replacements > 0:
		symbol = '⟳'
		symbolColor = color.FgBlue
	case op.IsMapped:
		symbol = '✓'
		symbolColor = color.FgGreen
	case op.IsSkipped:
		symbol = '-'
		symbolColor = color.FgYellow
	default:
		symbol = '✗'
		symbolColor = color.FgRed
	}

	key := "<no key>"
	if op.Key != nil {
		key = string(op.Key)
	}

	line := fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", recordIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("#%-5d", op.Index),
		fmt.Sprintf("%-*s", keyWidth, key),
		fmt.Sprintf("%-*s", statusWidth, op.Status))

	if op.Err != nil {
		line += color.New(color.Faint).Sprint(op.Err.Error())
	}
	return line
}

// 📝 LogRecordOperation logs a record outcome
func (l *Logger) LogRecordOperation(ctx context.Context, op RecordOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records++

	fmt.Fprintln(l.console, l.formatRecordOperation(op))

	event := l.zlog.Info()
	if op.Err != nil {
		event = l.zlog.Warn().Err(op.Err)
	}
	event.
		Int("index", op.Index).
		Bool("has_key", op.Key != nil).
		Str("status", op.Status).
		Bool("is_mapped", op.IsMapped).
		Bool("is_skipped", op.IsSkipped).
		Int("replacements", op.Replacements).
		Msg("record operation")
}

// 📝 StartSourceOperation starts a new source operation
func (l *Logger) StartSourceOperation(ctx context.Context, op SourceOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.records = 0

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Name),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(op.Format))

	l.zlog.Info().
		Str("source", op.Name).
		Str("format", op.Format).
		Msg("starting source")
}

// 📝 EndSourceOperation ends the current source operation
func (l *Logger) EndSourceOperation(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	l.zlog.Info().
		Str("source", l.currentOp.Name).
		Int("records", l.records).
		Msg("source complete")

	l.currentOp = nil
	l.records = 0
}

// 📝 LogSummary logs the final tally
func (l *Logger) LogSummary(s Summary) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "\n%s %d read, %s, %s, %d replacements\n",
		color.New(color.Bold, color.FgCyan).Sprint("rxmap"),
		s.Read,
		color.New(color.FgGreen).Sprintf("%d mapped", s.Mapped),
		color.New(color.FgYellow).Sprintf("%d skipped", s.Skipped),
		s.Replacements)

	l.zlog.Info().
		Int("read", s.Read).
		Int("mapped", s.Mapped).
		Int("skipped", s.Skipped).
		Int("replacements", s.Replacements).
		Msg("run complete")
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("rxmap")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Successf prints a completed step, such as a compiled pipeline
func (l *Logger) Successf(format string, args ...interface{}) {
	l.message("✅", color.FgGreen, zerolog.InfoLevel, fmt.Sprintf(format, args...))
}

// 📝 Warningf prints a condition the run survived, such as dropped records
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.message("⚠️ ", color.FgYellow, zerolog.WarnLevel, fmt.Sprintf(format, args...))
}

// 📝 Infof prints a detail line
func (l *Logger) Infof(format string, args ...interface{}) {
	l.message("ℹ️ ", color.FgCyan, zerolog.InfoLevel, fmt.Sprintf(format, args...))
}

func (l *Logger) message(symbol string, attr color.Attribute, level zerolog.Level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "%s %s\n", symbol, color.New(attr).Sprint(msg))
	l.zlog.WithLevel(level).Msg(msg)
}
