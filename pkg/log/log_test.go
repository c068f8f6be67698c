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
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "log_source_operation",
			op: func(t *testing.T, logger *Logger) {
				logger.StartSourceOperation(context.Background(), SourceOperation{
					Name:   "events/2025-01.jsonl",
					Format: "jsonl",
				})
				logger.EndSourceOperation(context.Background())
			},
			wantLogs: []string{
				"◆ events/2025-01.jsonl • jsonl",
			},
		},
		{
			name: "log_run_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("mapping 2 sources as jsonl")
				logger.Successf("%d operations compiled", 3)
				logger.Infof("%d replacements %v", 4, []int{3, 1, 0})
				logger.Warningf("%d records skipped", 2)
			},
			wantLogs: []string{
				"rxmap • mapping 2 sources as jsonl",
				"",
				"✅ 3 operations compiled",
				"ℹ️  4 replacements [3 1 0]",
				"⚠️  2 records skipped",
			},
		},
		{
			name: "log_summary",
			op: func(t *testing.T, logger *Logger) {
				logger.LogSummary(Summary{Read: 5, Mapped: 4, Skipped: 1, Replacements: 7})
			},
			wantLogs: []string{
				"rxmap 5 read, 4 mapped, 1 skipped, 7 replacements",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Nop())

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestLoggerContext(t *testing.T) {
	logger := New(io.Discard, zerolog.Nop())

	ctx := NewContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx), "logger from context should be the same instance")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when logger is missing")
}

func TestRecordOperationFormatting(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name string
		op   RecordOperation
		want []string
	}{
		{
			name: "mapped_unchanged",
			op:   RecordOperation{Index: 0, Key: []byte("k1"), Status: "mapped", IsMapped: true},
			want: []string{"✓", "#0", "k1", "mapped"},
		},
		{
			name: "mapped_with_replacements",
			op:   RecordOperation{Index: 3, Status: "mapped", IsMapped: true, Replacements: 2},
			want: []string{"⟳", "#3", "<no", "key>", "mapped"},
		},
		{
			name: "skipped",
			op:   RecordOperation{Index: 7, Key: []byte("k7"), Status: "skipped", IsSkipped: true, Err: errors.New("bad")},
			want: []string{"-", "#7", "k7", "skipped", "bad"},
		},
		{
			name: "failed",
			op:   RecordOperation{Index: 9, Key: []byte("k9"), Status: "failed", Err: errors.New("boom")},
			want: []string{"✗", "#9", "k9", "failed", "boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Nop())

			logger.LogRecordOperation(context.Background(), tt.op)

			assert.Equal(t, tt.want, strings.Fields(buf.String()))
		})
	}
}

func TestLogger_StructuredEvents(t *testing.T) {
	events := &bytes.Buffer{}
	logger := New(io.Discard, zerolog.New(events))

	logger.LogRecordOperation(context.Background(), RecordOperation{Index: 1, Key: []byte("k"), Status: "mapped", IsMapped: true, Replacements: 4})

	out := events.String()
	assert.Contains(t, out, `"replacements":4`)
	assert.Contains(t, out, `"has_key":true`)
	assert.Contains(t, out, `"message":"record operation"`)

	events.Reset()
	logger.Warningf("%d records skipped", 5)
	assert.Contains(t, events.String(), `"level":"warn"`)
	assert.Contains(t, events.String(), `"message":"5 records skipped"`)
}
