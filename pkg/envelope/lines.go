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

package envelope

import (
	"bufio"
	"bytes"
	"io"

	"github.com/walteh/rxmap/pkg/record"
	"gitlab.com/tozd/go/errors"
)

const maxLineSize = 16 << 20

func init() {
	Register(&linesCodec{})
}

// linesCodec treats each non-empty line as the value of an unkeyed record
type linesCodec struct{}

func (c *linesCodec) Name() string { return "lines" }

func (c *linesCodec) NewReader(r io.Reader) Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &linesReader{scanner: scanner}
}

func (c *linesCodec) NewWriter(w io.Writer) Writer {
	return &linesWriter{w: bufio.NewWriter(w)}
}

type linesReader struct {
	scanner *bufio.Scanner
}

func (r *linesReader) Read() (record.Record, error) {
	for r.scanner.Scan() {
		line := bytes.TrimRight(r.scanner.Bytes(), "\r")
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		value := make([]byte, len(line))
		copy(value, line)
		return record.New(nil, value), nil
	}
	if err := r.scanner.Err(); err != nil {
		return record.Record{}, errors.Errorf("reading line: %w", err)
	}
	return record.Record{}, io.EOF
}

type linesWriter struct {
	w *bufio.Writer
}

func (w *linesWriter) Write(rec record.Record) error {
	if _, err := w.w.Write(rec.Value); err != nil {
		return errors.Errorf("writing line: %w", err)
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return errors.Errorf("writing line: %w", err)
	}
	return nil
}

func (w *linesWriter) Flush() error {
	if err := w.w.Flush(); err != nil {
		return errors.Errorf("flushing lines: %w", err)
	}
	return nil
}
