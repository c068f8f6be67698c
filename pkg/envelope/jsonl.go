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
	"encoding/json"
	"io"

	"github.com/walteh/rxmap/pkg/record"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&jsonlCodec{})
}

// jsonlCodec reads and writes {"key": "...", "value": <json>} objects, one
// per line. A null or absent key means the record has no key.
type jsonlCodec struct{}

type jsonlEnvelope struct {
	Key   *string         `json:"key"`
	Value json.RawMessage `json:"value"`
}

func (c *jsonlCodec) Name() string { return "jsonl" }

func (c *jsonlCodec) NewReader(r io.Reader) Reader {
	return &jsonlReader{decoder: json.NewDecoder(r)}
}

func (c *jsonlCodec) NewWriter(w io.Writer) Writer {
	bw := bufio.NewWriter(w)
	encoder := json.NewEncoder(bw)
	encoder.SetEscapeHTML(false)
	return &jsonlWriter{w: bw, encoder: encoder}
}

type jsonlReader struct {
	decoder *json.Decoder
}

func (r *jsonlReader) Read() (record.Record, error) {
	var env jsonlEnvelope
	if err := r.decoder.Decode(&env); err != nil {
		if errors.Is(err, io.EOF) {
			return record.Record{}, io.EOF
		}
		return record.Record{}, errors.Errorf("decoding envelope: %w", err)
	}
	if env.Value == nil {
		return record.Record{}, errors.New("decoding envelope: \"value\" is required")
	}

	var key []byte
	if env.Key != nil {
		key = []byte(*env.Key)
	}
	return record.New(key, []byte(env.Value)), nil
}

type jsonlWriter struct {
	w       *bufio.Writer
	encoder *json.Encoder
}

func (w *jsonlWriter) Write(rec record.Record) error {
	env := jsonlEnvelope{Value: json.RawMessage(rec.Value)}
	if rec.HasKey() {
		key := string(rec.Key)
		env.Key = &key
	}
	if err := w.encoder.Encode(env); err != nil {
		return errors.Errorf("encoding envelope: %w", err)
	}
	return nil
}

func (w *jsonlWriter) Flush() error {
	if err := w.w.Flush(); err != nil {
		return errors.Errorf("flushing jsonl: %w", err)
	}
	return nil
}
