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
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/walteh/rxmap/pkg/record"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&msgpackCodec{})
}

// msgpackCodec reads and writes a stream of {key: bin|nil, value: bin} maps
type msgpackCodec struct{}

type msgpackEnvelope struct {
	Key   []byte `msgpack:"key"`
	Value []byte `msgpack:"value"`
}

func (c *msgpackCodec) Name() string { return "msgpack" }

func (c *msgpackCodec) NewReader(r io.Reader) Reader {
	return &msgpackReader{decoder: msgpack.NewDecoder(bufio.NewReader(r))}
}

func (c *msgpackCodec) NewWriter(w io.Writer) Writer {
	bw := bufio.NewWriter(w)
	return &msgpackWriter{w: bw, encoder: msgpack.NewEncoder(bw)}
}

type msgpackReader struct {
	decoder *msgpack.Decoder
}

func (r *msgpackReader) Read() (record.Record, error) {
	var env msgpackEnvelope
	if err := r.decoder.Decode(&env); err != nil {
		if errors.Is(err, io.EOF) {
			return record.Record{}, io.EOF
		}
		return record.Record{}, errors.Errorf("decoding msgpack envelope: %w", err)
	}
	return record.New(env.Key, env.Value), nil
}

type msgpackWriter struct {
	w       *bufio.Writer
	encoder *msgpack.Encoder
}

func (w *msgpackWriter) Write(rec record.Record) error {
	if err := w.encoder.Encode(msgpackEnvelope{Key: rec.Key, Value: rec.Value}); err != nil {
		return errors.Errorf("encoding msgpack envelope: %w", err)
	}
	return nil
}

func (w *msgpackWriter) Flush() error {
	if err := w.w.Flush(); err != nil {
		return errors.Errorf("flushing msgpack: %w", err)
	}
	return nil
}
