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

// Package integrity checks that rewritten payloads are still JSON and
// produces their canonical encoding.
//
// Canonical output has no insignificant whitespace, object keys in sorted
// order, numbers exactly as written in the input, and no HTML escaping.
package integrity

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrMalformedResultPayload is returned when rewritten text is not a single
// well-formed JSON value
var ErrMalformedResultPayload = errors.Base("malformed result payload")

// 🔍 Parse decodes exactly one JSON value from text
func Parse(text string) (any, error) {
	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.UseNumber()

	var v any
	if err := decoder.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.Errorf("%w: empty document", ErrMalformedResultPayload)
		}
		return nil, errors.Errorf("%w: %w", ErrMalformedResultPayload, err)
	}

	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.WithDetails(
			errors.Errorf("%w: trailing data after JSON value", ErrMalformedResultPayload),
			"offset", decoder.InputOffset(),
		)
	}

	return v, nil
}

// 📝 Encode writes v in canonical form
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, errors.Errorf("encoding JSON: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// ✅ Canonicalize parses text and re-encodes it. Malformed text never
// produces output.
func Canonicalize(text string) ([]byte, error) {
	v, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return Encode(v)
}
