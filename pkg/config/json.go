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

package config

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/walteh/rxmap/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// 🔧 JSONParser implements the Parser interface for JSON documents
type JSONParser struct{}

func init() {
	Register(&JSONParser{})
}

// Name implements Parser
func (p *JSONParser) Name() string { return "json" }

// 🔍 CanParse checks if this parser can handle the given file
func (p *JSONParser) CanParse(filename string) bool {
	return hasExt(filename, ".json")
}

// 📝 Parse parses a JSON list of operation objects
func (p *JSONParser) Parse(ctx context.Context, data []byte) ([]operation.Spec, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("parsing JSON: expected a list of operations")
	}

	var objects []json.RawMessage
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	if err := decoder.Decode(&objects); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("parsing JSON: trailing data after list")
	}

	raw := make([][]byte, len(objects))
	for i, o := range objects {
		raw[i] = o
	}
	return decodeObjects(raw)
}
