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
	"gopkg.in/yaml.v3"
)

// 🔧 YAMLParser implements the Parser interface for YAML documents
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

// Name implements Parser
func (p *YAMLParser) Name() string { return "yaml" }

// 🔍 CanParse checks if this parser can handle the given file
func (p *YAMLParser) CanParse(filename string) bool {
	return hasExt(filename, ".yaml", ".yml")
}

// 📝 Parse parses a YAML sequence of operation mappings
func (p *YAMLParser) Parse(ctx context.Context, data []byte) ([]operation.Spec, error) {
	var doc []map[string]any
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("parsing YAML: empty document")
		}
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	raw := make([][]byte, 0, len(doc))
	for i, fields := range doc {
		b, err := json.Marshal(fields)
		if err != nil {
			return nil, errors.Errorf("operation %d: normalizing YAML: %w", i, err)
		}
		raw = append(raw, b)
	}
	return decodeObjects(raw)
}
