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
	"context"
	"encoding/json"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"github.com/walteh/rxmap/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL documents
type HCLParser struct{}

type hclDocument struct {
	Operations []hclOperation `hcl:"operation,block"`
}

type hclOperation struct {
	Kind string   `hcl:"kind,label"`
	Body hcl.Body `hcl:",remain"`
}

// Name implements Parser
func (p *HCLParser) Name() string { return "hcl" }

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return hasExt(filename, ".hcl")
}

// 📝 Parse parses operation blocks in declaration order
func (p *HCLParser) Parse(ctx context.Context, data []byte) ([]operation.Spec, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "spec.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	var doc hclDocument
	diags = gohcl.DecodeBody(hclFile.Body, nil, &doc)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	raw := make([][]byte, 0, len(doc.Operations))
	for i, op := range doc.Operations {
		b, err := normalizeHCLOperation(op)
		if err != nil {
			return nil, errors.Errorf("operation %d: %w", i, err)
		}
		raw = append(raw, b)
	}
	return decodeObjects(raw)
}

// normalizeHCLOperation renders a block as the equivalent JSON object
func normalizeHCLOperation(op hclOperation) ([]byte, error) {
	attrs, diags := op.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	kind, err := json.Marshal(op.Kind)
	if err != nil {
		return nil, errors.Errorf("encoding kind: %w", err)
	}
	fields := map[string]json.RawMessage{"type": kind}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if name == "type" {
			return nil, errors.New("\"type\" is set by the block label")
		}
		attr := attrs[name]
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, errors.Errorf("evaluating %s: %s", name, diags.Error())
		}
		b, err := ctyjson.Marshal(val, val.Type())
		if err != nil {
			return nil, errors.Errorf("encoding %s: %w", name, err)
		}
		fields[name] = b
	}

	b, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Errorf("encoding operation: %w", err)
	}
	return b, nil
}
