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
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/rxmap/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

const (
	// ParamSpec names the required parameter holding the operation document
	ParamSpec = "spec"

	// ParamSpecFormat names the optional parameter selecting the document format
	ParamSpecFormat = "spec_format"

	// DefaultFormat is used when ParamSpecFormat is absent
	DefaultFormat = "json"
)

var (
	// ErrMissingConfiguration is returned when ParamSpec is not supplied
	ErrMissingConfiguration = errors.Base("missing configuration")

	// ErrInvalidConfiguration is returned when the document is present but
	// is not a list of recognized operation objects
	ErrInvalidConfiguration = errors.Base("invalid configuration")
)

// 🧾 Params are the named string parameters a host passes at initialization
type Params map[string]string

// 🔌 Parser is the interface for operation document parsers
type Parser interface {
	// 🏷️ Name is the value of ParamSpecFormat selecting this parser
	Name() string

	// 📝 Parse parses the document into specs, preserving order
	Parse(ctx context.Context, data []byte) ([]operation.Spec, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns the parser registered under name
func GetParser(name string) Parser {
	for _, p := range parsers {
		if strings.EqualFold(p.Name(), name) {
			return p
		}
	}
	return nil
}

// 🎯 ParserForFile returns a parser that can handle the given file
func ParserForFile(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📋 FromParams parses the operation document carried by params
func FromParams(ctx context.Context, params Params) ([]operation.Spec, error) {
	logger := zerolog.Ctx(ctx)

	raw, ok := params[ParamSpec]
	if !ok {
		return nil, errors.WithDetails(
			errors.Errorf("%w: parameter %q is required", ErrMissingConfiguration, ParamSpec),
			"param", ParamSpec,
		)
	}

	format := DefaultFormat
	if f, ok := params[ParamSpecFormat]; ok && f != "" {
		format = f
	}

	p := GetParser(format)
	if p == nil {
		return nil, errors.Errorf("%w: unknown %s %q", ErrInvalidConfiguration, ParamSpecFormat, format)
	}

	logger.Debug().Str("format", p.Name()).Int("bytes", len(raw)).Msg("parsing operation document")

	specs, err := p.Parse(ctx, []byte(raw))
	if err != nil {
		return nil, errors.Errorf("%w: parameter %q: %w", ErrInvalidConfiguration, ParamSpec, err)
	}

	logger.Debug().Int("operations", len(specs)).Msg("parsed operation document")

	return specs, nil
}

// 📂 ParamsFromFile reads an operation document from disk and returns the
// params a host would pass for it, with the format picked by extension
func ParamsFromFile(path string) (Params, error) {
	p := ParserForFile(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading spec file: %w", err)
	}

	return Params{
		ParamSpec:       string(data),
		ParamSpecFormat: p.Name(),
	}, nil
}

// decodeObjects resolves normalized JSON objects into specs, in order
func decodeObjects(objects [][]byte) ([]operation.Spec, error) {
	specs := make([]operation.Spec, 0, len(objects))
	for i, raw := range objects {
		spec, err := operation.Decode(raw)
		if err != nil {
			return nil, errors.Errorf("operation %d: %w", i, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func hasExt(filename string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
