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

package operation

import (
	"bytes"
	"encoding/json"
	"sort"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// 🎯 Operation is a compiled rewrite step. Implementations are immutable
// once built and safe for concurrent use.
type Operation interface {
	// Kind returns the discriminator the operation was declared with
	Kind() string

	// Apply rewrites text and returns the result
	Apply(text string) string

	// ApplyCount rewrites text and reports how many rewrites happened
	ApplyCount(text string) (string, int)

	// Describe returns a short human readable form for listings
	Describe() string
}

// 🔧 Params holds the kind-specific, not yet validated, half of a Spec
type Params interface {
	Compile() (Operation, error)
}

// 📦 Spec is the declarative form of one operation
type Spec struct {
	Kind   string
	Params Params
}

// 🏗️ Compile validates the spec and builds its Operation
func (s Spec) Compile() (Operation, error) {
	if s.Params == nil {
		return nil, errors.Errorf("%w: %q has no params", ErrUnknownKind, s.Kind)
	}
	return s.Params.Compile()
}

// 🔌 Decoder turns one raw operation object into the params of its kind
type Decoder func(raw json.RawMessage) (Params, error)

var (
	kindsMu sync.RWMutex
	kinds   = map[string]Decoder{}
)

// 📝 Register makes a kind available to Decode
func Register(kind string, d Decoder) {
	kindsMu.Lock()
	defer kindsMu.Unlock()
	if _, ok := kinds[kind]; ok {
		panic("operation kind registered twice: " + kind)
	}
	kinds[kind] = d
}

// 📋 Kinds lists the registered kinds in sorted order
func Kinds() []string {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	out := make([]string, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// 🔍 Decode reads the "type" discriminator of a raw operation object and
// hands the object to the matching kind decoder
func Decode(raw json.RawMessage) (Spec, error) {
	var header struct {
		Type *string `json:"type"`
	}
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&header); err != nil {
		return Spec{}, errors.Errorf("reading operation object: %w", err)
	}
	if header.Type == nil {
		return Spec{}, errors.Errorf("%w: missing \"type\" field", ErrUnknownKind)
	}

	kindsMu.RLock()
	d, ok := kinds[*header.Type]
	kindsMu.RUnlock()
	if !ok {
		return Spec{}, errors.WithDetails(
			errors.Errorf("%w: %q", ErrUnknownKind, *header.Type),
			"known", Kinds(),
		)
	}

	params, err := d(raw)
	if err != nil {
		return Spec{}, errors.Errorf("decoding %s operation: %w", *header.Type, err)
	}

	return Spec{Kind: *header.Type, Params: params}, nil
}
