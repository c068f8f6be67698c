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
	"fmt"
	"regexp"

	"gitlab.com/tozd/go/errors"
)

// KindReplace is the discriminator of the pattern substitution operation
const KindReplace = "replace"

func init() {
	Register(KindReplace, decodeReplace)
}

// 🔄 ReplaceSpec is the declared form of a replace operation
type ReplaceSpec struct {
	Regex string // pattern, RE2 syntax with (?P<name>...) groups
	With  string // replacement template
}

type replaceDocument struct {
	Type  string  `json:"type"`
	Regex *string `json:"regex"`
	With  *string `json:"with"`
}

func decodeReplace(raw json.RawMessage) (Params, error) {
	var doc replaceDocument
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	if doc.Regex == nil {
		return nil, errors.New("\"regex\" is required")
	}
	if doc.With == nil {
		return nil, errors.New("\"with\" is required")
	}
	return &ReplaceSpec{Regex: *doc.Regex, With: *doc.With}, nil
}

// 🏗️ Compile implements Params
func (s *ReplaceSpec) Compile() (Operation, error) {
	return NewReplace(s.Regex, s.With)
}

// 🔄 Replace substitutes every non-overlapping match of a pattern with the
// expansion of a template
type Replace struct {
	re       *regexp.Regexp
	template string
}

var _ Operation = (*Replace)(nil)

// 🏭 NewReplace compiles pattern and checks template against its groups
func NewReplace(pattern, template string) (*Replace, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.WithStack(&PatternError{Pattern: pattern, Err: err})
	}
	if err := checkTemplate(re, template); err != nil {
		return nil, err
	}
	return &Replace{re: re, template: template}, nil
}

// Kind implements Operation
func (r *Replace) Kind() string { return KindReplace }

// Pattern returns the source text of the compiled pattern
func (r *Replace) Pattern() string { return r.re.String() }

// Template returns the replacement template
func (r *Replace) Template() string { return r.template }

// Groups returns the named capture groups of the pattern, in order
func (r *Replace) Groups() []string {
	var names []string
	for _, name := range r.re.SubexpNames() {
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Describe implements Operation
func (r *Replace) Describe() string {
	return fmt.Sprintf("regex=%q with=%q", r.re.String(), r.template)
}

// 🔄 Apply implements Operation
func (r *Replace) Apply(text string) string {
	return r.re.ReplaceAllString(text, r.template)
}

// 🔢 ApplyCount implements Operation
func (r *Replace) ApplyCount(text string) (string, int) {
	matches := r.re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, 0
	}

	out := make([]byte, 0, len(text))
	last := 0
	for _, m := range matches {
		out = append(out, text[last:m[0]]...)
		out = r.re.ExpandString(out, r.template, text, m)
		last = m[1]
	}
	out = append(out, text[last:]...)

	return string(out), len(matches)
}
