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
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

// 🔗 TemplateRef is one capture reference found in a replacement template
type TemplateRef struct {
	Name  string // raw reference text without $ or braces
	Index int    // group number, or -1 for a named reference
}

// 🔍 TemplateRefs lists the capture references of template, using the same
// rules as regexp.Regexp.Expand. Malformed references such as "${" are
// literal text and are not returned.
func TemplateRefs(template string) []TemplateRef {
	var refs []TemplateRef
	for {
		i := strings.IndexByte(template, '$')
		if i < 0 {
			return refs
		}
		template = template[i+1:]
		if strings.HasPrefix(template, "$") {
			template = template[1:]
			continue
		}
		name, num, rest, ok := extractRef(template)
		if !ok {
			continue
		}
		refs = append(refs, TemplateRef{Name: name, Index: num})
		template = rest
	}
}

// extractRef mirrors the reference grammar of regexp.Regexp.Expand
func extractRef(s string) (name string, num int, rest string, ok bool) {
	if s == "" {
		return "", 0, "", false
	}
	brace := false
	if s[0] == '{' {
		brace = true
		s = s[1:]
	}
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		i += size
	}
	if i == 0 {
		return "", 0, "", false
	}
	name = s[:i]
	if brace {
		if i >= len(s) || s[i] != '}' {
			return "", 0, "", false
		}
		i++
	}

	num = -1
	if n, err := strconv.Atoi(name); err == nil && n >= 0 && n < 1e8 && strconv.Itoa(n) == name {
		num = n
	}

	return name, num, s[i:], true
}

// checkTemplate rejects references to groups re does not define
func checkTemplate(re *regexp.Regexp, template string) error {
	names := re.SubexpNames()
	for _, ref := range TemplateRefs(template) {
		if ref.Index >= 0 {
			if ref.Index > re.NumSubexp() {
				return errors.WithDetails(
					errors.Errorf("%w: group %d is not defined by %q (%d groups)", ErrInvalidTemplate, ref.Index, re.String(), re.NumSubexp()),
					"template", template,
				)
			}
			continue
		}
		if !containsName(names, ref.Name) {
			return errors.WithDetails(
				errors.Errorf("%w: group %q is not defined by %q", ErrInvalidTemplate, ref.Name, re.String()),
				"template", template,
			)
		}
	}
	return nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n != "" && n == name {
			return true
		}
	}
	return false
}
