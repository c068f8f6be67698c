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
	"fmt"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrInvalidPattern is returned when a pattern does not compile
	ErrInvalidPattern = errors.Base("invalid pattern")

	// ErrInvalidTemplate is returned when a template references a capture
	// group its pattern does not define
	ErrInvalidTemplate = errors.Base("invalid template")

	// ErrUnknownKind is returned for operation objects with a missing or
	// unregistered "type"
	ErrUnknownKind = errors.Base("unknown operation kind")
)

// ❌ PatternError carries the offending pattern and the engine's syntax error
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrInvalidPattern.Error(), e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() []error {
	return []error{ErrInvalidPattern, e.Err}
}
