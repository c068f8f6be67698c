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

package stage

import (
	"github.com/walteh/rxmap/pkg/config"
	"github.com/walteh/rxmap/pkg/integrity"
	"github.com/walteh/rxmap/pkg/metric"
	"github.com/walteh/rxmap/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrUninitializedPipeline is returned by Map before a successful Init
	ErrUninitializedPipeline = errors.Base("pipeline accessed before initialization")

	// ErrAlreadyInitialized is returned by a second Init or Install
	ErrAlreadyInitialized = errors.Base("pipeline already initialized")

	// ErrNonTextPayload is returned for record values that are not UTF-8
	ErrNonTextPayload = errors.Base("record value is not UTF-8 text")
)

// IsConfigurationError reports errors that must stop the stage before any
// record is processed
func IsConfigurationError(err error) bool {
	return errors.Is(err, config.ErrMissingConfiguration) ||
		errors.Is(err, config.ErrInvalidConfiguration) ||
		errors.Is(err, operation.ErrInvalidPattern) ||
		errors.Is(err, operation.ErrInvalidTemplate) ||
		errors.Is(err, operation.ErrUnknownKind)
}

// IsSequencingError reports lifecycle misuse by the host
func IsSequencingError(err error) bool {
	return errors.Is(err, ErrUninitializedPipeline) || errors.Is(err, ErrAlreadyInitialized)
}

// IsRecordError reports errors confined to a single record
func IsRecordError(err error) bool {
	return errors.Is(err, ErrNonTextPayload) || errors.Is(err, integrity.ErrMalformedResultPayload)
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrNonTextPayload):
		return metric.OutcomeNonText
	case errors.Is(err, integrity.ErrMalformedResultPayload):
		return metric.OutcomeMalformed
	case errors.Is(err, ErrUninitializedPipeline):
		return metric.OutcomeUninitialized
	default:
		return "error"
	}
}
