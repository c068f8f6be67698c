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

package opts

import (
	"github.com/walteh/rxmap/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// RootOpts carries the persistent flags shared by every command
type RootOpts struct {
	Spec       string
	SpecFile   string
	SpecFormat string
	Debug      bool
}

// Params resolves the spec flags into initialization parameters
func (o *RootOpts) Params() (config.Params, error) {
	switch {
	case o.Spec != "" && o.SpecFile != "":
		return nil, errors.Errorf("%w: --spec and --spec-file are mutually exclusive", config.ErrInvalidConfiguration)
	case o.SpecFile != "":
		params, err := config.ParamsFromFile(o.SpecFile)
		if err != nil {
			return nil, err
		}
		if o.SpecFormat != "" {
			params[config.ParamSpecFormat] = o.SpecFormat
		}
		return params, nil
	case o.Spec != "":
		params := config.Params{config.ParamSpec: o.Spec}
		if o.SpecFormat != "" {
			params[config.ParamSpecFormat] = o.SpecFormat
		}
		return params, nil
	default:
		return nil, errors.WithDetails(
			errors.Errorf("%w: one of --spec or --spec-file is required", config.ErrMissingConfiguration),
			"param", config.ParamSpec,
		)
	}
}
