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
	"context"
	"sync/atomic"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/walteh/rxmap/pkg/config"
	"github.com/walteh/rxmap/pkg/integrity"
	"github.com/walteh/rxmap/pkg/metric"
	"github.com/walteh/rxmap/pkg/pipeline"
	"github.com/walteh/rxmap/pkg/record"
	"gitlab.com/tozd/go/errors"
)

// 🚦 State is the lifecycle state of a Stage
type State int

const (
	Uninitialized State = iota
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// 🔧 Options contains optional collaborators of a Stage
type Options struct {
	// Metrics receives init and record counters; nil disables them
	Metrics *metric.Metrics
}

// 🎯 Stage owns the compiled pipeline and maps records through it
type Stage struct {
	pipeline atomic.Pointer[pipeline.Pipeline]
	metrics  *metric.Metrics
}

// 🏭 New creates an uninitialized stage
func New(opts Options) *Stage {
	return &Stage{metrics: opts.Metrics}
}

// State reports whether a pipeline is installed
func (s *Stage) State() State {
	if s.pipeline.Load() == nil {
		return Uninitialized
	}
	return Ready
}

// 🚀 Init parses the operation document in params, compiles it and installs
// the pipeline. On failure the stage stays uninitialized.
func (s *Stage) Init(ctx context.Context, params config.Params) error {
	logger := zerolog.Ctx(ctx)

	if s.pipeline.Load() != nil {
		s.metrics.InitFailed()
		return errors.WithStack(ErrAlreadyInitialized)
	}

	specs, err := config.FromParams(ctx, params)
	if err != nil {
		s.metrics.InitFailed()
		logger.Error().Err(err).Msg("stage initialization failed")
		return errors.Errorf("initializing stage: %w", err)
	}

	p, err := pipeline.Compile(specs)
	if err != nil {
		s.metrics.InitFailed()
		logger.Error().Err(err).Msg("stage initialization failed")
		return errors.Errorf("initializing stage: %w", err)
	}

	return s.Install(ctx, p)
}

// 📌 Install sets an already compiled pipeline. It succeeds at most once.
func (s *Stage) Install(ctx context.Context, p *pipeline.Pipeline) error {
	if p == nil {
		return errors.New("pipeline is required")
	}
	if !s.pipeline.CompareAndSwap(nil, p) {
		s.metrics.InitFailed()
		return errors.WithStack(ErrAlreadyInitialized)
	}

	s.metrics.InitSucceeded(p.Len())
	zerolog.Ctx(ctx).Debug().Int("operations", p.Len()).Msg("pipeline installed")

	return nil
}

// Pipeline returns the installed pipeline
func (s *Stage) Pipeline() (*pipeline.Pipeline, error) {
	p := s.pipeline.Load()
	if p == nil {
		return nil, errors.WithStack(ErrUninitializedPipeline)
	}
	return p, nil
}

// 🔄 Map transforms one record. The key is passed through unchanged and the
// value is replaced by the canonical JSON of the rewritten payload.
func (s *Stage) Map(ctx context.Context, rec record.Record) (record.Record, error) {
	out, _, err := s.MapResult(ctx, rec)
	return out, err
}

// MapResult is Map that also reports the rewrite statistics
func (s *Stage) MapResult(ctx context.Context, rec record.Record) (record.Record, pipeline.Result, error) {
	p := s.pipeline.Load()
	if p == nil {
		s.metrics.RecordFailed(metric.OutcomeUninitialized)
		return record.Record{}, pipeline.Result{}, errors.WithStack(ErrUninitializedPipeline)
	}

	value, result, err := Transform(p, rec.Value)
	if err != nil {
		s.metrics.RecordFailed(outcome(err))
		return record.Record{}, result, err
	}

	s.metrics.RecordMapped(result.Replacements)
	zerolog.Ctx(ctx).Trace().
		Int("bytes_in", len(rec.Value)).
		Int("bytes_out", len(value)).
		Int("replacements", result.Replacements).
		Msg("record mapped")

	return rec.WithValue(value), result, nil
}

// 🧪 Transform runs p over a raw payload and returns its canonical JSON
func Transform(p *pipeline.Pipeline, value []byte) ([]byte, pipeline.Result, error) {
	if !utf8.Valid(value) {
		return nil, pipeline.Result{}, errors.WithDetails(
			errors.WithStack(ErrNonTextPayload),
			"offset", invalidOffset(value),
		)
	}

	result := p.Run(string(value))

	out, err := integrity.Canonicalize(result.Text)
	if err != nil {
		return nil, result, err
	}

	return out, result, nil
}

func invalidOffset(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
