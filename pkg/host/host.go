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

package host

import (
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/rxmap/pkg/envelope"
	"github.com/walteh/rxmap/pkg/log"
	"github.com/walteh/rxmap/pkg/metric"
	"github.com/walteh/rxmap/pkg/pipeline"
	"github.com/walteh/rxmap/pkg/record"
	"github.com/walteh/rxmap/pkg/stage"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidOptions is returned by New for unusable options
var ErrInvalidOptions = errors.Base("invalid runner options")

// 🚦 Policy decides what happens to a record that fails to map
type Policy string

const (
	// PolicyHalt stops the run at the first failing record
	PolicyHalt Policy = "halt"
	// PolicySkip drops failing records and keeps going
	PolicySkip Policy = "skip"
)

// ParsePolicy converts a flag value into a Policy
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PolicyHalt:
		return PolicyHalt, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return "", errors.WithDetails(
			errors.Errorf("%w: unknown error policy %q", ErrInvalidOptions, s),
			"known", []string{string(PolicyHalt), string(PolicySkip)},
		)
	}
}

// 🔧 Options configure a Runner
type Options struct {
	Stage     *stage.Stage
	Workers   int         // concurrent mappers, defaults to 1
	BatchSize int         // records read before mapping, defaults to 32 per worker
	OnError   Policy      // defaults to PolicyHalt
	Logger    *log.Logger // optional console output
	Metrics   *metric.Metrics
}

// 🏃 Runner executes a stage over record streams
type Runner struct {
	stage     *stage.Stage
	workers   int
	batchSize int
	policy    Policy
	logger    *log.Logger
	metrics   *metric.Metrics
}

// 🏗️ New creates a new runner
func New(opts Options) (*Runner, error) {
	if opts.Stage == nil {
		return nil, errors.Errorf("%w: stage is required", ErrInvalidOptions)
	}

	policy, err := ParsePolicy(string(opts.OnError))
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 32 * workers
	}

	return &Runner{
		stage:     opts.Stage,
		workers:   workers,
		batchSize: batchSize,
		policy:    policy,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}, nil
}

type mapped struct {
	rec    record.Record
	result pipeline.Result
	err    error
}

// 🏃 Run maps every record from in and writes the results to out. Records
// before a halting failure are written. The returned summary covers every
// record that was read.
func (r *Runner) Run(ctx context.Context, in envelope.Reader, out envelope.Writer) (log.Summary, error) {
	var summary log.Summary

	if r.stage.State() != stage.Ready {
		return summary, errors.WithStack(stage.ErrUninitializedPipeline)
	}

	logger := zerolog.Ctx(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return summary, errors.Errorf("run cancelled: %w", err)
		}

		batch, readErr := r.readBatch(in)
		base := summary.Read
		summary.Read += len(batch)

		results, err := r.mapBatch(ctx, batch)
		if err != nil {
			return summary, err
		}

		for i, res := range results {
			index := base + i
			op := log.RecordOperation{
				Index:        index,
				Key:          batch[i].Key,
				Replacements: res.result.Replacements,
				Err:          res.err,
			}

			if res.err != nil {
				if r.policy == PolicySkip && stage.IsRecordError(res.err) {
					summary.Skipped++
					r.metrics.RecordSkipped()
					op.Status = "skipped"
					op.IsSkipped = true
					r.logRecord(ctx, op)
					continue
				}
				op.Status = "failed"
				r.logRecord(ctx, op)
				if err := out.Flush(); err != nil {
					logger.Warn().Err(err).Msg("flushing after failure")
				}
				return summary, errors.Errorf("mapping record %d: %w", index, res.err)
			}

			if err := out.Write(res.rec); err != nil {
				return summary, errors.Errorf("writing record %d: %w", index, err)
			}

			summary.Mapped++
			summary.Replacements += res.result.Replacements
			op.Status = "mapped"
			op.IsMapped = true
			r.logRecord(ctx, op)
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			if err := out.Flush(); err != nil {
				logger.Warn().Err(err).Msg("flushing after read failure")
			}
			return summary, errors.Errorf("reading record %d: %w", summary.Read, readErr)
		}
	}

	if err := out.Flush(); err != nil {
		return summary, errors.Errorf("flushing output: %w", err)
	}

	logger.Debug().
		Int("read", summary.Read).
		Int("mapped", summary.Mapped).
		Int("skipped", summary.Skipped).
		Msg("run complete")

	return summary, nil
}

// readBatch reads up to batchSize records. The error is io.EOF at the end
// of the stream and the records read before it are still returned.
func (r *Runner) readBatch(in envelope.Reader) ([]record.Record, error) {
	batch := make([]record.Record, 0, r.batchSize)
	for len(batch) < r.batchSize {
		rec, err := in.Read()
		if err != nil {
			return batch, err
		}
		batch = append(batch, rec)
	}
	return batch, nil
}

// ⚡ mapBatch maps records concurrently and keeps their positions
func (r *Runner) mapBatch(ctx context.Context, batch []record.Record) ([]mapped, error) {
	results := make([]mapped, len(batch))
	if len(batch) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, rec := range batch {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, result, err := r.stage.MapResult(gctx, rec)
			results[i] = mapped{rec: out, result: result, err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Errorf("run cancelled: %w", err)
	}
	return results, nil
}

func (r *Runner) logRecord(ctx context.Context, op log.RecordOperation) {
	if r.logger == nil {
		return
	}
	r.logger.LogRecordOperation(ctx, op)
}
