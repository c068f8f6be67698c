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

package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/rxmap/cmd/rxmap/opts"
	"github.com/walteh/rxmap/pkg/envelope"
	"github.com/walteh/rxmap/pkg/host"
	"github.com/walteh/rxmap/pkg/log"
	"github.com/walteh/rxmap/pkg/metric"
	"github.com/walteh/rxmap/pkg/stage"
	"gitlab.com/tozd/go/errors"
)

const stdinSource = "stdin"

type mapFlags struct {
	inputs      []string
	output      string
	format      string
	workers     int
	onError     string
	metricsAddr string
	quiet       bool
}

// NewMapCmd builds the command that streams records through the stage
func NewMapCmd(root *opts.RootOpts) *cobra.Command {
	flags := &mapFlags{}

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Rewrite a record stream with the configured operations",
		Long: `Map reads records from stdin or the files matched by --input, applies
every operation in order to each record value and writes the canonical JSON
result. Record keys are passed through untouched.

Progress is printed to stderr so the record stream on stdout stays clean.`,
		Example: `  rxmap map --spec-file mask.yaml --format jsonl < events.jsonl
  rxmap map --spec '[{"type":"replace","regex":"\\d{3}-\\d{2}-\\d{4}","with":"***-**-****"}]' --input 'logs/**/*.log'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMap(cmd, root, flags)
		},
	}

	cmd.Flags().StringArrayVarP(&flags.inputs, "input", "i", nil, "input files or doublestar globs (default stdin)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "lines", "record format: "+strings.Join(envelope.Names(), ", "))
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 1, "records mapped concurrently")
	cmd.Flags().StringVar(&flags.onError, "on-error", string(host.PolicyHalt), "what to do with records that fail: halt or skip")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "do not print per record progress")

	return cmd
}

func runMap(cmd *cobra.Command, root *opts.RootOpts, flags *mapFlags) error {
	ctx := cmd.Context()
	zlog := zerolog.Ctx(ctx)

	codec := envelope.Get(flags.format)
	if codec == nil {
		return errors.WithDetails(
			errors.Errorf("unknown record format %q", flags.format),
			"known", envelope.Names(),
		)
	}

	policy, err := host.ParsePolicy(flags.onError)
	if err != nil {
		return err
	}

	sources, err := expandInputs(flags.inputs)
	if err != nil {
		return err
	}

	params, err := root.Params()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := metric.New(reg)
	if err != nil {
		return errors.Errorf("creating metrics: %w", err)
	}

	if flags.metricsAddr != "" {
		stop := serveMetrics(ctx, flags.metricsAddr, reg)
		defer stop()
	}

	st := stage.New(stage.Options{Metrics: metrics})
	if err := st.Init(ctx, params); err != nil {
		return err
	}

	console := cmd.ErrOrStderr()
	logger := log.New(console, *zlog)

	runnerOpts := host.Options{
		Stage:   st,
		Workers: flags.workers,
		OnError: policy,
		Metrics: metrics,
	}
	if !flags.quiet {
		runnerOpts.Logger = logger
		logger.Header(fmt.Sprintf("mapping %d source(s) as %s", len(sources), codec.Name()))
	}

	runner, err := host.New(runnerOpts)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	var outFile *os.File
	if flags.output != "" {
		outFile, err = os.Create(flags.output)
		if err != nil {
			return errors.Errorf("creating output file: %w", err)
		}
		out = outFile
	}

	total, err := mapSources(ctx, cmd, runner, logger, codec, sources, codec.NewWriter(out))
	if outFile != nil {
		err = closeOutput(outFile, err)
	}
	if err != nil {
		return err
	}

	if !flags.quiet {
		logger.LogSummary(total)
		if total.Skipped > 0 {
			logger.Warningf("%d of %d records skipped by --on-error=%s", total.Skipped, total.Read, policy)
		}
	}

	return nil
}

func mapSources(ctx context.Context, cmd *cobra.Command, runner *host.Runner, logger *log.Logger, codec envelope.Codec, sources []string, w envelope.Writer) (log.Summary, error) {
	var total log.Summary
	for _, source := range sources {
		summary, err := mapSource(ctx, cmd, runner, logger, codec, source, w)
		total.Read += summary.Read
		total.Mapped += summary.Mapped
		total.Skipped += summary.Skipped
		total.Replacements += summary.Replacements
		if err != nil {
			return total, errors.Errorf("mapping %s: %w", source, err)
		}
	}
	return total, nil
}

// closeOutput closes the output file after the last flush. A failed close is
// an error even when the run succeeded.
func closeOutput(c io.Closer, runErr error) error {
	if err := c.Close(); err != nil {
		if runErr != nil {
			return errors.Errorf("%w (closing output file: %v)", runErr, err)
		}
		return errors.Errorf("closing output file: %w", err)
	}
	return runErr
}

func mapSource(ctx context.Context, cmd *cobra.Command, runner *host.Runner, logger *log.Logger, codec envelope.Codec, source string, w envelope.Writer) (log.Summary, error) {
	logger.StartSourceOperation(ctx, log.SourceOperation{Name: source, Format: codec.Name()})
	defer logger.EndSourceOperation(ctx)

	var in io.Reader = cmd.InOrStdin()
	if source != stdinSource {
		f, err := os.Open(source)
		if err != nil {
			return log.Summary{}, errors.Errorf("opening input: %w", err)
		}
		defer f.Close()
		in = f
	}

	return runner.Run(ctx, codec.NewReader(in), w)
}

// 🔍 expandInputs resolves input globs into a sorted, de-duplicated list of
// files. No inputs means stdin.
func expandInputs(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return []string{stdinSource}, nil
	}

	seen := map[string]bool{}
	var files []string
	for _, pattern := range patterns {
		if pattern == "-" {
			if !seen[stdinSource] {
				seen[stdinSource] = true
				files = append(files, stdinSource)
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("expanding input %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("input %q matched no files", pattern)
		}

		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files, nil
}

// 📈 serveMetrics exposes reg over http until the returned func is called
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) func() {
	zlog := zerolog.Ctx(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
	zlog.Debug().Str("addr", addr).Msg("serving metrics")

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zlog.Warn().Err(err).Msg("stopping metrics server")
		}
	}
}
