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
	"fmt"
	"os"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/rxmap/cmd/rxmap/opts"
	"github.com/walteh/rxmap/pkg/log"
	"github.com/walteh/rxmap/pkg/stage"
	"gitlab.com/tozd/go/errors"
)

type checkFlags struct {
	sample     string
	sampleFile string
}

// NewCheckCmd builds the command that validates an operation document
func NewCheckCmd(root *opts.RootOpts) *cobra.Command {
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configured operations",
		Long: `Check compiles every operation the same way the stage does at
initialization and lists them. With --sample it also maps one payload and
prints the canonical result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, root, flags)
		},
	}

	cmd.Flags().StringVar(&flags.sample, "sample", "", "payload to map")
	cmd.Flags().StringVar(&flags.sampleFile, "sample-file", "", "file holding a payload to map")
	cmd.MarkFlagsMutuallyExclusive("sample", "sample-file")

	return cmd
}

func runCheck(cmd *cobra.Command, root *opts.RootOpts, flags *checkFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	params, err := root.Params()
	if err != nil {
		return err
	}

	st := stage.New(stage.Options{})
	if err := st.Init(ctx, params); err != nil {
		return err
	}

	p, err := st.Pipeline()
	if err != nil {
		return err
	}

	data := pterm.TableData{{"#", "KIND", "OPERATION"}}
	for i, op := range p.Operations() {
		data = append(data, []string{strconv.Itoa(i), op.Kind(), op.Describe()})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(out).Render(); err != nil {
		return errors.Errorf("rendering operations: %w", err)
	}
	logger := log.New(out, *zerolog.Ctx(ctx))
	logger.Successf("%d operations compiled", p.Len())

	sample := []byte(flags.sample)
	if flags.sampleFile != "" {
		sample, err = os.ReadFile(flags.sampleFile)
		if err != nil {
			return errors.Errorf("reading sample file: %w", err)
		}
	}
	if len(sample) == 0 {
		return nil
	}

	value, result, err := stage.Transform(p, sample)
	if err != nil {
		return errors.Errorf("mapping sample: %w", err)
	}

	logger.Infof("%d replacements %v", result.Replacements, result.PerOperation)
	fmt.Fprintln(out, string(value))

	return nil
}
