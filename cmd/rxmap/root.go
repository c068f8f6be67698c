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

package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/rxmap/cmd/rxmap/commands"
	"github.com/walteh/rxmap/cmd/rxmap/opts"
)

func newRootCmd() *cobra.Command {
	root := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "rxmap",
		Short: "Rewrite JSON records with ordered regex replacements",
		Long: `rxmap compiles an ordered list of regex replace operations once and
applies them to every record value. Each rewritten value must still be a
single JSON document and is written back in canonical form.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := setupLogging(cmd.ErrOrStderr(), root.Debug)
			cmd.SetContext(logger.WithContext(cmd.Context()))
		},
	}

	addRootFlags(cmd, root)

	cmd.AddCommand(
		commands.NewMapCmd(root),
		commands.NewCheckCmd(root),
		newVersionCmd(),
	)

	return cmd
}

func addRootFlags(cmd *cobra.Command, root *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&root.Spec, "spec", "s", "", "inline operation document")
	cmd.PersistentFlags().StringVarP(&root.SpecFile, "spec-file", "c", "", "operation document file (.json, .yaml, .hcl)")
	cmd.PersistentFlags().StringVar(&root.SpecFormat, "spec-format", "", "document format, overrides the file extension (json, yaml, hcl)")
	cmd.PersistentFlags().BoolVarP(&root.Debug, "debug", "d", os.Getenv("RXMAP_DEBUG") != "", "enable debug logging")
}

// setupLogging returns a structured logger on w. Records go to stdout, so
// diagnostics never do.
func setupLogging(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).Level(level).With().Timestamp().Logger()
}
